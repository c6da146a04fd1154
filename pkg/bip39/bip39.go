// Package bip39 implements BIP-39 checksum validation: given a
// concrete ordered phrase of wordlist indices, it verifies that the
// phrase encodes a valid entropy+checksum pair, and converts between
// entropy bytes and index sequences.
//
// The candidate generator deals in wordlist indices directly rather
// than word strings, so the checksum math here operates on []int,
// using big.Int shift-and-mask arithmetic to pack and unpack the
// entropy+checksum bitstream.
package bip39

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/heptasean/seedrecover/pkg/wordlist"
)

// ErrInvalidLength is returned when a phrase length is not one of the
// five legal BIP-39 lengths.
var ErrInvalidLength = errors.New("bip39: invalid phrase length")

var bigOne = big.NewInt(1)

// LegalLengths are the only phrase lengths BIP-39 permits.
var LegalLengths = [5]int{12, 15, 18, 21, 24}

// IsLegalLength reports whether l is one of the five legal lengths.
func IsLegalLength(l int) bool {
	for _, ll := range LegalLengths {
		if ll == l {
			return true
		}
	}
	return false
}

// EntropyChecksumBits returns (ENT, CS) for phrase length l: ENT =
// l*32/3 bits of entropy, CS = ENT/32 bits of checksum, so that
// l*11 = ENT+CS.
func EntropyChecksumBits(l int) (ent, cs int, err error) {
	if !IsLegalLength(l) {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidLength, l)
	}
	ent = l * 32 / 3
	cs = ent / 32
	return ent, cs, nil
}

// SmallestLength returns the smallest legal length able to hold at
// least `words` word slots.
func SmallestLength(words int) (int, error) {
	for _, ll := range LegalLengths {
		if ll >= words {
			return ll, nil
		}
	}
	return 0, fmt.Errorf("%w: %d words exceeds the largest legal length", ErrInvalidLength, words)
}

// IsValid verifies that indices, interpreted as a big-endian bitstream
// of len(indices)*11 bits, encodes a valid BIP-39 entropy+checksum
// pair: the trailing CS bits equal the first CS bits of
// SHA-256(entropy bytes).
func IsValid(indices []int) (bool, error) {
	entropy, checksum, ent, cs, err := split(indices)
	if err != nil {
		return false, err
	}
	want := checksumBits(leftPad(entropy.Bytes(), ent/8), cs)
	return checksum.Cmp(want) == 0, nil
}

// EntropyOf extracts the entropy bytes encoded by indices, without
// verifying the checksum; callers that care about checksum validity
// should call IsValid first.
func EntropyOf(indices []int) ([]byte, error) {
	entropy, _, ent, _, err := split(indices)
	if err != nil {
		return nil, err
	}
	return leftPad(entropy.Bytes(), ent/8), nil
}

// IndicesOfEntropy builds the full index sequence (entropy bits
// followed by the BIP-39 checksum) for the given entropy bytes. The
// length of entropy must correspond to a legal phrase length: 16, 20,
// 24, 28, or 32 bytes.
func IndicesOfEntropy(entropy []byte) ([]int, error) {
	entBits := len(entropy) * 8
	l := entBits * 3 / 32
	if !IsLegalLength(l) {
		return nil, fmt.Errorf("%w: entropy of %d bytes has no legal phrase length", ErrInvalidLength, len(entropy))
	}
	_, cs, err := EntropyChecksumBits(l)
	if err != nil {
		return nil, err
	}

	checksum := checksumBits(entropy, cs)
	bits := new(big.Int).SetBytes(entropy)
	bits.Lsh(bits, uint(cs))
	bits.Or(bits, checksum)

	indices := make([]int, l)
	mask := big.NewInt(int64(wordlist.Count - 1))
	for i := l - 1; i >= 0; i-- {
		idx := new(big.Int).And(bits, mask)
		indices[i] = int(idx.Int64())
		bits.Rsh(bits, wordlist.IndexBits)
	}
	return indices, nil
}

// split packs indices into a single bitstream and divides it into its
// entropy prefix (ENT bits) and checksum suffix (CS bits), returning
// both as big.Int values along with the bit widths used.
func split(indices []int) (entropy, checksum *big.Int, ent, cs int, err error) {
	l := len(indices)
	ent, cs, err = EntropyChecksumBits(l)
	if err != nil {
		return nil, nil, 0, 0, err
	}

	bits := big.NewInt(0)
	for _, idx := range indices {
		bits.Lsh(bits, wordlist.IndexBits)
		bits.Or(bits, big.NewInt(int64(idx)))
	}

	mask := new(big.Int).Sub(new(big.Int).Lsh(bigOne, uint(cs)), bigOne)
	checksum = new(big.Int).And(bits, mask)
	entropy = new(big.Int).Rsh(bits, uint(cs))
	return entropy, checksum, ent, cs, nil
}

// checksumBits returns the first numBits bits of SHA-256(entropy) as
// an integer.
func checksumBits(entropy []byte, numBits int) *big.Int {
	const hashBits = sha256.Size * 8
	hash := sha256.Sum256(entropy)
	checksum := new(big.Int).SetBytes(hash[:])
	return checksum.Rsh(checksum, uint(hashBits-numBits))
}

// leftPad left-pads (or truncates, which should never occur for
// correctly-sized entropy) b to exactly size bytes.
func leftPad(b []byte, size int) []byte {
	if len(b) >= size {
		return b[len(b)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}
