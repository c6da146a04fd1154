// Package cardano implements the Cardano stake key derivation pipeline:
// BIP-39 entropy -> CIP-3 Icarus root key -> BIP32-Ed25519 derivation
// along the stake path -> bech32 stake address. Deterministic, no I/O,
// and safe to call concurrently from many workers since it allocates
// fresh state per call and touches no shared mutable data.
//
// Turns entropy into key material with crypto/hmac and crypto/sha512
// plus golang.org/x/crypto/pbkdf2, and uses filippo.io/edwards25519
// for the scalar/point arithmetic BIP32-Ed25519 needs.
package cardano

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"math/big"

	"filippo.io/edwards25519"
	"github.com/decred/dcrd/bech32"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

// ErrDerivationDegenerate is returned in the theoretically possible,
// practically unreachable case where a child extended key falls
// outside the valid scalar range after derivation (its kL has bit 255
// set).
var ErrDerivationDegenerate = errors.New("cardano: derivation degenerate")

const (
	pbkdf2Iterations = 4096
	rootKeySize      = 96 // 64-byte extended key + 32-byte chain code

	hardenedOffset = uint32(1) << 31

	// StakeHRP is the bech32 human-readable part for a mainnet Cardano
	// reward (stake) address.
	StakeHRP = "stake"
	// rewardAddressHeader is the single header byte for a mainnet
	// (network id 1) reward address built from a key hash: the top
	// nibble 0xE marks a reward address, the bottom nibble the
	// network id.
	rewardAddressHeader = 0xE1
)

// stakePath is m/1852'/1815'/0'/2/0: the CIP-1852 purpose and CIP-3
// Cardano coin type, account 0, stake role, first stake key.
var stakePath = [5]uint32{
	hardenedOffset + 1852,
	hardenedOffset + 1815,
	hardenedOffset + 0,
	2,
	0,
}

// extendedKey is a BIP32-Ed25519 node: a 64-byte extended private key
// (kL || kR, each 32 bytes) plus its 32-byte chain code.
type extendedKey struct {
	kL, kR [32]byte
	chain  [32]byte
}

// rootKey derives the CIP-3 Icarus root extended key from BIP-39
// entropy and an optional passphrase (empty string by default).
func rootKey(entropy []byte, passphrase string) extendedKey {
	salt := []byte(norm.NFKD.String(passphrase))
	out := pbkdf2.Key(entropy, salt, pbkdf2Iterations, rootKeySize, sha512.New)

	var k extendedKey
	copy(k.kL[:], out[:32])
	copy(k.kR[:], out[32:64])
	copy(k.chain[:], out[64:96])

	k.kL[0] &= 0b1111_1000
	k.kL[31] &= 0b0111_1111
	k.kL[31] |= 0b0100_0000
	return k
}

// StakeAddress runs the full derivation pipeline: entropy -> root key ->
// BIP32-Ed25519 derivation along m/1852'/1815'/0'/2/0 -> stake public
// key -> bech32 mainnet reward address.
func StakeAddress(entropy []byte, passphrase string) (string, error) {
	node := rootKey(entropy, passphrase)
	var err error
	for _, idx := range stakePath {
		node, err = deriveChild(node, idx)
		if err != nil {
			return "", err
		}
	}

	pub, err := publicKey(node.kL)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, 29)
	payload = append(payload, rewardAddressHeader)
	hash, err := keyHash(pub)
	if err != nil {
		return "", err
	}
	payload = append(payload, hash...)

	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(StakeHRP, converted)
}

// deriveChild computes the BIP32-Ed25519 child of parent at the given
// index (hardened if its high bit is set), per CIP-3.
func deriveChild(parent extendedKey, index uint32) (extendedKey, error) {
	hardened := index&hardenedOffset != 0

	var body []byte
	if hardened {
		body = append(append([]byte{}, parent.kL[:]...), parent.kR[:]...)
	} else {
		pub, err := publicKey(parent.kL)
		if err != nil {
			return extendedKey{}, err
		}
		body = append([]byte{}, pub...)
	}

	var idxLE [4]byte
	binary.LittleEndian.PutUint32(idxLE[:], index)
	body = append(body, idxLE[:]...)

	zDomain := byte(0x00)
	cDomain := byte(0x01)
	if !hardened {
		zDomain, cDomain = 0x02, 0x03
	}

	z := hmacSHA512(parent.chain[:], append([]byte{zDomain}, body...))
	cHash := hmacSHA512(parent.chain[:], append([]byte{cDomain}, body...))

	zl := z[:28]
	zr := z[32:64]

	kL, err := addScalar256(parent.kL[:], zl, 8)
	if err != nil {
		return extendedKey{}, err
	}
	if kL[31]&0x80 != 0 {
		return extendedKey{}, ErrDerivationDegenerate
	}
	kR, err := addScalar256(parent.kR[:], zr, 1)
	if err != nil {
		return extendedKey{}, err
	}

	var child extendedKey
	copy(child.kL[:], kL)
	copy(child.kR[:], kR)
	copy(child.chain[:], cHash[32:64])
	return child, nil
}

// addScalar256 computes (base + multiplier*addend) mod 2^256, where
// base, addend are little-endian byte strings, returning a 32-byte
// little-endian result.
func addScalar256(base, addend []byte, multiplier int64) ([]byte, error) {
	baseInt := leToBig(base)
	addendInt := leToBig(addend)
	addendInt.Mul(addendInt, big.NewInt(multiplier))
	sum := new(big.Int).Add(baseInt, addendInt)
	mod := new(big.Int).Lsh(big.NewInt(1), 256)
	sum.Mod(sum, mod)
	return bigToLE(sum, 32), nil
}

func leToBig(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

func bigToLE(v *big.Int, size int) []byte {
	be := v.Bytes()
	le := make([]byte, size)
	for i := 0; i < len(be); i++ {
		le[i] = be[len(be)-1-i]
	}
	return le
}

func hmacSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// publicKey computes the Ed25519 public key A = kL * B for an
// extended private scalar kL, reducing kL modulo the group order as
// SetUniformBytes requires (valid because curve point arithmetic only
// depends on the scalar modulo the group order).
func publicKey(kL [32]byte) ([]byte, error) {
	wide := make([]byte, 64)
	copy(wide, kL[:])
	scalar, err := edwards25519.NewScalar().SetUniformBytes(wide)
	if err != nil {
		return nil, err
	}
	point := new(edwards25519.Point).ScalarBaseMult(scalar)
	return point.Bytes(), nil
}

// keyHash returns the 28-byte (224-bit) BLAKE2b digest of a public
// key, used as a Cardano key hash.
func keyHash(pub []byte) ([]byte, error) {
	h, err := blake2b.New(28, nil)
	if err != nil {
		return nil, err
	}
	h.Write(pub)
	return h.Sum(nil), nil
}
