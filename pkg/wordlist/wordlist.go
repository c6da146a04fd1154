// Package wordlist implements the BIP-39 wordlist index: a
// canonical, immutable 2048-word list with O(1) expected lookup in
// both directions.
package wordlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Count is the fixed size of any BIP-39 wordlist.
const Count = 2048

// IndexBits is the number of bits encoded by a single word.
const IndexBits = 11

// ErrNotInWordlist is returned by IndexOf when a word has no entry.
var ErrNotInWordlist = errors.New("wordlist: word not in wordlist")

// ErrBadWordlist is returned when a loaded wordlist file does not
// contain exactly Count nonempty, unique lines.
var ErrBadWordlist = errors.New("wordlist: malformed wordlist file")

// List is an immutable, bijective mapping between [0, Count) and a
// set of Count unique words. The zero value is not usable; construct
// one with English() or Load.
type List struct {
	words   [Count]string
	indexOf map[string]int
}

// English returns the built-in BIP-39 English word list.
func English() *List {
	return newList(english[:])
}

func newList(words []string) *List {
	l := &List{indexOf: make(map[string]int, Count)}
	copy(l.words[:], words)
	for i, w := range l.words {
		l.indexOf[w] = i
	}
	return l
}

// Load reads a wordlist from r: UTF-8 text, one word per line. Every
// line is trimmed of surrounding whitespace; blank lines are skipped.
// Fails with ErrBadWordlist unless exactly Count unique words result.
func Load(r io.Reader) (*List, error) {
	var words []string
	seen := make(map[string]bool, Count)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		if seen[w] {
			return nil, fmt.Errorf("%w: duplicate word %q", ErrBadWordlist, w)
		}
		seen[w] = true
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadWordlist, err)
	}
	if len(words) != Count {
		return nil, fmt.Errorf("%w: expected %d words, got %d", ErrBadWordlist, Count, len(words))
	}
	return newList(words), nil
}

// LoadFile is a convenience wrapper around Load for a path on disk.
func LoadFile(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadWordlist, err)
	}
	defer f.Close()
	return Load(f)
}

// WordOf returns the word at index i. Panics if i is out of range;
// callers only ever pass indices already validated against Count.
func (l *List) WordOf(i int) string {
	return l.words[i]
}

// IndexOf returns the index of w, or ErrNotInWordlist if w is absent.
func (l *List) IndexOf(w string) (int, error) {
	i, ok := l.indexOf[w]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrNotInWordlist, w)
	}
	return i, nil
}

// Contains reports whether w is a member of the list.
func (l *List) Contains(w string) bool {
	_, ok := l.indexOf[w]
	return ok
}

// All returns every word in index order. The returned slice must not
// be mutated by the caller.
func (l *List) All() []string {
	return l.words[:]
}
