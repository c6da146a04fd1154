// Package editdist expands a user-supplied token into the ordered set
// of wordlist words within a bounded Levenshtein distance.
package editdist

import (
	"sort"

	"github.com/heptasean/seedrecover/pkg/wordlist"
)

// UnknownToken is the sentinel string denoting a missing slot.
const UnknownToken = "?"

// Expansion is the result of expanding one token against a wordlist.
type Expansion struct {
	// Words is the ordered set of candidate words: ascending distance,
	// ties broken by wordlist index.
	Words []string
	// WasInWordlist reports whether the input token was itself a
	// member of the wordlist.
	WasInWordlist bool
}

// Expand computes the Levenshtein distance between token and every
// word in l, returning those within distance k, ordered ascending by
// distance and, within a distance, by wordlist index.
//
// If token is empty or the unknown sentinel "?", the full wordlist is
// returned (in wordlist order) with WasInWordlist false.
func Expand(l *wordlist.List, token string, k int) Expansion {
	if token == "" || token == UnknownToken {
		return Expansion{Words: append([]string{}, l.All()...), WasInWordlist: false}
	}

	wasInWordlist := l.Contains(token)
	all := l.All()

	type scored struct {
		word  string
		index int
		dist  int
	}
	var matches []scored
	for i, w := range all {
		d := Levenshtein(token, w)
		if d <= k {
			matches = append(matches, scored{word: w, index: i, dist: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].index < matches[j].index
	})

	words := make([]string, len(matches))
	for i, m := range matches {
		words[i] = m.word
	}
	return Expansion{Words: words, WasInWordlist: wasInWordlist}
}

// ClosestWord returns the single nearest wordlist word to token by
// Levenshtein distance, ties broken by wordlist index. Used to give a
// one-word hint when a token is not in the wordlist and no expansion
// was requested.
func ClosestWord(l *wordlist.List, token string) string {
	all := l.All()
	best := all[0]
	bestDist := Levenshtein(token, best)
	for _, w := range all[1:] {
		if d := Levenshtein(token, w); d < bestDist {
			best, bestDist = w, d
		}
	}
	return best
}

// Levenshtein computes the classical edit distance (insertions,
// deletions, substitutions, each cost 1) between a and b over code
// points, using a two-row dynamic program.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost

			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
