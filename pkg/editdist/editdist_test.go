package editdist

import (
	"testing"

	"github.com/heptasean/seedrecover/pkg/wordlist"
	"github.com/stretchr/testify/require"
)

func TestLevenshteinBasics(t *testing.T) {
	require.Equal(t, 0, Levenshtein("abandon", "abandon"))
	require.Equal(t, 1, Levenshtein("prize", "price"))
	require.Equal(t, 1, Levenshtein("attitude", "altitude"))
	require.Equal(t, 1, Levenshtein("blind", "bind"))
	require.Equal(t, 1, Levenshtein("gasp", "gap"))
	require.Equal(t, len("abandon"), Levenshtein("", "abandon"))
	require.Equal(t, len("abandon"), Levenshtein("abandon", ""))
}

func TestExpandUnknownSentinelReturnsFullWordlist(t *testing.T) {
	l := wordlist.English()
	exp := Expand(l, UnknownToken, 2)
	require.False(t, exp.WasInWordlist)
	require.Len(t, exp.Words, wordlist.Count)
	require.Equal(t, l.All(), exp.Words)

	exp2 := Expand(l, "", 0)
	require.False(t, exp2.WasInWordlist)
	require.Len(t, exp2.Words, wordlist.Count)
}

func TestExpandZeroDistanceInWordlistIsSingleton(t *testing.T) {
	l := wordlist.English()
	exp := Expand(l, "abandon", 0)
	require.True(t, exp.WasInWordlist)
	require.Equal(t, []string{"abandon"}, exp.Words)
}

func TestExpandIncludesTokenAtDistanceZeroPlusNeighbors(t *testing.T) {
	l := wordlist.English()
	exp := Expand(l, "price", 1)
	require.True(t, exp.WasInWordlist)
	require.Equal(t, "price", exp.Words[0])
	require.Greater(t, len(exp.Words), 1)
}

func TestExpandOrderingIsDeterministic(t *testing.T) {
	l := wordlist.English()
	a := Expand(l, "attitude", 1)
	b := Expand(l, "attitude", 1)
	require.Equal(t, a.Words, b.Words)
	for i := 1; i < len(a.Words); i++ {
		di := Levenshtein("attitude", a.Words[i-1])
		dj := Levenshtein("attitude", a.Words[i])
		require.LessOrEqual(t, di, dj)
	}
}

func TestExpandNoMatchIsEmpty(t *testing.T) {
	l := wordlist.English()
	exp := Expand(l, "xyzzyplughxyzzyplugh", 2)
	require.Empty(t, exp.Words)
	require.False(t, exp.WasInWordlist)
}

func TestClosestWordFindsNearestByEditDistance(t *testing.T) {
	l := wordlist.English()
	require.Equal(t, "abandon", ClosestWord(l, "abandom"))
	require.Equal(t, "about", ClosestWord(l, "about"))
}

func TestExpandTypoRecoveryVectors(t *testing.T) {
	l := wordlist.English()
	cases := map[string]string{
		"price":    "prize",
		"altitude": "attitude",
		"bind":     "blind",
		"gap":      "gasp",
	}
	for typo, want := range cases {
		exp := Expand(l, typo, 1)
		require.Contains(t, exp.Words, want, "expanding %q should include %q", typo, want)
	}
}
