package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/heptasean/seedrecover/pkg/wordlist"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args []string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(&stdout, &stderr, args, nil)
	return stdout.String(), stderr.String(), code
}

func TestRunTrivialPhraseReportsSingleMatch(t *testing.T) {
	words := strings.Split("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", " ")
	out, stderr, code := runCLI(t, words)
	require.Equal(t, 0, code)
	require.Empty(t, stderr)
	require.Contains(t, out, "phrase length: 12")
	require.Contains(t, out, "stake1")
}

func TestRunRejectsBadLengthFlag(t *testing.T) {
	_, _, code := runCLI(t, []string{"--length", "13", "abandon"})
	require.NotEqual(t, 0, code)
}

func TestExpandTokensWarnsOnUnknownTokenWithNoSimilarMatches(t *testing.T) {
	list := wordlist.English()
	slots, warnings := expandTokens(list, []string{"abandon", "zzzzznotaword"}, 0)
	require.Len(t, slots, 2)
	require.Len(t, slots[0].Indices, 1)
	require.Len(t, slots[1].Indices, wordlist.Count)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "treated as unknown")
}

func TestExpandTokensExpandsTypoWithinDistance(t *testing.T) {
	list := wordlist.English()
	slots, warnings := expandTokens(list, []string{"abandom"}, 1)
	require.Len(t, slots, 1)
	require.NotEmpty(t, slots[0].Indices)
	require.Contains(t, warnings[0], "expanded to")
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	_, stderr, code := runCLI(t, []string{"--not-a-flag"})
	require.NotEqual(t, 0, code)
	require.NotEmpty(t, stderr)
}
