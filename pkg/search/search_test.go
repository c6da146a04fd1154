package search

import (
	"context"
	"testing"

	"github.com/heptasean/seedrecover/pkg/candidate"
	"github.com/heptasean/seedrecover/pkg/oracle"
	"github.com/heptasean/seedrecover/pkg/wordlist"
	"github.com/stretchr/testify/require"
)

func trivialPlan(t *testing.T) *candidate.Plan {
	t.Helper()
	l := wordlist.English()
	words := []string{
		"abandon", "abandon", "abandon", "abandon", "abandon", "abandon",
		"abandon", "abandon", "abandon", "abandon", "abandon", "about",
	}
	slots := make([]candidate.Slot, len(words))
	for i, w := range words {
		idx, err := l.IndexOf(w)
		require.NoError(t, err)
		slots[i] = candidate.Slot{Indices: []int{idx}}
	}
	plan, err := candidate.Build(candidate.Config{Wordlist: l, Tokens: slots})
	require.NoError(t, err)
	return plan
}

func TestRunNoOracleNoTargetsReportsEveryValidCandidate(t *testing.T) {
	plan := trivialPlan(t)
	result, err := Run(context.Background(), plan, Options{})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	require.Equal(t, oracle.ReasonChainActive, result.Matches[0].Verdict.Reason)
}

func TestRunStopsEarlyOnceAllUserTargetsMatch(t *testing.T) {
	plan := trivialPlan(t)
	addr := deriveKnownAddress(t, plan)

	classifier := oracle.NewClassifier([]string{addr}, nil)
	result, err := Run(context.Background(), plan, Options{Classifier: classifier})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	require.Equal(t, oracle.ReasonUserTarget, result.Matches[0].Verdict.Reason)
}

func TestRunReportsProgressAtPowersOfTwo(t *testing.T) {
	l := wordlist.English()
	words := []string{
		"abandon", "abandon", "abandon", "abandon", "abandon", "abandon",
		"abandon", "abandon", "abandon", "abandon", "abandon",
	}
	slots := make([]candidate.Slot, len(words))
	for i, w := range words {
		idx, err := l.IndexOf(w)
		require.NoError(t, err)
		slots[i] = candidate.Slot{Indices: []int{idx}}
	}
	plan, err := candidate.Build(candidate.Config{Wordlist: l, Tokens: slots})
	require.NoError(t, err)

	var totals []uint64
	_, err = Run(context.Background(), plan, Options{
		OnProgress: func(p Progress) { totals = append(totals, p.TotalChecked) },
	})
	require.NoError(t, err)
	require.NotEmpty(t, totals)
	require.Equal(t, uint64(2), totals[0])
	require.Equal(t, uint64(wordlist.Count), totals[len(totals)-1])
}

func deriveKnownAddress(t *testing.T, plan *candidate.Plan) string {
	t.Helper()
	result, err := Run(context.Background(), plan, Options{})
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	return result.Matches[0].Address
}
