// Package search drives a candidate plan through checksum validation,
// key derivation, and classification, partitioning the candidate
// stream across worker goroutines, reporting progress, and applying
// the early-stop rule.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/heptasean/seedrecover/pkg/bip39"
	"github.com/heptasean/seedrecover/pkg/candidate"
	"github.com/heptasean/seedrecover/pkg/cardano"
	"github.com/heptasean/seedrecover/pkg/oracle"
)

// Match is one reported hit: a derived stake address, the candidate's
// words, and why it matched.
type Match struct {
	Address string
	Indices []int
	Verdict oracle.Verdict
}

// Progress is a snapshot of the generator's running counters, emitted
// at every doubling of TotalChecked.
type Progress struct {
	TotalChecked       uint64
	FulfilledChecksum  uint64
	WithoutRepetitions uint64
}

// Options configures one search run.
type Options struct {
	Passphrase string
	Classifier *oracle.Classifier
	// Workers is the number of concurrent checksum/derivation/oracle
	// pipelines consuming the candidate stream; only the oracle path
	// blocks, so this typically mirrors CPU parallelism.
	Workers int
	// OnProgress, if non-nil, is invoked (never concurrently) at
	// every doubling of total_checked.
	OnProgress func(Progress)
	// OnMatch, if non-nil, is invoked for every confirmed match.
	OnMatch func(Match)
	// OnDegenerate, if non-nil, is invoked when a candidate's
	// derivation is degenerate: the candidate is skipped and the
	// search continues.
	OnDegenerate func(indices []int)
}

// Result is the final summary returned once a run completes or is
// cancelled.
type Result struct {
	Matches  []Match
	Progress Progress
}

// Run drives plan's candidate stream through derivation and
// classification until the stream is exhausted, ctx is cancelled, or
// the early-stop condition fires: every distinct user target has been
// matched and no chain oracle is configured.
func Run(ctx context.Context, plan *candidate.Plan, opts Options) (Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, counters := plan.Run(runCtx)

	var (
		mu       sync.Mutex
		matches  []Match
		matched  = make(map[int]bool)
		lastPow  uint64
		firstErr error
	)

	classifier := opts.Classifier
	if classifier == nil {
		classifier = oracle.NewClassifier(nil, nil)
	}
	hasTargets := len(classifier.Targets) > 0
	chainActive := classifier.Chain != nil

	// reportProgress emits one Progress per power-of-two threshold of
	// total_checked crossed since the last call, catching up on
	// every threshold if total jumped past more than one at once. Each
	// Progress carries the threshold itself as TotalChecked.
	reportProgress := func() {
		total := counters.TotalChecked.Load()
		for nextPowerOfTwo(lastPow) <= total {
			lastPow = nextPowerOfTwo(lastPow)
			if opts.OnProgress != nil {
				opts.OnProgress(Progress{
					TotalChecked:       lastPow,
					FulfilledChecksum:  counters.FulfilledChecksum.Load(),
					WithoutRepetitions: counters.WithoutRepetitions.Load(),
				})
			}
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for indices := range stream {
				mu.Lock()
				reportProgress()
				mu.Unlock()

				entropy, err := bip39.EntropyOf(indices)
				if err != nil {
					if opts.OnDegenerate != nil {
						opts.OnDegenerate(indices)
					}
					continue
				}
				addr, err := cardano.StakeAddress(entropy, opts.Passphrase)
				if err != nil {
					if opts.OnDegenerate != nil {
						opts.OnDegenerate(indices)
					}
					continue
				}

				verdict, err := classifier.Classify(runCtx, addr)
				if errors.Is(err, oracle.ErrOracleTransient) {
					continue
				}
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					return
				}
				if !verdict.Matched {
					continue
				}

				m := Match{Address: addr, Indices: indices, Verdict: verdict}
				mu.Lock()
				matches = append(matches, m)
				if verdict.Reason == oracle.ReasonUserTarget {
					matched[verdict.TargetIndex] = true
				}
				stop := hasTargets && !chainActive &&
					allMatched(classifier.Targets, matched)
				mu.Unlock()

				if opts.OnMatch != nil {
					opts.OnMatch(m)
				}
				if stop {
					cancel()
					return
				}
			}
		}()
	}
	wg.Wait()
	reportProgress()

	final := Progress{
		TotalChecked:       counters.TotalChecked.Load(),
		FulfilledChecksum:  counters.FulfilledChecksum.Load(),
		WithoutRepetitions: counters.WithoutRepetitions.Load(),
	}
	return Result{Matches: matches, Progress: final}, firstErr
}

func allMatched(targets []oracle.Target, matched map[int]bool) bool {
	for i := range targets {
		if !matched[i] {
			return false
		}
	}
	return true
}

func nextPowerOfTwo(prev uint64) uint64 {
	if prev < 2 {
		return 2
	}
	return prev * 2
}

// FormatMatch renders a match in the standard stdout line format:
// "<stake_addr>: <space-separated words>".
func FormatMatch(w io.Writer, m Match, words func(int) string) {
	fmt.Fprintf(w, "%s:", m.Address)
	for _, idx := range m.Indices {
		fmt.Fprintf(w, " %s", words(idx))
	}
	fmt.Fprintln(w)
}
