// Package cli implements the command-line interface: flag parsing,
// per-token expansion reporting, wiring the candidate/search pipeline,
// and progress/result formatting for stdout.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/heptasean/seedrecover/pkg/candidate"
	"github.com/heptasean/seedrecover/pkg/editdist"
	"github.com/heptasean/seedrecover/pkg/oracle"
	"github.com/heptasean/seedrecover/pkg/search"
	"github.com/heptasean/seedrecover/pkg/wordlist"
)

// options holds parsed flag values for one invocation.
type options struct {
	wordlistPath string
	similar      int
	order        bool
	length       int
	missing      []int
	addresses    []string
	blockfrost   string
	words        []string
}

func parseFlags(errOut io.Writer, args []string) (options, int) {
	fs := flag.NewFlagSet("seedrecover", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	wordlistPath := fs.String("wordlist", "", "wordlist file path (default: built-in English BIP-39)")
	similar := fs.Int("similar", 0, "expand each token to wordlist words within this edit distance")
	order := fs.Bool("order", false, "enable structured row/column reordering")
	length := fs.Int("length", 0, "fix phrase length (12, 15, 18, 21, or 24)")
	missing := fs.IntSlice("missing", nil, "1-indexed positions of missing words")
	addresses := fs.StringArray("address", nil, "target stake address (exact or prefix...suffix); repeatable")
	blockfrost := fs.String("blockfrost", "", "enable the chain oracle with this Blockfrost API key")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return options{}, 2
	}

	return options{
		wordlistPath: *wordlistPath,
		similar:      *similar,
		order:        *order,
		length:       *length,
		missing:      *missing,
		addresses:    *addresses,
		blockfrost:   *blockfrost,
		words:        fs.Args(),
	}, 0
}

// Run is the CLI entry point. out and errOut receive human-readable
// report lines; sigCh, if non-nil, triggers graceful cancellation on
// the first signal, and Run returns 130 without waiting further if the
// search has not finished 5 seconds later. Returns the process exit
// code.
func Run(out, errOut io.Writer, args []string, sigCh <-chan os.Signal) int {
	opts, code := parseFlags(errOut, args)
	if code != 0 {
		return code
	}

	list, err := loadWordlist(opts.wordlistPath)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	tokens, warnings := expandTokens(list, opts.words, opts.similar)
	for _, w := range warnings {
		fmt.Fprintln(errOut, "warning:", w)
	}

	cfg := candidate.Config{
		Wordlist:         list,
		Tokens:           tokens,
		MissingPositions: opts.missing,
		LengthHint:       opts.length,
		Reorder:          opts.order,
	}

	plan, err := candidate.Build(cfg)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	fmt.Fprintf(out, "phrase length: %d\n", plan.Length)

	var classifier *oracle.Classifier
	if opts.blockfrost != "" {
		classifier = oracle.NewClassifier(opts.addresses, oracle.NewChainClient(opts.blockfrost))
	} else {
		classifier = oracle.NewClassifier(opts.addresses, nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	searchOpts := search.Options{
		Classifier: classifier,
		Workers:    runtime.GOMAXPROCS(0),
		OnProgress: func(p search.Progress) {
			fmt.Fprintf(out, "progress: total=%d fulfilled_checksum=%d without_repetitions=%d\n",
				p.TotalChecked, p.FulfilledChecksum, p.WithoutRepetitions)
		},
		OnMatch: func(m search.Match) {
			search.FormatMatch(out, m, list.WordOf)
		},
		OnDegenerate: func(indices []int) {
			fmt.Fprintln(errOut, "warning: skipped a derivation-degenerate candidate")
		},
	}

	done := make(chan struct {
		result search.Result
		err    error
	}, 1)
	go func() {
		result, err := search.Run(ctx, plan, searchOpts)
		done <- struct {
			result search.Result
			err    error
		}{result, err}
	}()

	select {
	case r := <-done:
		return finish(out, errOut, r.result, r.err)
	case <-sigCh:
		cancel()
	}

	select {
	case r := <-done:
		return finish(out, errOut, r.result, r.err)
	case <-time.After(5 * time.Second):
		fmt.Fprintln(errOut, "shutdown timed out, forcing exit")
		return 130
	}
}

func finish(out, errOut io.Writer, result search.Result, err error) int {
	if err != nil {
		// ErrOracleAuth and any other error from search.Run are both
		// fatal here: Classify returns early on an auth error, and no
		// other error source is expected to survive to this point.
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	fmt.Fprintf(out, "done: total=%d fulfilled_checksum=%d without_repetitions=%d matches=%d\n",
		result.Progress.TotalChecked, result.Progress.FulfilledChecksum,
		result.Progress.WithoutRepetitions, len(result.Matches))
	return 0
}

func loadWordlist(path string) (*wordlist.List, error) {
	if path == "" {
		return wordlist.English(), nil
	}
	return wordlist.LoadFile(path)
}

// expandTokens runs the edit-distance expander over each positional
// word, reports the expansion it found for every token it expands
// (every token when similar > 0, otherwise only tokens not already in
// the wordlist), and converts a token with no expansion matches into an
// unknown slot (a warning is reported, then the position is treated
// as missing and filled with the full wordlist).
func expandTokens(list *wordlist.List, words []string, similar int) ([]candidate.Slot, []string) {
	slots := make([]candidate.Slot, 0, len(words))
	var warnings []string

	for _, w := range words {
		if similar == 0 && list.Contains(w) {
			idx, _ := list.IndexOf(w)
			slots = append(slots, candidate.Slot{Indices: []int{idx}})
			continue
		}

		expansion := editdist.Expand(list, w, similar)
		if len(expansion.Words) == 0 {
			hint := editdist.ClosestWord(list, w)
			warnings = append(warnings, fmt.Sprintf("%q: %v (closest word: %q), treated as unknown", w, wordlist.ErrNotInWordlist, hint))
			slots = append(slots, candidate.FullWordlistSlot(list))
			continue
		}

		indices := make([]int, len(expansion.Words))
		for i, word := range expansion.Words {
			idx, _ := list.IndexOf(word)
			indices[i] = idx
		}
		warnings = append(warnings, fmt.Sprintf("%q: expanded to %d candidate word(s) within distance %d", w, len(indices), similar))
		slots = append(slots, candidate.Slot{Indices: indices})
	}

	return slots, warnings
}
