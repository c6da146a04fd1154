// Command seedrecover recovers a damaged or partially remembered
// BIP-39 seed phrase for a Cardano stake address: it expands typo'd
// words, fills in missing positions, optionally tries row/column
// reorderings, and reports every checksum-valid candidate that
// matches a target address or chain-activity oracle.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/heptasean/seedrecover/internal/cli"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	os.Exit(cli.Run(os.Stdout, os.Stderr, os.Args[1:], sigCh))
}
