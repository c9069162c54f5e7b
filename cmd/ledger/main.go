// ledger is a CLI for the café ledger engine: record financial events,
// inspect balances, and render reports.
package main

import (
	"os"

	"github.com/qahwahub/cafe-ledger/cmd/ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
