package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qahwahub/cafe-ledger/pkg/docstore"
)

// statsCmd displays store-wide record counts.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger statistics",
	Long: `Display record counts per collection and the most recent
ingestion timestamp.

Example:
  ledger stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	eng, err := openEngine()
	exitOnError(err, "failed to initialize")
	defer eng.close()

	ctx := context.Background()

	fmt.Println("\n=== Ledger Statistics ===")
	var lastCreated string
	for _, collection := range docstore.Collections() {
		docs, err := eng.docs.List(ctx, docstore.Query{Collection: collection})
		exitOnError(err, fmt.Sprintf("failed to list %s", collection))

		fmt.Printf("%-22s %d\n", collection+":", len(docs))
		for _, doc := range docs {
			ts := doc.CreatedAt.Format("2006-01-02 15:04:05")
			if ts > lastCreated {
				lastCreated = ts
			}
		}
	}

	if lastCreated != "" {
		fmt.Printf("Last record created:   %s\n", lastCreated)
	} else {
		fmt.Printf("Last record created:   (never)\n")
	}
	fmt.Println()

	slog.Info("statistics displayed")
}
