// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/roadmap-engine/internal/export"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich [csv-file]",
	Short: "Enrich a previously exported CSV with model-generated annotations",
	Long: `Enrich reads topic rows from an exported CSV file, annotates each row
with a model-generated summary, a practice/expert classification, and a
learning guide, and writes the enriched CSV.

Rows already present in the enrichment cache are resolved without model
calls. Rows that cannot be enriched after retries and per-row fallback are
written with empty annotation columns and retried on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrich,
}

func runEnrich(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	w := os.Stdout
	input := args[0]

	rows, err := export.ReadCSV(input)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no rows in %s", input)
	}

	enriched, err := enrichRows(ctx, cmd, rows, w)
	if err != nil {
		return err
	}

	output := mustString(cmd, "output")
	if output == "" {
		output = strings.TrimSuffix(input, ".csv") + "_enriched.csv"
	}

	if err := export.WriteCSV(output, enriched, true); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nexported %d rows to %s\n", len(enriched), output)
	return nil
}

func init() {
	enrichCmd.Flags().String("output", "", "output path (default: <input>_enriched.csv)")
	addEnrichmentFlags(enrichCmd)

	rootCmd.AddCommand(enrichCmd)
}
