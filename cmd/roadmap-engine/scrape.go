// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/roadmap-engine/internal/cache"
	"github.com/pdiddy/roadmap-engine/internal/enrich"
	"github.com/pdiddy/roadmap-engine/internal/export"
	"github.com/pdiddy/roadmap-engine/internal/fetch"
	"github.com/pdiddy/roadmap-engine/internal/roadmap"
	"github.com/pdiddy/roadmap-engine/internal/secrets"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch a roadmap from GitHub and export its topics",
	Long: `Scrape fetches a roadmap graph and its topic content files from the
developer-roadmap GitHub repository, extracts topic rows with detected
category hierarchy, and exports them to CSV or YAML.

With --enrich, each row is additionally annotated with a model-generated
summary, a practice/expert classification, and a learning guide. Enrichment
results are cached in a local SQLite database, so only new or changed rows
cost model calls on re-runs.`,
	RunE: runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	w := os.Stdout

	fetcher := fetch.New(fetchConfig(cmd))

	if list, _ := cmd.Flags().GetBool("list"); list {
		names, err := fetcher.ListRoadmaps(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Available roadmaps (%d found):\n", len(names))
		for _, name := range names {
			fmt.Fprintf(w, "  %s\n", name)
		}
		return nil
	}

	name, _ := cmd.Flags().GetString("roadmap")
	if name == "" {
		return fmt.Errorf("roadmap name required: use --roadmap, or --list to see available roadmaps")
	}

	doEnrich, _ := cmd.Flags().GetBool("enrich")

	fmt.Fprintf(w, "fetching %s\n", name)
	data, err := fetcher.RoadmapJSON(ctx, name)
	if err != nil {
		return err
	}

	topics, err := roadmap.ExtractTopics(data, roadmap.FormatCategory(name))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "found %d topics\n", len(topics))

	contents, err := fetcher.ContentFiles(ctx, name, w)
	if err != nil {
		return err
	}

	rows := assembleRows(topics, contents)

	var enriched []types.EnrichedRow
	if doEnrich {
		enriched, err = enrichRows(ctx, cmd, rows, w)
		if err != nil {
			return err
		}
	} else {
		enriched = make([]types.EnrichedRow, len(rows))
		for i, row := range rows {
			enriched[i] = types.EnrichedRow{Row: row}
		}
	}

	path, format := outputTarget(cmd, name)
	switch format {
	case types.OutputYAML:
		err = export.WriteYAML(path, enriched)
	default:
		err = export.WriteCSV(path, enriched, doEnrich)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nexported %d rows to %s\n", len(enriched), path)
	return nil
}

// assembleRows joins extracted topics with their content files. Topics
// without a content file still produce a row with an empty description.
func assembleRows(topics []roadmap.Topic, contents map[string]string) []types.Row {
	rows := make([]types.Row, len(topics))
	for i, t := range topics {
		key := roadmap.Slugify(t.Label) + "@" + t.ID
		description, resources := roadmap.ParseContent(contents[key])
		rows[i] = types.Row{
			Category:    t.Category,
			Subcategory: t.Subcategory,
			Topic:       t.Label,
			Description: description,
			Resources:   resources,
		}
	}
	return rows
}

// enrichRows runs the enrichment coordinator over rows.
func enrichRows(ctx context.Context, cmd *cobra.Command, rows []types.Row, w io.Writer) ([]types.EnrichedRow, error) {
	cfg, err := enrichmentConfig(cmd)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStore(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	backend := &enrich.GeminiBackend{APIKey: cfg.APIKey, Model: cfg.Model}
	enricher := enrich.New(backend, store, cfg)

	enriched, _, err := enricher.EnrichAll(ctx, rows, w)
	return enriched, err
}

// outputTarget resolves the output path and format from flags.
func outputTarget(cmd *cobra.Command, name string) (string, types.OutputFormat) {
	format := types.OutputFormat(mustString(cmd, "format"))
	if format != types.OutputYAML {
		format = types.OutputCSV
	}

	path := mustString(cmd, "output")
	if path == "" {
		path = export.DefaultPath(mustString(cmd, "output-dir"), name, format, time.Now())
	}
	return path, format
}

func fetchConfig(cmd *cobra.Command) types.FetchConfig {
	return types.FetchConfig{
		MaxRetries:    mustInt(cmd, "fetch-retries"),
		MaxConcurrent: mustInt(cmd, "fetch-concurrency"),
		Token:         secretDefault(secrets.GitHubToken, mustString(cmd, "github-token")),
	}
}

// enrichmentConfig assembles the enrichment stage config from flags and
// secrets. The API key is required whenever enrichment runs.
func enrichmentConfig(cmd *cobra.Command) (types.EnrichmentConfig, error) {
	apiKey := secretDefault(secrets.GeminiAPIKey, mustString(cmd, "gemini-api-key"))
	if apiKey == "" {
		return types.EnrichmentConfig{}, fmt.Errorf("Gemini API key required: use --gemini-api-key or .secrets/gemini-api-key")
	}

	interval, _ := cmd.Flags().GetDuration("min-call-interval")
	backoff, _ := cmd.Flags().GetDuration("backoff-base")

	return types.EnrichmentConfig{
		AIConfig: types.AIConfig{
			Model:      mustString(cmd, "model"),
			APIKey:     apiKey,
			MaxRetries: mustInt(cmd, "max-retries"),
		},
		MaxBatchSize:    mustInt(cmd, "batch-size"),
		MinCallInterval: interval,
		BackoffBase:     backoff,
		CacheDir:        mustString(cmd, "cache-dir"),
	}, nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func mustInt(cmd *cobra.Command, name string) int {
	v, _ := cmd.Flags().GetInt(name)
	return v
}

// addEnrichmentFlags registers the flags shared by commands that run the
// enrichment coordinator.
func addEnrichmentFlags(cmd *cobra.Command) {
	cmd.Flags().String("gemini-api-key", "", "Gemini API key (or .secrets/gemini-api-key)")
	cmd.Flags().String("model", "gemini-2.5-flash-lite", "AI model identifier for enrichment")
	cmd.Flags().Int("batch-size", 20, "maximum rows per model call")
	cmd.Flags().Int("max-retries", 3, "retry attempts for rate-limited or transient model failures")
	cmd.Flags().Duration("min-call-interval", 4*time.Second, "minimum interval between model calls")
	cmd.Flags().Duration("backoff-base", time.Second, "base duration for exponential retry backoff")
	cmd.Flags().String("cache-dir", ".cache", "directory for the enrichment cache database")
}

func init() {
	scrapeCmd.Flags().String("roadmap", "", "roadmap name (e.g. engineering-manager, frontend, backend)")
	scrapeCmd.Flags().Bool("list", false, "list all available roadmaps and exit")
	scrapeCmd.Flags().Bool("enrich", false, "enrich rows with model-generated annotations")
	scrapeCmd.Flags().String("output", "", "output path (default: auto-generated with timestamp)")
	scrapeCmd.Flags().String("output-dir", "output", "directory for auto-generated output paths")
	scrapeCmd.Flags().String("format", "csv", "output format: csv or yaml")
	scrapeCmd.Flags().Int("fetch-retries", 0, "retry attempts for rate-limited GitHub requests (0 = default)")
	scrapeCmd.Flags().Int("fetch-concurrency", 20, "maximum concurrent content file downloads")
	scrapeCmd.Flags().String("github-token", "", "GitHub token for higher API rate limits (or .secrets/github-token)")
	addEnrichmentFlags(scrapeCmd)

	rootCmd.AddCommand(scrapeCmd)
}
