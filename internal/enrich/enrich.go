// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich generates summaries, difficulty classifications, and
// learning guides for roadmap rows via a generative model API. Enrichment
// is cache-first and batch-oriented: cached rows cost nothing, misses are
// sent in bounded batches, and failed batches degrade to per-row calls so
// every input row receives exactly one output.
// Implements: prd003-enrichment (R1-R6).
package enrich

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/roadmap-engine/internal/cache"
	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// Enricher is the top-level enrichment coordinator.
type Enricher struct {
	client *Client
	store  *cache.Store
}

// New builds an Enricher over backend and store using cfg.
func New(backend Backend, store *cache.Store, cfg types.EnrichmentConfig) *Enricher {
	return &Enricher{
		client: NewClient(backend, cfg),
		store:  store,
	}
}

// EnrichAll annotates every row and returns the enriched rows in the input
// order, one output per input. Cached rows resolve with zero network cost;
// misses go through batched model calls; rows that cannot be enriched carry
// a placeholder and count as failed. Only a fatal (auth/config) error fails
// the call as a whole (R6.1-R6.3).
func (e *Enricher) EnrichAll(ctx context.Context, rows []types.Row, w io.Writer) ([]types.EnrichedRow, types.EnrichmentStats, error) {
	var stats types.EnrichmentStats

	// Phase 1: resolve cache hits and collect misses in input order.
	results := make([]types.Enrichment, len(rows))
	keys := make([]string, len(rows))
	var (
		missRows []types.Row
		missIdx  []int
	)

	for i, row := range rows {
		keys[i] = cache.Key(row.Category, row.Subcategory, row.Topic, row.Description)

		entry, ok, err := e.store.Get(ctx, keys[i])
		if err != nil {
			fmt.Fprintf(w, "warning: cache lookup for %q failed: %v\n", row.Topic, err)
		}
		if ok {
			results[i] = types.Enrichment{
				Summary:        entry.Summary,
				Classification: entry.Classification,
				Guide:          entry.Guide,
			}
			stats.CacheHits++
			continue
		}
		missRows = append(missRows, row)
		missIdx = append(missIdx, i)
	}

	fmt.Fprintf(w, "%d rows: %d cached, %d to enrich\n", len(rows), stats.CacheHits, len(missRows))

	// Phase 2: batched enrichment of the misses.
	if len(missRows) > 0 {
		missResults, err := e.enrichMisses(ctx, missRows, w)
		if err != nil {
			return nil, types.EnrichmentStats{}, err
		}

		// Phase 3: positional merge and persistence. Placeholders are never
		// cached, so a later run retries them.
		for j, enr := range missResults {
			i := missIdx[j]
			results[i] = enr

			if enr.IsPlaceholder() {
				stats.Failed++
				continue
			}
			stats.NewlyEnriched++

			entry := cache.Entry{
				Summary:        enr.Summary,
				Classification: enr.Classification,
				Guide:          enr.Guide,
			}
			if err := e.store.Put(ctx, keys[i], entry); err != nil {
				fmt.Fprintf(w, "warning: caching result for %q failed: %v\n", rows[i].Topic, err)
			}
		}
	}

	enriched := make([]types.EnrichedRow, len(rows))
	for i, row := range rows {
		enriched[i] = types.EnrichedRow{Row: row, Enrichment: results[i]}
	}

	fmt.Fprintf(w, "\ncache hits: %d, newly enriched: %d, failed: %d\n",
		stats.CacheHits, stats.NewlyEnriched, stats.Failed)

	return enriched, stats, nil
}
