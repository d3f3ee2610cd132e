// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// enrichMisses drives batched enrichment over the cache-miss rows. The
// result slice is parallel to rows: every input row gets exactly one entry,
// a real enrichment or the zero-value placeholder. Batches are processed
// strictly one at a time; only a fatal error during per-row fallback aborts
// the run. Per prd003-enrichment R3.
func (e *Enricher) enrichMisses(ctx context.Context, rows []types.Row, w io.Writer) ([]types.Enrichment, error) {
	batches := partition(rows, e.client.MaxBatchSize())
	results := make([]types.Enrichment, 0, len(rows))

	for i, batch := range batches {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fmt.Fprintf(w, "batch %d/%d (%d rows)\n", i+1, len(batches), len(batch))

		batchResults, err := e.processBatch(ctx, batch, w)
		if err != nil {
			return nil, err
		}
		results = append(results, batchResults...)
	}

	return results, nil
}

// partition splits rows into consecutive batches of at most size rows each,
// preserving order. The last batch may be smaller.
func partition(rows []types.Row, size int) [][]types.Row {
	var batches [][]types.Row
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}

// processBatch enriches one batch with a single model call, falling back to
// per-row calls when the batch call fails outright. Invalid responses get
// one extra batch-level attempt before degrading (R3.3).
func (e *Enricher) processBatch(ctx context.Context, batch []types.Row, w io.Writer) ([]types.Enrichment, error) {
	entries, err := e.client.Batch(ctx, batch)
	if err != nil && KindOf(err) == KindInvalidResponse {
		fmt.Fprintf(w, "warning: invalid batch response, retrying once: %v\n", err)
		entries, err = e.client.Batch(ctx, batch)
	}
	if err != nil {
		fmt.Fprintf(w, "warning: batch call failed, degrading to per-row calls: %v\n", err)
		return e.fallback(ctx, batch, w)
	}

	// Map entries back to rows by synthetic id. The client's validation
	// already guarantees a complete id set; a gap here still yields a
	// placeholder rather than aborting the batch.
	byID := make(map[string]types.Enrichment, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry.Enrichment
	}

	results := make([]types.Enrichment, len(batch))
	for i := range batch {
		enr, ok := byID[strconv.Itoa(i)]
		if !ok {
			fmt.Fprintf(w, "failed  %s: missing from batch response\n", batch[i].Topic)
			continue
		}
		results[i] = enr
	}
	return results, nil
}

// fallback enriches each row of a failed batch independently. One row's
// failure never prevents its siblings from succeeding; rows that also fail
// individually keep their placeholder. A fatal error here is the one case
// that aborts the whole run (R3.4, R5.2).
func (e *Enricher) fallback(ctx context.Context, batch []types.Row, w io.Writer) ([]types.Enrichment, error) {
	results := make([]types.Enrichment, len(batch))

	for i, row := range batch {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		enr, err := e.client.Single(ctx, row)
		if err != nil {
			if KindOf(err) == KindFatal {
				return nil, fmt.Errorf("enriching %q: %w", row.Topic, err)
			}
			fmt.Fprintf(w, "failed  %s: %v\n", row.Topic, err)
			continue
		}
		results[i] = enr
	}

	return results, nil
}
