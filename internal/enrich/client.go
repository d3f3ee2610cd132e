// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// Defaults applied by NewClient when the config leaves a field zero.
const (
	defaultMaxBatchSize    = 20
	defaultMaxRetries      = 3
	defaultMinCallInterval = 4 * time.Second
	defaultBackoffBase     = time.Second
)

// Client wraps a Backend with process-wide call pacing, bounded retry with
// exponential backoff, and response schema validation.
// Per prd003-enrichment R4.2-R4.5.
type Client struct {
	backend      Backend
	maxBatchSize int
	maxRetries   int
	minInterval  time.Duration
	backoffBase  time.Duration

	// lastCall is the pacing state: the timestamp of the most recent
	// outbound call, owned by this client instance.
	lastCall time.Time

	// now and sleep are injection points for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client over backend using cfg, applying defaults for
// zero fields.
func NewClient(backend Backend, cfg types.EnrichmentConfig) *Client {
	c := &Client{
		backend:      backend,
		maxBatchSize: cfg.MaxBatchSize,
		maxRetries:   cfg.MaxRetries,
		minInterval:  cfg.MinCallInterval,
		backoffBase:  cfg.BackoffBase,
		now:          time.Now,
		sleep:        sleepCtx,
	}
	if c.maxBatchSize <= 0 {
		c.maxBatchSize = defaultMaxBatchSize
	}
	if c.maxRetries <= 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.minInterval <= 0 {
		c.minInterval = defaultMinCallInterval
	}
	if c.backoffBase <= 0 {
		c.backoffBase = defaultBackoffBase
	}
	return c
}

// MaxBatchSize returns the largest batch the client accepts.
func (c *Client) MaxBatchSize() int {
	return c.maxBatchSize
}

// Single enriches one row with a single-topic model call.
func (c *Client) Single(ctx context.Context, row types.Row) (types.Enrichment, error) {
	prompt, err := buildSinglePrompt(row)
	if err != nil {
		return types.Enrichment{}, err
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return types.Enrichment{}, err
	}

	return parseSingleResponse(text)
}

// batchEntry is one validated entry of a batch response, tagged with the
// synthetic id it was submitted under.
type batchEntry struct {
	ID         string
	Enrichment types.Enrichment
}

// Batch enriches up to maxBatchSize rows with one model call. Oversized
// batches fail validation before any network call is attempted (R4.3).
// Entries are returned in submission order.
func (c *Client) Batch(ctx context.Context, rows []types.Row) ([]batchEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > c.maxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds maximum %d", len(rows), c.maxBatchSize)
	}

	prompt, err := buildBatchPrompt(rows)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseBatchResponse(text, len(rows))
}

// generate drives the retry state machine around one logical model call:
// pace, call, classify, back off, repeat. Only rate-limited and transient
// failures are retried; exhausting the attempt budget re-raises the last
// error with its kind intact so callers can distinguish "never reached the
// service" from "service rejected the content" (R4.4).
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.backoffBase
			if err := c.sleep(ctx, backoff); err != nil {
				return "", err
			}
		}

		if err := c.throttle(ctx); err != nil {
			return "", err
		}

		text, err := c.backend.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		kind := KindOf(err)
		if kind != KindRateLimited && kind != KindTransient {
			return "", err
		}
	}

	return "", fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// throttle enforces the minimum interval between consecutive outbound calls.
// Bursts are serialized with delay rather than rejected (R4.2).
func (c *Client) throttle(ctx context.Context) error {
	if !c.lastCall.IsZero() {
		if wait := c.minInterval - c.now().Sub(c.lastCall); wait > 0 {
			if err := c.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	c.lastCall = c.now()
	return nil
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// wireEntry is one element of the model's JSON response. In single mode the
// id is absent.
type wireEntry struct {
	ID             string `json:"id"`
	Summary        string `json:"summary"`
	Classification string `json:"classification"`
	Guide          string `json:"guide"`
}

// validate checks the fields every mode shares.
func (e wireEntry) validate() error {
	if e.Summary == "" {
		return fmt.Errorf("empty summary")
	}
	if !types.Classification(e.Classification).Valid() {
		return fmt.Errorf("invalid classification %q", e.Classification)
	}
	return nil
}

func (e wireEntry) enrichment() types.Enrichment {
	return types.Enrichment{
		Summary:        e.Summary,
		Classification: types.Classification(e.Classification),
		Guide:          e.Guide,
	}
}

// parseSingleResponse validates a single-mode response body. Any violation
// after a successful round-trip is an invalid response, never transient (R4.5).
func parseSingleResponse(text string) (types.Enrichment, error) {
	var entry wireEntry
	if err := json.Unmarshal([]byte(text), &entry); err != nil {
		return types.Enrichment{}, apiErrorf(KindInvalidResponse, "parsing response JSON: %v", err)
	}
	if err := entry.validate(); err != nil {
		return types.Enrichment{}, apiErrorf(KindInvalidResponse, "%v", err)
	}
	return entry.enrichment(), nil
}

// parseBatchResponse validates a batch-mode response body: it must be an
// array of exactly want entries whose ids form the same set that was
// submitted ("0".."want-1"), each passing field validation (R4.5). Entries
// are returned sorted into submission order.
func parseBatchResponse(text string, want int) ([]batchEntry, error) {
	var entries []wireEntry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, apiErrorf(KindInvalidResponse, "parsing response JSON: %v", err)
	}

	if len(entries) != want {
		return nil, apiErrorf(KindInvalidResponse,
			"response length %d, want %d", len(entries), want)
	}

	ordered := make([]batchEntry, want)
	seen := make(map[int]bool, want)
	for i, entry := range entries {
		pos, err := parseBatchID(entry.ID, want)
		if err != nil {
			return nil, apiErrorf(KindInvalidResponse, "entry %d: %v", i, err)
		}
		if seen[pos] {
			return nil, apiErrorf(KindInvalidResponse, "duplicate id %q", entry.ID)
		}
		if err := entry.validate(); err != nil {
			return nil, apiErrorf(KindInvalidResponse, "entry %q: %v", entry.ID, err)
		}
		seen[pos] = true
		ordered[pos] = batchEntry{ID: entry.ID, Enrichment: entry.enrichment()}
	}

	return ordered, nil
}

// parseBatchID converts a synthetic id back to its batch position.
func parseBatchID(id string, want int) (int, error) {
	pos, err := strconv.Atoi(id)
	if err != nil {
		return 0, fmt.Errorf("malformed id %q", id)
	}
	if pos < 0 || pos >= want {
		return 0, fmt.Errorf("id %q outside batch range", id)
	}
	return pos, nil
}
