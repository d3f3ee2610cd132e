// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []int
	}{
		{"empty", 0, 20, nil},
		{"single partial batch", 5, 20, []int{5}},
		{"exact batch", 20, 20, []int{20}},
		{"full plus remainder", 45, 20, []int{20, 20, 5}},
		{"multiple exact", 40, 20, []int{20, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := partition(testRows(tt.n), tt.size)
			if len(batches) != len(tt.want) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tt.want))
			}
			for i, size := range tt.want {
				if len(batches[i]) != size {
					t.Errorf("batch %d has %d rows, want %d", i, len(batches[i]), size)
				}
			}
		})
	}
}

func TestEnrichMissesBatchCount(t *testing.T) {
	m := &mockBackend{respond: autoRespond}
	e := &Enricher{client: newTestClient(m, &fakeClock{}, 1, time.Nanosecond)}

	results, err := e.enrichMisses(context.Background(), testRows(45), io.Discard)
	if err != nil {
		t.Fatalf("enrichMisses() error: %v", err)
	}
	// 45 rows at a batch bound of 20 cost exactly three model calls.
	if m.calls != 3 {
		t.Errorf("backend calls = %d, want 3", m.calls)
	}
	if len(results) != 45 {
		t.Fatalf("got %d results, want 45", len(results))
	}
	for i, enr := range results {
		if enr.IsPlaceholder() {
			t.Errorf("result %d is a placeholder", i)
		}
	}
}

func TestProcessBatchRetriesInvalidResponseOnce(t *testing.T) {
	m := &mockBackend{respond: func(call int, prompt string) (string, error) {
		if call == 1 {
			return "I'd be happy to help with these topics!", nil
		}
		return autoRespond(call, prompt)
	}}
	e := &Enricher{client: newTestClient(m, &fakeClock{}, 1, time.Nanosecond)}

	results, err := e.processBatch(context.Background(), testRows(3), io.Discard)
	if err != nil {
		t.Fatalf("processBatch() error: %v", err)
	}
	if m.calls != 2 {
		t.Errorf("backend calls = %d, want 2", m.calls)
	}
	for i, enr := range results {
		if enr.IsPlaceholder() {
			t.Errorf("result %d is a placeholder", i)
		}
	}
}

func TestEnrichMissesFallbackIsolation(t *testing.T) {
	// The middle batch fails outright; its rows degrade to per-row calls.
	// Two of those rows keep failing and end up as placeholders while the
	// other 43 are enriched normally.
	m := &mockBackend{respond: func(call int, prompt string) (string, error) {
		if _, ok := isBatchPrompt(prompt); ok {
			if strings.Contains(prompt, `"topic-20"`) {
				return "", apiErrorf(KindTransient, "upstream timeout")
			}
			return autoRespond(call, prompt)
		}
		if strings.Contains(prompt, `"topic-22"`) || strings.Contains(prompt, `"topic-31"`) {
			return "", apiErrorf(KindTransient, "upstream timeout")
		}
		return validSingleJSON, nil
	}}
	e := &Enricher{client: newTestClient(m, &fakeClock{}, 1, time.Nanosecond)}

	var log strings.Builder
	results, err := e.enrichMisses(context.Background(), testRows(45), &log)
	if err != nil {
		t.Fatalf("enrichMisses() error: %v", err)
	}
	if len(results) != 45 {
		t.Fatalf("got %d results, want 45", len(results))
	}

	for i, enr := range results {
		wantPlaceholder := i == 22 || i == 31
		if enr.IsPlaceholder() != wantPlaceholder {
			t.Errorf("result %d placeholder = %v, want %v", i, enr.IsPlaceholder(), wantPlaceholder)
		}
	}

	// Batches 1 and 3 cost one call each. Batch 2 burns its two attempts,
	// then its 20 rows fall back: 18 succeed first try, 2 fail both tries.
	wantCalls := 1 + 2 + 1 + 18 + 2*2
	if m.calls != wantCalls {
		t.Errorf("backend calls = %d, want %d", m.calls, wantCalls)
	}

	if !strings.Contains(log.String(), "degrading to per-row calls") {
		t.Error("log does not mention fallback")
	}
	if !strings.Contains(log.String(), "failed  topic-22") {
		t.Error("log does not mention failed row topic-22")
	}
}

func TestFallbackFatalAborts(t *testing.T) {
	m := &mockBackend{respond: func(call int, prompt string) (string, error) {
		if _, ok := isBatchPrompt(prompt); ok {
			return "", apiErrorf(KindTransient, "upstream timeout")
		}
		return "", apiErrorf(KindFatal, "invalid API key")
	}}
	e := &Enricher{client: newTestClient(m, &fakeClock{}, 0, time.Nanosecond)}

	_, err := e.enrichMisses(context.Background(), testRows(5), io.Discard)
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := KindOf(err); kind != KindFatal {
		t.Errorf("kind = %q, want %q", kind, KindFatal)
	}
	// One failed batch call, then the first fallback call aborts the run.
	if m.calls != 2 {
		t.Errorf("backend calls = %d, want 2", m.calls)
	}
}

func TestEnrichMissesContextCancelled(t *testing.T) {
	m := &mockBackend{respond: autoRespond}
	e := &Enricher{client: newTestClient(m, &fakeClock{}, 1, time.Nanosecond)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.enrichMisses(ctx, testRows(5), io.Discard)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if m.calls != 0 {
		t.Errorf("backend calls = %d, want 0", m.calls)
	}
}
