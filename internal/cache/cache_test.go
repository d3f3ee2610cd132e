// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testEntry() Entry {
	return Entry{
		Summary:        "Relational storage with ACID guarantees",
		Classification: types.ClassificationPractice,
		Guide:          "1. Learn SQL\n2. Model a schema\n3. Add indexes",
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("Backend", "Databases", "Indexing", "How indexes work.")
	b := Key("Backend", "Databases", "Indexing", "How indexes work.")
	if a != b {
		t.Errorf("identical inputs produced different keys: %q vs %q", a, b)
	}
}

func TestKeySensitivity(t *testing.T) {
	base := Key("Backend", "Databases", "Indexing", "How indexes work.")

	tests := []struct {
		name string
		key  string
	}{
		{"category", Key("Frontend", "Databases", "Indexing", "How indexes work.")},
		{"subcategory", Key("Backend", "Caching", "Indexing", "How indexes work.")},
		{"topic", Key("Backend", "Databases", "Sharding", "How indexes work.")},
		{"description", Key("Backend", "Databases", "Indexing", "Rewritten.")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key == base {
				t.Errorf("changing the %s did not change the key", tt.name)
			}
		})
	}
}

func TestKeyFieldBoundaries(t *testing.T) {
	// Field contents must not bleed across field boundaries.
	a := Key("ab", "c", "t", "d")
	b := Key("a", "bc", "t", "d")
	if a == b {
		t.Error("adjacent field contents collided")
	}
}

func TestStorePutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := Key("Backend", "Databases", "Indexing", "How indexes work.")

	if _, ok, err := s.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() before Put = ok=%v err=%v, want miss", ok, err)
	}

	want := testEntry()
	if err := s.Put(ctx, key, want); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !ok {
		t.Fatal("Get() missed after Put")
	}
	if got.Summary != want.Summary || got.Classification != want.Classification || got.Guide != want.Guide {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not recorded")
	}
}

func TestStorePutOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	key := Key("Backend", "Databases", "Indexing", "How indexes work.")

	first := testEntry()
	if err := s.Put(ctx, key, first); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	second := first
	second.Summary = "Updated summary"
	if err := s.Put(ctx, key, second); err != nil {
		t.Fatalf("second Put() error: %v", err)
	}

	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get() = ok=%v err=%v", ok, err)
	}
	if got.Summary != "Updated summary" {
		t.Errorf("Summary = %q, want overwrite to win", got.Summary)
	}

	count, _, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if count != 1 {
		t.Errorf("entries = %d, want 1 after overwrite", count)
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	key := Key("Backend", "Databases", "Indexing", "How indexes work.")

	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	if err := s.Put(ctx, key, testEntry()); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	s, err = NewStore(dir)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() after reopen: %v", err)
	}
	if !ok {
		t.Error("entry did not survive a reopen")
	}
}

func TestStoreStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, latest, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if count != 0 || !latest.IsZero() {
		t.Errorf("empty cache Stats() = %d, %v", count, latest)
	}

	before := time.Now().Add(-time.Second)
	for i, topic := range []string{"Indexing", "Sharding", "Replication"} {
		key := Key("Backend", "Databases", topic, "desc")
		if err := s.Put(ctx, key, testEntry()); err != nil {
			t.Fatalf("Put() %d error: %v", i, err)
		}
	}

	count, latest, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if count != 3 {
		t.Errorf("entries = %d, want 3", count)
	}
	if latest.Before(before) {
		t.Errorf("latest = %v, want recent", latest)
	}
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, topic := range []string{"Indexing", "Sharding"} {
		key := Key("Backend", "Databases", topic, "desc")
		if err := s.Put(ctx, key, testEntry()); err != nil {
			t.Fatalf("Put() error: %v", err)
		}
	}

	n, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}

	count, _, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if count != 0 {
		t.Errorf("entries after Clear = %d, want 0", count)
	}
}
