// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

func TestBuildSinglePrompt(t *testing.T) {
	prompt, err := buildSinglePrompt(testRow("Indexing"))
	if err != nil {
		t.Fatalf("buildSinglePrompt() error: %v", err)
	}

	for _, want := range []string{`"topic": "Indexing"`, `"category": "Backend"`, "single JSON object"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	// Single mode carries no synthetic id.
	if strings.Contains(prompt, `"id"`) {
		t.Error("single prompt contains an id field")
	}
}

func TestBuildSinglePromptDeterministic(t *testing.T) {
	row := testRow("Sharding")
	a, err := buildSinglePrompt(row)
	if err != nil {
		t.Fatalf("buildSinglePrompt() error: %v", err)
	}
	b, err := buildSinglePrompt(row)
	if err != nil {
		t.Fatalf("buildSinglePrompt() error: %v", err)
	}
	if a != b {
		t.Error("identical rows rendered different prompts")
	}
}

func TestBuildSinglePromptTruncatesDescription(t *testing.T) {
	row := testRow("Replication")
	row.Description = strings.Repeat("a", maxDescriptionChars) + "TAIL"

	prompt, err := buildSinglePrompt(row)
	if err != nil {
		t.Fatalf("buildSinglePrompt() error: %v", err)
	}
	if strings.Contains(prompt, "TAIL") {
		t.Error("description was not truncated")
	}
	if !strings.Contains(prompt, strings.Repeat("a", maxDescriptionChars)) {
		t.Error("truncated description is shorter than the bound")
	}
}

func TestBuildBatchPrompt(t *testing.T) {
	prompt, err := buildBatchPrompt(testRows(3))
	if err != nil {
		t.Fatalf("buildBatchPrompt() error: %v", err)
	}

	wants := []string{
		"(3 total)",
		"exactly 3 objects",
		`"id": "0"`,
		`"id": "1"`,
		`"id": "2"`,
		`"topic": "topic-2"`,
	}
	for _, want := range wants {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	// A multi-byte rune straddling the bound must not leave partial bytes.
	row := testRow("Localization")
	row.Description = strings.Repeat("a", maxDescriptionChars-1) + "日本"

	prompt, err := buildSinglePrompt(row)
	if err != nil {
		t.Fatalf("buildSinglePrompt() error: %v", err)
	}
	if !utf8.ValidString(prompt) {
		t.Error("prompt contains invalid UTF-8")
	}
	if strings.Contains(prompt, "日") {
		t.Error("rune straddling the bound was not dropped")
	}
}

func TestBuildBatchPromptTruncatesDescriptions(t *testing.T) {
	rows := testRows(2)
	rows[1].Description = strings.Repeat("b", maxDescriptionChars) + "TAIL"

	prompt, err := buildBatchPrompt(rows)
	if err != nil {
		t.Fatalf("buildBatchPrompt() error: %v", err)
	}
	if strings.Contains(prompt, "TAIL") {
		t.Error("description was not truncated")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than bound", "abc", 5, "abc"},
		{"exactly at bound", "abcde", 5, "abcde"},
		{"over bound", "abcdef", 5, "abcde"},
		{"empty", "", 5, ""},
		{"rune straddles bound", "aé", 2, "a"},
		{"rune ends at bound", "aéb", 3, "aé"},
		{"multi-byte only", "日本語", 4, "日"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.n); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestClassificationValid(t *testing.T) {
	tests := []struct {
		c    types.Classification
		want bool
	}{
		{types.ClassificationPractice, true},
		{types.ClassificationExpert, true},
		{"medium", false},
		{"", false},
		{"Practice", false},
	}

	for _, tt := range tests {
		if got := tt.c.Valid(); got != tt.want {
			t.Errorf("Classification(%q).Valid() = %v, want %v", tt.c, got, tt.want)
		}
	}
}
