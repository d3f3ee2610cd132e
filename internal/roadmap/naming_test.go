// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package roadmap

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Indexing", "indexing"},
		{"One on Ones", "one-on-ones"},
		{"CI / CD", "ci-cd"},
		{"What is an Engineering Manager?", "what-is-an-engineering-manager"},
		{"C++", "c"},
		{"  Leading   Spaces  ", "leading-spaces"},
		{"snake_case_label", "snake-case-label"},
		{"Already-Hyphenated", "already-hyphenated"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"engineering-manager", "Engineering Manager"},
		{"frontend", "Frontend"},
		{"ai-data-scientist", "Ai Data Scientist"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatCategory(tt.in); got != tt.want {
				t.Errorf("FormatCategory(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
