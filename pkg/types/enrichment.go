// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Classification is the difficulty level assigned to a topic by the model.
// Per prd003-enrichment R2.3.
type Classification string

const (
	// ClassificationPractice marks fundamental, low-prerequisite topics.
	ClassificationPractice Classification = "practice"

	// ClassificationExpert marks advanced topics with heavy prerequisites.
	ClassificationExpert Classification = "expert"
)

// Valid reports whether c is one of the two accepted values.
func (c Classification) Valid() bool {
	return c == ClassificationPractice || c == ClassificationExpert
}

// Enrichment holds the model-generated annotations for one Row. The zero
// value is the Placeholder recorded for rows that could not be enriched;
// placeholders are never written to the cache, so a later run retries them.
type Enrichment struct {
	// Summary is a crisp description of the topic, at most 12 words.
	Summary string `json:"summary" yaml:"summary"`

	// Classification is practice or expert. Always valid when non-placeholder.
	Classification Classification `json:"classification" yaml:"classification"`

	// Guide is a structured multi-step learning guide for the topic.
	Guide string `json:"guide" yaml:"guide"`
}

// IsPlaceholder reports whether e is the empty result recorded for a row
// that exhausted all retries and fallback attempts.
func (e Enrichment) IsPlaceholder() bool {
	return e.Summary == "" && e.Guide == ""
}

// EnrichedRow pairs a Row with its Enrichment. The Enrichment is the zero
// value for rows that were exported without enrichment.
type EnrichedRow struct {
	Row        `yaml:",inline"`
	Enrichment `yaml:",inline"`
}

// EnrichmentStats summarizes one coordinator invocation (prd003-enrichment R6).
// Counters are computed fresh per call and are not persisted.
type EnrichmentStats struct {
	// CacheHits is the number of rows resolved without a model call.
	CacheHits int

	// NewlyEnriched is the number of rows enriched by model calls this run.
	NewlyEnriched int

	// Failed is the number of rows that received a placeholder.
	Failed int
}
