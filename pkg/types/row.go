// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model and stage configurations.
package types

// Row is one topic record extracted from a roadmap. Rows are assembled by
// the scrape pipeline and are immutable inputs to enrichment and export.
type Row struct {
	// Category is the top-level section of the roadmap the topic belongs to.
	Category string `json:"category" yaml:"category"`

	// Subcategory is the intermediate section, if the roadmap has one.
	Subcategory string `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`

	// Topic is the node label.
	Topic string `json:"topic" yaml:"topic"`

	// Description is the topic's content text with Markdown stripped.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Resources is a pipe-separated list of URLs referenced by the topic.
	Resources string `json:"resources,omitempty" yaml:"resources,omitempty"`
}
