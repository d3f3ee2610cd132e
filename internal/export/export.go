// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes enriched roadmap rows to CSV or YAML files.
// Implements: prd004-export (R1-R3).
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// baseColumns is the column order for unenriched exports. Enriched exports
// append the enrichment columns.
var (
	baseColumns       = []string{"Category", "Subcategory", "Topic", "Description", "Resources"}
	enrichmentColumns = []string{"Summary", "Classification", "Guide"}
)

// DefaultPath builds the timestamped default output path for a roadmap,
// e.g. output/roadmap_frontend_20260823_143000.csv (R1.2).
func DefaultPath(outputDir, roadmapName string, format types.OutputFormat, now time.Time) string {
	ext := "csv"
	if format == types.OutputYAML {
		ext = "yaml"
	}
	name := strings.ReplaceAll(roadmapName, "-", "_")
	filename := fmt.Sprintf("roadmap_%s_%s.%s", name, now.Format("20060102_150405"), ext)
	return filepath.Join(outputDir, filename)
}

// WriteCSV writes rows to a CSV file at path, creating parent directories
// as needed. Enrichment columns are included only when enriched is true, so
// plain scrapes keep the original column set (R2.1, R2.2).
func WriteCSV(path string, rows []types.EnrichedRow, enriched bool) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := baseColumns
	if enriched {
		header = append(append([]string{}, baseColumns...), enrichmentColumns...)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{row.Category, row.Subcategory, row.Topic, row.Description, row.Resources}
		if enriched {
			record = append(record, row.Summary, string(row.Classification), row.Guide)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing CSV row for %q: %w", row.Topic, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// WriteYAML writes rows to a YAML file at path (R3.1).
func WriteYAML(path string, rows []types.EnrichedRow) error {
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling rows: %w", err)
	}

	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return nil
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}
