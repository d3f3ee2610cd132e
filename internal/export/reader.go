// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

// ReadCSV loads rows from a previously exported CSV file (R2.3). The file
// must carry the standard header; enrichment columns, if present, are
// ignored so a file can be re-enriched from its semantic fields.
func ReadCSV(path string) ([]types.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) < len(baseColumns) {
		return nil, fmt.Errorf("unexpected CSV header: %v", header)
	}
	for i, col := range baseColumns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected CSV column %d: got %q, want %q", i, header[i], col)
		}
	}

	var rows []types.Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if len(record) < len(baseColumns) {
			return nil, fmt.Errorf("short CSV row: %v", record)
		}
		rows = append(rows, types.Row{
			Category:    record[0],
			Subcategory: record[1],
			Topic:       record[2],
			Description: record[3],
			Resources:   record[4],
		})
	}

	return rows, nil
}
