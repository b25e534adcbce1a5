// Package sheet reads the published campaign spreadsheet.
// The sheet is a CSV with a header row; each later row describes one hex,
// in spiral order. The row position is the only key.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names the board reads. Other columns are carried through untouched.
const (
	ColTerrain    = "terrain"
	ColVisibility = "visibility"
	ColNotes      = "notes"
)

// Record is one data row of the sheet.
type Record struct {
	Row    int               `json:"row"` // 0-based, header excluded
	Fields map[string]string `json:"fields"`
}

// Get returns a field by header name, ignoring case.
func (r Record) Get(name string) string {
	if v, ok := r.Fields[name]; ok {
		return v
	}
	for k, v := range r.Fields {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// Terrain returns the raw terrain label.
func (r Record) Terrain() string {
	return r.Get(ColTerrain)
}

// Notes returns the free-text notes.
func (r Record) Notes() string {
	return r.Get(ColNotes)
}

// Visible reports whether players may see the hex. Blank means hidden.
func (r Record) Visible() bool {
	switch strings.ToLower(strings.TrimSpace(r.Get(ColVisibility))) {
	case "visible", "revealed", "shown", "true", "yes", "y", "1":
		return true
	}
	return false
}

// Parse reads a CSV export. Header names and values are trimmed; short rows
// are padded with empty values and surplus cells are dropped.
// Rows whose cells are all empty are kept: dropping them would shift every
// later row onto the wrong hex. Fully empty lines carry no cells and are
// skipped by the CSV reader.
func Parse(src io.Reader) ([]Record, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []Record
	for {
		cols, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records), err)
		}

		fields := make(map[string]string, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			value := ""
			if i < len(cols) {
				value = strings.TrimSpace(cols[i])
			}
			fields[key] = value
		}
		records = append(records, Record{Row: len(records), Fields: fields})
	}
	return records, nil
}
