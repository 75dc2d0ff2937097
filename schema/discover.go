package schema

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ============================================================================
// HEADER DISCOVERY — Match a CSV header against the schema
// ============================================================================
// Pipeline:
//   1. Read the header row only
//   2. Normalize names ("Edit Change" → "edit_change")
//   3. Classify each column as known (key/measure/dimension) or skipped
//   4. Report required columns that are absent
// ============================================================================

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrEmptyHeader is returned for input without a header row.
	ErrEmptyHeader = errors.New("CSV has no header")
)

// Discovery is the result of matching a header against a Config.
type Discovery struct {
	Headers []string        `json:"headers"` // normalized, in file order
	Matched []ColumnMeta    `json:"matched"`
	Missing []string        `json:"missing,omitempty"`
	Skipped []SkippedColumn `json:"skipped,omitempty"`
}

// DiscoverFromCSV reads the header of data and matches it against sch.
// It does not fail on missing columns; call Validate for that.
func DiscoverFromCSV(data []byte, sch Config) (*Discovery, error) {
	reader := csv.NewReader(strings.NewReader(string(data)))

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyHeader
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV header")
	}

	return DiscoverFromHeader(headers, sch), nil
}

// DiscoverFromHeader classifies already-read header columns.
func DiscoverFromHeader(headers []string, sch Config) *Discovery {
	d := &Discovery{Headers: make([]string, len(headers))}

	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		key := NormalizeHeader(h)
		d.Headers[i] = key

		if seen[key] {
			d.Skipped = append(d.Skipped, SkippedColumn{Column: h, Reason: "duplicate column"})
			continue
		}
		seen[key] = true

		if col, ok := sch.Column(key); ok {
			d.Matched = append(d.Matched, col)
		} else if key != "" {
			d.Skipped = append(d.Skipped, SkippedColumn{Column: h, Reason: "not used by aggregation"})
		}
	}

	d.Missing = lo.Filter(sch.RequiredKeys(), func(key string, _ int) bool { return !seen[key] })
	return d
}

// Validate fails with ErrMissingColumn naming every absent required column.
func (d *Discovery) Validate() error {
	if len(d.Missing) == 0 {
		return nil
	}
	return errors.Wrapf(ErrMissingColumn, "%s (found: %s)",
		strings.Join(d.Missing, ", "), strings.Join(d.Headers, ", "))
}

// Has reports whether the header carries key.
func (d *Discovery) Has(key string) bool {
	return lo.Contains(d.Headers, key)
}

// NormalizeHeader converts "Edit Change" → "edit_change".
// A UTF-8 byte order mark on the first column is dropped.
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
