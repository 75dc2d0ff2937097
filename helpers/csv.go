package helpers

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/spektr-org/mirrorloop/engine"
	"github.com/spektr-org/mirrorloop/schema"
)

// ============================================================================
// CSV HELPER — Parses Mirror Loop results into []engine.Row
// ============================================================================
// Consumer reads the CSV from wherever it lives (disk, afero, embedded).
// The header is validated against the schema first; rows are then decoded
// by column name with gocsv, so column order does not matter.
// ============================================================================

var (
	// ErrMalformedRow is returned when a data row cannot be converted.
	ErrMalformedRow = errors.New("malformed row")
	// ErrNoRows is returned for a header-only file.
	ErrNoRows = errors.New("CSV has no data rows")
)

// csvRow is the by-name decoding target. Cells stay strings so that empty
// and NaN measurements can be told apart from zero.
type csvRow struct {
	Iteration    string `csv:"iteration"`
	EditChange   string `csv:"edit_change"`
	NgramNovelty string `csv:"ngram_novelty"`
	Model        string `csv:"model"`
	Condition    string `csv:"condition"`
}

// ParseCSV parses CSV bytes into Rows, failing fast on a missing required
// column or an unparsable cell.
func ParseCSV(data []byte, sch schema.Config) ([]engine.Row, error) {
	disc, err := schema.DiscoverFromCSV(data, sch)
	if err != nil {
		return nil, err
	}
	if err := disc.Validate(); err != nil {
		return nil, err
	}

	var raw []csvRow
	reader := &normalizedReader{r: csv.NewReader(bytes.NewReader(data))}
	if err := gocsv.UnmarshalCSV(reader, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode CSV rows")
	}
	if len(raw) == 0 {
		return nil, ErrNoRows
	}

	rows := make([]engine.Row, 0, len(raw))
	for i, r := range raw {
		row, err := r.toRow()
		if err != nil {
			return nil, errors.Wrapf(err, "data row %d", i+1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r csvRow) toRow() (engine.Row, error) {
	it, err := ParseIteration(r.Iteration)
	if err != nil {
		return engine.Row{}, err
	}
	edit, err := engine.ParseMeasurement(r.EditChange)
	if err != nil {
		return engine.Row{}, errors.Wrapf(ErrMalformedRow, "%s %q is not a number", engine.ColEditChange, r.EditChange)
	}
	novelty, err := engine.ParseMeasurement(r.NgramNovelty)
	if err != nil {
		return engine.Row{}, errors.Wrapf(ErrMalformedRow, "%s %q is not a number", engine.ColNgramNovelty, r.NgramNovelty)
	}
	return engine.Row{
		Iteration:    it,
		EditChange:   edit,
		NgramNovelty: novelty,
		Model:        strings.TrimSpace(r.Model),
		Condition:    strings.TrimSpace(r.Condition),
	}, nil
}

// ParseIteration accepts "3" and integral floats such as "3.0".
// Iterations must be non-negative and fit in an int32.
func ParseIteration(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Wrapf(ErrMalformedRow, "%s is empty", engine.ColIteration)
	}

	it, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if (ferr != nil && !errors.Is(ferr, strconv.ErrRange)) || f != math.Trunc(f) {
			return 0, errors.Wrapf(ErrMalformedRow, "%s %q is not an integer", engine.ColIteration, s)
		}
		if f > math.MaxInt32 {
			return 0, errors.Wrapf(ErrMalformedRow, "%s %q is out of range", engine.ColIteration, s)
		}
		if f < 0 {
			return 0, errors.Wrapf(ErrMalformedRow, "%s %s is negative", engine.ColIteration, s)
		}
		it = int(f)
	}
	if it < 0 {
		return 0, errors.Wrapf(ErrMalformedRow, "%s %d is negative", engine.ColIteration, it)
	}
	if it > math.MaxInt32 {
		return 0, errors.Wrapf(ErrMalformedRow, "%s %q is out of range", engine.ColIteration, s)
	}
	return it, nil
}

// normalizedReader rewrites the header row to schema keys
// ("Edit Change" → "edit_change") before gocsv matches struct tags.
// Repeated names become "edit_change.1", "edit_change.2", ... so the
// first occurrence is the one decoded, as discovery reports.
type normalizedReader struct {
	r          *csv.Reader
	headerDone bool
}

func (n *normalizedReader) Read() ([]string, error) {
	rec, err := n.r.Read()
	if err != nil {
		return nil, err
	}
	if !n.headerDone {
		n.headerDone = true
		seen := make(map[string]int, len(rec))
		for i := range rec {
			key := schema.NormalizeHeader(rec[i])
			if k := seen[key]; k > 0 {
				rec[i] = key + "." + strconv.Itoa(k)
			} else {
				rec[i] = key
			}
			seen[key]++
		}
	}
	return rec, nil
}

func (n *normalizedReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		rec, err := n.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, rec)
	}
}
