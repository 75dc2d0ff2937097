package cli

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/mirrorloop/engine"
	"github.com/spektr-org/mirrorloop/render"
)

// ============================================================================
// OUTPUT TYPES
// ============================================================================

// summaryDocument is the structured form of a run for --format json|yaml
// and --summary-out. Undefined means are null.
type summaryDocument struct {
	RunID            string          `json:"runId" yaml:"runId"`
	Source           string          `json:"source" yaml:"source"`
	Origin           string          `json:"origin" yaml:"origin"`
	Rows             int             `json:"rows" yaml:"rows"`
	FilteredRows     int             `json:"filteredRows" yaml:"filteredRows"`
	Points           []pointDocument `json:"points" yaml:"points"`
	Early            windowDocument  `json:"early" yaml:"early"`
	Late             windowDocument  `json:"late" yaml:"late"`
	ReductionPercent float64         `json:"reductionPercent" yaml:"reductionPercent"`
	Figures          []render.Figure `json:"figures" yaml:"figures"`
}

type pointDocument struct {
	Iteration    int      `json:"iteration" yaml:"iteration"`
	Rows         int      `json:"rows" yaml:"rows"`
	DeltaI       *float64 `json:"delta_I" yaml:"delta_I"`
	DeltaIStdDev *float64 `json:"delta_I_stddev,omitempty" yaml:"delta_I_stddev,omitempty"`
	NgramNovelty *float64 `json:"ngram_novelty" yaml:"ngram_novelty"`
}

type windowDocument struct {
	Name       string  `json:"name" yaml:"name"`
	Iterations []int   `json:"iterations" yaml:"iterations"`
	MeanDeltaI float64 `json:"meanDeltaI" yaml:"meanDeltaI"`
}

func newSummaryDocument(rep *Report) summaryDocument {
	res := rep.Result
	doc := summaryDocument{
		RunID:            rep.RunID,
		Source:           string(rep.Dataset.Source),
		Origin:           rep.Dataset.Origin,
		Rows:             res.RowCount,
		FilteredRows:     res.FilteredCount,
		Points:           make([]pointDocument, 0, len(res.Points)),
		Early:            newWindowDocument(res.Summary.Early),
		Late:             newWindowDocument(res.Summary.Late),
		ReductionPercent: res.Summary.ReductionPercent,
		Figures:          rep.Figures,
	}
	for _, p := range res.Points {
		pd := pointDocument{
			Iteration:    p.Iteration,
			Rows:         p.Count,
			DeltaI:       finite(p.DeltaI),
			NgramNovelty: finite(p.NgramNovelty),
		}
		if p.DeltaICount > 1 {
			pd.DeltaIStdDev = finite(p.DeltaIStdDev)
		}
		doc.Points = append(doc.Points, pd)
	}
	return doc
}

func newWindowDocument(ws engine.WindowStat) windowDocument {
	return windowDocument{Name: ws.Window.Name, Iterations: ws.Window.Iterations, MeanDeltaI: ws.MeanDeltaI}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ============================================================================
// CONSOLE OUTPUT
// ============================================================================

// WriteReport prints the run in the requested format.
func WriteReport(w io.Writer, rep *Report, format string, table bool) error {
	switch format {
	case "json", "yaml":
		out, err := marshalSummary(newSummaryDocument(rep), format)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		if table {
			if err := writeTable(w, rep.Result.Table); err != nil {
				return err
			}
		}
		for _, line := range engine.SummaryLines(rep.Result.Summary, render.Names(rep.Figures)) {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeTable(w io.Writer, t *engine.TableData) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t")+"\t")
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}

// ============================================================================
// SUMMARY FILE
// ============================================================================

// WriteSummaryFile writes the structured summary; the format follows the
// file extension (.json, .yaml, .yml).
func WriteSummaryFile(fs afero.Fs, path string, rep *Report) error {
	format := "json"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}

	out, err := marshalSummary(newSummaryDocument(rep), format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return errors.Wrapf(afero.WriteFile(fs, path, out, 0o644), "write %s", path)
}

func marshalSummary(doc summaryDocument, format string) ([]byte, error) {
	if format == "yaml" {
		out, err := yaml.Marshal(doc)
		return out, errors.Wrap(err, "marshal yaml summary")
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal json summary")
	}
	return append(out, '\n'), nil
}
