package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/mirrorloop/dataset"
	"github.com/spektr-org/mirrorloop/engine"
	"github.com/spektr-org/mirrorloop/internal/config"
)

// ============================================================================
// RUN TESTS
// ============================================================================

// Two models per iteration 0–7: early (1–2) mean ΔI 0.5, late (6–7) 0.25.
const resultsCSV = `iteration,model,condition,edit_change,ngram_novelty
0,a,ungrounded,1.0,0.9
0,b,ungrounded,0.8,0.9
1,a,ungrounded,0.75,0.8
1,b,ungrounded,0.25,0.8
2,a,ungrounded,0.5,0.7
2,b,ungrounded,0.5,0.7
3,a,grounded,0.6,0.6
3,b,grounded,0.4,0.6
4,a,ungrounded,0.4,0.5
4,b,ungrounded,0.3,0.5
5,a,ungrounded,0.3,0.4
5,b,ungrounded,0.3,0.4
6,a,ungrounded,0.375,0.3
6,b,ungrounded,0.125,0.3
7,a,ungrounded,0.25,0.2
7,b,ungrounded,0.25,0.2
`

func newGolden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func newTestRunner(t *testing.T, csv string) (*Runner, afero.Fs, *bytes.Buffer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	cfg := config.DefaultConfig()
	if csv != "" {
		require.NoError(t, afero.WriteFile(fs, cfg.Data.Path, []byte(csv), 0o644))
	}
	out := &bytes.Buffer{}
	return &Runner{
		Fs:     fs,
		Out:    out,
		Config: cfg,
		NewID:  func() string { return "run-1" },
	}, fs, out
}

func assertFigures(t *testing.T, fs afero.Fs) {
	t.Helper()
	for _, name := range []string{engine.DefaultDeltaIFile, engine.DefaultNoveltyFile} {
		data, err := afero.ReadFile(fs, filepath.Join("figures", name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), name)
	}
}

func TestRunText(t *testing.T) {
	r, fs, out := newTestRunner(t, resultsCSV)

	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	newGolden(t).Assert(t, "run_text", out.Bytes())
	assert.Equal(t, dataset.SourceFile, rep.Dataset.Source)
	assert.Len(t, rep.Figures, 2)
	assertFigures(t, fs)
}

func TestRunTable(t *testing.T) {
	r, _, out := newTestRunner(t, resultsCSV)
	r.Config.Output.Table = true

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	newGolden(t).Assert(t, "run_table", out.Bytes())
}

func TestRunIsIdempotent(t *testing.T) {
	r, fs, out := newTestRunner(t, resultsCSV)

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	first := out.String()
	firstPNG, err := afero.ReadFile(fs, filepath.Join("figures", engine.DefaultDeltaIFile))
	require.NoError(t, err)

	out.Reset()
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	secondPNG, err := afero.ReadFile(fs, filepath.Join("figures", engine.DefaultDeltaIFile))
	require.NoError(t, err)

	assert.Equal(t, first, out.String())
	assert.Equal(t, firstPNG, secondPNG)
}

func TestRunSyntheticFallback(t *testing.T) {
	r, fs, out := newTestRunner(t, "")
	r.Config.Synthetic.Seed = 42

	rep, err := r.Run(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, dataset.SyntheticNotice, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Mean ΔI early (1–2): "))
	assert.True(t, strings.HasPrefix(lines[2], "Mean ΔI late  (6–7): "))
	assert.True(t, strings.HasPrefix(lines[3], "Reduction: "))
	assert.Equal(t, "Wrote figures to: fig_mirrorloop_curve.png, fig_novelty_curve.png", lines[4])

	assert.Equal(t, dataset.SourceSynthetic, rep.Dataset.Source)
	assert.Len(t, rep.Result.Points, 8)
	assertFigures(t, fs)
}

func TestRunMissingIterationsWritesNoFigures(t *testing.T) {
	var kept []string
	for _, line := range strings.Split(resultsCSV, "\n") {
		if strings.HasPrefix(line, "6,") || strings.HasPrefix(line, "7,") {
			continue
		}
		kept = append(kept, line)
	}
	r, fs, _ := newTestRunner(t, strings.Join(kept, "\n"))

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrMissingIterations))

	ok, err := afero.DirExists(fs, "figures")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunMalformedCSV(t *testing.T) {
	r, fs, _ := newTestRunner(t, "iteration,edit_change,ngram_novelty\n1,x,0.5\n")

	_, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load dataset")

	ok, _ := afero.DirExists(fs, "figures")
	assert.False(t, ok)
}

func TestRunFilters(t *testing.T) {
	r, _, _ := newTestRunner(t, resultsCSV)
	r.Config.Filters.Models = []string{"A"}

	rep, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, rep.Result.FilteredCount)
	assert.InDelta(t, 0.625, rep.Result.Summary.Early.MeanDeltaI, 1e-12)
}

func TestRunJSON(t *testing.T) {
	r, _, out := newTestRunner(t, resultsCSV)
	r.Config.Output.Format = "json"

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	var doc summaryDocument
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, "file", doc.Source)
	assert.Equal(t, 16, doc.Rows)
	assert.Len(t, doc.Points, 8)
	assert.InDelta(t, 0.5, doc.Early.MeanDeltaI, 1e-12)
	assert.InDelta(t, 0.25, doc.Late.MeanDeltaI, 1e-12)
	assert.InDelta(t, 50.0, doc.ReductionPercent, 1e-9)
	require.Len(t, doc.Figures, 2)
	assert.Equal(t, engine.DefaultDeltaIFile, doc.Figures[0].Name)
}

func TestRunSummaryFile(t *testing.T) {
	r, fs, out := newTestRunner(t, resultsCSV)
	r.Config.Output.SummaryOut = "reports/summary.yaml"

	_, err := r.Run(context.Background())
	require.NoError(t, err)
	newGolden(t).Assert(t, "run_text", out.Bytes())

	data, err := afero.ReadFile(fs, "reports/summary.yaml")
	require.NoError(t, err)

	var doc summaryDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "run-1", doc.RunID)
	assert.Equal(t, []int{6, 7}, doc.Late.Iterations)
	assert.InDelta(t, 50.0, doc.ReductionPercent, 1e-9)
}

func TestSummaryDocumentNullsUndefinedMeans(t *testing.T) {
	rows := []engine.Row{
		{Iteration: 1, EditChange: engine.Value(0.5), NgramNovelty: engine.Missing()},
		{Iteration: 2, EditChange: engine.Value(0.5), NgramNovelty: engine.Value(0.4)},
		{Iteration: 6, EditChange: engine.Value(0.2), NgramNovelty: engine.Value(0.3)},
		{Iteration: 7, EditChange: engine.Value(0.2), NgramNovelty: engine.Value(0.2)},
	}
	res, err := engine.Execute(engine.NewRowView(rows))
	require.NoError(t, err)

	doc := newSummaryDocument(&Report{RunID: "x", Dataset: &dataset.Dataset{Source: dataset.SourceFile}, Result: res})
	assert.Nil(t, doc.Points[0].NgramNovelty)
	assert.Nil(t, doc.Points[0].DeltaIStdDev)

	out, err := marshalSummary(doc, "json")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"ngram_novelty": null`)
}
