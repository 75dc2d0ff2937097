package engine

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// EXECUTOR TESTS
// ============================================================================

// loopRows returns two rows per iteration 0–7 with early mean 0.5 and late mean 0.25.
func loopRows() []Row {
	edits := map[int][2]float64{
		0: {1.0, 0.8}, 1: {0.75, 0.25}, 2: {0.5, 0.5}, 3: {0.6, 0.4},
		4: {0.4, 0.3}, 5: {0.3, 0.3}, 6: {0.375, 0.125}, 7: {0.25, 0.25},
	}
	var rows []Row
	for it := 0; it <= 7; it++ {
		rows = append(rows,
			Row{Iteration: it, EditChange: Value(edits[it][0]), NgramNovelty: Value(0.9 - 0.1*float64(it)), Model: "a"},
			Row{Iteration: it, EditChange: Value(edits[it][1]), NgramNovelty: Value(0.9 - 0.1*float64(it)), Model: "b"},
		)
	}
	return rows
}

func TestExecute(t *testing.T) {
	res, err := Execute(NewRowView(loopRows()))
	require.NoError(t, err)

	assert.Equal(t, 16, res.RowCount)
	assert.Equal(t, 16, res.FilteredCount)
	assert.Len(t, res.Points, 8)
	assert.InDelta(t, 0.5, res.Summary.Early.MeanDeltaI, 1e-12)
	assert.InDelta(t, 0.25, res.Summary.Late.MeanDeltaI, 1e-12)
	assert.InDelta(t, 50.0, res.Summary.ReductionPercent, 1e-9)

	charts := res.Charts()
	require.Len(t, charts, 2)
	assert.Equal(t, DefaultDeltaIFile, charts[0].FileName)
	assert.Equal(t, DefaultNoveltyFile, charts[1].FileName)
	assert.Len(t, res.Table.Rows, 8)
}

func TestExecuteFilters(t *testing.T) {
	res, err := Execute(NewRowView(loopRows()), WithFilters(NewFilters([]string{"A"}, nil)))
	require.NoError(t, err)

	assert.Equal(t, 8, res.FilteredCount)
	assert.InDelta(t, 0.625, res.Summary.Early.MeanDeltaI, 1e-12)
	assert.InDelta(t, 0.3125, res.Summary.Late.MeanDeltaI, 1e-12)
}

func TestExecuteNoData(t *testing.T) {
	_, err := Execute(NewRowView(nil))
	assert.True(t, errors.Is(err, ErrNoData))

	_, err = Execute(NewRowView(loopRows()), WithFilters(NewFilters([]string{"missing"}, nil)))
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestExecuteMissingWindow(t *testing.T) {
	_, err := Execute(NewRowView(loopRows()), WithWindows(Window{Name: "early", Iterations: []int{1, 2}}, Window{Name: "late", Iterations: []int{8, 9}}))
	assert.True(t, errors.Is(err, ErrMissingIterations))
}

func TestExecuteCustomWindows(t *testing.T) {
	res, err := Execute(NewRowView(loopRows()), WithWindows(
		Window{Name: "start", Iterations: []int{0}},
		Window{Name: "end", Iterations: []int{7}},
	))
	require.NoError(t, err)
	assert.InDelta(t, 0.9, res.Summary.Early.MeanDeltaI, 1e-12)
	assert.InDelta(t, 0.25, res.Summary.Late.MeanDeltaI, 1e-12)
}
