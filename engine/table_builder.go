package engine

import (
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from aggregated Points
// ============================================================================

// BuildTable produces the per-iteration aggregate table.
func BuildTable(points []Point) *TableData {
	columns := []Column{
		{Key: ColIteration, Label: "Iteration", Align: "right"},
		{Key: "rows", Label: "Rows", Align: "right"},
		{Key: "delta_I", Label: "ΔI", Align: "right"},
		{Key: "delta_I_stddev", Label: "σ(ΔI)", Align: "right"},
		{Key: ColNgramNovelty, Label: "Novelty", Align: "right"},
	}

	rows := make([][]string, 0, len(points))
	for _, p := range points {
		stddev := "—"
		if p.DeltaICount > 1 {
			stddev = FormatFixed(p.DeltaIStdDev, 3)
		}
		rows = append(rows, []string{
			strconv.Itoa(p.Iteration),
			strconv.Itoa(p.Count),
			FormatFixed(p.DeltaI, 3),
			stddev,
			FormatFixed(p.NgramNovelty, 3),
		})
	}

	return &TableData{
		Title:   "Pooled metrics by iteration",
		Columns: columns,
		Rows:    rows,
	}
}
