package engine

import (
	"github.com/pkg/errors"

	"github.com/spektr-org/mirrorloop/internal/logging"
)

// ============================================================================
// EXECUTOR — filter → aggregate → summarize → build
// ============================================================================
// Entry point: Execute(view, opts...)
//
// Pipeline:
//   1. Apply model/condition filters → SubView
//   2. Group by iteration and aggregate
//   3. Compute the early/late summary (fails on missing iterations)
//   4. Build both chart configs and the aggregate table
//
// All computation is local and in memory.
// ============================================================================

// ErrNoData is returned when no rows remain to aggregate.
var ErrNoData = errors.New("no rows to aggregate")

// Execute runs the aggregation pipeline and returns a render-ready Result.
//
// Options:
//   - WithWindows(early, late) — summary windows (default {1,2} and {6,7})
//   - WithReferenceLine(iteration, label) — grounding marker (default 3)
//   - WithFilters(f) — model/condition restriction
//   - WithFileNames / WithColors — chart presentation
func Execute(view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	log := logging.Global()

	if view.Len() == 0 {
		return nil, ErrNoData
	}

	// 1. Filter
	filtered := ApplyFilters(view, cfg.Filters)
	if filtered.Len() == 0 {
		return nil, errors.Wrapf(ErrNoData, "no rows match filters model=%v condition=%v",
			cfg.Filters.Dimensions[ColModel], cfg.Filters.Dimensions[ColCondition])
	}
	if !cfg.Filters.IsEmpty() {
		log.Debug("Applied filters",
			"rows_before", view.Len(),
			"rows_after", filtered.Len(),
			"by_model", cfg.Filters.HasFilter(ColModel),
			"by_condition", cfg.Filters.HasFilter(ColCondition))
	}

	// 2. Aggregate
	points := Aggregate(filtered)
	log.Debug("Aggregated rows by iteration", "rows", filtered.Len(), "iterations", len(points))

	// 3. Summary
	summary, err := BuildSummary(points, cfg.Early, cfg.Late)
	if err != nil {
		return nil, err
	}

	// 4. Builders
	return &Result{
		RowCount:      view.Len(),
		FilteredCount: filtered.Len(),
		Points:        points,
		Summary:       summary,
		DeltaIChart:   buildDeltaIChart(points, cfg),
		NoveltyChart:  buildNoveltyChart(points, cfg),
		Table:         BuildTable(points),
	}, nil
}
