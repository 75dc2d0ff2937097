package schema

import (
	"github.com/samber/lo"

	"github.com/spektr-org/mirrorloop/engine"
)

// ============================================================================
// SCHEMA — Describes the columns of a Mirror Loop results file
// ============================================================================
// The loader validates a CSV header against Config before decoding any row,
// so a file lacking a required column fails with that column's name instead
// of surfacing later as an aggregation error.
// ============================================================================

// Role classifies a column.
type Role string

const (
	RoleKey       Role = "key"       // grouping key (iteration)
	RoleMeasure   Role = "measure"   // averaged per iteration
	RoleDimension Role = "dimension" // categorical label, usable as a filter
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Columns     []ColumnMeta `json:"columns"`
}

// ColumnMeta describes one expected column.
type ColumnMeta struct {
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	Role        Role   `json:"role"`
	Required    bool   `json:"required"`
}

// SkippedColumn records a header column the schema does not know.
type SkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Default returns the schema of mirror_loop_results_all.csv.
func Default() Config {
	return Config{
		Name:        "Mirror Loop results",
		Description: "Per-iteration edit distance and n-gram novelty, one row per model/condition",
		Columns: []ColumnMeta{
			{Key: engine.ColIteration, DisplayName: "Iteration", Role: RoleKey, Required: true,
				Description: "Ordinal step of the refinement loop"},
			{Key: engine.ColEditChange, DisplayName: "ΔI", Role: RoleMeasure, Required: true,
				Description: "Normalized edit distance between successive outputs"},
			{Key: engine.ColNgramNovelty, DisplayName: "3-gram novelty", Role: RoleMeasure, Required: true,
				Description: "Share of unseen length-3 token sequences"},
			{Key: engine.ColModel, DisplayName: "Model", Role: RoleDimension},
			{Key: engine.ColCondition, DisplayName: "Condition", Role: RoleDimension},
		},
	}
}

// Column returns the metadata for key.
func (c Config) Column(key string) (ColumnMeta, bool) {
	return lo.Find(c.Columns, func(col ColumnMeta) bool { return col.Key == key })
}

// RequiredKeys returns the keys every input must carry.
func (c Config) RequiredKeys() []string {
	return keysWhere(c.Columns, func(col ColumnMeta) bool { return col.Required })
}

func keysWhere(cols []ColumnMeta, pred func(ColumnMeta) bool) []string {
	keys := make([]string, 0, len(cols))
	for _, col := range cols {
		if pred(col) {
			keys = append(keys, col.Key)
		}
	}
	return keys
}
