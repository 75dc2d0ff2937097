package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/spektr-org/mirrorloop/dataset"
	"github.com/spektr-org/mirrorloop/engine"
	"github.com/spektr-org/mirrorloop/internal/config"
	"github.com/spektr-org/mirrorloop/internal/logging"
	"github.com/spektr-org/mirrorloop/render"
)

// Runner executes one load → aggregate → summarize → plot → report pass.
type Runner struct {
	Fs       afero.Fs
	Out      io.Writer
	Config   *config.Config
	Provider dataset.Provider // nil: CSV at Config.Data.Path with synthetic fallback
	NewID    func() string    // nil: random UUID
}

// Report is everything one run produced.
type Report struct {
	RunID   string
	Dataset *dataset.Dataset
	Result  *engine.Result
	Figures []render.Figure
}

// Run performs the pass. The summary is computed before any figure is
// written; on error nothing beyond the status line has been emitted.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	cfg := r.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := logging.FromContext(ctx)

	report := &Report{RunID: r.newID()}

	// ── Load ─────────────────────────────────────────────────────────────
	provider := r.Provider
	if provider == nil {
		provider = DefaultProvider(r.Fs, cfg)
	}
	ds, err := provider.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load dataset")
	}
	report.Dataset = ds

	if cfg.Output.Format == "text" {
		fmt.Fprintln(r.Out, ds.Notice)
	}
	log.Info(ds.Notice, "source", string(ds.Source), "rows", len(ds.Rows))

	// ── Aggregate + summarize ────────────────────────────────────────────
	result, err := engine.Execute(engine.NewRowView(ds.Rows), EngineOptions(cfg)...)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate")
	}
	report.Result = result

	// ── Plot ─────────────────────────────────────────────────────────────
	renderer := render.NewRenderer(r.Fs, cfg.Figures.Dir, render.Options{
		Width:  cfg.Figures.Width,
		Height: cfg.Figures.Height,
		DPI:    cfg.Figures.DPI,
	})
	figures, err := renderer.SaveAll(ctx, result.Charts()...)
	if err != nil {
		return nil, errors.Wrap(err, "save figures")
	}
	report.Figures = figures
	log.Info("Wrote figures", "dir", cfg.Figures.Dir, "count", len(figures))

	// ── Report ───────────────────────────────────────────────────────────
	if err := WriteReport(r.Out, report, cfg.Output.Format, cfg.Output.Table); err != nil {
		return nil, err
	}
	if cfg.Output.SummaryOut != "" {
		if err := WriteSummaryFile(r.Fs, cfg.Output.SummaryOut, report); err != nil {
			return nil, err
		}
		log.Info("Wrote summary", "path", cfg.Output.SummaryOut)
	}

	return report, nil
}

// DefaultProvider reads the configured CSV and falls back to synthetic rows.
func DefaultProvider(fs afero.Fs, cfg *config.Config) dataset.Provider {
	syn := dataset.NewSyntheticProvider(cfg.Synthetic.Seed)
	syn.Count = cfg.Synthetic.Count
	syn.NoiseStdDev = cfg.Synthetic.NoiseStdDev
	syn.EditDecay = cfg.Synthetic.EditDecay
	syn.NoveltyDecay = cfg.Synthetic.NoveltyDecay

	return &dataset.FallbackProvider{
		Primary:  dataset.NewFileProvider(fs, cfg.Data.Path),
		Fallback: syn,
	}
}

// EngineOptions maps configuration onto engine options.
func EngineOptions(cfg *config.Config) []engine.Option {
	return []engine.Option{
		engine.WithWindows(
			engine.Window{Name: engine.DefaultEarlyWindow.Name, Iterations: cfg.Summary.EarlyIterations},
			engine.Window{Name: engine.DefaultLateWindow.Name, Iterations: cfg.Summary.LateIterations},
		),
		engine.WithReferenceLine(cfg.Summary.ReferenceIteration, cfg.Summary.ReferenceLabel),
		engine.WithFilters(engine.NewFilters(cfg.Filters.Models, cfg.Filters.Conditions)),
		engine.WithFileNames(cfg.Figures.DeltaIFile, cfg.Figures.NoveltyFile),
		engine.WithColors(cfg.Figures.DeltaIColor, cfg.Figures.NoveltyColor),
	}
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.NewString()
}
