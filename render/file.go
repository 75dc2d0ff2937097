package render

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/spektr-org/mirrorloop/engine"
	"github.com/spektr-org/mirrorloop/internal/logging"
)

// Figure is a chart written to disk.
type Figure struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// Renderer writes charts as PNG files under Dir.
type Renderer struct {
	Fs      afero.Fs
	Dir     string
	Options Options
}

// NewRenderer creates a Renderer writing into dir on fs.
func NewRenderer(fs afero.Fs, dir string, opts Options) *Renderer {
	return &Renderer{Fs: fs, Dir: dir, Options: opts}
}

// Save renders one chart to Dir/cfg.FileName.
func (r *Renderer) Save(ctx context.Context, cfg *engine.ChartConfig) (Figure, error) {
	figures, err := r.SaveAll(ctx, cfg)
	if err != nil {
		return Figure{}, err
	}
	return figures[0], nil
}

// SaveAll encodes every chart in memory first and only then writes the
// files, so a chart that fails to render leaves no figure behind. Dir is
// created if absent; existing files are truncated.
func (r *Renderer) SaveAll(ctx context.Context, charts ...*engine.ChartConfig) ([]Figure, error) {
	log := logging.FromContext(ctx)

	encoded := make([][]byte, len(charts))
	for i, cfg := range charts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, ErrEmptyChart
		}
		var buf bytes.Buffer
		if err := Render(cfg, &buf, r.Options); err != nil {
			return nil, errors.Wrapf(err, "render %s", cfg.FileName)
		}
		encoded[i] = buf.Bytes()
	}

	if err := r.Fs.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create %s", r.Dir)
	}

	figures := make([]Figure, 0, len(charts))
	for i, cfg := range charts {
		path := filepath.Join(r.Dir, cfg.FileName)
		if err := afero.WriteFile(r.Fs, path, encoded[i], 0o644); err != nil {
			return figures, errors.Wrapf(err, "write %s", path)
		}
		log.Debug("Wrote figure", "path", path, "size", humanize.Bytes(uint64(len(encoded[i]))))
		figures = append(figures, Figure{Name: cfg.FileName, Path: path, Bytes: int64(len(encoded[i]))})
	}
	return figures, nil
}

// Names returns the file names of figures.
func Names(figures []Figure) []string {
	names := make([]string, len(figures))
	for i, f := range figures {
		names[i] = f.Name
	}
	return names
}
