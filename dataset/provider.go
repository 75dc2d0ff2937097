// Package dataset supplies Mirror Loop rows, either from the cached results
// CSV or, when that file is absent, from a small synthetic curve.
package dataset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/spektr-org/mirrorloop/engine"
	"github.com/spektr-org/mirrorloop/helpers"
	"github.com/spektr-org/mirrorloop/internal/logging"
	"github.com/spektr-org/mirrorloop/schema"
)

// Source tells where a Dataset came from.
type Source string

const (
	SourceFile      Source = "file"
	SourceSynthetic Source = "synthetic"
)

// SyntheticNotice is printed when the fallback data is used.
const SyntheticNotice = "⚠️  CSV not found. Using synthetic demo data."

// ErrNotFound is returned by FileProvider when the CSV does not exist.
var ErrNotFound = errors.New("dataset file not found")

// Dataset is a loaded set of rows plus a human-readable status line.
type Dataset struct {
	Rows   []engine.Row
	Source Source
	Origin string // file path, or "synthetic"
	Notice string
}

// Provider supplies rows for one run.
type Provider interface {
	Load(ctx context.Context) (*Dataset, error)
}

// ============================================================================
// FILE PROVIDER
// ============================================================================

// FileProvider reads a results CSV through an afero filesystem.
type FileProvider struct {
	Fs     afero.Fs
	Path   string
	Schema schema.Config
}

// NewFileProvider creates a FileProvider using the default schema.
func NewFileProvider(fs afero.Fs, path string) *FileProvider {
	return &FileProvider{Fs: fs, Path: path, Schema: schema.Default()}
}

// Exists reports whether the CSV is present.
func (p *FileProvider) Exists() (bool, error) {
	ok, err := afero.Exists(p.Fs, p.Path)
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", p.Path)
	}
	if !ok {
		return false, nil
	}
	isDir, err := afero.IsDir(p.Fs, p.Path)
	if err != nil {
		return false, errors.Wrapf(err, "stat %s", p.Path)
	}
	if isDir {
		return false, errors.Errorf("%s is a directory", p.Path)
	}
	return true, nil
}

// Load reads and parses the CSV. The file is read whole and closed before parsing.
func (p *FileProvider) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ok, err := p.Exists()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(ErrNotFound, p.Path)
	}

	data, err := afero.ReadFile(p.Fs, p.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", p.Path)
	}

	rows, err := helpers.ParseCSV(data, p.Schema)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", p.Path)
	}

	logging.FromContext(ctx).Debug("Loaded dataset", "path", p.Path, "rows", len(rows), "bytes", len(data))

	return &Dataset{
		Rows:   rows,
		Source: SourceFile,
		Origin: p.Path,
		Notice: fmt.Sprintf("✓ Loaded %d rows from %s", len(rows), filepath.Base(p.Path)),
	}, nil
}

// ============================================================================
// FALLBACK PROVIDER
// ============================================================================

// FallbackProvider uses Primary when its file exists and Fallback otherwise.
// A missing file is not an error; a present but malformed file is.
type FallbackProvider struct {
	Primary  *FileProvider
	Fallback Provider
}

// Load implements Provider.
func (p *FallbackProvider) Load(ctx context.Context) (*Dataset, error) {
	ok, err := p.Primary.Exists()
	if err != nil {
		return nil, err
	}
	if ok {
		return p.Primary.Load(ctx)
	}

	logging.FromContext(ctx).Warn("Dataset not found, using synthetic data", "path", p.Primary.Path)
	return p.Fallback.Load(ctx)
}
