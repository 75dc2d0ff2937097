package dataset

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/mirrorloop/engine"
	"github.com/spektr-org/mirrorloop/schema"
)

const resultsPath = "data/mirror_loop_results_all.csv"

const resultsCSV = `iteration,edit_change,ngram_novelty,model
0,0.9,0.8,a
1,0.5,0.6,a
2,0.4,0.5,a
`

func seeded(seed int64) *SyntheticProvider {
	p := NewSyntheticProvider(seed)
	p.Rand = rand.New(rand.NewSource(seed))
	return p
}

func TestFallbackUsesSyntheticWhenFileMissing(t *testing.T) {
	p := &FallbackProvider{
		Primary:  NewFileProvider(afero.NewMemMapFs(), resultsPath),
		Fallback: seeded(42),
	}

	ds, err := p.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceSynthetic, ds.Source)
	assert.Equal(t, SyntheticNotice, ds.Notice)
	require.Len(t, ds.Rows, 8)
	for i, r := range ds.Rows {
		assert.Equal(t, i, r.Iteration)
		assert.True(t, r.EditChange.Valid)
		assert.True(t, r.NgramNovelty.Valid)
	}
}

func TestFallbackUsesFileWhenPresent(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, resultsPath, []byte(resultsCSV), 0o644))

	p := &FallbackProvider{Primary: NewFileProvider(fs, resultsPath), Fallback: seeded(1)}
	ds, err := p.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceFile, ds.Source)
	assert.Equal(t, resultsPath, ds.Origin)
	assert.Equal(t, "✓ Loaded 3 rows from mirror_loop_results_all.csv", ds.Notice)
	assert.Len(t, ds.Rows, 3)
	assert.Equal(t, "a", ds.Rows[0].Model)
}

func TestFallbackMalformedFileIsAnError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, resultsPath, []byte("iteration,edit_change\n1,0.5\n"), 0o644))

	p := &FallbackProvider{Primary: NewFileProvider(fs, resultsPath), Fallback: seeded(1)}
	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrMissingColumn))
}

func TestFileProviderDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(resultsPath, 0o755))

	_, err := NewFileProvider(fs, resultsPath).Exists()
	assert.Error(t, err)
}

func TestFileProviderNotFound(t *testing.T) {
	_, err := NewFileProvider(afero.NewMemMapFs(), resultsPath).Load(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSyntheticDeterministic(t *testing.T) {
	a := seeded(7).Rows()
	b := seeded(7).Rows()
	assert.Equal(t, a, b)

	c := seeded(8).Rows()
	assert.NotEqual(t, a, c)
}

func TestSyntheticDecays(t *testing.T) {
	p := seeded(3)
	p.NoiseStdDev = 0

	rows := p.Rows()
	require.Len(t, rows, 8)
	assert.InDelta(t, 1.0, rows[0].EditChange.Value, 1e-12)
	assert.InDelta(t, 1.0, rows[0].NgramNovelty.Value, 1e-12)
	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i].EditChange.Value, rows[i-1].EditChange.Value)
		assert.Less(t, rows[i].NgramNovelty.Value, rows[i-1].NgramNovelty.Value)
	}
}

func TestSyntheticFeedsEngine(t *testing.T) {
	ds, err := seeded(42).Load(context.Background())
	require.NoError(t, err)

	res, err := engine.Execute(engine.NewRowView(ds.Rows))
	require.NoError(t, err)
	assert.Len(t, res.Points, 8)
}

func TestLoadHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := seeded(1).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
