package dataset

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/spektr-org/mirrorloop/engine"
)

// SyntheticProvider generates a decaying demo curve:
//
//	edit_change(i)   = exp(-i/EditDecay)    + N(0, NoiseStdDev)
//	ngram_novelty(i) = exp(-i/NoveltyDecay) + N(0, NoiseStdDev)
//
// for i in [0, Count). Rand is injectable so tests get fixed output.
type SyntheticProvider struct {
	Count        int
	NoiseStdDev  float64
	EditDecay    float64
	NoveltyDecay float64
	Rand         *rand.Rand
}

// NewSyntheticProvider returns the canonical 8-iteration generator.
// A zero seed seeds from the clock.
func NewSyntheticProvider(seed int64) *SyntheticProvider {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SyntheticProvider{
		Count:        8,
		NoiseStdDev:  0.05,
		EditDecay:    3,
		NoveltyDecay: 2.5,
		Rand:         rand.New(rand.NewSource(seed)),
	}
}

// Load implements Provider.
func (p *SyntheticProvider) Load(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Dataset{
		Rows:   p.Rows(),
		Source: SourceSynthetic,
		Origin: string(SourceSynthetic),
		Notice: SyntheticNotice,
	}, nil
}

// Rows generates Count rows, one per iteration. All edit noise is drawn
// before any novelty noise.
func (p *SyntheticProvider) Rows() []engine.Row {
	r := p.Rand
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	rows := make([]engine.Row, p.Count)
	for i := range rows {
		rows[i].Iteration = i
		rows[i].EditChange = engine.Value(math.Exp(-float64(i)/p.EditDecay) + r.NormFloat64()*p.NoiseStdDev)
	}
	for i := range rows {
		rows[i].NgramNovelty = engine.Value(math.Exp(-float64(i)/p.NoveltyDecay) + r.NormFloat64()*p.NoiseStdDev)
	}
	return rows
}
