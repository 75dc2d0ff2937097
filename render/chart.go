// Package render draws engine.ChartConfig line charts to PNG with go-chart.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart"
	"github.com/wcharczuk/go-chart/drawing"

	"github.com/spektr-org/mirrorloop/engine"
)

// ErrEmptyChart is returned for a chart without any plottable point.
var ErrEmptyChart = errors.New("chart has no data")

// Options fixes the raster size. 960×720 at 150 DPI is a 6.4×4.8in figure.
type Options struct {
	Width  int
	Height int
	DPI    float64
}

// DefaultOptions returns the 150 DPI figure size.
func DefaultOptions() Options {
	return Options{Width: 960, Height: 720, DPI: 150}
}

// Render writes cfg as a PNG to w.
func Render(cfg *engine.ChartConfig, w io.Writer, opts Options) error {
	graph, err := BuildGraph(cfg, opts)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return errors.Wrapf(err, "render %q", cfg.Title)
	}
	return nil
}

// BuildGraph translates a ChartConfig into a go-chart Chart.
func BuildGraph(cfg *engine.ChartConfig, opts Options) (chart.Chart, error) {
	if cfg == nil || !cfg.HasData() {
		return chart.Chart{}, ErrEmptyChart
	}

	xr, yr := dataRanges(cfg)

	var series []chart.Series
	for _, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		xs := make([]float64, len(s.Data))
		ys := make([]float64, len(s.Data))
		for i, p := range s.Data {
			xs[i] = p.X
			ys[i] = p.Value
		}

		color := parseColor(s.Color, 1)
		style := chart.Style{
			Show:        true,
			StrokeColor: color,
			StrokeWidth: 2,
		}
		if s.ShowDots {
			style.DotColor = color
			style.DotWidth = 4
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   style,
		})
	}

	// vertical markers span the padded y range
	for _, ref := range cfg.ReferenceLines {
		style := chart.Style{
			Show:        true,
			StrokeColor: parseColor(ref.Color, ref.Opacity),
			StrokeWidth: 1.5,
		}
		if ref.Dashed {
			style.StrokeDashArray = []float64{5.0, 5.0}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ref.Label,
			XValues: []float64{ref.X, ref.X},
			YValues: []float64{yr.Min, yr.Max},
			Style:   style,
		})
	}

	graph := chart.Chart{
		Title:      cfg.Title,
		TitleStyle: chart.StyleShow(),
		Width:      opts.Width,
		Height:     opts.Height,
		DPI:        opts.DPI,
		XAxis: chart.XAxis{
			Name:      cfg.XAxis,
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     xr,
			Ticks:     iterationTicks(xr),
		},
		YAxis: chart.YAxis{
			Name:           cfg.YAxis,
			NameStyle:      chart.StyleShow(),
			Style:          chart.StyleShow(),
			Range:          yr,
			ValueFormatter: formatTick,
		},
		Series: series,
	}

	if cfg.ShowLegend {
		graph.Elements = []chart.Renderable{
			chart.Legend(&graph),
		}
	}

	return graph, nil
}

// ============================================================================
// RANGES / TICKS
// ============================================================================

// dataRanges pads the data extent by 5% on each side so a single point or a
// flat series still has a non-zero range.
func dataRanges(cfg *engine.ChartConfig) (*chart.ContinuousRange, *chart.ContinuousRange) {
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, s := range cfg.Series {
		for _, p := range s.Data {
			xMin, xMax = math.Min(xMin, p.X), math.Max(xMax, p.X)
			yMin, yMax = math.Min(yMin, p.Value), math.Max(yMax, p.Value)
		}
	}
	for _, ref := range cfg.ReferenceLines {
		xMin, xMax = math.Min(xMin, ref.X), math.Max(xMax, ref.X)
	}

	xLo, xHi := pad(xMin, xMax)
	yLo, yHi := pad(yMin, yMax)
	return &chart.ContinuousRange{Min: xLo, Max: xHi}, &chart.ContinuousRange{Min: yLo, Max: yHi}
}

func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(lo), 1)
	}
	return lo - span*0.05, hi + span*0.05
}

// iterationTicks places integer ticks inside r, at most ~12 of them.
func iterationTicks(r *chart.ContinuousRange) []chart.Tick {
	first := int(math.Ceil(r.Min))
	last := int(math.Floor(r.Max))
	step := (last-first)/12 + 1

	var ticks []chart.Tick
	for v := first; v <= last; v += step {
		ticks = append(ticks, chart.Tick{Value: float64(v), Label: strconv.Itoa(v)})
	}
	return ticks
}

func formatTick(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return ""
}

// parseColor turns "#RRGGBB" into a drawing.Color with the given opacity.
func parseColor(hex string, opacity float64) drawing.Color {
	c := chart.ColorBlue
	if hex = strings.TrimPrefix(strings.TrimSpace(hex), "#"); len(hex) == 6 || len(hex) == 3 {
		c = drawing.ColorFromHex(hex)
	}
	if opacity > 0 && opacity < 1 {
		c.A = uint8(math.Round(255 * opacity))
	}
	return c
}
