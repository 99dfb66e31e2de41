// Package plot renders concentration trajectories, either as terminal
// line charts or as PNG/SVG figures.
package plot

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/san-kum/kinsim/internal/sim"
)

const (
	DefaultTimeUnit          = "s"
	DefaultConcentrationUnit = "M"
)

var ErrNoSeries = errors.New("plot: trajectory has no species to draw")

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Blue,
	asciigraph.Yellow,
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Orange,
	asciigraph.Purple,
}

// ASCII draws every species of traj in one terminal chart with a legend.
// Only the units of opts are used; width and height are in characters.
func ASCII(traj *sim.Trajectory, width, height int, opts Options) string {
	if len(traj.Species) == 0 || traj.Len() == 0 {
		return ""
	}

	data := make([][]float64, len(traj.Species))
	colors := make([]asciigraph.AnsiColor, len(traj.Species))
	for j, name := range traj.Species {
		data[j], _ = traj.Series(name)
		colors[j] = seriesColors[j%len(seriesColors)]
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(traj.Species...),
		asciigraph.Caption(fmt.Sprintf("%s vs %s (t = %g .. %g)",
			opts.ConcentrationLabel(), opts.TimeLabel(), traj.Times[0], traj.Times[traj.Len()-1])),
	)
}

type Format int

const (
	PNG Format = iota
	SVG
)

func (f Format) String() string {
	if f == SVG {
		return "svg"
	}
	return "png"
}

// FormatFromPath picks the figure format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".svg":
		return SVG, nil
	}
	return PNG, fmt.Errorf("plot: unsupported figure extension %q (want .png or .svg)", filepath.Ext(path))
}

// Options controls figure output. Empty units fall back to seconds and
// molar.
type Options struct {
	Title             string
	Width             int
	Height            int
	TimeUnit          string
	ConcentrationUnit string
}

func (o Options) TimeLabel() string {
	return fmt.Sprintf("Time [%s]", orDefaultUnit(o.TimeUnit, DefaultTimeUnit))
}

func (o Options) ConcentrationLabel() string {
	return fmt.Sprintf("Concentration [%s]", orDefaultUnit(o.ConcentrationUnit, DefaultConcentrationUnit))
}

func orDefaultUnit(unit, def string) string {
	if strings.TrimSpace(unit) == "" {
		return def
	}
	return unit
}

// Render draws one line per species of traj, time on the x axis.
func Render(w io.Writer, traj *sim.Trajectory, format Format, opts Options) error {
	if len(traj.Species) == 0 || traj.Len() < 2 {
		return ErrNoSeries
	}

	series := make([]chart.Series, len(traj.Species))
	for j, name := range traj.Species {
		ys, _ := traj.Series(name)
		series[j] = chart.ContinuousSeries{
			Name:    name,
			XValues: traj.Times,
			YValues: ys,
			Style:   chart.Style{StrokeColor: chart.GetDefaultColor(j), StrokeWidth: 2.0},
		}
	}

	lo, hi := valueRange(traj)
	graph := chart.Chart{
		Title:  opts.Title,
		Width:  orDefault(opts.Width, 1024),
		Height: orDefault(opts.Height, 600),
		XAxis: chart.XAxis{
			Name:  opts.TimeLabel(),
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Name:  opts.ConcentrationLabel(),
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	provider := chart.PNG
	if format == SVG {
		provider = chart.SVG
	}
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("plot: render %s: %w", format, err)
	}
	return nil
}

// valueRange pads the concentration extent so flat series still get a
// drawable axis.
func valueRange(traj *sim.Trajectory) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range traj.Concentrations {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := 0.05 * (hi - lo)
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1e-12)
	}
	return lo - pad, hi + pad
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
