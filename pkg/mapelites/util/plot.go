package util

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/mihai-snyk/map-elites/pkg/mapelites/archive"
)

// ErrNot2D is returned when asked to draw an archive that does not have
// exactly two measures.
var ErrNot2D = errors.New("heatmap requires an archive with 2 measures")

// HeatmapOptions controls the rendered image.
type HeatmapOptions struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
	// Colors is the number of distinct colors of the objective scale.
	Colors int
}

func DefaultHeatmapOptions() HeatmapOptions {
	return HeatmapOptions{
		XLabel: "Measure 0",
		YLabel: "Measure 1",
		Width:  6 * vg.Inch,
		Height: 4.8 * vg.Inch,
		Colors: 255,
	}
}

// archiveGrid adapts a 2D archive to plotter.GridXYZ. Columns follow the
// first measure and rows the second one.
type archiveGrid struct {
	a        *archive.GridArchive
	cols     int
	rows     int
	min, max float64
}

func (g archiveGrid) Dims() (c, r int) { return g.cols, g.rows }

func (g archiveGrid) Z(c, r int) float64 { return g.a.Objective(c*g.rows + r) }

func (g archiveGrid) X(c int) float64 {
	b := g.a.CellBounds(0, c)
	return (b.L + b.H) / 2
}

func (g archiveGrid) Y(r int) float64 {
	b := g.a.CellBounds(1, r)
	return (b.L + b.H) / 2
}

func (g archiveGrid) Min() float64 { return g.min }

func (g archiveGrid) Max() float64 { return g.max }

func newArchiveGrid(a *archive.GridArchive) (archiveGrid, error) {
	if a.MeasureDim() != 2 {
		return archiveGrid{}, fmt.Errorf("%w: got %d", ErrNot2D, a.MeasureDim())
	}
	dims := a.Dims()
	lo, hi := ObjectiveRange(a)
	return archiveGrid{a: a, cols: dims[0], rows: dims[1], min: lo, max: hi}, nil
}

// ObjectiveRange returns the bounds of the color scale for a: the objective
// range of the elites, widened to a unit interval when it is degenerate.
func ObjectiveRange(a *archive.GridArchive) (float64, float64) {
	s := a.Stats()
	if s.NumElites == 0 {
		return 0, 1
	}
	lo, hi := s.ObjMin, s.ObjMax
	if hi-lo < 1e-12 || math.IsNaN(hi-lo) {
		hi = lo + 1
	}
	return lo, hi
}

// HeatmapPNG draws the objective of every cell of a 2D archive, with a
// color bar on the right, and writes it to w as a PNG image. Empty cells are
// left blank.
func HeatmapPNG(w io.Writer, a *archive.GridArchive, o HeatmapOptions) error {
	grid, err := newArchiveGrid(a)
	if err != nil {
		return err
	}
	if o.Colors < 2 {
		o.Colors = DefaultHeatmapOptions().Colors
	}

	cm := moreland.ExtendedBlackBody()
	cm.SetMin(grid.min)
	cm.SetMax(grid.max)

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = o.XLabel
	p.Y.Label.Text = o.YLabel

	h := plotter.NewHeatMap(grid, cm.Palette(o.Colors))
	h.Min, h.Max = grid.min, grid.max
	h.NaN = color.Transparent
	p.Add(h)

	ranges := a.Ranges()
	p.X.Min, p.X.Max = ranges[0].L, ranges[0].H
	p.Y.Min, p.Y.Max = ranges[1].L, ranges[1].H

	bar := plot.New()
	bar.HideX()
	bar.Y.Label.Text = "Objective"
	bar.Add(&plotter.ColorBar{
		ColorMap: cm,
		Vertical: true,
		Colors:   o.Colors,
	})

	img := vgimg.New(o.Width, o.Height)
	dc := draw.New(img)
	barWidth := o.Width / 7
	p.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
	bar.Draw(draw.Crop(dc, o.Width-barWidth, 0, 0, 0))

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("encoding heatmap: %w", err)
	}
	return nil
}

// HeatmapHTML renders an interactive heatmap of a 2D archive to w.
func HeatmapHTML(w io.Writer, a *archive.GridArchive, title string) error {
	grid, err := newArchiveGrid(a)
	if err != nil {
		return err
	}

	xs := make([]string, grid.cols)
	for c := range xs {
		xs[c] = fmt.Sprintf("%.3g", grid.X(c))
	}
	ys := make([]string, grid.rows)
	for r := range ys {
		ys[r] = fmt.Sprintf("%.3g", grid.Y(r))
	}

	data := make([]opts.HeatMapData, 0, a.Len())
	for _, e := range a.Elites() {
		coords := a.GridIndex(e.Index)
		data = append(data, opts.HeatMapData{
			Value: [3]interface{}{coords[0], coords[1], e.Objective},
		})
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Theme:     types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Name: "Measure 0",
			Data: xs,
			SplitArea: &opts.SplitArea{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category",
			Name: "Measure 1",
			Data: ys,
			SplitArea: &opts.SplitArea{
				Show: opts.Bool(true),
			},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(grid.min),
			Max:        float32(grid.max),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#000000", "#b2182b", "#f4a582", "#ffffff"},
			},
		}),
	)
	hm.AddSeries("Objective", data)

	return hm.Render(w)
}
