// Package report renders diagnostic artifacts from a computed difference
// set: PNG scatter maps and histograms via gonum/plot, and a single-file
// HTML report via go-echarts. Only finite values are plotted; the NaN
// entries the core propagates are filtered at the chart boundary.
package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultHistBins matches the bin count of the original evaluation plots.
const DefaultHistBins = 50

var (
	coldColor = color.RGBA{R: 49, G: 104, B: 142, A: 255}
	hotColor  = color.RGBA{R: 253, G: 231, B: 37, A: 255}
)

// SaveDiffMap writes a top-down scatter of the points at their reference
// X/Y coordinates, colored by the per-point difference value. Points with
// NaN differences are dropped.
func SaveDiffMap(path, title string, points []r3.Vec, values []float64, pointSize vg.Length) error {
	if len(points) != len(values) {
		return fmt.Errorf("diff map: %d points but %d values", len(points), len(values))
	}

	xys := make(plotter.XYs, 0, len(points))
	kept := make([]float64, 0, len(values))
	minV, maxV := math.Inf(1), math.Inf(-1)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xys = append(xys, plotter.XY{X: points[i].X, Y: points[i].Y})
		kept = append(kept, v)
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if len(xys) == 0 {
		return fmt.Errorf("diff map %q: no finite values to plot", title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("building scatter: %w", err)
	}
	span := maxV - minV
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		t := 0.0
		if span > 0 {
			t = (kept[i] - minV) / span
		}
		return draw.GlyphStyle{
			Color:  lerpColor(coldColor, hotColor, t),
			Radius: pointSize,
			Shape:  draw.CircleGlyph{},
		}
	}
	p.Add(sc)

	return p.Save(10*vg.Inch, 10*vg.Inch, path)
}

// SavePolarScatter writes the normal-deviation polar plot: each point at
// radius slope and compass azimuth aspect, projected onto cartesian axes.
func SavePolarScatter(path string, aspects, slopes []float64) error {
	if len(aspects) != len(slopes) {
		return fmt.Errorf("polar scatter: %d aspects but %d slopes", len(aspects), len(slopes))
	}

	xys := make(plotter.XYs, 0, len(aspects))
	for i := range aspects {
		x, y, ok := polarToXY(aspects[i], slopes[i])
		if !ok {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
	}
	if len(xys) == 0 {
		return fmt.Errorf("polar scatter: no finite normal deviations to plot")
	}

	p := plot.New()
	p.Title.Text = "Normal deviation (radius = slope, azimuth = aspect)"
	p.X.Label.Text = "Slope east (deg)"
	p.Y.Label.Text = "Slope north (deg)"

	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("building scatter: %w", err)
	}
	sc.GlyphStyle.Color = coldColor
	sc.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(sc)

	return p.Save(8*vg.Inch, 8*vg.Inch, path)
}

// SaveHistogram writes a histogram of the finite entries of values.
func SaveHistogram(path, title string, values []float64, bins int) error {
	finite := finiteValues(values)
	if len(finite) == 0 {
		return fmt.Errorf("histogram %q: no finite values to plot", title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Difference"
	p.Y.Label.Text = "Number of points"

	h, err := plotter.NewHist(plotter.Values(finite), bins)
	if err != nil {
		return fmt.Errorf("building histogram: %w", err)
	}
	p.Add(h)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

// polarToXY converts a compass aspect (degrees clockwise from +Y) and
// slope radius into cartesian coordinates. ok is false for NaN input.
func polarToXY(aspectDeg, slope float64) (x, y float64, ok bool) {
	if math.IsNaN(aspectDeg) || math.IsNaN(slope) {
		return 0, 0, false
	}
	rad := aspectDeg * math.Pi / 180
	return slope * math.Sin(rad), slope * math.Cos(rad), true
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + t*(float64(y)-float64(x))))
	}
	return color.RGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: 255,
	}
}
