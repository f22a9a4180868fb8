package report

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/change-detect/m3c2eval/internal/m3c2"
)

// viridis is the color ramp used by the HTML charts.
var viridis = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// WriteHTML renders the interactive evaluation report to path: the
// distance and uncertainty difference maps, the normal-deviation polar
// scatter, and histograms of every attribute difference.
func WriteHTML(path, title string, ds *m3c2.DiffSet) error {
	page, err := buildPage(title, ds)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()
	return renderPage(page, f)
}

func renderPage(page *components.Page, w io.Writer) error {
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

func buildPage(title string, ds *m3c2.DiffSet) (*components.Page, error) {
	if !ds.Computed() {
		return nil, m3c2.ErrNotComputed
	}

	page := components.NewPage()
	page.PageTitle = title

	for _, attr := range []m3c2.Attribute{m3c2.AttrDistance, m3c2.AttrLODetection} {
		vals, err := ds.Diff(attr)
		if err != nil {
			return nil, err
		}
		if chart := diffMapChart(string(attr), ds.Reference().Points, vals); chart != nil {
			page.AddCharts(chart)
		}
	}

	aspects, _ := ds.Aspects()
	slopes, _ := ds.Slopes()
	if chart := polarChart(aspects, slopes); chart != nil {
		page.AddCharts(chart)
	}

	for _, attr := range ds.Attributes() {
		vals, err := ds.Diff(attr)
		if err != nil {
			return nil, err
		}
		if chart := histogramChart(string(attr), vals); chart != nil {
			page.AddCharts(chart)
		}
	}
	return page, nil
}

// diffMapChart builds the colored top-down scatter of one difference
// attribute, or nil when nothing finite remains to plot.
func diffMapChart(name string, points []r3.Vec, values []float64) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(values))
	maxV := math.Inf(-1)
	minV := math.Inf(1)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{points[i].X, points[i].Y, v}})
		maxV = math.Max(maxV, v)
		minV = math.Min(minV, v)
	}
	if len(data) == 0 {
		return nil
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Difference in %s", name),
			Subtitle: fmt.Sprintf("points=%d", len(data)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minV),
			Max:        float32(maxV),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries(name, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	return scatter
}

// polarChart projects the normal-deviation angles onto cartesian axes,
// slope as radius and aspect as compass azimuth.
func polarChart(aspects, slopes []float64) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(aspects))
	maxAbs := 0.0
	for i := range aspects {
		x, y, ok := polarToXY(aspects[i], slopes[i])
		if !ok {
			continue
		}
		data = append(data, opts.ScatterData{Value: []interface{}{x, y}})
		maxAbs = math.Max(maxAbs, math.Max(math.Abs(x), math.Abs(y)))
	}
	if len(data) == 0 {
		return nil
	}
	pad := maxAbs * 1.05
	if pad == 0 {
		pad = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Normal deviation",
			Subtitle: "radius = slope (deg), azimuth = aspect",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "east", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "north", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("normals", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	return scatter
}

// histogramChart bins the finite values and renders them as a bar chart,
// or nil when the attribute has nothing finite to show.
func histogramChart(name string, values []float64) *charts.Bar {
	labels, counts := BinValues(values, DefaultHistBins)
	if labels == nil {
		return nil
	}

	bars := make([]opts.BarData, len(counts))
	for i, c := range counts {
		bars[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s difference histogram", name)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).AddSeries(name, bars)
	return bar
}

// BinValues produces histogram bins over the finite entries of values:
// bin labels (lower edge, formatted) and counts. Returns nil labels when
// no finite values exist. A single distinct value collapses into one bin.
func BinValues(values []float64, bins int) ([]string, []int) {
	finite := finiteValues(values)
	if len(finite) == 0 || bins < 1 {
		return nil, nil
	}

	minV, maxV := finite[0], finite[0]
	for _, v := range finite {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	if minV == maxV {
		return []string{fmt.Sprintf("%.4g", minV)}, []int{len(finite)}
	}

	width := (maxV - minV) / float64(bins)
	counts := make([]int, bins)
	for _, v := range finite {
		idx := int((v - minV) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.4g", minV+float64(i)*width)
	}
	return labels, counts
}
