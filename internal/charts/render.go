package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// AssetsHost is where the rendered page loads the ECharts script from.
var AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

var seasonColours = []string{"#f59e0b", "#0ea5e9", "#6366f1"}

func (d Data) subtitle() string {
	s := fmt.Sprintf("fill %d%%", d.FillPercent)
	if d.Subtitle != "" {
		s = d.Subtitle + " · " + s
	}
	if d.EstimatedSeasonal {
		s += " · seasonal extents estimated from current area"
	}
	return s
}

// Line builds the twelve-month surface area chart.
func (d Data) Line() *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Surface area by month", Subtitle: d.subtitle()}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "km²"}),
	)

	points := make([]opts.LineData, len(d.MonthlyArea))
	for i, v := range d.MonthlyArea {
		points[i] = opts.LineData{Value: v}
	}
	line.SetXAxis(d.Months).
		AddSeries("area", points,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
	return line
}

// Bar builds the seasonal extent chart.
func (d Data) Bar() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px", AssetsHost: AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Seasonal water extent"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "km²"}),
	)

	bars := make([]opts.BarData, len(d.Seasonal))
	for i, v := range d.Seasonal {
		bars[i] = opts.BarData{
			Value:     v,
			ItemStyle: &opts.ItemStyle{Color: seasonColours[i%len(seasonColours)]},
		}
	}
	bar.SetXAxis(SeasonNames).
		AddSeries("extent", bars,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// RenderHTML writes a standalone page holding the line and bar charts.
func RenderHTML(w io.Writer, d Data) error {
	page := components.NewPage()
	page.SetAssetsHost(AssetsHost)
	page.PageTitle = "Water body charts"
	page.AddCharts(d.Line(), d.Bar())

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderPNG writes the seasonal extent chart as a PNG image.
func RenderPNG(w io.Writer, d Data) error {
	p := plot.New()
	p.Title.Text = "Seasonal water extent"
	p.Y.Label.Text = "Area (km²)"
	p.Y.Min = 0

	values := make(plotter.Values, len(d.Seasonal))
	copy(values, d.Seasonal)
	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return fmt.Errorf("building bar chart: %w", err)
	}
	bars.Color = color.RGBA{R: 14, G: 165, B: 233, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(SeasonNames...)

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
