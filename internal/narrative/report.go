package narrative

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/markdown"

	"github.com/banshee-data/hydro.report/internal/water"
)

// Report is a generated summary with the figures it was based on. Missing
// is true when Text is the NoSummaryText substitute.
type Report struct {
	Point       water.Point     `json:"point"`
	Metrics     water.Metrics   `json:"metrics"`
	Seasonal    *water.Seasonal `json:"seasonal,omitempty"`
	Variability *Variability    `json:"variability,omitempty"`
	Date        string          `json:"date,omitempty"`
	Text        string          `json:"text"`
	Missing     bool            `json:"missing,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Summarize builds the prompt for in, calls the generator and assembles a
// report. A response without text still yields a report carrying
// NoSummaryText alongside ErrNoCandidate.
func (c *Client) Summarize(ctx context.Context, in Input, now time.Time) (*Report, error) {
	if in.Result == nil {
		return nil, ErrNoLocation
	}
	rep := &Report{
		Point:       in.Point,
		Metrics:     water.NewMetrics(in.Result),
		Seasonal:    in.Result.Seasonal,
		Date:        in.Result.Date,
		GeneratedAt: now,
	}
	if v, ok := SeasonalVariability(in.Result.Seasonal); ok {
		rep.Variability = &v
	}

	text, err := c.Generate(ctx, BuildPrompt(in))
	if err != nil && !errors.Is(err, ErrNoCandidate) {
		return nil, err
	}
	rep.Text = text
	rep.Missing = errors.Is(err, ErrNoCandidate)
	return rep, err
}

// RenderMarkdown writes r as a Markdown document.
func RenderMarkdown(w io.Writer, r *Report) error {
	md := markdown.NewMarkdown(w)
	md.H1("Water Body Summary")
	md.PlainText("")
	md.PlainTextf("Location %.5f, %.5f. Generated %s.", r.Point.Lat, r.Point.Lng, r.GeneratedAt.UTC().Format(time.RFC1123))
	md.PlainText("")

	md.H2("Metrics")
	md.PlainText("")
	rows := [][]string{
		{"Surface area", fmt.Sprintf("%.2f km²", r.Metrics.Area)},
		{"Volume", fmt.Sprintf("%.2f MCM", r.Metrics.Volume)},
		{"Capacity", fmt.Sprintf("%.2f MCM", r.Metrics.Capacity)},
		{"Fill", fmt.Sprintf("%d%% (%s)", r.Metrics.FillPercent, r.Metrics.FillLevel)},
		{"Average elevation", fmt.Sprintf("%.1f m", r.Metrics.AvgElevation)},
	}
	if r.Date != "" {
		rows = append(rows, []string{"Image date", r.Date})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if r.Seasonal != nil {
		md.H2("Seasonal Extent")
		md.PlainText("")
		md.BulletList(
			fmt.Sprintf("Summer: %.2f km²", r.Seasonal.Summer),
			fmt.Sprintf("Monsoon: %.2f km²", r.Seasonal.Monsoon),
			fmt.Sprintf("Winter: %.2f km²", r.Seasonal.Winter),
		)
		if r.Variability != nil {
			md.PlainText("")
			md.PlainTextf("Mean %.2f km², standard deviation %.2f km² (CV %.0f%%).",
				r.Variability.Mean, r.Variability.StdDev, r.Variability.CV*100)
		}
		md.PlainText("")
	}

	md.H2("Narrative")
	md.PlainText("")
	if r.Missing {
		md.Warningf("%s", r.Text)
	} else {
		md.PlainText(r.Text)
	}
	md.PlainText("")
	return md.Build()
}
