// Package charts renders the dashboard charts as SVG.
package charts

import (
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"slices"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

const (
	Width  = 640
	Height = 360

	EmptyMessage = "No data for the selected filters"
)

var ErrUnknownChart = errors.New("unknown chart")

// Names lists the charts Render knows, in dashboard order.
var Names = []string{"season.svg", "weather.svg", "temperature.svg"}

// tableau10
var palette = []drawing.Color{
	drawing.ColorFromHex("4e79a7"),
	drawing.ColorFromHex("f28e2b"),
	drawing.ColorFromHex("e15759"),
	drawing.ColorFromHex("76b7b2"),
	drawing.ColorFromHex("59a14f"),
	drawing.ColorFromHex("edc948"),
	drawing.ColorFromHex("b07aa1"),
	drawing.ColorFromHex("ff9da7"),
	drawing.ColorFromHex("9c755f"),
	drawing.ColorFromHex("bab0ac"),
}

func color(i int) drawing.Color {
	n := len(palette)
	return palette[((i%n)+n)%n]
}

// Render writes the named chart for res to w.
func Render(w io.Writer, name string, res pipeline.Result) error {
	switch name {
	case "season.svg":
		return SeasonBars(w, res.SeasonSummary)
	case "weather.svg":
		return WeatherBars(w, res.WeatherSummary)
	case "temperature.svg":
		return TemperatureScatter(w, res.Hourly)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

// SeasonBars draws total rentals per season in summary order.
func SeasonBars(w io.Writer, rows []pipeline.SeasonTotal) error {
	bars := make([]chart.Value, len(rows))
	for i, r := range rows {
		bars[i] = chart.Value{
			Label: r.Season.Name(),
			Value: float64(r.Total),
			Style: chart.Style{FillColor: color(int(r.Season) - 1), StrokeColor: color(int(r.Season) - 1)},
		}
	}
	return bar(w, "Total Rentals by Season", bars)
}

// WeatherBars draws total rentals per weather label in summary order.
func WeatherBars(w io.Writer, rows []pipeline.WeatherTotal) error {
	labels := types.WeatherLabels()
	bars := make([]chart.Value, len(rows))
	for i, r := range rows {
		c := color(slices.Index(labels, r.Label))
		bars[i] = chart.Value{
			Label: r.Label,
			Value: float64(r.Total),
			Style: chart.Style{FillColor: c, StrokeColor: c},
		}
	}
	return bar(w, "Rentals by Weather Condition", bars)
}

func bar(w io.Writer, title string, bars []chart.Value) error {
	if len(bars) == 0 {
		return placeholder(w, title)
	}
	top := 0.0
	for _, b := range bars {
		top = math.Max(top, b.Value)
	}
	if top == 0 {
		top = 1
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		BarWidth:   barWidth(len(bars)),
		BarSpacing: 40,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: top * 1.1},
			ValueFormatter: countFormatter,
		},
		Bars: bars,
	}
	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render %q: %w", title, err)
	}
	return nil
}

func barWidth(n int) int {
	return max(24, min(96, (Width-120)/(2*n)))
}

// TemperatureScatter plots hourly total against temperature, one series per
// season. Rows without a temperature are skipped.
func TemperatureScatter(w io.Writer, rows []pipeline.HourlyRow) error {
	const title = "Temperature vs. Hourly Rentals"

	bySeason := make(map[types.Season]*chart.ContinuousSeries)
	var seasons []types.Season
	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMax := 0.0
	for _, r := range rows {
		if math.IsNaN(r.Temperature) {
			continue
		}
		s, ok := bySeason[r.Season]
		if !ok {
			c := color(int(r.Season) - 1)
			s = &chart.ContinuousSeries{
				Name: r.Season.Name(),
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
					DotColor:    c.WithAlpha(160),
				},
			}
			bySeason[r.Season] = s
			seasons = append(seasons, r.Season)
		}
		s.XValues = append(s.XValues, r.Temperature)
		s.YValues = append(s.YValues, float64(r.Total))
		xMin, xMax = math.Min(xMin, r.Temperature), math.Max(xMax, r.Temperature)
		yMax = math.Max(yMax, float64(r.Total))
	}
	if len(seasons) == 0 {
		return placeholder(w, title)
	}
	if xMin == xMax {
		xMin, xMax = xMin-1, xMax+1
	}
	if yMax == 0 {
		yMax = 1
	}

	slices.Sort(seasons)
	series := make([]chart.Series, 0, len(seasons))
	for _, s := range seasons {
		series = append(series, *bySeason[s])
	}

	ch := chart.Chart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Temperature (°C)",
			Range:          &chart.ContinuousRange{Min: math.Floor(xMin), Max: math.Ceil(xMax)},
			ValueFormatter: oneDecimal,
		},
		YAxis: chart.YAxis{
			Name:           "Hourly rentals",
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax * 1.05},
			ValueFormatter: countFormatter,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render %q: %w", title, err)
	}
	return nil
}

func countFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

func oneDecimal(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f", f)
	}
	return ""
}

func placeholder(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#ffffff"/>`+
		`<text x="50%%" y="36" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#333333">%s</text>`+
		`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#888888">%s</text>`+
		`</svg>`,
		Width, Height, Width, Height, html.EscapeString(title), EmptyMessage)
	return err
}
