package views

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/charts"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

const dateLayout = "2006-01-02"

// EmptyNarrative is shown when no season survives the filters.
const EmptyNarrative = "No rentals match the current filters."

// Observations are the fixed findings shown under the narrative.
var Observations = []string{
	"Rentals rise steadily with temperature up to mid-20s °C, then plateau or dip at extreme heat or cold.",
	"Clear days have the most rentals; severe weather sharply reduces usage.",
}

// Option is one checkbox in a sidebar multiselect.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

type KPI struct {
	Label string
	Value string
}

type SummaryRow struct {
	Label string
	Total int
}

type Chart struct {
	Title string
	URL   string
}

// InsightsData is the view model for the insights partial.
type InsightsData struct {
	KPIs         []KPI
	SeasonRows   []SummaryRow
	WeatherRows  []SummaryRow
	Narrative    string
	Observations []string
	Charts       []Chart
	HourlyRows   int
	DailyRows    int
}

// DashboardData is the view model for the full page.
type DashboardData struct {
	From     string
	To       string
	MinDate  string
	MaxDate  string
	Seasons  []Option
	Weather  []Option
	Insights InsightsData
}

// BuildInsights turns a pipeline result into the insights view model. query
// is appended to the chart URLs so the images reflect the same filters.
func BuildInsights(res pipeline.Result, query url.Values) InsightsData {
	data := InsightsData{
		KPIs: []KPI{
			{Label: "Avg Temperature", Value: FormatMean(res.Averages.Temperature, "%.1f °C")},
			{Label: "Avg Humidity", Value: FormatMean(res.Averages.Humidity, "%.0f %%")},
			{Label: "Avg Windspeed", Value: FormatMean(res.Averages.Windspeed, "%.1f km/h")},
		},
		Narrative:    Narrative(res),
		Observations: Observations,
		HourlyRows:   len(res.Hourly),
		DailyRows:    len(res.Daily),
	}
	for _, s := range res.SeasonSummary {
		data.SeasonRows = append(data.SeasonRows, SummaryRow{Label: s.Season.Name(), Total: s.Total})
	}
	for _, w := range res.WeatherSummary {
		data.WeatherRows = append(data.WeatherRows, SummaryRow{Label: w.Label, Total: w.Total})
	}

	titles := map[string]string{
		"season.svg":      "Total Rentals by Season",
		"weather.svg":     "Rentals by Weather Condition",
		"temperature.svg": "Temperature vs. Hourly Rentals",
	}
	qs := ""
	if enc := query.Encode(); enc != "" {
		qs = "?" + enc
	}
	for _, name := range charts.Names {
		data.Charts = append(data.Charts, Chart{Title: titles[name], URL: "/charts/" + name + qs})
	}
	return data
}

// BuildDashboard fills the sidebar from the dataset and the active filter.
func BuildDashboard(ds *dataset.Dataset, res pipeline.Result, query url.Values) DashboardData {
	data := DashboardData{
		From:     formatDate(res.Filter.Start),
		To:       formatDate(res.Filter.End),
		Insights: BuildInsights(res, query),
	}
	if first, last, ok := ds.DateBounds(); ok {
		data.MinDate, data.MaxDate = first.Format(dateLayout), last.Format(dateLayout)
	}
	for _, s := range ds.Seasons() {
		data.Seasons = append(data.Seasons, Option{
			Value:    strconv.Itoa(int(s)),
			Label:    s.Name(),
			Selected: slices.Contains(res.Filter.Seasons, s),
		})
	}
	for _, l := range types.WeatherLabels() {
		data.Weather = append(data.Weather, Option{
			Value:    l,
			Label:    l,
			Selected: slices.Contains(res.Filter.Weather, l),
		})
	}
	return data
}

// Narrative names the top season, or reports that nothing matched.
func Narrative(res pipeline.Result) string {
	top, ok := res.TopSeason()
	if !ok {
		return EmptyNarrative
	}
	return fmt.Sprintf("Top Season: %s with %s rentals.", top.Season.Name(), FormatCount(top.Total))
}

// FormatMean renders v with format, or "N/A" when v is NaN.
func FormatMean(v float64, format string) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf(format, v)
}

// FormatCount renders n with comma thousands separators.
func FormatCount(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
