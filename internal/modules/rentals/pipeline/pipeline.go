// Package pipeline implements the filter-aggregate pipeline over a loaded
// Dataset. Every function here is pure: it reads the dataset and returns
// fresh slices.
package pipeline

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

// Filter is the user's selection. A zero Start or End leaves that side of
// the window open. An empty Seasons or Weather set accepts nothing.
type Filter struct {
	Start   time.Time
	End     time.Time
	Seasons []types.Season
	Weather []string
}

// DefaultFilter selects the full hourly date range, every daily season and
// every weather label.
func DefaultFilter(ds *dataset.Dataset) Filter {
	f := Filter{
		Seasons: ds.Seasons(),
		Weather: types.WeatherLabels(),
	}
	if first, last, ok := ds.DateBounds(); ok {
		f.Start, f.End = first, last
	}
	return f
}

// InWindow reports whether the calendar day of t lies within [Start, End].
func (f Filter) InWindow(t time.Time) bool {
	d := types.Day(t)
	if !f.Start.IsZero() && d.Before(types.Day(f.Start)) {
		return false
	}
	if !f.End.IsZero() && d.After(types.Day(f.End)) {
		return false
	}
	return true
}

// Accepts reports whether a record with this season and weather code passes
// the categorical filters. Codes without a label never pass.
func (f Filter) Accepts(season types.Season, code types.WeatherCode) bool {
	label, ok := code.Label()
	if !ok {
		return false
	}
	return slices.Contains(f.Seasons, season) && slices.Contains(f.Weather, label)
}

// HourlyRow is a filtered hourly record with its weather label attached.
type HourlyRow struct {
	types.HourlyRecord
	WeatherLabel string `json:"weather_label"`
}

// DailyRow is a filtered daily record with its weather label attached.
type DailyRow struct {
	types.DailyRecord
	WeatherLabel string `json:"weather_label"`
}

type SeasonTotal struct {
	Season types.Season `json:"season"`
	Total  int          `json:"total"`
}

type WeatherTotal struct {
	Label string `json:"weather"`
	Total int    `json:"total"`
}

// Averages holds hourly means. A field is NaN when no value contributed.
type Averages struct {
	Temperature float64
	Humidity    float64
	Windspeed   float64
}

// Result is everything derived from one Filter.
type Result struct {
	Filter         Filter
	Hourly         []HourlyRow
	Daily          []DailyRow
	Averages       Averages
	SeasonSummary  []SeasonTotal
	WeatherSummary []WeatherTotal
}

// TopSeason is the first row of the season summary. ok is false when the
// summary is empty.
func (r Result) TopSeason() (SeasonTotal, bool) {
	if len(r.SeasonSummary) == 0 {
		return SeasonTotal{}, false
	}
	return r.SeasonSummary[0], true
}

// DailyTotal sums total over the filtered daily rows.
func (r Result) DailyTotal() int {
	n := 0
	for _, d := range r.Daily {
		n += d.Total
	}
	return n
}

// HourlyTotal sums total over the filtered hourly rows.
func (r Result) HourlyTotal() int {
	n := 0
	for _, h := range r.Hourly {
		n += h.Total
	}
	return n
}

// Run applies f to both record sets and computes the averages and summaries.
func Run(ds *dataset.Dataset, f Filter) Result {
	hourly := FilterHourly(ds.Hourly, f)
	daily := FilterDaily(ds.Daily, f)
	return Result{
		Filter:         f,
		Hourly:         hourly,
		Daily:          daily,
		Averages:       Average(hourly),
		SeasonSummary:  SummarizeBySeason(daily),
		WeatherSummary: SummarizeByWeather(hourly),
	}
}

// FilterHourly keeps the records inside the window whose season and label
// are selected, preserving input order.
func FilterHourly(records []types.HourlyRecord, f Filter) []HourlyRow {
	out := make([]HourlyRow, 0)
	for _, r := range records {
		if !f.InWindow(r.Date) || !f.Accepts(r.Season, r.Weather) {
			continue
		}
		label, _ := r.Weather.Label()
		out = append(out, HourlyRow{HourlyRecord: r, WeatherLabel: label})
	}
	return out
}

// FilterDaily is FilterHourly for daily records.
func FilterDaily(records []types.DailyRecord, f Filter) []DailyRow {
	out := make([]DailyRow, 0)
	for _, r := range records {
		if !f.InWindow(r.Date) || !f.Accepts(r.Season, r.Weather) {
			continue
		}
		label, _ := r.Weather.Label()
		out = append(out, DailyRow{DailyRecord: r, WeatherLabel: label})
	}
	return out
}

// Average computes the means of temperature, humidity and windspeed,
// skipping NaN values.
func Average(rows []HourlyRow) Averages {
	var temp, hum, wind mean
	for _, r := range rows {
		temp.add(r.Temperature)
		hum.add(r.Humidity)
		wind.add(r.Windspeed)
	}
	return Averages{
		Temperature: temp.value(),
		Humidity:    hum.value(),
		Windspeed:   wind.value(),
	}
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	if math.IsNaN(v) {
		return
	}
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}

// SummarizeBySeason totals daily rows per season, largest first. Equal
// totals stay in ascending season order.
func SummarizeBySeason(rows []DailyRow) []SeasonTotal {
	sums := make(map[types.Season]int)
	for _, r := range rows {
		sums[r.Season] += r.Total
	}
	out := make([]SeasonTotal, 0, len(sums))
	for s, total := range sums {
		out = append(out, SeasonTotal{Season: s, Total: total})
	}
	slices.SortFunc(out, func(a, b SeasonTotal) int { return cmp.Compare(a.Season, b.Season) })
	slices.SortStableFunc(out, func(a, b SeasonTotal) int { return cmp.Compare(b.Total, a.Total) })
	return out
}

// SummarizeByWeather totals hourly rows per weather label, largest first.
// Equal totals stay in ascending label order.
func SummarizeByWeather(rows []HourlyRow) []WeatherTotal {
	sums := make(map[string]int)
	for _, r := range rows {
		sums[r.WeatherLabel] += r.Total
	}
	out := make([]WeatherTotal, 0, len(sums))
	for label, total := range sums {
		out = append(out, WeatherTotal{Label: label, Total: total})
	}
	slices.SortFunc(out, func(a, b WeatherTotal) int { return cmp.Compare(a.Label, b.Label) })
	slices.SortStableFunc(out, func(a, b WeatherTotal) int { return cmp.Compare(b.Total, a.Total) })
	return out
}
