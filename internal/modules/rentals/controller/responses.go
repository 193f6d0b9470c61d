package controller

import (
	"math"
	"time"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

type seasonOption struct {
	Code types.Season `json:"code"`
	Name string       `json:"name"`
}

type filtersResponse struct {
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	Seasons []seasonOption `json:"seasons"`
	Weather []string       `json:"weather"`
}

type filterEcho struct {
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	Seasons []types.Season `json:"seasons"`
	Weather []string       `json:"weather"`
}

// averagesResponse uses pointers so NaN encodes as null.
type averagesResponse struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Windspeed   *float64 `json:"windspeed"`
}

type seasonRow struct {
	Season types.Season `json:"season"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
}

type summaryResponse struct {
	Filter         filterEcho              `json:"filter"`
	Averages       averagesResponse        `json:"averages"`
	SeasonSummary  []seasonRow             `json:"season_summary"`
	WeatherSummary []pipeline.WeatherTotal `json:"weather_summary"`
	TopSeason      *seasonRow              `json:"top_season"`
	HourlyRows     int                     `json:"hourly_rows"`
	DailyRows      int                     `json:"daily_rows"`
	HourlyTotal    int                     `json:"hourly_total"`
	DailyTotal     int                     `json:"daily_total"`
}

type hourlyRow struct {
	Date        string       `json:"date"`
	Hour        int          `json:"hour"`
	Season      types.Season `json:"season"`
	Weather     string       `json:"weather"`
	Temperature *float64     `json:"temperature"`
	Humidity    *float64     `json:"humidity"`
	Windspeed   *float64     `json:"windspeed"`
	Total       int          `json:"total"`
}

type hourlyResponse struct {
	Matched int         `json:"matched"`
	Limit   int         `json:"limit"`
	Rows    []hourlyRow `json:"rows"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func newFiltersResponse(ds *dataset.Dataset) filtersResponse {
	resp := filtersResponse{
		Seasons: []seasonOption{},
		Weather: types.WeatherLabels(),
	}
	if first, last, ok := ds.DateBounds(); ok {
		resp.From, resp.To = first.Format(dateLayout), last.Format(dateLayout)
	}
	for _, s := range ds.Seasons() {
		resp.Seasons = append(resp.Seasons, seasonOption{Code: s, Name: s.Name()})
	}
	return resp
}

func newSummaryResponse(res pipeline.Result) summaryResponse {
	resp := summaryResponse{
		Filter: filterEcho{
			From:    formatDate(res.Filter.Start),
			To:      formatDate(res.Filter.End),
			Seasons: res.Filter.Seasons,
			Weather: res.Filter.Weather,
		},
		Averages: averagesResponse{
			Temperature: nullable(res.Averages.Temperature),
			Humidity:    nullable(res.Averages.Humidity),
			Windspeed:   nullable(res.Averages.Windspeed),
		},
		SeasonSummary:  make([]seasonRow, 0, len(res.SeasonSummary)),
		WeatherSummary: res.WeatherSummary,
		HourlyRows:     len(res.Hourly),
		DailyRows:      len(res.Daily),
		HourlyTotal:    res.HourlyTotal(),
		DailyTotal:     res.DailyTotal(),
	}
	if resp.Filter.Seasons == nil {
		resp.Filter.Seasons = []types.Season{}
	}
	if resp.Filter.Weather == nil {
		resp.Filter.Weather = []string{}
	}
	if resp.WeatherSummary == nil {
		resp.WeatherSummary = []pipeline.WeatherTotal{}
	}
	for _, s := range res.SeasonSummary {
		resp.SeasonSummary = append(resp.SeasonSummary, seasonRow{Season: s.Season, Name: s.Season.Name(), Total: s.Total})
	}
	if top, ok := res.TopSeason(); ok {
		resp.TopSeason = &seasonRow{Season: top.Season, Name: top.Season.Name(), Total: top.Total}
	}
	return resp
}

func newHourlyResponse(rows []pipeline.HourlyRow, limit int) hourlyResponse {
	resp := hourlyResponse{Matched: len(rows), Limit: limit, Rows: make([]hourlyRow, 0, min(limit, len(rows)))}
	for _, r := range rows[:min(limit, len(rows))] {
		resp.Rows = append(resp.Rows, hourlyRow{
			Date:        r.Date.Format(dateLayout),
			Hour:        r.Hour,
			Season:      r.Season,
			Weather:     r.WeatherLabel,
			Temperature: nullable(r.Temperature),
			Humidity:    nullable(r.Humidity),
			Windspeed:   nullable(r.Windspeed),
			Total:       r.Total,
		})
	}
	return resp
}
