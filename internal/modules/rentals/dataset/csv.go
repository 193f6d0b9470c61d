package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/sync/errgroup"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var dailyColumns = map[string]series.Type{
	"date":    series.String,
	"season":  series.Int,
	"weather": series.Int,
	"total":   series.Int,
}

var hourlyColumns = map[string]series.Type{
	"date":        series.String,
	"hour":        series.Int,
	"season":      series.Int,
	"weather":     series.Int,
	"temperature": series.Float,
	"humidity":    series.Float,
	"windspeed":   series.Float,
	"total":       series.Int,
}

// CSVSource reads the daily and hourly CSV exports.
type CSVSource struct {
	DayPath  string
	HourPath string
}

func (s CSVSource) Name() string {
	return "csv"
}

// Load reads both files concurrently.
func (s CSVSource) Load(ctx context.Context) (*Dataset, error) {
	var (
		daily  []types.DailyRecord
		hourly []types.HourlyRecord
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		daily, err = readFile(ctx, s.DayPath, ParseDaily)
		return err
	})
	g.Go(func() error {
		var err error
		hourly, err = readFile(ctx, s.HourPath, ParseHourly)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return New(daily, hourly), nil
}

func readFile[T any](ctx context.Context, path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	out, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// ParseDaily parses a daily CSV with columns date, season, weather, total.
// Extra columns are ignored.
func ParseDaily(r io.Reader) ([]types.DailyRecord, error) {
	df, ok, err := readFrame(r, dailyColumns)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []types.DailyRecord{}, nil
	}
	dates, err := dateColumn(df)
	if err != nil {
		return nil, err
	}
	seasons, err := intColumn(df, "season")
	if err != nil {
		return nil, err
	}
	weather, err := intColumn(df, "weather")
	if err != nil {
		return nil, err
	}
	totals, err := intColumn(df, "total")
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]int, df.Nrow())
	out := make([]types.DailyRecord, df.Nrow())
	for i := range out {
		if first, dup := seen[dates[i]]; dup {
			return nil, fmt.Errorf("%w: row %d: duplicate day %s (first at row %d)",
				ErrInvalidRecord, i+1, dates[i].Format(time.DateOnly), first)
		}
		seen[dates[i]] = i + 1
		out[i] = types.DailyRecord{
			Date:    dates[i],
			Season:  types.Season(seasons[i]),
			Weather: types.WeatherCode(weather[i]),
			Total:   totals[i],
		}
	}
	return out, nil
}

// ParseHourly parses an hourly CSV with columns date, hour, season, weather,
// temperature, humidity, windspeed, total. Missing float values become NaN.
func ParseHourly(r io.Reader) ([]types.HourlyRecord, error) {
	df, ok, err := readFrame(r, hourlyColumns)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []types.HourlyRecord{}, nil
	}
	dates, err := dateColumn(df)
	if err != nil {
		return nil, err
	}
	ints := make(map[string][]int, 4)
	for _, name := range []string{"hour", "season", "weather", "total"} {
		if ints[name], err = intColumn(df, name); err != nil {
			return nil, err
		}
	}
	floats := make(map[string][]float64, 3)
	for _, name := range []string{"temperature", "humidity", "windspeed"} {
		if floats[name], err = floatColumn(df, name); err != nil {
			return nil, err
		}
	}

	type slot struct {
		date time.Time
		hour int
	}
	seen := make(map[slot]int, df.Nrow())
	out := make([]types.HourlyRecord, df.Nrow())
	for i := range out {
		hour := ints["hour"][i]
		if hour < 0 || hour > 23 {
			return nil, fmt.Errorf("%w: row %d: hour %d out of range 0-23", ErrInvalidRecord, i+1, hour)
		}
		k := slot{dates[i], hour}
		if first, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: row %d: duplicate hour %s %02d (first at row %d)",
				ErrInvalidRecord, i+1, dates[i].Format(time.DateOnly), hour, first)
		}
		seen[k] = i + 1
		out[i] = types.HourlyRecord{
			Date:        dates[i],
			Hour:        hour,
			Season:      types.Season(ints["season"][i]),
			Weather:     types.WeatherCode(ints["weather"][i]),
			Temperature: floats["temperature"][i],
			Humidity:    floats["humidity"][i],
			Windspeed:   floats["windspeed"][i],
			Total:       ints["total"][i],
		}
	}
	return out, nil
}

// readFrame reports ok=false for a file holding only a header, which gota
// cannot represent as a frame.
func readFrame(r io.Reader, columns map[string]series.Type) (dataframe.DataFrame, bool, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, false, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, false, fmt.Errorf("%w: empty file, expected a header", ErrInvalidRecord)
	}
	if len(records) == 1 {
		for _, name := range slices.Sorted(maps.Keys(columns)) {
			if !slices.Contains(records[0], name) {
				return dataframe.DataFrame{}, false, fmt.Errorf("%w: %q", ErrMissingColumn, name)
			}
		}
		return dataframe.DataFrame{}, false, nil
	}

	df := dataframe.LoadRecords(records, dataframe.WithTypes(columns))
	if df.Err != nil {
		return df, false, fmt.Errorf("read csv: %w", df.Err)
	}
	return df, true, nil
}

func column(df dataframe.DataFrame, name string) (series.Series, error) {
	s := df.Col(name)
	if s.Err != nil {
		return s, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return s, nil
}

func intColumn(df dataframe.DataFrame, name string) ([]int, error) {
	s, err := column(df, name)
	if err != nil {
		return nil, err
	}
	vals, err := s.Int()
	if err != nil {
		return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidRecord, name, err)
	}
	return vals, nil
}

func floatColumn(df dataframe.DataFrame, name string) ([]float64, error) {
	s, err := column(df, name)
	if err != nil {
		return nil, err
	}
	return s.Float(), nil
}

func dateColumn(df dataframe.DataFrame) ([]time.Time, error) {
	s, err := column(df, "date")
	if err != nil {
		return nil, err
	}
	raw := s.Records()
	out := make([]time.Time, len(raw))
	for i, v := range raw {
		t, err := ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidRecord, i+1, err)
		}
		out[i] = t
	}
	return out, nil
}

// ParseDate accepts a plain date, a date-time or RFC3339 and returns the
// calendar day in UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return types.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q", s)
}
