// Package dataset loads the daily and hourly rental record sets once and
// hands them out as an immutable Dataset.
package dataset

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidRecord = errors.New("invalid record")
)

// Dataset holds both record sets. It must not be modified after load.
type Dataset struct {
	Daily    []types.DailyRecord
	Hourly   []types.HourlyRecord
	LoadedAt time.Time
}

// Source loads a Dataset from storage.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
	Name() string
}

// New builds a Dataset and orders hourly rows by (date, hour).
func New(daily []types.DailyRecord, hourly []types.HourlyRecord) *Dataset {
	slices.SortStableFunc(hourly, func(a, b types.HourlyRecord) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return a.Hour - b.Hour
	})
	return &Dataset{Daily: daily, Hourly: hourly, LoadedAt: time.Now().UTC()}
}

// DateBounds returns the first and last calendar day covered by the hourly
// records, or by the daily records when there are no hourly ones.
func (d *Dataset) DateBounds() (first time.Time, last time.Time, ok bool) {
	dates := make([]time.Time, 0, len(d.Hourly))
	for _, r := range d.Hourly {
		dates = append(dates, r.Date)
	}
	if len(dates) == 0 {
		for _, r := range d.Daily {
			dates = append(dates, r.Date)
		}
	}
	if len(dates) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = dates[0], dates[0]
	for _, t := range dates[1:] {
		if t.Before(first) {
			first = t
		}
		if t.After(last) {
			last = t
		}
	}
	return types.Day(first), types.Day(last), true
}

// Seasons returns the distinct daily season codes in first-appearance order.
func (d *Dataset) Seasons() []types.Season {
	seen := make(map[types.Season]bool)
	var out []types.Season
	for _, r := range d.Daily {
		if !seen[r.Season] {
			seen[r.Season] = true
			out = append(out, r.Season)
		}
	}
	return out
}

// UnmappedWeather counts records whose weather code has no label.
func (d *Dataset) UnmappedWeather() int {
	n := 0
	for _, r := range d.Daily {
		if _, ok := r.Weather.Label(); !ok {
			n++
		}
	}
	for _, r := range d.Hourly {
		if _, ok := r.Weather.Label(); !ok {
			n++
		}
	}
	return n
}
