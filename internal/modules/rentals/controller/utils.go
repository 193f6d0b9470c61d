package controller

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

const (
	dateLayout   = "2006-01-02"
	defaultLimit = 100
	maxLimit     = 1000
)

// parseFilter starts from the dataset defaults and narrows them with the
// query. An absent key keeps the default; a key whose values are all empty
// selects nothing.
func parseFilter(q url.Values, ds *dataset.Dataset) (pipeline.Filter, error) {
	f := pipeline.DefaultFilter(ds)

	if s := q.Get("from"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return pipeline.Filter{}, errors.New("invalid 'from' (expected YYYY-MM-DD)")
		}
		f.Start = t
	}
	if s := q.Get("to"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return pipeline.Filter{}, errors.New("invalid 'to' (expected YYYY-MM-DD)")
		}
		f.End = t
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.Start.After(f.End) {
		return pipeline.Filter{}, errors.New("'from' must be <= 'to'")
	}

	if vals, ok := q["season"]; ok {
		f.Seasons = []types.Season{}
		for _, v := range nonEmpty(vals) {
			n, err := strconv.Atoi(v)
			if err != nil {
				return pipeline.Filter{}, fmt.Errorf("invalid 'season' %q (expected integer)", v)
			}
			f.Seasons = append(f.Seasons, types.Season(n))
		}
	}
	if vals, ok := q["weather"]; ok {
		f.Weather = []string{}
		for _, v := range nonEmpty(vals) {
			if !types.IsWeatherLabel(v) {
				return pipeline.Filter{}, fmt.Errorf("unknown 'weather' %q", v)
			}
			f.Weather = append(f.Weather, v)
		}
	}
	return f, nil
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseLimit(q url.Values) (int, error) {
	s := q.Get("limit")
	if s == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid 'limit' (expected integer)")
	}
	if n <= 0 {
		return 0, errors.New("'limit' must be > 0")
	}
	if n > maxLimit {
		return 0, errors.New("'limit' must be <= 1000")
	}
	return n, nil
}
