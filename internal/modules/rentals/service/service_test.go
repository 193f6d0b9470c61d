package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aguswahy13/bike-rental/internal/metrics"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

type stubSource struct {
	loads atomic.Int32
	err   error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Load(context.Context) (*dataset.Dataset, error) {
	s.loads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	d := time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)
	return dataset.New(
		[]types.DailyRecord{{Date: d, Season: 1, Weather: 1, Total: 10}},
		[]types.HourlyRecord{{Date: d, Season: 1, Weather: 1, Temperature: 5, Humidity: 50, Windspeed: 3, Total: 10}},
	), nil
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSummarize(t *testing.T) {
	src := &stubSource{}
	rec := metrics.NewRecorder()
	svc := NewService(dataset.NewCached(src, quiet()), rec, quiet())

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	res, err := svc.Summarize(context.Background(), pipeline.DefaultFilter(ds))
	require.NoError(t, err)
	require.Len(t, res.SeasonSummary, 1)
	assert.Equal(t, 10, res.SeasonSummary[0].Total)

	expected := `
# HELP rentals_pipeline_runs_total Total filter-aggregate pipeline runs.
# TYPE rentals_pipeline_runs_total counter
rentals_pipeline_runs_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "rentals_pipeline_runs_total"))
}

func TestSummarize_ConcurrentRequestsLoadOnce(t *testing.T) {
	src := &stubSource{}
	svc := NewService(dataset.NewCached(src, quiet()), nil, quiet())

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f := pipeline.Filter{Seasons: []types.Season{1}, Weather: []string{"Clear"}}
			res, err := svc.Summarize(context.Background(), f)
			assert.NoError(t, err)
			assert.Equal(t, 10, res.DailyTotal())
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), src.loads.Load())
}

func TestSummarize_LoadError(t *testing.T) {
	src := &stubSource{err: errors.New("no such file")}
	svc := NewService(src, nil, nil)

	_, err := svc.Summarize(context.Background(), pipeline.Filter{})
	assert.EqualError(t, err, "no such file")
}
