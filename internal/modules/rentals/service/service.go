package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aguswahy13/bike-rental/internal/metrics"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
)

type Service struct {
	source  dataset.Source
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// NewService wraps src, which should memoize its load (see dataset.Cached).
// rec may be nil.
func NewService(src dataset.Source, rec *metrics.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: src, metrics: rec, logger: logger}
}

func (s *Service) Dataset(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.SetDatasetSize(len(ds.Hourly), len(ds.Daily))
	return ds, nil
}

// Summarize runs the pipeline for f against the loaded dataset.
func (s *Service) Summarize(ctx context.Context, f pipeline.Filter) (pipeline.Result, error) {
	ds, err := s.Dataset(ctx)
	if err != nil {
		return pipeline.Result{}, err
	}
	start := time.Now()
	res := pipeline.Run(ds, f)
	elapsed := time.Since(start)

	s.metrics.ObservePipeline(elapsed, len(res.Hourly), len(res.Daily))
	s.logger.Debug("pipeline run",
		"seasons", len(f.Seasons),
		"weather", len(f.Weather),
		"hourly_rows", len(res.Hourly),
		"daily_rows", len(res.Daily),
		"duration", elapsed,
	)
	return res, nil
}
