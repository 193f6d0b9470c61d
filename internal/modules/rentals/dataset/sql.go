package dataset

import (
	"context"
	"fmt"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

// RecordReader is the read side of the rentals repository.
type RecordReader interface {
	GetDaily(ctx context.Context) ([]types.DailyRecord, error)
	GetHourly(ctx context.Context) ([]types.HourlyRecord, error)
}

// RecordWriter is the write side of the rentals repository.
type RecordWriter interface {
	ReplaceAll(ctx context.Context, daily []types.DailyRecord, hourly []types.HourlyRecord) error
}

// SQLSource reads both record sets from the SQLite import.
type SQLSource struct {
	Reader RecordReader
}

func (s SQLSource) Name() string {
	return "sqlite"
}

func (s SQLSource) Load(ctx context.Context) (*Dataset, error) {
	daily, err := s.Reader.GetDaily(ctx)
	if err != nil {
		return nil, fmt.Errorf("load daily records: %w", err)
	}
	hourly, err := s.Reader.GetHourly(ctx)
	if err != nil {
		return nil, fmt.Errorf("load hourly records: %w", err)
	}
	return New(daily, hourly), nil
}

// Import loads src and replaces everything held by dst with it.
func Import(ctx context.Context, src Source, dst RecordWriter) (daily int, hourly int, err error) {
	ds, err := src.Load(ctx)
	if err != nil {
		return 0, 0, err
	}
	if err := dst.ReplaceAll(ctx, ds.Daily, ds.Hourly); err != nil {
		return 0, 0, fmt.Errorf("import from %s: %w", src.Name(), err)
	}
	return len(ds.Daily), len(ds.Hourly), nil
}
