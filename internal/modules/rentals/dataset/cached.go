package dataset

import (
	"context"
	"log/slog"
	"sync"
)

// Cached memoizes the first completed Load of the wrapped Source for the
// lifetime of the process. Both the dataset and a load error are remembered.
// A load aborted because the caller's context ended is not remembered; the
// next call reads the source again.
type Cached struct {
	src    Source
	logger *slog.Logger

	mu   sync.Mutex
	done bool
	ds   *Dataset
	err  error
}

func NewCached(src Source, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{src: src, logger: logger}
}

func (c *Cached) Name() string {
	return c.src.Name()
}

// Load returns the memoized dataset. Concurrent first calls wait for a single
// read of the source.
func (c *Cached) Load(ctx context.Context) (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return c.ds, c.err
	}

	ds, err := c.src.Load(ctx)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	c.done, c.ds, c.err = true, ds, err
	if err != nil {
		return nil, err
	}

	c.logger.Info("dataset loaded",
		"source", c.src.Name(),
		"daily", len(ds.Daily),
		"hourly", len(ds.Hourly),
	)
	if n := ds.UnmappedWeather(); n > 0 {
		c.logger.Warn("records with unmapped weather code are excluded by every weather filter",
			"source", c.src.Name(),
			"records", n,
		)
	}
	return ds, nil
}
