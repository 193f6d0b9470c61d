package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aguswahy13/bike-rental/internal/config"
	"github.com/aguswahy13/bike-rental/internal/db"
	"github.com/aguswahy13/bike-rental/internal/httpapi"
	"github.com/aguswahy13/bike-rental/internal/metrics"
	"github.com/aguswahy13/bike-rental/internal/migrate"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/controller"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/repository"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/service"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/views"
)

// App holds everything the dashboard server needs once the dataset is loaded.
type App struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sql.DB
	repo    repository.RentalRepository
	source  *dataset.Cached
	metrics *metrics.Recorder
	mux     *http.ServeMux
}

// New loads the dataset and templates and wires the routes. A load failure
// is returned as is; the caller treats it as fatal.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger, metrics: metrics.NewRecorder()}

	src, err := a.openSource(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.source = dataset.NewCached(src, logger)
	if _, err := a.source.Load(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load dataset from %s: %w", src.Name(), err)
	}

	if err := views.LoadTemplates(); err != nil {
		_ = a.Close()
		return nil, err
	}

	probes := []httpapi.Probe{{
		Name: "dataset",
		Check: func(ctx context.Context) error {
			_, err := a.source.Load(ctx)
			return err
		},
	}}
	if a.repo != nil {
		probes = append(probes, httpapi.Probe{Name: "database connectivity", Check: a.repo.Ping})
	}

	a.mux = httpapi.NewMux(cfg.StaticDir, a.metrics, probes...)
	svc := service.NewService(a.source, a.metrics, logger)
	controller.NewRentalController(svc).RegisterRoutes(a.mux)
	return a, nil
}

// Handler returns the routed, logged handler.
func (a *App) Handler() http.Handler {
	return httpapi.NewServer(a.cfg, a.mux, a.metrics).Handler
}

func (a *App) Close() error {
	if err := db.Close(a.db); err != nil {
		return fmt.Errorf("db close: %w", err)
	}
	return nil
}

// openSource returns the configured dataset source. The SQLite source opens
// and migrates the database first.
func (a *App) openSource(ctx context.Context) (dataset.Source, error) {
	switch a.cfg.DataSource {
	case config.SourceSQLite:
		conn, repo, err := openStore(ctx, a.cfg, a.logger)
		if err != nil {
			return nil, err
		}
		a.db, a.repo = conn, repo
		return dataset.SQLSource{Reader: repo}, nil
	case config.SourceCSV, "":
		return dataset.CSVSource{DayPath: a.cfg.DayFile, HourPath: a.cfg.HourFile}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", a.cfg.DataSource)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, repository.RentalRepository, error) {
	conn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if _, err := migrate.Up(ctx, conn, logger); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("migrate: %w", err), db.Close(conn))
	}
	return conn, repository.NewRepository(conn), nil
}

// Import reads the CSV files named by cfg and replaces the SQLite contents
// with them.
func Import(ctx context.Context, cfg config.Config, logger *slog.Logger) (daily int, hourly int, err error) {
	conn, repo, err := openStore(ctx, cfg, logger)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			logger.Error("db close", "error", closeErr)
		}
	}()

	src := dataset.CSVSource{DayPath: cfg.DayFile, HourPath: cfg.HourFile}
	daily, hourly, err = dataset.Import(ctx, src, repo)
	if err != nil {
		return 0, 0, err
	}
	logger.Info("import complete", "daily", daily, "hourly", hourly, "sqlitePath", cfg.SQLitePath)
	return daily, hourly, nil
}

// LoadDataset loads the configured source once, for one-shot commands.
func LoadDataset(ctx context.Context, cfg config.Config, logger *slog.Logger) (*dataset.Dataset, error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("close", "error", err)
		}
	}()
	src, err := a.openSource(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset from %s: %w", src.Name(), err)
	}
	return ds, nil
}
