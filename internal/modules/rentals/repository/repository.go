package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
)

//go:embed sql/get-daily.sql
var getDailySQL string

//go:embed sql/get-hourly.sql
var getHourlySQL string

//go:embed sql/count-records.sql
var countRecordsSQL string

//go:embed sql/insert-daily.sql
var insertDailySQL string

//go:embed sql/insert-hourly.sql
var insertHourlySQL string

//go:embed sql/delete-all.sql
var deleteAllSQL string

const dateLayout = "2006-01-02"

type RentalRepository interface {
	GetDaily(ctx context.Context) ([]types.DailyRecord, error)
	GetHourly(ctx context.Context) ([]types.HourlyRecord, error)
	Counts(ctx context.Context) (daily int, hourly int, err error)
	ReplaceAll(ctx context.Context, daily []types.DailyRecord, hourly []types.HourlyRecord) error
	Ping(ctx context.Context) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) RentalRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetDaily(ctx context.Context) ([]types.DailyRecord, error) {
	rows, err := r.db.QueryContext(ctx, getDailySQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close daily rows", "error", err)
		}
	}()

	var out []types.DailyRecord
	for rows.Next() {
		var (
			rec  types.DailyRecord
			date string
		)
		if err := rows.Scan(&date, &rec.Season, &rec.Weather, &rec.Total); err != nil {
			return nil, err
		}
		if rec.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetHourly(ctx context.Context) ([]types.HourlyRecord, error) {
	rows, err := r.db.QueryContext(ctx, getHourlySQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close hourly rows", "error", err)
		}
	}()

	var out []types.HourlyRecord
	for rows.Next() {
		var (
			rec                  types.HourlyRecord
			date                 string
			temp, hum, windspeed sql.NullFloat64
		)
		if err := rows.Scan(&date, &rec.Hour, &rec.Season, &rec.Weather, &temp, &hum, &windspeed, &rec.Total); err != nil {
			return nil, err
		}
		if rec.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		rec.Temperature = floatOrNaN(temp)
		rec.Humidity = floatOrNaN(hum)
		rec.Windspeed = floatOrNaN(windspeed)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) Counts(ctx context.Context) (daily int, hourly int, err error) {
	err = r.db.QueryRowContext(ctx, countRecordsSQL).Scan(&daily, &hourly)
	return daily, hourly, err
}

// ReplaceAll swaps the stored records for the given ones in a single transaction.
func (r *repositoryImpl) ReplaceAll(ctx context.Context, daily []types.DailyRecord, hourly []types.HourlyRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteAllSQL); err != nil {
		return fmt.Errorf("clear rentals: %w", err)
	}

	dailyStmt, err := tx.PrepareContext(ctx, insertDailySQL)
	if err != nil {
		return fmt.Errorf("prepare daily insert: %w", err)
	}
	defer func() { _ = dailyStmt.Close() }()
	for _, d := range daily {
		if _, err := dailyStmt.ExecContext(ctx, d.Date.Format(dateLayout), int(d.Season), int(d.Weather), d.Total); err != nil {
			return fmt.Errorf("insert daily %s: %w", d.Date.Format(dateLayout), err)
		}
	}

	hourlyStmt, err := tx.PrepareContext(ctx, insertHourlySQL)
	if err != nil {
		return fmt.Errorf("prepare hourly insert: %w", err)
	}
	defer func() { _ = hourlyStmt.Close() }()
	for _, h := range hourly {
		_, err := hourlyStmt.ExecContext(ctx,
			h.Date.Format(dateLayout), h.Hour, int(h.Season), int(h.Weather),
			nullable(h.Temperature), nullable(h.Humidity), nullable(h.Windspeed),
			h.Total,
		)
		if err != nil {
			return fmt.Errorf("insert hourly %s %02d: %w", h.Date.Format(dateLayout), h.Hour, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *repositoryImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
