package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	StaticDir string

	// DataSource selects where the dataset is loaded from: "csv" or "sqlite".
	DataSource string
	DataDir    string
	DayFile    string
	HourFile   string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration
	SQLiteLogQueries      bool

	// ConfigFile is the YAML file values were read from, if any.
	ConfigFile string
}

// LoadFromEnv builds the Config from, in order of precedence, the process
// environment, a .env file (ENV_FILE, default ".env") and an optional YAML
// file named by CONFIG_FILE. Keys in the YAML file are the lower-cased
// variable names, e.g. http_addr.
func LoadFromEnv() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	src, err := newSource(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return Config{}, err
	}

	appEnv := src.get("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(src.get("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	dataSource := strings.ToLower(src.get("DATA_SOURCE", SourceCSV))
	switch dataSource {
	case SourceCSV, SourceSQLite:
	default:
		return Config{}, fmt.Errorf("invalid DATA_SOURCE %q (allowed: csv, sqlite)", dataSource)
	}

	staticDir, err := absPath("STATIC_DIR", src.get("STATIC_DIR", "static"))
	if err != nil {
		return Config{}, err
	}
	dataDir, err := absPath("DATA_DIR", src.get("DATA_DIR", "data"))
	if err != nil {
		return Config{}, err
	}
	dayFile := inDir(dataDir, src.get("DAY_FILE", "main-day.csv"))
	hourFile := inDir(dataDir, src.get("HOUR_FILE", "main-hour.csv"))

	dsn := src.get("DB_DSN", "")
	sqlitePath := src.get("SQLITE_PATH", filepath.Join(dataDir, "bike-rental.db"))
	if dsn == "" && !strings.HasPrefix(sqlitePath, "file:") && sqlitePath != ":memory:" {
		sqlitePath, err = absPath("SQLITE_PATH", sqlitePath)
		if err != nil {
			return Config{}, err
		}
	}

	maxOpenConns, err := src.getInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := src.getInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}

	connMaxLifetimeStr := src.get("DB_CONN_MAX_LIFETIME", "0s")
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	logSQLStr := src.get("DB_LOG_SQL", "false")
	logSQL, err := strconv.ParseBool(logSQLStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_LOG_SQL %q: %w", logSQLStr, err)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              src.get("HTTP_ADDR", ":8080"),
		StaticDir:             staticDir,
		DataSource:            dataSource,
		DataDir:               dataDir,
		DayFile:               dayFile,
		HourFile:              hourFile,
		SQLiteDriver:          src.get("DB_DRIVER", "sqlite3"),
		SQLiteDSN:             dsn,
		SQLitePath:            sqlitePath,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SQLiteLogQueries:      logSQL,
		ConfigFile:            src.path,
	}, nil
}

// loadDotEnv reads ENV_FILE, or ".env" when unset. Variables already in the
// environment win. A missing default file is not an error.
func loadDotEnv() error {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

type source struct {
	path string
	file map[string]string
}

func newSource(path string) (source, error) {
	if path == "" {
		return source{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return source{}, fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	var file map[string]string
	if err := yaml.Unmarshal(b, &file); err != nil {
		return source{}, fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return source{path: abs, file: file}, nil
}

// get returns the trimmed environment value for key, then the file value,
// then def.
func (s source) get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(s.file[strings.ToLower(key)]); v != "" {
		return v
	}
	return def
}

func (s source) getInt(key string, def int) (int, error) {
	str := s.get(key, strconv.Itoa(def))
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, str, err)
	}
	return n, nil
}

func absPath(key, p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", key, p, err)
	}
	return abs, nil
}

func inDir(dir, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(dir, name)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
