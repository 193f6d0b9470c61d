package migrate

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUp_CreatesRentalTables(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	done, err := Up(ctx, db, quietLogger())
	if err != nil {
		t.Fatalf("Up: %v", err)
	}
	if len(done) == 0 || done[0].Version != "0001" {
		t.Fatalf("Up applied %+v; want 0001 first", done)
	}

	for _, table := range []string{"daily_rentals", "hourly_rentals"} {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		if err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}
}

func TestUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := Up(ctx, db, quietLogger()); err != nil {
		t.Fatalf("first Up: %v", err)
	}
	done, err := Up(ctx, db, quietLogger())
	if err != nil {
		t.Fatalf("second Up: %v", err)
	}
	if len(done) != 0 {
		t.Fatalf("second Up applied %d migrations; want 0", len(done))
	}
}

func TestUp_HourCheckConstraint(t *testing.T) {
	db := openTestDB(t)
	if _, err := Up(context.Background(), db, quietLogger()); err != nil {
		t.Fatalf("Up: %v", err)
	}
	_, err := db.Exec(`INSERT INTO hourly_rentals (date, hour, season, weather, total) VALUES ('2011-01-01', 24, 1, 1, 3)`)
	if err == nil {
		t.Fatal("insert with hour 24 succeeded; want CHECK failure")
	}
}

func TestUp_OrdersByVersionAndSkipsStrayFiles(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/0002_second.sql": {Data: []byte(`CREATE TABLE second (id INTEGER);`)},
		"sql/0001_first.sql":  {Data: []byte(`CREATE TABLE first (id INTEGER);`)},
		"sql/README.md":       {Data: []byte(`notes`)},
	}

	done, err := up(context.Background(), db, fsys, quietLogger())
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if len(done) != 2 || done[0].Name != "first" || done[1].Name != "second" {
		t.Fatalf("up applied %+v; want first then second", done)
	}

	versions, err := Applied(context.Background(), db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(versions) != 2 || versions[0] != "0001" || versions[1] != "0002" {
		t.Fatalf("Applied = %v; want [0001 0002]", versions)
	}
}

func TestUp_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openTestDB(t)
	fsys := fstest.MapFS{
		"sql/0001_ok.sql":     {Data: []byte(`CREATE TABLE ok (id INTEGER);`)},
		"sql/0002_broken.sql": {Data: []byte(`CREATE TABLE broken (;`)},
	}

	done, err := up(context.Background(), db, fsys, quietLogger())
	if err == nil {
		t.Fatal("up succeeded; want error from broken migration")
	}
	if len(done) != 1 {
		t.Fatalf("up applied %d migrations before failing; want 1", len(done))
	}

	versions, err := Applied(context.Background(), db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if len(versions) != 1 || versions[0] != "0001" {
		t.Fatalf("Applied = %v; want [0001]", versions)
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		in      string
		version string
		name    string
		ok      bool
	}{
		{"0001_rentals.sql", "0001", "rentals", true},
		{"0010_add_index.sql", "0010", "add_index", true},
		{"1_short.sql", "", "", false},
		{"0001_rentals.txt", "", "", false},
	}
	for _, tt := range tests {
		v, n, ok := parseFilename(tt.in)
		if v != tt.version || n != tt.name || ok != tt.ok {
			t.Errorf("parseFilename(%q) = %q, %q, %v; want %q, %q, %v", tt.in, v, n, ok, tt.version, tt.name, tt.ok)
		}
	}
}
