package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"media-player/internal/logging"
	"media-player/internal/metrics"
)

const queryTimeout = 5 * time.Second

// ErrNotFound means nothing is cached for the path at that modification time.
var ErrNotFound = errors.New("video dimensions not cached")

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Database is the SQLite probe cache.
type Database struct {
	db   *sql.DB
	path string
}

// New opens the database at path, creating the file and schema if needed.
// The directory must already exist.
func New(ctx context.Context, path string) (*Database, error) {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")

	db, err := sql.Open("sqlite3", "file:"+path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(10 * time.Minute)

	d := &Database{db: db, path: path}
	if err := d.migrate(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			logging.Warn("Closing %s after failed setup: %v", path, cerr)
		}
		return nil, fmt.Errorf("prepare %s: %w", path, err)
	}

	logging.Debug("Probe cache ready at %s", path)
	return d, nil
}

// migrate applies pending migrations from the embedded migrations
// directory. The migrate instance is never closed because that would close
// d.db with it.
func (d *Database) migrate(ctx context.Context) error {
	return d.timed(ctx, "migrate", func(ctx context.Context) error {
		if err := d.db.PingContext(ctx); err != nil {
			return err
		}
		src, err := iofs.New(migrationFiles, "migrations")
		if err != nil {
			return err
		}
		drv, err := sqlite3.WithInstance(d.db, &sqlite3.Config{})
		if err != nil {
			return err
		}
		m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
		if err != nil {
			return err
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("schema version %d is dirty", version)
		}
		logging.Debug("Probe cache schema at version %d", version)
		return nil
	})
}

// timed runs fn under the query timeout and records its outcome.
func (d *Database) timed(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)

	status := "success"
	if err != nil && !errors.Is(err, ErrNotFound) {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(op, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return err
}

func (d *Database) Close() error {
	return d.db.Close()
}

// GetDimensions returns the entry for path only if it was probed at
// exactly modTime (whole seconds).
func (d *Database) GetDimensions(ctx context.Context, path string, modTime time.Time) (*VideoDimensions, error) {
	var (
		v             VideoDimensions
		mod, probedAt int64
	)
	err := d.timed(ctx, "get_dimensions", func(ctx context.Context) error {
		err := d.db.QueryRowContext(ctx,
			`SELECT path, mod_time, width, height, rotation, codec, duration, probed_at
			 FROM video_dimensions WHERE path = ? AND mod_time = ?`,
			path, modTime.Unix(),
		).Scan(&v.Path, &mod, &v.Width, &v.Height, &v.Rotation, &v.Codec, &v.Duration, &probedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dimensions for %s: %w", path, err)
	}
	v.ModTime = time.Unix(mod, 0)
	v.ProbedAt = time.Unix(probedAt, 0)
	return &v, nil
}

// SaveDimensions upserts the entry for v.Path. A zero ProbedAt means now.
func (d *Database) SaveDimensions(ctx context.Context, v VideoDimensions) error {
	if v.ProbedAt.IsZero() {
		v.ProbedAt = time.Now()
	}
	err := d.timed(ctx, "save_dimensions", func(ctx context.Context) error {
		_, err := d.db.ExecContext(ctx,
			`INSERT INTO video_dimensions (path, mod_time, width, height, rotation, codec, duration, probed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET
			   mod_time = excluded.mod_time, width = excluded.width, height = excluded.height,
			   rotation = excluded.rotation, codec = excluded.codec, duration = excluded.duration,
			   probed_at = excluded.probed_at`,
			v.Path, v.ModTime.Unix(), v.Width, v.Height, v.Rotation, v.Codec, v.Duration, v.ProbedAt.Unix(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("save dimensions for %s: %w", v.Path, err)
	}
	return nil
}

// CountDimensions is the number of cached entries.
func (d *Database) CountDimensions(ctx context.Context) (int, error) {
	var n int
	err := d.timed(ctx, "count_dimensions", func(ctx context.Context) error {
		return d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM video_dimensions").Scan(&n)
	})
	return n, err
}
