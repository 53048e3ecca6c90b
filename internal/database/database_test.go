package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return db
}

func TestGetDimensionsMiss(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetDimensions(context.Background(), "/media/missing.mp4", time.Unix(100, 0))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDimensions() error = %v, want ErrNotFound", err)
	}
}

func TestSaveAndGetDimensions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	modTime := time.Unix(1700000000, 0)

	want := VideoDimensions{
		Path:     "/media/clip.mp4",
		ModTime:  modTime,
		Width:    1080,
		Height:   1920,
		Rotation: 0,
		Codec:    "h264",
		Duration: 12.5,
	}
	if err := db.SaveDimensions(ctx, want); err != nil {
		t.Fatalf("SaveDimensions() error = %v", err)
	}

	got, err := db.GetDimensions(ctx, want.Path, modTime)
	if err != nil {
		t.Fatalf("GetDimensions() error = %v", err)
	}
	if got.Width != 1080 || got.Height != 1920 {
		t.Errorf("dimensions = %dx%d, want 1080x1920", got.Width, got.Height)
	}
	if got.Codec != "h264" || got.Duration != 12.5 {
		t.Errorf("codec/duration = %s/%v, want h264/12.5", got.Codec, got.Duration)
	}
	if !got.ModTime.Equal(modTime) {
		t.Errorf("ModTime = %v, want %v", got.ModTime, modTime)
	}
	if got.ProbedAt.IsZero() {
		t.Error("ProbedAt should default to now")
	}
}

func TestGetDimensionsStaleModTime(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveDimensions(ctx, VideoDimensions{Path: "/media/a.mp4", ModTime: time.Unix(100, 0), Width: 640, Height: 360}); err != nil {
		t.Fatalf("SaveDimensions() error = %v", err)
	}

	_, err := db.GetDimensions(ctx, "/media/a.mp4", time.Unix(200, 0))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDimensions() with newer mod time error = %v, want ErrNotFound", err)
	}
}

func TestSaveDimensionsReplaces(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := VideoDimensions{Path: "/media/a.mp4", ModTime: time.Unix(100, 0), Width: 640, Height: 360}
	second := VideoDimensions{Path: "/media/a.mp4", ModTime: time.Unix(200, 0), Width: 720, Height: 1280, Rotation: 90}

	for _, d := range []VideoDimensions{first, second} {
		if err := db.SaveDimensions(ctx, d); err != nil {
			t.Fatalf("SaveDimensions() error = %v", err)
		}
	}

	count, err := db.CountDimensions(ctx)
	if err != nil {
		t.Fatalf("CountDimensions() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountDimensions() = %d, want 1", count)
	}

	got, err := db.GetDimensions(ctx, "/media/a.mp4", time.Unix(200, 0))
	if err != nil {
		t.Fatalf("GetDimensions() error = %v", err)
	}
	if got.Width != 720 || got.Rotation != 90 {
		t.Errorf("got %+v, want replaced entry", got)
	}
}

func TestNewInvalidDirectory(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "sub", "test.db"))
	if err == nil {
		t.Error("New() in a missing directory should fail")
	}
}

func TestReopenKeepsSchemaAndData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	db, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := db.SaveDimensions(ctx, VideoDimensions{Path: "/media/a.mp4", ModTime: time.Unix(100, 0), Width: 1, Height: 2}); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = New(ctx, path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	var version int
	var dirty bool
	if err := db.db.QueryRowContext(ctx, "SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty); err != nil {
		t.Fatal(err)
	}
	if version != 2 || dirty {
		t.Errorf("schema_migrations = %d dirty=%v, want 2 clean", version, dirty)
	}
	if n, err := db.CountDimensions(ctx); err != nil || n != 1 {
		t.Errorf("CountDimensions() = %d, %v; want 1", n, err)
	}
}

func TestNewRejectsDirtySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dirty.db")
	ctx := context.Background()

	db, err := New(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.db.ExecContext(ctx, "UPDATE schema_migrations SET dirty = 1"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := New(ctx, path); err == nil {
		t.Error("New() accepted a dirty schema")
	}
}
