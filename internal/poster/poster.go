package poster

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"media-player/internal/filesystem"
	"media-player/internal/logging"
	"media-player/internal/mediatypes"
	"media-player/internal/metrics"
	"media-player/internal/rotation"

	_ "image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// MaxDimension bounds both sides of a generated poster.
const MaxDimension = 640

// ErrDisabled is returned when the generator was created without a cache directory.
var ErrDisabled = errors.New("posters disabled")

// FrameExtractor grabs a representative frame from a video.
type FrameExtractor func(ctx context.Context, path string) (image.Image, error)

// Gate holds back generation while the process is short of memory.
type Gate interface {
	Wait(ctx context.Context) error
}

// Generator renders poster images rotated to match the player.
type Generator struct {
	cacheDir string
	extract  FrameExtractor
	gate     Gate
	slots    chan struct{}
}

// New creates a generator caching under cacheDir and allowing at most
// workers generations at once. An empty cacheDir disables posters.
func New(cacheDir string, workers int) *Generator {
	if workers < 1 {
		workers = 1
	}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			logging.Warn("Poster generator: failed to create cache dir %s: %v", cacheDir, err)
		}
		logging.Debug("Poster generator: enabled, cache dir: %s, workers: %d", cacheDir, workers)
	} else {
		logging.Debug("Poster generator: disabled")
	}
	return &Generator{
		cacheDir: cacheDir,
		extract:  ffmpegFrame,
		slots:    make(chan struct{}, workers),
	}
}

// WithExtractor replaces the frame extractor. Used by tests.
func (g *Generator) WithExtractor(fn FrameExtractor) *Generator {
	g.extract = fn
	return g
}

// WithGate makes every generation wait on gate before decoding.
func (g *Generator) WithGate(gate Gate) *Generator {
	g.gate = gate
	return g
}

// Enabled reports whether posters can be generated.
func (g *Generator) Enabled() bool {
	return g.cacheDir != ""
}

// Poster returns a JPEG poster for the video at path, rotated clockwise by
// angle the same way the player rotates the video element.
func (g *Generator) Poster(ctx context.Context, path string, angle rotation.Angle) ([]byte, error) {
	if !g.Enabled() {
		return nil, ErrDisabled
	}
	if !angle.Valid() {
		return nil, fmt.Errorf("poster for %s: %w", path, rotation.ErrInvalidAngle)
	}

	info, err := filesystem.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}

	cachePath := g.cachePath(path, info.ModTime(), angle)
	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.PosterCacheHits.Inc()
		logging.Debug("Poster cache hit: %s (%d°)", path, angle)
		return data, nil
	}

	select {
	case g.slots <- struct{}{}:
		defer func() { <-g.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Another request may have rendered it while we waited for a slot.
	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.PosterCacheHits.Inc()
		return data, nil
	}

	if g.gate != nil {
		if err := g.gate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("poster generation paused: %w", err)
		}
	}

	start := time.Now()
	img, source, err := g.load(ctx, path)
	if err != nil {
		metrics.PosterGenerationsTotal.WithLabelValues(source, "error").Inc()
		return nil, fmt.Errorf("poster generation failed: %w", err)
	}

	data, err := render(img, angle)
	if err != nil {
		metrics.PosterGenerationsTotal.WithLabelValues(source, "error").Inc()
		return nil, err
	}
	metrics.PosterGenerationsTotal.WithLabelValues(source, "success").Inc()
	metrics.PosterGenerationDuration.Observe(time.Since(start).Seconds())

	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		logging.Warn("Failed to cache poster %s: %v", cachePath, err)
	} else {
		logging.Debug("Poster cached: %s", cachePath)
	}

	return data, nil
}

// cachePath keys the poster on the video path, its modification time and
// the angle, so a replaced file never serves a stale poster.
func (g *Generator) cachePath(path string, modTime time.Time, angle rotation.Angle) string {
	hash := md5.Sum([]byte(fmt.Sprintf("%s:%d", path, modTime.Unix())))
	return filepath.Join(g.cacheDir, fmt.Sprintf("%x_%d.jpg", hash, angle))
}

// load returns the sidecar image if one exists, otherwise a video frame.
func (g *Generator) load(ctx context.Context, path string) (image.Image, string, error) {
	if sidecar := findSidecar(path); sidecar != "" {
		img, err := decodeSidecar(ctx, sidecar)
		if err == nil {
			logging.Debug("Poster from sidecar: %s", sidecar)
			return img, "sidecar", nil
		}
		logging.Debug("Sidecar %s unreadable, falling back to ffmpeg: %v", sidecar, err)
	}

	img, err := g.extract(ctx, path)
	if err != nil {
		return nil, "ffmpeg", err
	}
	if img == nil {
		return nil, "ffmpeg", fmt.Errorf("frame extraction returned nil image for %s", path)
	}
	return img, "ffmpeg", nil
}

// findSidecar looks for movie.jpg, movie.png, ... next to movie.mp4.
func findSidecar(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range mediatypes.PosterExtensions() {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func decodeSidecar(ctx context.Context, path string) (image.Image, error) {
	// imaging has no webp decoder registered.
	if f, _ := mediatypes.Lookup(path); f.MIME == "image/webp" {
		f, err := filesystem.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return webp.Decode(f)
	}
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// render rotates img clockwise by angle, fits it into the poster bounds and
// encodes it as JPEG.
func render(img image.Image, angle rotation.Angle) ([]byte, error) {
	switch angle {
	case rotation.Angle90:
		img = imaging.Rotate270(img)
	case rotation.Angle180:
		img = imaging.Rotate180(img)
	case rotation.Angle270:
		img = imaging.Rotate90(img)
	}

	fitted := imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitted, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode poster: %w", err)
	}
	return buf.Bytes(), nil
}

// ffmpegFrame extracts the frame at one second, retrying from the first
// frame for clips shorter than that.
func ffmpegFrame(ctx context.Context, path string) (image.Image, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	var stdout, stderr bytes.Buffer
	run := func(args ...string) error {
		stdout.Reset()
		stderr.Reset()
		cmd := exec.CommandContext(ctx, "ffmpeg", args...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		return cmd.Run()
	}

	err := run("-i", path, "-ss", "00:00:01", "-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-")
	if err != nil || stdout.Len() == 0 {
		logging.Debug("FFmpeg first attempt failed for %s: %v, stderr: %s", path, err, stderr.String())
		if err := run("-i", path, "-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-"); err != nil {
			return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
		}
	}

	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}
