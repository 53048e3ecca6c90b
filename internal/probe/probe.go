package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"media-player/internal/database"
	"media-player/internal/filesystem"
	"media-player/internal/logging"
	"media-player/internal/metrics"
	"media-player/internal/rotation"
)

// ErrNoVideoStream is returned when ffprobe finds no video stream with dimensions.
var ErrNoVideoStream = errors.New("no video stream found")

// Runner executes an external command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Cache stores probe results between runs.
type Cache interface {
	GetDimensions(ctx context.Context, path string, modTime time.Time) (*database.VideoDimensions, error)
	SaveDimensions(ctx context.Context, dims database.VideoDimensions) error
}

// VideoInfo contains the stream properties the player cares about.
type VideoInfo struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Rotation int     `json:"rotation"`
	Codec    string  `json:"codec"`
	Duration float64 `json:"duration"`
}

// DisplaySize is the size a decoder reports after applying the stream's
// display rotation: a 1920x1080 stream tagged rotate=90 plays as 1080x1920.
func (v VideoInfo) DisplaySize() rotation.Size {
	size := rotation.Size{Width: v.Width, Height: v.Height}
	if a, err := rotation.NormalizeDegrees(v.Rotation); err == nil && a.SwapsAxes() {
		size.Width, size.Height = size.Height, size.Width
	}
	return size
}

// Prober runs ffprobe, consulting the cache first when one is configured.
type Prober struct {
	run   Runner
	cache Cache
}

// New creates a Prober. A nil runner uses exec.CommandContext; a nil cache disables caching.
func New(run Runner, cache Cache) *Prober {
	if run == nil {
		run = execRunner
	}
	return &Prober{run: run, cache: cache}
}

// Probe returns the video properties of the file at path.
func (p *Prober) Probe(ctx context.Context, path string) (*VideoInfo, error) {
	stat, err := filesystem.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	modTime := stat.ModTime().Truncate(time.Second)

	if p.cache != nil {
		dims, err := p.cache.GetDimensions(ctx, path, modTime)
		switch {
		case err == nil:
			metrics.ProbeCacheHits.Inc()
			logging.Debug("Probe cache hit: %s (%dx%d)", path, dims.Width, dims.Height)
			return &VideoInfo{
				Width:    dims.Width,
				Height:   dims.Height,
				Rotation: dims.Rotation,
				Codec:    dims.Codec,
				Duration: dims.Duration,
			}, nil
		case !errors.Is(err, database.ErrNotFound):
			logging.Warn("Probe cache lookup failed for %s: %v", path, err)
		}
		metrics.ProbeCacheMisses.Inc()
	}

	start := time.Now()
	out, err := p.run(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProbeTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("ffprobe error: %w", err)
	}

	info, err := ParseOutput(out)
	if err != nil {
		metrics.ProbeTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	metrics.ProbeTotal.WithLabelValues("success").Inc()

	if p.cache != nil {
		saveErr := p.cache.SaveDimensions(ctx, database.VideoDimensions{
			Path:     path,
			ModTime:  modTime,
			Width:    info.Width,
			Height:   info.Height,
			Rotation: info.Rotation,
			Codec:    info.Codec,
			Duration: info.Duration,
		})
		if saveErr != nil {
			logging.Warn("Failed to cache probe result for %s: %v", path, saveErr)
		}
	}

	return info, nil
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType    string            `json:"codec_type"`
		CodecName    string            `json:"codec_name"`
		Width        int               `json:"width"`
		Height       int               `json:"height"`
		Duration     string            `json:"duration"`
		Tags         map[string]string `json:"tags"`
		SideDataList []struct {
			SideDataType string  `json:"side_data_type"`
			Rotation     float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseOutput decodes `ffprobe -print_format json -show_streams -show_format`
// output and returns the first video stream.
func ParseOutput(data []byte) (*VideoInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}

	for _, s := range out.Streams {
		if s.CodecType != "video" || s.Width <= 0 || s.Height <= 0 {
			continue
		}

		info := &VideoInfo{
			Width:  s.Width,
			Height: s.Height,
			Codec:  s.CodecName,
		}

		if r, ok := s.Tags["rotate"]; ok {
			if deg, err := strconv.Atoi(r); err == nil {
				info.Rotation = deg
			}
		}
		for _, sd := range s.SideDataList {
			if sd.SideDataType == "Display Matrix" && sd.Rotation != 0 {
				info.Rotation = int(sd.Rotation)
			}
		}
		if a, err := rotation.NormalizeDegrees(info.Rotation); err == nil {
			info.Rotation = int(a)
		} else {
			info.Rotation = 0
		}

		duration := s.Duration
		if duration == "" {
			duration = out.Format.Duration
		}
		info.Duration, _ = strconv.ParseFloat(duration, 64)

		return info, nil
	}

	return nil, ErrNoVideoStream
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w - %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}
