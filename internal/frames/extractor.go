package frames

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlayscope/internal/models"
)

// ProgressFunc receives stage transitions while an extraction runs
type ProgressFunc func(models.ExtractionProgress)

// Config holds frame extraction settings
type Config struct {
	SampleIntervalSeconds float64 // cadence between sampled timestamps
	MaxFrames             int     // hard cap on sampled frames per video
	MaxVideoBytes         int64
	FFmpegPath            string
	FFprobePath           string
}

// DefaultConfig returns recommended extraction defaults
func DefaultConfig() Config {
	return Config{
		SampleIntervalSeconds: 0.5,
		MaxFrames:             30,
		MaxVideoBytes:         DefaultMaxVideoBytes,
		FFmpegPath:            "ffmpeg",
		FFprobePath:           "ffprobe",
	}
}

// Extractor decodes sampled frames from a video file via ffmpeg
type Extractor struct {
	cfg    Config
	logger *logrus.Logger
}

// NewExtractor creates a frame extractor
func NewExtractor(cfg Config, logger *logrus.Logger) *Extractor {
	if cfg.SampleIntervalSeconds <= 0 {
		cfg.SampleIntervalSeconds = 0.5
	}
	if cfg.MaxFrames <= 0 {
		cfg.MaxFrames = 30
	}
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = "ffprobe"
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract samples the video at a fixed cadence up to the frame cap and
// returns base64-encoded JPEG frames with their source timestamps.
//
// Progress moves loading -> extracting -> complete, with a terminal error
// stage on any failure. A failed extraction never returns a partial frame
// set as success. Temporary decode artifacts are removed on every exit path.
func (e *Extractor) Extract(ctx context.Context, path string, onProgress ProgressFunc) (*models.ExtractionResult, error) {
	report := func(stage models.ExtractionStage, percent int, msg string) {
		if onProgress != nil {
			onProgress(models.ExtractionProgress{Stage: stage, Percent: percent, Message: msg})
		}
	}
	fail := func(err error) (*models.ExtractionResult, error) {
		report(models.StageError, 0, err.Error())
		return nil, err
	}

	report(models.StageLoading, 0, "validating video")

	if err := ValidateVideoFile(path, e.cfg.MaxVideoBytes); err != nil {
		return fail(err)
	}

	duration, err := e.probeDuration(ctx, path)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrDecodeFailed, err))
	}
	report(models.StageLoading, 10, "video loaded")

	tmpDir, err := os.MkdirTemp("", "parlayscope-frames-*")
	if err != nil {
		return fail(fmt.Errorf("failed to create frame directory: %w", err))
	}
	defer os.RemoveAll(tmpDir)

	if err := e.runFFmpeg(ctx, path, tmpDir); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrDecodeFailed, err))
	}

	paths, err := filepath.Glob(filepath.Join(tmpDir, "frame_*.jpg"))
	if err != nil {
		return fail(fmt.Errorf("failed to list frames: %w", err))
	}
	if len(paths) == 0 {
		return fail(ErrNoFrames)
	}
	sort.Strings(paths)

	frames := make([]models.ExtractedFrame, 0, len(paths))
	intervalMs := int64(e.cfg.SampleIntervalSeconds * 1000)
	for i, framePath := range paths {
		select {
		case <-ctx.Done():
			return fail(ctx.Err())
		default:
		}

		frame, err := e.loadFrame(framePath, int64(i)*intervalMs)
		if err != nil {
			return fail(fmt.Errorf("%w: %v", ErrDecodeFailed, err))
		}
		frames = append(frames, frame)

		// 10..99 while extracting; 100 is reserved for complete
		percent := 10 + (89*(i+1))/len(paths)
		report(models.StageExtracting, percent, fmt.Sprintf("extracted frame %d/%d", i+1, len(paths)))
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"frames":   len(frames),
			"duration": duration,
			"path":     filepath.Base(path),
		}).Info("Frame extraction completed")
	}

	report(models.StageComplete, 100, "extraction complete")

	return &models.ExtractionResult{
		Frames:          frames,
		SampledCount:    len(frames),
		DurationSeconds: duration,
	}, nil
}

// probeDuration reads the container duration in seconds via ffprobe
func (e *Extractor) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

// runFFmpeg samples one frame per interval into the scratch directory
func (e *Extractor) runFFmpeg(ctx context.Context, path, outDir string) error {
	fps := fmt.Sprintf("fps=1/%g", e.cfg.SampleIntervalSeconds)
	cmd := exec.CommandContext(ctx, e.cfg.FFmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vf", fps,
		"-frames:v", strconv.Itoa(e.cfg.MaxFrames),
		"-q:v", "2",
		filepath.Join(outDir, "frame_%04d.jpg"),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// loadFrame reads a decoded JPEG from disk into an ExtractedFrame
func (e *Extractor) loadFrame(path string, timestampMs int64) (models.ExtractedFrame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ExtractedFrame{}, fmt.Errorf("failed to read frame: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return models.ExtractedFrame{}, fmt.Errorf("failed to decode frame: %w", err)
	}

	return models.ExtractedFrame{
		Base64:      base64.StdEncoding.EncodeToString(data),
		TimestampMs: timestampMs,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
