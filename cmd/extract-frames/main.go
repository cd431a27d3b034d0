// Package main provides a CLI for extracting deduplicated frames from a slip video.
package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/parlayscope/internal/frames"
	"github.com/yourusername/parlayscope/internal/logger"
	"github.com/yourusername/parlayscope/internal/models"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	outputDir      string
	sampleInterval float64
	maxFrames      int
	hashDistance   int
	ffmpegPath     string
	ffprobePath    string
	logLevel       string
)

func init() {
	rootCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Directory to write JPEG frames into (omit for a dry run)")
	rootCmd.Flags().Float64Var(&sampleInterval, "interval", 0.5, "Seconds between sampled frames")
	rootCmd.Flags().IntVar(&maxFrames, "max-frames", 30, "Maximum frames to sample")
	rootCmd.Flags().IntVar(&hashDistance, "hash-distance", frames.DefaultHashDistance, "Max hamming distance for near-duplicate frames")
	rootCmd.Flags().StringVar(&ffmpegPath, "ffmpeg", "ffmpeg", "Path to the ffmpeg binary")
	rootCmd.Flags().StringVar(&ffprobePath, "ffprobe", "ffprobe", "Path to the ffprobe binary")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
}

var rootCmd = &cobra.Command{
	Use:     "parlayscope-extract-frames <video>",
	Short:   "Extract and deduplicate still frames from a slip video",
	Args:    cobra.ExactArgs(1),
	Version: fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildDate),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtraction(args[0])
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runExtraction(videoPath string) error {
	appLog := logger.NewLogger(logLevel)

	extractor := frames.NewExtractor(frames.Config{
		SampleIntervalSeconds: sampleInterval,
		MaxFrames:             maxFrames,
		FFmpegPath:            ffmpegPath,
		FFprobePath:           ffprobePath,
	}, appLog)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	result, err := extractor.Extract(ctx, videoPath, func(p models.ExtractionProgress) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s: %s\n", p.Percent, p.Stage, p.Message)
	})
	if err != nil {
		return err
	}

	kept := frames.Deduplicate(result.Frames, hashDistance)
	fmt.Printf("Sampled %d frames in %s, %d kept after deduplication (video %.1fs)\n",
		result.SampledCount, time.Since(start).Round(time.Millisecond), len(kept), result.DurationSeconds)

	if outputDir == "" {
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for i, frame := range kept {
		data, err := base64.StdEncoding.DecodeString(frame.Base64)
		if err != nil {
			return fmt.Errorf("frame %d is not valid base64: %w", i, err)
		}
		name := filepath.Join(outputDir, fmt.Sprintf("frame_%04d_%dms.jpg", i, frame.TimestampMs))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	fmt.Printf("Wrote %d frames to %s\n", len(kept), outputDir)
	return nil
}
