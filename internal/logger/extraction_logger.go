// Package logger provides extraction-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ExtractionLogger provides dedicated logging for frame extraction and OCR.
type ExtractionLogger struct {
	*logrus.Entry
}

// NewExtractionLogger creates a new extraction logger.
func NewExtractionLogger(baseLogger *logrus.Logger) *ExtractionLogger {
	return &ExtractionLogger{
		Entry: baseLogger.WithField("component", "extraction"),
	}
}

// LogFramePass logs one completed extraction pass over a video.
func (el *ExtractionLogger) LogFramePass(slipID string, sampled, kept int, durationSeconds float64) {
	el.WithFields(logrus.Fields{
		"slip_id":          slipID,
		"frames_sampled":   sampled,
		"frames_kept":      kept,
		"duration_seconds": durationSeconds,
	}).Info("Frame extraction pass completed")
}

// LogVisionRequest logs a vision service extraction round trip.
func (el *ExtractionLogger) LogVisionRequest(slipID string, frameCount int, legsExtracted int, confidence float64, latencyMs float64) {
	el.WithFields(logrus.Fields{
		"slip_id":        slipID,
		"frame_count":    frameCount,
		"legs_extracted": legsExtracted,
		"confidence":     confidence,
		"latency_ms":     latencyMs,
	}).Info("Vision extraction completed")
}
