// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogSimulationRun logs a completed parlay simulation.
func (al *AuditLogger) LogSimulationRun(simulationID string, legCount int, stake, payout string, probabilityBasis string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"simulation_id":     simulationID,
		"leg_count":         legCount,
		"stake":             stake,
		"payout":            payout,
		"probability_basis": probabilityBasis,
		"timestamp":         timestamp.Unix(),
	}).Info("Simulation recorded")
}

// LogSlipUpload logs a slip upload event.
func (al *AuditLogger) LogSlipUpload(slipID string, source string, sizeBytes int64) {
	al.WithFields(logrus.Fields{
		"slip_id":    slipID,
		"source":     source,
		"size_bytes": sizeBytes,
	}).Info("Slip upload recorded")
}

// LogSlipStateChange logs a slip processing state change.
func (al *AuditLogger) LogSlipStateChange(slipID string, oldStatus, newStatus string, frameCount int) {
	al.WithFields(logrus.Fields{
		"slip_id":     slipID,
		"old_status":  oldStatus,
		"new_status":  newStatus,
		"frame_count": frameCount,
	}).Info("Slip state changed")
}

// LogExtractionFailure logs a terminal extraction failure.
func (al *AuditLogger) LogExtractionFailure(slipID string, reason string) {
	al.WithFields(logrus.Fields{
		"slip_id": slipID,
		"reason":  reason,
	}).Warn("Slip extraction failed")
}
