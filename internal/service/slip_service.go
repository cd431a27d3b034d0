package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlayscope/internal/frames"
	"github.com/yourusername/parlayscope/internal/logger"
	"github.com/yourusername/parlayscope/internal/metrics"
	"github.com/yourusername/parlayscope/internal/models"
	"github.com/yourusername/parlayscope/internal/parlay"
	"github.com/yourusername/parlayscope/internal/repository"
	"github.com/yourusername/parlayscope/internal/vision"
)

// FrameExtractor samples deduplicatable frames from a video file
type FrameExtractor interface {
	Extract(ctx context.Context, path string, onProgress frames.ProgressFunc) (*models.ExtractionResult, error)
}

// SlipReader turns frame images into structured slip data
type SlipReader interface {
	ExtractSlip(ctx context.Context, frames []string) (*vision.ExtractedSlip, error)
}

// TxRunner executes fn atomically; repository calls made with the context fn
// receives commit or roll back together.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlipResult is the outcome of a full slip processing pass
type SlipResult struct {
	Slip         *models.Slip         `json:"slip"`
	Simulation   *models.Simulation   `json:"simulation"`
	Extraction   *vision.ExtractedSlip `json:"extraction"`
	RejectedLegs []parlay.LegError    `json:"-"`
}

// SlipService runs the video-to-simulation pipeline: extract frames,
// deduplicate, read the slip, build legs and simulate.
type SlipService struct {
	extractor      FrameExtractor
	slipReader     SlipReader
	slipRepo       repository.SlipRepository
	simulationRepo repository.SimulationRepository
	tx             TxRunner
	hashDistance   int
	audit          *logger.AuditLogger
	extraction     *logger.ExtractionLogger
	logger         *logrus.Logger
}

// NewSlipService creates a slip processing service
func NewSlipService(
	extractor FrameExtractor,
	slipReader SlipReader,
	slipRepo repository.SlipRepository,
	simulationRepo repository.SimulationRepository,
	tx TxRunner,
	hashDistance int,
	audit *logger.AuditLogger,
	log *logrus.Logger,
) *SlipService {
	if hashDistance <= 0 {
		hashDistance = frames.DefaultHashDistance
	}
	return &SlipService{
		extractor:      extractor,
		slipReader:     slipReader,
		slipRepo:       slipRepo,
		simulationRepo: simulationRepo,
		tx:             tx,
		hashDistance:   hashDistance,
		audit:          audit,
		extraction:     logger.NewExtractionLogger(log),
		logger:         log,
	}
}

// ProcessVideo runs the full pipeline for an uploaded slip video. The slip
// record tracks every state transition; a failure at any stage marks the slip
// failed with the reason and returns the error, never a partial result.
func (s *SlipService) ProcessVideo(ctx context.Context, videoPath string, stake decimal.Decimal, onProgress frames.ProgressFunc) (*SlipResult, error) {
	start := time.Now()

	slip := &models.Slip{
		ID:         uuid.New(),
		Source:     models.SlipSourceVideo,
		Status:     models.SlipStatusPending,
		UploadedAt: time.Now(),
	}
	if err := s.slipRepo.Create(ctx, slip); err != nil {
		return nil, fmt.Errorf("failed to create slip record: %w", err)
	}

	var sizeBytes int64
	if info, err := os.Stat(videoPath); err == nil {
		sizeBytes = info.Size()
	}
	metrics.RecordSlipUpload(string(slip.Source))
	s.audit.LogSlipUpload(slip.ID.String(), string(slip.Source), sizeBytes)

	if err := s.transition(ctx, slip, models.SlipStatusExtracting, 0, nil); err != nil {
		return nil, err
	}

	metrics.ActiveExtractions.Inc()
	defer metrics.ActiveExtractions.Dec()

	result, err := s.extractor.Extract(ctx, videoPath, onProgress)
	if err != nil {
		return nil, s.fail(ctx, slip, err, extractionFailureReason(err))
	}

	kept := frames.Deduplicate(result.Frames, s.hashDistance)
	metrics.RecordExtractionPass(result.SampledCount, len(kept), time.Since(start).Seconds())
	s.extraction.LogFramePass(slip.ID.String(), result.SampledCount, len(kept), time.Since(start).Seconds())

	images := make([]string, len(kept))
	for i, frame := range kept {
		images[i] = frame.Base64
	}

	visionStart := time.Now()
	extraction, err := s.slipReader.ExtractSlip(ctx, images)
	if err != nil {
		return nil, s.fail(ctx, slip, err, "vision_extraction")
	}
	s.extraction.LogVisionRequest(slip.ID.String(), len(images), len(extraction.Legs), extraction.Confidence, float64(time.Since(visionStart).Milliseconds()))

	descriptions := make([]string, len(extraction.Legs))
	americanOdds := make([]int, len(extraction.Legs))
	for i, leg := range extraction.Legs {
		descriptions[i] = leg.Description
		americanOdds[i] = leg.AmericanOdds
	}

	legs, rejected := parlay.NewLegs(descriptions, americanOdds)
	if len(rejected) > 0 {
		metrics.LegsRejectedTotal.Add(float64(len(rejected)))
	}
	if len(legs) == 0 {
		return nil, s.fail(ctx, slip, models.ErrNoLegs, "no_usable_legs")
	}

	sim, err := parlay.Simulate(legs, stake, extraction.StatedTotalOdds)
	if err != nil {
		return nil, s.fail(ctx, slip, err, "simulation")
	}
	sim.SlipID = &slip.ID

	// The simulation row and the slip's terminal state land together or not
	// at all.
	slip.StatedOdds = extraction.StatedTotalOdds
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.simulationRepo.Create(ctx, sim); err != nil {
			return fmt.Errorf("failed to persist simulation: %w", err)
		}
		return s.transition(ctx, slip, models.SlipStatusExtracted, len(kept), nil)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordSimulation(string(sim.ProbabilityBasis), time.Since(start).Seconds())
	s.audit.LogSimulationRun(sim.ID.String(), len(sim.Legs), sim.Stake.String(), sim.Payout.String(), string(sim.ProbabilityBasis), sim.CreatedAt)

	return &SlipResult{
		Slip:         slip,
		Simulation:   sim,
		Extraction:   extraction,
		RejectedLegs: rejected,
	}, nil
}

// GetSlip returns a slip by ID
func (s *SlipService) GetSlip(ctx context.Context, id string) (*models.Slip, error) {
	slipID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.slipRepo.GetByID(ctx, slipID)
}

// GetSlipSimulations returns simulations recorded against a slip
func (s *SlipService) GetSlipSimulations(ctx context.Context, id string) ([]*models.Simulation, error) {
	slipID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.simulationRepo.ListBySlipID(ctx, slipID)
}

func (s *SlipService) transition(ctx context.Context, slip *models.Slip, status models.SlipStatus, frameCount int, failureReason *string) error {
	old := slip.Status
	if err := s.slipRepo.UpdateStatus(ctx, slip.ID, status, frameCount, slip.StatedOdds, failureReason); err != nil {
		return fmt.Errorf("failed to update slip status: %w", err)
	}
	slip.Status = status
	slip.FrameCount = frameCount
	slip.FailureReason = failureReason
	if status == models.SlipStatusExtracted || status == models.SlipStatusFailed {
		now := time.Now()
		slip.ProcessedAt = &now
	}
	s.audit.LogSlipStateChange(slip.ID.String(), string(old), string(status), frameCount)
	return nil
}

func (s *SlipService) fail(ctx context.Context, slip *models.Slip, cause error, reason string) error {
	metrics.RecordExtractionFailure(reason)
	s.audit.LogExtractionFailure(slip.ID.String(), cause.Error())

	msg := cause.Error()
	if err := s.transition(ctx, slip, models.SlipStatusFailed, slip.FrameCount, &msg); err != nil {
		s.logger.WithError(err).WithField("slip_id", slip.ID).Error("Failed to mark slip failed")
	}
	return cause
}

// extractionFailureReason maps extraction errors to a metric label
func extractionFailureReason(err error) string {
	switch {
	case errors.Is(err, frames.ErrNotVideo):
		return "not_video"
	case errors.Is(err, frames.ErrFileTooLarge):
		return "file_too_large"
	case errors.Is(err, frames.ErrNoFrames):
		return "no_frames"
	case errors.Is(err, frames.ErrDecodeFailed):
		return "decode_failed"
	default:
		return "unknown"
	}
}
