package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlayscope/internal/frames"
	"github.com/yourusername/parlayscope/internal/insights"
	"github.com/yourusername/parlayscope/internal/models"
	"github.com/yourusername/parlayscope/internal/parlay"
	"github.com/yourusername/parlayscope/internal/service"
)

// SimulationAPI is the simulation surface the handlers depend on
type SimulationAPI interface {
	Run(ctx context.Context, req service.SimulationRequest) (*models.Simulation, []parlay.LegError, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Simulation, error)
	Get(ctx context.Context, id string) (*models.Simulation, error)
}

// SlipAPI is the slip processing surface the handlers depend on
type SlipAPI interface {
	ProcessVideo(ctx context.Context, videoPath string, stake decimal.Decimal, onProgress frames.ProgressFunc) (*service.SlipResult, error)
	GetSlip(ctx context.Context, id string) (*models.Slip, error)
	GetSlipSimulations(ctx context.Context, id string) ([]*models.Simulation, error)
}

// InsightAPI is the insights surface the handlers depend on
type InsightAPI interface {
	SharpMoney(ctx context.Context) (*models.Insight, error)
	HitRates(ctx context.Context) (*models.Insight, error)
	FatigueAdvice(ctx context.Context, descriptions []string, hitRateThreshold float64, minSampleSize int) (*insights.FatigueReport, error)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	simulations SimulationAPI
	slips       SlipAPI
	insights    InsightAPI
	hub         *Hub
	logger      *logrus.Logger

	// uploads are processed off the request; this bounds the pipeline run
	processTimeout time.Duration
	maxUploadBytes int64
	hedgeEnabled   bool
}

// NewHandler creates a new handler with dependencies
func NewHandler(simulations SimulationAPI, slips SlipAPI, insights InsightAPI, hub *Hub, maxUploadBytes int64, hedgeEnabled bool, logger *logrus.Logger) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = frames.DefaultMaxVideoBytes
	}
	return &Handler{
		simulations:    simulations,
		slips:          slips,
		insights:       insights,
		hub:            hub,
		logger:         logger,
		processTimeout: 5 * time.Minute,
		maxUploadBytes: maxUploadBytes,
		hedgeEnabled:   hedgeEnabled,
	}
}

type simulationRequestBody struct {
	Legs []struct {
		Description  string `json:"description"`
		AmericanOdds int    `json:"american_odds"`
	} `json:"legs"`
	Stake             string `json:"stake"`
	TotalOddsOverride *int   `json:"total_odds_override,omitempty"`
}

type rejectedLeg struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// CreateSimulation runs a manual parlay simulation
func (h *Handler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var body simulationRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}

	stake, err := decimal.NewFromString(body.Stake)
	if err != nil {
		respondError(w, http.StatusBadRequest, "stake must be a decimal string", err)
		return
	}

	req := service.SimulationRequest{
		Stake:             stake,
		TotalOddsOverride: body.TotalOddsOverride,
	}
	for _, leg := range body.Legs {
		req.Descriptions = append(req.Descriptions, leg.Description)
		req.AmericanOdds = append(req.AmericanOdds, leg.AmericanOdds)
	}

	sim, rejected, err := h.simulations.Run(ctx, req)
	if err != nil {
		if len(rejected) > 0 {
			details := make([]rejectedLeg, len(rejected))
			for i, failure := range rejected {
				details[i] = rejectedLeg{Index: failure.Index, Reason: failure.Error()}
			}
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":         "some legs were rejected",
				"rejected_legs": details,
			})
			return
		}
		respondError(w, simulationErrorStatus(err), "simulation rejected", err)
		return
	}

	respondJSON(w, http.StatusCreated, sim)
}

// GetSimulations lists recent simulations
func (h *Handler) GetSimulations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	limit := parseIntParam(r, "limit", 20)
	sims, err := h.simulations.GetRecent(ctx, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list simulations", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"simulations": sims,
		"count":       len(sims),
	})
}

// GetSimulation returns one simulation by ID
func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sim, err := h.simulations.Get(ctx, chi.URLParam(r, "simulationID"))
	if err != nil {
		respondError(w, lookupErrorStatus(err), "failed to load simulation", err)
		return
	}

	respondJSON(w, http.StatusOK, sim)
}

// CreateSlip accepts a slip video upload and starts the extraction pipeline.
// The response carries the extraction ID to follow on the websocket stream.
func (h *Handler) CreateSlip(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "upload too large or malformed", err)
		return
	}

	stake, err := decimal.NewFromString(r.FormValue("stake"))
	if err != nil || !stake.IsPositive() {
		respondError(w, http.StatusBadRequest, "stake must be a positive decimal", err)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		respondError(w, http.StatusBadRequest, "video file is required", err)
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "parlayscope-upload-*")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to stage upload", err)
		return
	}
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		respondError(w, http.StatusInternalServerError, "failed to stage upload", err)
		return
	}
	tmp.Close()

	extractionID := uuid.New().String()
	h.logger.WithFields(logrus.Fields{
		"extraction_id": extractionID,
		"filename":      header.Filename,
		"size_bytes":    header.Size,
	}).Info("Slip upload accepted")

	go h.runPipeline(extractionID, tmp.Name(), stake)

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"extraction_id": extractionID,
		"progress_url":  fmt.Sprintf("/ws/extractions/%s", extractionID),
	})
}

// runPipeline drives one upload through extraction and publishes progress
func (h *Handler) runPipeline(extractionID, videoPath string, stake decimal.Decimal) {
	defer os.Remove(videoPath)

	ctx, cancel := context.WithTimeout(context.Background(), h.processTimeout)
	defer cancel()

	result, err := h.slips.ProcessVideo(ctx, videoPath, stake, func(p models.ExtractionProgress) {
		// terminal stages are published below with result identifiers
		if p.Stage == models.StageComplete || p.Stage == models.StageError {
			return
		}
		h.hub.Publish(extractionID, ExtractionEvent{
			Stage:   p.Stage,
			Percent: p.Percent,
			Message: p.Message,
		})
	})
	if err != nil {
		h.logger.WithError(err).WithField("extraction_id", extractionID).Warn("Slip pipeline failed")
		h.hub.Publish(extractionID, ExtractionEvent{
			Stage:   models.StageError,
			Message: err.Error(),
		})
		return
	}

	h.hub.Publish(extractionID, ExtractionEvent{
		Stage:        models.StageComplete,
		Percent:      100,
		Message:      "extraction complete",
		SlipID:       result.Slip.ID.String(),
		SimulationID: result.Simulation.ID.String(),
	})
}

// GetSlip returns one slip by ID
func (h *Handler) GetSlip(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slip, err := h.slips.GetSlip(ctx, chi.URLParam(r, "slipID"))
	if err != nil {
		respondError(w, lookupErrorStatus(err), "failed to load slip", err)
		return
	}

	respondJSON(w, http.StatusOK, slip)
}

// GetSlipSimulations lists simulations recorded against a slip
func (h *Handler) GetSlipSimulations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sims, err := h.slips.GetSlipSimulations(ctx, chi.URLParam(r, "slipID"))
	if err != nil {
		respondError(w, lookupErrorStatus(err), "failed to load slip simulations", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"simulations": sims,
		"count":       len(sims),
	})
}

// GetSharpMoney serves the latest sharp money insight
func (h *Handler) GetSharpMoney(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	insight, err := h.insights.SharpMoney(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "sharp money report unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, insight)
}

// GetHitRates serves the latest hit rate insight
func (h *Handler) GetHitRates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	insight, err := h.insights.HitRates(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "hit rate report unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, insight)
}

type hedgeRequestBody struct {
	ParlayStake     string `json:"parlay_stake"`
	PotentialPayout string `json:"potential_payout"`
	HedgeOdds       int    `json:"hedge_american_odds"`
}

// CreateHedgePlan computes the equal-profit hedge stake against a parlay's
// final leg
func (h *Handler) CreateHedgePlan(w http.ResponseWriter, r *http.Request) {
	if !h.hedgeEnabled {
		respondError(w, http.StatusNotFound, "hedge suggestions are disabled", nil)
		return
	}

	var body hedgeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}

	stake, err := decimal.NewFromString(body.ParlayStake)
	if err != nil {
		respondError(w, http.StatusBadRequest, "parlay_stake must be a decimal string", err)
		return
	}
	payout, err := decimal.NewFromString(body.PotentialPayout)
	if err != nil {
		respondError(w, http.StatusBadRequest, "potential_payout must be a decimal string", err)
		return
	}

	plan, err := insights.BuildHedgePlan(stake, payout, body.HedgeOdds)
	if err != nil {
		respondError(w, hedgeErrorStatus(err), "hedge plan rejected", err)
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

type fatigueRequestBody struct {
	Legs             []string `json:"legs"`
	HitRateThreshold float64  `json:"hit_rate_threshold"`
	MinSampleSize    int      `json:"min_sample_size"`
}

// CreateFatigueAdvice flags underperforming markets among the given legs
func (h *Handler) CreateFatigueAdvice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var body fatigueRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}
	if body.HitRateThreshold <= 0 || body.HitRateThreshold >= 1 {
		body.HitRateThreshold = 0.5
	}
	if body.MinSampleSize <= 0 {
		body.MinSampleSize = 10
	}

	advice, err := h.insights.FatigueAdvice(ctx, body.Legs, body.HitRateThreshold, body.MinSampleSize)
	if err != nil {
		respondError(w, http.StatusBadGateway, "fatigue advice unavailable", err)
		return
	}

	respondJSON(w, http.StatusOK, advice)
}

func hedgeErrorStatus(err error) int {
	switch {
	case errors.Is(err, insights.ErrHedgeNotProfitable),
		errors.Is(err, insights.ErrInvalidHedgeInput),
		errors.Is(err, models.ErrInvalidOdds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func simulationErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrTooFewLegs),
		errors.Is(err, service.ErrTooManyLegs),
		errors.Is(err, service.ErrStakeTooLarge),
		errors.Is(err, models.ErrInvalidStake),
		errors.Is(err, models.ErrInvalidOdds),
		errors.Is(err, models.ErrNoLegs):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func lookupErrorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
