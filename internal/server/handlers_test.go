package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/parlayscope/internal/config"
	"github.com/yourusername/parlayscope/internal/frames"
	"github.com/yourusername/parlayscope/internal/insights"
	"github.com/yourusername/parlayscope/internal/models"
	"github.com/yourusername/parlayscope/internal/parlay"
	"github.com/yourusername/parlayscope/internal/service"
)

type fakeSimulationAPI struct {
	sim      *models.Simulation
	rejected []parlay.LegError
	err      error
	recent   []*models.Simulation
}

func (f *fakeSimulationAPI) Run(ctx context.Context, req service.SimulationRequest) (*models.Simulation, []parlay.LegError, error) {
	return f.sim, f.rejected, f.err
}

func (f *fakeSimulationAPI) GetRecent(ctx context.Context, limit int) ([]*models.Simulation, error) {
	return f.recent, f.err
}

func (f *fakeSimulationAPI) Get(ctx context.Context, id string) (*models.Simulation, error) {
	if f.sim == nil {
		return nil, models.ErrNotFound
	}
	return f.sim, f.err
}

type fakeSlipAPI struct {
	result   *service.SlipResult
	slip     *models.Slip
	err      error
	progress []models.ExtractionProgress
}

func (f *fakeSlipAPI) ProcessVideo(ctx context.Context, videoPath string, stake decimal.Decimal, onProgress frames.ProgressFunc) (*service.SlipResult, error) {
	for _, p := range f.progress {
		if onProgress != nil {
			onProgress(p)
		}
	}
	return f.result, f.err
}

func (f *fakeSlipAPI) GetSlip(ctx context.Context, id string) (*models.Slip, error) {
	if f.slip == nil {
		return nil, models.ErrNotFound
	}
	return f.slip, nil
}

func (f *fakeSlipAPI) GetSlipSimulations(ctx context.Context, id string) ([]*models.Simulation, error) {
	return nil, f.err
}

type fakeInsightAPI struct {
	insight *models.Insight
	fatigue *insights.FatigueReport
	err     error
}

func (f *fakeInsightAPI) SharpMoney(ctx context.Context) (*models.Insight, error) {
	return f.insight, f.err
}

func (f *fakeInsightAPI) HitRates(ctx context.Context) (*models.Insight, error) {
	return f.insight, f.err
}

func (f *fakeInsightAPI) FatigueAdvice(ctx context.Context, descriptions []string, hitRateThreshold float64, minSampleSize int) (*insights.FatigueReport, error) {
	return f.fatigue, f.err
}

func newTestServer(sims SimulationAPI, slips SlipAPI, ins InsightAPI) (*Server, *Hub) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	hub := NewHub()
	handler := NewHandler(sims, slips, ins, hub, 0, true, log)
	cfg := &config.ServerConfig{Port: 8090, AllowedOrigins: []string{"*"}, ShutdownSeconds: 5}
	return NewServer(cfg, handler, log), hub
}

func sampleSimulation() *models.Simulation {
	return &models.Simulation{
		ID:                  uuid.New(),
		Stake:               decimal.NewFromInt(10),
		Payout:              decimal.RequireFromString("47.73"),
		TotalOdds:           377,
		CombinedProbability: 0.2095,
		ProbabilityBasis:    models.ProbabilityBasisLegs,
		CreatedAt:           time.Now(),
	}
}

func TestCreateSimulationSuccess(t *testing.T) {
	sim := sampleSimulation()
	srv, _ := newTestServer(&fakeSimulationAPI{sim: sim}, &fakeSlipAPI{}, &fakeInsightAPI{})

	body := `{"legs":[{"description":"Chiefs ML","american_odds":150},{"description":"Over 47.5","american_odds":-110}],"stake":"10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got models.Simulation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, sim.ID, got.ID)
}

func TestCreateSimulationMalformedBody(t *testing.T) {
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateSimulationRejectedLegs(t *testing.T) {
	api := &fakeSimulationAPI{
		rejected: []parlay.LegError{{Index: 1, Err: models.ErrInvalidOdds}},
		err:      models.ErrInvalidOdds,
	}
	srv, _ := newTestServer(api, &fakeSlipAPI{}, &fakeInsightAPI{})

	body := `{"legs":[{"description":"ok","american_odds":150},{"description":"bad","american_odds":50}],"stake":"10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "rejected_legs")
}

func TestCreateSimulationLimitErrors(t *testing.T) {
	api := &fakeSimulationAPI{err: service.ErrTooFewLegs}
	srv, _ := newTestServer(api, &fakeSlipAPI{}, &fakeInsightAPI{})

	body := `{"legs":[{"description":"solo","american_odds":150}],"stake":"10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetSimulations(t *testing.T) {
	api := &fakeSimulationAPI{recent: []*models.Simulation{sampleSimulation(), sampleSimulation()}}
	srv, _ := newTestServer(api, &fakeSlipAPI{}, &fakeInsightAPI{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/simulations?limit=5", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
}

func TestGetSlipNotFound(t *testing.T) {
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/slips/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSharpMoneyUnavailable(t *testing.T) {
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{err: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/sharp-money", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetHitRates(t *testing.T) {
	insight := &models.Insight{
		ID:          uuid.New(),
		Kind:        models.InsightKindHitRate,
		Payload:     []byte(`{"entries":[]}`),
		GeneratedAt: time.Now(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{insight: insight})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/hit-rates", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hit_rate")
}

func TestCreateHedgePlan(t *testing.T) {
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{})

	body := `{"parlay_stake":"10","potential_payout":"100","hedge_american_odds":-120}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/hedge", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var plan insights.HedgePlan
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&plan))
	assert.Equal(t, -120, plan.HedgeOdds)
	assert.True(t, plan.LockedProfit.IsPositive())
}

func TestCreateHedgePlanNotProfitable(t *testing.T) {
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{})

	body := `{"parlay_stake":"10","potential_payout":"20","hedge_american_odds":-400}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/hedge", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateHedgePlanDisabledByFlag(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	handler := NewHandler(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{}, NewHub(), 0, false, log)
	cfg := &config.ServerConfig{Port: 8090, AllowedOrigins: []string{"*"}, ShutdownSeconds: 5}
	srv := NewServer(cfg, handler, log)

	body := `{"parlay_stake":"10","potential_payout":"100","hedge_american_odds":-120}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/hedge", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateFatigueAdvice(t *testing.T) {
	ins := &fakeInsightAPI{
		fatigue: &insights.FatigueReport{
			Flagged: []insights.FatigueEntry{
				{Description: "Over 47.5", HitRate: 0.31, SampleSize: 42, Suggestion: "drop leg or reduce stake"},
			},
			GeneratedAt: time.Now(),
		},
	}
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, ins)

	body := `{"legs":["Chiefs ML","Over 47.5"],"hit_rate_threshold":0.45,"min_sample_size":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/fatigue", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Over 47.5")
	assert.Contains(t, rec.Body.String(), "drop leg or reduce stake")
}

func TestCreateFatigueAdviceUnavailable(t *testing.T) {
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{err: context.DeadlineExceeded})

	body := `{"legs":["Chiefs ML"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/insights/fatigue", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func multipartUpload(t *testing.T, stake string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	require.NoError(t, writer.WriteField("stake", stake))
	part, err := writer.CreateFormFile("video", "slip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake video bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestCreateSlipAcceptsUpload(t *testing.T) {
	slipID := uuid.New()
	sim := sampleSimulation()
	sim.SlipID = &slipID
	slips := &fakeSlipAPI{
		result: &service.SlipResult{
			Slip:       &models.Slip{ID: slipID, Status: models.SlipStatusExtracted},
			Simulation: sim,
		},
		progress: []models.ExtractionProgress{
			{Stage: models.StageLoading, Percent: 0},
			{Stage: models.StageExtracting, Percent: 55},
			{Stage: models.StageComplete, Percent: 100},
		},
	}
	srv, hub := newTestServer(&fakeSimulationAPI{}, slips, &fakeInsightAPI{})

	body, contentType := multipartUpload(t, "10.00")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/slips", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	extractionID := resp["extraction_id"]
	require.NotEmpty(t, extractionID)

	// the pipeline runs async; wait for the terminal event to land in the hub
	require.Eventually(t, func() bool {
		replay, live := hub.Subscribe(extractionID)
		if live != nil {
			hub.Unsubscribe(extractionID, live)
		}
		return len(replay) > 0 && replay[len(replay)-1].Terminal()
	}, 2*time.Second, 10*time.Millisecond)

	replay, _ := hub.Subscribe(extractionID)
	last := replay[len(replay)-1]
	assert.Equal(t, models.StageComplete, last.Stage)
	assert.Equal(t, slipID.String(), last.SlipID)
}

func TestCreateSlipRequiresStake(t *testing.T) {
	srv, _ := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{})

	body, contentType := multipartUpload(t, "not-a-number")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/slips", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractionStreamDeliversEvents(t *testing.T) {
	srv, hub := newTestServer(&fakeSimulationAPI{}, &fakeSlipAPI{}, &fakeInsightAPI{})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	extractionID := uuid.NewString()
	hub.Publish(extractionID, ExtractionEvent{Stage: models.StageLoading, Percent: 0})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/extractions/" + extractionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first ExtractionEvent
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, models.StageLoading, first.Stage)

	hub.Publish(extractionID, ExtractionEvent{Stage: models.StageComplete, Percent: 100})

	var last ExtractionEvent
	require.NoError(t, conn.ReadJSON(&last))
	assert.Equal(t, models.StageComplete, last.Stage)
	assert.Equal(t, 100, last.Percent)
}
