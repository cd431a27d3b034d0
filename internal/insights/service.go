// Package insights aggregates analytics reports into recommendation records.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlayscope/internal/metrics"
	"github.com/yourusername/parlayscope/internal/models"
	"github.com/yourusername/parlayscope/internal/repository"
	"github.com/yourusername/parlayscope/internal/vision"
)

// AnalyticsClient is the slice of the vision client the insights service uses
type AnalyticsClient interface {
	SharpMoney(ctx context.Context) (*vision.SharpMoneyReport, error)
	ScanHitRates(ctx context.Context, descriptions []string) (*vision.HitRateReport, error)
}

// Service refreshes and serves analytics insights
type Service struct {
	analytics   AnalyticsClient
	insightRepo repository.InsightRepository
	freshness   time.Duration
	logger      *logrus.Logger
}

// NewService creates an insights service
func NewService(analytics AnalyticsClient, insightRepo repository.InsightRepository, freshness time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		analytics:   analytics,
		insightRepo: insightRepo,
		freshness:   freshness,
		logger:      logger,
	}
}

// RefreshSharpMoney fetches a fresh sharp money report and persists it
func (s *Service) RefreshSharpMoney(ctx context.Context) (*models.Insight, error) {
	report, err := s.analytics.SharpMoney(ctx)
	if err != nil {
		metrics.RecordInsightRefresh(string(models.InsightKindSharpMoney), "error")
		return nil, fmt.Errorf("failed to fetch sharp money report: %w", err)
	}

	insight, err := s.persistReport(ctx, models.InsightKindSharpMoney, report)
	if err != nil {
		return nil, err
	}

	metrics.RecordInsightRefresh(string(models.InsightKindSharpMoney), "success")
	s.logger.WithFields(logrus.Fields{
		"kind":        models.InsightKindSharpMoney,
		"entry_count": len(report.Entries),
	}).Info("Refreshed sharp money insight")
	return insight, nil
}

// RefreshHitRates scans hit rates for the given markets and persists the report
func (s *Service) RefreshHitRates(ctx context.Context, descriptions []string) (*models.Insight, error) {
	report, err := s.analytics.ScanHitRates(ctx, descriptions)
	if err != nil {
		metrics.RecordInsightRefresh(string(models.InsightKindHitRate), "error")
		return nil, fmt.Errorf("failed to fetch hit rate report: %w", err)
	}

	insight, err := s.persistReport(ctx, models.InsightKindHitRate, report)
	if err != nil {
		return nil, err
	}

	metrics.RecordInsightRefresh(string(models.InsightKindHitRate), "success")
	s.logger.WithFields(logrus.Fields{
		"kind":        models.InsightKindHitRate,
		"entry_count": len(report.Entries),
	}).Info("Refreshed hit rate insight")
	return insight, nil
}

// SharpMoney serves the latest sharp money insight, refreshing when stale
func (s *Service) SharpMoney(ctx context.Context) (*models.Insight, error) {
	return s.latestOrRefresh(ctx, models.InsightKindSharpMoney, func(ctx context.Context) (*models.Insight, error) {
		return s.RefreshSharpMoney(ctx)
	})
}

// HitRates serves the latest hit rate insight, refreshing when stale.
// A stale refresh uses no description filter; scheduled refreshes keep the
// stored report current for the common case.
func (s *Service) HitRates(ctx context.Context) (*models.Insight, error) {
	return s.latestOrRefresh(ctx, models.InsightKindHitRate, func(ctx context.Context) (*models.Insight, error) {
		return s.RefreshHitRates(ctx, nil)
	})
}

// FatigueAdvice builds leg-drop recommendations from the hit rate report for
// the given leg descriptions. Markets with a meaningful sample and a hit rate
// under the threshold are flagged.
func (s *Service) FatigueAdvice(ctx context.Context, descriptions []string, hitRateThreshold float64, minSampleSize int) (*FatigueReport, error) {
	report, err := s.analytics.ScanHitRates(ctx, descriptions)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hit rates for fatigue advice: %w", err)
	}

	advice := &FatigueReport{GeneratedAt: time.Now()}
	for _, entry := range report.Entries {
		if entry.SampleSize < minSampleSize {
			continue
		}
		if entry.HitRate < hitRateThreshold {
			advice.Flagged = append(advice.Flagged, FatigueEntry{
				Description: entry.Description,
				HitRate:     entry.HitRate,
				SampleSize:  entry.SampleSize,
				Suggestion:  "drop leg or reduce stake",
			})
		}
	}
	return advice, nil
}

// FatigueEntry flags a leg whose market has been underperforming
type FatigueEntry struct {
	Description string  `json:"description"`
	HitRate     float64 `json:"hit_rate"`
	SampleSize  int     `json:"sample_size"`
	Suggestion  string  `json:"suggestion"`
}

// FatigueReport lists legs recommended for removal
type FatigueReport struct {
	Flagged     []FatigueEntry `json:"flagged"`
	GeneratedAt time.Time      `json:"generated_at"`
}

func (s *Service) latestOrRefresh(ctx context.Context, kind models.InsightKind, refresh func(context.Context) (*models.Insight, error)) (*models.Insight, error) {
	insight, err := s.insightRepo.GetLatest(ctx, kind)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to load %s insight: %w", kind, err)
		}
		return refresh(ctx)
	}
	if insight.Expired(time.Now()) {
		refreshed, err := refresh(ctx)
		if err != nil {
			// Serve the stale copy rather than fail the request
			s.logger.WithError(err).WithField("kind", kind).Warn("Insight refresh failed, serving stale report")
			return insight, nil
		}
		return refreshed, nil
	}
	return insight, nil
}

func (s *Service) persistReport(ctx context.Context, kind models.InsightKind, report any) (*models.Insight, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s report: %w", kind, err)
	}

	now := time.Now()
	insight := &models.Insight{
		ID:          uuid.New(),
		Kind:        kind,
		Payload:     payload,
		GeneratedAt: now,
		ExpiresAt:   now.Add(s.freshness),
	}

	if err := s.insightRepo.Upsert(ctx, insight); err != nil {
		return nil, fmt.Errorf("failed to persist %s insight: %w", kind, err)
	}
	return insight, nil
}
