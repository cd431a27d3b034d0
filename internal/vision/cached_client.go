// Package vision provides a cached vision client implementation.
package vision

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/parlayscope/internal/config"
)

// CachedClient wraps Client with analytics report caching
type CachedClient struct {
	client *Client
	cache  *ReportCache
	logger *logrus.Logger
}

// NewCachedClient creates a vision client with report caching
func NewCachedClient(cfg *config.VisionServiceConfig, logger *logrus.Logger) *CachedClient {
	return &CachedClient{
		client: NewClient(cfg, logger),
		cache:  NewReportCache(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		logger: logger,
	}
}

// ExtractSlip is never cached; every upload is a distinct slip
func (c *CachedClient) ExtractSlip(ctx context.Context, frames []string) (*ExtractedSlip, error) {
	return c.client.ExtractSlip(ctx, frames)
}

// SharpMoney returns the cached report when fresh, fetching otherwise
func (c *CachedClient) SharpMoney(ctx context.Context) (*SharpMoneyReport, error) {
	if cached := c.cache.GetSharpMoney(); cached != nil {
		CacheHitsTotal.WithLabelValues("sharp_money").Inc()
		c.logger.Debug("Cache hit for sharp money report")
		return cached, nil
	}

	report, err := c.client.SharpMoney(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.SetSharpMoney(report)
	return report, nil
}

// ScanHitRates returns a cached report for the same descriptions when fresh
func (c *CachedClient) ScanHitRates(ctx context.Context, descriptions []string) (*HitRateReport, error) {
	if cached := c.cache.GetHitRates(descriptions); cached != nil {
		CacheHitsTotal.WithLabelValues("hit_rates").Inc()
		c.logger.Debug("Cache hit for hit rate report")
		return cached, nil
	}

	report, err := c.client.ScanHitRates(ctx, descriptions)
	if err != nil {
		return nil, err
	}
	c.cache.SetHitRates(descriptions, report)
	return report, nil
}

// HealthCheck delegates to the underlying client
func (c *CachedClient) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

// Invalidate flushes all cached reports
func (c *CachedClient) Invalidate() {
	c.cache.Flush()
}
