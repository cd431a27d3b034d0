// Package vision provides caching for analytics reports.
package vision

import (
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
)

const (
	sharpMoneyCacheKey = "sharp_money"
	hitRatePrefix      = "hit_rates:"
)

// ReportCache provides in-memory caching for analytics reports. Slip
// extractions are never cached: each upload is unique.
type ReportCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewReportCache creates a report cache with the given freshness window
func NewReportCache(ttl time.Duration) *ReportCache {
	return &ReportCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// GetSharpMoney returns the cached sharp money report, if fresh
func (rc *ReportCache) GetSharpMoney() *SharpMoneyReport {
	if v, found := rc.cache.Get(sharpMoneyCacheKey); found {
		if report, ok := v.(*SharpMoneyReport); ok {
			return report
		}
	}
	return nil
}

// SetSharpMoney stores a sharp money report
func (rc *ReportCache) SetSharpMoney(report *SharpMoneyReport) {
	rc.cache.Set(sharpMoneyCacheKey, report, rc.ttl)
}

// GetHitRates returns a cached hit-rate report for the given descriptions
func (rc *ReportCache) GetHitRates(descriptions []string) *HitRateReport {
	if v, found := rc.cache.Get(hitRateKey(descriptions)); found {
		if report, ok := v.(*HitRateReport); ok {
			return report
		}
	}
	return nil
}

// SetHitRates stores a hit-rate report keyed on its descriptions
func (rc *ReportCache) SetHitRates(descriptions []string, report *HitRateReport) {
	rc.cache.Set(hitRateKey(descriptions), report, rc.ttl)
}

// Flush clears the cache
func (rc *ReportCache) Flush() {
	rc.cache.Flush()
}

func hitRateKey(descriptions []string) string {
	return hitRatePrefix + strings.Join(descriptions, "|")
}
