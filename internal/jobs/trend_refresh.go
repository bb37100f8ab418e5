package jobs

import (
	"context"
	"log"
	"time"

	"trendscribe/internal/services"
)

const trendRefreshTimeout = 2 * time.Minute

// TrendRefresh re-warms the trend cache for the configured business types
// so interactive requests mostly hit a fresh cache.
type TrendRefresh struct {
	trends        *services.TrendService
	businessTypes []string
}

// NewTrendRefresh creates the refresh job.
func NewTrendRefresh(trends *services.TrendService, businessTypes []string) *TrendRefresh {
	return &TrendRefresh{trends: trends, businessTypes: businessTypes}
}

// Run fetches trends for every configured business type. Failures are
// logged and skipped; the next tick retries naturally.
func (j *TrendRefresh) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), trendRefreshTimeout)
	defer cancel()

	for _, businessType := range j.businessTypes {
		items, _, err := j.trends.GetTrends(ctx, businessType, "")
		if err != nil {
			log.Printf("⚠️  [TREND-REFRESH] %s failed: %v", businessType, err)
			continue
		}
		log.Printf("🔄 [TREND-REFRESH] Warmed %q (%d items)", businessType, len(items))
	}
}
