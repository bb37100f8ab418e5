package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"trendscribe/internal/models"
)

const (
	// Output cap for an aggregated trend list
	maxTrendItems = 20

	// Query tokens this short are too generic to filter on
	minKeywordLen = 4

	trendCacheCleanup = 5 * time.Minute
)

// TrendService fans out to the configured trend sources, merges their
// results into one bounded, recency-ordered list, and caches the outcome.
type TrendService struct {
	registry *SourceRegistry
	limiter  *FetchLimiter
	metrics  *Metrics // optional
	cache    *gocache.Cache
	cacheTTL time.Duration

	// Overridable in tests
	buildSources func() []TrendSource
}

// NewTrendService creates a trend service reading sources from registry.
func NewTrendService(registry *SourceRegistry, limiter *FetchLimiter, metrics *Metrics, cacheTTL time.Duration) *TrendService {
	s := &TrendService{
		registry: registry,
		limiter:  limiter,
		metrics:  metrics,
		cache:    gocache.New(cacheTTL, trendCacheCleanup),
		cacheTTL: cacheTTL,
	}
	s.buildSources = s.sourcesFromRegistry
	return s
}

// NewTrendServiceWithSources creates a trend service over a fixed source
// list, bypassing the registry. Used by tests.
func NewTrendServiceWithSources(sources []TrendSource, cacheTTL time.Duration) *TrendService {
	s := &TrendService{
		cache:    gocache.New(cacheTTL, trendCacheCleanup),
		cacheTTL: cacheTTL,
	}
	s.buildSources = func() []TrendSource { return sources }
	return s
}

// GetTrends fetches all sources concurrently, joins them, and aggregates.
// A failed source contributes an empty list; only all sources failing is a
// total failure. The sources map reports which sources contributed at
// least one item.
func (s *TrendService) GetTrends(ctx context.Context, businessType, researchTopic string) ([]models.TrendItem, map[string]bool, error) {
	cacheKey := "trends:" + strings.ToLower(strings.TrimSpace(businessType)) + ":" + strings.ToLower(strings.TrimSpace(researchTopic))
	if cached, found := s.cache.Get(cacheKey); found {
		if hit, ok := cached.(trendCacheEntry); ok {
			return hit.items, hit.sources, nil
		}
	}

	sources := s.buildSources()
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no trend sources configured")
	}

	lists := make([][]models.TrendItem, len(sources))
	contributed := make(map[string]bool, len(sources))
	var failures int

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source TrendSource) {
			defer wg.Done()

			items, err := source.Fetch(ctx, businessType)
			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				log.Printf("⚠️  [TRENDS] Source %s failed: %v", source.Name(), err)
				s.countFetch(source.Name(), "error")
				contributed[source.Name()] = false
				failures++
				return
			}

			s.countFetch(source.Name(), "ok")
			lists[i] = items
			contributed[source.Name()] = len(items) > 0
		}(i, source)
	}
	wg.Wait()

	if failures == len(sources) {
		return nil, nil, fmt.Errorf("all %d trend sources failed", len(sources))
	}

	items := Aggregate(lists, FilterKeywords(researchTopic))
	s.cache.Set(cacheKey, trendCacheEntry{items: items, sources: contributed}, s.cacheTTL)

	log.Printf("✅ [TRENDS] Aggregated %d items for %q from %d sources", len(items), businessType, len(sources))
	return items, contributed, nil
}

type trendCacheEntry struct {
	items   []models.TrendItem
	sources map[string]bool
}

func (s *TrendService) sourcesFromRegistry() []TrendSource {
	configs := s.registry.Sources()
	sources := make([]TrendSource, 0, len(configs))
	for _, cfg := range configs {
		if source := newSource(cfg, s.limiter); source != nil {
			sources = append(sources, source)
		}
	}
	return sources
}

func (s *TrendService) countFetch(source, status string) {
	if s.metrics != nil {
		s.metrics.TrendFetches.WithLabelValues(source, status).Inc()
	}
}

// FilterKeywords derives filter tokens from a query string: lowercase,
// whitespace-split, keep tokens longer than 3 characters.
func FilterKeywords(query string) []string {
	var keywords []string
	for _, token := range strings.Fields(strings.ToLower(query)) {
		if len(token) >= minKeywordLen {
			keywords = append(keywords, token)
		}
	}
	return keywords
}

// Aggregate merges source lists into one bounded, ordered view:
// concatenate, keyword-filter, sort by recency, dedup by title, cap.
// Deduplication runs after the sort so the kept duplicate is always the
// most recent one.
func Aggregate(lists [][]models.TrendItem, keywords []string) []models.TrendItem {
	var merged []models.TrendItem
	for _, list := range lists {
		merged = append(merged, list...)
	}

	// Zero keywords means keep everything
	if len(keywords) > 0 {
		filtered := merged[:0:0]
		for _, item := range merged {
			haystack := strings.ToLower(item.Title + " " + item.Summary)
			for _, kw := range keywords {
				if strings.Contains(haystack, kw) {
					filtered = append(filtered, item)
					break
				}
			}
		}
		merged = filtered
	}

	// Most recent first; zero (missing/unparsable) dates sort oldest
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PubDate.After(merged[j].PubDate)
	})

	seen := make(map[string]bool, len(merged))
	deduped := make([]models.TrendItem, 0, len(merged))
	for _, item := range merged {
		if seen[item.Title] {
			continue
		}
		seen[item.Title] = true
		deduped = append(deduped, item)
	}

	if len(deduped) > maxTrendItems {
		deduped = deduped[:maxTrendItems]
	}
	return deduped
}
