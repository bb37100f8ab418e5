package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"trendscribe/internal/cache"
	"trendscribe/internal/models"
)

// RecoveryService lets a client that lost its progress stream look up a
// result that finished after it stopped listening. Pure cache read: no
// provider call is ever made from this path, so it is cheap and safe to
// poll.
type RecoveryService struct {
	store   cache.Store
	metrics *Metrics // optional
}

// NewRecoveryService creates a recovery service. store may be nil, in
// which case every check reports not found.
func NewRecoveryService(store cache.Store, metrics *Metrics) *RecoveryService {
	return &RecoveryService{store: store, metrics: metrics}
}

// CheckCompletion performs the two-tier lookup: exact key first, then a
// fuzzy prefix scan. Not-found is a normal answer, not an error; a cache
// backend that is down degrades to not-found.
func (s *RecoveryService) CheckCompletion(ctx context.Context, req models.ResearchRequest) models.RecoveryResponse {
	req.ApplyDefaults()
	if s.store == nil || strings.TrimSpace(req.Topic) == "" {
		return models.RecoveryResponse{Found: false}
	}

	// Tier 1: exact key
	exactKey := cache.ExactKey(req)
	raw, found, err := s.store.Get(ctx, exactKey)
	if err != nil {
		log.Printf("⚠️  [RECOVERY] Cache unavailable for exact lookup: %v", err)
		s.count("exact", "error")
		return models.RecoveryResponse{Found: false}
	}
	if found {
		if result := decodeResult(exactKey, raw); result != nil {
			s.count("exact", "hit")
			return models.RecoveryResponse{Found: true, MatchType: models.MatchExact, Result: result}
		}
	}
	s.count("exact", "miss")

	// Tier 2: fuzzy prefix scan. The first scan hit wins, with no
	// freshness comparison between entries sharing the prefix.
	prefix := cache.FuzzyPrefix(req)
	entries, err := s.store.ScanPrefix(ctx, prefix)
	if err != nil {
		log.Printf("⚠️  [RECOVERY] Prefix scan failed for %s: %v", prefix, err)
		s.count("fuzzy", "error")
		return models.RecoveryResponse{Found: false}
	}

	for _, entry := range entries {
		if result := decodeResult(entry.Key, entry.Value); result != nil {
			s.count("fuzzy", "hit")
			return models.RecoveryResponse{Found: true, MatchType: models.MatchPartial, Result: result}
		}
	}

	s.count("fuzzy", "miss")
	return models.RecoveryResponse{Found: false}
}

func decodeResult(key string, raw []byte) *models.ResearchResult {
	var result models.ResearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("⚠️  [RECOVERY] Skipping malformed cache entry %s: %v", key, err)
		return nil
	}
	return &result
}

func (s *RecoveryService) count(tier, result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(tier, result).Inc()
	}
}
