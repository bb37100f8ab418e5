package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"trendscribe/internal/cache"
	"trendscribe/internal/models"
	"trendscribe/internal/providers"
)

const (
	// Buffered so the runner never blocks on a consumer that stopped
	// reading; overflow events are dropped, not queued.
	eventBufferSize = 16

	heartbeatInterval = 10 * time.Second
)

// ResearchService runs research jobs: cache-first, provider on miss,
// progress events over a per-job channel. The job owns its channel and
// closes it after the single terminal event.
type ResearchService struct {
	provider providers.Provider
	store    cache.Store
	history  *HistoryService // optional
	metrics  *Metrics        // optional
	ttl      time.Duration
}

// NewResearchService creates the job runner. store and history may be nil;
// the job path then skips the cache shortcut and history recording.
func NewResearchService(provider providers.Provider, store cache.Store, history *HistoryService, metrics *Metrics, ttl time.Duration) *ResearchService {
	return &ResearchService{
		provider: provider,
		store:    store,
		history:  history,
		metrics:  metrics,
		ttl:      ttl,
	}
}

// Run starts one research job and returns its event stream. The stream
// carries zero or more progress events followed by exactly one terminal
// event (completed or error), then closes. The job is detached from the
// caller: abandoning the channel does not cancel it, and its result still
// lands in the cache.
func (s *ResearchService) Run(req models.ResearchRequest) <-chan models.JobEvent {
	events := make(chan models.JobEvent, eventBufferSize)
	go s.run(req, events)
	return events
}

func (s *ResearchService) run(req models.ResearchRequest, events chan<- models.JobEvent) {
	defer close(events)

	jobID := uuid.NewString()
	start := time.Now()
	req.ApplyDefaults()

	// 1. Validate before touching cache or provider
	if strings.TrimSpace(req.Topic) == "" {
		emit(events, models.JobEvent{Type: models.EventError, Data: models.ErrorPayload{
			JobID: jobID,
			Code:  models.ErrCodeValidation,
			Error: "topic is required",
		}})
		s.countJob("rejected")
		return
	}

	// Detached from the submitting request on purpose: a dropped client
	// connection must not cancel the job (see Run).
	ctx := context.Background()
	exactKey := cache.ExactKey(req)

	// 2. Exact-key cache check; a hit skips the expensive call entirely
	if result, ok := s.lookupExact(ctx, exactKey); ok {
		log.Printf("✅ [RESEARCH] Cache hit for key %s (job %s)", exactKey, jobID)
		emit(events, models.JobEvent{Type: models.EventCompleted, Data: models.CompletedPayload{
			JobID:     jobID,
			Result:    result,
			FromCache: true,
		}})
		s.recordHistory(ctx, req, exactKey, true, time.Since(start))
		s.countJob("completed_from_cache")
		return
	}

	// 3. Provider call with heartbeat progress
	emit(events, models.JobEvent{Type: models.EventProgress, Data: models.ProgressPayload{
		JobID: jobID,
		Stage: "starting",
	}})

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := s.provider.GenerateResearch(ctx, req)
		done <- outcome{text: text, err: err}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Heartbeat so proxies don't see a dead stream; no
			// fabricated percentages
			emit(events, models.JobEvent{Type: models.EventProgress, Data: models.ProgressPayload{
				JobID: jobID,
				Stage: "researching",
			}})

		case o := <-done:
			if s.metrics != nil {
				s.metrics.ProviderLatency.Observe(time.Since(start).Seconds())
			}

			if o.err != nil {
				// Failures are never cached
				log.Printf("❌ [RESEARCH] Provider call failed for %q (job %s): %v", req.Topic, jobID, o.err)
				emit(events, models.JobEvent{Type: models.EventError, Data: models.ErrorPayload{
					JobID: jobID,
					Code:  models.ErrCodeProvider,
					Error: o.err.Error(),
				}})
				s.countJob("failed")
				return
			}

			result := &models.ResearchResult{
				Topic:       req.Topic,
				ContentType: req.ContentType,
				Platform:    req.Platform,
				Language:    req.Language,
				Research:    o.text,
				GeneratedAt: time.Now().UTC(),
			}

			// 4. Store, then emit the terminal event. A cache write
			// failure downgrades to "not recoverable", not to a job
			// failure.
			s.storeResult(ctx, exactKey, result)

			emit(events, models.JobEvent{Type: models.EventCompleted, Data: models.CompletedPayload{
				JobID:     jobID,
				Result:    result,
				FromCache: false,
			}})
			s.recordHistory(ctx, req, exactKey, false, time.Since(start))
			s.countJob("completed")

			log.Printf("✅ [RESEARCH] Job %s completed for %q (latency: %dms)",
				jobID, req.Topic, time.Since(start).Milliseconds())
			return
		}
	}
}

func (s *ResearchService) lookupExact(ctx context.Context, key string) (*models.ResearchResult, bool) {
	if s.store == nil {
		return nil, false
	}

	raw, found, err := s.store.Get(ctx, key)
	if err != nil {
		// Cache unavailable: proceed to the provider instead of failing
		log.Printf("⚠️  [RESEARCH] Cache lookup failed for %s: %v", key, err)
		s.countLookup("exact", "error")
		return nil, false
	}
	if !found {
		s.countLookup("exact", "miss")
		return nil, false
	}

	var result models.ResearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		log.Printf("⚠️  [RESEARCH] Discarding malformed cache entry %s: %v", key, err)
		s.countLookup("exact", "error")
		return nil, false
	}

	s.countLookup("exact", "hit")
	return &result, true
}

func (s *ResearchService) storeResult(ctx context.Context, key string, result *models.ResearchResult) {
	if s.store == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		log.Printf("⚠️  [RESEARCH] Failed to marshal result for %s: %v", key, err)
		return
	}
	if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
		log.Printf("⚠️  [RESEARCH] Failed to cache result for %s: %v", key, err)
	}
}

func (s *ResearchService) recordHistory(ctx context.Context, req models.ResearchRequest, key string, fromCache bool, duration time.Duration) {
	if s.history == nil {
		return
	}

	err := s.history.Record(ctx, models.HistoryEntry{
		Topic:       req.Topic,
		CacheKey:    key,
		ContentType: req.ContentType,
		Platform:    req.Platform,
		Language:    req.Language,
		FromCache:   fromCache,
		DurationMs:  duration.Milliseconds(),
	})
	if err != nil {
		log.Printf("⚠️  [RESEARCH] History write failed: %v", err)
	}
}

func (s *ResearchService) countJob(outcome string) {
	if s.metrics != nil {
		s.metrics.ResearchJobs.WithLabelValues(outcome).Inc()
	}
}

func (s *ResearchService) countLookup(tier, result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(tier, result).Inc()
	}
}

// emit delivers an event without ever blocking job execution. If the
// consumer detached and the buffer is full, the event is dropped; the
// result is still cached, which is what recovery relies on.
func emit(events chan<- models.JobEvent, ev models.JobEvent) {
	select {
	case events <- ev:
	default:
	}
}
