package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"trendscribe/internal/cache"
	"trendscribe/internal/models"
)

// fakeProvider returns canned research or an error, and counts calls.
type fakeProvider struct {
	mu       sync.Mutex
	research string
	err      error
	calls    int
}

func (f *fakeProvider) GenerateResearch(ctx context.Context, req models.ResearchRequest) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.research, nil
}

func (f *fakeProvider) GenerateQuestions(ctx context.Context, research string) ([]string, error) {
	return []string{"What is the target audience?"}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func collectEvents(t *testing.T, events <-chan models.JobEvent) []models.JobEvent {
	t.Helper()

	var collected []models.JobEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return collected
			}
			collected = append(collected, ev)
		case <-timeout:
			t.Fatal("timed out waiting for job events")
		}
	}
}

func terminalEvents(events []models.JobEvent) (completed, failed int) {
	for _, ev := range events {
		switch ev.Type {
		case models.EventCompleted:
			completed++
		case models.EventError:
			failed++
		}
	}
	return
}

func TestRunSuccessEmitsSingleCompleted(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	provider := &fakeProvider{research: "coffee shop trends research"}
	svc := NewResearchService(provider, store, nil, nil, time.Minute)

	req := models.ResearchRequest{Topic: "Best Coffee Shops"}
	events := collectEvents(t, svc.Run(req))

	completed, failed := terminalEvents(events)
	if completed != 1 || failed != 0 {
		t.Fatalf("expected exactly one completed and no error events, got %d/%d", completed, failed)
	}

	// Terminal event must be last
	last := events[len(events)-1]
	if last.Type != models.EventCompleted {
		t.Fatalf("last event is %s, want completed", last.Type)
	}

	payload := last.Data.(models.CompletedPayload)
	if payload.FromCache {
		t.Error("first run must not report fromCache")
	}
	if payload.Result.Research != "coffee shop trends research" {
		t.Errorf("unexpected research text: %q", payload.Result.Research)
	}
	if payload.Result.ContentType != models.DefaultContentType {
		t.Errorf("defaults not applied: contentType = %q", payload.Result.ContentType)
	}
}

func TestRunCacheHitSkipsProvider(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	provider := &fakeProvider{research: "expensive result"}
	svc := NewResearchService(provider, store, nil, nil, time.Minute)

	req := models.ResearchRequest{Topic: "Go Concurrency"}
	collectEvents(t, svc.Run(req))
	if provider.callCount() != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.callCount())
	}

	events := collectEvents(t, svc.Run(req))
	if provider.callCount() != 1 {
		t.Errorf("cache hit must skip the provider, got %d calls", provider.callCount())
	}

	last := events[len(events)-1]
	payload, ok := last.Data.(models.CompletedPayload)
	if !ok || !payload.FromCache {
		t.Error("second run must complete from cache")
	}
}

func TestRunFailureNeverCached(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	provider := &fakeProvider{err: errors.New("upstream exploded")}
	svc := NewResearchService(provider, store, nil, nil, time.Minute)

	req := models.ResearchRequest{Topic: "Doomed Topic"}
	events := collectEvents(t, svc.Run(req))

	completed, failed := terminalEvents(events)
	if completed != 0 || failed != 1 {
		t.Fatalf("expected exactly one error and no completed events, got %d/%d", completed, failed)
	}

	payload := events[len(events)-1].Data.(models.ErrorPayload)
	if payload.Code != models.ErrCodeProvider {
		t.Errorf("error code = %q, want %q", payload.Code, models.ErrCodeProvider)
	}

	normalized := req
	normalized.ApplyDefaults()
	_, found, _ := store.Get(context.Background(), cache.ExactKey(normalized))
	if found {
		t.Error("failures must never be written to the cache")
	}
}

func TestRunValidationRejectsEmptyTopic(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	provider := &fakeProvider{research: "should not run"}
	svc := NewResearchService(provider, store, nil, nil, time.Minute)

	for _, topic := range []string{"", "   ", "\t\n"} {
		events := collectEvents(t, svc.Run(models.ResearchRequest{Topic: topic}))
		if len(events) != 1 || events[0].Type != models.EventError {
			t.Fatalf("topic %q: expected a single error event, got %+v", topic, events)
		}
		payload := events[0].Data.(models.ErrorPayload)
		if payload.Code != models.ErrCodeValidation {
			t.Errorf("topic %q: error code = %q, want validation", topic, payload.Code)
		}
	}

	if provider.callCount() != 0 {
		t.Errorf("validation failures must not reach the provider, got %d calls", provider.callCount())
	}
}

func TestRunWithoutStoreStillCompletes(t *testing.T) {
	provider := &fakeProvider{research: "no cache available"}
	svc := NewResearchService(provider, nil, nil, nil, time.Minute)

	events := collectEvents(t, svc.Run(models.ResearchRequest{Topic: "Cacheless"}))
	completed, failed := terminalEvents(events)
	if completed != 1 || failed != 0 {
		t.Fatalf("job must succeed without a cache backend, got %d/%d", completed, failed)
	}
}

func TestConcurrentDuplicateJobsLeaveWellFormedEntry(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	provider := &fakeProvider{research: "shared result body"}
	svc := NewResearchService(provider, store, nil, nil, time.Minute)

	req := models.ResearchRequest{Topic: "Racing Topic"}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range svc.Run(req) {
			}
		}()
	}
	wg.Wait()

	normalized := req
	normalized.ApplyDefaults()
	raw, found, err := store.Get(context.Background(), cache.ExactKey(normalized))
	if err != nil || !found {
		t.Fatalf("expected a cached entry after concurrent jobs (found=%v, err=%v)", found, err)
	}

	var result models.ResearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("cache entry is not well-formed JSON: %v", err)
	}
	if result.Research != "shared result body" {
		t.Errorf("unexpected cached research: %q", result.Research)
	}
}

func TestAbandonedConsumerDoesNotBlockJob(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	provider := &fakeProvider{research: "result nobody watched"}
	svc := NewResearchService(provider, store, nil, nil, time.Minute)

	req := models.ResearchRequest{Topic: "Disconnected Client"}
	svc.Run(req) // never read

	// The detached job must still finish and cache its result
	normalized := req
	normalized.ApplyDefaults()
	key := cache.ExactKey(normalized)

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, found, _ := store.Get(context.Background(), key); found {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("abandoned job never cached its result")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRunDistinctRequestsGetDistinctEntries(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	svc := NewResearchService(&fakeProvider{research: "body"}, store, nil, nil, time.Minute)

	for i := 0; i < 3; i++ {
		req := models.ResearchRequest{Topic: fmt.Sprintf("topic %d", i)}
		collectEvents(t, svc.Run(req))
	}

	entries, err := store.ScanPrefix(context.Background(), cache.KeyNamespace+":")
	if err != nil {
		t.Fatalf("ScanPrefix failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 distinct cache entries, got %d", len(entries))
	}
}
