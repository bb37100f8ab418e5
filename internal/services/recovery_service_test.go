package services

import (
	"context"
	"testing"
	"time"

	"trendscribe/internal/cache"
	"trendscribe/internal/models"
)

func TestRecoveryExactMatchAfterCompletion(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	provider := &fakeProvider{research: "recovered body"}
	research := NewResearchService(provider, store, nil, nil, time.Minute)
	recovery := NewRecoveryService(store, nil)

	req := models.ResearchRequest{Topic: "Interrupted Research"}
	events := collectEvents(t, research.Run(req))
	completedPayload := events[len(events)-1].Data.(models.CompletedPayload)

	resp := recovery.CheckCompletion(context.Background(), req)
	if !resp.Found {
		t.Fatal("expected recovery to find the completed result")
	}
	if resp.MatchType != models.MatchExact {
		t.Errorf("matchType = %q, want exact", resp.MatchType)
	}
	if resp.Result.Research != completedPayload.Result.Research {
		t.Errorf("recovered result differs from the emitted one: %q vs %q",
			resp.Result.Research, completedPayload.Result.Research)
	}
}

func TestRecoveryNotFoundForUnknownRequest(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	recovery := NewRecoveryService(store, nil)

	resp := recovery.CheckCompletion(context.Background(), models.ResearchRequest{Topic: "Never Submitted"})
	if resp.Found {
		t.Error("expected found=false for a request that never completed")
	}
	if resp.MatchType != "" || resp.Result != nil {
		t.Error("not-found responses must carry no match data")
	}
}

func TestRecoveryPartialMatchOnPunctuationDrift(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	provider := &fakeProvider{research: "drifted body"}
	research := NewResearchService(provider, store, nil, nil, time.Minute)
	recovery := NewRecoveryService(store, nil)

	// Completed with punctuation, recovered without
	collectEvents(t, research.Run(models.ResearchRequest{Topic: "Best Coffee Shops!!!"}))

	resp := recovery.CheckCompletion(context.Background(), models.ResearchRequest{Topic: "Best Coffee Shops"})
	if !resp.Found {
		t.Fatal("expected a fuzzy recovery hit")
	}
	if resp.MatchType != models.MatchPartial {
		t.Errorf("matchType = %q, want partial", resp.MatchType)
	}
	if resp.Result.Research != "drifted body" {
		t.Errorf("unexpected recovered research: %q", resp.Result.Research)
	}
}

func TestRecoveryFirstScanHitWins(t *testing.T) {
	store := cache.NewMemoryStore(time.Minute)
	recovery := NewRecoveryService(store, nil)
	ctx := context.Background()

	// Two entries share the fuzzy prefix; the first in scan order is
	// returned without a freshness comparison.
	store.Set(ctx, "research:shared-topic:article:general:en", []byte(`{"topic":"shared topic","research":"a"}`), time.Minute)
	store.Set(ctx, "research:shared-topic:guide:general:en", []byte(`{"topic":"shared topic","research":"b"}`), time.Minute)

	first := recovery.CheckCompletion(ctx, models.ResearchRequest{Topic: "shared topic", ContentType: "post"})
	second := recovery.CheckCompletion(ctx, models.ResearchRequest{Topic: "shared topic", ContentType: "post"})

	if !first.Found || first.MatchType != models.MatchPartial {
		t.Fatal("expected a partial match")
	}
	if first.Result.Research != second.Result.Research {
		t.Error("repeated recovery calls must be idempotent")
	}
}

func TestRecoveryWithoutStore(t *testing.T) {
	recovery := NewRecoveryService(nil, nil)

	resp := recovery.CheckCompletion(context.Background(), models.ResearchRequest{Topic: "Anything"})
	if resp.Found {
		t.Error("a missing cache backend must degrade to not found")
	}
}
