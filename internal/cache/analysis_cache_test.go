package cache

import (
	"context"
	"testing"
	"time"

	"legalflow/internal/model"
	"legalflow/internal/store"
)

func TestAnalysisCacheLookup(t *testing.T) {
	ctx := context.Background()
	c := NewAnalysisCache(store.NewMemory(), 0)

	got, err := c.Lookup(ctx, "hr_jungle", "h1")
	if err != nil || got != nil {
		t.Fatalf("expected miss on empty cache, got %v err=%v", got, err)
	}

	value := model.FinalAnalysis{Summary: "cached"}
	if err := c.Put(ctx, "hr_jungle", "h1", value); err != nil {
		t.Fatal(err)
	}

	got, err = c.Lookup(ctx, "hr_jungle", "h1")
	if err != nil || got == nil || got.Summary != "cached" {
		t.Fatalf("expected hit, got %v err=%v", got, err)
	}

	got, err = c.Lookup(ctx, "hr_jungle", "h2")
	if err != nil || got != nil {
		t.Errorf("expected miss on hash mismatch, got %v", got)
	}

	got, _ = c.Lookup(ctx, "tax_labyrinth", "h1")
	if got != nil {
		t.Error("expected domains to be cached independently")
	}
}

func TestAnalysisCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &analysisCache{store: store.NewMemory(), ttl: time.Hour, now: func() time.Time { return now }}

	if err := c.Put(ctx, "d", "h", model.FinalAnalysis{Summary: "s"}); err != nil {
		t.Fatal(err)
	}
	now = now.Add(30 * time.Minute)
	if got, _ := c.Lookup(ctx, "d", "h"); got == nil {
		t.Error("expected hit before ttl")
	}
	now = now.Add(time.Hour)
	if got, _ := c.Lookup(ctx, "d", "h"); got != nil {
		t.Error("expected miss after ttl")
	}
}
