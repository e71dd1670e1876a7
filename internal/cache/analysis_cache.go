// Package cache holds the final-analysis cache keyed by a content hash.
package cache

import (
	"context"
	"time"

	"legalflow/internal/model"
	"legalflow/internal/store"
)

// Entry is a cached final analysis together with the hash of the inputs it was built from.
type Entry struct {
	Hash     string              `json:"hash"`
	Value    model.FinalAnalysis `json:"value"`
	StoredAt time.Time           `json:"storedAt"`
}

// AnalysisCache stores one final analysis per domain. Lookup only returns a value
// when the stored hash equals the requested one.
type AnalysisCache interface {
	Get(ctx context.Context, domainID string) (*Entry, error)
	Put(ctx context.Context, domainID, hash string, value model.FinalAnalysis) error
	Lookup(ctx context.Context, domainID, hash string) (*model.FinalAnalysis, error)
}

type analysisCache struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewAnalysisCache creates a cache over s. A zero ttl keeps entries until the hash changes.
func NewAnalysisCache(s store.Store, ttl time.Duration) AnalysisCache {
	return &analysisCache{
		store: s,
		ttl:   ttl,
		now:   time.Now,
	}
}

func analysisKey(domainID string) string {
	return "final_analysis:" + domainID
}

// Get returns the raw entry, or nil if none is stored
func (c *analysisCache) Get(ctx context.Context, domainID string) (*Entry, error) {
	var e Entry
	ok, err := store.LoadJSON(ctx, c.store, analysisKey(domainID), &e)
	if err != nil || !ok {
		return nil, err
	}
	return &e, nil
}

func (c *analysisCache) Put(ctx context.Context, domainID, hash string, value model.FinalAnalysis) error {
	return store.SaveJSON(ctx, c.store, analysisKey(domainID), Entry{
		Hash:     hash,
		Value:    value,
		StoredAt: c.now(),
	})
}

// Lookup returns the cached value if it was computed from the same inputs and has not expired
func (c *analysisCache) Lookup(ctx context.Context, domainID, hash string) (*model.FinalAnalysis, error) {
	e, err := c.Get(ctx, domainID)
	if err != nil || e == nil {
		return nil, err
	}
	if e.Hash != hash {
		return nil, nil
	}
	if c.ttl > 0 && c.now().Sub(e.StoredAt) > c.ttl {
		return nil, nil
	}
	return &e.Value, nil
}
