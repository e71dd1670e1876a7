package repository

import (
	"context"
	"sync"

	"legalflow/internal/store"
)

const scoresKey = "scores"

// ScoreRepo persists one integer score per domain.
type ScoreRepo interface {
	Get(ctx context.Context, domainID string) (int, error)
	Set(ctx context.Context, domainID string, score int) error
	All(ctx context.Context) (map[string]int, error)
}

type scoreRepo struct {
	store store.Store
	mu    sync.Mutex
}

func NewScoreRepo(s store.Store) ScoreRepo {
	return &scoreRepo{store: s}
}

func (r *scoreRepo) Get(ctx context.Context, domainID string) (int, error) {
	scores, err := r.All(ctx)
	if err != nil {
		return 0, err
	}
	return scores[domainID], nil
}

func (r *scoreRepo) Set(ctx context.Context, domainID string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	scores, err := r.All(ctx)
	if err != nil {
		return err
	}
	scores[domainID] = score
	return store.SaveJSON(ctx, r.store, scoresKey, scores)
}

func (r *scoreRepo) All(ctx context.Context) (map[string]int, error) {
	scores := make(map[string]int)
	if _, err := store.LoadJSON(ctx, r.store, scoresKey, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}
