package repository

import (
	"context"
	"sync"

	"legalflow/internal/model"
	"legalflow/internal/store"
)

// TurnRepo is the append-only conversation log of each domain.
type TurnRepo interface {
	Append(ctx context.Context, turn *model.Turn) error
	ListByDomain(ctx context.Context, domainID string) ([]model.Turn, error)
}

type turnRepo struct {
	store store.Store
	mu    sync.Mutex
}

func NewTurnRepo(s store.Store) TurnRepo {
	return &turnRepo{store: s}
}

func turnsKey(domainID string) string {
	return "turns:" + domainID
}

func (r *turnRepo) Append(ctx context.Context, turn *model.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	turns, err := r.ListByDomain(ctx, turn.DomainID)
	if err != nil {
		return err
	}
	turns = append(turns, *turn)
	return store.SaveJSON(ctx, r.store, turnsKey(turn.DomainID), turns)
}

func (r *turnRepo) ListByDomain(ctx context.Context, domainID string) ([]model.Turn, error) {
	var turns []model.Turn
	if _, err := store.LoadJSON(ctx, r.store, turnsKey(domainID), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}
