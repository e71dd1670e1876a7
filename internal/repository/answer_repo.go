// Package repository provides typed access to the key-value store.
package repository

import (
	"context"
	"sync"

	"legalflow/internal/model"
	"legalflow/internal/store"
)

// AnswerRepo persists per-question answers of each domain.
type AnswerRepo interface {
	Get(ctx context.Context, domainID, questionID string) (*model.Answer, error)
	Save(ctx context.Context, answer *model.Answer) error
	ListByDomain(ctx context.Context, domainID string) (map[string]model.Answer, error)
}

type answerRepo struct {
	store store.Store
	mu    sync.Mutex
}

func NewAnswerRepo(s store.Store) AnswerRepo {
	return &answerRepo{store: s}
}

func answersKey(domainID string) string {
	return "answers:" + domainID
}

// Get returns nil when the question has never been answered
func (r *answerRepo) Get(ctx context.Context, domainID, questionID string) (*model.Answer, error) {
	answers, err := r.ListByDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	a, ok := answers[questionID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *answerRepo) Save(ctx context.Context, answer *model.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	answers, err := r.ListByDomain(ctx, answer.DomainID)
	if err != nil {
		return err
	}
	answers[answer.QuestionID] = *answer
	return store.SaveJSON(ctx, r.store, answersKey(answer.DomainID), answers)
}

func (r *answerRepo) ListByDomain(ctx context.Context, domainID string) (map[string]model.Answer, error) {
	answers := make(map[string]model.Answer)
	if _, err := store.LoadJSON(ctx, r.store, answersKey(domainID), &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
