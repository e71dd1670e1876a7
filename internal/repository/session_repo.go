package repository

import (
	"context"

	"legalflow/internal/store"
)

const currentUserKey = "current_user"

// SessionRepo tracks the single active session pointer.
type SessionRepo interface {
	Current(ctx context.Context) (string, error)
	SetCurrent(ctx context.Context, email string) error
	Clear(ctx context.Context) error
}

type sessionRepo struct {
	store store.Store
}

func NewSessionRepo(s store.Store) SessionRepo {
	return &sessionRepo{store: s}
}

// Current returns the logged-in email, or "" when nobody is logged in
func (r *sessionRepo) Current(ctx context.Context) (string, error) {
	v, _, err := r.store.Load(ctx, currentUserKey)
	return v, err
}

func (r *sessionRepo) SetCurrent(ctx context.Context, email string) error {
	return r.store.Save(ctx, currentUserKey, normalizeEmail(email))
}

func (r *sessionRepo) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, currentUserKey)
}
