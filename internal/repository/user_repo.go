package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"legalflow/internal/model"
	"legalflow/internal/store"
)

const usersKey = "users"

var ErrUserExists = errors.New("user already exists")

// UserRepo persists registered users keyed by lower-cased email.
type UserRepo interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type userRepo struct {
	store store.Store
	mu    sync.Mutex
}

func NewUserRepo(s store.Store) UserRepo {
	return &userRepo{store: s}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepo) all(ctx context.Context) (map[string]model.User, error) {
	users := make(map[string]model.User)
	if _, err := store.LoadJSON(ctx, r.store, usersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.all(ctx)
	if err != nil {
		return err
	}
	key := normalizeEmail(user.Email)
	if _, exists := users[key]; exists {
		return ErrUserExists
	}
	user.Email = key
	users[key] = *user
	return store.SaveJSON(ctx, r.store, usersKey, users)
}

// GetByEmail returns nil when no user is registered under email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := users[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.all(ctx)
	if err != nil {
		return err
	}
	users[normalizeEmail(user.Email)] = *user
	return store.SaveJSON(ctx, r.store, usersKey, users)
}
