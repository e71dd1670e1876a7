// Package store is the key-value persistence port. Values are JSON strings.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store loads and saves string values by key.
type Store interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the value under key into v. It reports false when the key is absent.
func LoadJSON(ctx context.Context, s Store, key string, v interface{}) (bool, error) {
	raw, ok, err := s.Load(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and stores it under key.
func SaveJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Save(ctx, key, string(data))
}
