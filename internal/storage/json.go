package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON reads key and decodes it into a T.
// A missing key yields ErrNotFound, an undecodable value a *CorruptError.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var zero T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return zero, &CorruptError{Key: key, Err: err}
	}
	return v, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
