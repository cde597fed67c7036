package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/jon4hz/bixblion/internal/storage"
	"github.com/samber/lo"
)

// KeyStats describes one persisted entry.
type KeyStats struct {
	Key     string
	Present bool
	Size    uint64
}

// Reset removes the session and all appearance state from the store.
// With includeAccounts the account collection is removed as well and will be
// reseeded on the next start. It returns the keys that were deleted.
// The directory and the appearance scheduler are brought in line with the
// emptied store before Reset returns.
func (e *Engine) Reset(ctx context.Context, includeAccounts bool) ([]string, error) {
	keys := lo.Filter(storage.Keys(), func(key string, _ int) bool {
		return includeAccounts || key != storage.KeyAccounts
	})

	for _, key := range keys {
		if key == storage.KeySession {
			continue
		}
		log.Debug("Deleting key", "key", key)
		if err := e.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	if err := e.directory.Logout(ctx); err != nil {
		return nil, err
	}
	if err := e.appearance.Reload(ctx); err != nil {
		return nil, fmt.Errorf("failed to reload appearance: %w", err)
	}

	log.Info("Reset store", "keys", len(keys), "include_accounts", includeAccounts)
	return keys, nil
}

// StoreStats reports presence and size of every persisted entry.
func (e *Engine) StoreStats(ctx context.Context) ([]KeyStats, error) {
	stats := make([]KeyStats, 0, len(storage.Keys()))
	for _, key := range storage.Keys() {
		value, err := e.store.Get(ctx, key)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			stats = append(stats, KeyStats{Key: key})
		case err != nil:
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		default:
			size, err := safecast.ToUint64(len(value))
			if err != nil {
				return nil, fmt.Errorf("failed to size %s: %w", key, err)
			}
			stats = append(stats, KeyStats{Key: key, Present: true, Size: size})
		}
	}
	return stats, nil
}
