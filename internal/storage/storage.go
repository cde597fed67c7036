// Package storage defines the durable key-value store shared by the account
// directory and the appearance scheduler.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Keys of the persisted entries.
const (
	// KeyAccounts holds the JSON encoded, ordered list of account records.
	KeyAccounts = "bixblion-users"
	// KeySession holds the JSON encoded session identity.
	KeySession = "bixblion-auth-user"
	// KeyAppearanceSettings holds the JSON encoded automatic night mode settings.
	KeyAppearanceSettings = "auto-night-mode-settings"
	// KeyTheme holds the active theme token.
	KeyTheme = "bixblion-theme"
	// KeySavedTheme holds the theme that was active before the night override.
	KeySavedTheme = "bixblion-theme-before-night"
)

// Keys returns all keys written by bixblion.
func Keys() []string {
	return []string{
		KeyAccounts,
		KeySession,
		KeyAppearanceSettings,
		KeyTheme,
		KeySavedTheme,
	}
}

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Store is a synchronous string key-value store.
// It is the sole source of truth for all persisted state.
type Store interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the resources held by the store.
	Close() error
}

// CorruptError reports a persisted value that could not be decoded.
type CorruptError struct {
	Key string
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt value for key %q: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err is a *CorruptError.
func IsCorrupt(err error) bool {
	var ce *CorruptError
	return errors.As(err, &ce)
}
