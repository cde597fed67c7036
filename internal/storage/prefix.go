package storage

import "context"

// PrefixedStore wraps a Store and adds a prefix to all keys.
type PrefixedStore struct {
	store  Store
	prefix string
}

// WithPrefix returns s unchanged when prefix is empty, otherwise a PrefixedStore.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &PrefixedStore{store: s, prefix: prefix}
}

// Get retrieves a value with the prefixed key.
func (p *PrefixedStore) Get(ctx context.Context, key string) (string, error) {
	return p.store.Get(ctx, p.prefix+key)
}

// Set stores a value with the prefixed key.
func (p *PrefixedStore) Set(ctx context.Context, key, value string) error {
	return p.store.Set(ctx, p.prefix+key, value)
}

// Delete removes a value with the prefixed key.
func (p *PrefixedStore) Delete(ctx context.Context, key string) error {
	return p.store.Delete(ctx, p.prefix+key)
}

// Close closes the wrapped store.
func (p *PrefixedStore) Close() error {
	return p.store.Close()
}
