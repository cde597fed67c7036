package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	go_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/storage"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

var _ storage.Store = (*Store)(nil)

// Store is a storage.Store backed by a gocache cache.
// Values never expire.
type Store struct {
	cache *cache.Cache[any]
	close func() error
}

// New creates a store for the configured cache type.
func New(cfg *config.StoreConfig) (*Store, error) {
	switch cfg.Type {
	case config.StoreTypeMemory:
		return NewMemory(), nil
	case config.StoreTypeRedis:
		return NewRedis(cfg.RedisURL), nil
	default:
		return nil, fmt.Errorf("unsupported cache store type %q", cfg.Type)
	}
}

// NewMemory creates a process-local store.
func NewMemory() *Store {
	gocacheClient := gocache.New(gocache.NoExpiration, gocache.NoExpiration)
	gocacheStore := go_store.NewGoCache(gocacheClient)
	return &Store{
		cache: cache.New[any](gocacheStore),
		close: func() error { return nil },
	}
}

// NewRedis creates a store backed by the redis server at addr.
func NewRedis(addr string) *Store {
	redisClient := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	redisStore := redis_store.NewRedis(redisClient)
	return &Store{
		cache: cache.New[any](redisStore),
		close: redisClient.Close,
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.cache.Get(ctx, key)
	if err != nil {
		if isNotFound(err) {
			return "", storage.ErrNotFound
		}
		return "", err
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case nil:
		return "", storage.ErrNotFound
	default:
		return "", fmt.Errorf("unexpected value type %T for key %q", v, key)
	}
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.cache.Set(ctx, key, value)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.cache.Delete(ctx, key); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.close()
}

// GetType returns the cache type.
func (s *Store) GetType() string {
	return s.cache.GetType()
}

func isNotFound(err error) bool {
	var nf *store.NotFound
	return errors.As(err, &nf) || errors.Is(err, redis.Nil)
}
