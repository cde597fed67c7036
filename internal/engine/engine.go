package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bixblion/internal/account"
	"github.com/jon4hz/bixblion/internal/appearance"
	"github.com/jon4hz/bixblion/internal/cache"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/database"
	"github.com/jon4hz/bixblion/internal/scheduler"
	"github.com/jon4hz/bixblion/internal/storage"
	"github.com/jonboulle/clockwork"
)

// Engine wires the store, the job scheduler, the account directory and the
// appearance scheduler together and owns their lifecycle.
type Engine struct {
	cfg        *config.Config
	store      storage.Store
	scheduler  *scheduler.Scheduler
	directory  *account.Directory
	appearance *appearance.Scheduler
}

type options struct {
	store storage.Store
	clock clockwork.Clock
}

// Option configures an Engine.
type Option func(*options)

// WithStore uses store instead of opening the configured backend.
func WithStore(store storage.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithClock sets the clock the job scheduler runs on.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// New creates a new Engine instance.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store := o.store
	if store == nil {
		var err error
		store, err = OpenStore(cfg.Store)
		if err != nil {
			return nil, err
		}
	}

	var schedOpts []scheduler.Option
	if o.clock != nil {
		schedOpts = append(schedOpts, scheduler.WithClock(o.clock))
	}
	sched, err := scheduler.New(schedOpts...)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	var dirOpts []account.Option
	if cfg.Seed != nil && cfg.Seed.Enabled {
		dirOpts = append(dirOpts, account.WithSeed(account.Account{
			ID:     cfg.Seed.ID,
			Name:   cfg.Seed.Name,
			Email:  cfg.Seed.Email,
			Secret: cfg.Seed.Secret,
		}))
	} else {
		dirOpts = append(dirOpts, account.WithoutSeed())
	}

	return &Engine{
		cfg:        cfg,
		store:      store,
		scheduler:  sched,
		directory:  account.NewDirectory(store, dirOpts...),
		appearance: appearance.New(cfg.Appearance, store, sched),
	}, nil
}

// OpenStore opens the store backend selected in the configuration.
func OpenStore(cfg *config.StoreConfig) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)
	switch cfg.Type {
	case config.StoreTypeSQLite:
		store, err = database.New(cfg.Path)
	case config.StoreTypeRedis, config.StoreTypeMemory:
		store, err = cache.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Type, err)
	}
	log.Debug("Opened store", "type", cfg.Type, "prefix", cfg.KeyPrefix)
	return storage.WithPrefix(store, cfg.KeyPrefix), nil
}

// Init seeds the directory, restores the session and applies the appearance settings.
func (e *Engine) Init(ctx context.Context) error {
	if err := e.directory.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize account directory: %w", err)
	}
	if err := e.appearance.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize appearance: %w", err)
	}
	return nil
}

// Directory returns the account directory.
func (e *Engine) Directory() *account.Directory {
	return e.directory
}

// Appearance returns the appearance scheduler.
func (e *Engine) Appearance() *appearance.Scheduler {
	return e.appearance
}

// Store returns the underlying store.
func (e *Engine) Store() storage.Store {
	return e.store
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Close disarms all jobs, stops the scheduler and closes the store.
func (e *Engine) Close() error {
	e.directory.Close()
	return errors.Join(
		e.appearance.Close(),
		e.scheduler.Stop(),
		e.store.Close(),
	)
}
