package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jon4hz/bixblion/internal/account"
	"github.com/jon4hz/bixblion/internal/appearance"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/storage"
	"github.com/jon4hz/bixblion/internal/storage/mock"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 22, 0, 0, 0, time.Local))

	e, err := New(config.Default(), WithStore(store), WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, e.Init(ctx))

	identities, err := e.Directory().Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, identities, 1)
	assert.Equal(t, "demo@bixblion.app", identities[0].Email)

	_, err = e.Appearance().UpdateSettings(ctx, appearance.SettingsUpdate{Enabled: lo.ToPtr(true)})
	require.NoError(t, err)
	assert.True(t, e.Scheduler().HasJob(appearance.JobID))

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- e.Run(runCtx) }()
	cancel()
	require.NoError(t, <-done)

	require.NoError(t, e.Close())
	assert.True(t, store.Closed())
	assert.False(t, e.Scheduler().HasJob(appearance.JobID))
}

func TestEngineWithoutSeed(t *testing.T) {
	cfg := config.Default()
	cfg.Seed.Enabled = false

	e, err := New(cfg, WithStore(mock.NewMockStore()))
	require.NoError(t, err)
	defer e.Close() //nolint:errcheck
	require.NoError(t, e.Init(context.Background()))

	identities, err := e.Directory().Accounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, identities)
}

func TestEngineSQLiteRestart(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Store = &config.StoreConfig{
		Type: config.StoreTypeSQLite,
		Path: filepath.Join(t.TempDir(), "bixblion.db"),
	}

	e, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Init(ctx))
	_, err = e.Directory().Register(ctx, account.RegisterInput{Name: "Ada", Email: "ada@example.com", Secret: "pw123456"})
	require.NoError(t, err)
	require.NoError(t, e.Appearance().SetTheme(ctx, appearance.ThemeSepia))
	require.NoError(t, e.Close())

	restarted, err := New(cfg)
	require.NoError(t, err)
	defer restarted.Close() //nolint:errcheck
	require.NoError(t, restarted.Init(ctx))

	current := restarted.Directory().CurrentSession()
	require.NotNil(t, current)
	assert.Equal(t, "ada@example.com", current.Email)

	theme, err := restarted.Appearance().Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, appearance.ThemeSepia, theme)
}

func TestOpenStore(t *testing.T) {
	store, err := OpenStore(&config.StoreConfig{Type: config.StoreTypeMemory, KeyPrefix: "test:"})
	require.NoError(t, err)
	defer store.Close() //nolint:errcheck

	require.NoError(t, store.Set(context.Background(), storage.KeyTheme, "dark"))
	value, err := store.Get(context.Background(), storage.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", value)

	_, err = OpenStore(&config.StoreConfig{Type: "etcd"})
	assert.Error(t, err)
}

func TestResetAndStats(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore()

	e, err := New(config.Default(), WithStore(store))
	require.NoError(t, err)
	defer e.Close() //nolint:errcheck
	require.NoError(t, e.Init(ctx))

	_, err = e.Directory().Login(ctx, "demo@bixblion.app", "demo12345")
	require.NoError(t, err)
	require.NoError(t, e.Appearance().SetTheme(ctx, appearance.ThemeBlue))

	stats, err := e.StoreStats(ctx)
	require.NoError(t, err)
	present := lo.FilterMap(stats, func(s KeyStats, _ int) (string, bool) {
		return s.Key, s.Present
	})
	assert.ElementsMatch(t, []string{storage.KeyAccounts, storage.KeySession, storage.KeyTheme}, present)
	themeStats, ok := lo.Find(stats, func(s KeyStats) bool { return s.Key == storage.KeyTheme })
	require.True(t, ok)
	assert.Equal(t, uint64(len(appearance.ThemeBlue)), themeStats.Size)

	var published []appearance.Theme
	e.Appearance().Subscribe(func(theme appearance.Theme) {
		published = append(published, theme)
	})

	deleted, err := e.Reset(ctx, false)
	require.NoError(t, err)
	assert.NotContains(t, deleted, storage.KeyAccounts)
	assert.Contains(t, deleted, storage.KeySession)
	_, ok = store.Raw(storage.KeySession)
	assert.False(t, ok)
	_, ok = store.Raw(storage.KeyAccounts)
	assert.True(t, ok)

	assert.Nil(t, e.Directory().CurrentSession())
	require.NotEmpty(t, published)
	assert.Equal(t, appearance.DefaultTheme, published[len(published)-1])
	theme, err := e.Appearance().Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, appearance.DefaultTheme, theme)

	deleted, err = e.Reset(ctx, true)
	require.NoError(t, err)
	assert.Contains(t, deleted, storage.KeyAccounts)
	_, ok = store.Raw(storage.KeyAccounts)
	assert.False(t, ok)
}

func TestResetDisarmsNightMode(t *testing.T) {
	ctx := context.Background()

	e, err := New(config.Default(), WithStore(mock.NewMockStore()))
	require.NoError(t, err)
	defer e.Close() //nolint:errcheck
	require.NoError(t, e.Init(ctx))

	_, err = e.Appearance().UpdateSettings(ctx, appearance.SettingsUpdate{Enabled: lo.ToPtr(true)})
	require.NoError(t, err)
	require.True(t, e.Scheduler().HasJob(appearance.JobID))

	_, err = e.Reset(ctx, false)
	require.NoError(t, err)
	assert.False(t, e.Scheduler().HasJob(appearance.JobID))
}

func TestResetKeepsSessionOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore()

	e, err := New(config.Default(), WithStore(store))
	require.NoError(t, err)
	defer e.Close() //nolint:errcheck
	require.NoError(t, e.Init(ctx))

	_, err = e.Directory().Login(ctx, "demo@bixblion.app", "demo12345")
	require.NoError(t, err)

	store.DeleteError = errors.New("store unavailable")
	_, err = e.Reset(ctx, false)
	require.Error(t, err)

	_, ok := store.Raw(storage.KeySession)
	assert.True(t, ok)
	assert.NotNil(t, e.Directory().CurrentSession())
}
