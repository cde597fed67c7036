package appearance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/scheduler"
	"github.com/jon4hz/bixblion/internal/storage"
	"github.com/jon4hz/bixblion/internal/storage/mock"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func at(hour int) time.Time {
	return time.Date(2024, 3, 14, hour, 0, 0, 0, time.Local)
}

type AppearanceTestSuite struct {
	suite.Suite
	ctx        context.Context
	clock      *clockwork.FakeClock
	store      *mock.MockStore
	jobs       *scheduler.Scheduler
	appearance *Scheduler
}

func (s *AppearanceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clockwork.NewFakeClockAt(at(21))
	s.store = mock.NewMockStore()

	jobs, err := scheduler.New(scheduler.WithClock(s.clock))
	s.Require().NoError(err)
	s.jobs = jobs

	s.appearance = New(config.Default().Appearance, s.store, s.jobs)
	s.Require().NoError(s.appearance.Init(s.ctx))
}

func (s *AppearanceTestSuite) TearDownTest() {
	s.NoError(s.appearance.Close())
	_ = s.jobs.Stop()
}

// setTime moves the clock forward to the next occurrence of hour.
func (s *AppearanceTestSuite) setTime(hour int) {
	now := s.clock.Now()
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.Local)
	if target.Before(now) {
		target = target.AddDate(0, 0, 1)
	}
	s.clock.Advance(target.Sub(now))
}

func (s *AppearanceTestSuite) theme() Theme {
	theme, err := s.appearance.Theme(s.ctx)
	s.Require().NoError(err)
	return theme
}

func (s *AppearanceTestSuite) saved() (Theme, bool) {
	theme, ok, err := s.appearance.SavedTheme(s.ctx)
	s.Require().NoError(err)
	return theme, ok
}

func (s *AppearanceTestSuite) TestDefaults() {
	settings, err := s.appearance.LoadSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(Settings{}, settings)
	s.Equal(ThemeLight, s.theme())
	s.False(s.jobs.HasJob(JobID))

	_, ok := s.saved()
	s.False(ok)
}

func (s *AppearanceTestSuite) TestNightOverrideAndRestore() {
	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeSepia))

	settings, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)
	s.Equal(Settings{Enabled: true}, settings)
	s.True(s.jobs.HasJob(JobID))

	s.Equal(ThemeDark, s.theme())
	saved, ok := s.saved()
	s.Require().True(ok)
	s.Equal(ThemeSepia, saved)

	s.setTime(8)
	s.Require().NoError(s.appearance.Evaluate(s.ctx))
	s.Equal(ThemeSepia, s.theme())
	_, ok = s.saved()
	s.False(ok)
	_, ok = s.store.Raw(storage.KeySavedTheme)
	s.False(ok)
}

func (s *AppearanceTestSuite) TestRepeatedNightTicksKeepSavedTheme() {
	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeRose))
	_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)

	for _, hour := range []int{22, 23, 2, 6} {
		s.setTime(hour)
		s.Require().NoError(s.appearance.Evaluate(s.ctx))
		s.Equal(ThemeDark, s.theme())
		saved, ok := s.saved()
		s.Require().True(ok)
		s.Equal(ThemeRose, saved)
	}
	s.Equal(1, s.store.SetCalls[storage.KeySavedTheme])
}

func (s *AppearanceTestSuite) TestAlwaysActiveForcesDark() {
	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeBlue))

	for _, enabled := range []bool{false, true} {
		for _, hour := range []int{3, 12, 21} {
			s.setTime(hour)
			s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeBlue))
			_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{
				Enabled:      lo.ToPtr(enabled),
				AlwaysActive: lo.ToPtr(true),
			})
			s.Require().NoError(err)

			s.Equal(ThemeDark, s.theme(), "enabled=%v hour=%d", enabled, hour)
			s.False(s.jobs.HasJob(JobID))
			_, ok := s.saved()
			s.False(ok)
		}
	}
}

func (s *AppearanceTestSuite) TestDisabledDoesNothing() {
	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeGreen))
	s.Require().NoError(s.appearance.Evaluate(s.ctx))
	s.Equal(ThemeGreen, s.theme())
	s.False(s.jobs.HasJob(JobID))
}

func (s *AppearanceTestSuite) TestDaytimeManualChoiceRespected() {
	s.setTime(10)
	_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)

	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeSepia))
	s.Require().NoError(s.appearance.Evaluate(s.ctx))
	s.Equal(ThemeSepia, s.theme())
}

func (s *AppearanceTestSuite) TestDayWithoutSavedThemeKeepsDark() {
	s.setTime(10)
	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeDark))
	_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)
	s.Equal(ThemeDark, s.theme())
}

func (s *AppearanceTestSuite) TestManualDarkIsRestoredAway() {
	// a manual dark choice cannot be told apart from the night override
	s.setTime(10)
	s.store.SetRaw(storage.KeySavedTheme, string(ThemeSepia))
	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeDark))
	_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)
	s.Equal(ThemeSepia, s.theme())
}

func (s *AppearanceTestSuite) TestDisarmOnDisable() {
	_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)
	s.True(s.jobs.HasJob(JobID))

	// re-enabling keeps a single job
	_, err = s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)
	s.Len(s.jobs.GetJobs(), 1)

	settings, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(false)})
	s.Require().NoError(err)
	s.Equal(Settings{}, settings)
	s.False(s.jobs.HasJob(JobID))
}

func (s *AppearanceTestSuite) TestCorruptValuesFallBack() {
	s.store.SetRaw(storage.KeyAppearanceSettings, "{{")
	s.store.SetRaw(storage.KeyTheme, "neon")
	s.store.SetRaw(storage.KeySavedTheme, "dark")

	settings, err := s.appearance.LoadSettings(s.ctx)
	s.Require().NoError(err)
	s.Equal(Settings{}, settings)
	_, ok := s.store.Raw(storage.KeyAppearanceSettings)
	s.False(ok)

	s.Equal(ThemeLight, s.theme())

	_, ok = s.saved()
	s.False(ok)
	_, ok = s.store.Raw(storage.KeySavedTheme)
	s.False(ok)
}

func (s *AppearanceTestSuite) TestSetThemeRejectsUnknown() {
	s.Error(s.appearance.SetTheme(s.ctx, Theme("neon")))
	s.Equal(ThemeLight, s.theme())
}

func (s *AppearanceTestSuite) TestSubscribe() {
	var seen []Theme
	unsubscribe := s.appearance.Subscribe(func(theme Theme) {
		seen = append(seen, theme)
	})
	defer unsubscribe()

	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeSepia))
	_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)

	s.Equal([]Theme{ThemeSepia, ThemeDark}, seen)
}

func (s *AppearanceTestSuite) TestSubscriberMayCallBack() {
	var (
		persisted []Theme
		saved     []bool
	)
	unsubscribe := s.appearance.Subscribe(func(Theme) {
		theme, err := s.appearance.Theme(s.ctx)
		s.NoError(err)
		persisted = append(persisted, theme)

		_, ok, err := s.appearance.SavedTheme(s.ctx)
		s.NoError(err)
		saved = append(saved, ok)
	})
	defer unsubscribe()

	done := make(chan error, 1)
	go func() {
		if err := s.appearance.SetTheme(s.ctx, ThemeSepia); err != nil {
			done <- err
			return
		}
		_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
		done <- err
	}()

	select {
	case err := <-done:
		s.Require().NoError(err)
	case <-time.After(5 * time.Second):
		s.FailNow("theme change blocked on a subscriber reading the theme")
	}
	s.Equal([]Theme{ThemeSepia, ThemeDark}, persisted)
	s.Equal([]bool{false, true}, saved)
}

func (s *AppearanceTestSuite) TestSubscriberMaySetTheme() {
	unsubscribe := s.appearance.Subscribe(func(theme Theme) {
		if theme == ThemeDark {
			s.NoError(s.appearance.SetTheme(s.ctx, ThemeBlue))
		}
	})
	defer unsubscribe()

	done := make(chan error, 1)
	go func() { done <- s.appearance.SetTheme(s.ctx, ThemeDark) }()

	select {
	case err := <-done:
		s.Require().NoError(err)
	case <-time.After(5 * time.Second):
		s.FailNow("theme change blocked on a subscriber changing the theme")
	}
	s.Equal(ThemeBlue, s.theme())
}

func (s *AppearanceTestSuite) TestStoreErrorSurfaces() {
	s.store.GetError = errors.New("gone")
	_, err := s.appearance.Theme(s.ctx)
	s.Error(err)
	s.Error(s.appearance.Evaluate(s.ctx))
}

func (s *AppearanceTestSuite) TestRecurringCheckRuns() {
	s.Require().NoError(s.appearance.SetTheme(s.ctx, ThemeSepia))
	s.setTime(10)
	_, err := s.appearance.UpdateSettings(s.ctx, SettingsUpdate{Enabled: lo.ToPtr(true)})
	s.Require().NoError(err)
	s.Equal(ThemeSepia, s.theme())

	s.jobs.Start()
	s.Eventually(func() bool {
		_, ok := s.appearance.NextCheck()
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	s.setTime(21)
	s.Require().NoError(s.jobs.RunJobNow(JobID))
	s.Eventually(func() bool {
		theme, err := s.appearance.Theme(s.ctx)
		return err == nil && theme == ThemeDark
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAppearanceTestSuite(t *testing.T) {
	suite.Run(t, new(AppearanceTestSuite))
}

func TestIsNightHour(t *testing.T) {
	tests := []struct {
		hour       int
		start, end int
		want       bool
	}{
		{hour: 19, start: 20, end: 7, want: false},
		{hour: 20, start: 20, end: 7, want: true},
		{hour: 23, start: 20, end: 7, want: true},
		{hour: 0, start: 20, end: 7, want: true},
		{hour: 6, start: 20, end: 7, want: true},
		{hour: 7, start: 20, end: 7, want: false},
		{hour: 12, start: 20, end: 7, want: false},
		{hour: 1, start: 1, end: 5, want: true},
		{hour: 5, start: 1, end: 5, want: false},
		{hour: 0, start: 1, end: 5, want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNightHour(tt.hour, tt.start, tt.end), "hour=%d window=%d-%d", tt.hour, tt.start, tt.end)
	}
}

func TestParseTheme(t *testing.T) {
	for _, theme := range Themes() {
		parsed, err := ParseTheme(" " + string(theme) + " ")
		require.NoError(t, err)
		assert.Equal(t, theme, parsed)
	}

	parsed, err := ParseTheme("SEPIA")
	require.NoError(t, err)
	assert.Equal(t, ThemeSepia, parsed)

	_, err = ParseTheme("rose")
	assert.Error(t, err)
}

func TestInvalidDefaultTheme(t *testing.T) {
	jobs, err := scheduler.New()
	require.NoError(t, err)
	defer jobs.Stop() //nolint:errcheck

	cfg := *config.Default().Appearance
	cfg.DefaultTheme = "plaid"
	appearance := New(&cfg, mock.NewMockStore(), jobs)

	theme, err := appearance.Theme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)
}

func TestInitArmsPersistedSettings(t *testing.T) {
	ctx := context.Background()
	store := mock.NewMockStore()
	require.NoError(t, storage.SetJSON(ctx, store, storage.KeyAppearanceSettings, Settings{Enabled: true}))
	store.SetRaw(storage.KeyTheme, string(ThemeGreen))

	jobs, err := scheduler.New(scheduler.WithClock(clockwork.NewFakeClockAt(at(23))))
	require.NoError(t, err)
	defer jobs.Stop() //nolint:errcheck

	appearance := New(config.Default().Appearance, store, jobs)
	require.NoError(t, appearance.Init(ctx))
	defer appearance.Close() //nolint:errcheck

	assert.True(t, jobs.HasJob(JobID))
	theme, err := appearance.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	saved, ok, err := appearance.SavedTheme(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ThemeGreen, saved)
}
