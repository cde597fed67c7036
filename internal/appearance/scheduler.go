package appearance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/reactive"
	"github.com/jon4hz/bixblion/internal/scheduler"
	"github.com/jon4hz/bixblion/internal/storage"
	"github.com/jonboulle/clockwork"
)

// JobID is the id of the recurring night mode check.
const JobID = "auto-night-mode"

// Scheduler decides whether the night theme should be active and
// restores the previous theme once the night is over.
type Scheduler struct {
	mu           sync.Mutex
	store        storage.Store
	jobs         *scheduler.Scheduler
	clock        clockwork.Clock
	cfg          *config.AppearanceConfig
	defaultTheme Theme
	theme        *reactive.Value[Theme]

	// notifications of theme changes made under mu, run by unlock
	pending []func()
}

// New creates an appearance scheduler. The recurring check is registered in jobs
// and runs on the clock of jobs.
func New(cfg *config.AppearanceConfig, store storage.Store, jobs *scheduler.Scheduler) *Scheduler {
	defaultTheme, err := ParseTheme(cfg.DefaultTheme)
	if err != nil {
		log.Warn("Invalid default theme, using light", "theme", cfg.DefaultTheme)
		defaultTheme = DefaultTheme
	}
	return &Scheduler{
		store:        store,
		jobs:         jobs,
		clock:        jobs.Clock(),
		cfg:          cfg,
		defaultTheme: defaultTheme,
		theme:        reactive.NewValue(defaultTheme),
	}
}

// Init applies the persisted settings: it arms the recurring check if needed
// and evaluates once.
func (s *Scheduler) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlock()

	theme, err := s.loadTheme(ctx)
	if err != nil {
		return err
	}
	s.publish(theme)

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	if err := s.apply(settings); err != nil {
		return err
	}
	return s.evaluate(ctx, settings)
}

// Reload re-applies theme and settings after they were changed in the store
// behind the scheduler's back.
func (s *Scheduler) Reload(ctx context.Context) error {
	return s.Init(ctx)
}

// Close disarms the recurring check and detaches all theme subscribers.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme.Close()
	return s.disarm()
}

// IsNight reports whether t falls into the night window.
func (s *Scheduler) IsNight(t time.Time) bool {
	return IsNightHour(t.Hour(), s.cfg.NightStartHour, s.cfg.NightEndHour)
}

// IsNightTime reports whether it is currently night.
func (s *Scheduler) IsNightTime() bool {
	return s.IsNight(s.clock.Now())
}

// IsNightHour reports whether hour lies in the window [start, end).
// The window wraps around midnight when start is after end.
func IsNightHour(hour, start, end int) bool {
	if start > end {
		return hour >= start || hour < end
	}
	return hour >= start && hour < end
}

// LoadSettings returns the persisted settings, or the defaults if none are stored.
func (s *Scheduler) LoadSettings(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSettings(ctx)
}

// UpdateSettings merges update into the persisted settings, re-arms the
// recurring check and evaluates immediately.
func (s *Scheduler) UpdateSettings(ctx context.Context, update SettingsUpdate) (Settings, error) {
	s.mu.Lock()
	defer s.unlock()

	current, err := s.loadSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	settings := update.Apply(current)
	if err := storage.SetJSON(ctx, s.store, storage.KeyAppearanceSettings, settings); err != nil {
		return Settings{}, fmt.Errorf("failed to save appearance settings: %w", err)
	}
	log.Info("Updated appearance settings", "enabled", settings.Enabled, "alwaysActive", settings.AlwaysActive)

	if err := s.apply(settings); err != nil {
		return settings, err
	}
	return settings, s.evaluate(ctx, settings)
}

// Evaluate re-reads settings and theme from the store and applies the night mode rules.
func (s *Scheduler) Evaluate(ctx context.Context) error {
	s.mu.Lock()
	defer s.unlock()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return err
	}
	return s.evaluate(ctx, settings)
}

// Theme returns the active theme.
func (s *Scheduler) Theme(ctx context.Context) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTheme(ctx)
}

// SetTheme makes theme the active theme. The saved pre-override theme is left untouched.
func (s *Scheduler) SetTheme(ctx context.Context, theme Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("unknown theme %q", theme)
	}

	s.mu.Lock()
	defer s.unlock()
	return s.setTheme(ctx, theme)
}

// SavedTheme returns the theme that was active before the night override, if any.
func (s *Scheduler) SavedTheme(ctx context.Context) (Theme, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedTheme(ctx)
}

// NextCheck returns when the recurring check runs next.
// It reports false while the check is not armed or the job scheduler is not running.
func (s *Scheduler) NextCheck() (time.Time, bool) {
	return s.jobs.NextRun(JobID)
}

// Subscribe registers fn to be called whenever the active theme changes.
func (s *Scheduler) Subscribe(fn func(Theme)) (unsubscribe func()) {
	return s.theme.Subscribe(fn)
}

func (s *Scheduler) evaluate(ctx context.Context, settings Settings) error {
	if settings.AlwaysActive {
		current, err := s.loadTheme(ctx)
		if err != nil {
			return err
		}
		if current != ThemeDark {
			log.Debug("Night mode always active, forcing dark theme", "from", current)
			return s.setTheme(ctx, ThemeDark)
		}
		return nil
	}
	if !settings.Enabled {
		return nil
	}

	current, err := s.loadTheme(ctx)
	if err != nil {
		return err
	}

	night := s.IsNightTime()
	switch {
	case night && current != ThemeDark:
		if err := s.store.Set(ctx, storage.KeySavedTheme, current.String()); err != nil {
			return fmt.Errorf("failed to save theme before night: %w", err)
		}
		log.Info("Night started, switching to dark theme", "saved", current)
		return s.setTheme(ctx, ThemeDark)
	case !night && current == ThemeDark:
		saved, ok, err := s.savedTheme(ctx)
		if err != nil || !ok {
			return err
		}
		if err := s.setTheme(ctx, saved); err != nil {
			return err
		}
		log.Info("Night ended, restoring theme", "theme", saved)
		if err := s.store.Delete(ctx, storage.KeySavedTheme); err != nil {
			return fmt.Errorf("failed to clear saved theme: %w", err)
		}
	}
	return nil
}

// apply arms the recurring check iff the settings require it.
func (s *Scheduler) apply(settings Settings) error {
	if !settings.scheduled() {
		return s.disarm()
	}
	if s.jobs.HasJob(JobID) {
		return nil
	}
	return s.jobs.AddSingletonJob(
		JobID,
		"Automatic night mode",
		"Switches to the dark theme at night and restores the previous theme in the morning",
		s.cfg.CheckInterval.String(),
		gocron.DurationJob(s.cfg.CheckInterval),
		s.Evaluate,
	)
}

func (s *Scheduler) disarm() error {
	return s.jobs.RemoveJob(JobID)
}

func (s *Scheduler) loadSettings(ctx context.Context) (Settings, error) {
	settings, err := storage.GetJSON[Settings](ctx, s.store, storage.KeyAppearanceSettings)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return Settings{}, nil
	case storage.IsCorrupt(err):
		log.Warn("Discarding unreadable appearance settings", "error", err)
		if err := s.store.Delete(ctx, storage.KeyAppearanceSettings); err != nil {
			log.Error("Failed to delete unreadable appearance settings", "error", err)
		}
		return Settings{}, nil
	case err != nil:
		return Settings{}, fmt.Errorf("failed to load appearance settings: %w", err)
	}
	return settings, nil
}

func (s *Scheduler) loadTheme(ctx context.Context) (Theme, error) {
	raw, err := s.store.Get(ctx, storage.KeyTheme)
	if errors.Is(err, storage.ErrNotFound) {
		return s.defaultTheme, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load theme: %w", err)
	}
	theme, err := ParseTheme(raw)
	if err != nil {
		log.Warn("Unknown theme persisted, using default", "theme", raw, "default", s.defaultTheme)
		return s.defaultTheme, nil
	}
	return theme, nil
}

// setTheme persists theme and then publishes it.
func (s *Scheduler) setTheme(ctx context.Context, theme Theme) error {
	if err := s.store.Set(ctx, storage.KeyTheme, theme.String()); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	s.publish(theme)
	return nil
}

// publish makes theme the current value; subscribers are notified by unlock.
func (s *Scheduler) publish(theme Theme) {
	s.pending = append(s.pending, s.theme.Store(theme))
}

// unlock releases mu and then notifies the subscribers of every theme
// published while it was held.
func (s *Scheduler) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, notify := range pending {
		notify()
	}
}

// savedTheme never yields dark; a saved dark or unknown theme is discarded.
func (s *Scheduler) savedTheme(ctx context.Context) (Theme, bool, error) {
	raw, err := s.store.Get(ctx, storage.KeySavedTheme)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load saved theme: %w", err)
	}

	theme, err := ParseTheme(raw)
	if err != nil || theme == ThemeDark {
		log.Warn("Discarding invalid saved theme", "theme", raw)
		if err := s.store.Delete(ctx, storage.KeySavedTheme); err != nil {
			return "", false, fmt.Errorf("failed to clear saved theme: %w", err)
		}
		return "", false, nil
	}
	return theme, true, nil
}
