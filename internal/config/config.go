package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

type StoreType string

const (
	StoreTypeSQLite StoreType = "sqlite"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeMemory StoreType = "memory"
)

// Config holds the configuration for the Bixblion server and its local stores.
type Config struct {
	// Listen is the address the Bixblion API will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// SessionKey is the key used to sign the cookie session of the API.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of the cookie session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// Store holds the durable key-value store configuration.
	Store *StoreConfig `yaml:"store" mapstructure:"store"`
	// Appearance holds the automatic night mode configuration.
	Appearance *AppearanceConfig `yaml:"appearance" mapstructure:"appearance"`
	// Seed holds the demo account that is created on first start.
	Seed *SeedConfig `yaml:"seed" mapstructure:"seed"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// StoreConfig holds the configuration of the durable key-value store.
type StoreConfig struct {
	// Type is the store backend to use ("sqlite", "redis", "memory").
	Type StoreType `yaml:"type" mapstructure:"type"`
	// Path is the path to the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
	// RedisURL is the address of the redis server if using redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// KeyPrefix is prepended to every key written to the store.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// AppearanceConfig holds the configuration of the automatic night mode.
type AppearanceConfig struct {
	// CheckInterval is how often the night window is re-evaluated while automatic night mode is enabled.
	CheckInterval time.Duration `yaml:"check_interval" mapstructure:"check_interval"`
	// NightStartHour is the local hour (0-23) at which the night window starts.
	NightStartHour int `yaml:"night_start_hour" mapstructure:"night_start_hour"`
	// NightEndHour is the local hour (0-23) at which the night window ends.
	NightEndHour int `yaml:"night_end_hour" mapstructure:"night_end_hour"`
	// DefaultTheme is the theme used when no theme has been chosen yet.
	DefaultTheme string `yaml:"default_theme" mapstructure:"default_theme"`
}

// SeedConfig holds the demo account created when the account collection is empty.
type SeedConfig struct {
	// Enabled indicates whether the demo account is seeded.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ID is the fixed identifier of the demo account.
	ID string `yaml:"id" mapstructure:"id"`
	// Name is the display name of the demo account.
	Name string `yaml:"name" mapstructure:"name"`
	// Email is the email address of the demo account.
	Email string `yaml:"email" mapstructure:"email"`
	// Secret is the secret of the demo account.
	Secret string `yaml:"secret" mapstructure:"secret"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar support is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// If no config file is found, the defaults are used.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("BIXBLION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bixblion")
		v.AddConfigPath("/etc/bixblion")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with the BIXBLION_ prefix override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "127.0.0.1:3003")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 3600)

	// Store defaults
	v.SetDefault("store.type", StoreTypeSQLite)
	v.SetDefault("store.path", "./data/bixblion.db")
	v.SetDefault("store.redis_url", "")
	v.SetDefault("store.key_prefix", "")

	// Appearance defaults
	v.SetDefault("appearance.check_interval", time.Minute)
	v.SetDefault("appearance.night_start_hour", 20)
	v.SetDefault("appearance.night_end_hour", 7)
	v.SetDefault("appearance.default_theme", "light")

	// Demo account defaults
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.id", "u-local-1")
	v.SetDefault("seed.name", "Lettore Demo")
	v.SetDefault("seed.email", "demo@bixblion.app")
	v.SetDefault("seed.secret", "demo12345")

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "robohash")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing bixblion config")
	}

	if c.Store == nil {
		return fmt.Errorf("missing store config")
	}
	switch c.Store.Type {
	case StoreTypeSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store path is required when the sqlite store is used")
		}
	case StoreTypeRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when the redis store is used") //nolint:staticcheck
		}
	case StoreTypeMemory:
		log.Warn("Using the in-memory store, accounts and settings will not survive a restart")
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}

	if c.Appearance == nil {
		return fmt.Errorf("missing appearance config")
	}
	if c.Appearance.CheckInterval <= 0 {
		return fmt.Errorf("appearance check interval must be greater than 0")
	}
	if !validHour(c.Appearance.NightStartHour) || !validHour(c.Appearance.NightEndHour) {
		return fmt.Errorf("appearance night hours must be between 0 and 23")
	}
	if c.Appearance.NightStartHour == c.Appearance.NightEndHour {
		return fmt.Errorf("appearance night start and end hour must differ")
	}

	if c.Seed != nil && c.Seed.Enabled {
		if c.Seed.ID == "" || c.Seed.Email == "" || c.Seed.Secret == "" {
			return fmt.Errorf("seed id, email and secret are required when seeding is enabled")
		}
	}

	if c.Gravatar == nil {
		c.Gravatar = &GravatarConfig{}
	}

	return nil
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = strings.TrimSpace(c.Listen)

	if c.Store != nil {
		c.Store.Type = StoreType(strings.ToLower(strings.TrimSpace(string(c.Store.Type))))
		c.Store.Path = strings.TrimSpace(c.Store.Path)
		c.Store.RedisURL = strings.TrimSpace(c.Store.RedisURL)
	}

	if c.Appearance != nil {
		c.Appearance.DefaultTheme = strings.ToLower(strings.TrimSpace(c.Appearance.DefaultTheme))
	}

	if c.Seed != nil {
		c.Seed.Email = strings.ToLower(strings.TrimSpace(c.Seed.Email))
		c.Seed.Name = strings.TrimSpace(c.Seed.Name)
	}
}

// Default returns the configuration that Load produces without any config file or environment.
// It is mostly useful for tests.
func Default() *Config {
	return &Config{
		Listen:        "127.0.0.1:3003",
		SessionMaxAge: 3600,
		Store: &StoreConfig{
			Type: StoreTypeMemory,
		},
		Appearance: &AppearanceConfig{
			CheckInterval:  time.Minute,
			NightStartHour: 20,
			NightEndHour:   7,
			DefaultTheme:   "light",
		},
		Seed: &SeedConfig{
			Enabled: true,
			ID:      "u-local-1",
			Name:    "Lettore Demo",
			Email:   "demo@bixblion.app",
			Secret:  "demo12345",
		},
		Gravatar: &GravatarConfig{},
	}
}
