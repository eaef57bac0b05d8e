// Package daemon manages the jobtrail daemon lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all daemon configuration. Values come from defaults, then
// $JOBTRAIL_HOME/config.toml, then JOBTRAIL_* environment variables.
type Config struct {
	API           APIConfig           `toml:"api"`
	Storage       StorageConfig       `toml:"storage"`
	Redis         RedisConfig         `toml:"redis"`
	Progression   ProgressionConfig   `toml:"progression"`
	Notifications NotificationsConfig `toml:"notifications"`
	Logging       LoggingConfig       `toml:"logging"`
	Telemetry     TelemetryConfig     `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host" env:"JOBTRAIL_API_HOST"`
	Port        int      `toml:"port" env:"JOBTRAIL_API_PORT"`
	CORSOrigins []string `toml:"cors_origins" env:"JOBTRAIL_API_CORS_ORIGINS" envSeparator:","`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Dir string `toml:"dir" env:"JOBTRAIL_STORAGE_DIR"`
}

// RedisConfig controls the optional goals cache.
type RedisConfig struct {
	Enabled  bool   `toml:"enabled" env:"JOBTRAIL_REDIS_ENABLED"`
	Addr     string `toml:"addr" env:"JOBTRAIL_REDIS_ADDR"`
	Password string `toml:"password" env:"JOBTRAIL_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"JOBTRAIL_REDIS_DB"`
	TTL      string `toml:"ttl" env:"JOBTRAIL_REDIS_TTL"`
}

// ProgressionConfig controls calendar boundaries.
type ProgressionConfig struct {
	Timezone string `toml:"timezone" env:"JOBTRAIL_TIMEZONE"`
}

// NotificationsConfig is the notification policy.
type NotificationsConfig struct {
	Enabled    bool   `toml:"enabled" env:"JOBTRAIL_NOTIFICATIONS_ENABLED"`
	MaxPerDay  int    `toml:"max_per_day" env:"JOBTRAIL_NOTIFICATIONS_MAX_PER_DAY"`
	QuietStart string `toml:"quiet_start" env:"JOBTRAIL_NOTIFICATIONS_QUIET_START"`
	QuietEnd   string `toml:"quiet_end" env:"JOBTRAIL_NOTIFICATIONS_QUIET_END"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level" env:"JOBTRAIL_LOG_LEVEL"`
	JSON  bool   `toml:"json" env:"JOBTRAIL_LOG_JSON"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" env:"JOBTRAIL_PROMETHEUS"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8420,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: jobtrailHome(),
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  "10m",
		},
		Progression: ProgressionConfig{
			Timezone: "Local",
		},
		Notifications: NotificationsConfig{
			Enabled:    true,
			MaxPerDay:  5,
			QuietStart: "22:00",
			QuietEnd:   "08:00",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
	}
}

// LoadConfig reads $JOBTRAIL_HOME/config.toml and the environment.
func LoadConfig() (Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	return loadConfigFrom(ConfigPath())
}

func loadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and formats.
func (c Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api.port: %d (must be 1-65535)", c.API.Port)
	}
	if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid progression.timezone: %w", err)
	}
	if c.Notifications.MaxPerDay < 0 {
		return fmt.Errorf("invalid notifications.max_per_day: %d", c.Notifications.MaxPerDay)
	}
	for _, hm := range []string{c.Notifications.QuietStart, c.Notifications.QuietEnd} {
		if hm == "" {
			continue
		}
		if _, err := time.Parse("15:04", hm); err != nil {
			return fmt.Errorf("invalid quiet hour %q (want HH:MM)", hm)
		}
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	return nil
}

// Location resolves the progression timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Progression.Timezone == "" || c.Progression.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Progression.Timezone)
}

// RedisTTL parses the cache TTL, falling back to 10 minutes.
func (c Config) RedisTTL() time.Duration {
	return parseDuration(c.Redis.TTL, 10*time.Minute)
}

// SaveConfig writes the config to $JOBTRAIL_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// ConfigPath is the location of config.toml.
func ConfigPath() string {
	return filepath.Join(jobtrailHome(), "config.toml")
}

// jobtrailHome returns the jobtrail data directory.
func jobtrailHome() string {
	if env := os.Getenv("JOBTRAIL_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".jobtrail")
}

// Home is exported for use by other packages.
func Home() string {
	return jobtrailHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
