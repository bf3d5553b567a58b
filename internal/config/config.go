// Package config handles configuration loading from files, defaults, .env
// files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/quorum/internal/slot"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	Event   EventConfig   `toml:"event"`
	Storage StorageConfig `toml:"storage"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
	Worker  WorkerConfig  `toml:"worker"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`
}

// EventConfig holds the defaults offered when creating an event.
type EventConfig struct {
	DayStart    string `toml:"day_start"`    // e.g., "09:00"
	DayEnd      string `toml:"day_end"`      // e.g., "17:00"
	SlotMinutes int    `toml:"slot_minutes"` // 15..120
	Timezone    string `toml:"timezone"`     // IANA name, e.g., "Europe/Madrid"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	Driver string `toml:"driver"`  // "sqlite" or "postgres"
	DBPath string `toml:"db_path"` // sqlite file
	DSN    string `toml:"dsn"`     // postgres connection string
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig holds Redis settings shared by the cache and the worker.
// An empty address disables both.
type CacheConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLSeconds    int    `toml:"ttl_seconds"`
}

// WorkerConfig holds background cleanup settings.
type WorkerConfig struct {
	CleanupSchedule string `toml:"cleanup_schedule"` // cron spec
	RetentionDays   int    `toml:"retention_days"`
	Concurrency     int    `toml:"concurrency"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme       string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte", "light"
	TapToToggle bool   `toml:"tap_to_toggle"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Event: EventConfig{
			DayStart:    "09:00",
			DayEnd:      "17:00",
			SlotMinutes: 30,
			Timezone:    "UTC",
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DBPath: defaultDataPath("quorum.db"),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		Worker: WorkerConfig{
			CleanupSchedule: "0 3 * * *",
			RetentionDays:   30,
			Concurrency:     2,
		},
		UI: UIConfig{
			Theme: "frappe",
		},
		Log: LogConfig{
			Dir: defaultDataPath("logs"),
		},
	}
}

// defaultDataPath returns a path under the user's data directory.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "quorum", name)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "quorum", "config.toml")
}

// Load loads configuration from the default path and ./.env.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath(), ".env")
}

// LoadFrom loads configuration from path. It starts with defaults, overlays
// the file if it exists, then applies QUORUM_* variables from the process
// environment or, failing that, from envFiles.
func LoadFrom(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg, envLookup(dotenv)); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.Dir = expandPath(cfg.Log.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// readEnvFiles reads .env files without touching the process environment.
// Missing files are skipped; earlier files win.
func readEnvFiles(files []string) (map[string]string, error) {
	vars := map[string]string{}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		m, err := godotenv.Read(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		for k, v := range m {
			if _, ok := vars[k]; !ok {
				vars[k] = v
			}
		}
	}
	return vars, nil
}

func envLookup(dotenv map[string]string) func(string) string {
	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"QUORUM_DAY_START":        &cfg.Event.DayStart,
		"QUORUM_DAY_END":          &cfg.Event.DayEnd,
		"QUORUM_TIMEZONE":         &cfg.Event.Timezone,
		"QUORUM_DB_DRIVER":        &cfg.Storage.Driver,
		"QUORUM_DB_PATH":          &cfg.Storage.DBPath,
		"QUORUM_DB_DSN":           &cfg.Storage.DSN,
		"QUORUM_ADDR":             &cfg.Server.Addr,
		"QUORUM_REDIS_ADDR":       &cfg.Cache.RedisAddr,
		"QUORUM_REDIS_PASSWORD":   &cfg.Cache.RedisPassword,
		"QUORUM_CLEANUP_SCHEDULE": &cfg.Worker.CleanupSchedule,
		"QUORUM_UI_THEME":         &cfg.UI.Theme,
		"QUORUM_LOG_DIR":          &cfg.Log.Dir,
	}
	for key, dst := range strs {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"QUORUM_SLOT_MINUTES":       &cfg.Event.SlotMinutes,
		"QUORUM_REDIS_DB":           &cfg.Cache.RedisDB,
		"QUORUM_CACHE_TTL":          &cfg.Cache.TTLSeconds,
		"QUORUM_RETENTION_DAYS":     &cfg.Worker.RetentionDays,
		"QUORUM_WORKER_CONCURRENCY": &cfg.Worker.Concurrency,
	}
	for key, dst := range ints {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", key, v)
		}
		*dst = n
	}

	if v := getenv("QUORUM_TAP_TO_TOGGLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QUORUM_TAP_TO_TOGGLE must be a boolean, got %q", v)
		}
		cfg.UI.TapToToggle = b
	}
	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slot.ValidClock(c.Event.DayStart) {
		return fmt.Errorf("day_start must be in HH:MM format, got %q", c.Event.DayStart)
	}
	if !slot.ValidClock(c.Event.DayEnd) {
		return fmt.Errorf("day_end must be in HH:MM format, got %q", c.Event.DayEnd)
	}
	start, _ := slot.ParseClock(c.Event.DayStart)
	end, _ := slot.ParseClock(c.Event.DayEnd)
	if start >= end {
		return errors.New("day_start must be before day_end")
	}
	if c.Event.SlotMinutes < 15 || c.Event.SlotMinutes > 120 {
		return fmt.Errorf("slot_minutes must be between 15 and 120, got %d", c.Event.SlotMinutes)
	}
	if _, err := time.LoadLocation(c.Event.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q", c.Event.Timezone)
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set")
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			return errors.New("dsn must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Server.Addr == "" {
		return errors.New("server addr must be set")
	}
	if c.Cache.TTLSeconds < 0 {
		return errors.New("ttl_seconds cannot be negative")
	}
	if c.Worker.RetentionDays < 0 {
		return errors.New("retention_days cannot be negative")
	}
	if c.Worker.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}
	return nil
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if c.Storage.Driver == DriverPostgres {
		return c.Storage.DSN
	}
	return c.Storage.DBPath
}

// HasRedis reports whether a Redis server is configured.
func (c *Config) HasRedis() bool {
	return c.Cache.RedisAddr != ""
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// Retention returns how long events are kept after their last date.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Worker.RetentionDays) * 24 * time.Hour
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
