package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the service.
// Values come from defaults, then an optional YAML file, then the environment.
type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	// Upper bound for one response, so it must cover a full route generation.
	HTTPWriteTimeout time.Duration `yaml:"http_write_timeout"`

	ORS struct {
		APIKey             string        `yaml:"api_key"`
		BaseURL            string        `yaml:"base_url"`
		Timeout            time.Duration `yaml:"timeout"`
		SnapTimeout        time.Duration `yaml:"snap_timeout"`
		MaxDurationSeconds int           `yaml:"max_duration_seconds"`
		SnapRadiusMeters   int           `yaml:"snap_radius_meters"`
		RatePerMinute      int           `yaml:"rate_per_minute"`
	} `yaml:"ors"`

	SnapConcurrency int    `yaml:"snap_concurrency"`
	SnapCachePath   string `yaml:"snap_cache_path"`
	RoutesDir       string `yaml:"routes_dir"`

	RedisURL    string        `yaml:"redis_url"`
	ZoneLockTTL time.Duration `yaml:"zone_lock_ttl"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	var c Config
	c.Port = "8080"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.HTTPWriteTimeout = 15 * time.Minute
	c.ORS.BaseURL = "https://api.openrouteservice.org"
	c.ORS.Timeout = 30 * time.Second
	c.ORS.SnapTimeout = 10 * time.Second
	c.ORS.MaxDurationSeconds = 36000
	c.ORS.SnapRadiusMeters = 100
	c.ORS.RatePerMinute = 40
	c.SnapConcurrency = 4
	c.SnapCachePath = "data/snap_cache.db"
	c.RoutesDir = "Optimised routes"
	c.ZoneLockTTL = 5 * time.Minute
	return c
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment are used.
func Load(path string) (Config, error) {
	c := Defaults()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return c, nil
}

func (c *Config) applyEnv() error {
	c.Port = Get("PORT", c.Port)
	c.DatabaseURL = Get("DATABASE_URL", c.DatabaseURL)
	c.LogLevel = Get("LOG_LEVEL", c.LogLevel)
	c.LogFormat = Get("LOG_FORMAT", c.LogFormat)
	c.ORS.APIKey = Get("ORS_API_KEY", c.ORS.APIKey)
	c.ORS.BaseURL = Get("ORS_BASE_URL", c.ORS.BaseURL)
	c.SnapCachePath = Get("SNAP_CACHE_PATH", c.SnapCachePath)
	c.RoutesDir = Get("ROUTES_DIR", c.RoutesDir)
	c.RedisURL = Get("REDIS_URL", c.RedisURL)

	var err error
	if c.ORS.Timeout, err = getDuration("ORS_TIMEOUT", c.ORS.Timeout); err != nil {
		return err
	}
	if c.ORS.SnapTimeout, err = getDuration("ORS_SNAP_TIMEOUT", c.ORS.SnapTimeout); err != nil {
		return err
	}
	if c.ZoneLockTTL, err = getDuration("ZONE_LOCK_TTL", c.ZoneLockTTL); err != nil {
		return err
	}
	if c.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", c.HTTPWriteTimeout); err != nil {
		return err
	}
	if c.ORS.MaxDurationSeconds, err = getInt("ORS_MAX_DURATION_SECONDS", c.ORS.MaxDurationSeconds); err != nil {
		return err
	}
	if c.ORS.SnapRadiusMeters, err = getInt("ORS_SNAP_RADIUS", c.ORS.SnapRadiusMeters); err != nil {
		return err
	}
	if c.ORS.RatePerMinute, err = getInt("ORS_RATE_PER_MINUTE", c.ORS.RatePerMinute); err != nil {
		return err
	}
	if c.SnapConcurrency, err = getInt("SNAP_CONCURRENCY", c.SnapConcurrency); err != nil {
		return err
	}

	return nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ORS.APIKey) == "" {
		return errors.New("ORS_API_KEY is required")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.ORS.MaxDurationSeconds <= 0 {
		return fmt.Errorf("ors max duration must be positive, got %d", c.ORS.MaxDurationSeconds)
	}
	if c.HTTPWriteTimeout <= 0 {
		return fmt.Errorf("http write timeout must be positive, got %s", c.HTTPWriteTimeout)
	}
	if c.ZoneLockTTL <= 0 {
		return fmt.Errorf("zone lock ttl must be positive, got %s", c.ZoneLockTTL)
	}
	if c.SnapConcurrency < 1 {
		return fmt.Errorf("snap concurrency must be at least 1, got %d", c.SnapConcurrency)
	}
	return nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
