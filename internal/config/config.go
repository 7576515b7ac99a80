package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything galley reads from config.toml.
type Config struct {
	BaseURL            string
	CacheDir           string
	MemoryCapacity     int64
	DiskCapacity       int64
	RequestTimeout     time.Duration
	ProbeAddress       string
	ProbeInterval      time.Duration
	LogFile            string
	LogLevel           string
	CacheKeyStripQuery []string
}

const (
	defaultConfigPath     = "~/.config/galley/config.toml"
	defaultBaseURL        = "https://d3jbb8n5wk0qxi.cloudfront.net"
	defaultCacheDir       = "~/.cache/galley/images"
	defaultMemoryCapacity = 10_000_000
	defaultDiskCapacity   = 1_000_000_000
	defaultRequestTimeout = 15 * time.Second
	defaultProbeInterval  = 5 * time.Second
	defaultLogFile        = "~/.local/state/galley/galley.log"
	defaultLogLevel       = "info"
)

var defaultStripQuery = []string{
	"X-Amz-Signature",
	"X-Amz-Date",
	"X-Amz-Expires",
	"X-Amz-Credential",
	"X-Amz-SignedHeaders",
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{
		BaseURL:            defaultBaseURL,
		CacheDir:           mustExpand(defaultCacheDir),
		MemoryCapacity:     defaultMemoryCapacity,
		DiskCapacity:       defaultDiskCapacity,
		RequestTimeout:     defaultRequestTimeout,
		ProbeInterval:      defaultProbeInterval,
		LogFile:            mustExpand(defaultLogFile),
		LogLevel:           defaultLogLevel,
		CacheKeyStripQuery: append([]string(nil), defaultStripQuery...),
	}
	cfg.ProbeAddress = probeAddressFor(cfg.BaseURL)
	return cfg
}

// Load locates and parses the galley config, falling back to defaults when
// the file is missing or a value is blank.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL            string   `toml:"base_url"`
		CacheDir           string   `toml:"cache_dir"`
		MemoryCapacity     int64    `toml:"memory_capacity"`
		DiskCapacity       int64    `toml:"disk_capacity"`
		RequestTimeout     string   `toml:"request_timeout"`
		ProbeAddress       string   `toml:"probe_address"`
		ProbeInterval      string   `toml:"probe_interval"`
		LogFile            string   `toml:"log_file"`
		LogLevel           string   `toml:"log_level"`
		CacheKeyStripQuery []string `toml:"cache_key_strip_query"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.CacheDir); v != "" {
		cfg.CacheDir = mustExpand(v)
	}
	if raw.MemoryCapacity != 0 {
		cfg.MemoryCapacity = raw.MemoryCapacity
	}
	if raw.DiskCapacity != 0 {
		cfg.DiskCapacity = raw.DiskCapacity
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ProbeInterval, err = parseDuration("probe_interval", raw.ProbeInterval, defaultProbeInterval); err != nil {
		return Config{}, err
	}
	cfg.ProbeAddress = strings.TrimSpace(raw.ProbeAddress)
	if cfg.ProbeAddress == "" {
		cfg.ProbeAddress = probeAddressFor(cfg.BaseURL)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.CacheKeyStripQuery != nil {
		cfg.CacheKeyStripQuery = trimAll(raw.CacheKeyStripQuery)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	if c.MemoryCapacity < 0 {
		return fmt.Errorf("memory_capacity must not be negative")
	}
	if c.DiskCapacity < 0 {
		return fmt.Errorf("disk_capacity must not be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level for LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// WithBaseURL overrides the endpoint and re-derives the probe address when
// it was derived from the old endpoint.
func (c Config) WithBaseURL(raw string) Config {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return c
	}
	if c.ProbeAddress == probeAddressFor(c.BaseURL) {
		c.ProbeAddress = probeAddressFor(raw)
	}
	c.BaseURL = raw
	return c
}

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
	}
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func parseDuration(key, raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func probeAddressFor(baseURL string) string {
	raw := strings.TrimSpace(baseURL)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
