// Package config loads extractor settings from a TOML or YAML file, a .env
// file and INVIDIOUS_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ytget/invidious"
	"github.com/ytget/invidious/client"
	"github.com/ytget/invidious/internal/logger"
)

const appName = "invidious"

// Config holds all application configuration.
type Config struct {
	MaxRetries      string           `toml:"max_retries" yaml:"max_retries"`
	RetryDelay      string           `toml:"retry_delay" yaml:"retry_delay"`
	Instance        string           `toml:"instance" yaml:"instance"`
	Timeout         string           `toml:"timeout" yaml:"timeout"`
	UserAgent       string           `toml:"user_agent" yaml:"user_agent"`
	Proxy           string           `toml:"proxy" yaml:"proxy"`
	PageFallback    bool             `toml:"page_fallback" yaml:"page_fallback"`
	LenientPlaylist bool             `toml:"lenient_playlist" yaml:"lenient_playlist"`
	Log             logger.LogConfig `toml:"log" yaml:"log"`
	Server          Server           `toml:"server" yaml:"server"`
}

// Server holds settings of the serve command.
type Server struct {
	Addr          string   `toml:"addr" yaml:"addr"`
	CORSOrigins   []string `toml:"cors_origins" yaml:"cors_origins"`
	ProbeSchedule string   `toml:"probe_schedule" yaml:"probe_schedule"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MaxRetries:   "5",
		RetryDelay:   invidious.DefaultRetryDelay.String(),
		Timeout:      "30s",
		PageFallback: true,
		Log:          *logger.DefaultLogConfig(),
		Server: Server{
			Addr:          "127.0.0.1:8080",
			ProbeSchedule: "@every 10m",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the path to the default config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none)
// into the process environment. Missing files are ignored and variables
// already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file at path, merges it over the defaults and
// applies environment overrides. An empty path means the default location,
// where a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := Decode(path, data, cfg); err != nil {
				return nil, err
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Decode parses data into cfg, choosing YAML for .yaml/.yml files and TOML
// otherwise.
func Decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from INVIDIOUS_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			*dst = v == "1" || v == "true" || v == "yes" || v == "on"
		}
	}

	str("INVIDIOUS_MAX_RETRIES", &c.MaxRetries)
	str("INVIDIOUS_RETRY_DELAY", &c.RetryDelay)
	str("INVIDIOUS_INSTANCE", &c.Instance)
	str("INVIDIOUS_TIMEOUT", &c.Timeout)
	str("INVIDIOUS_USER_AGENT", &c.UserAgent)
	str("INVIDIOUS_PROXY", &c.Proxy)
	boolean("INVIDIOUS_PAGE_FALLBACK", &c.PageFallback)
	boolean("INVIDIOUS_LENIENT_PLAYLIST", &c.LenientPlaylist)
	str("INVIDIOUS_SERVER_ADDR", &c.Server.Addr)
	str("INVIDIOUS_PROBE_SCHEDULE", &c.Server.ProbeSchedule)
	if v, ok := lookup("INVIDIOUS_CORS_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		c.Server.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, o)
			}
		}
	}

	c.Log.ApplyEnvironment()
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if _, err := invidious.ParseMaxRetries(c.MaxRetries); err != nil {
		return err
	}
	if _, err := c.RetryDelayDuration(); err != nil {
		return err
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.Proxy != "" {
		u, err := url.Parse(c.Proxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid proxy %q", c.Proxy)
		}
	}
	if strings.Contains(strings.Trim(c.Instance, "/"), "/") && !strings.Contains(c.Instance, "://") {
		return fmt.Errorf("invalid instance %q: expected host or host:port", c.Instance)
	}
	if err := c.Log.ValidateConfig(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// RetryDelayDuration parses retry_delay.
func (c *Config) RetryDelayDuration() (time.Duration, error) {
	return parseDuration("retry_delay", c.RetryDelay, invidious.DefaultRetryDelay)
}

// TimeoutDuration parses timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	return parseDuration("timeout", c.Timeout, 0)
}

func parseDuration(key, s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: negative duration", key, s)
	}
	return d, nil
}

// Extractor builds an extractor configured from c.
func (c *Config) Extractor() (*invidious.Extractor, error) {
	maxRetries, err := invidious.ParseMaxRetries(c.MaxRetries)
	if err != nil {
		return nil, err
	}
	delay, err := c.RetryDelayDuration()
	if err != nil {
		return nil, err
	}
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return invidious.New().
		WithMaxRetries(maxRetries).
		WithRetryDelay(delay).
		WithInstance(c.Instance).
		WithTimeout(timeout).
		WithUserAgent(c.UserAgent).
		WithProxy(c.Proxy).
		WithPageFallback(c.PageFallback).
		WithLenientPlaylist(c.LenientPlaylist), nil
}

// HTTPClient builds a client honoring the timeout, user agent and proxy.
func (c *Config) HTTPClient() (*client.Client, error) {
	timeout, err := c.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return client.NewWith(client.Config{
		Timeout:   timeout,
		UserAgent: c.UserAgent,
		ProxyURL:  c.Proxy,
	}), nil
}
