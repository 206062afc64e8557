// Package config loads portfolio settings from defaults, an optional YAML
// file and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment overrides: PORTFOLIO_SERVER__PORT -> server.port.
const EnvPrefix = "PORTFOLIO_"

// EpochLayout is the layout of Counter.Epoch, interpreted in local time.
const EpochLayout = "2006-01-02T15:04:05"

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Counter CounterConfig `koanf:"counter"`
	Tracker TrackerConfig `koanf:"tracker"`
	Store   StoreConfig   `koanf:"store"`
	Mail    MailConfig    `koanf:"mail"`
	Admin   AdminConfig   `koanf:"admin"`
}

type ServerConfig struct {
	Host          string   `koanf:"host"`
	Port          int      `koanf:"port"`
	Templates     string   `koanf:"templates"`
	AllowedOrigin []string `koanf:"allowed_origins"`
}

type CounterConfig struct {
	Epoch  string        `koanf:"epoch"`
	Period time.Duration `koanf:"period"`
}

type TrackerConfig struct {
	Sections     []string      `koanf:"sections"`
	Default      string        `koanf:"default"`
	Threshold    float64       `koanf:"threshold"`
	StartupDelay time.Duration `koanf:"startup_delay"`
}

type StoreConfig struct {
	Path            string        `koanf:"path"`
	Retention       time.Duration `koanf:"retention"`
	CleanupSchedule string        `koanf:"cleanup_schedule"`
}

type MailConfig struct {
	Host string `koanf:"host"`
	Port string `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	To   string `koanf:"to"`
}

type AdminConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// DefaultSections is the page order of the portfolio.
var DefaultSections = []string{"home", "about", "skills", "projects", "experience", "contact"}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			Templates: "templates/*",
		},
		Counter: CounterConfig{
			Epoch:  "2025-01-01T00:00:00",
			Period: time.Second,
		},
		Tracker: TrackerConfig{
			Sections:     append([]string(nil), DefaultSections...),
			Default:      "home",
			Threshold:    0.1,
			StartupDelay: 1500 * time.Millisecond,
		},
		Store: StoreConfig{
			Path:            "portfolio.db",
			Retention:       365 * 24 * time.Hour,
			CleanupSchedule: "@daily",
		},
		Mail: MailConfig{
			Host: "smtp.gmail.com",
			Port: "587",
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
		},
	}
}

// Load reads the YAML file at path if it exists, then overlays PORTFOLIO_*
// variables and the plain PORT/SMTP_*/ADMIN_* variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()
	// A configured list replaces the defaults rather than merging into them.
	cfg.Tracker.Sections = nil

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if len(cfg.Tracker.Sections) == 0 {
		cfg.Tracker.Sections = append([]string(nil), DefaultSections...)
	}

	if err := cfg.applyLegacyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLegacyEnv honours the variable names the site has always used.
func (c *Config) applyLegacyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}

	legacy := map[string]*string{
		"SMTP_HOST":      &c.Mail.Host,
		"SMTP_PORT":      &c.Mail.Port,
		"SMTP_USER":      &c.Mail.User,
		"SMTP_PASS":      &c.Mail.Pass,
		"TO_EMAIL":       &c.Mail.To,
		"ADMIN_USERNAME": &c.Admin.Username,
		"ADMIN_PASSWORD": &c.Admin.Password,
	}
	for name, dst := range legacy {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := c.Epoch(); err != nil {
		return err
	}
	if c.Counter.Period <= 0 {
		return fmt.Errorf("counter.period must be positive, got %s", c.Counter.Period)
	}

	if len(c.Tracker.Sections) == 0 {
		return fmt.Errorf("tracker.sections must not be empty")
	}
	seen := make(map[string]bool, len(c.Tracker.Sections))
	for _, s := range c.Tracker.Sections {
		if s == "" {
			return fmt.Errorf("tracker.sections contains an empty name")
		}
		if seen[s] {
			return fmt.Errorf("tracker.sections lists %q twice", s)
		}
		seen[s] = true
	}
	if !c.HasSection(c.Tracker.Default) {
		return fmt.Errorf("tracker.default %q is not one of tracker.sections", c.Tracker.Default)
	}
	if c.Tracker.Threshold <= 0 || c.Tracker.Threshold > 1 {
		return fmt.Errorf("tracker.threshold must be in (0, 1], got %v", c.Tracker.Threshold)
	}
	if c.Tracker.StartupDelay < 0 {
		return fmt.Errorf("tracker.startup_delay must not be negative")
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Store.Retention <= 0 {
		return fmt.Errorf("store.retention must be positive")
	}
	return nil
}

// Epoch parses Counter.Epoch in local time.
func (c *Config) Epoch() (time.Time, error) {
	t, err := time.ParseInLocation(EpochLayout, c.Counter.Epoch, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid counter.epoch %q: %w", c.Counter.Epoch, err)
	}
	return t, nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// HasSection reports whether name is a tracked section.
func (c *Config) HasSection(name string) bool {
	for _, s := range c.Tracker.Sections {
		if s == name {
			return true
		}
	}
	return false
}
