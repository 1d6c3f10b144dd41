// Package config loads claude-logview settings from a TOML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kylesnowschwartz/claude-logview/parser"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by Load.
const (
	EnvConfigPath = "CLAUDE_LOGVIEW_CONFIG"
	EnvLogLevel   = "CLAUDE_LOGVIEW_LOG"
	EnvTheme      = "CLAUDE_LOGVIEW_THEME"
	EnvFollow     = "CLAUDE_LOGVIEW_FOLLOW"
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config is the persisted config file schema.
type Config struct {
	Theme               string              `toml:"theme"`
	Follow              bool                `toml:"follow"`
	ShowStats           bool                `toml:"show_stats"`
	CollapseThreshold   int                 `toml:"collapse_threshold"`
	SummaryLines        int                 `toml:"summary_lines"`
	LineWrap            bool                `toml:"line_wrap"`
	LogBufferCapacity   int                 `toml:"log_buffer_capacity"`
	LogFile             string              `toml:"log_file"`
	LogLevel            string              `toml:"log_level"`
	RenderCacheCapacity int                 `toml:"render_cache_capacity"`
	MaxContextTokens    int                 `toml:"max_context_tokens"`
	Keybindings         map[string][]string `toml:"keybindings"`
	Pricing             PricingConfig       `toml:"pricing"`

	// Source is the file the config was read from, empty when none existed.
	Source string `toml:"-"`
}

// PricingConfig overlays the built-in USD rates per million tokens. Model
// keys match an exact model id or a family name ("opus", "sonnet", "haiku").
//
//	[pricing.models.opus]
//	input = 15.0
//	output = 75.0
//	cached_input = 1.5
type PricingConfig struct {
	Models  map[string]parser.ModelPricing `toml:"models,omitempty"`
	Default *parser.ModelPricing           `toml:"default,omitempty"`
}

// PricingTable returns the built-in rates with the configured overrides.
func (c Config) PricingTable() parser.Pricing {
	return parser.DefaultPricing().With(c.Pricing.Models, c.Pricing.Default)
}

func validRates(p parser.ModelPricing) bool {
	return p.Input >= 0 && p.Output >= 0 && p.CachedInput >= 0
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Theme:               ThemeAuto,
		Follow:              true,
		CollapseThreshold:   10,
		SummaryLines:        3,
		LineWrap:            true,
		LogBufferCapacity:   1000,
		LogLevel:            "info",
		RenderCacheCapacity: 1000,
		MaxContextTokens:    200_000,
	}
}

// DefaultPath returns $CLAUDE_LOGVIEW_CONFIG, else
// ~/.config/claude-logview/config.toml.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "claude-logview", "config.toml")
}

// Load reads path (DefaultPath when empty) over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(content, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
			cfg.Source = path
		}
	}

	applyEnv(&cfg)
	cfg.Validate()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFollow)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Follow = b
		}
	}
}

// Validate replaces out-of-range values with their defaults.
func (c *Config) Validate() {
	d := Default()
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	switch c.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		c.Theme = d.Theme
	}
	if c.CollapseThreshold < 1 {
		c.CollapseThreshold = d.CollapseThreshold
	}
	if c.SummaryLines < 1 {
		c.SummaryLines = d.SummaryLines
	}
	if c.SummaryLines > c.CollapseThreshold {
		c.SummaryLines = c.CollapseThreshold
	}
	if c.LogBufferCapacity < 1 {
		c.LogBufferCapacity = d.LogBufferCapacity
	}
	if c.RenderCacheCapacity < 1 {
		c.RenderCacheCapacity = d.RenderCacheCapacity
	}
	if c.MaxContextTokens < 1 {
		c.MaxContextTokens = d.MaxContextTokens
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	for name, p := range c.Pricing.Models {
		if !validRates(p) {
			delete(c.Pricing.Models, name)
		}
	}
	if c.Pricing.Default != nil && !validRates(*c.Pricing.Default) {
		c.Pricing.Default = nil
	}
}

// Save writes cfg as TOML to path, creating parent directories.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("config path is empty and $HOME is not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
