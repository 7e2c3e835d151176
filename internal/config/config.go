// Package config loads vista settings from a YAML file and VISTA_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/mmcdole/vista/internal/domain"
	"github.com/mmcdole/vista/internal/scroll"
	"github.com/mmcdole/vista/internal/search"
	"github.com/mmcdole/vista/internal/viewport"
)

const envPrefix = "VISTA"

// Config holds all application configuration
type Config struct {
	Viewport ViewportConfig `mapstructure:"viewport"`
	Source   SourceConfig   `mapstructure:"source"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`
}

// ViewportConfig mirrors the loadable viewport options.
type ViewportConfig struct {
	Scrollable           bool    `mapstructure:"scrollable"`
	VirtualScrolling     bool    `mapstructure:"virtual_scrolling"`
	LazyLoading          bool    `mapstructure:"lazy_loading"`
	ShowScrollbar        bool    `mapstructure:"show_scrollbar"`
	ScrollbarPosition    string  `mapstructure:"scrollbar_position"` // left, right, hidden
	ScrollMode           string  `mapstructure:"scroll_mode"`        // instant, smooth, auto
	SelectionMode        string  `mapstructure:"selection_mode"`     // none, single, multiple
	ItemHeight           int     `mapstructure:"item_height"`
	OverscanCount        int     `mapstructure:"overscan_count"`
	CacheSize            int     `mapstructure:"cache_size"`
	ScrollSensitivity    float64 `mapstructure:"scroll_sensitivity"`
	MomentumDecay        float64 `mapstructure:"momentum_decay"`
	SmoothScrollDuration int     `mapstructure:"smooth_scroll_duration_ms"`
	SearchHighlightColor string  `mapstructure:"search_highlight_color"`
	SelectionColor       string  `mapstructure:"selection_color"`
	HighlightColor       string  `mapstructure:"highlight_color"`
	ChunkSize            int     `mapstructure:"chunk_size"`
	MaxRetries           int     `mapstructure:"max_retries"`
	RetryInitialMs       int     `mapstructure:"retry_initial_ms"`
	RetryMultiplier      float64 `mapstructure:"retry_multiplier"`
	LoadTimeoutMs        int     `mapstructure:"load_timeout_ms"`
}

// SourceConfig locates the dataset.
type SourceConfig struct {
	DataDir   string `mapstructure:"data_dir"`   // empty keeps the dataset in memory
	SeedCount int    `mapstructure:"seed_count"` // synthetic items when the dataset is empty
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// UIConfig holds host app configuration
type UIConfig struct {
	Matcher    string `mapstructure:"matcher"` // substring, fuzzy, fold, token
	Ease       string `mapstructure:"ease"`    // linear, ease-in, ease-out, ease-in-out
	ShowStatus bool   `mapstructure:"show_status"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	o := viewport.DefaultOptions()
	return &Config{
		Viewport: ViewportConfig{
			Scrollable:           o.Scrollable,
			VirtualScrolling:     o.VirtualScrolling,
			LazyLoading:          true,
			ShowScrollbar:        o.ShowScrollbar,
			ScrollbarPosition:    string(o.ScrollbarPosition),
			ScrollMode:           string(domain.ScrollAuto),
			SelectionMode:        string(domain.SelectionMultiple),
			ItemHeight:           o.ItemHeight,
			OverscanCount:        o.OverscanCount,
			CacheSize:            o.CacheSize,
			ScrollSensitivity:    o.ScrollSensitivity,
			MomentumDecay:        o.MomentumDecay,
			SmoothScrollDuration: o.SmoothScrollDurationMs,
			SearchHighlightColor: o.SearchHighlightColor,
			SelectionColor:       o.SelectionColor,
			HighlightColor:       o.HighlightColor,
			ChunkSize:            o.ChunkSize,
			MaxRetries:           o.MaxRetries,
			RetryInitialMs:       o.RetryInitialMs,
			RetryMultiplier:      o.RetryMultiplier,
			LoadTimeoutMs:        o.LoadTimeoutMs,
		},
		Source: SourceConfig{
			DataDir:   defaultDataPath(),
			SeedCount: 100_000,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxAgeDays: 30,
		},
		UI: UIConfig{
			Matcher:    "substring",
			Ease:       "ease-out",
			ShowStatus: true,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vista", "vista.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vista", "vista.log")
	}
}

// defaultDataPath returns the default dataset directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "vista", "data")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "vista", "data")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vista")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "vista")
	}
}

// settings flattens cfg into viper keys.
func (c *Config) settings() map[string]any {
	v := c.Viewport
	return map[string]any{
		"viewport.scrollable":                v.Scrollable,
		"viewport.virtual_scrolling":         v.VirtualScrolling,
		"viewport.lazy_loading":              v.LazyLoading,
		"viewport.show_scrollbar":            v.ShowScrollbar,
		"viewport.scrollbar_position":        v.ScrollbarPosition,
		"viewport.scroll_mode":               v.ScrollMode,
		"viewport.selection_mode":            v.SelectionMode,
		"viewport.item_height":               v.ItemHeight,
		"viewport.overscan_count":            v.OverscanCount,
		"viewport.cache_size":                v.CacheSize,
		"viewport.scroll_sensitivity":        v.ScrollSensitivity,
		"viewport.momentum_decay":            v.MomentumDecay,
		"viewport.smooth_scroll_duration_ms": v.SmoothScrollDuration,
		"viewport.search_highlight_color":    v.SearchHighlightColor,
		"viewport.selection_color":           v.SelectionColor,
		"viewport.highlight_color":           v.HighlightColor,
		"viewport.chunk_size":                v.ChunkSize,
		"viewport.max_retries":               v.MaxRetries,
		"viewport.retry_initial_ms":          v.RetryInitialMs,
		"viewport.retry_multiplier":          v.RetryMultiplier,
		"viewport.load_timeout_ms":           v.LoadTimeoutMs,

		"source.data_dir":   c.Source.DataDir,
		"source.seed_count": c.Source.SeedCount,

		"logging.file":         c.Logging.File,
		"logging.level":        c.Logging.Level,
		"logging.max_size_mb":  c.Logging.MaxSizeMB,
		"logging.max_age_days": c.Logging.MaxAgeDays,

		"ui.matcher":     c.UI.Matcher,
		"ui.ease":        c.UI.Ease,
		"ui.show_status": c.UI.ShowStatus,
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range DefaultConfig().settings() {
		v.SetDefault(k, val)
	}
	return v
}

// LoadConfig loads configuration from config.yaml in the user config
// directory or the working directory, then applies environment overrides.
func LoadConfig() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}
	return decode(v)
}

// LoadFile loads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to config.yaml in the user config directory.
func SaveConfig(cfg *Config) error {
	return SaveFile(cfg, filepath.Join(defaultConfigPath(), "config.yaml"))
}

// SaveFile writes cfg to path as YAML.
func SaveFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	for k, val := range cfg.settings() {
		v.Set(k, val)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ViewportOptions converts the viewport and ui sections into validated
// viewport options.
func (c *Config) ViewportOptions() (viewport.Options, error) {
	v := c.Viewport
	o := viewport.DefaultOptions()
	o.Scrollable = v.Scrollable
	o.VirtualScrolling = v.VirtualScrolling
	o.LazyLoading = v.LazyLoading
	o.ShowScrollbar = v.ShowScrollbar
	o.ScrollbarPosition = domain.ScrollbarPosition(strings.ToLower(v.ScrollbarPosition))
	o.ScrollMode = domain.ScrollMode(strings.ToLower(v.ScrollMode))
	o.SelectionMode = domain.SelectionMode(strings.ToLower(v.SelectionMode))
	o.ItemHeight = v.ItemHeight
	o.OverscanCount = v.OverscanCount
	o.CacheSize = v.CacheSize
	o.ScrollSensitivity = v.ScrollSensitivity
	o.MomentumDecay = v.MomentumDecay
	o.SmoothScrollDurationMs = v.SmoothScrollDuration
	o.SearchHighlightColor = v.SearchHighlightColor
	o.SelectionColor = v.SelectionColor
	o.HighlightColor = v.HighlightColor
	o.ChunkSize = v.ChunkSize
	o.MaxRetries = v.MaxRetries
	o.RetryInitialMs = v.RetryInitialMs
	o.RetryMultiplier = v.RetryMultiplier
	o.LoadTimeoutMs = v.LoadTimeoutMs

	o.Matcher = search.MatcherByName(c.UI.Matcher)
	o.Ease = scroll.EaseByName(c.UI.Ease)

	if err := o.Validate(); err != nil {
		return viewport.Options{}, err
	}
	return o, nil
}
