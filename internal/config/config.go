// Package config provides configuration types and defaults for phonrule.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/tracing"
)

// Config holds all configuration options for phonrule.
type Config struct {
	Inventory InventoryConfig `mapstructure:"inventory"`
	Store     StoreConfig     `mapstructure:"store"`
	Editor    EditorConfig    `mapstructure:"editor"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
	Log       LogConfig       `mapstructure:"log"`
	Flags     map[string]bool `mapstructure:"flags"`
}

// InventoryConfig says where the phoneme inventory comes from.
type InventoryConfig struct {
	// Path is a YAML inventory file. Empty uses the built-in inventory.
	Path string `mapstructure:"path"`

	// Watch reloads the inventory when the file changes (playground only).
	Watch bool `mapstructure:"watch"`

	// CacheTTL bounds how long symbol lookups stay cached.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// StoreConfig holds rule store configuration.
type StoreConfig struct {
	// Path is the SQLite database holding saved rules.
	// Default: ~/.config/phonrule/rules.db
	Path string `mapstructure:"path"`
}

// EditorConfig holds formula editor options.
type EditorConfig struct {
	// HistoryLimit is the number of undoable units kept.
	HistoryLimit int `mapstructure:"history_limit"`

	// Width wraps the formula view; 0 disables wrapping.
	Width int `mapstructure:"width"`

	// MarkdownStyle is the glamour style used by "show".
	MarkdownStyle string `mapstructure:"markdown_style"`
}

// LogConfig holds logging options.
type LogConfig struct {
	// Path enables file logging when set.
	Path string `mapstructure:"path"`

	// Level is the minimum level written: debug, info, warn or error.
	Level string `mapstructure:"level"`
}

// DefaultConfigDir returns ~/.config/phonrule, or "" when the home
// directory is unknown.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "phonrule")
}

// DefaultStorePath returns the default rule database location.
func DefaultStorePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return "rules.db"
	}
	return filepath.Join(dir, "rules.db")
}

// DefaultTracesFilePath returns the default trace file for the file exporter.
func DefaultTracesFilePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Inventory: InventoryConfig{
			CacheTTL: 10 * time.Minute,
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Editor: EditorConfig{
			HistoryLimit:  100,
			Width:         0,
			MarkdownStyle: "dark",
		},
		Tracing: tracing.DefaultConfig(),
		Log: LogConfig{
			Level: "info",
		},
		Flags: map[string]bool{
			"autosave":        false,
			"env-diagnostics": true,
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := ValidateInventory(c.Inventory); err != nil {
		return err
	}
	if err := ValidateStore(c.Store); err != nil {
		return err
	}
	if err := ValidateEditor(c.Editor); err != nil {
		return err
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	return ValidateLog(c.Log)
}

// ValidateInventory checks inventory settings.
func ValidateInventory(inv InventoryConfig) error {
	if inv.CacheTTL < 0 {
		return fmt.Errorf("inventory.cache_ttl must not be negative, got %v", inv.CacheTTL)
	}
	if inv.Watch && inv.Path == "" {
		return fmt.Errorf("inventory.watch requires inventory.path")
	}
	return nil
}

// ValidateStore checks store settings.
func ValidateStore(store StoreConfig) error {
	if store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	return nil
}

// ValidateEditor checks editor settings.
func ValidateEditor(ed EditorConfig) error {
	if ed.HistoryLimit < 1 {
		return fmt.Errorf("editor.history_limit must be at least 1, got %d", ed.HistoryLimit)
	}
	if ed.Width < 0 {
		return fmt.Errorf("editor.width must not be negative, got %d", ed.Width)
	}
	switch ed.MarkdownStyle {
	case "", "auto", "dark", "light", "notty", "ascii":
	default:
		return fmt.Errorf("editor.markdown_style must be auto, dark, light, notty or ascii, got %q", ed.MarkdownStyle)
	}
	return nil
}

// ValidateTracing checks tracing settings.
func ValidateTracing(tr tracing.Config) error {
	if tr.SampleRate < 0.0 || tr.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tr.SampleRate)
	}

	if tr.Exporter != "" {
		switch tr.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tr.Exporter)
		}
	}

	if tr.Enabled {
		if tr.Exporter == tracing.ExporterFile && tr.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tr.Exporter == tracing.ExporterOTLP && tr.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// ValidateLog checks logging settings.
func ValidateLog(l LogConfig) error {
	if l.Level == "" {
		return nil
	}
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// DefaultConfigTemplate returns the commented config written on first run.
// Its values match Defaults, except for paths derived at runtime.
func DefaultConfigTemplate() string {
	return `# phonrule configuration

# Phoneme inventory
inventory:
  # path: /path/to/inventory.yaml   # built-in inventory when unset
  watch: false                       # reload the inventory file in the playground
  cache_ttl: 10m                     # symbol lookup cache lifetime

# Rule store (SQLite)
# store:
#   path: ~/.config/phonrule/rules.db

# Formula editor
editor:
  history_limit: 100     # undoable edits kept
  width: 0               # wrap the formula view at this width (0 = off)
  markdown_style: dark   # auto, dark, light, notty or ascii for 'phonrule show'

# Tracing of edits (OpenTelemetry)
tracing:
  enabled: false
  exporter: file          # none, file, stdout, otlp
  # file_path: ~/.config/phonrule/traces/traces.jsonl
  otlp_endpoint: localhost:4317
  sample_rate: 1.0

# Logging
log:
  # path: /tmp/phonrule.log
  level: info

# Feature flags
flags:
  autosave: false          # save rules after every edit
  env-diagnostics: true    # report dropped environment string spans
`
}

// WriteDefaultConfig creates a config file with default settings.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// SetDefaults registers Defaults with v so unset keys decode to them.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("inventory.path", d.Inventory.Path)
	v.SetDefault("inventory.watch", d.Inventory.Watch)
	v.SetDefault("inventory.cache_ttl", d.Inventory.CacheTTL)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("editor.history_limit", d.Editor.HistoryLimit)
	v.SetDefault("editor.width", d.Editor.Width)
	v.SetDefault("editor.markdown_style", d.Editor.MarkdownStyle)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", DefaultTracesFilePath())
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("flags", d.Flags)
}

// Load decodes the configuration held by v and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
