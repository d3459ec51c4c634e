// Package config loads the project configuration file and the CSS-first
// theme/utility/variant definitions that extend the built-in rule set.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/uiwind/pkg/delivery"
	"github.com/gnana997/uiwind/pkg/preset"
	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/scanner"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/treeshake"
	"github.com/gnana997/uiwind/pkg/turbo"
	"github.com/gnana997/uiwind/pkg/util"
)

// DefaultFile is the project configuration file name looked up in the
// working directory.
const DefaultFile = ".uiwind.yaml"

// ErrInvalidConfig is wrapped by every load and validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the contents of .uiwind.yaml.
type Config struct {
	Content []string `yaml:"content" validate:"dive,glob"`
	Exclude []string `yaml:"exclude" validate:"dive,glob"`

	// Output is the generated stylesheet path. Empty writes to stdout.
	Output string `yaml:"output"`

	// CSSConfig is a CSS-first configuration file, relative to the config file.
	CSSConfig string `yaml:"css_config"`

	Preflight bool `yaml:"preflight"`

	DarkMode  DarkMode          `yaml:"dark_mode"`
	Theme     theme.Theme       `yaml:"theme"`
	TreeShake treeshake.Options `yaml:"tree_shake"`
	Delivery  Delivery          `yaml:"delivery"`
	Turbo     turbo.Config      `yaml:"turbo"`
	Log       Log               `yaml:"log"`

	// Dir is the directory the file was loaded from; relative paths resolve
	// against it.
	Dir string `yaml:"-"`
}

// DarkMode selects how the dark: variant and theme CSS are scoped.
type DarkMode struct {
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=class media selector auto"`
	Selector string `yaml:"selector"`
}

// Delivery mirrors delivery.BatchOptions and delivery.SinkOptions.
type Delivery struct {
	Batch      delivery.BatchOptions `yaml:",inline"`
	Sink       delivery.SinkOptions  `yaml:",inline"`
	MaxDelayMs int                   `yaml:"max_delay_ms" validate:"gte=0"`
	Virtualize bool                  `yaml:"virtualize"`
}

// Log configures the CLI logger.
type Log struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	scan := scanner.DefaultConfig()
	return Config{
		Content:   scan.Include,
		Exclude:   scan.Exclude,
		Preflight: true,
		DarkMode:  DarkMode{Strategy: string(theme.StrategyClass)},
		TreeShake: treeshake.DefaultOptions(),
		Delivery: Delivery{
			Batch:      delivery.DefaultBatchOptions(),
			Sink:       delivery.DefaultSinkOptions(),
			MaxDelayMs: 16,
		},
		Turbo: turbo.DefaultConfig(),
		Log:   Log{Level: string(util.LevelInfo), Format: string(util.FormatText)},
		Dir:   ".",
	}
}

// Load reads a configuration file. A missing file yields Default and no error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		cfg.Dir = filepath.Dir(path)
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse overlays YAML data on Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct tags and the content globs.
func (c Config) Validate() error {
	if err := util.Validator().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Scanner().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Resolve returns p relative to the config directory unless it is absolute.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// Scanner returns the content globs.
func (c Config) Scanner() scanner.Config {
	return scanner.Config{Include: c.Content, Exclude: c.Exclude}
}

// DarkStrategy returns the parsed dark-mode strategy, defaulting to class.
func (c Config) DarkStrategy() theme.Strategy {
	s, err := theme.ParseStrategy(c.DarkMode.Strategy)
	if err != nil {
		return theme.StrategyClass
	}
	return s
}

// Preset returns the options for the built-in plugins.
func (c Config) Preset() preset.Options {
	return preset.Options{DarkStrategy: c.DarkStrategy(), DarkSelector: c.DarkMode.Selector}
}

// DeliveryOptions returns optimizer options carrying logger.
func (c Config) DeliveryOptions(logger *slog.Logger) delivery.Options {
	opts := delivery.DefaultOptions()
	opts.Batch = c.Delivery.Batch
	opts.Batch.MaxDelay = time.Duration(c.Delivery.MaxDelayMs) * time.Millisecond
	opts.Batch.Logger = logger
	opts.Sink = c.Delivery.Sink
	opts.Virtualize = c.Delivery.Virtualize
	opts.Scheduler.Logger = logger
	opts.Logger = logger
	return opts
}

// Logger returns the logger configuration; output goes to stderr.
func (c Config) Logger() util.LoggerConfig {
	lc := util.DefaultLoggerConfig()
	if lvl, err := util.ParseLogLevel(c.Log.Level); err == nil {
		lc.Level = lvl
	}
	if f, err := util.ParseLogFormat(c.Log.Format); err == nil {
		lc.Format = f
	}
	return lc
}

// BuildRegistry extends store with the YAML theme and installs the CSS-first
// plugin (when css is non-nil) ahead of the built-in plugins, so project
// utilities and variants shadow built-ins of the same name.
func (c Config) BuildRegistry(store *theme.Store, css *CSSConfig, logger *slog.Logger) (*rules.Registry, error) {
	if store == nil {
		store = theme.NewDefaultStore()
	}
	store.Extend(c.Theme)

	b := rules.NewBuilder(store, nil, logger)
	if css != nil {
		b.Use(css.Plugin())
	}
	b.Use(preset.Plugins(c.Preset())...)
	return b.Build()
}
