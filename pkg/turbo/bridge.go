// Package turbo lets parse, extract and compile calls delegate to an
// accelerated engine, falling back to a caller-supplied implementation
// whenever that engine is disabled or unavailable.
package turbo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gnana997/uiwind/pkg/token"
)

var (
	// ErrNotReady is returned by native calls made before Init succeeded.
	ErrNotReady = errors.New("native engine not ready")

	// ErrUnsupported is returned by engines that cannot serve an operation.
	ErrUnsupported = errors.New("operation not supported by native engine")
)

// Engine is the accelerated implementation. Every method has a
// same-shaped fallback in the pure-Go packages.
type Engine interface {
	Parse(class string) (token.UtilityToken, error)
	ParseAll(classes []string) ([]token.UtilityToken, error)
	Extract(path string, content []byte) ([]string, error)
	ExtractParallel(ctx context.Context, paths []string) (map[string][]string, error)
	Process(classes []string) (string, error)
	Close() error
}

// Loader constructs the native engine. It runs at most once per Bridge.
type Loader func() (Engine, error)

// Config selects whether the native engine is used.
type Config struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	// PreferNative routes calls to the native engine once it is ready.
	PreferNative bool `yaml:"prefer_native" json:"prefer_native"`

	// FallbackOnError retries a failed native call with the fallback.
	FallbackOnError bool `yaml:"fallback_on_error" json:"fallback_on_error"`
}

// DefaultConfig is disabled, preferring native and falling back on error
// once enabled.
func DefaultConfig() Config {
	return Config{PreferNative: true, FallbackOnError: true}
}

// State is the lifecycle of the native engine handle.
type State int

const (
	StateDisabled State = iota
	StateUninitialized
	StateReady
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "disabled"
	}
}

// Bridge owns one lazily loaded native engine.
type Bridge struct {
	loader Loader
	logger *slog.Logger

	mu  sync.RWMutex
	cfg Config

	once    sync.Once
	engine  Engine
	initErr error
	inited  bool
}

// NewBridge creates a bridge. A nil loader makes the native engine
// permanently unavailable.
func NewBridge(cfg Config, loader Loader, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{cfg: cfg, loader: loader, logger: logger}
}

// Configure replaces the configuration. Enabling a disabled bridge moves
// it to uninitialized; an attempted initialization is never repeated.
func (b *Bridge) Configure(cfg Config) {
	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
}

// Config returns the current configuration.
func (b *Bridge) Config() Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg
}

// Init loads the native engine on first call and reports whether it is
// ready. Later and concurrent calls return the same answer without
// retrying. A disabled bridge returns false without attempting a load.
func (b *Bridge) Init() bool {
	if !b.Config().Enabled {
		return false
	}
	b.once.Do(func() {
		eng, err := b.load()
		b.mu.Lock()
		b.engine, b.initErr, b.inited = eng, err, true
		b.mu.Unlock()
		if err != nil {
			b.logger.Warn("Native engine unavailable", "error", err)
			return
		}
		b.logger.Debug("Native engine ready")
	})
	return b.Available()
}

// Available reports whether the native engine is loaded. It never
// triggers initialization.
func (b *Bridge) Available() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cfg.Enabled && b.engine != nil
}

// Engine returns the native engine, or nil when it is not ready.
func (b *Bridge) Engine() Engine {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.cfg.Enabled {
		return nil
	}
	return b.engine
}

// State reports where the bridge is in its lifecycle.
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	switch {
	case !b.cfg.Enabled:
		return StateDisabled
	case !b.inited:
		return StateUninitialized
	case b.engine != nil:
		return StateReady
	default:
		return StateUnavailable
	}
}

// InitError returns the load failure, if any.
func (b *Bridge) InitError() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initErr
}

// Close releases the native engine. The bridge stays in its current state
// but native calls fall through to fallbacks afterwards.
func (b *Bridge) Close() error {
	b.mu.Lock()
	eng := b.engine
	b.engine = nil
	b.mu.Unlock()
	if eng == nil {
		return nil
	}
	return eng.Close()
}

func (b *Bridge) load() (eng Engine, err error) {
	if b.loader == nil {
		return nil, ErrNotReady
	}
	defer func() {
		if r := recover(); r != nil {
			eng, err = nil, fmt.Errorf("%w: loader panicked: %v", ErrNotReady, r)
		}
	}()
	return b.loader()
}

// active returns the engine to route a call to, or nil to use the fallback.
func (b *Bridge) active() (Engine, Config) {
	cfg := b.Config()
	if !cfg.Enabled || !cfg.PreferNative || !b.Init() {
		return nil, cfg
	}
	return b.Engine(), cfg
}

// call routes one operation. The fallback's result and error are returned
// unchanged.
func call[T any](b *Bridge, op string, native func(Engine) (T, error), fallback func() (T, error)) (T, error) {
	eng, cfg := b.active()
	if eng == nil {
		return fallback()
	}
	v, err := native(eng)
	if err == nil {
		return v, nil
	}
	if !cfg.FallbackOnError {
		return v, err
	}
	b.logger.Warn("Native call failed, using fallback", "op", op, "error", err)
	return fallback()
}

// Parse parses one class.
func (b *Bridge) Parse(class string, fallback func(string) (token.UtilityToken, error)) (token.UtilityToken, error) {
	return call(b, "parse",
		func(e Engine) (token.UtilityToken, error) { return e.Parse(class) },
		func() (token.UtilityToken, error) { return fallback(class) })
}

// ParseAll parses a batch of classes.
func (b *Bridge) ParseAll(classes []string, fallback func([]string) ([]token.UtilityToken, error)) ([]token.UtilityToken, error) {
	return call(b, "parse_all",
		func(e Engine) ([]token.UtilityToken, error) { return e.ParseAll(classes) },
		func() ([]token.UtilityToken, error) { return fallback(classes) })
}

// Extract finds class candidates in one file's content.
func (b *Bridge) Extract(path string, content []byte, fallback func(string, []byte) ([]string, error)) ([]string, error) {
	return call(b, "extract",
		func(e Engine) ([]string, error) { return e.Extract(path, content) },
		func() ([]string, error) { return fallback(path, content) })
}

// ExtractParallel extracts candidates from many files.
func (b *Bridge) ExtractParallel(ctx context.Context, paths []string, fallback func(context.Context, []string) (map[string][]string, error)) (map[string][]string, error) {
	return call(b, "extract_parallel",
		func(e Engine) (map[string][]string, error) { return e.ExtractParallel(ctx, paths) },
		func() (map[string][]string, error) { return fallback(ctx, paths) })
}

// Process compiles classes to CSS.
func (b *Bridge) Process(classes []string, fallback func([]string) (string, error)) (string, error) {
	return call(b, "process",
		func(e Engine) (string, error) { return e.Process(classes) },
		func() (string, error) { return fallback(classes) })
}

// ParseSync parses with the native engine only. It reports false instead
// of initializing or falling back when the engine is not ready.
func (b *Bridge) ParseSync(class string) (token.UtilityToken, bool) {
	eng := b.Engine()
	if eng == nil {
		return token.UtilityToken{}, false
	}
	tok, err := eng.Parse(class)
	if err != nil {
		return token.UtilityToken{}, false
	}
	return tok, true
}

// ExtractSync extracts with the native engine only; see ParseSync.
func (b *Bridge) ExtractSync(path string, content []byte) ([]string, bool) {
	eng := b.Engine()
	if eng == nil {
		return nil, false
	}
	found, err := eng.Extract(path, content)
	if err != nil {
		return nil, false
	}
	return found, true
}
