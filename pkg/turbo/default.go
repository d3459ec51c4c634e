package turbo

import (
	"context"
	"sync"

	"github.com/gnana997/uiwind/pkg/token"
)

var (
	defaultMu     sync.RWMutex
	defaultBridge = NewBridge(DefaultConfig(), NativeLoader(NativeOptions{}), nil)
)

// Default returns the process-wide bridge.
func Default() *Bridge {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultBridge
}

// SetDefault replaces the process-wide bridge and returns the previous one.
func SetDefault(b *Bridge) *Bridge {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultBridge
	defaultBridge = b
	return prev
}

// Configure sets the process-wide bridge configuration.
func Configure(cfg Config) { Default().Configure(cfg) }

// Init initializes the process-wide bridge.
func Init() bool { return Default().Init() }

// IsAvailable reports whether the process-wide native engine is ready.
func IsAvailable() bool { return Default().Available() }

// GetEngine returns the process-wide native engine, or nil.
func GetEngine() Engine { return Default().Engine() }

func Parse(class string, fallback func(string) (token.UtilityToken, error)) (token.UtilityToken, error) {
	return Default().Parse(class, fallback)
}

func ParseAll(classes []string, fallback func([]string) ([]token.UtilityToken, error)) ([]token.UtilityToken, error) {
	return Default().ParseAll(classes, fallback)
}

func Extract(path string, content []byte, fallback func(string, []byte) ([]string, error)) ([]string, error) {
	return Default().Extract(path, content, fallback)
}

func ExtractParallel(ctx context.Context, paths []string, fallback func(context.Context, []string) (map[string][]string, error)) (map[string][]string, error) {
	return Default().ExtractParallel(ctx, paths, fallback)
}

func Process(classes []string, fallback func([]string) (string, error)) (string, error) {
	return Default().Process(classes, fallback)
}

func ParseSync(class string) (token.UtilityToken, bool) { return Default().ParseSync(class) }

func ExtractSync(path string, content []byte) ([]string, bool) {
	return Default().ExtractSync(path, content)
}
