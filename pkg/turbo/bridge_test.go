package turbo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiwind/pkg/token"
	"github.com/gnana997/uiwind/pkg/util"
)

// stubEngine answers every call with canned values.
type stubEngine struct {
	err    error
	closed atomic.Bool
}

func (s *stubEngine) Parse(class string) (token.UtilityToken, error) {
	if s.err != nil {
		return token.UtilityToken{}, s.err
	}
	return token.UtilityToken{Original: class, Utility: "native"}, nil
}

func (s *stubEngine) ParseAll(classes []string) ([]token.UtilityToken, error) {
	return nil, s.err
}

func (s *stubEngine) Extract(path string, content []byte) ([]string, error) {
	return []string{"native"}, s.err
}

func (s *stubEngine) ExtractParallel(ctx context.Context, paths []string) (map[string][]string, error) {
	return map[string][]string{"native": nil}, s.err
}

func (s *stubEngine) Process(classes []string) (string, error) {
	return "native", s.err
}

func (s *stubEngine) Close() error {
	s.closed.Store(true)
	return nil
}

func stubLoader(eng Engine, calls *atomic.Int32) Loader {
	return func() (Engine, error) {
		calls.Add(1)
		return eng, nil
	}
}

func enabled() Config {
	return Config{Enabled: true, PreferNative: true, FallbackOnError: true}
}

func TestBridge_DisabledPassesThroughToFallback(t *testing.T) {
	var loads atomic.Int32
	b := NewBridge(DefaultConfig(), stubLoader(&stubEngine{}, &loads), util.DiscardLogger())

	calls := 0
	want := token.Parse("flex")
	got, err := b.Parse("flex", func(s string) (token.UtilityToken, error) {
		calls++
		assert.Equal(t, "flex", s)
		return want, nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)
	assert.Zero(t, loads.Load(), "disabled bridge never loads")
	assert.Equal(t, StateDisabled, b.State())
	assert.False(t, b.Init())
}

func TestBridge_FallbackErrorPropagatesUnchanged(t *testing.T) {
	b := NewBridge(DefaultConfig(), nil, util.DiscardLogger())
	boom := errors.New("boom")

	_, err := b.Parse("flex", func(string) (token.UtilityToken, error) {
		return token.UtilityToken{}, boom
	})
	assert.Same(t, boom, err)

	_, err = b.Process([]string{"flex"}, func([]string) (string, error) { return "", boom })
	assert.Same(t, boom, err)
}

func TestBridge_UnavailableUsesFallback(t *testing.T) {
	b := NewBridge(enabled(), func() (Engine, error) { return nil, errors.New("no grammar") }, util.DiscardLogger())

	assert.Equal(t, StateUninitialized, b.State())
	out, err := b.Extract("a.tsx", nil, func(string, []byte) ([]string, error) { return []string{"fallback"}, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"fallback"}, out)
	assert.Equal(t, StateUnavailable, b.State())
	assert.Error(t, b.InitError())
	assert.False(t, b.Init())
}

func TestBridge_LoaderPanicMakesUnavailable(t *testing.T) {
	b := NewBridge(enabled(), func() (Engine, error) { panic("cgo") }, util.DiscardLogger())
	assert.False(t, b.Init())
	assert.ErrorIs(t, b.InitError(), ErrNotReady)
}

func TestBridge_InitIsMemoized(t *testing.T) {
	var loads atomic.Int32
	b := NewBridge(enabled(), stubLoader(&stubEngine{}, &loads), util.DiscardLogger())

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, b.Init())
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, loads.Load())
	assert.Equal(t, StateReady, b.State())
	assert.True(t, b.Available())
}

func TestBridge_ConfigureEnablesLater(t *testing.T) {
	var loads atomic.Int32
	b := NewBridge(DefaultConfig(), stubLoader(&stubEngine{}, &loads), util.DiscardLogger())
	assert.False(t, b.Init())

	b.Configure(enabled())
	assert.Equal(t, StateUninitialized, b.State())
	assert.True(t, b.Init())
	assert.EqualValues(t, 1, loads.Load())
}

func TestBridge_RoutesToNative(t *testing.T) {
	var loads atomic.Int32
	b := NewBridge(enabled(), stubLoader(&stubEngine{}, &loads), util.DiscardLogger())

	fallbackCalled := false
	css, err := b.Process([]string{"flex"}, func([]string) (string, error) {
		fallbackCalled = true
		return "fallback", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "native", css)
	assert.False(t, fallbackCalled)

	cfg := enabled()
	cfg.PreferNative = false
	b.Configure(cfg)
	css, err = b.Process(nil, func([]string) (string, error) { return "fallback", nil })
	require.NoError(t, err)
	assert.Equal(t, "fallback", css)
}

func TestBridge_NativeErrorHandling(t *testing.T) {
	nativeErr := errors.New("native failed")
	var loads atomic.Int32
	b := NewBridge(enabled(), stubLoader(&stubEngine{err: nativeErr}, &loads), util.DiscardLogger())

	out, err := b.ExtractParallel(context.Background(), []string{"a"}, func(context.Context, []string) (map[string][]string, error) {
		return map[string][]string{"a": {"flex"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"a": {"flex"}}, out)

	cfg := enabled()
	cfg.FallbackOnError = false
	b.Configure(cfg)
	_, err = b.ParseAll([]string{"flex"}, func([]string) ([]token.UtilityToken, error) { return nil, nil })
	assert.ErrorIs(t, err, nativeErr)
}

func TestBridge_SyncVariants(t *testing.T) {
	var loads atomic.Int32
	eng := &stubEngine{}
	b := NewBridge(enabled(), stubLoader(eng, &loads), util.DiscardLogger())

	_, ok := b.ParseSync("flex")
	assert.False(t, ok, "not initialized yet")
	_, ok = b.ExtractSync("a.ts", nil)
	assert.False(t, ok)
	assert.Zero(t, loads.Load(), "sync calls never initialize")

	require.True(t, b.Init())
	tok, ok := b.ParseSync("flex")
	assert.True(t, ok)
	assert.Equal(t, "native", tok.Utility)
	found, ok := b.ExtractSync("a.ts", nil)
	assert.True(t, ok)
	assert.Equal(t, []string{"native"}, found)

	require.NoError(t, b.Close())
	assert.True(t, eng.closed.Load())
	_, ok = b.ParseSync("flex")
	assert.False(t, ok)
}

func TestDefaultBridge(t *testing.T) {
	var loads atomic.Int32
	custom := NewBridge(enabled(), stubLoader(&stubEngine{}, &loads), util.DiscardLogger())
	prev := SetDefault(custom)
	t.Cleanup(func() { SetDefault(prev) })

	assert.Same(t, custom, Default())
	assert.True(t, Init())
	assert.True(t, IsAvailable())
	assert.NotNil(t, GetEngine())

	tok, err := Parse("p-4", token.ParseE)
	require.NoError(t, err)
	assert.Equal(t, "native", tok.Utility)

	Configure(DefaultConfig())
	assert.False(t, IsAvailable())
	assert.Nil(t, GetEngine())
	tok, err = Parse("p-4", token.ParseE)
	require.NoError(t, err)
	assert.Equal(t, "p-4", tok.Utility)
}
