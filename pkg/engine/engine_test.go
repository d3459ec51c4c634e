package engine

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiwind/pkg/preset"
	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/util"
)

func newPresetEngine(t *testing.T, opts preset.Options, extra ...rules.Plugin) *Engine {
	t.Helper()
	reg, err := preset.Build(theme.NewDefaultStore(), opts, nil, util.DiscardLogger(), extra...)
	require.NoError(t, err)
	return New(reg, Options{Logger: util.DiscardLogger()})
}

func css(t *testing.T, e *Engine, class string) string {
	t.Helper()
	r, ok := e.ResolveClass(class)
	if !ok {
		return ""
	}
	return r.CSS
}

func TestResolve_PresetUtilities(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})

	tests := []struct {
		class string
		want  string
	}{
		{"p-4", `.p-4 { padding: 1rem; }`},
		{"p-13", `.p-13 { padding: 3.25rem; }`},
		{"px-2", `.px-2 { padding-left: 0.5rem; padding-right: 0.5rem; }`},
		{"flex", `.flex { display: flex; }`},
		{"bg-coral", `.bg-coral { background-color: #ff6b6b; }`},
		{"text-red-500", `.text-red-500 { color: #ef4444; }`},
		{"text-lg", `.text-lg { font-size: 1.125rem; line-height: 1.75rem; }`},
		{"text-[14px]", `.text-\[14px\] { font-size: 14px; }`},
		{"text-[#fff]", `.text-\[\#fff\] { color: #fff; }`},
		{"w-1/2", `.w-1\/2 { width: 50%; }`},
		{"border-2", `.border-2 { border-width: 2px; }`},
		{"rounded-lg", `.rounded-lg { border-radius: 0.5rem; }`},
		{"[mask-type:alpha]", `.\[mask-type\:alpha\] { mask-type: alpha; }`},
		{"grid-cols-3", `.grid-cols-3 { grid-template-columns: repeat(3, minmax(0, 1fr)); }`},
		{"perspective-near", `.perspective-near { perspective: 300px; }`},
		{"perspective-[800px]", `.perspective-\[800px\] { perspective: 800px; }`},
		{"matrix-3d-[1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1]", `.matrix-3d-\[1\,0\,0\,0\,0\,1\,0\,0\,0\,0\,1\,0\,0\,0\,0\,1\] { transform: matrix3d(1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1); }`},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			assert.Equal(t, tt.want, css(t, e, tt.class))
		})
	}
}

func TestResolve_EmptyArbitraryIsRejected(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})
	for _, family := range []string{
		"perspective", "translate-z", "rotate-x", "rotate-y", "rotate-z",
		"scale-3d", "rotate-3d", "matrix-3d", "transform-origin-z",
		"p", "bg", "text", "w", "rounded", "shadow",
	} {
		class := family + "-[]"
		r, ok := e.ResolveClass(class)
		assert.False(t, ok, class)
		assert.Empty(t, r.CSS, class)
	}
}

func TestResolve_UnsupportedShorthandIsRejected(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})
	assert.Empty(t, css(t, e, "rotate-3d-[1,0,0]"))
	assert.Empty(t, css(t, e, "scale-3d-[1,2]"))
	assert.Contains(t, css(t, e, "rotate-3d-[1,0,0,45deg]"), "transform: rotate3d(1,0,0,45deg);")
}

func TestResolve_Variants(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})

	assert.Equal(t, `.hover\:bg-blue-500:hover { background-color: #3b82f6; }`, css(t, e, "hover:bg-blue-500"))
	assert.Equal(t,
		`@media (min-width: 640px) { .sm\:hover\:bg-blue-500:hover { background-color: #3b82f6; } }`,
		css(t, e, "sm:hover:bg-blue-500"))
	assert.Equal(t,
		`@media not all and (min-width: 768px) { .max-md\:hidden { display: none; } }`,
		css(t, e, "max-md:hidden"))
	assert.Equal(t,
		`.group:hover .group-hover\:text-red-500 { color: #ef4444; }`,
		css(t, e, "group-hover:text-red-500"))
	assert.Equal(t,
		`.peer:checked ~ .peer-checked\:block { display: block; }`,
		css(t, e, "peer-checked:block"))
	assert.Equal(t,
		`.data-\[state\=open\]\:block[data-state=open] { display: block; }`,
		css(t, e, "data-[state=open]:block"))
	assert.Equal(t,
		`.aria-expanded\:flex[aria-expanded="true"] { display: flex; }`,
		css(t, e, "aria-expanded:flex"))
	assert.Equal(t,
		`.\[\&\>\*\]\:p-2>* { padding: 0.5rem; }`,
		css(t, e, "[&>*]:p-2"))
	assert.Equal(t,
		`.before\:block::before { display: block; }`,
		css(t, e, "before:block"))
}

func TestResolve_VariantOrderIsOuterToInner(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})
	assert.Equal(t,
		`@media (min-width: 640px) { @media (prefers-reduced-motion: reduce) { .sm\:motion-reduce\:hidden { display: none; } } }`,
		css(t, e, "sm:motion-reduce:hidden"))
	assert.Equal(t,
		`@media (prefers-reduced-motion: reduce) { @media (min-width: 640px) { .motion-reduce\:sm\:hidden { display: none; } } }`,
		css(t, e, "motion-reduce:sm:hidden"))
}

func TestResolve_DarkVariantStrategies(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})
	assert.Equal(t, `.dark .dark\:bg-gray-900 { background-color: #111827; }`, css(t, e, "dark:bg-gray-900"))

	e = newPresetEngine(t, preset.Options{DarkStrategy: theme.StrategyMedia})
	assert.Equal(t,
		`@media (prefers-color-scheme: dark) { .dark\:bg-gray-900 { background-color: #111827; } }`,
		css(t, e, "dark:bg-gray-900"))

	e = newPresetEngine(t, preset.Options{DarkStrategy: theme.StrategySelector})
	assert.Equal(t,
		`[data-theme="dark"] .dark\:p-1 { padding: 0.25rem; }`,
		css(t, e, "dark:p-1"))

	e = newPresetEngine(t, preset.Options{})
	assert.Equal(t,
		`@media (min-width: 640px) { .dark .sm\:dark\:p-1 { padding: 0.25rem; } }`,
		css(t, e, "sm:dark:p-1"))
}

func TestResolve_UnknownVariantYieldsNothing(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})
	_, ok := e.ResolveClass("wobble:p-4")
	assert.False(t, ok)
	_, ok = e.ResolveClass("group-wobble:p-4")
	assert.False(t, ok)
}

func TestResolve_Modifiers(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})

	assert.Equal(t, `.-m-4 { margin: calc(1rem * -1); }`, css(t, e, "-m-4"))
	assert.Equal(t,
		`.-translate-z-\[50px\] { --tw-translate-z: calc(50px * -1); translate: var(--tw-translate-x, 0) var(--tw-translate-y, 0) var(--tw-translate-z, 0); }`,
		css(t, e, "-translate-z-[50px]"))
	assert.Equal(t,
		`.-rotate-x-45 { --tw-rotate-x: rotateX(calc(45deg * -1)); transform: var(--tw-rotate-x,) var(--tw-rotate-y,) var(--tw-rotate-z,) var(--tw-skew-x,) var(--tw-skew-y,); }`,
		css(t, e, "-rotate-x-45"))
	assert.Empty(t, css(t, e, "-flex"), "nothing to negate")

	assert.Equal(t, `.\!p-2 { padding: 0.5rem !important; }`, css(t, e, "!p-2"))
	assert.Equal(t, `.p-2\! { padding: 0.5rem !important; }`, css(t, e, "p-2!"))

	assert.Equal(t, `.bg-red-500\/50 { background-color: rgb(239 68 68 / 0.5); }`, css(t, e, "bg-red-500/50"))
	assert.Equal(t,
		`.bg-current\/30 { background-color: color-mix(in srgb, currentColor 30%, transparent); }`,
		css(t, e, "bg-current/30"))
	assert.Empty(t, css(t, e, "p-4/50"), "opacity on a non-colour utility")
}

func TestResolve_CanonicalCacheKeepsSelectors(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})

	a, ok := e.ResolveClass("!p-2")
	require.True(t, ok)
	b, ok := e.ResolveClass("p-2!")
	require.True(t, ok)

	assert.Equal(t, a.Canonical, b.Canonical)
	assert.NotEqual(t, a.CSS, b.CSS)
	assert.Equal(t, int64(1), e.Stats().Hits)
}

func TestGenerate_DedupAndOrder(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})

	out := e.Generate([]string{"m-2", "p-4 m-2", "p-4", "nope"})
	assert.Equal(t, ".m-2 { margin: 0.5rem; }\n.p-4 { padding: 1rem; }", out)
}

func TestGenerate_LayersAndPreflight(t *testing.T) {
	components := rules.NewPlugin("components", "1.0.0", func(b *rules.Builder) {
		b.AddComponent("btn", rules.Props("padding", "0.5rem 1rem"))
	})
	reg, err := preset.Build(theme.NewDefaultStore(), preset.Options{}, nil, util.DiscardLogger(), components)
	require.NoError(t, err)

	e := New(reg, Options{Preflight: true, Logger: util.DiscardLogger()})
	out := e.Generate([]string{"p-4", "btn"})
	lines := strings.Split(out, "\n")

	require.Greater(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "*, ::before, ::after {"))
	assert.Equal(t, ".btn { padding: 0.5rem 1rem; }", lines[len(lines)-2])
	assert.Equal(t, ".p-4 { padding: 1rem; }", lines[len(lines)-1])
}

func TestResolve_HandlerFaultFallsThrough(t *testing.T) {
	plugin := rules.NewPlugin("faulty", "1.0.0", func(b *rules.Builder) {
		b.AddRule(rules.Rule{Name: "panics", Pattern: regexp.MustCompile(`^boom-(\d+)$`), Handler: func(m rules.Match) rules.Result {
			panic("handler exploded")
		}})
		b.AddRule(rules.Rule{Name: "errors", Pattern: regexp.MustCompile(`^boom-(\d+)$`), Handler: func(m rules.Match) rules.Result {
			return rules.Failed(assert.AnError)
		}})
		b.AddRule(rules.Rule{Name: "works", Pattern: regexp.MustCompile(`^boom-(\d+)$`), Handler: func(m rules.Match) rules.Result {
			return rules.Emit(rules.Props("z-index", m.Group(1)))
		}})
	})
	b := rules.NewBuilder(theme.NewDefaultStore(), nil, util.DiscardLogger())
	b.Use(plugin)
	reg, err := b.Build()
	require.NoError(t, err)
	e := New(reg, Options{Logger: util.DiscardLogger()})

	r, ok := e.ResolveClass("boom-3")
	require.True(t, ok)
	assert.Equal(t, ".boom-3 { z-index: 3; }", r.CSS)
	assert.Equal(t, "works", r.Rule)
	assert.Equal(t, int64(2), e.Stats().Faults)
}

func TestResolve_FirstRegisteredPatternWins(t *testing.T) {
	b := rules.NewBuilder(theme.NewDefaultStore(), nil, util.DiscardLogger())
	b.Use(
		rules.NewPlugin("a", "1.0.0", func(b *rules.Builder) {
			b.AddRule(rules.Rule{Name: "first", Pattern: regexp.MustCompile(`^gap-(\d+)$`), Properties: rules.Props("gap", "1px")})
		}),
		rules.NewPlugin("b", "1.0.0", func(b *rules.Builder) {
			b.AddRule(rules.Rule{Name: "second", Pattern: regexp.MustCompile(`^gap-(\d+)$`), Properties: rules.Props("gap", "2px")})
		}),
	)
	reg, err := b.Build()
	require.NoError(t, err)

	r, ok := New(reg, Options{Logger: util.DiscardLogger()}).ResolveClass("gap-1")
	require.True(t, ok)
	assert.Equal(t, "first", r.Rule)
	assert.Equal(t, ".gap-1 { gap: 1px; }", r.CSS)
}

func TestResolve_EmptyMatchIsNotRejection(t *testing.T) {
	b := rules.NewBuilder(theme.NewDefaultStore(), nil, util.DiscardLogger())
	b.AddRule(rules.Rule{Pattern: regexp.MustCompile(`^noop$`), Handler: func(rules.Match) rules.Result {
		return rules.Emit(rules.Declarations{})
	}})
	reg, err := b.Build()
	require.NoError(t, err)
	e := New(reg, Options{Logger: util.DiscardLogger()})

	r, ok := e.ResolveClass("noop")
	assert.True(t, ok)
	assert.Empty(t, r.CSS)
	assert.Empty(t, e.Generate([]string{"noop"}))
}

func TestResolve_ThemeChangeInvalidatesCache(t *testing.T) {
	store := theme.NewDefaultStore()
	reg, err := preset.Build(store, preset.Options{}, nil, util.DiscardLogger())
	require.NoError(t, err)
	e := New(reg, Options{Logger: util.DiscardLogger()})

	_, ok := e.ResolveClass("bg-brand")
	assert.False(t, ok)

	store.Extend(theme.Theme{Colors: map[string]theme.Scale{"brand": {theme.DefaultKey: "#123456"}}})

	r, ok := e.ResolveClass("bg-brand")
	require.True(t, ok)
	assert.Equal(t, ".bg-brand { background-color: #123456; }", r.CSS)
}

func TestResolve_ThemeChangeDuringComputeIsNotCached(t *testing.T) {
	store := theme.NewDefaultStore()
	store.Extend(theme.Theme{Colors: map[string]theme.Scale{"brand": {theme.DefaultKey: "#111111"}}})

	var e *Engine
	extended := false
	tone := rules.NewPlugin("tone", "1.0.0", func(b *rules.Builder) {
		b.AddRule(rules.Rule{Name: "tone", Pattern: regexp.MustCompile(`^tone$`), Handler: func(m rules.Match) rules.Result {
			v, _ := m.Theme.Color("brand", "")
			if !extended {
				extended = true
				m.Theme.Extend(theme.Theme{Colors: map[string]theme.Scale{"brand": {theme.DefaultKey: "#222222"}}})
				// Another resolution observes the new version and purges.
				_, _ = e.ResolveClass("p-4")
			}
			return rules.Emit(rules.Props("color", v))
		}})
	})
	reg, err := preset.Build(store, preset.Options{}, nil, util.DiscardLogger(), tone)
	require.NoError(t, err)
	e = New(reg, Options{Logger: util.DiscardLogger()})

	r, ok := e.ResolveClass("tone")
	require.True(t, ok)
	assert.Equal(t, ".tone { color: #111111; }", r.CSS)

	r, ok = e.ResolveClass("tone")
	require.True(t, ok)
	assert.Equal(t, ".tone { color: #222222; }", r.CSS)
}

func TestSetRegistry_PurgesCache(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})
	_, ok := e.ResolveClass("p-4")
	require.True(t, ok)
	require.Equal(t, 1, e.Stats().Cached)

	e.SetRegistry(e.Registry().WithRules(nil))
	assert.Equal(t, 0, e.Stats().Cached)
	_, ok = e.ResolveClass("p-4")
	assert.False(t, ok)
}

func TestResolve_Concurrent(t *testing.T) {
	e := newPresetEngine(t, preset.Options{})
	classes := []string{"p-4", "hover:bg-blue-500", "sm:flex", "-m-2", "bg-red-500/50", "text-lg"}
	want := make(map[string]string, len(classes))
	for _, c := range classes {
		want[c] = css(t, e, c)
	}
	e.Invalidate()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c := classes[(i+j)%len(classes)]
				r, ok := e.ResolveClass(c)
				assert.True(t, ok)
				assert.Equal(t, want[c], r.CSS)
			}
		}(i)
	}
	wg.Wait()
}
