package rules

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/util"
)

func newTestBuilder() *Builder {
	return NewBuilder(theme.NewDefaultStore(), map[string]any{
		"darkMode": map[string]any{"strategy": "media"},
		"prefix":   "tw",
	}, util.DiscardLogger())
}

func collect(reg *Registry, subject string) []string {
	var names []string
	for r := range reg.Candidates(subject) {
		names = append(names, r.Name)
	}
	return names
}

func TestRegistry_StaticTierBeforeDynamic(t *testing.T) {
	b := newTestBuilder()
	b.Use(NewPlugin("core", "1.0.0", func(b *Builder) {
		b.AddRule(Rule{Name: "dyn-block", Pattern: regexp.MustCompile(`^bl(ock)$`), Properties: Props("display", "flex")})
		b.AddRule(Rule{Name: "static-block", Literal: "block", Properties: Props("display", "block")})
	}))
	reg, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"static-block", "dyn-block"}, collect(reg, "block"))
}

func TestRegistry_FirstRegisteredWins(t *testing.T) {
	b := newTestBuilder()
	b.Use(
		NewPlugin("first", "1.0.0", func(b *Builder) {
			b.AddUtility("flex", Props("display", "flex"))
			b.AddRule(Rule{Name: "p-first", Pattern: regexp.MustCompile(`^p-(\d+)$`), Properties: Props("padding", "1px")})
		}),
		NewPlugin("second", "1.0.0", func(b *Builder) {
			b.AddUtility("flex", Props("display", "inline-flex"))
			b.AddRule(Rule{Name: "p-second", Pattern: regexp.MustCompile(`^p-(\d+)$`), Properties: Props("padding", "2px")})
		}),
	)
	reg, err := b.Build()
	require.NoError(t, err)

	var first Rule
	for r := range reg.Candidates("flex") {
		first = r
		break
	}
	assert.Equal(t, "first", first.Plugin)
	assert.Equal(t, Props("display", "flex"), first.Properties)

	// The shadowed literal is not yielded at all; patterns are yielded in order.
	assert.Equal(t, []string{"flex"}, collect(reg, "flex"))
	assert.Equal(t, []string{"p-first", "p-second"}, collect(reg, "p-4"))
	assert.Equal(t, 4, reg.Len())
}

func TestRegistry_CandidatesCaptures(t *testing.T) {
	b := newTestBuilder()
	b.AddRule(Rule{Pattern: regexp.MustCompile(`^perspective-\[(.*)\]$`), Handler: func(m Match) Result {
		return Emit(Props("perspective", m.Group(1)))
	}})
	reg, err := b.Build()
	require.NoError(t, err)

	for r, caps := range reg.Candidates("perspective-[]") {
		assert.True(t, r.AcceptsArbitrary())
		assert.Equal(t, []string{"perspective-[]", ""}, caps)
	}
	assert.Empty(t, collect(reg, "perspective"))
}

func TestResult_TaggedStatus(t *testing.T) {
	empty := Emit(Declarations{})
	assert.Equal(t, Matched, empty.Status)
	assert.Empty(t, empty.Declarations)

	assert.Equal(t, NoMatch, Reject().Status)
	assert.Equal(t, Fault, Failed(assert.AnError).Status)
	assert.Equal(t, "no-match", NoMatch.String())
}

func TestBuilder_InvalidRegistrationsCollected(t *testing.T) {
	b := newTestBuilder()
	b.AddRule(Rule{Name: "nothing"})
	b.AddRule(Rule{Literal: "x", Pattern: regexp.MustCompile(`x`), Properties: Props("a", "b")})
	b.AddRule(Rule{Literal: "y"})
	b.AddVariant(Variant{Name: "hover"})
	b.AddBase("  ", Props("margin", "0"))
	b.AddUtility("ok", Props("a", "b"))

	reg, err := b.Build()
	require.Error(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.Contains(t, err.Error(), "literal or pattern required")
	assert.Contains(t, err.Error(), "exclusive")
}

func TestBuilder_PluginMetadataValidated(t *testing.T) {
	b := newTestBuilder()
	b.Use(
		NewPlugin("", "1.0.0", func(b *Builder) { b.AddUtility("a", Props("a", "b")) }),
		NewPlugin("bad-version", "v1", func(b *Builder) { b.AddUtility("b", Props("a", "b")) }),
		NewPlugin("good", "0.1.0", func(b *Builder) { b.AddUtility("c", Props("a", "b")) }),
	)
	reg, err := b.Build()
	require.Error(t, err)
	assert.Equal(t, 1, reg.Len())
	require.Len(t, reg.Plugins(), 1)
	assert.Equal(t, "good", reg.Plugins()[0].Name)
	assert.Equal(t, 1, reg.Plugins()[0].Rules)
}

func TestBuilder_PanickingInstallIsRolledBack(t *testing.T) {
	b := newTestBuilder()
	b.Use(
		NewPlugin("broken", "1.0.0", func(b *Builder) {
			b.AddUtility("half", Props("a", "b"))
			panic("boom")
		}),
		NewPlugin("fine", "1.0.0", func(b *Builder) { b.AddUtility("whole", Props("a", "b")) }),
	)
	reg, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, collect(reg, "half"))
	assert.Equal(t, []string{"whole"}, collect(reg, "whole"))
}

func TestBuilder_ThemeConfigAndEscape(t *testing.T) {
	b := newTestBuilder()
	b.ExtendTheme(theme.Theme{Colors: map[string]theme.Scale{"brand": {theme.DefaultKey: "#0af"}}})

	assert.Equal(t, "#0af", b.Theme("colors.brand"))
	assert.Equal(t, "#3b82f6", b.Theme("colors.blue.500"))
	assert.Equal(t, "1rem", b.Theme("spacing.4"))
	assert.Equal(t, "", b.Theme("colors.nope.500"))

	v, ok := b.Config("darkMode.strategy")
	require.True(t, ok)
	assert.Equal(t, "media", v)
	_, ok = b.Config("darkMode.selector")
	assert.False(t, ok)
	_, ok = b.Config("prefix.deeper")
	assert.False(t, ok)

	assert.Equal(t, `hover\:bg-red-500`, b.E("hover:bg-red-500"))
}

func TestRegistry_FindVariant(t *testing.T) {
	b := newTestBuilder()
	b.AddVariant(Variant{Name: "hover", Selector: func(s string, _ []string) string { return s + ":hover" }})
	b.AddVariant(Variant{Name: "data", Pattern: regexp.MustCompile(`^data-\[(.+)\]$`), Selector: func(s string, m []string) string {
		return s + "[data-" + m[1] + "]"
	}})
	reg, err := b.Build()
	require.NoError(t, err)

	v, caps, ok := reg.FindVariant("hover")
	require.True(t, ok)
	assert.Equal(t, ".a:hover", v.Selector(".a", caps))

	v, caps, ok = reg.FindVariant("data-[state=open]")
	require.True(t, ok)
	assert.Equal(t, ".a[data-state=open]", v.Selector(".a", caps))

	_, _, ok = reg.FindVariant("wobble")
	assert.False(t, ok)
}

func TestRegistry_WithRulesKeepsVariantsAndBase(t *testing.T) {
	b := newTestBuilder()
	b.AddUtility("flex", Props("display", "flex"))
	b.AddUtility("grid", Props("display", "grid"))
	b.AddVariant(Variant{Name: "focus", Selector: func(s string, _ []string) string { return s + ":focus" }})
	b.AddBase("*", Props("box-sizing", "border-box"))
	reg, err := b.Build()
	require.NoError(t, err)

	shaken := reg.WithRules(reg.Rules()[:1])
	assert.Equal(t, 1, shaken.Len())
	assert.Empty(t, collect(shaken, "grid"))
	_, _, ok := shaken.FindVariant("focus")
	assert.True(t, ok)
	require.Len(t, shaken.Base(), 1)
	assert.Equal(t, "* { box-sizing: border-box; }", shaken.Base()[0].CSS())
	assert.Same(t, reg.Theme(), shaken.Theme())
}

func TestDeclarations_Body(t *testing.T) {
	assert.Equal(t, "color: red; margin: 0;", Props("color", "red", "margin", "0").Body())
	assert.Equal(t, "", Declarations{}.Body())
	assert.Len(t, Props("odd"), 0)
}
