package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/util"
)

func TestBuild_InstallsEveryPlugin(t *testing.T) {
	reg, err := Build(theme.NewDefaultStore(), Options{}, nil, util.DiscardLogger())
	require.NoError(t, err)

	var names []string
	for _, p := range reg.Plugins() {
		names = append(names, p.Name)
		assert.Equal(t, Version, p.Version)
	}
	assert.Equal(t, []string{"preflight", "layout", "spacing", "sizing", "typography", "colors", "borders", "effects", "transforms", "variants"}, names)
	assert.NotEmpty(t, reg.Base())
	assert.Greater(t, reg.Len(), 100)
}

func TestVariants_BreakpointsFollowTheme(t *testing.T) {
	store := theme.NewDefaultStore()
	bp := rules.NewPlugin("breakpoints", "1.0.0", func(b *rules.Builder) {
		b.ExtendTheme(theme.Theme{Breakpoints: theme.Scale{"3xl": "1920px"}})
	})

	b := rules.NewBuilder(store, nil, util.DiscardLogger())
	b.Use(bp)
	b.Use(Plugins(Options{})...)
	reg, err := b.Build()
	require.NoError(t, err)

	v, _, ok := reg.FindVariant("3xl")
	require.True(t, ok)
	assert.Equal(t, "@media (min-width: 1920px)", v.Wrapper)

	v, _, ok = reg.FindVariant("max-sm")
	require.True(t, ok)
	assert.Equal(t, "@media not all and (min-width: 640px)", v.Wrapper)
}

func TestValues(t *testing.T) {
	v, isArb, ok := arbitrary("[10px]")
	assert.Equal(t, "10px", v)
	assert.True(t, isArb)
	assert.True(t, ok)

	_, isArb, ok = arbitrary("[]")
	assert.True(t, isArb)
	assert.False(t, ok)

	_, isArb, _ = arbitrary("4")
	assert.False(t, isArb)

	f, ok := fraction("1/3")
	require.True(t, ok)
	assert.Equal(t, "33.33333333333333%", f)
	_, ok = fraction("1/0")
	assert.False(t, ok)

	assert.True(t, looksLikeColor("#fff"))
	assert.True(t, looksLikeColor("color:var(--brand)"))
	assert.False(t, looksLikeColor("length:var(--brand)"))
	assert.False(t, looksLikeColor("14px"))

	assert.Equal(t, 4, countArgs("1,0,0,45deg"))
	assert.Equal(t, 3, countArgs("1.1 1.2 1.3"))
	assert.Equal(t, 0, countArgs(""))
}
