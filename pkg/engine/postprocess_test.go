package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gnana997/uiwind/pkg/rules"
)

func TestNegateValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1rem", "calc(1rem * -1)", true},
		{"0", "calc(0 * -1)", true},
		{".5em", "calc(.5em * -1)", true},
		{"var(--x)", "calc(var(--x) * -1)", true},
		{"calc(100% - 1rem)", "calc(calc(100% - 1rem) * -1)", true},
		{"rotateX(45deg)", "rotateX(calc(45deg * -1))", true},
		{"translate(1px, 2px)", "translate(1px, 2px)", false},
		{"flex", "flex", false},
		{"1px solid", "1px solid", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := negateValue(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestBlend(t *testing.T) {
	assert.Equal(t, "rgb(255 107 107 / 0.25)", blend("#ff6b6b", 0.25))
	assert.Equal(t, "rgb(255 255 255 / 1)", blend("#fff", 1))
	assert.Equal(t, "color-mix(in srgb, oklch(0.7 0.1 200) 30%, transparent)", blend("oklch(0.7 0.1 200)", 0.3))
}

func TestApplyOpacity_OnlyColourProperties(t *testing.T) {
	decls := rules.Props("background-color", "#000000", "padding", "1rem", "--tw-ring-color", "#ffffff")
	out, ok := applyOpacity(decls, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "rgb(0 0 0 / 0.5)", out[0].Value)
	assert.Equal(t, "1rem", out[1].Value)
	assert.Equal(t, "rgb(255 255 255 / 0.5)", out[2].Value)
	assert.Equal(t, "#000000", decls[0].Value, "input untouched")

	_, ok = applyOpacity(rules.Props("padding", "1rem"), 0.5)
	assert.False(t, ok)
}

func TestMarkImportant(t *testing.T) {
	out := markImportant(rules.Props("color", "red", "margin", "0 !important"))
	assert.Equal(t, "red !important", out[0].Value)
	assert.Equal(t, "0 !important", out[1].Value)
}
