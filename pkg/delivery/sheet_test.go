package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiwind/pkg/rules"
)

func TestParseDeclarations(t *testing.T) {
	decls, err := ParseDeclarations("color: red; --tw-x: 1px; margin: 0 auto !important;")
	require.NoError(t, err)
	assert.Equal(t, rules.Declarations{
		{Property: "color", Value: "red"},
		{Property: "--tw-x", Value: "1px"},
		{Property: "margin", Value: "0 auto !important"},
	}, decls)

	decls, err = ParseDeclarations("")
	require.NoError(t, err)
	assert.Empty(t, decls)

	_, err = ParseDeclarations("color red")
	assert.Error(t, err)
}

func TestMemorySheet(t *testing.T) {
	s := NewMemorySheet()

	require.NoError(t, s.InsertRule(".a", "color: red"))
	require.NoError(t, s.InsertRule(".b", "@media (min-width: 640px) { .b { color: blue; } }"))
	require.NoError(t, s.InsertRule(".a", "color: green"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, ".a { color: green; }\n@media (min-width: 640px) { .b { color: blue; } }", s.CSS())

	assert.ErrorIs(t, s.UpdateRule(".b", map[string]string{"color": "red"}), ErrInvalidRule)
	assert.ErrorIs(t, s.UpdateRule(".c", nil), ErrRuleNotFound)
	assert.ErrorIs(t, s.InsertRule(" ", "color: red"), ErrInvalidRule)
	assert.ErrorIs(t, s.InsertRule(".d", "color red"), ErrInvalidRule)

	require.NoError(t, s.DeleteRule(".a"))
	assert.ErrorIs(t, s.DeleteRule(".a"), ErrRuleNotFound)
	assert.Equal(t, 1, s.Len())

	rule, ok := s.Rule(".b")
	require.True(t, ok)
	assert.NotEmpty(t, rule.Raw)
}
