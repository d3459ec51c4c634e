package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiwind/pkg/engine"
	"github.com/gnana997/uiwind/pkg/mcplog"
	"github.com/gnana997/uiwind/pkg/preset"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/treeshake"
	"github.com/gnana997/uiwind/pkg/turbo"
	"github.com/gnana997/uiwind/pkg/util"
)

// --- helpers ---

func testServer(t *testing.T, opts Options) *Server {
	t.Helper()
	reg, err := preset.Build(theme.NewDefaultStore(), preset.Options{}, nil, util.DiscardLogger())
	require.NoError(t, err)
	compiler := engine.New(reg, engine.Options{Logger: util.DiscardLogger()})
	if opts.Bridge == nil {
		opts.Bridge = turbo.NewBridge(turbo.DefaultConfig(), nil, util.DiscardLogger())
	}
	return NewServer(compiler, opts)
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	switch req.Params.Name {
	case "generate_css":
		handler = s.handleGenerateCSS
	case "parse_class":
		handler = s.handleParseClass
	case "theme_css":
		handler = s.handleThemeCSS
	case "analyze_usage":
		handler = s.handleAnalyzeUsage
	case "extract_classes":
		handler = s.handleExtractClasses
	case "engine_stats":
		handler = s.handleEngineStats
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- generate_css ---

func TestHandleGenerateCSS(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("generate_css", map[string]any{
		"classes": []any{"p-4 flex", "p-4", "not-a-utility"},
	}))
	assert.False(t, result.IsError)

	var out generateResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.Contains(t, out.CSS, ".p-4 { padding: 1rem; }")
	assert.Contains(t, out.CSS, ".flex { display: flex; }")
	assert.Len(t, out.Rules, 2)
	assert.Equal(t, []string{"not-a-utility"}, out.Unknown)
}

func TestHandleGenerateCSS_Preflight(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("generate_css", map[string]any{
		"classes":   []any{"flex"},
		"preflight": true,
	}))
	assert.False(t, result.IsError)

	var out generateResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.Contains(t, out.CSS, "box-sizing: border-box")
	assert.Contains(t, out.CSS, ".flex { display: flex; }")
}

func TestHandleGenerateCSS_MissingClasses(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("generate_css", nil))
	assert.True(t, result.IsError)
}

// --- parse_class ---

func TestHandleParseClass(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("parse_class", map[string]any{"class": "sm:hover:bg-red-500/50"}))
	assert.False(t, result.IsError)

	var out parseResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.Equal(t, []string{"sm", "hover"}, out.Token.Variants)
	assert.Equal(t, "bg-red-500", out.Token.Utility)
	assert.Equal(t, "50", out.Token.Opacity)
	assert.True(t, out.Matched)
	assert.Contains(t, out.CSS, "rgb(239 68 68 / 0.5)")
	assert.NotEmpty(t, out.Layer)
}

func TestHandleParseClass_Unmatched(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("parse_class", map[string]any{"class": "zz-top"}))
	assert.False(t, result.IsError)

	var out parseResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.False(t, out.Matched)
	assert.Empty(t, out.CSS)
}

func TestHandleParseClass_Invalid(t *testing.T) {
	s := testServer(t, Options{})
	for _, class := range []string{"", "   ", "p-4 m-2"} {
		result := callTool(t, s, makeRequest("parse_class", map[string]any{"class": class}))
		assert.True(t, result.IsError, "class %q", class)
	}
}

// --- theme_css ---

func TestHandleThemeCSS(t *testing.T) {
	s := testServer(t, Options{})

	text := resultJSON(t, callTool(t, s, makeRequest("theme_css", nil)))
	assert.Contains(t, text, ":root {")
	assert.Contains(t, text, ".dark {")

	text = resultJSON(t, callTool(t, s, makeRequest("theme_css", map[string]any{"strategy": "media"})))
	assert.Contains(t, text, "@media (prefers-color-scheme: dark)")
	assert.NotContains(t, text, ".dark {")

	text = resultJSON(t, callTool(t, s, makeRequest("theme_css", map[string]any{
		"strategy": "selector",
		"selector": "[data-mode=night]",
	})))
	assert.Contains(t, text, "[data-mode=night] {")
}

func TestHandleThemeCSS_ServerDefaults(t *testing.T) {
	s := testServer(t, Options{DarkStrategy: theme.StrategySelector, DarkSelector: ".night"})
	text := resultJSON(t, callTool(t, s, makeRequest("theme_css", nil)))
	assert.Contains(t, text, ".night {")
}

func TestHandleThemeCSS_BadStrategy(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("theme_css", map[string]any{"strategy": "sometimes"}))
	assert.True(t, result.IsError)
}

// --- analyze_usage ---

func TestHandleAnalyzeUsage(t *testing.T) {
	s := testServer(t, Options{TreeShake: treeshake.DefaultOptions()})
	result := callTool(t, s, makeRequest("analyze_usage", map[string]any{
		"classes": []any{"hover:p-4 flex", "md:bg-red-500"},
	}))
	assert.False(t, result.IsError)

	var out usageResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.Equal(t, s.compiler.Registry().Len(), out.Analysis.TotalRules)
	assert.Greater(t, out.Analysis.UsedRules, 0)
	assert.Greater(t, out.Analysis.UnusedRules, 0)
	assert.Len(t, out.Unused, out.Analysis.UnusedRules)
	assert.Equal(t, []string{"hover", "md"}, out.Usage.Variants)
	assert.Contains(t, out.Usage.Classes, "flex")
}

func TestHandleAnalyzeUsage_Disabled(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("analyze_usage", map[string]any{"classes": []any{"flex"}}))

	var out usageResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.Equal(t, 0, out.Analysis.UnusedRules)
	assert.Empty(t, out.Unused)
}

// --- extract_classes ---

func TestHandleExtractClasses(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("extract_classes", map[string]any{
		"code":     `<p class="mt-2 text-sm">`,
		"filename": "x.html",
	}))
	assert.False(t, result.IsError)

	var out extractResult
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &out))
	assert.Contains(t, out.Classes, "mt-2")
	assert.Contains(t, out.Classes, "text-sm")
	assert.False(t, out.Native)
}

func TestHandleExtractClasses_MissingCode(t *testing.T) {
	s := testServer(t, Options{})
	result := callTool(t, s, makeRequest("extract_classes", map[string]any{"filename": "a.tsx"}))
	assert.True(t, result.IsError)
}

// --- engine_stats ---

func TestHandleEngineStats(t *testing.T) {
	s := testServer(t, Options{})
	callTool(t, s, makeRequest("generate_css", map[string]any{"classes": []any{"flex", "flex"}}))

	var stats engine.Stats
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, callTool(t, s, makeRequest("engine_stats", nil)))), &stats))
	assert.Equal(t, s.compiler.Registry().Len(), stats.Registry)
	assert.Greater(t, stats.Cached, 0)
}

// --- logging middleware ---

func TestLoggingMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	callLog, err := mcplog.NewLogger(path)
	require.NoError(t, err)

	s := testServer(t, Options{CallLog: callLog})
	wrapped := s.loggingMiddleware()(s.handleParseClass)

	_, err = wrapped(context.Background(), makeRequest("parse_class", map[string]any{"class": "flex"}))
	require.NoError(t, err)
	_, err = wrapped(context.Background(), makeRequest("parse_class", map[string]any{"class": ""}))
	require.NoError(t, err)
	require.NoError(t, callLog.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []mcplog.LogEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e mcplog.LogEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)
	assert.Equal(t, "parse_class", entries[0].Tool)
	assert.Equal(t, "flex", entries[0].Params["class"])
	assert.Greater(t, entries[0].ResponseBytes, 0)
	assert.False(t, entries[0].IsError)
	assert.True(t, entries[1].IsError)
}

func TestNewServer_Defaults(t *testing.T) {
	s := testServer(t, Options{})
	assert.Equal(t, theme.StrategyClass, s.opts.DarkStrategy)
	assert.NotNil(t, s.MCPServer())
}
