package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/uiwind/pkg/engine"
	"github.com/gnana997/uiwind/pkg/extract"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/token"
	"github.com/gnana997/uiwind/pkg/treeshake"
)

type generateResult struct {
	CSS     string                `json:"css"`
	Rules   []engine.ResolvedRule `json:"rules"`
	Unknown []string              `json:"unknown,omitempty"`
}

type parseResult struct {
	Token     token.UtilityToken `json:"token"`
	Canonical string             `json:"canonical"`
	Matched   bool               `json:"matched"`
	CSS       string             `json:"css,omitempty"`
	Rule      string             `json:"rule,omitempty"`
	Layer     string             `json:"layer,omitempty"`
}

type usageResult struct {
	Analysis treeshake.Analysis `json:"analysis"`
	Usage    treeshake.Usage    `json:"usage"`
	Unused   []string           `json:"unused_rules,omitempty"`
}

type extractResult struct {
	Classes []string `json:"classes"`
	Native  bool     `json:"native"`
}

func (s *Server) handleGenerateCSS(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	classes, err := req.RequireStringSlice("classes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved := s.compiler.GenerateRules(classes)
	known := make(map[string]bool, len(resolved))
	parts := make([]string, 0, len(resolved))
	if req.GetBool("preflight", false) {
		for _, base := range s.compiler.Registry().Base() {
			parts = append(parts, base.CSS())
		}
	}
	for _, r := range resolved {
		known[r.Class] = true
		parts = append(parts, r.CSS)
	}

	var unknown []string
	seen := make(map[string]bool)
	for _, entry := range classes {
		for _, raw := range strings.Fields(entry) {
			if !known[raw] && !seen[raw] {
				seen[raw] = true
				unknown = append(unknown, raw)
			}
		}
	}

	return jsonResult(generateResult{CSS: strings.Join(parts, "\n"), Rules: resolved, Unknown: unknown})
}

func (s *Server) handleParseClass(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	class, err := req.RequireString("class")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	class = strings.TrimSpace(class)
	if class == "" || strings.ContainsAny(class, " \t\n") {
		return mcp.NewToolResultError("class must be a single non-empty class"), nil
	}

	tok := token.Parse(class)
	out := parseResult{Token: tok, Canonical: tok.Canonical()}
	if r, ok := s.compiler.Resolve(tok); ok {
		out.Matched = true
		out.CSS = r.CSS
		out.Rule = r.Rule
		out.Layer = r.Layer.String()
	}
	return jsonResult(out)
}

func (s *Server) handleThemeCSS(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	strategy := s.opts.DarkStrategy
	if raw := req.GetString("strategy", ""); raw != "" {
		parsed, err := theme.ParseStrategy(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		strategy = parsed
	}
	selector := req.GetString("selector", s.opts.DarkSelector)

	store := s.compiler.Registry().Theme()
	return mcp.NewToolResultText(store.ThemeCSS(strategy, selector)), nil
}

func (s *Server) handleAnalyzeUsage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	classes, err := req.RequireStringSlice("classes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var raws []string
	for _, entry := range classes {
		raws = append(raws, strings.Fields(entry)...)
	}

	shaker := treeshake.New(s.opts.TreeShake, nil)
	all := s.compiler.Registry().Rules()
	analysis := shaker.Analyze(all, raws)

	var unused []string
	if !s.opts.TreeShake.KeepVariants {
		for _, r := range all {
			if !shaker.ShouldKeepRule(r) {
				unused = append(unused, r.PatternText())
			}
		}
	}

	return jsonResult(usageResult{Analysis: analysis, Usage: shaker.Usage(), Unused: unused})
}

func (s *Server) handleExtractClasses(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := req.GetString("filename", "input.tsx")

	classes, err := s.opts.Bridge.Extract(filename, []byte(code), extract.FromBytes)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if classes == nil {
		classes = []string{}
	}
	return jsonResult(extractResult{Classes: classes, Native: s.opts.Bridge.Available()})
}

func (s *Server) handleEngineStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.compiler.Stats())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("marshal result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
