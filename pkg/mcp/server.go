// Package mcp exposes the compiler as Model Context Protocol tools so editors
// and agents can generate CSS, inspect classes and audit usage.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/uiwind/pkg/engine"
	"github.com/gnana997/uiwind/pkg/mcplog"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/treeshake"
	"github.com/gnana997/uiwind/pkg/turbo"
)

const serverVersion = "0.1.0-dev"

// Options configure a Server.
type Options struct {
	// DarkStrategy and DarkSelector are the defaults for theme_css.
	DarkStrategy theme.Strategy
	DarkSelector string

	// TreeShake configures analyze_usage.
	TreeShake treeshake.Options

	// Bridge routes extract_classes; nil uses turbo.Default().
	Bridge *turbo.Bridge

	// CallLog, when set, receives one JSONL entry per tool call.
	CallLog *mcplog.Logger
}

// Server implements the MCP server, exposing compilation tools over a shared engine.
type Server struct {
	mcpServer *server.MCPServer
	compiler  *engine.Engine
	opts      Options
	logger    *mcplog.Logger
}

// NewServer creates a new MCP server backed by compiler.
func NewServer(compiler *engine.Engine, opts Options) *Server {
	if opts.DarkStrategy == "" {
		opts.DarkStrategy = theme.StrategyClass
	}
	if opts.Bridge == nil {
		opts.Bridge = turbo.Default()
	}
	s := &Server{compiler: compiler, opts: opts, logger: opts.CallLog}

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.logger != nil {
		serverOpts = append(serverOpts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("uiwind", serverVersion, serverOpts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: generateCSSTool(), Handler: s.handleGenerateCSS},
		server.ServerTool{Tool: parseClassTool(), Handler: s.handleParseClass},
		server.ServerTool{Tool: themeCSSTool(), Handler: s.handleThemeCSS},
		server.ServerTool{Tool: analyzeUsageTool(), Handler: s.handleAnalyzeUsage},
		server.ServerTool{Tool: extractClassesTool(), Handler: s.handleExtractClasses},
		server.ServerTool{Tool: engineStatsTool(), Handler: s.handleEngineStats},
	)

	return s
}

// MCPServer returns the underlying server, for transports other than stdio.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
