// Package mcplog writes one JSONL line per MCP tool call so compile requests
// from editors and agents can be audited after the fact.
package mcplog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// shortStringMax is the longest string param logged verbatim.
	shortStringMax = 64

	// shortListMax is the longest list param logged verbatim.
	shortListMax = 16
)

// LogEntry is the schema for one JSONL line.
type LogEntry struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	TokensEst     int            `json:"tokens_est"`
	IsError       bool           `json:"is_error,omitempty"`
	Error         *string        `json:"error"`
}

// Logger appends entries to a file. It is safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	f    *os.File
	enc  *json.Encoder
	path string
	log  *slog.Logger
}

// NewLogger opens path for appending, creating parent directories.
// An empty path returns nil, nil; callers treat a nil Logger as disabled.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	return &Logger{f: f, enc: json.NewEncoder(f), path: path, log: slog.Default()}, nil
}

// SetLogger sets where write failures are reported.
func (l *Logger) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.log = logger
	}
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Write appends a single entry.
func (l *Logger) Write(entry LogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

// Errorf reports a failed Write without affecting the tool result.
func (l *Logger) Errorf(err error) {
	l.log.Warn("Failed to write call log", "path", l.path, "error", err)
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// SanitizeParams returns a copy of args safe for logging. Long strings such
// as source code become "{key}_len" and long lists such as class arrays
// become "{key}_count".
func SanitizeParams(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		switch val := v.(type) {
		case string:
			if len(val) > shortStringMax {
				out[k+"_len"] = len(val)
				continue
			}
		case []any:
			if len(val) > shortListMax {
				out[k+"_count"] = len(val)
				continue
			}
		case []string:
			if len(val) > shortListMax {
				out[k+"_count"] = len(val)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// ResponseBytes returns the serialized length of a result's content, or 0
// for a nil result.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is a replaceable clock for testing.
var Now = func() time.Time { return time.Now() }
