// Package parser wraps tree-sitter JavaScript and TypeScript grammars behind
// per-grammar parser pools for concurrent class extraction.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/uiwind/pkg/util"
)

// ErrClosed is returned by Parse after Close.
var ErrClosed = errors.New("parser manager closed")

type poolKey struct {
	lang  Language
	isTSX bool
}

func (k poolKey) String() string {
	if k.isTSX {
		return "tsx"
	}
	return k.lang.String()
}

// Manager owns one parser pool per grammar. It is safe for concurrent use.
// Trees returned by Parse belong to the caller, who must Close them.
type Manager struct {
	logger   *slog.Logger
	poolSize int

	mu     sync.RWMutex
	pools  map[poolKey]*parserPool
	closed bool

	parses atomic.Int64
	errors atomic.Int64
}

// NewManager creates a manager whose pools hold up to poolSize parsers
// each. poolSize <= 0 uses util.WorkerCount so extraction workers never
// wait on a parser.
func NewManager(poolSize int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:   logger,
		poolSize: util.WorkerCountWithOverride(poolSize),
		pools:    make(map[poolKey]*parserPool),
	}
}

// Parse parses source with the grammar for lang. isTSX selects the TSX
// dialect and is ignored for JavaScript, whose grammar always accepts JSX.
// Trees with syntax errors are still returned.
func (m *Manager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}
	if lang != LanguageTypeScript {
		isTSX = false
	}

	pool, err := m.pool(poolKey{lang: lang, isTSX: isTSX})
	if err != nil {
		return nil, err
	}
	parser, err := pool.acquire()
	if err != nil {
		return nil, err
	}
	tree := parser.Parse(source, nil)
	pool.release(parser)

	m.parses.Add(1)
	if tree == nil {
		return nil, fmt.Errorf("%s parser returned no tree", pool.key)
	}
	if tree.RootNode().HasError() {
		m.errors.Add(1)
		m.logger.Debug("Parse tree contains errors", "grammar", pool.key.String())
	}
	return tree, nil
}

// ParseFile detects the grammar from path and parses source.
func (m *Manager) ParseFile(source []byte, path string) (*ts.Tree, error) {
	lang := DetectLanguage(path)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", path)
	}
	return m.Parse(source, lang, IsTSXFile(path))
}

// LanguagePointer returns the raw grammar for query compilation.
func (m *Manager) LanguagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil
	case LanguageJavaScript:
		return ts_javascript.Language(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// Stats reports parser usage.
type Stats struct {
	ParsersCreated int   `json:"parsers_created"`
	Parses         int64 `json:"parses"`
	TreesWithError int64 `json:"trees_with_errors"`
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	created := 0
	for _, p := range m.pools {
		created += p.size()
	}
	return Stats{ParsersCreated: created, Parses: m.parses.Load(), TreesWithError: m.errors.Load()}
}

// Close frees every pooled parser. Parse fails with ErrClosed afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	closed := 0
	for _, p := range m.pools {
		closed += p.close()
	}
	m.pools = nil
	m.logger.Debug("Closed parser manager", "parsers_closed", closed, "parses", m.parses.Load())
	return nil
}

func (m *Manager) pool(key poolKey) (*parserPool, error) {
	m.mu.RLock()
	p, ok := m.pools[key]
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if ok {
		return p, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if p, ok = m.pools[key]; ok {
		return p, nil
	}
	ptr, err := m.LanguagePointer(key.lang, key.isTSX)
	if err != nil {
		return nil, err
	}
	p = newParserPool(key, ptr, m.poolSize, m.logger)
	m.pools[key] = p
	return p, nil
}
