// Package queries compiles and runs the tree-sitter queries that pull
// class-bearing string literals out of JavaScript and TypeScript sources.
package queries

import (
	"fmt"
	"log/slog"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/uiwind/pkg/parser"
)

// StringQuery captures plain string contents and whole template literals.
// JSX attribute values parse as strings, so className="..." is covered.
const StringQuery = `
(string_fragment) @string.fragment
(template_string) @string.template
`

type queryKey struct {
	lang  parser.Language
	isTSX bool
}

// Literal is one string found in a source file.
type Literal struct {
	Text     string
	Template bool
	Location Location
}

// Location is a 1-based line/column span plus 0-based byte offsets.
type Location struct {
	StartLine   uint32
	StartColumn uint32
	EndLine     uint32
	EndColumn   uint32
	StartByte   uint32
	EndByte     uint32
}

// Manager compiles StringQuery once per grammar and caches it.
type Manager struct {
	parsers *parser.Manager
	logger  *slog.Logger

	mu    sync.RWMutex
	cache map[queryKey]*ts.Query
}

// NewManager creates a query manager backed by pm's grammars.
func NewManager(pm *parser.Manager, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{parsers: pm, logger: logger, cache: make(map[queryKey]*ts.Query)}
}

// Query returns the compiled string query for a grammar.
func (m *Manager) Query(lang parser.Language, isTSX bool) (*ts.Query, error) {
	key := queryKey{lang: lang, isTSX: isTSX && lang == parser.LanguageTypeScript}

	m.mu.RLock()
	q, ok := m.cache[key]
	m.mu.RUnlock()
	if ok {
		return q, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok = m.cache[key]; ok {
		return q, nil
	}

	ptr, err := m.parsers.LanguagePointer(key.lang, key.isTSX)
	if err != nil {
		return nil, err
	}
	q, qerr := ts.NewQuery(ts.NewLanguage(ptr), StringQuery)
	if qerr != nil {
		return nil, fmt.Errorf("failed to compile string query for %s: %s", lang, qerr.Message)
	}
	m.cache[key] = q
	m.logger.Debug("Compiled string query", "language", lang.String(), "tsx", key.isTSX)
	return q, nil
}

// Strings returns every string literal in tree. Template literals have
// their ${...} substitutions blanked so only the static text remains.
func (m *Manager) Strings(tree *ts.Tree, lang parser.Language, isTSX bool, source []byte) ([]Literal, error) {
	if tree == nil {
		return nil, fmt.Errorf("tree is nil")
	}
	q, err := m.Query(lang, isTSX)
	if err != nil {
		return nil, err
	}

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	names := q.CaptureNames()
	matches := cursor.Matches(q, tree.RootNode(), source)

	var out []Literal
	for match := matches.Next(); match != nil; match = matches.Next() {
		for _, c := range match.Captures {
			node := c.Node
			lit := Literal{Location: nodeLocation(&node)}
			if int(c.Index) < len(names) && names[c.Index] == "string.template" {
				lit.Template = true
				lit.Text = templateText(&node, source)
			} else {
				lit.Text = node.Utf8Text(source)
			}
			if lit.Text != "" {
				out = append(out, lit)
			}
		}
	}
	return out, nil
}

// Close frees the compiled queries.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, q := range m.cache {
		q.Close()
		delete(m.cache, key)
	}
	return nil
}

// templateText returns the literal without its backticks, with each
// template_substitution replaced by a space.
func templateText(node *ts.Node, source []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if end-start < 2 {
		return ""
	}
	buf := make([]byte, 0, end-start)
	pos := start + 1
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() != "template_substitution" {
			continue
		}
		buf = append(buf, source[pos:child.StartByte()]...)
		buf = append(buf, ' ')
		pos = child.EndByte()
	}
	if pos < end-1 {
		buf = append(buf, source[pos:end-1]...)
	}
	return string(buf)
}

func nodeLocation(node *ts.Node) Location {
	start, end := node.StartPosition(), node.EndPosition()
	return Location{
		StartLine:   uint32(start.Row + 1),
		StartColumn: uint32(start.Column + 1),
		EndLine:     uint32(end.Row + 1),
		EndColumn:   uint32(end.Column + 1),
		StartByte:   uint32(node.StartByte()),
		EndByte:     uint32(node.EndByte()),
	}
}
