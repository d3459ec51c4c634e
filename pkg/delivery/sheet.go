package delivery

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/gnana997/uiwind/pkg/rules"
)

var (
	// ErrRuleNotFound is returned when an update or delete names a rule the
	// sheet does not hold.
	ErrRuleNotFound = errors.New("style rule not found")

	// ErrInvalidRule is returned for rules that cannot be applied.
	ErrInvalidRule = errors.New("invalid style rule")
)

// StyleSheet is the live stylesheet operations are applied to.
type StyleSheet interface {
	// InsertRule adds selector with css, which is either a declaration body
	// ("color: red;") or a complete rule text. Inserting an existing
	// selector replaces it in place.
	InsertRule(selector, css string) error

	// UpdateRule sets props on an existing declaration block.
	UpdateRule(selector string, props map[string]string) error

	// DeleteRule removes selector.
	DeleteRule(selector string) error
}

// SheetRule is one rule held by a MemorySheet. Raw is set for rules that
// were inserted as complete rule text.
type SheetRule struct {
	Selector     string             `json:"selector"`
	Declarations rules.Declarations `json:"declarations,omitempty"`
	Raw          string             `json:"raw,omitempty"`
}

// CSS renders the rule on one line.
func (r SheetRule) CSS() string {
	if r.Raw != "" {
		return r.Raw
	}
	return r.Selector + " { " + r.Declarations.Body() + " }"
}

// MemorySheet is an in-memory StyleSheet that preserves insertion order.
type MemorySheet struct {
	mu    sync.RWMutex
	order []string
	rules map[string]*SheetRule
}

// NewMemorySheet creates an empty sheet.
func NewMemorySheet() *MemorySheet {
	return &MemorySheet{rules: make(map[string]*SheetRule)}
}

func (s *MemorySheet) InsertRule(selector, body string) error {
	if strings.TrimSpace(selector) == "" {
		return fmt.Errorf("%w: empty selector", ErrInvalidRule)
	}

	rule := &SheetRule{Selector: selector}
	if strings.Contains(body, "{") {
		rule.Raw = strings.TrimSpace(body)
	} else {
		decls, err := ParseDeclarations(body)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRule, selector, err)
		}
		rule.Declarations = decls
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[selector]; !ok {
		s.order = append(s.order, selector)
	}
	s.rules[selector] = rule
	return nil
}

func (s *MemorySheet) UpdateRule(selector string, props map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule, ok := s.rules[selector]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, selector)
	}
	if rule.Raw != "" {
		return fmt.Errorf("%w: %s is not a declaration block", ErrInvalidRule, selector)
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		set := false
		for i := range rule.Declarations {
			if rule.Declarations[i].Property == name {
				rule.Declarations[i].Value = props[name]
				set = true
				break
			}
		}
		if !set {
			rule.Declarations = append(rule.Declarations, rules.Declaration{Property: name, Value: props[name]})
		}
	}
	return nil
}

func (s *MemorySheet) DeleteRule(selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rules[selector]; !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, selector)
	}
	delete(s.rules, selector)
	for i, sel := range s.order {
		if sel == selector {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Rule returns a copy of the rule for selector.
func (s *MemorySheet) Rule(selector string) (SheetRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.rules[selector]
	if !ok {
		return SheetRule{}, false
	}
	out := *rule
	out.Declarations = rule.Declarations.Clone()
	return out, true
}

// Len returns the number of rules.
func (s *MemorySheet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// CSS renders every rule, one per line, in insertion order.
func (s *MemorySheet) CSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]string, 0, len(s.order))
	for _, sel := range s.order {
		lines = append(lines, s.rules[sel].CSS())
	}
	return strings.Join(lines, "\n")
}

// ParseDeclarations parses a declaration body such as "color: red; margin: 0"
// into ordered declarations.
func ParseDeclarations(body string) (rules.Declarations, error) {
	p := css.NewParser(parse.NewInputString(body), true)

	var decls rules.Declarations
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
				return decls, err
			}
			return decls, nil
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			value := joinTokens(p.Values())
			if value == "" {
				return decls, fmt.Errorf("declaration %q has no value", string(data))
			}
			decls = append(decls, rules.Declaration{Property: string(data), Value: value})
		}
	}
}

func joinTokens(tokens []css.Token) string {
	var b strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}
