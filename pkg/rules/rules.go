// Package rules defines the building blocks of the utility registry: rules
// that turn a utility subject into declarations, variants that rewrite the
// selector or wrap the output, and the plugins that contribute both.
package rules

import (
	"regexp"
	"strings"

	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/token"
)

// Layer is the cascade layer a rule's output belongs to. Generated CSS is
// ordered base, components, utilities.
type Layer int

const (
	LayerUtilities Layer = iota
	LayerComponents
	LayerBase
)

// String returns the layer name used in @layer blocks and reports.
func (l Layer) String() string {
	switch l {
	case LayerBase:
		return "base"
	case LayerComponents:
		return "components"
	default:
		return "utilities"
	}
}

// MarshalText encodes the layer by name in JSON reports.
func (l Layer) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Order returns the emission rank of the layer (lower first).
func (l Layer) Order() int {
	switch l {
	case LayerBase:
		return 0
	case LayerComponents:
		return 1
	default:
		return 2
	}
}

// Declaration is one CSS property/value pair.
type Declaration struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// Declarations is an ordered declaration block. Order is preserved in output.
type Declarations []Declaration

// Props builds Declarations from alternating property/value arguments.
// A trailing odd argument is ignored.
func Props(kv ...string) Declarations {
	out := make(Declarations, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Declaration{Property: kv[i], Value: kv[i+1]})
	}
	return out
}

// Clone returns a copy that can be mutated without affecting d.
func (d Declarations) Clone() Declarations {
	if d == nil {
		return nil
	}
	out := make(Declarations, len(d))
	copy(out, d)
	return out
}

// Body renders the block contents: "color: red; margin: 0;".
func (d Declarations) Body() string {
	var b strings.Builder
	for i, decl := range d {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(decl.Property)
		b.WriteString(": ")
		b.WriteString(decl.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// Status tags the outcome of a rule handler.
type Status int

const (
	// NoMatch means the rule structurally rejected the input; no CSS.
	NoMatch Status = iota
	// Matched carries declarations. An empty block is still a match.
	Matched
	// Fault means the handler failed; the engine moves on to the next rule.
	Fault
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case Fault:
		return "fault"
	default:
		return "no-match"
	}
}

// Result is the tagged outcome of evaluating a rule.
type Result struct {
	Status       Status
	Declarations Declarations
	Err          error
}

// Emit returns a Matched result carrying decls.
func Emit(decls Declarations) Result {
	return Result{Status: Matched, Declarations: decls}
}

// Reject returns a NoMatch result.
func Reject() Result {
	return Result{Status: NoMatch}
}

// Failed returns a Fault result wrapping err.
func Failed(err error) Result {
	return Result{Status: Fault, Err: err}
}

// Match is what a rule handler receives.
type Match struct {
	// Subject is the string the rule was matched against.
	Subject string

	// Captures holds the regex submatches; Captures[0] is the whole subject.
	// Static rules receive a single-element slice.
	Captures []string

	// Token is the parsed class the subject came from.
	Token token.UtilityToken

	// Theme is the store rule handlers resolve tokens against.
	Theme *theme.Store
}

// Group returns capture i, or "" when it does not exist.
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Captures) {
		return ""
	}
	return m.Captures[i]
}

// Handler computes declarations for a matched rule.
type Handler func(m Match) Result

// Rule maps a utility subject to declarations. Exactly one of Literal and
// Pattern is set; a rule without Handler emits Properties unchanged.
type Rule struct {
	Name       string
	Literal    string
	Pattern    *regexp.Regexp
	Properties Declarations
	Handler    Handler
	Layer      Layer

	// Plugin is the name of the plugin that registered the rule.
	Plugin string
}

// IsStatic reports whether the rule is dispatched through the exact-match table.
func (r Rule) IsStatic() bool {
	return r.Pattern == nil
}

// PatternText returns the literal, or the regex source for dynamic rules.
func (r Rule) PatternText() string {
	if r.Pattern != nil {
		return r.Pattern.String()
	}
	return r.Literal
}

// AcceptsArbitrary reports whether the rule pattern is built to consume a
// bracketed arbitrary value.
func (r Rule) AcceptsArbitrary() bool {
	return r.Pattern != nil && strings.Contains(r.Pattern.String(), `\[`)
}

// Variant rewrites a rule's selector and/or wraps its rendered CSS.
// Pattern, when set, replaces exact matching on Name.
type Variant struct {
	Name    string
	Pattern *regexp.Regexp

	// Selector rewrites the selector ("&:hover" style transforms). Returning
	// "" rejects the token.
	Selector func(selector string, captures []string) string

	// Wrapper is an at-rule prelude the rendered rule is nested in,
	// e.g. "@media (min-width: 640px)".
	Wrapper string

	// Wrap transforms the rendered CSS directly.
	Wrap func(css string, captures []string) string

	Plugin string
}

// BaseStyle is a preflight block contributed through AddBase.
type BaseStyle struct {
	Selector     string
	Declarations Declarations
	Plugin       string
}

// CSS renders the block on one line.
func (b BaseStyle) CSS() string {
	return b.Selector + " { " + b.Declarations.Body() + " }"
}

var colorProperties = map[string]bool{
	"color":                 true,
	"background-color":      true,
	"border-color":          true,
	"outline-color":         true,
	"text-decoration-color": true,
	"fill":                  true,
	"stroke":                true,
	"accent-color":          true,
	"caret-color":           true,
	"column-rule-color":     true,
}

// IsColorProperty reports whether prop carries a colour value that the
// opacity modifier should blend. Custom properties ending in "-color" count.
func IsColorProperty(prop string) bool {
	return colorProperties[prop] || (strings.HasPrefix(prop, "--") && strings.HasSuffix(prop, "-color"))
}
