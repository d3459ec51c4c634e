package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/multierr"

	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/theme"
)

// CSSPluginName is the plugin name CSS-first definitions install under.
const CSSPluginName = "css-config"

// CSSUtility is an @utility definition. Functional utilities ("tab-*")
// substitute their value into --value(...) calls.
type CSSUtility struct {
	Name         string
	Functional   bool
	Declarations rules.Declarations
}

// CSSVariant is an @variant / @custom-variant definition. Exactly one of
// Selector ("&" stands for the class selector) and Wrapper is set.
type CSSVariant struct {
	Name     string
	Selector string
	Wrapper  string
}

// CSSConfig is the well-formed part of a CSS-first configuration.
type CSSConfig struct {
	Theme     theme.Theme
	Utilities []CSSUtility
	Variants  []CSSVariant

	// Diagnostics combines every warning raised while parsing; nil when the
	// source was clean. Split it with multierr.Errors or Warnings.
	Diagnostics error
}

// Warnings returns the diagnostics as strings.
func (c *CSSConfig) Warnings() []string {
	errs := multierr.Errors(c.Diagnostics)
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

func (c *CSSConfig) warn(format string, args ...any) {
	c.Diagnostics = multierr.Append(c.Diagnostics, fmt.Errorf(format, args...))
}

// LoadCSS reads and parses a CSS-first configuration file. Only the read can
// fail; parse problems are reported through Diagnostics.
func LoadCSS(path string, logger *slog.Logger) (*CSSConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg := ParseCSS(string(data))
	if logger == nil {
		logger = slog.Default()
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("CSS config warning", "file", path, "warning", w)
	}
	return cfg, nil
}

var (
	utilityName = regexp.MustCompile(`^-?[a-z][a-z0-9-]*(-\*)?$`)
	variantName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// ParseCSS extracts @theme, @utility and @variant blocks from src. Anything
// else, and any malformed piece, becomes a warning.
func ParseCSS(src string) *CSSConfig {
	cfg := &CSSConfig{}
	p := css.NewParser(parse.NewInputString(src), false)

	lastErr := -1
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if err == nil || errors.Is(err, io.EOF) {
				return cfg
			}
			// The parser resynchronises on the next token; stop if it cannot.
			if p.Offset() == lastErr {
				return cfg
			}
			lastErr = p.Offset()
			cfg.warn("syntax: %v", err)

		case css.BeginAtRuleGrammar:
			name := string(data)
			prelude := joinValues(p.Values())
			switch name {
			case "@theme", "@utility", "@variant", "@custom-variant":
				body, ok := collectBody(p)
				if !ok {
					cfg.warn("%s %s: unterminated block", name, prelude)
					return cfg
				}
				switch name {
				case "@theme":
					cfg.parseTheme(body)
				case "@utility":
					cfg.parseUtility(prelude, body)
				default:
					cfg.parseVariantBlock(prelude, body)
				}
			default:
				skipBlock(p)
				cfg.warn("%s: unsupported at-rule ignored", name)
			}

		case css.AtRuleGrammar:
			name := string(data)
			prelude := joinValues(p.Values())
			switch name {
			case "@variant", "@custom-variant":
				cfg.parseVariantShorthand(prelude)
			default:
				cfg.warn("%s: unsupported at-rule ignored", name)
			}

		case css.BeginRulesetGrammar:
			selector := string(data) + joinValues(p.Values())
			skipBlock(p)
			cfg.warn("ruleset %q ignored; wrap utilities in @utility", strings.TrimSpace(selector))
		}
	}
}

// collectBody concatenates the raw tokens of an unknown at-rule block.
func collectBody(p *css.Parser) (string, bool) {
	var b strings.Builder
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.TokenGrammar:
			b.Write(data)
		case css.EndAtRuleGrammar:
			return b.String(), true
		case css.ErrorGrammar:
			return b.String(), false
		}
	}
}

func skipBlock(p *css.Parser) {
	depth, lastErr := 1, -1
	for depth > 0 {
		gt, _, _ := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if err := p.Err(); err == nil || errors.Is(err, io.EOF) || p.Offset() == lastErr {
				return
			}
			lastErr = p.Offset()
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func joinValues(tokens []css.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			b.WriteByte(' ')
			continue
		}
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}

// declarations parses a declaration list, skipping malformed entries.
func declarations(body string) (rules.Declarations, error) {
	p := css.NewParser(parse.NewInputString(body), true)

	var decls rules.Declarations
	var errs error
	lastErr := -1
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if err == nil || errors.Is(err, io.EOF) || p.Offset() == lastErr {
				return decls, errs
			}
			lastErr = p.Offset()
			errs = multierr.Append(errs, err)
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			value := joinValues(p.Values())
			if value == "" {
				errs = multierr.Append(errs, fmt.Errorf("declaration %q has no value", string(data)))
				continue
			}
			decls = append(decls, rules.Declaration{Property: string(data), Value: value})
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			errs = multierr.Append(errs, fmt.Errorf("nested block %q is not supported", string(data)))
			skipBlock(p)
		}
	}
}

func (c *CSSConfig) parseTheme(body string) {
	decls, err := declarations(body)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			c.warn("@theme: %v", e)
		}
	}
	for _, d := range decls {
		name, ok := strings.CutPrefix(d.Property, "--")
		if !ok {
			c.warn("@theme: %s is not a custom property", d.Property)
			continue
		}
		scale, key, ok := themeKey(name)
		if !ok {
			c.warn("@theme: unknown namespace in --%s", name)
			continue
		}
		c.Theme.SetScale(scale, key, d.Value)
	}
}

// themeKey maps "color-brand-500" to ("colors.brand", "500") and
// "font-weight-bold" to ("fontWeight", "bold"). The longest known namespace
// prefix wins.
func themeKey(name string) (scale, key string, ok bool) {
	if rest, found := strings.CutPrefix(name, "color-"); found {
		if rest == "" {
			return "", "", false
		}
		if i := strings.LastIndexByte(rest, '-'); i > 0 && isDigits(rest[i+1:]) {
			return "colors." + rest[:i], rest[i+1:], true
		}
		return "colors." + rest, theme.DefaultKey, true
	}
	for i := len(name); i > 0; i = strings.LastIndexByte(name[:i], '-') {
		if s, found := theme.ScaleForNamespace(name[:i]); found {
			key := strings.TrimPrefix(name[i:], "-")
			if key == "" {
				key = theme.DefaultKey
			}
			return s, key, true
		}
	}
	return "", "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *CSSConfig) parseUtility(prelude, body string) {
	name := prelude
	if !utilityName.MatchString(name) {
		c.warn("@utility %q: invalid name", name)
		return
	}
	decls, err := declarations(body)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			c.warn("@utility %s: %v", name, e)
		}
	}
	if len(decls) == 0 {
		c.warn("@utility %s: no declarations", name)
		return
	}
	u := CSSUtility{Name: name, Declarations: decls}
	if base, ok := strings.CutSuffix(name, "-*"); ok {
		u.Name, u.Functional = base, true
	}
	c.Utilities = append(c.Utilities, u)
}

// parseVariantShorthand handles "@variant name (selector);".
func (c *CSSConfig) parseVariantShorthand(prelude string) {
	name, rest, _ := strings.Cut(prelude, " ")
	rest = strings.TrimSpace(rest)
	if !variantName.MatchString(name) {
		c.warn("@variant %q: invalid name", name)
		return
	}
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	c.addVariant(name, rest)
}

// parseVariantBlock handles "@variant name { <selector or at-rule> { @slot; } }".
func (c *CSSConfig) parseVariantBlock(prelude, body string) {
	if !variantName.MatchString(prelude) {
		c.warn("@variant %q: invalid name", prelude)
		return
	}
	head, inner, found := strings.Cut(body, "{")
	if !found {
		c.warn("@variant %s: expected a nested block", prelude)
		return
	}
	if !strings.Contains(inner, "@slot") {
		c.warn("@variant %s: block has no @slot", prelude)
		return
	}
	c.addVariant(prelude, strings.Join(strings.Fields(head), " "))
}

func (c *CSSConfig) addVariant(name, form string) {
	switch {
	case strings.HasPrefix(form, "@"):
		c.Variants = append(c.Variants, CSSVariant{Name: name, Wrapper: form})
	case strings.Contains(form, "&"):
		c.Variants = append(c.Variants, CSSVariant{Name: name, Selector: form})
	default:
		c.warn("@variant %s: %q is neither a selector with & nor an at-rule", name, form)
	}
}

// Plugin returns the definitions as a rules.Plugin.
func (c *CSSConfig) Plugin() rules.Plugin {
	return CSSPlugin{cfg: c}
}

// CSSPlugin installs a CSSConfig.
type CSSPlugin struct {
	cfg *CSSConfig
}

func (p CSSPlugin) Name() string    { return CSSPluginName }
func (p CSSPlugin) Version() string { return "1.0.0" }

// Install extends the theme and registers utilities and variants.
func (p CSSPlugin) Install(b *rules.Builder) {
	b.ExtendTheme(p.cfg.Theme)

	for _, u := range p.cfg.Utilities {
		if !u.Functional {
			b.AddUtility(u.Name, u.Declarations.Clone())
			continue
		}
		decls := u.Declarations.Clone()
		b.AddRule(rules.Rule{
			Name:    u.Name + "-*",
			Pattern: regexp.MustCompile(`^` + regexp.QuoteMeta(u.Name) + `-(.+)$`),
			Handler: func(m rules.Match) rules.Result {
				return functionalValue(decls, m)
			},
		})
	}

	for _, v := range p.cfg.Variants {
		if v.Wrapper != "" {
			b.AddVariant(rules.Variant{Name: v.Name, Wrapper: v.Wrapper})
			continue
		}
		form := v.Selector
		b.AddVariant(rules.Variant{
			Name: v.Name,
			Selector: func(sel string, _ []string) string {
				return strings.ReplaceAll(form, "&", sel)
			},
		})
	}
}

var valueCall = regexp.MustCompile(`--value\(([^()]*)\)`)

// functionalValue substitutes the captured value into every --value(...)
// call. A value no candidate accepts rejects the class.
func functionalValue(decls rules.Declarations, m rules.Match) rules.Result {
	raw := m.Group(1)
	arbitrary, isArbitrary := "", false
	if strings.HasPrefix(raw, "[") {
		if !m.Token.HasArbitrary || m.Token.Arbitrary == "" {
			return rules.Reject()
		}
		arbitrary, isArbitrary = m.Token.Arbitrary, true
	}

	out := make(rules.Declarations, 0, len(decls))
	for _, d := range decls {
		ok := true
		value := valueCall.ReplaceAllStringFunc(d.Value, func(call string) string {
			args := valueCall.FindStringSubmatch(call)[1]
			if isArbitrary {
				if !acceptsArbitrary(args) {
					ok = false
				}
				return arbitrary
			}
			v, found := resolveValue(args, raw, m.Theme)
			if !found {
				ok = false
			}
			return v
		})
		if !ok {
			return rules.Reject()
		}
		out = append(out, rules.Declaration{Property: d.Property, Value: value})
	}
	return rules.Emit(out)
}

func acceptsArbitrary(args string) bool {
	for _, cand := range strings.Split(args, ",") {
		if strings.HasPrefix(strings.TrimSpace(cand), "[") {
			return true
		}
	}
	return false
}

// resolveValue tries each comma-separated candidate of a --value() call:
// theme namespaces ("--tab-size-*") and bare types (integer, number,
// percentage). Arbitrary "[...]" values are handled by the caller.
func resolveValue(args, raw string, store *theme.Store) (string, bool) {
	for _, cand := range strings.Split(args, ",") {
		cand = strings.TrimSpace(cand)
		switch {
		case strings.HasPrefix(cand, "--") && strings.HasSuffix(cand, "-*"):
			if store == nil {
				continue
			}
			ns := strings.TrimSuffix(strings.TrimPrefix(cand, "--"), "-*")
			if ns == "color" {
				if v, ok := store.ResolveColor(raw); ok {
					return v, true
				}
				continue
			}
			if scale, ok := theme.ScaleForNamespace(ns); ok {
				if v, ok := store.Lookup(scale, raw); ok {
					return v, true
				}
			}
		case cand == "integer":
			if isDigits(raw) {
				return raw, true
			}
		case cand == "number":
			if _, err := strconv.ParseFloat(raw, 64); err == nil {
				return raw, true
			}
		case cand == "percentage":
			if n, ok := strings.CutSuffix(raw, "%"); ok {
				if _, err := strconv.ParseFloat(n, 64); err == nil {
					return raw, true
				}
			}
		}
	}
	return "", false
}
