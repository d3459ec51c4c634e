package rules

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"go.uber.org/multierr"

	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/token"
)

// Builder is the install surface handed to plugins.
//
// Registration errors (a rule with neither Literal nor Pattern, a plugin with
// invalid metadata, a panicking Install) do not abort registration; they are
// collected and returned by Build.
type Builder struct {
	store    *theme.Store
	config   map[string]any
	logger   *slog.Logger
	plugin   string
	rules    []Rule
	variants []Variant
	base     []BaseStyle
	plugins  []PluginInfo
	errs     error
}

// NewBuilder creates a builder resolving theme values against store.
// config backs Builder.Config lookups and may be nil.
func NewBuilder(store *theme.Store, config map[string]any, logger *slog.Logger) *Builder {
	if store == nil {
		store = theme.NewDefaultStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{store: store, config: config, logger: logger}
}

// Use installs plugins in order.
func (b *Builder) Use(plugins ...Plugin) *Builder {
	for _, p := range plugins {
		b.install(p)
	}
	return b
}

func (b *Builder) install(p Plugin) {
	if err := validatePlugin(p); err != nil {
		b.errs = multierr.Append(b.errs, err)
		return
	}

	nRules, nVariants, nBase := len(b.rules), len(b.variants), len(b.base)
	prev := b.plugin
	b.plugin = p.Name()
	defer func() { b.plugin = prev }()

	defer func() {
		if r := recover(); r != nil {
			// Contributions of a plugin that failed halfway are discarded.
			b.rules, b.variants, b.base = b.rules[:nRules], b.variants[:nVariants], b.base[:nBase]
			err := fmt.Errorf("plugin %q: install panicked: %v", p.Name(), r)
			b.logger.Warn("Plugin install failed", "plugin", p.Name(), "error", err)
			b.errs = multierr.Append(b.errs, err)
		}
	}()

	p.Install(b)

	b.plugins = append(b.plugins, PluginInfo{
		Name:     p.Name(),
		Version:  p.Version(),
		Rules:    len(b.rules) - nRules,
		Variants: len(b.variants) - nVariants,
	})
	b.logger.Debug("Plugin installed", "plugin", p.Name(), "version", p.Version(),
		"rules", len(b.rules)-nRules, "variants", len(b.variants)-nVariants)
}

// AddRule registers a rule in the utilities layer unless the rule sets one.
func (b *Builder) AddRule(r Rule) {
	switch {
	case r.Literal == "" && r.Pattern == nil:
		b.errs = multierr.Append(b.errs, fmt.Errorf("rule %q: literal or pattern required", r.Name))
		return
	case r.Literal != "" && r.Pattern != nil:
		b.errs = multierr.Append(b.errs, fmt.Errorf("rule %q: literal and pattern are exclusive", r.Name))
		return
	case r.Handler == nil && r.Properties == nil:
		b.errs = multierr.Append(b.errs, fmt.Errorf("rule %q: properties or handler required", r.PatternText()))
		return
	}
	if r.Name == "" {
		r.Name = r.PatternText()
	}
	r.Plugin = b.plugin
	b.rules = append(b.rules, r)
}

// AddVariant registers a variant.
func (b *Builder) AddVariant(v Variant) {
	if v.Name == "" && v.Pattern == nil {
		b.errs = multierr.Append(b.errs, fmt.Errorf("variant: name or pattern required"))
		return
	}
	if v.Selector == nil && v.Wrapper == "" && v.Wrap == nil {
		b.errs = multierr.Append(b.errs, fmt.Errorf("variant %q: selector, wrapper or wrap required", v.Name))
		return
	}
	v.Plugin = b.plugin
	b.variants = append(b.variants, v)
}

// AddUtility registers a static utility class.
func (b *Builder) AddUtility(name string, decls Declarations) {
	b.AddRule(Rule{Name: name, Literal: name, Properties: decls, Layer: LayerUtilities})
}

// AddComponent registers a static class in the components layer.
func (b *Builder) AddComponent(name string, decls Declarations) {
	b.AddRule(Rule{Name: name, Literal: name, Properties: decls, Layer: LayerComponents})
}

// AddBase registers a preflight block emitted before all generated rules.
func (b *Builder) AddBase(selector string, decls Declarations) {
	if strings.TrimSpace(selector) == "" {
		b.errs = multierr.Append(b.errs, fmt.Errorf("base style: selector required"))
		return
	}
	b.base = append(b.base, BaseStyle{Selector: selector, Declarations: decls, Plugin: b.plugin})
}

// ExtendTheme merges partial into the shared theme store.
func (b *Builder) ExtendTheme(partial theme.Theme) {
	b.store.Extend(partial)
}

// Theme resolves a dotted theme path ("colors.blue.500", "spacing.4").
// Missing paths return "".
func (b *Builder) Theme(path string) string {
	v, _ := b.store.Get(path)
	return v
}

// Config resolves a dotted path in the configuration map.
func (b *Builder) Config(path string) (any, bool) {
	var cur any = b.config
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// E escapes a class name for use in a selector.
func (b *Builder) E(s string) string {
	return token.Escape(s)
}

// Store returns the theme store rules resolve against.
func (b *Builder) Store() *theme.Store {
	return b.store
}

// Build freezes the registrations into a Registry. The registry is returned
// even when err is non-nil; it holds every contribution that was valid.
func (b *Builder) Build() (*Registry, error) {
	reg := newRegistry(b.store, b.rules, b.variants)
	reg.base = append([]BaseStyle(nil), b.base...)
	reg.plugins = append([]PluginInfo(nil), b.plugins...)
	return reg, b.errs
}

// Registry is the immutable, read-only result of plugin installation.
// It is safe for concurrent use.
//
// Rule lookup has two tiers: literal rules are dispatched through an exact
// match table, pattern rules are scanned in registration order afterwards.
// Within a tier the first registered rule wins.
type Registry struct {
	store *theme.Store

	rules   []Rule
	static  map[string]int
	dynamic []int

	variants        []Variant
	staticVariants  map[string]int
	dynamicVariants []int

	base    []BaseStyle
	plugins []PluginInfo
}

func newRegistry(store *theme.Store, rules []Rule, variants []Variant) *Registry {
	reg := &Registry{
		store:          store,
		rules:          append([]Rule(nil), rules...),
		static:         make(map[string]int, len(rules)),
		variants:       append([]Variant(nil), variants...),
		staticVariants: make(map[string]int, len(variants)),
	}
	for i, r := range reg.rules {
		if r.IsStatic() {
			if _, dup := reg.static[r.Literal]; !dup {
				reg.static[r.Literal] = i
			}
			continue
		}
		reg.dynamic = append(reg.dynamic, i)
	}
	for i, v := range reg.variants {
		if v.Pattern == nil {
			if _, dup := reg.staticVariants[v.Name]; !dup {
				reg.staticVariants[v.Name] = i
			}
			continue
		}
		reg.dynamicVariants = append(reg.dynamicVariants, i)
	}
	return reg
}

// Theme returns the store shared by the registry's rule handlers.
func (r *Registry) Theme() *theme.Store {
	return r.store
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Rules returns the rules in registration order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Variants returns the variants in registration order.
func (r *Registry) Variants() []Variant {
	return append([]Variant(nil), r.variants...)
}

// Base returns the preflight blocks.
func (r *Registry) Base() []BaseStyle {
	return append([]BaseStyle(nil), r.base...)
}

// Plugins returns the installed plugins in install order.
func (r *Registry) Plugins() []PluginInfo {
	return append([]PluginInfo(nil), r.plugins...)
}

// WithRules returns a registry sharing variants, base styles and theme with r
// but holding only rules. Used to apply a tree-shaken rule set.
func (r *Registry) WithRules(rules []Rule) *Registry {
	reg := newRegistry(r.store, rules, r.variants)
	reg.base = r.base
	reg.plugins = r.plugins
	return reg
}

// Candidates yields every rule matching subject with its captures, the
// static hit first and then pattern rules in registration order.
func (r *Registry) Candidates(subject string) iter.Seq2[Rule, []string] {
	return func(yield func(Rule, []string) bool) {
		if i, ok := r.static[subject]; ok {
			if !yield(r.rules[i], []string{subject}) {
				return
			}
		}
		for _, i := range r.dynamic {
			m := r.rules[i].Pattern.FindStringSubmatch(subject)
			if m == nil {
				continue
			}
			if !yield(r.rules[i], m) {
				return
			}
		}
	}
}

// FindVariant looks up a variant by its prefix name.
func (r *Registry) FindVariant(name string) (Variant, []string, bool) {
	if i, ok := r.staticVariants[name]; ok {
		return r.variants[i], []string{name}, true
	}
	for _, i := range r.dynamicVariants {
		if m := r.variants[i].Pattern.FindStringSubmatch(name); m != nil {
			return r.variants[i], m, true
		}
	}
	return Variant{}, nil, false
}
