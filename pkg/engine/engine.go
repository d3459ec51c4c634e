// Package engine resolves parsed utility tokens against a rule registry and
// renders the resulting CSS.
//
// Resolution results are memoized by canonical class string. Cached CSS
// carries a selector placeholder so that raw spellings sharing a canonical
// form ("!p-2", "p-2!") reuse one entry but keep their own selectors.
// The cache is purged whenever the registry is replaced or the theme store
// reports a new version.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/token"
)

// selectorPlaceholder stands in for the class selector in cached CSS.
const selectorPlaceholder = "\uE000"

// Options configure an Engine.
type Options struct {
	// CacheSize bounds the resolution memo. Default: 8192 entries.
	CacheSize int

	// Preflight emits the registry's base styles ahead of generated rules.
	Preflight bool

	Logger *slog.Logger
}

// ResolvedRule is the CSS produced for one class.
type ResolvedRule struct {
	Class     string      `json:"class"`
	Canonical string      `json:"canonical"`
	CSS       string      `json:"css"`
	Layer     rules.Layer `json:"layer"`
	Rule      string      `json:"rule"`
}

// Stats reports cache and fault counters.
type Stats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Faults   int64 `json:"faults"`
	Cached   int   `json:"cached"`
	Registry int   `json:"registry_rules"`
}

type entry struct {
	css   string
	layer rules.Layer
	rule  string
	ok    bool
}

// Engine is safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	registry *rules.Registry

	cache        *lru.Cache[string, entry]
	themeVersion atomic.Uint64

	// purgeMu is held exclusively while purging and shared while storing,
	// so no store lands between a purge and the generation bump.
	purgeMu sync.RWMutex
	gen     atomic.Uint64

	opts   Options
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
	faults atomic.Int64
}

// New creates an engine over registry.
func New(registry *rules.Registry, opts Options) *Engine {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 8192
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cache, err := lru.New[string, entry](opts.CacheSize)
	if err != nil {
		panic(fmt.Sprintf("failed to create resolution cache: %v", err))
	}
	e := &Engine{registry: registry, cache: cache, opts: opts, logger: opts.Logger}
	e.themeVersion.Store(registry.Theme().Version())
	return e
}

// Registry returns the registry currently in use.
func (e *Engine) Registry() *rules.Registry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry
}

// SetRegistry swaps the registry and purges the cache.
func (e *Engine) SetRegistry(registry *rules.Registry) {
	e.mu.Lock()
	e.registry = registry
	e.mu.Unlock()
	e.Invalidate()
}

// Invalidate purges every memoized resolution.
func (e *Engine) Invalidate() {
	e.purge(e.Registry().Theme().Version())
}

func (e *Engine) purge(themeVersion uint64) {
	e.purgeMu.Lock()
	defer e.purgeMu.Unlock()
	e.cache.Purge()
	e.gen.Add(1)
	e.themeVersion.Store(themeVersion)
}

// store caches ent unless the registry, the theme or the cache generation
// moved on while it was computed.
func (e *Engine) store(key string, ent entry, reg *rules.Registry, themeVersion, gen uint64) {
	e.purgeMu.RLock()
	defer e.purgeMu.RUnlock()
	if e.gen.Load() != gen || reg.Theme().Version() != themeVersion || e.Registry() != reg {
		return
	}
	// Concurrent misses may both store; the values are equal.
	e.cache.Add(key, ent)
}

// Stats returns a snapshot of engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Hits:     e.hits.Load(),
		Misses:   e.misses.Load(),
		Faults:   e.faults.Load(),
		Cached:   e.cache.Len(),
		Registry: e.Registry().Len(),
	}
}

// Resolve produces the CSS for one token. ok is false when no rule matched,
// a variant was unknown, or a modifier could not apply.
func (e *Engine) Resolve(tok token.UtilityToken) (ResolvedRule, bool) {
	gen := e.gen.Load()
	reg := e.Registry()
	version := reg.Theme().Version()
	if version != e.themeVersion.Load() {
		e.purge(version)
		gen = e.gen.Load()
	}

	key := tok.Canonical()
	ent, hit := e.cache.Get(key)
	if hit {
		e.hits.Add(1)
	} else {
		e.misses.Add(1)
		ent = e.compute(reg, tok)
		e.store(key, ent, reg, version, gen)
	}
	if !ent.ok {
		return ResolvedRule{}, false
	}
	return ResolvedRule{
		Class:     tok.Original,
		Canonical: key,
		CSS:       strings.ReplaceAll(ent.css, selectorPlaceholder, "."+token.Escape(tok.Original)),
		Layer:     ent.layer,
		Rule:      ent.rule,
	}, true
}

// ResolveClass parses and resolves one raw class string.
func (e *Engine) ResolveClass(raw string) (ResolvedRule, bool) {
	return e.Resolve(token.Parse(raw))
}

// GenerateRules resolves every class. Inputs may hold several
// whitespace-separated classes; identical raw classes are emitted once at
// their first position. Output is ordered by layer, then input order.
func (e *Engine) GenerateRules(classNames []string) []ResolvedRule {
	seen := make(map[string]bool)
	var out []ResolvedRule
	for _, name := range classNames {
		for _, raw := range strings.Fields(name) {
			if seen[raw] {
				continue
			}
			seen[raw] = true
			if r, ok := e.ResolveClass(raw); ok && r.CSS != "" {
				out = append(out, r)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Layer.Order() < out[j].Layer.Order()
	})
	return out
}

// Generate renders the CSS for classNames, one rule per line.
func (e *Engine) Generate(classNames []string) string {
	var parts []string
	if e.opts.Preflight {
		for _, base := range e.Registry().Base() {
			parts = append(parts, base.CSS())
		}
	}
	for _, r := range e.GenerateRules(classNames) {
		parts = append(parts, r.CSS)
	}
	return strings.Join(parts, "\n")
}

func (e *Engine) compute(reg *rules.Registry, tok token.UtilityToken) entry {
	decls, rule, ok := e.declarations(reg, tok)
	if !ok {
		return entry{}
	}
	if tok.Important {
		decls = markImportant(decls)
	}

	variants := make([]resolvedVariant, 0, len(tok.Variants))
	for _, name := range tok.Variants {
		v, caps, found := reg.FindVariant(name)
		if !found {
			e.logger.Debug("Unknown variant", "class", tok.Original, "variant", name)
			return entry{}
		}
		variants = append(variants, resolvedVariant{v, caps})
	}

	css, ok := e.render(tok, decls, variants)
	if !ok {
		return entry{}
	}
	return entry{css: css, layer: rule.Layer, rule: rule.Name, ok: true}
}

// declarations finds the first rule producing declarations for tok and
// applies the negative and opacity modifiers.
func (e *Engine) declarations(reg *rules.Registry, tok token.UtilityToken) (rules.Declarations, rules.Rule, bool) {
	// Fractions such as w-1/2 are utilities first, opacity modifiers second.
	if tok.Opacity != "" && !tok.HasArbitrary {
		if decls, rule, ok := e.match(reg, tok, tok.Utility+"/"+tok.Opacity); ok {
			return e.modify(tok, decls, rule, false)
		}
	}
	decls, rule, ok := e.match(reg, tok, tok.Subject())
	if !ok {
		return nil, rules.Rule{}, false
	}
	return e.modify(tok, decls, rule, tok.Opacity != "")
}

func (e *Engine) modify(tok token.UtilityToken, decls rules.Declarations, rule rules.Rule, withOpacity bool) (rules.Declarations, rules.Rule, bool) {
	if tok.Negative {
		var ok bool
		if decls, ok = negate(decls); !ok {
			return nil, rule, false
		}
	}
	if withOpacity {
		alpha, _ := tok.OpacityFraction()
		var ok bool
		if decls, ok = applyOpacity(decls, alpha); !ok {
			return nil, rule, false
		}
	}
	return decls, rule, true
}

// match walks the registry candidates for subject. A rejecting or faulting
// handler passes the subject on to the next candidate.
func (e *Engine) match(reg *rules.Registry, tok token.UtilityToken, subject string) (rules.Declarations, rules.Rule, bool) {
	for rule, caps := range reg.Candidates(subject) {
		if rule.Handler == nil {
			return rule.Properties.Clone(), rule, true
		}
		res := e.invoke(rule, rules.Match{Subject: subject, Captures: caps, Token: tok, Theme: reg.Theme()})
		switch res.Status {
		case rules.Matched:
			return res.Declarations, rule, true
		case rules.Fault:
			e.faults.Add(1)
			e.logger.Warn("Rule handler failed", "rule", rule.Name, "plugin", rule.Plugin,
				"class", tok.Original, "error", res.Err)
		}
	}
	return nil, rules.Rule{}, false
}

// invoke runs a handler, converting a panic into a Fault result.
func (e *Engine) invoke(rule rules.Rule, m rules.Match) (res rules.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = rules.Failed(fmt.Errorf("handler panicked: %v", r))
		}
	}()
	return rule.Handler(m)
}

type resolvedVariant struct {
	variant  rules.Variant
	captures []string
}

// render builds the rule text. Variants apply innermost (closest to the
// utility) first, so the first variant in the class ends up outermost.
func (e *Engine) render(tok token.UtilityToken, decls rules.Declarations, variants []resolvedVariant) (css string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.faults.Add(1)
			e.logger.Warn("Variant handler failed", "class", tok.Original, "error", r)
			css, ok = "", false
		}
	}()

	if len(decls) == 0 {
		return "", true
	}

	selector := selectorPlaceholder
	for i := len(variants) - 1; i >= 0; i-- {
		rv := variants[i]
		if rv.variant.Selector == nil {
			continue
		}
		selector = rv.variant.Selector(selector, rv.captures)
		if selector == "" {
			return "", false
		}
	}

	css = selector + " { " + decls.Body() + " }"
	for i := len(variants) - 1; i >= 0; i-- {
		rv := variants[i]
		if rv.variant.Wrapper != "" {
			css = rv.variant.Wrapper + " { " + css + " }"
		}
		if rv.variant.Wrap != nil {
			css = rv.variant.Wrap(css, rv.captures)
		}
	}
	return css, true
}
