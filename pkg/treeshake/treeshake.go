// Package treeshake removes rule definitions that no class in a usage list
// can reach, for production builds.
package treeshake

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"

	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/token"
)

// bytesPerRule approximates the memory one registered rule costs.
const bytesPerRule = 100

// Options control which rules survive shaking.
type Options struct {
	// Enabled turns shaking on. Disabled shaking keeps every rule.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// KeepDynamic keeps rules built to accept arbitrary "[...]" values.
	KeepDynamic bool `yaml:"keep_dynamic" json:"keep_dynamic"`

	// KeepVariants skips filtering entirely.
	KeepVariants bool `yaml:"keep_variants" json:"keep_variants"`

	// Include and Exclude hold substrings or doublestar globs matched
	// against rule names and pattern text. Include wins over Exclude.
	Include []string `yaml:"include" json:"include,omitempty" validate:"dive,glob"`
	Exclude []string `yaml:"exclude" json:"exclude,omitempty" validate:"dive,glob"`
}

// DefaultOptions enables shaking and keeps arbitrary-value rules.
func DefaultOptions() Options {
	return Options{Enabled: true, KeepDynamic: true}
}

// Usage is a sorted view of a UsageSet.
type Usage struct {
	Classes  []string `json:"classes"`
	Variants []string `json:"variants"`
}

// Analysis summarizes a shaking run.
type Analysis struct {
	TotalRules    int     `json:"total_rules"`
	UsedRules     int     `json:"used_rules"`
	UnusedRules   int     `json:"unused_rules"`
	Effectiveness float64 `json:"effectiveness"`
	MemorySaved   int     `json:"memory_saved"`
}

// Shaker holds the usage set of the last AnalyzeUsage call.
type Shaker struct {
	opts   Options
	logger *slog.Logger

	mu       sync.RWMutex
	classes  map[string]struct{}
	variants map[string]struct{}
}

// New creates a shaker.
func New(opts Options, logger *slog.Logger) *Shaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shaker{
		opts:     opts,
		logger:   logger,
		classes:  make(map[string]struct{}),
		variants: make(map[string]struct{}),
	}
}

// Options returns the shaker configuration.
func (s *Shaker) Options() Options {
	return s.opts
}

// AnalyzeUsage replaces the usage set with the classes in rawClasses.
// Entries may hold several whitespace-separated classes. Each class adds
// its variant prefixes to the variant set and its base utility, without
// flags, to the class set. A class with a "/n" modifier also adds the
// "utility/n" form so fraction utilities stay reachable.
func (s *Shaker) AnalyzeUsage(rawClasses []string) {
	classes := make(map[string]struct{}, len(rawClasses))
	variants := make(map[string]struct{})
	for _, entry := range rawClasses {
		for _, raw := range strings.Fields(entry) {
			tok := token.Parse(raw)
			for _, v := range tok.Variants {
				variants[v] = struct{}{}
			}
			if subject := tok.Subject(); subject != "" {
				classes[subject] = struct{}{}
			}
			if tok.Opacity != "" && !tok.HasArbitrary {
				classes[tok.Utility+"/"+tok.Opacity] = struct{}{}
			}
		}
	}

	s.mu.Lock()
	s.classes, s.variants = classes, variants
	s.mu.Unlock()
}

// Usage returns the current usage set in natural order.
func (s *Shaker) Usage() Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Usage{Classes: sortedSet(s.classes), Variants: sortedSet(s.variants)}
}

// ShouldKeepRule decides whether r survives against the current usage set.
//
// Order: disabled keeps all; include keeps; exclude drops; arbitrary-value
// rules are kept when KeepDynamic is set; otherwise the rule must be
// reachable from some used class (literal as substring, pattern by match).
func (s *Shaker) ShouldKeepRule(r rules.Rule) bool {
	if !s.opts.Enabled {
		return true
	}
	if matchesAny(s.opts.Include, r) {
		return true
	}
	if matchesAny(s.opts.Exclude, r) {
		return false
	}
	if s.opts.KeepDynamic && r.AcceptsArbitrary() {
		return true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for class := range s.classes {
		if r.IsStatic() {
			if strings.Contains(class, r.Literal) {
				return true
			}
			continue
		}
		if r.Pattern.MatchString(class) {
			return true
		}
	}
	return false
}

// Shake analyzes usedClasses and returns the rules to keep, in input order.
func (s *Shaker) Shake(rs []rules.Rule, usedClasses []string) []rules.Rule {
	s.AnalyzeUsage(usedClasses)
	if s.opts.KeepVariants {
		return append([]rules.Rule(nil), rs...)
	}
	kept := make([]rules.Rule, 0, len(rs))
	for _, r := range rs {
		if s.ShouldKeepRule(r) {
			kept = append(kept, r)
		}
	}
	s.logger.Debug("Tree-shaking complete", "total", len(rs), "kept", len(kept))
	return kept
}

// ShakeRegistry returns reg restricted to the rules usedClasses can reach.
func (s *Shaker) ShakeRegistry(reg *rules.Registry, usedClasses []string) *rules.Registry {
	return reg.WithRules(s.Shake(reg.Rules(), usedClasses))
}

// Analyze reports how many rules a Shake over the same input would keep.
func (s *Shaker) Analyze(rs []rules.Rule, usedClasses []string) Analysis {
	used := len(s.Shake(rs, usedClasses))
	a := Analysis{TotalRules: len(rs), UsedRules: used, UnusedRules: len(rs) - used}
	if a.TotalRules > 0 {
		a.Effectiveness = float64(a.UsedRules) / float64(a.TotalRules) * 100
	}
	a.MemorySaved = a.UnusedRules * bytesPerRule
	return a
}

// TreeShakeRules shakes rs with a one-off shaker. nil opts means DefaultOptions.
func TreeShakeRules(rs []rules.Rule, usedClasses []string, opts *Options) []rules.Rule {
	return New(optsOrDefault(opts), nil).Shake(rs, usedClasses)
}

// AnalyzeRuleUsage analyzes rs with a one-off shaker. nil opts means DefaultOptions.
func AnalyzeRuleUsage(rs []rules.Rule, usedClasses []string, opts *Options) Analysis {
	return New(optsOrDefault(opts), nil).Analyze(rs, usedClasses)
}

func optsOrDefault(opts *Options) Options {
	if opts == nil {
		return DefaultOptions()
	}
	return *opts
}

func matchesAny(patterns []string, r rules.Rule) bool {
	for _, p := range patterns {
		for _, text := range []string{r.Name, r.PatternText()} {
			if text == "" {
				continue
			}
			if strings.Contains(text, p) {
				return true
			}
			if ok, err := doublestar.Match(p, text); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}
