// Package theme holds the design token tables used by rule handlers and
// derives CSS custom property blocks for light and dark colour schemes.
package theme

import (
	"maps"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/maruel/natural"
)

// Scale maps a token key to its CSS value ("4" -> "1rem", "500" -> "#3b82f6").
type Scale map[string]string

// DefaultKey is the scale key used for the bare token ("coral" rather than "coral-500").
const DefaultKey = "DEFAULT"

// Theme is the complete set of token tables. A zero-valued field in a
// partial theme passed to Store.Extend leaves that table untouched.
type Theme struct {
	Colors        map[string]Scale `yaml:"colors" json:"colors,omitempty"`
	Spacing       Scale            `yaml:"spacing" json:"spacing,omitempty"`
	Sizing        Scale            `yaml:"sizing" json:"sizing,omitempty"`
	FontSize      Scale            `yaml:"font_size" json:"font_size,omitempty"`
	FontWeight    Scale            `yaml:"font_weight" json:"font_weight,omitempty"`
	FontFamily    Scale            `yaml:"font_family" json:"font_family,omitempty"`
	LineHeight    Scale            `yaml:"line_height" json:"line_height,omitempty"`
	LetterSpacing Scale            `yaml:"letter_spacing" json:"letter_spacing,omitempty"`
	Radius        Scale            `yaml:"radius" json:"radius,omitempty"`
	Shadow        Scale            `yaml:"shadow" json:"shadow,omitempty"`
	Duration      Scale            `yaml:"duration" json:"duration,omitempty"`
	Easing        Scale            `yaml:"easing" json:"easing,omitempty"`
	ZIndex        Scale            `yaml:"z_index" json:"z_index,omitempty"`
	Opacity       Scale            `yaml:"opacity" json:"opacity,omitempty"`
	Breakpoints   Scale            `yaml:"breakpoints" json:"breakpoints,omitempty"`
	Perspective   Scale            `yaml:"perspective" json:"perspective,omitempty"`
	Blur          Scale            `yaml:"blur" json:"blur,omitempty"`
}

// scaleRef pairs a scale's lookup name with its CSS variable namespace.
type scaleRef struct {
	name      string
	namespace string
	get       func(*Theme) *Scale
}

// scaleRefs lists every non-colour scale in emission order.
var scaleRefs = []scaleRef{
	{"spacing", "spacing", func(t *Theme) *Scale { return &t.Spacing }},
	{"sizing", "size", func(t *Theme) *Scale { return &t.Sizing }},
	{"fontSize", "text", func(t *Theme) *Scale { return &t.FontSize }},
	{"fontWeight", "font-weight", func(t *Theme) *Scale { return &t.FontWeight }},
	{"fontFamily", "font", func(t *Theme) *Scale { return &t.FontFamily }},
	{"lineHeight", "leading", func(t *Theme) *Scale { return &t.LineHeight }},
	{"letterSpacing", "tracking", func(t *Theme) *Scale { return &t.LetterSpacing }},
	{"radius", "radius", func(t *Theme) *Scale { return &t.Radius }},
	{"shadow", "shadow", func(t *Theme) *Scale { return &t.Shadow }},
	{"duration", "duration", func(t *Theme) *Scale { return &t.Duration }},
	{"easing", "ease", func(t *Theme) *Scale { return &t.Easing }},
	{"zIndex", "z", func(t *Theme) *Scale { return &t.ZIndex }},
	{"opacity", "opacity", func(t *Theme) *Scale { return &t.Opacity }},
	{"breakpoints", "breakpoint", func(t *Theme) *Scale { return &t.Breakpoints }},
	{"perspective", "perspective", func(t *Theme) *Scale { return &t.Perspective }},
	{"blur", "blur", func(t *Theme) *Scale { return &t.Blur }},
}

// namespaceToScale maps CSS variable namespaces back to scale names; used
// when reading CSS-first configuration.
var namespaceToScale = func() map[string]string {
	m := make(map[string]string, len(scaleRefs))
	for _, ref := range scaleRefs {
		m[ref.namespace] = ref.name
	}
	return m
}()

// ScaleForNamespace returns the scale name for a CSS variable namespace
// ("spacing" -> "spacing", "text" -> "fontSize").
func ScaleForNamespace(ns string) (string, bool) {
	name, ok := namespaceToScale[ns]
	return name, ok
}

// Clone returns a deep copy of t.
func (t Theme) Clone() Theme {
	out := t
	if t.Colors != nil {
		out.Colors = make(map[string]Scale, len(t.Colors))
		for name, s := range t.Colors {
			out.Colors[name] = maps.Clone(s)
		}
	}
	for _, ref := range scaleRefs {
		p := ref.get(&out)
		*p = maps.Clone(*p)
	}
	return out
}

// SetScale stores value under key in the named scale. Colour scales use
// the name "colors.<color>". Unknown scale names return false.
func (t *Theme) SetScale(scale, key, value string) bool {
	if color, ok := strings.CutPrefix(scale, "colors."); ok {
		if t.Colors == nil {
			t.Colors = make(map[string]Scale)
		}
		if t.Colors[color] == nil {
			t.Colors[color] = make(Scale)
		}
		t.Colors[color][key] = value
		return true
	}
	for _, ref := range scaleRefs {
		if ref.name == scale {
			p := ref.get(t)
			if *p == nil {
				*p = make(Scale)
			}
			(*p)[key] = value
			return true
		}
	}
	return false
}

// Store is a concurrency-safe, versioned holder of a Theme. Reads take a
// shared lock; Extend takes the exclusive lock and bumps Version so that
// dependent caches can invalidate.
type Store struct {
	mu      sync.RWMutex
	theme   Theme
	version atomic.Uint64
}

// NewStore creates a store holding a copy of t.
func NewStore(t Theme) *Store {
	return &Store{theme: t.Clone()}
}

// NewDefaultStore creates a store holding the built-in default theme.
func NewDefaultStore() *Store {
	return NewStore(Default())
}

// Version returns a counter incremented on every Extend.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Snapshot returns a deep copy of the current theme.
func (s *Store) Snapshot() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme.Clone()
}

// Extend merges partial into the theme key by key.
func (s *Store) Extend(partial Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(partial.Colors) > 0 && s.theme.Colors == nil {
		s.theme.Colors = make(map[string]Scale, len(partial.Colors))
	}
	for name, scale := range partial.Colors {
		dst := s.theme.Colors[name]
		if dst == nil {
			dst = make(Scale, len(scale))
			s.theme.Colors[name] = dst
		}
		maps.Copy(dst, scale)
	}
	for _, ref := range scaleRefs {
		src := *ref.get(&partial)
		if len(src) == 0 {
			continue
		}
		dst := ref.get(&s.theme)
		if *dst == nil {
			*dst = make(Scale, len(src))
		}
		maps.Copy(*dst, src)
	}
	s.version.Add(1)
}

// Color returns the value for a colour and shade. An empty shade selects DEFAULT.
func (s *Store) Color(name, shade string) (string, bool) {
	if shade == "" {
		shade = DefaultKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.theme.Colors[name][shade]
	return v, ok
}

// ResolveColor resolves a utility colour expression such as "blue-500",
// "coral" or "black" against the colour tables.
func (s *Store) ResolveColor(expr string) (string, bool) {
	if i := strings.LastIndexByte(expr, '-'); i > 0 {
		if v, ok := s.Color(expr[:i], expr[i+1:]); ok {
			return v, true
		}
	}
	return s.Color(expr, "")
}

// Spacing returns a spacing token.
func (s *Store) Spacing(key string) (string, bool) {
	return s.Lookup("spacing", key)
}

// Lookup returns the value for key in the named scale ("spacing", "radius",
// "fontSize", ...). An empty key selects DEFAULT.
func (s *Store) Lookup(scale, key string) (string, bool) {
	if key == "" {
		key = DefaultKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ref := range scaleRefs {
		if ref.name == scale {
			v, ok := (*ref.get(&s.theme))[key]
			return v, ok
		}
	}
	return "", false
}

// Keys returns the keys of a scale in natural order.
func (s *Store) Keys(scale string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ref := range scaleRefs {
		if ref.name == scale {
			return sortedKeys(*ref.get(&s.theme))
		}
	}
	return nil
}

// Get resolves a dotted theme path such as "colors.blue.500", "colors.coral"
// or "spacing.4".
func (s *Store) Get(path string) (string, bool) {
	parts := strings.Split(path, ".")
	if len(parts) == 0 {
		return "", false
	}
	if parts[0] == "colors" {
		switch len(parts) {
		case 2:
			return s.Color(parts[1], "")
		case 3:
			return s.Color(parts[1], parts[2])
		default:
			return "", false
		}
	}
	// Keys such as "0.5" contain dots; rejoin everything after the scale name.
	return s.Lookup(parts[0], strings.Join(parts[1:], "."))
}

// sortedKeys orders DEFAULT first, standard shades in shade order, then
// remaining keys naturally ("2" before "10").
func sortedKeys(s Scale) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := keyRank(keys[i]), keyRank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return natural.Less(keys[i], keys[j])
	})
	return keys
}

func keyRank(k string) int {
	if k == DefaultKey {
		return -1
	}
	for i, shade := range Shades {
		if shade == k {
			return i
		}
	}
	return len(Shades)
}

// sortedColorNames returns colour names in natural order.
func sortedColorNames(colors map[string]Scale) []string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}
