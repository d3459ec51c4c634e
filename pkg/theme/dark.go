package theme

import (
	"fmt"
	"strings"
)

// Strategy selects how dark-scoped CSS is wrapped.
type Strategy string

const (
	// StrategyClass scopes under a ".dark" ancestor class.
	StrategyClass Strategy = "class"
	// StrategyMedia scopes under @media (prefers-color-scheme: dark).
	StrategyMedia Strategy = "media"
	// StrategySelector scopes under a custom selector, [data-theme="dark"] by default.
	StrategySelector Strategy = "selector"
	// StrategyAuto emits both the class and the media forms.
	StrategyAuto Strategy = "auto"
)

// DefaultDarkSelector is used by StrategySelector when no selector is given.
const DefaultDarkSelector = `[data-theme="dark"]`

const (
	darkClass      = ".dark"
	darkMediaQuery = "@media (prefers-color-scheme: dark)"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyClass:
		return StrategyClass, nil
	case StrategyMedia:
		return StrategyMedia, nil
	case StrategySelector:
		return StrategySelector, nil
	case StrategyAuto:
		return StrategyAuto, nil
	case "":
		return StrategyClass, nil
	default:
		return "", fmt.Errorf("unknown dark mode strategy %q", s)
	}
}

// InvertColorScale swaps shades around the midpoint (50<->950, 100<->900,
// ...); 500 and any non-standard keys, including DEFAULT, are unchanged.
// When a shade's partner is missing the shade keeps its own value.
func InvertColorScale(scale Scale) Scale {
	out := make(Scale, len(scale))
	for k, v := range scale {
		out[k] = v
	}
	last := len(Shades) - 1
	for i, shade := range Shades {
		partner := Shades[last-i]
		if v, ok := scale[partner]; ok {
			if _, has := scale[shade]; has {
				out[shade] = v
			}
		}
	}
	return out
}

// VarName returns the CSS custom property for a scale entry.
func VarName(namespace, key string) string {
	if key == DefaultKey || key == "" {
		return "--" + namespace
	}
	key = strings.NewReplacer(".", "_", "/", "_").Replace(key)
	return "--" + namespace + "-" + key
}

// ColorVar returns the custom property name for a colour shade.
func ColorVar(name, shade string) string {
	return VarName("color-"+name, shade)
}

// LightModeCSS renders every token as a custom property inside :root.
func (s *Store) LightModeCSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	b.WriteString(":root {\n")
	writeColorVars(&b, s.theme.Colors, "  ", false)
	for _, ref := range scaleRefs {
		scale := *ref.get(&s.theme)
		for _, k := range sortedKeys(scale) {
			fmt.Fprintf(&b, "  %s: %s;\n", VarName(ref.namespace, k), scale[k])
		}
	}
	b.WriteString("}")
	return b.String()
}

// DarkModeCSS renders the inverted colour tables for the given strategy.
// selector only applies to StrategySelector.
func (s *Store) DarkModeCSS(strategy Strategy, selector string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block := func(sel, indent string) string {
		var b strings.Builder
		b.WriteString(indent + sel + " {\n")
		writeColorVars(&b, s.theme.Colors, indent+"  ", true)
		b.WriteString(indent + "}")
		return b.String()
	}

	switch strategy {
	case StrategyMedia:
		return darkMediaQuery + " {\n" + block(":root", "  ") + "\n}"
	case StrategySelector:
		if selector == "" {
			selector = DefaultDarkSelector
		}
		return block(selector, "")
	case StrategyAuto:
		return block(darkClass, "") + "\n\n" + darkMediaQuery + " {\n" + block(":root", "  ") + "\n}"
	default:
		return block(darkClass, "")
	}
}

// ThemeCSS renders the light block followed by the dark block.
func (s *Store) ThemeCSS(strategy Strategy, selector string) string {
	return s.LightModeCSS() + "\n\n" + s.DarkModeCSS(strategy, selector)
}

func writeColorVars(b *strings.Builder, colors map[string]Scale, indent string, invert bool) {
	for _, name := range sortedColorNames(colors) {
		scale := colors[name]
		if invert {
			scale = InvertColorScale(scale)
		}
		for _, k := range sortedKeys(scale) {
			fmt.Fprintf(b, "%s%s: %s;\n", indent, ColorVar(name, k), scale[k])
		}
	}
}

// WrapInDarkMode rewrites one already-formed rule so that it only applies in
// dark mode:
//
//	class:    ".dark .test { color: red; }"
//	media:    "@media (prefers-color-scheme: dark) { .test { color: red; } }"
//	selector: "[data-theme=\"dark\"] .test { color: red; }"
//	auto:     class form, newline, media form
func WrapInDarkMode(css string, strategy Strategy, selector string) string {
	css = strings.TrimSpace(css)
	switch strategy {
	case StrategyMedia:
		return darkMediaQuery + " { " + css + " }"
	case StrategySelector:
		if selector == "" {
			selector = DefaultDarkSelector
		}
		return prefixSelectors(css, selector)
	case StrategyAuto:
		return prefixSelectors(css, darkClass) + "\n" + darkMediaQuery + " { " + css + " }"
	default:
		return prefixSelectors(css, darkClass)
	}
}

// prefixSelectors prepends prefix as an ancestor to every selector of rule,
// descending into at-rule wrappers.
func prefixSelectors(rule, prefix string) string {
	open := strings.IndexByte(rule, '{')
	if open < 0 {
		return prefix + " " + rule
	}
	if strings.HasPrefix(rule, "@") {
		end := strings.LastIndexByte(rule, '}')
		if end <= open {
			return rule
		}
		inner := strings.TrimSpace(rule[open+1 : end])
		return rule[:open+1] + " " + prefixSelectors(inner, prefix) + " }"
	}

	selectors := strings.Split(rule[:open], ",")
	for i, sel := range selectors {
		selectors[i] = prefix + " " + strings.TrimSpace(sel)
	}
	return strings.Join(selectors, ", ") + " " + rule[open:]
}
