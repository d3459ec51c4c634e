package preset

import (
	"regexp"
	"strings"

	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/token"
)

// pseudoClasses maps variant names to the selector suffix they append.
var pseudoClasses = map[string]string{
	"hover":             ":hover",
	"focus":             ":focus",
	"focus-visible":     ":focus-visible",
	"focus-within":      ":focus-within",
	"active":            ":active",
	"visited":           ":visited",
	"target":            ":target",
	"disabled":          ":disabled",
	"enabled":           ":enabled",
	"checked":           ":checked",
	"indeterminate":     ":indeterminate",
	"required":          ":required",
	"optional":          ":optional",
	"valid":             ":valid",
	"invalid":           ":invalid",
	"read-only":         ":read-only",
	"placeholder-shown": ":placeholder-shown",
	"autofill":          ":autofill",
	"empty":             ":empty",
	"first":             ":first-child",
	"last":              ":last-child",
	"only":              ":only-child",
	"odd":               ":nth-child(odd)",
	"even":              ":nth-child(even)",
	"first-of-type":     ":first-of-type",
	"last-of-type":      ":last-of-type",
	"open":              ":is([open], :popover-open)",
}

var pseudoElements = map[string]string{
	"before":       "::before",
	"after":        "::after",
	"placeholder":  "::placeholder",
	"selection":    "::selection",
	"marker":       "::marker",
	"file":         "::file-selector-button",
	"first-letter": "::first-letter",
	"first-line":   "::first-line",
	"backdrop":     "::backdrop",
}

var mediaVariants = map[string]string{
	"motion-safe":   "@media (prefers-reduced-motion: no-preference)",
	"motion-reduce": "@media (prefers-reduced-motion: reduce)",
	"contrast-more": "@media (prefers-contrast: more)",
	"contrast-less": "@media (prefers-contrast: less)",
	"portrait":      "@media (orientation: portrait)",
	"landscape":     "@media (orientation: landscape)",
	"print":         "@media print",
	"forced-colors": "@media (forced-colors: active)",
}

// ariaStates are the boolean ARIA attributes with a bare aria-<state> variant.
var ariaStates = []string{"busy", "checked", "disabled", "expanded", "hidden", "pressed", "readonly", "required", "selected"}

func suffix(s string) func(string, []string) string {
	return func(sel string, _ []string) string { return sel + s }
}

func installVariants(b *rules.Builder, opts Options) {
	for _, name := range sortedNames(pseudoClasses) {
		b.AddVariant(rules.Variant{Name: name, Selector: suffix(pseudoClasses[name])})
	}
	for _, name := range sortedNames(pseudoElements) {
		b.AddVariant(rules.Variant{Name: name, Selector: suffix(pseudoElements[name])})
	}
	for _, name := range sortedNames(mediaVariants) {
		b.AddVariant(rules.Variant{Name: name, Wrapper: mediaVariants[name]})
	}

	// Breakpoints are read from the theme at install time, so plugins that
	// extend breakpoints must be installed first.
	store := b.Store()
	for _, bp := range store.Keys("breakpoints") {
		width, _ := store.Lookup("breakpoints", bp)
		b.AddVariant(rules.Variant{Name: bp, Wrapper: "@media (min-width: " + width + ")"})
		b.AddVariant(rules.Variant{Name: "max-" + bp, Wrapper: "@media not all and (min-width: " + width + ")"})
	}
	b.AddVariant(rules.Variant{
		Name:    "min-[]",
		Pattern: regexp.MustCompile(`^(min|max)-\[(.+)\]$`),
		Wrap: func(css string, m []string) string {
			width := token.DecodeArbitrary(m[2])
			if m[1] == "max" {
				return "@media not all and (min-width: " + width + ") { " + css + " }"
			}
			return "@media (min-width: " + width + ") { " + css + " }"
		},
	})

	strategy, selector := opts.DarkStrategy, opts.DarkSelector
	b.AddVariant(rules.Variant{
		Name: "dark",
		Wrap: func(css string, _ []string) string {
			return theme.WrapInDarkMode(css, strategy, selector)
		},
	})
	b.AddVariant(rules.Variant{Name: "ltr", Selector: func(sel string, _ []string) string { return `[dir="ltr"] ` + sel }})
	b.AddVariant(rules.Variant{Name: "rtl", Selector: func(sel string, _ []string) string { return `[dir="rtl"] ` + sel }})

	// group-<state> and peer-<state>, with optional /name: group-hover/card.
	b.AddVariant(rules.Variant{
		Name:    "group-*",
		Pattern: regexp.MustCompile(`^(group|peer)-([a-z-]+)(?:/([\w-]+))?$`),
		Selector: func(sel string, m []string) string {
			state := pseudoClasses[m[2]]
			if state == "" {
				return ""
			}
			marker := "." + m[1]
			if m[3] != "" {
				marker += `\/` + m[3]
			}
			if m[1] == "peer" {
				return marker + state + " ~ " + sel
			}
			return marker + state + " " + sel
		},
	})

	b.AddVariant(rules.Variant{
		Name:    "data-*",
		Pattern: regexp.MustCompile(`^data-(?:\[(.+)\]|([\w-]+))$`),
		Selector: func(sel string, m []string) string {
			if m[2] != "" {
				return sel + "[data-" + m[2] + "]"
			}
			return sel + "[data-" + token.DecodeArbitrary(m[1]) + "]"
		},
	})

	for _, state := range ariaStates {
		b.AddVariant(rules.Variant{Name: "aria-" + state, Selector: suffix(`[aria-` + state + `="true"]`)})
	}
	b.AddVariant(rules.Variant{
		Name:    "aria-[]",
		Pattern: regexp.MustCompile(`^aria-\[(.+)\]$`),
		Selector: func(sel string, m []string) string {
			return sel + "[aria-" + token.DecodeArbitrary(m[1]) + "]"
		},
	})

	b.AddVariant(rules.Variant{
		Name:    "supports-[]",
		Pattern: regexp.MustCompile(`^supports-\[(.+)\]$`),
		Wrap: func(css string, m []string) string {
			cond := token.DecodeArbitrary(m[1])
			if !strings.Contains(cond, ":") && !strings.HasPrefix(cond, "(") {
				cond += ": var(--tw)"
			}
			if !strings.HasPrefix(cond, "(") {
				cond = "(" + cond + ")"
			}
			return "@supports " + cond + " { " + css + " }"
		},
	})

	// Arbitrary variants: [&>*]:p-2 rewrites the selector, [@media(hover:hover)]:x wraps.
	b.AddVariant(rules.Variant{
		Name:    "[]",
		Pattern: regexp.MustCompile(`^\[(.+)\]$`),
		Selector: func(sel string, m []string) string {
			v := token.DecodeArbitrary(m[1])
			if strings.HasPrefix(v, "@") {
				return sel
			}
			if !strings.Contains(v, "&") {
				return sel + v
			}
			return strings.ReplaceAll(v, "&", sel)
		},
		Wrap: func(css string, m []string) string {
			v := token.DecodeArbitrary(m[1])
			if !strings.HasPrefix(v, "@") {
				return css
			}
			return v + " { " + css + " }"
		},
	})
}
