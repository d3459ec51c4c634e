// Package preset is the built-in rule set: core utilities, variants and the
// preflight reset, each installed as a plugin.
package preset

import (
	"log/slog"
	"regexp"

	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/theme"
)

// Version is reported for every built-in plugin.
const Version = "1.0.0"

// Options tune the built-in plugins.
type Options struct {
	// DarkStrategy controls the dark: variant. Default: class.
	DarkStrategy theme.Strategy

	// DarkSelector is used with the selector strategy.
	DarkSelector string
}

// Plugins returns the built-in plugins in install order.
func Plugins(opts Options) []rules.Plugin {
	if opts.DarkStrategy == "" {
		opts.DarkStrategy = theme.StrategyClass
	}
	return []rules.Plugin{
		rules.NewPlugin("preflight", Version, installPreflight),
		rules.NewPlugin("layout", Version, installLayout),
		rules.NewPlugin("spacing", Version, installSpacing),
		rules.NewPlugin("sizing", Version, installSizing),
		rules.NewPlugin("typography", Version, installTypography),
		rules.NewPlugin("colors", Version, installColors),
		rules.NewPlugin("borders", Version, installBorders),
		rules.NewPlugin("effects", Version, installEffects),
		rules.NewPlugin("transforms", Version, installTransforms),
		rules.NewPlugin("variants", Version, func(b *rules.Builder) { installVariants(b, opts) }),
	}
}

// Build installs the built-in plugins followed by extra into a registry
// backed by store.
func Build(store *theme.Store, opts Options, config map[string]any, logger *slog.Logger, extra ...rules.Plugin) (*rules.Registry, error) {
	b := rules.NewBuilder(store, config, logger)
	b.Use(Plugins(opts)...)
	b.Use(extra...)
	return b.Build()
}

func dyn(b *rules.Builder, name, pattern string, h rules.Handler) {
	b.AddRule(rules.Rule{Name: name, Pattern: regexp.MustCompile(pattern), Handler: h})
}

func statics(b *rules.Builder, table map[string]rules.Declarations) {
	for _, name := range sortedNames(table) {
		b.AddUtility(name, table[name])
	}
}

func installPreflight(b *rules.Builder) {
	b.AddBase("*, ::before, ::after", rules.Props(
		"box-sizing", "border-box",
		"margin", "0",
		"padding", "0",
		"border", "0 solid",
	))
	b.AddBase("html, :host", rules.Props(
		"line-height", "1.5",
		"-webkit-text-size-adjust", "100%",
		"tab-size", "4",
		"font-family", "var(--font-sans, ui-sans-serif, system-ui, sans-serif)",
	))
	b.AddBase("body", rules.Props("line-height", "inherit"))
	b.AddBase("img, svg, video, canvas, audio, iframe, embed, object", rules.Props(
		"display", "block",
		"vertical-align", "middle",
	))
	b.AddBase("img, video", rules.Props("max-width", "100%", "height", "auto"))
	b.AddBase("button, input, select, optgroup, textarea", rules.Props(
		"font", "inherit",
		"color", "inherit",
		"background-color", "transparent",
	))
	b.AddBase("[hidden]:where(:not([hidden=\"until-found\"]))", rules.Props("display", "none !important"))
}
