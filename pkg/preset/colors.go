package preset

import (
	"strings"

	"github.com/gnana997/uiwind/pkg/rules"
)

// colorProps maps colour utility prefixes to the properties they set.
var colorProps = map[string]string{
	"bg":         "background-color",
	"text":       "color",
	"border":     "border-color",
	"outline":    "outline-color",
	"decoration": "text-decoration-color",
	"fill":       "fill",
	"stroke":     "stroke",
	"accent":     "accent-color",
	"caret":      "caret-color",
	"ring":       "--tw-ring-color",
	"shadow":     "--tw-shadow-color",
}

func installColors(b *rules.Builder) {
	dyn(b, "color", `^(bg|text|border|outline|decoration|fill|stroke|accent|caret|ring|shadow)-(.+)$`, func(m rules.Match) rules.Result {
		prefix, expr := m.Group(1), m.Group(2)
		if v, isArb, ok := arbitrary(expr); isArb && ok && !looksLikeColor(v) {
			// Lengths are left to the width rules of the same prefix.
			return rules.Reject()
		}
		v, ok := colorValue(m, expr)
		return emit(ok, colorProps[prefix], v)
	})

	dyn(b, "bg-image", `^bg-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if k == "none" {
			return emit(true, "background-image", "none")
		}
		if v, isArb, ok := arbitrary(k); isArb {
			hint, rest := typeHint(v)
			if ok && (hint == "url" || hint == "image" || strings.HasPrefix(rest, "url(") || strings.Contains(rest, "gradient(")) {
				return emit(true, "background-image", rest)
			}
		}
		return rules.Reject()
	})
}
