package preset

import (
	"strings"

	"github.com/gnana997/uiwind/pkg/rules"
)

var typographyStatics = map[string]rules.Declarations{
	"text-left":    rules.Props("text-align", "left"),
	"text-center":  rules.Props("text-align", "center"),
	"text-right":   rules.Props("text-align", "right"),
	"text-justify": rules.Props("text-align", "justify"),
	"text-start":   rules.Props("text-align", "start"),
	"text-end":     rules.Props("text-align", "end"),

	"uppercase":   rules.Props("text-transform", "uppercase"),
	"lowercase":   rules.Props("text-transform", "lowercase"),
	"capitalize":  rules.Props("text-transform", "capitalize"),
	"normal-case": rules.Props("text-transform", "none"),

	"italic":     rules.Props("font-style", "italic"),
	"not-italic": rules.Props("font-style", "normal"),

	"underline":    rules.Props("text-decoration-line", "underline"),
	"overline":     rules.Props("text-decoration-line", "overline"),
	"line-through": rules.Props("text-decoration-line", "line-through"),
	"no-underline": rules.Props("text-decoration-line", "none"),

	"truncate": rules.Props(
		"overflow", "hidden",
		"text-overflow", "ellipsis",
		"white-space", "nowrap",
	),
	"text-ellipsis": rules.Props("text-overflow", "ellipsis"),
	"text-clip":     rules.Props("text-overflow", "clip"),

	"whitespace-normal":   rules.Props("white-space", "normal"),
	"whitespace-nowrap":   rules.Props("white-space", "nowrap"),
	"whitespace-pre":      rules.Props("white-space", "pre"),
	"whitespace-pre-line": rules.Props("white-space", "pre-line"),
	"whitespace-pre-wrap": rules.Props("white-space", "pre-wrap"),

	"break-normal": rules.Props("overflow-wrap", "normal", "word-break", "normal"),
	"break-words":  rules.Props("overflow-wrap", "break-word"),
	"break-all":    rules.Props("word-break", "break-all"),

	"antialiased": rules.Props(
		"-webkit-font-smoothing", "antialiased",
		"-moz-osx-font-smoothing", "grayscale",
	),
}

func installTypography(b *rules.Builder) {
	statics(b, typographyStatics)

	// text-<size> shares its prefix with text-<color>; the colour rule is
	// registered later and only sees subjects this one rejects.
	dyn(b, "font-size", `^text-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if v, isArb, ok := arbitrary(k); isArb {
			if !ok || looksLikeColor(v) {
				return rules.Reject()
			}
			hint, rest := typeHint(v)
			if hint != "" && hint != "length" && hint != "percentage" {
				return rules.Reject()
			}
			return emit(true, "font-size", rest)
		}
		size, ok := m.Theme.Lookup("fontSize", k)
		if !ok {
			return rules.Reject()
		}
		decls := rules.Props("font-size", size)
		if lh, ok := defaultLineHeights[k]; ok {
			decls = append(decls, rules.Declaration{Property: "line-height", Value: lh})
		}
		return rules.Emit(decls)
	})

	dyn(b, "font", `^font-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if v, isArb, ok := arbitrary(k); isArb {
			if !ok {
				return rules.Reject()
			}
			hint, rest := typeHint(v)
			if hint == "family-name" || (hint == "" && !numberPattern.MatchString(rest)) {
				return emit(true, "font-family", rest)
			}
			return emit(true, "font-weight", rest)
		}
		if v, ok := m.Theme.Lookup("fontWeight", k); ok {
			return emit(true, "font-weight", v)
		}
		v, ok := m.Theme.Lookup("fontFamily", k)
		return emit(ok, "font-family", v)
	})

	dyn(b, "leading", `^leading-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if v, ok := scaleValue(m, "lineHeight", k); ok {
			return emit(true, "line-height", v)
		}
		v, ok := spacingValue(m, k)
		return emit(ok, "line-height", v)
	})

	dyn(b, "tracking", `^tracking-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := scaleValue(m, "letterSpacing", m.Group(1))
		return emit(ok, "letter-spacing", v)
	})

	dyn(b, "line-clamp", `^line-clamp-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if k == "none" {
			return rules.Emit(rules.Props("overflow", "visible", "display", "block", "-webkit-box-orient", "horizontal", "-webkit-line-clamp", "unset"))
		}
		if !numberPattern.MatchString(k) || strings.Contains(k, ".") {
			return rules.Reject()
		}
		return rules.Emit(rules.Props("overflow", "hidden", "display", "-webkit-box", "-webkit-box-orient", "vertical", "-webkit-line-clamp", k))
	})

	dyn(b, "indent", `^indent-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := spacingValue(m, m.Group(1))
		return emit(ok, "text-indent", v)
	})
}

var defaultLineHeights = map[string]string{
	"xs":   "1rem",
	"sm":   "1.25rem",
	"base": "1.5rem",
	"lg":   "1.75rem",
	"xl":   "1.75rem",
	"2xl":  "2rem",
	"3xl":  "2.25rem",
	"4xl":  "2.5rem",
	"5xl":  "1",
	"6xl":  "1",
	"7xl":  "1",
	"8xl":  "1",
	"9xl":  "1",
}
