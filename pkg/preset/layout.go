package preset

import (
	"strconv"

	"github.com/gnana997/uiwind/pkg/rules"
)

var layoutStatics = map[string]rules.Declarations{
	"block":        rules.Props("display", "block"),
	"inline-block": rules.Props("display", "inline-block"),
	"inline":       rules.Props("display", "inline"),
	"flex":         rules.Props("display", "flex"),
	"inline-flex":  rules.Props("display", "inline-flex"),
	"grid":         rules.Props("display", "grid"),
	"inline-grid":  rules.Props("display", "inline-grid"),
	"contents":     rules.Props("display", "contents"),
	"table":        rules.Props("display", "table"),
	"flow-root":    rules.Props("display", "flow-root"),
	"hidden":       rules.Props("display", "none"),

	"static":   rules.Props("position", "static"),
	"fixed":    rules.Props("position", "fixed"),
	"absolute": rules.Props("position", "absolute"),
	"relative": rules.Props("position", "relative"),
	"sticky":   rules.Props("position", "sticky"),

	"visible":   rules.Props("visibility", "visible"),
	"invisible": rules.Props("visibility", "hidden"),
	"collapse":  rules.Props("visibility", "collapse"),

	"isolate":        rules.Props("isolation", "isolate"),
	"isolation-auto": rules.Props("isolation", "auto"),
	"box-border":     rules.Props("box-sizing", "border-box"),
	"box-content":    rules.Props("box-sizing", "content-box"),

	"flex-row":         rules.Props("flex-direction", "row"),
	"flex-row-reverse": rules.Props("flex-direction", "row-reverse"),
	"flex-col":         rules.Props("flex-direction", "column"),
	"flex-col-reverse": rules.Props("flex-direction", "column-reverse"),
	"flex-wrap":        rules.Props("flex-wrap", "wrap"),
	"flex-nowrap":      rules.Props("flex-wrap", "nowrap"),
	"flex-1":           rules.Props("flex", "1 1 0%"),
	"flex-auto":        rules.Props("flex", "1 1 auto"),
	"flex-initial":     rules.Props("flex", "0 1 auto"),
	"flex-none":        rules.Props("flex", "none"),
	"grow":             rules.Props("flex-grow", "1"),
	"grow-0":           rules.Props("flex-grow", "0"),
	"shrink":           rules.Props("flex-shrink", "1"),
	"shrink-0":         rules.Props("flex-shrink", "0"),

	"items-start":    rules.Props("align-items", "flex-start"),
	"items-end":      rules.Props("align-items", "flex-end"),
	"items-center":   rules.Props("align-items", "center"),
	"items-baseline": rules.Props("align-items", "baseline"),
	"items-stretch":  rules.Props("align-items", "stretch"),

	"justify-start":   rules.Props("justify-content", "flex-start"),
	"justify-end":     rules.Props("justify-content", "flex-end"),
	"justify-center":  rules.Props("justify-content", "center"),
	"justify-between": rules.Props("justify-content", "space-between"),
	"justify-around":  rules.Props("justify-content", "space-around"),
	"justify-evenly":  rules.Props("justify-content", "space-evenly"),

	"self-auto":    rules.Props("align-self", "auto"),
	"self-start":   rules.Props("align-self", "flex-start"),
	"self-end":     rules.Props("align-self", "flex-end"),
	"self-center":  rules.Props("align-self", "center"),
	"self-stretch": rules.Props("align-self", "stretch"),

	"place-items-center":   rules.Props("place-items", "center"),
	"place-content-center": rules.Props("place-content", "center"),

	"pointer-events-none": rules.Props("pointer-events", "none"),
	"pointer-events-auto": rules.Props("pointer-events", "auto"),
	"select-none":         rules.Props("user-select", "none"),
	"select-text":         rules.Props("user-select", "text"),
	"select-all":          rules.Props("user-select", "all"),

	"object-contain": rules.Props("object-fit", "contain"),
	"object-cover":   rules.Props("object-fit", "cover"),
	"object-fill":    rules.Props("object-fit", "fill"),
	"object-none":    rules.Props("object-fit", "none"),

	"sr-only": rules.Props(
		"position", "absolute",
		"width", "1px",
		"height", "1px",
		"padding", "0",
		"margin", "-1px",
		"overflow", "hidden",
		"clip", "rect(0, 0, 0, 0)",
		"white-space", "nowrap",
		"border-width", "0",
	),
}

func installLayout(b *rules.Builder) {
	statics(b, layoutStatics)

	dyn(b, "overflow", `^overflow(-[xy])?-(auto|hidden|clip|visible|scroll)$`, func(m rules.Match) rules.Result {
		return emit(true, "overflow"+m.Group(1), m.Group(2))
	})

	dyn(b, "cursor", `^cursor-(.+)$`, func(m rules.Match) rules.Result {
		if v, isArb, ok := arbitrary(m.Group(1)); isArb {
			return emit(ok, "cursor", v)
		}
		switch m.Group(1) {
		case "auto", "default", "pointer", "wait", "text", "move", "help", "not-allowed",
			"none", "progress", "crosshair", "grab", "grabbing", "zoom-in", "zoom-out":
			return emit(true, "cursor", m.Group(1))
		}
		return rules.Reject()
	})

	dyn(b, "inset", `^(inset|inset-x|inset-y|top|right|bottom|left|start|end)-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := insetValue(m, m.Group(2))
		if !ok {
			return rules.Reject()
		}
		switch m.Group(1) {
		case "inset":
			return rules.Emit(rules.Props("inset", v))
		case "inset-x":
			return rules.Emit(rules.Props("inset-inline", v))
		case "inset-y":
			return rules.Emit(rules.Props("inset-block", v))
		case "start":
			return rules.Emit(rules.Props("inset-inline-start", v))
		case "end":
			return rules.Emit(rules.Props("inset-inline-end", v))
		}
		return rules.Emit(rules.Props(m.Group(1), v))
	})

	dyn(b, "z", `^z-(.+)$`, func(m rules.Match) rules.Result {
		if v, ok := scaleValue(m, "zIndex", m.Group(1)); ok {
			return emit(true, "z-index", v)
		}
		if numberPattern.MatchString(m.Group(1)) {
			return emit(true, "z-index", m.Group(1))
		}
		return rules.Reject()
	})

	dyn(b, "order", `^order-(.+)$`, func(m rules.Match) rules.Result {
		switch k := m.Group(1); {
		case k == "first":
			return emit(true, "order", "-9999")
		case k == "last":
			return emit(true, "order", "9999")
		case k == "none":
			return emit(true, "order", "0")
		case numberPattern.MatchString(k):
			return emit(true, "order", k)
		default:
			v, isArb, ok := arbitrary(k)
			return emit(isArb && ok, "order", v)
		}
	})

	dyn(b, "grid-cols", `^grid-(cols|rows)-(.+)$`, func(m rules.Match) rules.Result {
		prop := "grid-template-columns"
		if m.Group(1) == "rows" {
			prop = "grid-template-rows"
		}
		k := m.Group(2)
		if v, isArb, ok := arbitrary(k); isArb {
			return emit(ok, prop, v)
		}
		switch {
		case k == "none":
			return emit(true, prop, "none")
		case k == "subgrid":
			return emit(true, prop, "subgrid")
		case numberPattern.MatchString(k):
			return emit(true, prop, "repeat("+k+", minmax(0, 1fr))")
		}
		return rules.Reject()
	})

	dyn(b, "col-span", `^(col|row)-span-(.+)$`, func(m rules.Match) rules.Result {
		prop := "grid-column"
		if m.Group(1) == "row" {
			prop = "grid-row"
		}
		switch k := m.Group(2); {
		case k == "full":
			return emit(true, prop, "1 / -1")
		case numberPattern.MatchString(k):
			return emit(true, prop, "span "+k+" / span "+k)
		default:
			v, isArb, ok := arbitrary(k)
			return emit(isArb && ok, prop, "span "+v+" / span "+v)
		}
	})

	dyn(b, "basis", `^basis-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := sizeValue(m, m.Group(1))
		return emit(ok, "flex-basis", v)
	})

	dyn(b, "columns", `^columns-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if numberPattern.MatchString(k) {
			if n, err := strconv.Atoi(k); err == nil && n > 0 {
				return emit(true, "columns", k)
			}
			return rules.Reject()
		}
		v, ok := scaleValue(m, "sizing", k)
		return emit(ok, "columns", v)
	})
}

func insetValue(m rules.Match, k string) (string, bool) {
	switch k {
	case "auto":
		return "auto", true
	case "full":
		return "100%", true
	}
	if v, ok := fraction(k); ok {
		return v, true
	}
	return spacingValue(m, k)
}
