package preset

import (
	"github.com/gnana997/uiwind/pkg/rules"
)

var paddingProps = map[string][]string{
	"p":  {"padding"},
	"px": {"padding-left", "padding-right"},
	"py": {"padding-top", "padding-bottom"},
	"pt": {"padding-top"},
	"pr": {"padding-right"},
	"pb": {"padding-bottom"},
	"pl": {"padding-left"},
	"ps": {"padding-inline-start"},
	"pe": {"padding-inline-end"},
}

var marginProps = map[string][]string{
	"m":  {"margin"},
	"mx": {"margin-left", "margin-right"},
	"my": {"margin-top", "margin-bottom"},
	"mt": {"margin-top"},
	"mr": {"margin-right"},
	"mb": {"margin-bottom"},
	"ml": {"margin-left"},
	"ms": {"margin-inline-start"},
	"me": {"margin-inline-end"},
}

func installSpacing(b *rules.Builder) {
	dyn(b, "padding", `^(p|px|py|pt|pr|pb|pl|ps|pe)-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := spacingValue(m, m.Group(2))
		if !ok {
			return rules.Reject()
		}
		return rules.Emit(each(v, paddingProps[m.Group(1)]...))
	})

	dyn(b, "margin", `^(m|mx|my|mt|mr|mb|ml|ms|me)-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(2)
		v, ok := "auto", k == "auto"
		if !ok {
			v, ok = spacingValue(m, k)
		}
		if !ok {
			return rules.Reject()
		}
		return rules.Emit(each(v, marginProps[m.Group(1)]...))
	})

	dyn(b, "gap", `^gap(-[xy])?-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := spacingValue(m, m.Group(2))
		if !ok {
			return rules.Reject()
		}
		switch m.Group(1) {
		case "-x":
			return emit(true, "column-gap", v)
		case "-y":
			return emit(true, "row-gap", v)
		}
		return emit(true, "gap", v)
	})
}
