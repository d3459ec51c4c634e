package preset

import (
	"github.com/gnana997/uiwind/pkg/rules"
)

var borderSides = map[string][]string{
	"":   {"border-width"},
	"-x": {"border-left-width", "border-right-width"},
	"-y": {"border-top-width", "border-bottom-width"},
	"-t": {"border-top-width"},
	"-r": {"border-right-width"},
	"-b": {"border-bottom-width"},
	"-l": {"border-left-width"},
	"-s": {"border-inline-start-width"},
	"-e": {"border-inline-end-width"},
}

var radiusCorners = map[string][]string{
	"":    {"border-radius"},
	"-t":  {"border-top-left-radius", "border-top-right-radius"},
	"-r":  {"border-top-right-radius", "border-bottom-right-radius"},
	"-b":  {"border-bottom-right-radius", "border-bottom-left-radius"},
	"-l":  {"border-top-left-radius", "border-bottom-left-radius"},
	"-tl": {"border-top-left-radius"},
	"-tr": {"border-top-right-radius"},
	"-br": {"border-bottom-right-radius"},
	"-bl": {"border-bottom-left-radius"},
}

var borderStatics = map[string]rules.Declarations{
	"border-solid":  rules.Props("border-style", "solid"),
	"border-dashed": rules.Props("border-style", "dashed"),
	"border-dotted": rules.Props("border-style", "dotted"),
	"border-double": rules.Props("border-style", "double"),
	"border-none":   rules.Props("border-style", "none"),
	"outline-none":  rules.Props("outline", "2px solid transparent", "outline-offset", "2px"),
}

func installBorders(b *rules.Builder) {
	statics(b, borderStatics)

	dyn(b, "border-width", `^border(-[xytrblse])?(?:-(.+))?$`, func(m rules.Match) rules.Result {
		k := m.Group(2)
		var v string
		switch {
		case k == "":
			v = "1px"
		case numberPattern.MatchString(k):
			v = k + "px"
		default:
			av, isArb, ok := arbitrary(k)
			if !isArb || !ok || looksLikeColor(av) {
				return rules.Reject()
			}
			_, v = typeHint(av)
		}
		return rules.Emit(each(v, borderSides[m.Group(1)]...))
	})

	dyn(b, "rounded", `^rounded(-t|-r|-b|-l|-tl|-tr|-br|-bl)?(?:-(.+))?$`, func(m rules.Match) rules.Result {
		v, ok := scaleValue(m, "radius", m.Group(2))
		if !ok {
			return rules.Reject()
		}
		return rules.Emit(each(v, radiusCorners[m.Group(1)]...))
	})

	dyn(b, "outline-width", `^outline-(\d+|\[.*\])$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if numberPattern.MatchString(k) {
			return emit(true, "outline-width", k+"px")
		}
		v, _, ok := arbitrary(k)
		return emit(ok && !looksLikeColor(v), "outline-width", v)
	})

	dyn(b, "ring", `^ring(?:-(\d+))?$`, func(m rules.Match) rules.Result {
		w := m.Group(1)
		if w == "" {
			w = "1"
		}
		return emit(true, "box-shadow", "0 0 0 "+w+"px var(--tw-ring-color, currentColor)")
	})
}
