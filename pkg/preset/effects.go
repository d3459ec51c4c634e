package preset

import (
	"strconv"

	"github.com/gnana997/uiwind/pkg/rules"
)

var transitionProperties = map[string]string{
	"":           "color, background-color, border-color, outline-color, text-decoration-color, fill, stroke, opacity, box-shadow, transform, translate, scale, rotate, filter",
	"-all":       "all",
	"-colors":    "color, background-color, border-color, outline-color, text-decoration-color, fill, stroke",
	"-opacity":   "opacity",
	"-shadow":    "box-shadow",
	"-transform": "transform, translate, scale, rotate",
}

func installEffects(b *rules.Builder) {
	dyn(b, "shadow", `^shadow(?:-(.+))?$`, func(m rules.Match) rules.Result {
		v, ok := scaleValue(m, "shadow", m.Group(1))
		return emit(ok, "box-shadow", v)
	})

	dyn(b, "opacity", `^opacity-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if v, ok := scaleValue(m, "opacity", k); ok {
			return emit(true, "opacity", v)
		}
		if n, err := strconv.Atoi(k); err == nil && n >= 0 && n <= 100 {
			return emit(true, "opacity", strconv.FormatFloat(float64(n)/100, 'f', -1, 64))
		}
		return rules.Reject()
	})

	dyn(b, "blur", `^blur(?:-(.+))?$`, func(m rules.Match) rules.Result {
		v, ok := scaleValue(m, "blur", m.Group(1))
		return emit(ok, "filter", "blur("+v+")")
	})

	dyn(b, "backdrop-blur", `^backdrop-blur(?:-(.+))?$`, func(m rules.Match) rules.Result {
		v, ok := scaleValue(m, "blur", m.Group(1))
		return emit(ok, "backdrop-filter", "blur("+v+")")
	})

	dyn(b, "transition", `^transition(-all|-colors|-opacity|-shadow|-transform)?$`, func(m rules.Match) rules.Result {
		return rules.Emit(rules.Props(
			"transition-property", transitionProperties[m.Group(1)],
			"transition-timing-function", "cubic-bezier(0.4, 0, 0.2, 1)",
			"transition-duration", "150ms",
		))
	})
	b.AddUtility("transition-none", rules.Props("transition-property", "none"))

	dyn(b, "duration", `^duration-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if v, ok := scaleValue(m, "duration", k); ok {
			return emit(true, "transition-duration", v)
		}
		if numberPattern.MatchString(k) {
			return emit(true, "transition-duration", k+"ms")
		}
		return rules.Reject()
	})

	dyn(b, "delay", `^delay-(.+)$`, func(m rules.Match) rules.Result {
		k := m.Group(1)
		if v, ok := scaleValue(m, "duration", k); ok {
			return emit(true, "transition-delay", v)
		}
		if numberPattern.MatchString(k) {
			return emit(true, "transition-delay", k+"ms")
		}
		return rules.Reject()
	})

	dyn(b, "ease", `^ease(?:-(.+))?$`, func(m rules.Match) rules.Result {
		v, ok := scaleValue(m, "easing", m.Group(1))
		return emit(ok, "transition-timing-function", v)
	})

	// Arbitrary property: [mask-type:alpha].
	dyn(b, "arbitrary-property", `^\[(--[\w-]+|[a-z][a-z-]*):(.*)\]$`, func(m rules.Match) rules.Result {
		v := m.Group(2)
		if v == "" {
			return rules.Reject()
		}
		return emit(true, m.Group(1), v)
	})
}
