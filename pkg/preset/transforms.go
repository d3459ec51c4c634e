package preset

import (
	"strconv"

	"github.com/gnana997/uiwind/pkg/rules"
)

const (
	translateValue = "var(--tw-translate-x, 0) var(--tw-translate-y, 0) var(--tw-translate-z, 0)"
	scaleValue3D   = "var(--tw-scale-x, 1) var(--tw-scale-y, 1) var(--tw-scale-z, 1)"
	transformValue = "var(--tw-rotate-x,) var(--tw-rotate-y,) var(--tw-rotate-z,) var(--tw-skew-x,) var(--tw-skew-y,)"
)

var transformStatics = map[string]rules.Declarations{
	"transform-3d":       rules.Props("transform-style", "preserve-3d"),
	"transform-flat":     rules.Props("transform-style", "flat"),
	"transform-none":     rules.Props("transform", "none"),
	"transform-gpu":      rules.Props("transform", "translateZ(0) "+transformValue),
	"backface-visible":   rules.Props("backface-visibility", "visible"),
	"backface-hidden":    rules.Props("backface-visibility", "hidden"),
	"scale-3d":           rules.Props("scale", scaleValue3D),
	"translate-3d":       rules.Props("translate", translateValue),
	"perspective-none":   rules.Props("perspective", "none"),
	"origin-center":      rules.Props("transform-origin", "center"),
	"origin-top":         rules.Props("transform-origin", "top"),
	"origin-top-right":   rules.Props("transform-origin", "top right"),
	"origin-right":       rules.Props("transform-origin", "right"),
	"origin-bottom":      rules.Props("transform-origin", "bottom"),
	"origin-left":        rules.Props("transform-origin", "left"),
	"origin-top-left":    rules.Props("transform-origin", "top left"),
	"origin-bottom-left": rules.Props("transform-origin", "bottom left"),
}

// arbitraryFunctions maps 3D shorthand utilities to the transform function
// they expand to and the argument count it requires.
var arbitraryFunctions = map[string]struct {
	fn   string
	args int
}{
	"scale-3d":  {"scale3d", 3},
	"rotate-3d": {"rotate3d", 4},
	"matrix-3d": {"matrix3d", 16},
}

func installTransforms(b *rules.Builder) {
	statics(b, transformStatics)

	dyn(b, "translate", `^translate-([xyz])-(.+)$`, func(m rules.Match) rules.Result {
		axis, k := m.Group(1), m.Group(2)
		var v string
		var ok bool
		switch {
		case k == "full" && axis != "z":
			v, ok = "100%", true
		case axis != "z":
			if v, ok = fraction(k); !ok {
				v, ok = spacingValue(m, k)
			}
		default:
			v, ok = spacingValue(m, k)
		}
		if !ok {
			return rules.Reject()
		}
		return rules.Emit(rules.Props("--tw-translate-"+axis, v, "translate", translateValue))
	})

	dyn(b, "rotate", `^rotate-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := angleValue(m.Group(1))
		return emit(ok, "rotate", v)
	})

	dyn(b, "rotate-axis", `^rotate-([xyz])-(.+)$`, func(m rules.Match) rules.Result {
		axis := m.Group(1)
		v, ok := angleValue(m.Group(2))
		if !ok {
			return rules.Reject()
		}
		fn := map[string]string{"x": "rotateX", "y": "rotateY", "z": "rotateZ"}[axis]
		return rules.Emit(rules.Props("--tw-rotate-"+axis, fn+"("+v+")", "transform", transformValue))
	})

	dyn(b, "skew", `^skew-([xy])-(.+)$`, func(m rules.Match) rules.Result {
		axis := m.Group(1)
		v, ok := angleValue(m.Group(2))
		if !ok {
			return rules.Reject()
		}
		fn := map[string]string{"x": "skewX", "y": "skewY"}[axis]
		return rules.Emit(rules.Props("--tw-skew-"+axis, fn+"("+v+")", "transform", transformValue))
	})

	dyn(b, "scale", `^scale(-[xyz])?-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := scaleFactor(m.Group(2))
		if !ok {
			return rules.Reject()
		}
		switch axis := m.Group(1); axis {
		case "":
			return rules.Emit(rules.Props("--tw-scale-x", v, "--tw-scale-y", v, "--tw-scale-z", v, "scale", scaleValue3D))
		default:
			return rules.Emit(rules.Props("--tw-scale"+axis, v, "scale", scaleValue3D))
		}
	})

	dyn(b, "transform-3d-function", `^(scale-3d|rotate-3d|matrix-3d)-(\[.*\])$`, func(m rules.Match) rules.Result {
		spec := arbitraryFunctions[m.Group(1)]
		v, _, ok := arbitrary(m.Group(2))
		if !ok || countArgs(v) != spec.args {
			return rules.Reject()
		}
		return emit(true, "transform", spec.fn+"("+v+")")
	})

	dyn(b, "perspective", `^perspective-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := scaleValue(m, "perspective", m.Group(1))
		return emit(ok, "perspective", v)
	})

	dyn(b, "perspective-origin", `^perspective-origin-(\[.*\])$`, func(m rules.Match) rules.Result {
		v, _, ok := arbitrary(m.Group(1))
		return emit(ok, "perspective-origin", v)
	})

	dyn(b, "origin", `^origin-(\[.*\])$`, func(m rules.Match) rules.Result {
		v, _, ok := arbitrary(m.Group(1))
		return emit(ok, "transform-origin", v)
	})

	dyn(b, "transform-origin-z", `^transform-origin-z-(.+)$`, func(m rules.Match) rules.Result {
		v, ok := spacingValue(m, m.Group(1))
		if !ok {
			if v, isArb, aok := arbitrary(m.Group(1)); isArb && aok {
				return rules.Emit(rules.Props("--tw-origin-z", v, "transform-origin", "50% 50% var(--tw-origin-z)"))
			}
			return rules.Reject()
		}
		return rules.Emit(rules.Props("--tw-origin-z", v, "transform-origin", "50% 50% var(--tw-origin-z)"))
	})
}

// angleValue accepts degree integers ("45") or an arbitrary angle.
func angleValue(k string) (string, bool) {
	if v, isArb, ok := arbitrary(k); isArb {
		return v, ok
	}
	if numberPattern.MatchString(k) {
		return k + "deg", true
	}
	return "", false
}

// scaleFactor turns "50" into "50%" and passes arbitrary factors through.
func scaleFactor(k string) (string, bool) {
	if v, isArb, ok := arbitrary(k); isArb {
		return v, ok
	}
	if _, err := strconv.Atoi(k); err == nil {
		return k + "%", true
	}
	return "", false
}
