package preset

import (
	"github.com/gnana997/uiwind/pkg/rules"
)

var sizingProps = map[string][]string{
	"w":     {"width"},
	"h":     {"height"},
	"min-w": {"min-width"},
	"max-w": {"max-width"},
	"min-h": {"min-height"},
	"max-h": {"max-height"},
	"size":  {"width", "height"},
}

func installSizing(b *rules.Builder) {
	dyn(b, "sizing", `^(w|h|min-w|max-w|min-h|max-h|size)-(.+)$`, func(m rules.Match) rules.Result {
		util, k := m.Group(1), m.Group(2)
		var v string
		var ok bool
		switch {
		case k == "screen" && (util == "h" || util == "min-h" || util == "max-h"):
			v, ok = "100vh", true
		case k == "screen":
			v, ok = "100vw", true
		case k == "dvh" || k == "svh" || k == "lvh":
			v, ok = "100"+k, true
		case k == "none" && (util == "max-w" || util == "max-h"):
			v, ok = "none", true
		default:
			v, ok = sizeValue(m, k)
		}
		if !ok {
			return rules.Reject()
		}
		return rules.Emit(each(v, sizingProps[util]...))
	})

	dyn(b, "aspect", `^aspect-(.+)$`, func(m rules.Match) rules.Result {
		switch k := m.Group(1); k {
		case "auto":
			return emit(true, "aspect-ratio", "auto")
		case "square":
			return emit(true, "aspect-ratio", "1 / 1")
		case "video":
			return emit(true, "aspect-ratio", "16 / 9")
		default:
			if fm := fractionPattern.FindStringSubmatch(k); fm != nil {
				return emit(true, "aspect-ratio", fm[1]+" / "+fm[2])
			}
			v, isArb, ok := arbitrary(k)
			return emit(isArb && ok, "aspect-ratio", v)
		}
	})
}

// sizeValue resolves width/height style keys: fractions, keywords, the
// sizing scale, then spacing.
func sizeValue(m rules.Match, k string) (string, bool) {
	if v, ok := fraction(k); ok {
		return v, true
	}
	if v, ok := scaleValue(m, "sizing", k); ok {
		return v, true
	}
	return spacingValue(m, k)
}
