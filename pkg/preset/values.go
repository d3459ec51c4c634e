package preset

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gnana997/uiwind/pkg/rules"
)

var (
	numberPattern   = regexp.MustCompile(`^\d+(\.\d+)?$`)
	fractionPattern = regexp.MustCompile(`^(\d+)/(\d+)$`)
	lengthPattern   = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)(px|r?em|%|v[hw]|dv[hw]|sv[hw]|lv[hw]|ch|ex|vmin|vmax|pt|cm|mm|in|q)$`)
)

// arbitrary unwraps a "[...]" capture. ok is false for an empty payload,
// which callers turn into a structural rejection.
func arbitrary(s string) (value string, isArbitrary, ok bool) {
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return "", false, true
	}
	v := strings.TrimSpace(s[1 : len(s)-1])
	return v, true, v != ""
}

// typeHint splits an optional "length:" / "color:" prefix off an arbitrary value.
func typeHint(v string) (hint, rest string) {
	if i := strings.IndexByte(v, ':'); i > 0 {
		switch v[:i] {
		case "length", "color", "number", "percentage", "url", "family-name", "image":
			return v[:i], v[i+1:]
		}
	}
	return "", v
}

// scaleValue resolves key against a named theme scale, accepting arbitrary
// values in brackets.
func scaleValue(m rules.Match, scale, key string) (string, bool) {
	if v, isArb, ok := arbitrary(key); isArb {
		if !ok {
			return "", false
		}
		_, v = typeHint(v)
		return v, true
	}
	return m.Theme.Lookup(scale, key)
}

// spacingValue resolves a spacing key. Integers and halves outside the theme
// scale are computed from the 0.25rem base.
func spacingValue(m rules.Match, key string) (string, bool) {
	if v, ok := scaleValue(m, "spacing", key); ok {
		return v, true
	}
	if _, isArb, _ := arbitrary(key); isArb {
		return "", false
	}
	if numberPattern.MatchString(key) {
		n, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatFloat(n/4, 'f', -1, 64) + "rem", true
	}
	return "", false
}

// fraction converts "1/2" to "50%".
func fraction(key string) (string, bool) {
	fm := fractionPattern.FindStringSubmatch(key)
	if fm == nil {
		return "", false
	}
	num, _ := strconv.ParseFloat(fm[1], 64)
	den, _ := strconv.ParseFloat(fm[2], 64)
	if den == 0 {
		return "", false
	}
	return strconv.FormatFloat(num/den*100, 'f', -1, 64) + "%", true
}

// colorValue resolves a colour expression such as "blue-500", "coral",
// or an arbitrary "[#ff0]".
func colorValue(m rules.Match, expr string) (string, bool) {
	if v, isArb, ok := arbitrary(expr); isArb {
		if !ok {
			return "", false
		}
		_, v = typeHint(v)
		return v, true
	}
	return m.Theme.ResolveColor(expr)
}

// looksLikeColor reports whether an arbitrary value is a colour rather than a
// length, for utilities such as text-[...] and border-[...] that accept both.
func looksLikeColor(v string) bool {
	hint, rest := typeHint(v)
	switch hint {
	case "color":
		return true
	case "":
	default:
		return false
	}
	switch {
	case strings.HasPrefix(rest, "#"):
		return true
	case strings.HasPrefix(rest, "rgb"), strings.HasPrefix(rest, "hsl"),
		strings.HasPrefix(rest, "oklch"), strings.HasPrefix(rest, "oklab"),
		strings.HasPrefix(rest, "color-mix"), strings.HasPrefix(rest, "lab("),
		strings.HasPrefix(rest, "lch("):
		return true
	case strings.HasPrefix(rest, "var(--color"):
		return true
	}
	return false
}

// emit is shorthand for a handler returning fixed properties once value
// resolution succeeded.
func emit(ok bool, kv ...string) rules.Result {
	if !ok {
		return rules.Reject()
	}
	return rules.Emit(rules.Props(kv...))
}

// each builds a declaration block setting every property to value.
func each(value string, props ...string) rules.Declarations {
	out := make(rules.Declarations, 0, len(props))
	for _, p := range props {
		out = append(out, rules.Declaration{Property: p, Value: value})
	}
	return out
}

// countArgs counts comma separated (or, lacking commas, whitespace
// separated) arguments of an arbitrary function payload.
func countArgs(v string) int {
	var parts []string
	if strings.Contains(v, ",") {
		parts = strings.Split(v, ",")
	} else {
		parts = strings.Fields(v)
	}
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
