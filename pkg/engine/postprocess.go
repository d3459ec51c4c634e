package engine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gnana997/uiwind/pkg/rules"
)

var (
	numericPattern  = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)([a-zA-Z%]*)$`)
	functionPattern = regexp.MustCompile(`^([a-zA-Z][\w-]*)\((.*)\)$`)
)

// wholeValueFunctions are negated as a whole: calc(v) -> calc(calc(v) * -1).
var wholeValueFunctions = map[string]bool{
	"calc":  true,
	"var":   true,
	"min":   true,
	"max":   true,
	"clamp": true,
}

// negateValue flips the sign of a numeric value. Values that are not a single
// number, length, math function or single-argument function call are
// returned unchanged with ok false.
func negateValue(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || hasTopLevelSpace(v) {
		return v, false
	}
	if numericPattern.MatchString(v) {
		return "calc(" + v + " * -1)", true
	}
	fm := functionPattern.FindStringSubmatch(v)
	if fm == nil {
		return v, false
	}
	name, arg := fm[1], strings.TrimSpace(fm[2])
	if wholeValueFunctions[name] {
		return "calc(" + v + " * -1)", true
	}
	if numericPattern.MatchString(arg) {
		return name + "(calc(" + arg + " * -1))", true
	}
	return v, false
}

func hasTopLevelSpace(v string) bool {
	depth := 0
	for _, r := range v {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ' ', '\t':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// negate applies negateValue to every declaration. It reports false when no
// declaration could be negated, which turns the token into a non-match.
func negate(decls rules.Declarations) (rules.Declarations, bool) {
	out := decls.Clone()
	changed := false
	for i, d := range out {
		if v, ok := negateValue(d.Value); ok {
			out[i].Value = v
			changed = true
		}
	}
	return out, changed
}

// applyOpacity blends every colour declaration with alpha (0..1). It reports
// false when the block has no colour declaration.
func applyOpacity(decls rules.Declarations, alpha float64) (rules.Declarations, bool) {
	out := decls.Clone()
	changed := false
	for i, d := range out {
		if !rules.IsColorProperty(d.Property) {
			continue
		}
		out[i].Value = blend(d.Value, alpha)
		changed = true
	}
	return out, changed
}

// blend renders a colour at the given alpha. Hex colours become rgb() with an
// alpha channel; anything else is mixed with transparent.
func blend(color string, alpha float64) string {
	if strings.HasPrefix(color, "#") {
		if c, err := colorful.Hex(color); err == nil {
			r, g, b := c.RGB255()
			return fmt.Sprintf("rgb(%d %d %d / %s)", r, g, b, formatFloat(alpha))
		}
	}
	return fmt.Sprintf("color-mix(in srgb, %s %s%%, transparent)", color, formatFloat(alpha*100))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*1e4)/1e4, 'f', -1, 64)
}

// markImportant appends !important to every declaration that lacks it.
func markImportant(decls rules.Declarations) rules.Declarations {
	out := decls.Clone()
	for i, d := range out {
		if !strings.HasSuffix(d.Value, "!important") {
			out[i].Value = d.Value + " !important"
		}
	}
	return out
}
