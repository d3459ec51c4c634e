package token

import (
	"strconv"
	"strings"
)

// Subject returns the string rules are matched against: the base utility
// followed by the re-encoded arbitrary payload, if any. Variants, flags and
// the opacity modifier are not part of the subject.
//
//	"-translate-z-[50px]" -> "translate-z-[50px]"
//	"perspective-[]"      -> "perspective-[]"
//	"[mask-type:alpha]"   -> "[mask-type:alpha]"
func (t UtilityToken) Subject() string {
	if !t.HasArbitrary {
		return t.Utility
	}
	if t.Utility == "" {
		return "[" + t.Arbitrary + "]"
	}
	return t.Utility + "-[" + t.Arbitrary + "]"
}

// Canonical returns the normalized class string used as the resolution cache
// key. Two raw strings that differ only in flag placement ("!sm:p-2" and
// "sm:!p-2") share a canonical form.
func (t UtilityToken) Canonical() string {
	var b strings.Builder
	for _, v := range t.Variants {
		b.WriteString(v)
		b.WriteByte(':')
	}
	if t.Important {
		b.WriteByte('!')
	}
	if t.Negative {
		b.WriteByte('-')
	}
	b.WriteString(t.Subject())
	if t.Opacity != "" {
		b.WriteByte('/')
		b.WriteString(t.Opacity)
	}
	return b.String()
}

// OpacityFraction returns the opacity percentage as a 0..1 fraction.
func (t UtilityToken) OpacityFraction() (float64, bool) {
	if t.Opacity == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(t.Opacity, 64)
	if err != nil {
		return 0, false
	}
	v /= 100
	if v > 1 {
		v = 1
	}
	return v, true
}

// Escape escapes a class name for use in a CSS class selector.
// Characters outside [A-Za-z0-9_-] and non-ASCII runes are backslash
// escaped; a leading digit is written as a hex escape.
func Escape(class string) string {
	var b strings.Builder
	b.Grow(len(class) + 8)
	for i, r := range class {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r >= 0x80:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteString(`\3`)
				b.WriteRune(r)
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(r)
		case r == '-':
			if i == 0 && len(class) == 1 {
				b.WriteString(`\-`)
				continue
			}
			b.WriteRune(r)
		case r == ' ':
			b.WriteString(`\ `)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
