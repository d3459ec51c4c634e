// Package token parses utility class strings such as "sm:hover:bg-blue-500"
// or "-translate-z-[50px]" into structured tokens.
//
// Parsing is total: every input produces exactly one UtilityToken, even when
// no rule will later match it. Rejection of malformed content (for example an
// empty arbitrary payload "[]") happens during resolution, not here.
package token

import (
	"strings"
)

// UtilityToken is the parsed form of one raw class string.
type UtilityToken struct {
	// Original is the raw class string exactly as supplied.
	Original string `json:"original"`

	// Variants are the prefix modifiers in left-to-right source order
	// ("sm:hover:bg-blue-500" -> ["sm", "hover"]).
	Variants []string `json:"variants"`

	// Utility is the base utility name with flags, opacity and arbitrary
	// payload removed ("translate-z" for "-translate-z-[50px]").
	Utility string `json:"utility"`

	// Arbitrary is the decoded bracket payload. Only meaningful when
	// HasArbitrary is true; an empty "[]" yields HasArbitrary with "".
	Arbitrary    string `json:"arbitrary,omitempty"`
	HasArbitrary bool   `json:"has_arbitrary"`

	// Negative is set by a leading "-" on the base utility.
	Negative bool `json:"negative"`

	// Important is set by a leading or trailing "!".
	Important bool `json:"important"`

	// Opacity is the "/<number>" modifier without the slash ("" when absent).
	Opacity string `json:"opacity,omitempty"`
}

// Parse converts a raw class string into a UtilityToken.
func Parse(raw string) UtilityToken {
	tok := UtilityToken{Original: raw}

	s := strings.TrimSpace(raw)
	s = stripFlags(s, &tok)

	parts := SplitVariants(s)
	base := parts[len(parts)-1]
	if len(parts) > 1 {
		tok.Variants = append([]string(nil), parts[:len(parts)-1]...)
	}

	// Flags are also accepted after the variant chain ("sm:-mt-4", "hover:!p-2").
	base = stripFlags(base, &tok)
	if strings.HasSuffix(base, "!") {
		tok.Important = true
		base = strings.TrimSuffix(base, "!")
	}

	base, tok.Opacity = splitOpacity(base)

	if open := arbitraryStart(base); open >= 0 {
		tok.HasArbitrary = true
		tok.Arbitrary = DecodeArbitrary(base[open+1 : len(base)-1])
		base = strings.TrimSuffix(base[:open], "-")
	}

	tok.Utility = base
	return tok
}

// ParseE is Parse with an error result, for callers that take a fallible
// parse function. It never fails.
func ParseE(raw string) (UtilityToken, error) {
	return Parse(raw), nil
}

// ParseAll parses every class in order.
func ParseAll(raws []string) ([]UtilityToken, error) {
	out := make([]UtilityToken, len(raws))
	for i, raw := range raws {
		out[i] = Parse(raw)
	}
	return out, nil
}

// stripFlags removes any leading "!" and "-" markers, recording them on tok.
func stripFlags(s string, tok *UtilityToken) string {
	for len(s) > 0 {
		switch s[0] {
		case '!':
			tok.Important = true
		case '-':
			// "--" is never a negative marker; it introduces a custom property.
			if len(s) > 1 && s[1] == '-' {
				return s
			}
			tok.Negative = true
		default:
			return s
		}
		s = s[1:]
	}
	return s
}

// SplitVariants splits s on ':' separators that are not nested inside
// brackets or parentheses. The last element is always the base utility.
func SplitVariants(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
			}
		case ':':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// splitOpacity detects a trailing "/<number>" modifier outside brackets.
func splitOpacity(s string) (string, string) {
	slash := strings.LastIndexByte(s, '/')
	if slash <= 0 || slash == len(s)-1 {
		return s, ""
	}
	if strings.IndexByte(s[slash:], ']') >= 0 {
		return s, ""
	}
	if open := strings.IndexByte(s, '['); open >= 0 && open < slash && strings.IndexByte(s[open:slash], ']') < 0 {
		return s, ""
	}
	if !isNumber(s[slash+1:]) {
		return s, ""
	}
	return s[:slash], s[slash+1:]
}

// arbitraryStart returns the index of the '[' opening a trailing bracketed
// payload, or -1 when s does not end in one.
func arbitraryStart(s string) int {
	if !strings.HasSuffix(s, "]") {
		return -1
	}
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ']':
			depth++
		case '[':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// DecodeArbitrary converts the literal-token encoding of an arbitrary value
// into CSS text: "_" becomes a space and "\_" a literal underscore.
func DecodeArbitrary(payload string) string {
	if !strings.Contains(payload, "_") {
		return payload
	}
	var b strings.Builder
	b.Grow(len(payload))
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c == '\\' && i+1 < len(payload) && payload[i+1] == '_' {
			b.WriteByte('_')
			i++
			continue
		}
		if c == '_' {
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	dot := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
		case s[i] == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return s != "."
}
