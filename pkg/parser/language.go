package parser

import (
	"path/filepath"
	"strings"
)

// Language is a grammar the native extractor can parse.
type Language int

const (
	LanguageTypeScript Language = iota
	LanguageJavaScript
	LanguageUnknown
)

func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// DetectLanguage maps a file extension to a grammar. Markup and template
// files (.html, .vue, .svelte, .astro) are LanguageUnknown and go through
// the plain-text extractor.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsTSXFile reports whether path needs the TSX dialect of the TypeScript grammar.
func IsTSXFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".tsx")
}

// ParseLanguageString converts "typescript"/"ts" or "javascript"/"js".
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(lang) {
	case "typescript", "ts":
		return LanguageTypeScript
	case "javascript", "js":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}
