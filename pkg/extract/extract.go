// Package extract finds class candidates in arbitrary source text without
// parsing it. It is the fallback for the native tree-sitter extractor.
package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/gnana997/uiwind/pkg/util"
)

// maxCandidateLen drops minified blobs and data URIs.
const maxCandidateLen = 256

// Candidates splits text into unique class candidates in order of first
// appearance. Separators inside [...] do not split, so arbitrary values
// such as "grid-cols-[1fr,_auto]" or "bg-[rgb(0_0_0)]" survive.
func Candidates(text string) []string {
	var (
		out   []string
		seen  = make(map[string]struct{})
		start = -1
		depth = 0
	)
	flush := func(end int) {
		if start < 0 {
			return
		}
		tok := strings.TrimRight(text[start:end], ".:")
		start = -1
		if !valid(tok) {
			return
		}
		if _, ok := seen[tok]; ok {
			return
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0 && isSeparator(c):
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(text))
	return out
}

// FromBytes extracts candidates from a file's content. path is unused; the
// signature matches the native extractor so it can serve as its fallback.
func FromBytes(path string, content []byte) ([]string, error) {
	return Candidates(string(content)), nil
}

// Files reads and extracts every path with up to workers goroutines
// (util.WorkerCount when workers <= 0). The first read error cancels the rest.
func Files(ctx context.Context, paths []string, workers int) (map[string][]string, error) {
	out := make(map[string][]string, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(util.WorkerCountWithOverride(workers))
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			found := Candidates(string(content))
			mu.Lock()
			out[path] = found
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Merge flattens per-file candidates into one unique list, ordered by the
// paths slice.
func Merge(paths []string, byFile map[string][]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range paths {
		for _, c := range byFile[p] {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func isSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '"', '\'', '`', '<', '>', '{', '}', '=', ';', ',', '(', ')', '$', '\\':
		return true
	}
	return false
}

func valid(tok string) bool {
	if tok == "" || len(tok) > maxCandidateLen {
		return false
	}
	switch c := tok[0]; {
	case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '!', c == '-', c == '[', c == '@', c == '*':
	default:
		return false
	}
	if strings.HasSuffix(tok, "-") || strings.Contains(tok, "//") {
		return false
	}
	if strings.Count(tok, "[") != strings.Count(tok, "]") {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] >= 'a' && tok[i] <= 'z' {
			return true
		}
	}
	return false
}
