package turbo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/uiwind/pkg/engine"
	"github.com/gnana997/uiwind/pkg/extract"
	"github.com/gnana997/uiwind/pkg/parser"
	"github.com/gnana997/uiwind/pkg/parser/queries"
	"github.com/gnana997/uiwind/pkg/token"
	"github.com/gnana997/uiwind/pkg/util"
)

// NativeOptions configure a NativeEngine.
type NativeOptions struct {
	// Compiler serves Process. Without it Process returns ErrUnsupported.
	Compiler *engine.Engine

	// Files backs ExtractParallel. A private cache is created when nil and
	// closed with the engine.
	Files *util.FileCache

	// MemoSize bounds the parse memo. Default: 4096.
	MemoSize int

	// Workers bounds parallel extraction. Default: util.WorkerCount.
	Workers int

	Logger *slog.Logger
}

// NativeEngine extracts classes with tree-sitter from JavaScript and
// TypeScript sources and memoizes parsed tokens.
type NativeEngine struct {
	parsers  *parser.Manager
	queries  *queries.Manager
	memo     *lru.Cache[string, token.UtilityToken]
	files    *util.FileCache
	ownFiles bool
	compiler *engine.Engine
	workers  int
	logger   *slog.Logger

	closeOnce sync.Once
}

// NewNativeEngine creates an engine.
func NewNativeEngine(opts NativeOptions) (*NativeEngine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MemoSize <= 0 {
		opts.MemoSize = 4096
	}
	memo, err := lru.New[string, token.UtilityToken](opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse memo: %w", err)
	}

	workers := util.WorkerCountWithOverride(opts.Workers)
	pm := parser.NewManager(workers, logger)
	qm := queries.NewManager(pm, logger)

	// Compile every grammar's query up front so a broken grammar makes the
	// engine unavailable instead of failing per file.
	for _, g := range []struct {
		lang  parser.Language
		isTSX bool
	}{{parser.LanguageJavaScript, false}, {parser.LanguageTypeScript, false}, {parser.LanguageTypeScript, true}} {
		if _, err := qm.Query(g.lang, g.isTSX); err != nil {
			qm.Close()
			pm.Close()
			return nil, err
		}
	}

	ne := &NativeEngine{
		parsers:  pm,
		queries:  qm,
		memo:     memo,
		files:    opts.Files,
		compiler: opts.Compiler,
		workers:  workers,
		logger:   logger,
	}
	if ne.files == nil {
		cfg := util.DefaultFileCacheConfig()
		cfg.Logger = logger
		ne.files = util.NewFileCache(cfg)
		ne.ownFiles = true
	}
	return ne, nil
}

// NativeLoader returns a Loader that builds a NativeEngine from opts.
func NativeLoader(opts NativeOptions) Loader {
	return func() (Engine, error) {
		return NewNativeEngine(opts)
	}
}

func (n *NativeEngine) Parse(class string) (token.UtilityToken, error) {
	if tok, ok := n.memo.Get(class); ok {
		return tok, nil
	}
	tok := token.Parse(class)
	n.memo.Add(class, tok)
	return tok, nil
}

func (n *NativeEngine) ParseAll(classes []string) ([]token.UtilityToken, error) {
	out := make([]token.UtilityToken, len(classes))
	for i, c := range classes {
		out[i], _ = n.Parse(c)
	}
	return out, nil
}

// Extract returns the class candidates inside string literals of a
// JavaScript or TypeScript file. Other files are scanned as plain text.
func (n *NativeEngine) Extract(path string, content []byte) ([]string, error) {
	lang := parser.DetectLanguage(path)
	if lang == parser.LanguageUnknown {
		return extract.Candidates(string(content)), nil
	}

	isTSX := parser.IsTSXFile(path)
	tree, err := n.parsers.Parse(content, lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	lits, err := n.queries.Strings(tree, lang, isTSX, content)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}

	var out []string
	seen := make(map[string]struct{})
	for _, lit := range lits {
		for _, c := range extract.Candidates(lit.Text) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

// ExtractParallel extracts every path through the file cache. The first
// failure cancels the remaining files.
func (n *NativeEngine) ExtractParallel(ctx context.Context, paths []string) (map[string][]string, error) {
	out := make(map[string][]string, len(paths))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return n.files.View(path, func(data []byte) error {
				found, err := n.Extract(path, data)
				if err != nil {
					return err
				}
				mu.Lock()
				out[path] = found
				mu.Unlock()
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (n *NativeEngine) Process(classes []string) (string, error) {
	if n.compiler == nil {
		return "", ErrUnsupported
	}
	return n.compiler.Generate(classes), nil
}

// Close frees parsers, queries and a privately owned file cache.
func (n *NativeEngine) Close() error {
	var err error
	n.closeOnce.Do(func() {
		n.queries.Close()
		err = n.parsers.Close()
		if n.ownFiles {
			if cerr := n.files.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
