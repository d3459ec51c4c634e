package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/gnana997/uiwind/pkg/config"
	"github.com/gnana997/uiwind/pkg/engine"
	"github.com/gnana997/uiwind/pkg/extract"
	"github.com/gnana997/uiwind/pkg/rules"
	"github.com/gnana997/uiwind/pkg/scanner"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/treeshake"
	"github.com/gnana997/uiwind/pkg/turbo"
	"github.com/gnana997/uiwind/pkg/util"
)

// project is everything a command needs after loading the configuration:
// the full registry, a compiler over it and the extraction bridge.
type project struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *theme.Store
	registry *rules.Registry
	compiler *engine.Engine
	bridge   *turbo.Bridge
	files    *util.FileCache
}

// compileResult is one build's output and its counters.
type compileResult struct {
	CSS        string              `json:"-"`
	Files      int                 `json:"files"`
	Candidates int                 `json:"candidates"`
	Rules      int                 `json:"rules"`
	Bytes      int                 `json:"bytes"`
	Shake      *treeshake.Analysis `json:"tree_shake,omitempty"`
	Engine     engine.Stats        `json:"engine"`
	Native     bool                `json:"native"`
}

func openProject(flags *rootFlags, logOut io.Writer) (*project, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	lc := cfg.Logger()
	lc.Output = logOut
	if flags.verbose {
		lc.Level = util.LevelDebug
	}
	logger := util.NewLogger(lc)

	var css *config.CSSConfig
	if cfg.CSSConfig != "" {
		css, err = config.LoadCSS(cfg.Resolve(cfg.CSSConfig), logger)
		if err != nil {
			return nil, err
		}
	}

	store := theme.NewDefaultStore()
	reg, err := cfg.BuildRegistry(store, css, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule registry: %w", err)
	}

	compiler := engine.New(reg, engine.Options{Logger: logger})

	fcCfg := util.DefaultFileCacheConfig()
	fcCfg.Logger = logger
	files := util.NewFileCache(fcCfg)

	bridge := turbo.NewBridge(cfg.Turbo, turbo.NativeLoader(turbo.NativeOptions{
		Compiler: compiler,
		Files:    files,
		Logger:   logger,
	}), logger)

	logger.Debug("Project loaded",
		"dir", cfg.Dir,
		"rules", reg.Len(),
		"css_config", cfg.CSSConfig,
		"native", cfg.Turbo.Enabled)

	return &project{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		registry: reg,
		compiler: compiler,
		bridge:   bridge,
		files:    files,
	}, nil
}

func (p *project) Close() error {
	return multierr.Combine(p.bridge.Close(), p.files.Close())
}

// discover lists the content files under the config directory.
func (p *project) discover() ([]string, error) {
	return scanner.Discover(p.cfg.Dir, p.cfg.Scanner())
}

// extractAll returns the candidates of every path, keyed by path.
func (p *project) extractAll(ctx context.Context, paths []string) (map[string][]string, error) {
	return p.bridge.ExtractParallel(ctx, paths, func(ctx context.Context, paths []string) (map[string][]string, error) {
		return extract.Files(ctx, paths, 0)
	})
}

// extractFile re-reads one path and returns its candidates.
func (p *project) extractFile(path string) ([]string, error) {
	p.files.Invalidate(path)
	var out []string
	err := p.files.View(path, func(data []byte) error {
		var err error
		out, err = p.bridge.Extract(path, data, extract.FromBytes)
		return err
	})
	return out, err
}

// shake points the compiler at the registry restricted to the rules
// candidates can reach. With shaking disabled the full registry is used and
// the analysis is nil.
func (p *project) shake(candidates []string) *treeshake.Analysis {
	if !p.cfg.TreeShake.Enabled {
		p.compiler.SetRegistry(p.registry)
		return nil
	}
	shaker := treeshake.New(p.cfg.TreeShake, p.logger)
	analysis := shaker.Analyze(p.registry.Rules(), candidates)
	p.compiler.SetRegistry(shaker.ShakeRegistry(p.registry, candidates))
	return &analysis
}

// header returns the CSS emitted ahead of utilities: theme custom
// properties when requested, then preflight when configured.
func (p *project) header(themeVars bool) []string {
	var parts []string
	if themeVars {
		parts = append(parts, p.store.ThemeCSS(p.cfg.DarkStrategy(), p.cfg.DarkMode.Selector))
	}
	if p.cfg.Preflight {
		var base []string
		for _, b := range p.registry.Base() {
			base = append(base, b.CSS())
		}
		if len(base) > 0 {
			parts = append(parts, strings.Join(base, "\n"))
		}
	}
	return parts
}

// compile generates the stylesheet for candidates.
func (p *project) compile(candidates []string, themeVars bool) compileResult {
	res := compileResult{Candidates: len(candidates), Native: p.bridge.Available()}
	res.Shake = p.shake(candidates)

	resolved := p.compiler.GenerateRules(candidates)
	res.Rules = len(resolved)
	res.CSS = joinCSS(p.header(themeVars), resolved)
	res.Bytes = len(res.CSS)
	res.Engine = p.compiler.Stats()
	return res
}

func joinCSS(header []string, resolved []engine.ResolvedRule) string {
	parts := append([]string(nil), header...)
	if len(resolved) > 0 {
		lines := make([]string, len(resolved))
		for i, r := range resolved {
			lines[i] = r.CSS
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// build discovers, extracts and compiles the whole project.
func (p *project) build(ctx context.Context, themeVars bool) (compileResult, error) {
	paths, err := p.discover()
	if err != nil {
		return compileResult{}, err
	}
	byFile, err := p.extractAll(ctx, paths)
	if err != nil {
		return compileResult{}, fmt.Errorf("failed to extract classes: %w", err)
	}
	res := p.compile(extract.Merge(paths, byFile), themeVars)
	res.Files = len(paths)
	return res, nil
}

// writeOutput writes css to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path, css string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(w, css)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(css), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return os.Rename(tmp, path)
}

// outputPath prefers the flag value over the configured output.
func (p *project) outputPath(flag string) string {
	if flag != "" {
		return flag
	}
	return p.cfg.Resolve(p.cfg.Output)
}
