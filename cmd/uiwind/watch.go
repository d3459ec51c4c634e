package main

import (
	"context"
	"io"
	"maps"
	"os/signal"
	"slices"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/maruel/natural"
	"github.com/spf13/cobra"

	"github.com/gnana997/uiwind/pkg/delivery"
	"github.com/gnana997/uiwind/pkg/engine"
	"github.com/gnana997/uiwind/pkg/extract"
	"github.com/gnana997/uiwind/pkg/scanner"
)

type watchOptions struct {
	output    string
	themeVars bool
	debounce  time.Duration
}

func newWatchCmd(root *rootFlags) *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the stylesheet whenever content files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file; defaults to the configured output")
	cmd.Flags().BoolVar(&opts.themeVars, "theme-vars", false, "Prepend theme colour custom properties")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 200*time.Millisecond, "Quiet period before a rebuild")

	return cmd
}

func runWatch(cmd *cobra.Command, root *rootFlags, opts watchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := openProject(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer p.Close()

	session := newWatchSession(p, cmd.OutOrStdout(), p.outputPath(opts.output), opts.themeVars)
	defer session.Close()

	if err := session.Initial(ctx); err != nil {
		return err
	}

	w, err := scanner.NewWatcher(p.cfg.Dir, scanner.WatchOptions{
		Config:   p.cfg.Scanner(),
		Debounce: opts.debounce,
		Logger:   p.logger,
	}, session.Apply)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	p.logger.Info("Watching for changes", "dir", w.Root())
	<-ctx.Done()
	p.logger.Info("Stopping watcher", "rebuilds", session.Rebuilds())
	return nil
}

// watchSession keeps per-file candidates between rebuilds and delivers only
// rules that have not been delivered before. The stylesheet grows
// monotonically while the session runs.
type watchSession struct {
	p         *project
	out       io.Writer
	output    string
	themeVars bool
	optimizer *delivery.Optimizer

	mu        sync.Mutex
	byFile    map[string][]string
	delivered map[string]bool
	rebuilds  int
}

func newWatchSession(p *project, out io.Writer, output string, themeVars bool) *watchSession {
	return &watchSession{
		p:         p,
		out:       out,
		output:    output,
		themeVars: themeVars,
		optimizer: delivery.NewOptimizer(delivery.NewMemorySheet(), p.cfg.DeliveryOptions(p.logger)),
		byFile:    make(map[string][]string),
		delivered: make(map[string]bool),
	}
}

// Initial scans every content file and writes the first stylesheet.
func (s *watchSession) Initial(ctx context.Context) error {
	paths, err := s.p.discover()
	if err != nil {
		return err
	}
	byFile, err := s.p.extractAll(ctx, paths)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byFile = byFile
	return s.rebuildLocked()
}

// Apply folds a batch of content changes into the session and rebuilds.
func (s *watchSession) Apply(events []scanner.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range events {
		if ev.Removed {
			delete(s.byFile, ev.Path)
			continue
		}
		classes, err := s.p.extractFile(ev.Path)
		if err != nil {
			s.p.logger.Warn("Failed to extract changed file", "file", ev.Path, "error", err)
			continue
		}
		s.byFile[ev.Path] = classes
	}
	if err := s.rebuildLocked(); err != nil {
		s.p.logger.Error("Rebuild failed", "error", err)
	}
}

func (s *watchSession) rebuildLocked() error {
	start := time.Now()
	paths := slices.Collect(maps.Keys(s.byFile))
	sort.Sort(natural.StringSlice(paths))
	candidates := extract.Merge(paths, s.byFile)

	s.p.shake(candidates)

	var fresh []engine.ResolvedRule
	for _, r := range s.p.compiler.GenerateRules(candidates) {
		if !s.delivered[r.Class] {
			s.delivered[r.Class] = true
			fresh = append(fresh, r)
		}
	}
	if len(fresh) > 0 {
		s.optimizer.Deliver(fresh, delivery.PriorityNormal)
	}
	if err := s.optimizer.Flush(); err != nil {
		s.p.logger.Warn("Some rules failed to apply", "error", err)
	}

	css := s.CSS()
	if err := writeOutput(s.out, s.output, css); err != nil {
		return err
	}
	s.rebuilds++

	stats := s.optimizer.GetStats()
	s.p.logger.Info("Rebuilt stylesheet",
		"files", len(paths),
		"new_rules", len(fresh),
		"delivered", stats.Delivered,
		"bytes", len(css),
		"duration", time.Since(start))
	return nil
}

// CSS renders the header followed by every delivered rule.
func (s *watchSession) CSS() string {
	var body string
	if s.p.cfg.Delivery.Virtualize {
		body = s.optimizer.Sink().CSS()
	} else if sheet, ok := s.optimizer.Sheet().(*delivery.MemorySheet); ok {
		body = sheet.CSS()
	}

	parts := s.p.header(s.themeVars)
	if body != "" {
		parts = append(parts, body)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Rebuilds returns how many stylesheets the session has written.
func (s *watchSession) Rebuilds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuilds
}

// Stats returns the delivery counters.
func (s *watchSession) Stats() delivery.Stats {
	return s.optimizer.GetStats()
}

func (s *watchSession) Close() {
	s.optimizer.Cleanup()
}
