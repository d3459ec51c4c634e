package delivery

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/uiwind/pkg/engine"
)

// Options configure an Optimizer.
type Options struct {
	Scheduler SchedulerOptions
	Batch     BatchOptions
	Sink      SinkOptions

	// Virtualize routes delivered rules to the virtual sink instead of the
	// batcher.
	Virtualize bool

	Logger *slog.Logger
}

// DefaultOptions returns the default batch and sink limits.
func DefaultOptions() Options {
	return Options{Batch: DefaultBatchOptions(), Sink: DefaultSinkOptions()}
}

// Stats is a snapshot of every delivery counter.
type Stats struct {
	PendingTasks int        `json:"pending_tasks"`
	TasksRun     int64      `json:"tasks_run"`
	TaskFaults   int64      `json:"task_faults"`
	Batch        BatchStats `json:"batch"`
	StyleNodes   int        `json:"style_nodes"`
	SinkEntries  int        `json:"sink_entries"`
	Delivered    int64      `json:"delivered"`
	Dropped      int64      `json:"dropped"`
}

// Optimizer ties the scheduler, batcher and sink together.
type Optimizer struct {
	opts      Options
	logger    *slog.Logger
	sheet     StyleSheet
	scheduler *Scheduler
	batcher   *Batcher
	sink      *VirtualSink

	delivered atomic.Int64
	dropped   atomic.Int64
}

// NewOptimizer creates an optimizer applying batches to sheet. A nil sheet
// gets a MemorySheet.
func NewOptimizer(sheet StyleSheet, opts Options) *Optimizer {
	if sheet == nil {
		sheet = NewMemorySheet()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Scheduler.Logger == nil {
		opts.Scheduler.Logger = logger
	}
	if opts.Batch.Logger == nil {
		opts.Batch.Logger = logger
	}
	return &Optimizer{
		opts:      opts,
		logger:    logger,
		sheet:     sheet,
		scheduler: NewScheduler(opts.Scheduler),
		batcher:   NewBatcher(sheet, opts.Batch),
		sink:      NewVirtualSink(opts.Sink),
	}
}

func (o *Optimizer) Scheduler() *Scheduler { return o.scheduler }
func (o *Optimizer) Batcher() *Batcher     { return o.batcher }
func (o *Optimizer) Sink() *VirtualSink    { return o.sink }
func (o *Optimizer) Sheet() StyleSheet     { return o.sheet }

// Deliver schedules a task that hands resolved rules to the sink or the
// batcher, and returns the task id.
func (o *Optimizer) Deliver(resolved []engine.ResolvedRule, priority Priority) string {
	batch := append([]engine.ResolvedRule(nil), resolved...)
	return o.scheduler.Schedule(func() {
		for _, rr := range batch {
			var err error
			if o.opts.Virtualize {
				err = o.sink.Inject(rr.CSS)
			} else {
				err = o.batcher.InsertStyle(rr.Class, rr.CSS)
			}
			if err != nil {
				o.dropped.Add(1)
				o.logger.Warn("Failed to deliver rule", "class", rr.Class, "error", err)
				continue
			}
			o.delivered.Add(1)
		}
	}, priority)
}

// Flush runs pending tasks and then flushes the batcher.
func (o *Optimizer) Flush() error {
	o.scheduler.Flush()
	return o.batcher.Flush()
}

// GetStats returns a snapshot of the delivery counters.
func (o *Optimizer) GetStats() Stats {
	return Stats{
		PendingTasks: o.scheduler.Pending(),
		TasksRun:     o.scheduler.Ran(),
		TaskFaults:   o.scheduler.Faults(),
		Batch:        o.batcher.Stats(),
		StyleNodes:   o.sink.NodeCount(),
		SinkEntries:  o.sink.Len(),
		Delivered:    o.delivered.Load(),
		Dropped:      o.dropped.Load(),
	}
}

// Cleanup drops pending tasks and queued operations, stops the flush timer
// and empties the sink.
func (o *Optimizer) Cleanup() {
	o.scheduler.Clear()
	o.batcher.StopBatchFlush()
	if n := o.batcher.Discard(); n > 0 {
		o.logger.Debug("Discarded queued batch operations", "count", n)
	}
	o.sink.Clear()
}

var (
	globalMu sync.Mutex
	global   *Optimizer
)

// Global returns the process-wide optimizer, creating one with
// DefaultOptions on first use.
func Global() *Optimizer {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = NewOptimizer(nil, DefaultOptions())
	}
	return global
}

// SetGlobal replaces the process-wide optimizer and returns the previous
// one. Passing nil resets it to be recreated on next use.
func SetGlobal(o *Optimizer) *Optimizer {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := global
	global = o
	return prev
}
