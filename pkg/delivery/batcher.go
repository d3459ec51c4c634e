package delivery

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
)

// OpType is the kind of a batched stylesheet operation.
type OpType int

const (
	OpInsert OpType = iota
	OpUpdate
	OpDelete
)

func (t OpType) String() string {
	switch t {
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "insert"
	}
}

// Operation is one queued stylesheet change.
type Operation struct {
	Type     OpType
	Selector string

	// CSS is the declaration body or rule text for inserts.
	CSS string

	// Props are the declarations set by updates.
	Props map[string]string
}

// BatchOptions configure a Batcher.
type BatchOptions struct {
	// MaxSize is the queue length that triggers an automatic flush.
	MaxSize int `yaml:"max_batch_size" validate:"gte=1"`

	AutoFlush bool `yaml:"auto_flush"`

	// MaxDelay is the period of the StartBatchFlush timer.
	MaxDelay time.Duration `yaml:"-"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultBatchOptions returns a 100-operation batch with auto-flush and a
// 16ms flush period.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{MaxSize: 100, AutoFlush: true, MaxDelay: 16 * time.Millisecond}
}

// Batcher queues stylesheet operations and applies them as a unit.
type Batcher struct {
	sheet  StyleSheet
	opts   BatchOptions
	logger *slog.Logger

	mu    sync.Mutex
	queue []Operation

	flushMu sync.Mutex

	timerMu sync.Mutex
	stop    chan struct{}
	done    chan struct{}

	flushes  atomic.Int64
	applied  atomic.Int64
	failures atomic.Int64
}

// NewBatcher creates a batcher that applies operations to sheet.
func NewBatcher(sheet StyleSheet, opts BatchOptions) *Batcher {
	def := DefaultBatchOptions()
	if opts.MaxSize <= 0 {
		opts.MaxSize = def.MaxSize
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = def.MaxDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Batcher{sheet: sheet, opts: opts, logger: logger}
}

// InsertStyle queues the insertion of selector with css.
func (b *Batcher) InsertStyle(selector, css string) error {
	return b.Enqueue(Operation{Type: OpInsert, Selector: selector, CSS: css})
}

// UpdateStyle queues setting props on the rule for selector.
func (b *Batcher) UpdateStyle(selector string, props map[string]string) error {
	return b.Enqueue(Operation{Type: OpUpdate, Selector: selector, Props: props})
}

// DeleteStyle queues the removal of selector.
func (b *Batcher) DeleteStyle(selector string) error {
	return b.Enqueue(Operation{Type: OpDelete, Selector: selector})
}

// Enqueue queues op. When auto-flush is on and the queue reaches MaxSize
// the batch is flushed and its error returned.
func (b *Batcher) Enqueue(op Operation) error {
	b.mu.Lock()
	b.queue = append(b.queue, op)
	full := b.opts.AutoFlush && len(b.queue) >= b.opts.MaxSize
	b.mu.Unlock()

	if full {
		return b.Flush()
	}
	return nil
}

// Len returns the number of queued operations.
func (b *Batcher) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Flush applies every queued operation and empties the queue. Failing
// operations do not stop the rest; their errors are combined.
func (b *Batcher) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	ops := b.queue
	b.queue = nil
	b.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}

	var errs error
	for _, op := range ops {
		if err := b.apply(op); err != nil {
			b.failures.Add(1)
			b.logger.Warn("Batch operation failed", "op", op.Type.String(), "selector", op.Selector, "error", err)
			errs = multierr.Append(errs, err)
			continue
		}
		b.applied.Add(1)
	}
	b.flushes.Add(1)
	return errs
}

// Discard empties the queue without applying it.
func (b *Batcher) Discard() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.queue)
	b.queue = nil
	return n
}

// StartBatchFlush flushes every MaxDelay until StopBatchFlush. Starting an
// already running timer is a no-op.
func (b *Batcher) StartBatchFlush() {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()
	if b.stop != nil {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	b.stop, b.done = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(b.opts.MaxDelay)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// Failures are logged per operation.
				_ = b.Flush()
			}
		}
	}()
}

// StopBatchFlush stops the flush timer and waits for it to exit.
func (b *Batcher) StopBatchFlush() {
	b.timerMu.Lock()
	stop, done := b.stop, b.done
	b.stop, b.done = nil, nil
	b.timerMu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Running reports whether the flush timer is active.
func (b *Batcher) Running() bool {
	b.timerMu.Lock()
	defer b.timerMu.Unlock()
	return b.stop != nil
}

// BatchStats are the batcher counters.
type BatchStats struct {
	Queued   int   `json:"queued"`
	Flushes  int64 `json:"flushes"`
	Applied  int64 `json:"applied"`
	Failures int64 `json:"failures"`
}

// Stats returns the batcher counters.
func (b *Batcher) Stats() BatchStats {
	return BatchStats{
		Queued:   b.Len(),
		Flushes:  b.flushes.Load(),
		Applied:  b.applied.Load(),
		Failures: b.failures.Load(),
	}
}

func (b *Batcher) apply(op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("batch %s %q panicked: %v", op.Type, op.Selector, r)
		}
	}()

	switch op.Type {
	case OpInsert:
		return b.sheet.InsertRule(op.Selector, op.CSS)
	case OpUpdate:
		return b.sheet.UpdateRule(op.Selector, op.Props)
	case OpDelete:
		return b.sheet.DeleteRule(op.Selector)
	default:
		return fmt.Errorf("%w: unknown operation %d", ErrInvalidRule, int(op.Type))
	}
}
