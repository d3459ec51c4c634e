// Package delivery applies resolved CSS to a live stylesheet without
// blocking the caller: a priority task scheduler, an operation batcher and
// a capacity-bounded multi-node sink.
package delivery

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Priority orders tasks within a flush cycle.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityNormal
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "normal"
	}
}

// ParsePriority maps "high", "normal" and "low" to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "high":
		return PriorityHigh, nil
	case "normal", "":
		return PriorityNormal, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityNormal, fmt.Errorf("unknown priority %q", s)
	}
}

// IdleHost is an idle-yield primitive. RequestIdle arranges for fn to run
// when the host is idle and returns a function that cancels the request.
// RequestIdle is called without scheduler locks held, so fn may run
// before RequestIdle returns.
type IdleHost interface {
	RequestIdle(fn func()) (cancel func())
}

// SchedulerOptions configure a Scheduler.
type SchedulerOptions struct {
	// Host, when set, is preferred over the timer for dispatch.
	Host IdleHost

	// Delay is the timer dispatch delay used without a Host. Default: 1ms.
	Delay time.Duration

	Logger *slog.Logger
}

type task struct {
	id       string
	priority Priority
	fn       func()
}

// Scheduler runs queued tasks on a later dispatch cycle. Within a cycle all
// high-priority tasks run before any normal, and all normal before any low.
type Scheduler struct {
	opts   SchedulerOptions
	logger *slog.Logger

	mu      sync.Mutex
	queues  [3][]*task
	nextID  uint64
	armed   bool
	armGen  uint64
	running bool
	disarm  func()
	closed  bool
	cycleMu sync.Mutex

	ran    atomic.Int64
	faults atomic.Int64
}

// NewScheduler creates a scheduler.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	if opts.Delay <= 0 {
		opts.Delay = time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{opts: opts, logger: logger}
}

// Schedule queues fn and returns its task id ("task-N").
func (s *Scheduler) Schedule(fn func(), priority Priority) string {
	if priority < PriorityHigh || priority > PriorityLow {
		priority = PriorityNormal
	}

	s.mu.Lock()
	s.nextID++
	t := &task{id: "task-" + strconv.FormatUint(s.nextID, 10), priority: priority, fn: fn}
	s.queues[priority] = append(s.queues[priority], t)
	request := s.armLocked()
	s.mu.Unlock()

	if request != nil {
		request()
	}
	return t.id
}

// ScheduleHigh queues fn at high priority.
func (s *Scheduler) ScheduleHigh(fn func()) string {
	return s.Schedule(fn, PriorityHigh)
}

// ScheduleLow queues fn at low priority.
func (s *Scheduler) ScheduleLow(fn func()) string {
	return s.Schedule(fn, PriorityLow)
}

// CancelTask removes a task that has not been dispatched yet. It returns
// false when the task already ran or the id is unknown.
func (s *Scheduler) CancelTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for p := range s.queues {
		for i, t := range s.queues[p] {
			if t.id == id {
				s.queues[p] = append(s.queues[p][:i], s.queues[p][i+1:]...)
				return true
			}
		}
	}
	return false
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingLocked()
}

// Flush runs one dispatch cycle synchronously and returns the number of
// tasks it ran. Tasks queued while the cycle runs wait for the next one.
// Flush must not be called from inside a task.
func (s *Scheduler) Flush() int {
	s.cycleMu.Lock()

	s.mu.Lock()
	var batch []*task
	for p := range s.queues {
		batch = append(batch, s.queues[p]...)
		s.queues[p] = nil
	}
	if s.disarm != nil {
		s.disarm()
		s.disarm = nil
	}
	s.armed = false
	s.running = true
	s.mu.Unlock()

	for _, t := range batch {
		s.run(t)
	}

	var request func()
	s.mu.Lock()
	s.running = false
	if s.pendingLocked() > 0 {
		request = s.armLocked()
	}
	s.mu.Unlock()
	s.cycleMu.Unlock()

	if request != nil {
		request()
	}
	return len(batch)
}

// Clear drops every queued task and returns how many were dropped.
func (s *Scheduler) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.pendingLocked()
	for p := range s.queues {
		s.queues[p] = nil
	}
	if s.disarm != nil {
		s.disarm()
		s.disarm = nil
	}
	s.armed = false
	return n
}

// Close drops queued tasks and stops future dispatch. Schedule still
// queues after Close but nothing runs until Flush is called.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Clear()
}

// Ran returns how many tasks have run, including faulted ones.
func (s *Scheduler) Ran() int64 {
	return s.ran.Load()
}

// Faults returns how many tasks panicked.
func (s *Scheduler) Faults() int64 {
	return s.faults.Load()
}

func (s *Scheduler) pendingLocked() int {
	n := 0
	for p := range s.queues {
		n += len(s.queues[p])
	}
	return n
}

// armLocked marks the scheduler armed. Inside a cycle it does nothing; Flush
// arms for leftover tasks when the cycle ends. With a timer it arms directly; with
// an IdleHost it returns the request, which the caller must invoke after
// releasing s.mu.
func (s *Scheduler) armLocked() (request func()) {
	if s.armed || s.closed || s.running {
		return nil
	}
	s.armed = true
	s.armGen++
	dispatch := func() { s.Flush() }
	if s.opts.Host == nil {
		timer := time.AfterFunc(s.opts.Delay, dispatch)
		s.disarm = func() { timer.Stop() }
		return nil
	}

	host, gen := s.opts.Host, s.armGen
	return func() {
		cancel := host.RequestIdle(dispatch)
		s.mu.Lock()
		current := s.armed && s.armGen == gen
		if current {
			s.disarm = cancel
		}
		s.mu.Unlock()
		// The request already ran or was superseded.
		if !current && cancel != nil {
			cancel()
		}
	}
}

func (s *Scheduler) run(t *task) {
	defer func() {
		s.ran.Add(1)
		if r := recover(); r != nil {
			s.faults.Add(1)
			s.logger.Warn("Scheduled task failed", "task", t.id, "priority", t.priority.String(), "panic", r)
		}
	}()
	t.fn()
}
