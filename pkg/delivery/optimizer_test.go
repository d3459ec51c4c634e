package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uiwind/pkg/engine"
	"github.com/gnana997/uiwind/pkg/preset"
	"github.com/gnana997/uiwind/pkg/theme"
	"github.com/gnana997/uiwind/pkg/util"
)

func resolvedFixture() []engine.ResolvedRule {
	return []engine.ResolvedRule{
		{Class: "flex", Canonical: "flex", CSS: ".flex { display: flex; }"},
		{Class: "p-4", Canonical: "p-4", CSS: ".p-4 { padding: 1rem; }"},
	}
}

func newTestOptimizer(virtualize bool) (*Optimizer, *MemorySheet) {
	sheet := NewMemorySheet()
	opts := DefaultOptions()
	opts.Scheduler.Host = &manualHost{}
	opts.Batch.AutoFlush = false
	opts.Virtualize = virtualize
	opts.Logger = util.DiscardLogger()
	return NewOptimizer(sheet, opts), sheet
}

func TestOptimizer_DeliverThroughBatcher(t *testing.T) {
	o, sheet := newTestOptimizer(false)

	id := o.Deliver(resolvedFixture(), PriorityHigh)
	assert.Equal(t, "task-1", id)
	assert.Equal(t, 1, o.GetStats().PendingTasks)
	assert.Zero(t, sheet.Len())

	require.NoError(t, o.Flush())
	assert.Equal(t, ".flex { display: flex; }\n.p-4 { padding: 1rem; }", sheet.CSS())

	stats := o.GetStats()
	assert.EqualValues(t, 2, stats.Delivered)
	assert.EqualValues(t, 1, stats.TasksRun)
	assert.EqualValues(t, 1, stats.Batch.Flushes)
	assert.Zero(t, stats.PendingTasks)
}

func TestOptimizer_DeliverKeepsEachSpelling(t *testing.T) {
	reg, err := preset.Build(theme.NewDefaultStore(), preset.Options{}, nil, util.DiscardLogger())
	require.NoError(t, err)
	compiler := engine.New(reg, engine.Options{Logger: util.DiscardLogger()})

	resolved := compiler.GenerateRules([]string{"!p-2", "p-2!"})
	require.Len(t, resolved, 2)
	require.Equal(t, resolved[0].Canonical, resolved[1].Canonical)

	o, sheet := newTestOptimizer(false)
	o.Deliver(resolved, PriorityNormal)
	require.NoError(t, o.Flush())

	assert.Equal(t, 2, sheet.Len())
	assert.Contains(t, sheet.CSS(), `.\!p-2 { padding: 0.5rem !important; }`)
	assert.Contains(t, sheet.CSS(), `.p-2\! { padding: 0.5rem !important; }`)
	assert.EqualValues(t, 2, o.GetStats().Delivered)
}

func TestOptimizer_DeliverVirtualized(t *testing.T) {
	o, sheet := newTestOptimizer(true)

	o.Deliver(resolvedFixture(), PriorityNormal)
	require.NoError(t, o.Flush())

	assert.Zero(t, sheet.Len())
	stats := o.GetStats()
	assert.Equal(t, 2, stats.SinkEntries)
	assert.Equal(t, 1, stats.StyleNodes)
	assert.Equal(t, ".flex { display: flex; }\n.p-4 { padding: 1rem; }", o.Sink().CSS())
}

func TestOptimizer_FlushReportsSheetErrors(t *testing.T) {
	o, _ := newTestOptimizer(false)

	o.Deliver([]engine.ResolvedRule{{Class: "", Canonical: "", CSS: "x"}}, PriorityLow)
	err := o.Flush()
	assert.ErrorIs(t, err, ErrInvalidRule)
	assert.EqualValues(t, 1, o.GetStats().Batch.Failures)
}

func TestOptimizer_Cleanup(t *testing.T) {
	o, _ := newTestOptimizer(true)
	o.Deliver(resolvedFixture(), PriorityNormal)
	require.NoError(t, o.Flush())
	o.Deliver(resolvedFixture(), PriorityNormal)
	require.NoError(t, o.Batcher().InsertStyle(".x", "color: red"))
	o.Batcher().StartBatchFlush()

	o.Cleanup()

	stats := o.GetStats()
	assert.Zero(t, stats.PendingTasks)
	assert.Zero(t, stats.Batch.Queued)
	assert.Zero(t, stats.SinkEntries)
	assert.False(t, o.Batcher().Running())
}

func TestGlobalOptimizer(t *testing.T) {
	custom, _ := newTestOptimizer(false)
	prev := SetGlobal(custom)
	t.Cleanup(func() { SetGlobal(prev) })

	assert.Same(t, custom, Global())

	SetGlobal(nil)
	fresh := Global()
	require.NotNil(t, fresh)
	assert.NotSame(t, custom, fresh)
	assert.Same(t, fresh, Global())
}
