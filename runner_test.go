package gospec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory StatusStore for runner tests.
type memoryStore struct {
	statuses  map[string]string
	durations map[string]time.Duration
	recorded  []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		statuses:  make(map[string]string),
		durations: make(map[string]time.Duration),
	}
}

func (m *memoryStore) Record(id, status, message string, duration time.Duration) error {
	m.statuses[id] = status
	m.durations[id] = duration
	m.recorded = append(m.recorded, id)
	return nil
}

func (m *memoryStore) FailedIDs() (map[string]bool, error) {
	failed := make(map[string]bool)
	for id, status := range m.statuses {
		if status == "failed" {
			failed[id] = true
		}
	}
	return failed, nil
}

func (m *memoryStore) Durations() (map[string]time.Duration, error) {
	return m.durations, nil
}

// eventReporter records reporter callbacks in order.
type eventReporter struct {
	started  int
	finished []Result
	summary  *Summary
}

func (r *eventReporter) RunStarted(total int) { r.started = total }

func (r *eventReporter) ExampleFinished(res Result) { r.finished = append(r.finished, res) }

func (r *eventReporter) RunFinished(sum Summary) { r.summary = &sum }

func TestRunner_HookOrdering(t *testing.T) {
	t.Parallel()

	var log []string

	suite := NewSuite()
	suite.Describe("outer", func(g *Group) {
		g.BeforeEach(func(s *Scope) { log = append(log, "before outer") })
		g.AfterEach(func(s *Scope) { log = append(log, "after outer") })
		g.Context("inner", func(g *Group) {
			g.BeforeEach(func(s *Scope) { log = append(log, "before inner") })
			g.AfterEach(func(s *Scope) { log = append(log, "after inner") })
			g.It("runs between", func(s *Scope) { log = append(log, "body") })
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Equal(t, []string{"before outer", "before inner", "body", "after inner", "after outer"}, log)
}

func TestRunner_AfterHooksRunOnFailure(t *testing.T) {
	t.Parallel()

	afterRan := false

	suite := NewSuite()
	suite.Describe("failing", func(g *Group) {
		g.AfterEach(func(s *Scope) { afterRan = true })
		g.It("reads an unbound key", func(s *Scope) { s.Get("missing") })
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Failed)
	require.True(t, afterRan, "after hooks run whether or not the example failed")
}

func TestRunner_FirstFailureWins(t *testing.T) {
	t.Parallel()

	suite := NewSuite()
	suite.Describe("double failure", func(g *Group) {
		g.AfterEach(func(s *Scope) { s.Get("also-missing") })
		g.It("fails in the body first", func(s *Scope) { s.Get("missing") })
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Failed)
	require.Contains(t, sum.Results[0].Message, "missing")
	require.NotContains(t, sum.Results[0].Message, "also-missing", "a later hook failure must not overwrite the body's")
}

func TestRunner_PanicInBodyBecomesFailure(t *testing.T) {
	t.Parallel()

	suite := NewSuite()
	suite.Describe("panicking", func(g *Group) {
		g.It("panics with a plain value", func(s *Scope) { panic("boom") })
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Failed)
	require.Contains(t, sum.Results[0].Message, "panic: boom")
}

func TestRunner_PendingExamplesAreSkipped(t *testing.T) {
	t.Parallel()

	ran := false

	suite := NewSuite()
	suite.Describe("pending", func(g *Group) {
		g.XIt("never runs", func(s *Scope) { ran = true })
		g.XDescribe("pending group", func(g *Group) {
			g.It("inherits pending", func(s *Scope) { ran = true })
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 2, sum.Pending)
	require.False(t, ran)
}

func TestRunner_FocusRestrictsTheRun(t *testing.T) {
	t.Parallel()

	var ran []string

	suite := NewSuite()
	suite.Describe("focus", func(g *Group) {
		g.It("unfocused", func(s *Scope) { ran = append(ran, "unfocused") })
		g.FIt("focused", func(s *Scope) { ran = append(ran, "focused") })
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Equal(t, []string{"focused"}, ran)
}

func TestRunner_FocusSubstringFilter(t *testing.T) {
	t.Parallel()

	var ran []string

	suite := NewSuite()
	suite.Describe("filter", func(g *Group) {
		g.It("matches the needle", func(s *Scope) { ran = append(ran, "needle") })
		g.It("does not match", func(s *Scope) { ran = append(ran, "other") })
	})

	sum := runSuite(t, suite, RunOptions{Focus: "needle"})
	require.Equal(t, 1, len(sum.Results))
	require.Equal(t, []string{"needle"}, ran)
}

func TestRunner_FailFastStopsTheRun(t *testing.T) {
	t.Parallel()

	var ran []string

	suite := NewSuite()
	suite.Describe("fail fast", func(g *Group) {
		g.It("fails", func(s *Scope) { s.Get("missing") })
		g.It("would run next", func(s *Scope) { ran = append(ran, "next") })
	})

	sum := runSuite(t, suite, RunOptions{FailFast: 1})
	require.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Results, 1)
	require.Empty(t, ran, "examples after the failure threshold must not run")
}

func TestRunner_RandomOrderIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	build := func(sink *[]string) *Suite {
		suite := NewSuite()
		suite.Describe("order", func(g *Group) {
			for _, name := range []string{"a", "b", "c", "d", "e"} {
				name := name
				g.It(name, func(s *Scope) { *sink = append(*sink, name) })
			}
		})
		return suite
	}

	var first, second []string
	runSuite(t, build(&first), RunOptions{Order: OrderRandom, Seed: 42})
	runSuite(t, build(&second), RunOptions{Order: OrderRandom, Seed: 42})
	require.Equal(t, first, second, "the same seed must produce the same order")
}

func TestRunner_SlowestOrderUsesStoredDurations(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	var ran []string

	suite := NewSuite()
	suite.Describe("slowest", func(g *Group) {
		g.It("quick", func(s *Scope) { ran = append(ran, "quick") })
		g.It("slow", func(s *Scope) { ran = append(ran, "slow") })
	})
	store.durations["slowest/quick"] = 5 * time.Millisecond
	store.durations["slowest/slow"] = 80 * time.Millisecond

	runSuite(t, suite, RunOptions{Order: OrderSlowest, Store: store})
	require.Equal(t, []string{"slow", "quick"}, ran)
}

func TestRunner_OnlyFailuresFiltersByStoredStatus(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.statuses["retry/previously failed"] = "failed"
	store.statuses["retry/previously passed"] = "passed"

	var ran []string
	suite := NewSuite()
	suite.Describe("retry", func(g *Group) {
		g.It("previously failed", func(s *Scope) { ran = append(ran, "failed") })
		g.It("previously passed", func(s *Scope) { ran = append(ran, "passed") })
	})

	sum := runSuite(t, suite, RunOptions{OnlyFailures: true, Store: store})
	require.Len(t, sum.Results, 1)
	require.Equal(t, []string{"failed"}, ran)
}

func TestRunner_OnlyFailuresRequiresStore(t *testing.T) {
	t.Parallel()

	suite := NewSuite()
	suite.Describe("empty", func(g *Group) {
		g.It("noop", func(s *Scope) {})
	})

	_, err := NewRunner(suite, RunOptions{OnlyFailures: true}).Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status store")
}

func TestRunner_UnknownOrderIsRejected(t *testing.T) {
	t.Parallel()

	suite := NewSuite()
	_, err := NewRunner(suite, RunOptions{Order: "sideways"}).Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown order")
}

func TestRunner_ReportersReceiveLifecycleEvents(t *testing.T) {
	t.Parallel()

	rep := &eventReporter{}
	suite := NewSuite()
	suite.Describe("events", func(g *Group) {
		g.It("passes", func(s *Scope) {})
		g.It("fails", func(s *Scope) { s.Get("missing") })
	})

	sum := runSuite(t, suite, RunOptions{Reporters: []Reporter{rep}})
	require.Equal(t, 2, rep.started)
	require.Len(t, rep.finished, 2)
	require.NotNil(t, rep.summary)
	require.Equal(t, sum.Failed, rep.summary.Failed)
}

func TestRunner_ResultsRecordedToStore(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	suite := NewSuite()
	suite.Describe("persist", func(g *Group) {
		g.It("passes", func(s *Scope) {})
		g.It("fails", func(s *Scope) { s.Get("missing") })
	})

	runSuite(t, suite, RunOptions{Store: store})
	require.Equal(t, "passed", store.statuses["persist/passes"])
	require.Equal(t, "failed", store.statuses["persist/fails"])
}

func TestRunner_CancelledContextStopsBetweenExamples(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	suite := NewSuite()
	suite.Describe("cancel", func(g *Group) {
		g.It("cancels the rest", func(s *Scope) { cancel() })
		g.It("never runs", func(s *Scope) { t.Error("example ran after cancellation") })
	})

	_, err := NewRunner(suite, RunOptions{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
