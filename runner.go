package gospec

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/garyf/gospec/internal/ctxlog"
)

// Status is the outcome of one example.
type Status int

const (
	StatusPassed Status = iota
	StatusFailed
	StatusPending
)

var statusNames = [...]string{
	StatusPassed:  "passed",
	StatusFailed:  "failed",
	StatusPending: "pending",
}

func (st Status) String() string { return statusNames[st] }

// Result records the outcome of one executed (or skipped) example.
type Result struct {
	Example  *Example
	Status   Status
	Err      error
	Message  string
	Duration time.Duration
}

// Summary aggregates a whole run.
type Summary struct {
	Results  []Result
	Passed   int
	Failed   int
	Pending  int
	Duration time.Duration
	Seed     int64
}

// Reporter receives run lifecycle events. Implementations live in the
// reporters package; the runner only knows this interface.
type Reporter interface {
	RunStarted(total int)
	ExampleFinished(res Result)
	RunFinished(sum Summary)
}

// StatusStore persists per-example outcomes across runs. It backs the
// only-failures filter and slowest-first ordering. The sqlite
// implementation lives in internal/statusstore; the runner only needs
// this interface and tests substitute an in-memory one.
type StatusStore interface {
	Record(id, status, message string, duration time.Duration) error
	FailedIDs() (map[string]bool, error)
	Durations() (map[string]time.Duration, error)
}

// Example ordering policies.
const (
	OrderDefined = "defined"
	OrderRandom  = "random"
	OrderSlowest = "slowest"
)

// RunOptions configure a run. The zero value runs every example in
// declaration order with no reporters and no persistence.
type RunOptions struct {
	// Order is one of OrderDefined, OrderRandom, or OrderSlowest.
	Order string
	// Seed drives OrderRandom. Zero means derive from the clock.
	Seed int64
	// FailFast stops the run after this many failures. Zero runs all.
	FailFast int
	// OnlyFailures restricts the run to examples whose last recorded
	// status is failed. Requires Store.
	OnlyFailures bool
	// Focus restricts the run to examples whose description contains the
	// substring. Declaration-level focus (FIt, FDescribe) applies first.
	Focus string
	// Reporters receive run events.
	Reporters []Reporter
	// Store, when set, receives every result and feeds OnlyFailures and
	// OrderSlowest.
	Store StatusStore
}

// Runner executes a suite's examples sequentially. Each example gets a
// fresh Scope; nothing is shared between examples.
type Runner struct {
	suite *Suite
	opts  RunOptions
}

// NewRunner returns a runner for the suite.
func NewRunner(suite *Suite, opts RunOptions) *Runner {
	return &Runner{suite: suite, opts: opts}
}

// Run executes the planned examples and returns a summary. The context
// cancels the run between examples; a computation that never returns is
// the runner's caller's problem, not this engine's.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	return r.run(ctx, nil)
}

// testingT is the subset of *testing.T the runner uses, kept narrow so
// the engine's own tests can observe subtest behavior.
type testingT interface {
	Run(name string, f func(t testingT)) bool
}

func (r *Runner) run(ctx context.Context, t testingT) (*Summary, error) {
	logger := ctxlog.FromContext(ctx)

	plan, seed, err := r.plan()
	if err != nil {
		return nil, err
	}
	logger.Debug("Run planned.", "examples", len(plan), "order", r.opts.Order, "seed", seed)

	sum := &Summary{Seed: seed}
	start := time.Now()
	for _, rep := range r.opts.Reporters {
		rep.RunStarted(len(plan))
	}

	for _, ex := range plan {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := r.runExample(ctx, ex, t)
		sum.Results = append(sum.Results, res)
		switch res.Status {
		case StatusPassed:
			sum.Passed++
		case StatusFailed:
			sum.Failed++
		case StatusPending:
			sum.Pending++
		}
		for _, rep := range r.opts.Reporters {
			rep.ExampleFinished(res)
		}
		if r.opts.Store != nil {
			if err := r.opts.Store.Record(ex.ID(), res.Status.String(), res.Message, res.Duration); err != nil {
				logger.Warn("Failed to persist example status.", "id", ex.ID(), "error", err)
			}
		}
		if r.opts.FailFast > 0 && sum.Failed >= r.opts.FailFast {
			logger.Debug("Stopping run after failure threshold.", "failures", sum.Failed)
			break
		}
	}

	sum.Duration = time.Since(start)
	for _, rep := range r.opts.Reporters {
		rep.RunFinished(*sum)
	}
	logger.Debug("Run finished.", "passed", sum.Passed, "failed", sum.Failed, "pending", sum.Pending)
	return sum, nil
}

// plan collects, filters, and orders the examples for this run.
func (r *Runner) plan() ([]*Example, int64, error) {
	all := collectExamples(r.suite.root)

	if anyFocused(all) {
		focused := all[:0:0]
		for _, ex := range all {
			if ex.focused {
				focused = append(focused, ex)
			}
		}
		all = focused
	}
	if r.opts.Focus != "" {
		matched := all[:0:0]
		for _, ex := range all {
			if strings.Contains(ex.Description(), r.opts.Focus) {
				matched = append(matched, ex)
			}
		}
		all = matched
	}
	if r.opts.OnlyFailures {
		if r.opts.Store == nil {
			return nil, 0, fmt.Errorf("only-failures requires a status store")
		}
		failed, err := r.opts.Store.FailedIDs()
		if err != nil {
			return nil, 0, fmt.Errorf("loading failed example ids: %w", err)
		}
		kept := all[:0:0]
		for _, ex := range all {
			if failed[ex.ID()] {
				kept = append(kept, ex)
			}
		}
		all = kept
	}

	seed := r.opts.Seed
	switch r.opts.Order {
	case "", OrderDefined:
	case OrderRandom:
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	case OrderSlowest:
		if r.opts.Store == nil {
			return nil, 0, fmt.Errorf("slowest ordering requires a status store")
		}
		durations, err := r.opts.Store.Durations()
		if err != nil {
			return nil, 0, fmt.Errorf("loading example durations: %w", err)
		}
		sort.SliceStable(all, func(i, j int) bool {
			return durations[all[i].ID()] > durations[all[j].ID()]
		})
	default:
		return nil, 0, fmt.Errorf("unknown order %q", r.opts.Order)
	}
	return all, seed, nil
}

func collectExamples(g *Group) []*Example {
	examples := append([]*Example(nil), g.examples...)
	for _, child := range g.children {
		examples = append(examples, collectExamples(child)...)
	}
	return examples
}

func anyFocused(examples []*Example) bool {
	for _, ex := range examples {
		if ex.focused {
			return true
		}
	}
	return false
}

// runExample executes one example in a fresh scope: before hooks outermost
// group first (eager bindings force through these), then the body, then
// after hooks innermost first regardless of outcome.
func (r *Runner) runExample(ctx context.Context, ex *Example, t testingT) Result {
	if ex.pending {
		return Result{Example: ex, Status: StatusPending}
	}
	if t != nil {
		var res Result
		t.Run(subtestName(ex), func(st testingT) {
			res = r.execute(ctx, ex)
			if res.Status == StatusFailed {
				if f, ok := st.(interface{ Errorf(string, ...any) }); ok {
					f.Errorf("%s", res.Message)
				}
			}
		})
		return res
	}
	return r.execute(ctx, ex)
}

func (r *Runner) execute(ctx context.Context, ex *Example) Result {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Example starting.", "id", ex.ID())

	start := time.Now()
	res := Result{Example: ex, Status: StatusPassed}
	sc := newScope(ex.group)
	chain := ex.lineage()

	recordFailure := func(rec any) {
		if res.Status == StatusFailed {
			// Keep the first failure; later hook failures do not
			// overwrite it.
			return
		}
		res.Status = StatusFailed
		if f, ok := rec.(*Failure); ok {
			res.Err = f.Err
			res.Message = f.Err.Error()
		} else {
			res.Err = fmt.Errorf("panic: %v", rec)
			res.Message = res.Err.Error()
		}
	}

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				recordFailure(rec)
			}
		}()
		for _, g := range chain {
			for _, h := range g.befores {
				h.fn(sc)
			}
		}
		ex.body(sc)
	}()

	for i := len(chain) - 1; i >= 0; i-- {
		for _, h := range chain[i].afters {
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						recordFailure(rec)
					}
				}()
				h.fn(sc)
			}()
		}
	}

	res.Duration = time.Since(start)
	logger.Debug("Example finished.", "id", ex.ID(), "status", res.Status.String(), "duration", res.Duration)
	return res
}

func subtestName(ex *Example) string {
	return strings.Join(ex.Path(), "/")
}
