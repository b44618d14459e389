package gospec

import (
	"context"
	"os"
	"testing"

	"github.com/garyf/gospec/internal/config"
	"github.com/garyf/gospec/internal/statusstore"
)

// Option adjusts a run started through RunSpecs.
type Option func(o *RunOptions)

// WithReporter adds a reporter to the run.
func WithReporter(r Reporter) Option {
	return func(o *RunOptions) { o.Reporters = append(o.Reporters, r) }
}

// WithStore overrides the status store (tests use an in-memory one).
func WithStore(s StatusStore) Option {
	return func(o *RunOptions) { o.Store = s }
}

// WithOrder overrides the ordering policy.
func WithOrder(order string, seed int64) Option {
	return func(o *RunOptions) {
		o.Order = order
		o.Seed = seed
	}
}

// RunSpecs executes the default suite under `go test`, one subtest per
// example. Settings come from .gospec.hcl (or the file named by
// GOSPEC_CONFIG) overlaid with GOSPEC_* variables — which is how the
// gospec CLI passes its flags down — then from opts. It reports true when
// every executed example passed.
func RunSpecs(t *testing.T, opts ...Option) bool {
	t.Helper()
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("gospec: %v", err)
	}

	ro := RunOptions{
		Order:        cfg.Order,
		Seed:         cfg.Seed,
		FailFast:     cfg.FailFast,
		OnlyFailures: cfg.OnlyFailures,
	}
	if cfg.StatusDB != "" {
		store, err := statusstore.Open(cfg.StatusDB)
		if err != nil {
			t.Fatalf("gospec: opening status store: %v", err)
		}
		defer store.Close()
		ro.Store = store
	}
	for _, rep := range configuredReporters(t, cfg) {
		ro.Reporters = append(ro.Reporters, rep)
	}
	for _, opt := range opts {
		opt(&ro)
	}

	runner := NewRunner(DefaultSuite, ro)
	sum, err := runner.run(ctx, tAdapter{t})
	if err != nil {
		t.Fatalf("gospec: %v", err)
	}
	return sum.Failed == 0
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, ok := os.LookupEnv("GOSPEC_CONFIG"); ok && path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, _, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configuredReporters builds the reporters named by the config through the
// factory registry. Under `go test` the subtest output already reports
// outcomes, so an unregistered format is skipped rather than fatal: the
// reporters package registers its factories from init, and specs that want
// them import it.
func configuredReporters(t *testing.T, cfg *config.Config) []Reporter {
	t.Helper()
	var reps []Reporter
	if rep, err := NewReporter(cfg.Format, os.Stdout, nil); err == nil {
		reps = append(reps, rep)
	}
	for _, block := range cfg.Reporters {
		opts, err := block.Options()
		if err != nil {
			t.Fatalf("gospec: %v", err)
		}
		rep, err := NewReporter(block.Name, os.Stdout, opts)
		if err != nil {
			t.Logf("gospec: skipping reporter %q: %v", block.Name, err)
			continue
		}
		reps = append(reps, rep)
	}
	return reps
}

// tAdapter bridges *testing.T to the runner's narrow subtest interface.
type tAdapter struct{ t *testing.T }

func (a tAdapter) Run(name string, f func(t testingT)) bool {
	return a.t.Run(name, func(st *testing.T) { f(tAdapter{st}) })
}

func (a tAdapter) Errorf(format string, args ...any) {
	a.t.Errorf(format, args...)
}
