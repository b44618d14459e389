package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/garyf/gospec/internal/cli"
	"github.com/garyf/gospec/internal/config"
	"github.com/garyf/gospec/internal/ctxlog"
	"github.com/garyf/gospec/internal/fsutil"
	"github.com/garyf/gospec/internal/watch"
)

// main is the entrypoint for the gospec command.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the command logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := newLogger(opts.LogLevel, opts.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	cfg, cfgPath, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	logger.Debug("Configuration resolved.", "path", cfgPath, "format", cfg.Format, "order", cfg.Order)

	if opts.Watch {
		return watchAndRun(ctx, outW, opts, cfg, cfgPath)
	}
	return runOnce(ctx, outW, opts.Path, cfg, cfgPath)
}

// resolveConfig loads the config file and layers the command line over it.
func resolveConfig(opts *cli.Options) (*config.Config, string, error) {
	var (
		cfg     *config.Config
		cfgPath string
		err     error
	)
	if opts.ConfigPath != "" {
		cfgPath = opts.ConfigPath
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, cfgPath, err = config.Discover(opts.Path)
	}
	if err != nil {
		return nil, "", err
	}

	if opts.Format != "" {
		cfg.Format = opts.Format
	}
	if opts.Order != "" {
		cfg.Order = opts.Order
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if opts.FailFast != 0 {
		cfg.FailFast = opts.FailFast
	}
	if opts.OnlyFailures {
		cfg.OnlyFailures = true
	}
	if opts.Pattern != "" {
		cfg.Pattern = opts.Pattern
	}
	if opts.StatusDB != "" {
		cfg.StatusDB = opts.StatusDB
	}
	return cfg, cfgPath, nil
}

// runOnce discovers spec packages and runs `go test` for each, passing the
// resolved settings down through GOSPEC_* variables that RunSpecs reads.
func runOnce(ctx context.Context, outW io.Writer, root string, cfg *config.Config, cfgPath string) error {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindSpecFiles(root, cfg.Pattern)
	if err != nil {
		return fmt.Errorf("discovering spec files: %w", err)
	}
	dirs := fsutil.PackageDirs(files)
	if len(dirs) == 0 {
		fmt.Fprintf(outW, "No spec files matching %q under %s\n", cfg.Pattern, root)
		return nil
	}
	logger.Debug("Spec packages discovered.", "count", len(dirs))

	env := append(os.Environ(), cfg.Env()...)
	if cfgPath != "" {
		env = append(env, "GOSPEC_CONFIG="+cfgPath)
	}

	var firstErr error
	for _, dir := range dirs {
		logger.Debug("Running spec package.", "dir", dir)
		cmd := exec.CommandContext(ctx, "go", "test", "./...")
		cmd.Dir = dir
		cmd.Env = env
		cmd.Stdout = outW
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			if firstErr == nil {
				firstErr = &cli.ExitError{Code: 1, Message: fmt.Sprintf("specs failed in %s", dir)}
			}
		}
	}
	return firstErr
}

// watchAndRun runs the suite once, then re-runs it whenever source files
// change, until interrupted.
func watchAndRun(ctx context.Context, outW io.Writer, opts *cli.Options, cfg *config.Config, cfgPath string) error {
	logger := ctxlog.FromContext(ctx)

	rerun := func(paths []string) {
		logger.Info("Change detected, re-running specs.", "changed", len(paths))
		if err := runOnce(ctx, outW, opts.Path, cfg, cfgPath); err != nil {
			fmt.Fprintln(outW, err)
		}
	}

	watcher, err := watch.New(300*time.Millisecond, rerun)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.AddRecursive(opts.Path); err != nil {
		return fmt.Errorf("watching %s: %w", opts.Path, err)
	}

	if err := runOnce(ctx, outW, opts.Path, cfg, cfgPath); err != nil {
		fmt.Fprintln(outW, err)
	}
	logger.Info("Watching for changes.", "path", opts.Path)
	watcher.Run(ctx)
	return nil
}

// newLogger creates and configures a new slog.Logger instance. It does not
// depend on the global logger, allowing for isolated instances in tests.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}
