// Package cli parses the gospec command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options holds the parsed command line. Unset flags keep their zero
// values so the config file's settings shine through.
type Options struct {
	Path         string
	ConfigPath   string
	Watch        bool
	Format       string
	Order        string
	Seed         int64
	FailFast     int
	OnlyFailures bool
	Pattern      string
	StatusDB     string
	LogFormat    string
	LogLevel     string
}

// Parse processes command-line arguments. It returns the parsed Options,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	flagSet := flag.NewFlagSet("gospec", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gospec - a behavioral spec runner for Go.

Usage:
  gospec [options] [PATH]

Arguments:
  PATH
    Root directory to search for spec packages. Defaults to the current
    directory.

Options:
`)
		flagSet.PrintDefaults()
	}

	watchFlag := flagSet.Bool("watch", false, "Re-run specs when source files change.")
	formatFlag := flagSet.String("format", "", "Report format: 'progress' or 'doc'.")
	orderFlag := flagSet.String("order", "", "Example order: 'defined', 'random', or 'slowest'.")
	seedFlag := flagSet.Int64("seed", 0, "Seed for random ordering. 0 derives from the clock.")
	failFastFlag := flagSet.Int("fail-fast", 0, "Stop after this many failures. 0 runs everything.")
	onlyFailuresFlag := flagSet.Bool("only-failures", false, "Run only examples that failed on the previous run (requires a status store).")
	patternFlag := flagSet.String("pattern", "", "Doublestar pattern for spec files, e.g. '**/*_test.go'.")
	statusDBFlag := flagSet.String("status-db", "", "Path to the sqlite status store.")
	configFlag := flagSet.String("config", "", "Path to a .gospec.hcl config file. Discovered upward from PATH when empty.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := "."
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if *formatFlag != "" && *formatFlag != "progress" && *formatFlag != "doc" {
		return nil, false, &ExitError{Code: 2, Message: "invalid format: must be 'progress' or 'doc'"}
	}
	if *orderFlag != "" && *orderFlag != "defined" && *orderFlag != "random" && *orderFlag != "slowest" {
		return nil, false, &ExitError{Code: 2, Message: "invalid order: must be 'defined', 'random', or 'slowest'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}
	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &Options{
		Path:         path,
		ConfigPath:   *configFlag,
		Watch:        *watchFlag,
		Format:       *formatFlag,
		Order:        *orderFlag,
		Seed:         *seedFlag,
		FailFast:     *failFastFlag,
		OnlyFailures: *onlyFailuresFlag,
		Pattern:      *patternFlag,
		StatusDB:     *statusDBFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	}, false, nil
}
