package gospec

import (
	"fmt"
	"io"
)

// ReporterFactory builds a reporter writing to w, configured by the
// string options from the matching reporter block in .gospec.hcl.
type ReporterFactory func(w io.Writer, opts map[string]string) (Reporter, error)

var reporterFactories = make(map[string]ReporterFactory)

// RegisterReporter registers a reporter factory under a format name.
// The reporters package registers its implementations from init, so
// importing it (blank import suffices) makes them available to RunSpecs
// and the config file's format setting.
func RegisterReporter(name string, f ReporterFactory) {
	if _, exists := reporterFactories[name]; exists {
		panic(fmt.Sprintf("reporter factory with name '%s' already registered", name))
	}
	reporterFactories[name] = f
}

// NewReporter builds a registered reporter by name.
func NewReporter(name string, w io.Writer, opts map[string]string) (Reporter, error) {
	f, ok := reporterFactories[name]
	if !ok {
		return nil, fmt.Errorf("no reporter registered under %q", name)
	}
	return f(w, opts)
}
