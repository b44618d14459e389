package reporters

import (
	"fmt"
	"io"

	"github.com/garyf/gospec"
)

// Progress prints one character per example — "." passed, "F" failed,
// "*" pending — followed by failure details and the counts line.
type Progress struct {
	w        io.Writer
	failures []gospec.Result
}

// NewProgress returns a progress reporter writing to w.
func NewProgress(w io.Writer) *Progress {
	return &Progress{w: w}
}

// RunStarted implements gospec.Reporter.
func (p *Progress) RunStarted(total int) {
	p.failures = nil
}

// ExampleFinished implements gospec.Reporter.
func (p *Progress) ExampleFinished(res gospec.Result) {
	switch res.Status {
	case gospec.StatusPassed:
		fmt.Fprint(p.w, ".")
	case gospec.StatusFailed:
		fmt.Fprint(p.w, "F")
		p.failures = append(p.failures, res)
	case gospec.StatusPending:
		fmt.Fprint(p.w, "*")
	}
}

// RunFinished implements gospec.Reporter.
func (p *Progress) RunFinished(sum gospec.Summary) {
	fmt.Fprintln(p.w)
	if len(p.failures) > 0 {
		fmt.Fprintln(p.w, "\nFailures:")
		for i, res := range p.failures {
			fmt.Fprintf(p.w, "\n  %d) %s\n     %s\n", i+1, res.Example.Description(), res.Message)
		}
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w, summaryLine(sum))
}
