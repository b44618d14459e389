// Package reporters implements the built-in run reporters and registers
// them with the gospec reporter registry. Importing this package (a blank
// import is enough) makes the "progress", "doc", and "stream" formats
// available to RunSpecs and to .gospec.hcl reporter blocks.
package reporters

import (
	"fmt"
	"io"
	"time"

	"github.com/garyf/gospec"
)

func init() {
	gospec.RegisterReporter("progress", func(w io.Writer, _ map[string]string) (gospec.Reporter, error) {
		return NewProgress(w), nil
	})
	gospec.RegisterReporter("doc", func(w io.Writer, _ map[string]string) (gospec.Reporter, error) {
		return NewDoc(w), nil
	})
	gospec.RegisterReporter("stream", func(_ io.Writer, opts map[string]string) (gospec.Reporter, error) {
		return NewStream(StreamOptions{
			URL:       opts["url"],
			Namespace: opts["namespace"],
			Event:     opts["event"],
		})
	})
}

// summaryLine renders the closing counts line shared by the text reporters.
func summaryLine(sum gospec.Summary) string {
	line := fmt.Sprintf("%d examples, %d failures", len(sum.Results), sum.Failed)
	if sum.Pending > 0 {
		line += fmt.Sprintf(", %d pending", sum.Pending)
	}
	line += fmt.Sprintf(" (%s)", sum.Duration.Round(time.Millisecond))
	if sum.Seed != 0 {
		line += fmt.Sprintf("\nRandomized with seed %d", sum.Seed)
	}
	return line
}
