package reporters

import (
	"fmt"
	"io"
	"strings"

	"github.com/garyf/gospec"
)

// Doc prints the example tree as indented documentation, one line per
// group and example, in execution order.
type Doc struct {
	w        io.Writer
	lastPath []string
}

// NewDoc returns a documentation reporter writing to w.
func NewDoc(w io.Writer) *Doc {
	return &Doc{w: w}
}

// RunStarted implements gospec.Reporter.
func (d *Doc) RunStarted(total int) {
	d.lastPath = nil
}

// ExampleFinished implements gospec.Reporter.
func (d *Doc) ExampleFinished(res gospec.Result) {
	path := res.Example.Path()
	groups := path[:len(path)-1]

	// Print headers for the groups not shared with the previous example.
	shared := 0
	for shared < len(groups) && shared < len(d.lastPath) && groups[shared] == d.lastPath[shared] {
		shared++
	}
	for i := shared; i < len(groups); i++ {
		fmt.Fprintf(d.w, "%s%s\n", indent(i), groups[i])
	}
	d.lastPath = groups

	line := fmt.Sprintf("%s%s", indent(len(groups)), res.Example.Text())
	switch res.Status {
	case gospec.StatusFailed:
		line += " (FAILED)"
	case gospec.StatusPending:
		line += " (PENDING)"
	}
	fmt.Fprintln(d.w, line)
}

// RunFinished implements gospec.Reporter.
func (d *Doc) RunFinished(sum gospec.Summary) {
	fmt.Fprintln(d.w)
	fmt.Fprintln(d.w, summaryLine(sum))
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
