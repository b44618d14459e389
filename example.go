package gospec

import "strings"

// Example is one runnable spec. It is declared once and may be executed at
// most once per run; every execution gets a fresh Scope and therefore a
// fresh memo table.
type Example struct {
	group   *Group
	text    string
	body    func(s *Scope)
	pending bool
	focused bool
}

// Text returns the example's own description text.
func (e *Example) Text() string { return e.text }

// Path returns the description texts of the enclosing groups followed by
// the example's own text.
func (e *Example) Path() []string {
	return append(e.group.path(), e.text)
}

// ID returns a stable identifier for the example, used as the key in the
// status store across runs.
func (e *Example) ID() string {
	return strings.Join(e.Path(), "/")
}

// Description returns the human-readable full description.
func (e *Example) Description() string {
	return strings.Join(e.Path(), " ")
}

// lineage returns the groups from the suite root down to the example's
// innermost group. Before hooks run in this order; after hooks in reverse.
func (e *Example) lineage() []*Group {
	var chain []*Group
	for g := e.group; g != nil; g = g.parent {
		chain = append(chain, g)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
