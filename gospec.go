// Package gospec is a behavioral spec framework with lazily evaluated,
// memoized, hierarchically scoped bindings.
//
// Specs are declared as a tree of example groups. Each group may declare
// bindings — deferred computations registered under a name, or under the
// reserved anonymous "subject" slot. A binding is never evaluated at
// declaration time; the first read during a running example resolves it
// against the innermost group, walking outward until a declaration is
// found, and memoizes the result for the remainder of that example. Inner
// groups shadow outer declarations of the same key, and an anonymous
// subject may invoke and extend the declaration it shadows via Scope.Super.
//
// The memo table lives and dies with a single example. Two reads of the
// same binding inside one example invoke the computation exactly once;
// the next example starts from an empty table.
package gospec

// DefaultSuite is the suite that package-level Describe registers onto.
// The gospec CLI and the RunSpecs adapter run this suite.
var DefaultSuite = NewSuite()

// Suite is an independent collection of top-level example groups. Tests of
// the framework itself build private suites; ordinary specs use the package
// default via Describe.
type Suite struct {
	root *Group
}

// NewSuite returns an empty suite with an unnamed root group.
func NewSuite() *Suite {
	return &Suite{root: newGroup(nil, "")}
}

// Root returns the suite's root group.
func (s *Suite) Root() *Group { return s.root }

// Describe adds a top-level example group to the suite.
func (s *Suite) Describe(text string, body func(g *Group)) {
	s.root.Describe(text, body)
}

// Describe adds a top-level example group to the default suite.
func Describe(text string, body func(g *Group)) {
	DefaultSuite.Describe(text, body)
}

// FDescribe adds a focused top-level group to the default suite. When any
// group or example in a suite is focused, only focused examples run.
func FDescribe(text string, body func(g *Group)) {
	DefaultSuite.root.FDescribe(text, body)
}

// XDescribe adds a pending top-level group to the default suite. Its
// examples are reported as pending and never executed.
func XDescribe(text string, body func(g *Group)) {
	DefaultSuite.root.XDescribe(text, body)
}
