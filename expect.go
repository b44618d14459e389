package gospec

import (
	"fmt"

	"github.com/garyf/gospec/matchers"
)

// Expectation applies matchers to an actual value inside an example body
// or a binding computation. A failed match aborts the example.
type Expectation struct {
	scope   *Scope
	actual  any
	negated bool
}

// Expect wraps a value for matcher application.
func (s *Scope) Expect(actual any) *Expectation {
	return &Expectation{scope: s, actual: actual}
}

// IsExpected wraps the anonymous subject for matcher application, reading
// (and memoizing) it implicitly. This is the one-liner form behind
// Group.ItIsExpectedTo.
func (s *Scope) IsExpected() *Expectation {
	return &Expectation{scope: s, actual: s.Subject()}
}

// ToNot negates the expectation.
func (e *Expectation) ToNot(m matchers.Matcher) {
	neg := &Expectation{scope: e.scope, actual: e.actual, negated: !e.negated}
	neg.To(m)
}

// NotTo is ToNot.
func (e *Expectation) NotTo(m matchers.Matcher) { e.ToNot(m) }

// To applies the matcher and fails the example on mismatch.
func (e *Expectation) To(m matchers.Matcher) {
	matched := m.Match(e.actual)
	if e.negated {
		if matched {
			e.scope.fail(fmt.Errorf("expected %#v not to %s", e.actual, m.Describe()))
		}
		return
	}
	if !matched {
		e.scope.fail(fmt.Errorf("%s", m.FailureMessage(e.actual)))
	}
}
