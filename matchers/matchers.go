// Package matchers provides the small matcher vocabulary gospec
// expectations apply to values. Matchers are stateless and reusable across
// examples.
package matchers

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Matcher decides whether an actual value satisfies a condition and
// explains itself when it does not. Describe is phrased so that
// "is expected to " + Describe() reads as a sentence; the generated
// one-liner example texts rely on that.
type Matcher interface {
	Match(actual any) bool
	Describe() string
	FailureMessage(actual any) string
}

// Equal matches values that are semantically equal under go-cmp,
// including unexported fields.
func Equal(expected any) Matcher {
	return &equalMatcher{expected: expected}
}

type equalMatcher struct {
	expected any
}

func (m *equalMatcher) opts() cmp.Options {
	return cmp.Options{cmpopts.EquateEmpty(), cmp.Exporter(func(reflect.Type) bool { return true })}
}

func (m *equalMatcher) Match(actual any) bool {
	return cmp.Equal(m.expected, actual, m.opts())
}

func (m *equalMatcher) Describe() string {
	return fmt.Sprintf("equal %#v", m.expected)
}

func (m *equalMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected values to be equal (-want +got):\n%s", cmp.Diff(m.expected, actual, m.opts()))
}

// BeNil matches nil values, including typed nil pointers, maps, slices,
// channels, and funcs.
func BeNil() Matcher { return beNilMatcher{} }

type beNilMatcher struct{}

func (beNilMatcher) Match(actual any) bool {
	if actual == nil {
		return true
	}
	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (beNilMatcher) Describe() string { return "be nil" }

func (beNilMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v to be nil", actual)
}

// BeTrue matches the boolean true.
func BeTrue() Matcher { return boolMatcher{want: true} }

// BeFalse matches the boolean false.
func BeFalse() Matcher { return boolMatcher{want: false} }

type boolMatcher struct{ want bool }

func (m boolMatcher) Match(actual any) bool {
	b, ok := actual.(bool)
	return ok && b == m.want
}

func (m boolMatcher) Describe() string {
	return fmt.Sprintf("be %t", m.want)
}

func (m boolMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v to be %t", actual, m.want)
}

// HaveLen matches strings, arrays, slices, maps, and channels of the given
// length.
func HaveLen(n int) Matcher { return haveLenMatcher{n: n} }

type haveLenMatcher struct{ n int }

func (m haveLenMatcher) Match(actual any) bool {
	length, ok := lengthOf(actual)
	return ok && length == m.n
}

func (m haveLenMatcher) Describe() string {
	return fmt.Sprintf("have length %d", m.n)
}

func (m haveLenMatcher) FailureMessage(actual any) string {
	if length, ok := lengthOf(actual); ok {
		return fmt.Sprintf("expected %#v (length %d) to have length %d", actual, length, m.n)
	}
	return fmt.Sprintf("expected %#v to have a length, but it has none", actual)
}

func lengthOf(actual any) (int, bool) {
	if actual == nil {
		return 0, false
	}
	v := reflect.ValueOf(actual)
	switch v.Kind() {
	case reflect.String, reflect.Array, reflect.Slice, reflect.Map, reflect.Chan:
		return v.Len(), true
	}
	return 0, false
}

// ContainElement matches arrays and slices containing an element equal to
// the expected value under go-cmp.
func ContainElement(expected any) Matcher {
	return &containMatcher{expected: expected}
}

type containMatcher struct {
	expected any
}

func (m *containMatcher) Match(actual any) bool {
	if actual == nil {
		return false
	}
	v := reflect.ValueOf(actual)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return false
	}
	opts := cmp.Options{cmp.Exporter(func(reflect.Type) bool { return true })}
	for i := 0; i < v.Len(); i++ {
		if cmp.Equal(m.expected, v.Index(i).Interface(), opts) {
			return true
		}
	}
	return false
}

func (m *containMatcher) Describe() string {
	return fmt.Sprintf("contain element %#v", m.expected)
}

func (m *containMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v to contain element %#v", actual, m.expected)
}

// MatchRegexp matches strings against a regular expression. The pattern
// must be valid; an invalid one is a programmer error and panics at
// construction.
func MatchRegexp(pattern string) Matcher {
	return &regexpMatcher{re: regexp.MustCompile(pattern)}
}

type regexpMatcher struct {
	re *regexp.Regexp
}

func (m *regexpMatcher) Match(actual any) bool {
	s, ok := actual.(string)
	return ok && m.re.MatchString(s)
}

func (m *regexpMatcher) Describe() string {
	return fmt.Sprintf("match regexp %q", m.re.String())
}

func (m *regexpMatcher) FailureMessage(actual any) string {
	return fmt.Sprintf("expected %#v to match regexp %q", actual, m.re.String())
}
