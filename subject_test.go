package gospec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubject_MemoizedPerExample(t *testing.T) {
	t.Parallel()

	invocations := 0

	suite := NewSuite()
	suite.Describe("subject", func(g *Group) {
		g.Subject(func(s *Scope) any {
			invocations++
			return []int{1, 2, 3}
		})
		g.It("reads the subject twice", func(s *Scope) {
			_ = s.Subject()
			_ = s.Subject()
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Equal(t, 1, invocations)
}

func TestSubjectNamed_AliasesTheAnonymousSubject(t *testing.T) {
	t.Parallel()

	invocations := 0
	var byName, anonymous any

	suite := NewSuite()
	suite.Describe("account", func(g *Group) {
		g.SubjectNamed("account", func(s *Scope) any {
			invocations++
			return &struct{ balance int }{balance: 50}
		})
		g.It("resolves both accessors to one value", func(s *Scope) {
			byName = s.Get("account")
			anonymous = s.Subject()
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Same(t, byName, anonymous, "named accessor and subject must share the memoized value")
	require.Equal(t, 1, invocations, "the alias must not invoke the computation again")
}

func TestSubjectNamed_ShadowsOuterAnonymousSubject(t *testing.T) {
	t.Parallel()

	var got string

	suite := NewSuite()
	suite.Describe("outer", func(g *Group) {
		g.Subject(func(s *Scope) any { return "outer" })
		g.Context("inner", func(g *Group) {
			g.SubjectNamed("named", func(s *Scope) any { return "inner" })
			g.It("prefers the inner alias", func(s *Scope) {
				got = s.Subject().(string)
			})
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Equal(t, "inner", got)
}

func TestEagerBinding_ForcedBeforeExampleBody(t *testing.T) {
	t.Parallel()

	var log []string

	suite := NewSuite()
	suite.Describe("ordering", func(g *Group) {
		g.LetEager("declared", func(s *Scope) any {
			log = append(log, "declared")
			return struct{}{}
		})
		g.It("appends after forcing", func(s *Scope) {
			log = append(log, "example")
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Equal(t, []string{"declared", "example"}, log)
}

func TestEagerBindings_ForcedOuterToInner(t *testing.T) {
	t.Parallel()

	var log []string

	suite := NewSuite()
	suite.Describe("outer", func(g *Group) {
		g.LetEager("outer", func(s *Scope) any {
			log = append(log, "outer")
			return struct{}{}
		})
		g.Context("inner", func(g *Group) {
			g.SubjectEager(func(s *Scope) any {
				log = append(log, "inner")
				return struct{}{}
			})
			g.It("runs last", func(s *Scope) {
				log = append(log, "example")
			})
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Equal(t, []string{"outer", "inner", "example"}, log)
}

func TestSuper_AnonymousSubjectExtendsShadowedDeclaration(t *testing.T) {
	t.Parallel()

	outerInvocations := 0
	var got []int

	suite := NewSuite()
	suite.Describe("fibonacci", func(g *Group) {
		g.Subject(func(s *Scope) any {
			outerInvocations++
			return []int{1, 1, 2, 3, 5}
		})
		g.Context("extended", func(g *Group) {
			g.Subject(func(s *Scope) any {
				return append(s.Super().([]int), 8, 13)
			})
			g.It("combines outer and inner", func(s *Scope) {
				got = s.Subject().([]int)
				_ = s.Subject() // memoized; the chain must not re-run
			})
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Equal(t, []int{1, 1, 2, 3, 5, 8, 13}, got)
	require.Equal(t, 1, outerInvocations, "the shadowed computation runs once, inside the overriding one")
}

func TestSuper_NamedBindingAlwaysRejected(t *testing.T) {
	t.Parallel()

	suite := NewSuite()
	suite.Describe("named super", func(g *Group) {
		// A valid outer declaration exists; the construct is rejected anyway.
		g.Let("sequence", func(s *Scope) any { return []int{1, 1, 2, 3, 5} })
		g.Context("override", func(g *Group) {
			g.Let("sequence", func(s *Scope) any {
				return append(s.Super().([]int), 8, 13)
			})
			g.It("fails deterministically", func(s *Scope) {
				s.Get("sequence")
			})
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Failed)
	res := sum.Results[0]
	require.True(t, errors.Is(res.Err, ErrSuperOnNamedBinding), "got %v", res.Err)
	require.Contains(t, res.Message, "not supported for named bindings")
}

func TestSuper_NamedSubjectAlsoRejected(t *testing.T) {
	t.Parallel()

	suite := NewSuite()
	suite.Describe("named subject super", func(g *Group) {
		g.Subject(func(s *Scope) any { return "outer" })
		g.Context("override", func(g *Group) {
			g.SubjectNamed("thing", func(s *Scope) any {
				return s.Super()
			})
			g.It("fails when read by name", func(s *Scope) {
				s.Get("thing")
			})
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Failed)
	require.True(t, errors.Is(sum.Results[0].Err, ErrSuperOnNamedBinding), "got %v", sum.Results[0].Err)
}

func TestSuper_WithoutShadowedDeclarationFails(t *testing.T) {
	t.Parallel()

	suite := NewSuite()
	suite.Describe("orphan super", func(g *Group) {
		g.Subject(func(s *Scope) any {
			return s.Super()
		})
		g.It("has nothing to defer to", func(s *Scope) {
			s.Subject()
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Failed)
	require.True(t, errors.Is(sum.Results[0].Err, ErrNoShadowedBinding), "got %v", sum.Results[0].Err)
}

func TestSuper_OutsideComputationFails(t *testing.T) {
	t.Parallel()

	suite := NewSuite()
	suite.Describe("misuse", func(g *Group) {
		g.It("calls Super from an example body", func(s *Scope) {
			s.Super()
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Failed)
	require.Contains(t, sum.Results[0].Message, "outside a binding computation")
}

func TestSuper_ChainsAcrossThreeLevels(t *testing.T) {
	t.Parallel()

	var got string

	suite := NewSuite()
	suite.Describe("level one", func(g *Group) {
		g.Subject(func(s *Scope) any { return "a" })
		g.Context("level two", func(g *Group) {
			g.Subject(func(s *Scope) any { return s.Super().(string) + "b" })
			g.Context("level three", func(g *Group) {
				g.Subject(func(s *Scope) any { return s.Super().(string) + "c" })
				g.It("walks the whole chain", func(s *Scope) {
					got = s.Subject().(string)
				})
			})
		})
	})

	sum := runSuite(t, suite, RunOptions{})
	require.Equal(t, 1, sum.Passed)
	require.Equal(t, "abc", got)
}
