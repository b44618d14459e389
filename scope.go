package gospec

import "fmt"

// memoState tracks a binding key's lifecycle within one example:
// absent from the table (unresolved), computing right now (resolving), or
// computed and cached (resolved).
type memoState int

const (
	resolving memoState = iota
	resolved
)

type memoEntry struct {
	state memoState
	value any
}

// Scope is the per-example evaluation context. It carries the memo table
// and the innermost group against which bindings resolve. A scope is
// created immediately before an example's hooks run and discarded when the
// example finishes; no two examples ever share one.
type Scope struct {
	group *Group
	memo  map[bindingKey]*memoEntry

	// current is the declaration whose computation is executing, if any.
	// Super walks outward from its owner.
	current *binding
}

func newScope(g *Group) *Scope {
	return &Scope{
		group: g,
		memo:  make(map[bindingKey]*memoEntry),
	}
}

// Get resolves the named binding for this example, computing and memoizing
// it on first read. A missing declaration fails the example with
// ErrUnboundBinding.
func (s *Scope) Get(name string) any {
	return s.force(userKey(name))
}

// Subject resolves the anonymous subject for this example, computing and
// memoizing it on first read.
func (s *Scope) Subject() any {
	return s.force(subjectKey)
}

// Super invokes the computation shadowed by the currently executing
// anonymous subject declaration: the nearest declaration of the subject
// above the executing declaration's group. The shadowed computation runs
// directly; its result is not memoized on its own, the caller's result is.
//
// Super from a named binding's computation always fails the example with
// ErrSuperOnNamedBinding, whether or not a shadowed declaration exists.
func (s *Scope) Super() any {
	cur := s.current
	if cur == nil {
		s.fail(fmt.Errorf("Super called outside a binding computation"))
	}
	if cur.key.named() {
		s.fail(fmt.Errorf("%s: %w", cur.key.display(), ErrSuperOnNamedBinding))
	}
	for g := cur.owner.parent; g != nil; g = g.parent {
		if b, ok := g.lookupLocal(cur.key); ok {
			return s.invoke(b)
		}
	}
	s.fail(fmt.Errorf("%s: %w", cur.key.display(), ErrNoShadowedBinding))
	return nil
}

// force is the get-or-compute entry point shared by every accessor. Reads
// after the first return the memoized value without re-invoking the
// computation, even when the computation has side effects.
func (s *Scope) force(key bindingKey) any {
	if e, ok := s.memo[key]; ok {
		if e.state == resolving {
			s.fail(fmt.Errorf("%s: %w", key.display(), ErrCyclicBinding))
		}
		return e.value
	}
	b := s.resolve(key)
	e := &memoEntry{state: resolving}
	s.memo[key] = e
	defer func() {
		// Leave no half-resolved entry behind when the computation
		// aborts the example; after hooks may still read bindings.
		if e.state != resolved {
			delete(s.memo, key)
		}
	}()
	e.value = s.invoke(b)
	e.state = resolved
	return e.value
}

// resolve walks from the innermost group outward and returns the first
// declaration found for key.
func (s *Scope) resolve(key bindingKey) *binding {
	for g := s.group; g != nil; g = g.parent {
		if b, ok := g.lookupLocal(key); ok {
			return b
		}
	}
	s.fail(fmt.Errorf("%s: %w", key.display(), ErrUnboundBinding))
	return nil
}

// invoke runs a declaration's computation with the scope's current
// declaration swapped so that a nested Super keeps walking outward from
// the invoked declaration's group.
func (s *Scope) invoke(b *binding) any {
	prev := s.current
	s.current = b
	defer func() { s.current = prev }()
	return b.fn(s)
}

// fail aborts the example with err. The runner recovers the Failure and
// records it as the example's outcome.
func (s *Scope) fail(err error) {
	panic(&Failure{Err: err})
}
