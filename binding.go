package gospec

// bindingKey identifies a declaration within a group's registry. User
// declarations use their given name; the anonymous subject uses a reserved
// key that no Let or named subject can collide with.
type bindingKey string

// subjectKey is the reserved key for the anonymous subject. The NUL prefix
// keeps it out of the namespace reachable through Let and SubjectNamed.
const subjectKey bindingKey = "\x00subject"

// display renders the key for diagnostics.
func (k bindingKey) display() string {
	if k == subjectKey {
		return "subject"
	}
	return string(k)
}

// named reports whether the key is a user-visible name, as opposed to the
// reserved anonymous subject slot. Super is rejected for named keys.
func (k bindingKey) named() bool { return k != subjectKey }

// Computation is a deferred binding body. It runs at most once per example,
// on first read, against that example's scope. It may read other bindings
// through the scope, including the one it shadows via Scope.Super when it
// is an anonymous subject.
type Computation func(s *Scope) any

// binding is one declaration stored on its owning group. Declarations never
// move between groups, and at most one exists per key per group: a later
// declaration under the same key replaces the earlier one wholesale.
type binding struct {
	key   bindingKey
	eager bool
	fn    Computation
	owner *Group
}

// declare registers fn under key on the group, replacing any previous
// declaration for the same key, including the forcing hook an earlier
// eager declaration installed. Nothing is evaluated here.
func (g *Group) declare(key bindingKey, eager bool, fn Computation) {
	if prev, ok := g.bindings[key]; ok && prev.eager {
		g.dropForcingHook(key)
	}
	b := &binding{key: key, eager: eager, fn: fn, owner: g}
	g.bindings[key] = b
	if eager {
		g.befores = append(g.befores, hook{
			eagerKey: key,
			fn:       func(s *Scope) { s.force(key) },
		})
	}
}

// lookupLocal returns the group's own declaration for key, if any.
func (g *Group) lookupLocal(key bindingKey) (*binding, bool) {
	b, ok := g.bindings[key]
	return b, ok
}

// dropForcingHook removes the pre-example hook installed for an eager
// declaration of key, preserving the order of the remaining hooks.
func (g *Group) dropForcingHook(key bindingKey) {
	kept := g.befores[:0]
	for _, h := range g.befores {
		if h.eagerKey != key {
			kept = append(kept, h)
		}
	}
	g.befores = kept
}
