package gospec

import "github.com/garyf/gospec/matchers"

// hook is a pre- or post-example callback registered on a group. Hooks
// installed by eager declarations carry the key they force so that a
// re-declaration can withdraw them.
type hook struct {
	fn       func(s *Scope)
	eagerKey bindingKey
}

// Group is one node of the example-group tree. Groups are built during the
// declaration phase and are not mutated once a run starts. A group holds a
// back-reference to its parent for the outward resolution walk; it does not
// own the parent.
type Group struct {
	parent   *Group
	text     string
	children []*Group
	examples []*Example
	bindings map[bindingKey]*binding
	befores  []hook
	afters   []hook
	pending  bool
	focused  bool
}

func newGroup(parent *Group, text string) *Group {
	g := &Group{
		parent:   parent,
		text:     text,
		bindings: make(map[bindingKey]*binding),
	}
	if parent != nil {
		g.pending = parent.pending
		g.focused = parent.focused
	}
	return g
}

// Text returns the group's description text.
func (g *Group) Text() string { return g.text }

// path returns the description texts from the outermost named group down to
// this one. The unnamed suite root is omitted.
func (g *Group) path() []string {
	var texts []string
	for n := g; n != nil && n.text != ""; n = n.parent {
		texts = append(texts, n.text)
	}
	for i, j := 0, len(texts)-1; i < j; i, j = i+1, j-1 {
		texts[i], texts[j] = texts[j], texts[i]
	}
	return texts
}

// Describe adds a nested example group.
func (g *Group) Describe(text string, body func(g *Group)) *Group {
	child := newGroup(g, text)
	g.children = append(g.children, child)
	body(child)
	return child
}

// Context is Describe under a name that reads better for stateful variants.
func (g *Group) Context(text string, body func(g *Group)) *Group {
	return g.Describe(text, body)
}

// FDescribe adds a focused nested group. When any focus exists in a suite,
// only focused examples run.
func (g *Group) FDescribe(text string, body func(g *Group)) *Group {
	child := g.Describe(text, body)
	child.markFocused()
	return child
}

// XDescribe adds a pending nested group whose examples report as pending
// and never execute.
func (g *Group) XDescribe(text string, body func(g *Group)) *Group {
	child := g.Describe(text, body)
	child.markPending()
	return child
}

func (g *Group) markFocused() {
	g.focused = true
	for _, ex := range g.examples {
		ex.focused = true
	}
	for _, child := range g.children {
		child.markFocused()
	}
}

func (g *Group) markPending() {
	g.pending = true
	for _, ex := range g.examples {
		ex.pending = true
	}
	for _, child := range g.children {
		child.markPending()
	}
}

// It adds an example to the group.
func (g *Group) It(text string, body func(s *Scope)) *Example {
	ex := &Example{
		group:   g,
		text:    text,
		body:    body,
		pending: g.pending,
		focused: g.focused,
	}
	g.examples = append(g.examples, ex)
	return ex
}

// Specify is It under a name that reads better for some descriptions.
func (g *Group) Specify(text string, body func(s *Scope)) *Example {
	return g.It(text, body)
}

// FIt adds a focused example.
func (g *Group) FIt(text string, body func(s *Scope)) *Example {
	ex := g.It(text, body)
	ex.focused = true
	return ex
}

// XIt adds a pending example.
func (g *Group) XIt(text string, body func(s *Scope)) *Example {
	ex := g.It(text, body)
	ex.pending = true
	return ex
}

// BeforeEach registers a hook run before every example at or under this
// group. Hooks run outermost group first, in registration order within a
// group. Eager bindings install their forcing hooks through the same list,
// so declaration order is forcing order.
func (g *Group) BeforeEach(fn func(s *Scope)) {
	g.befores = append(g.befores, hook{fn: fn})
}

// AfterEach registers a hook run after every example at or under this
// group, innermost group first. After hooks run whether or not the example
// failed.
func (g *Group) AfterEach(fn func(s *Scope)) {
	g.afters = append(g.afters, hook{fn: fn})
}

// Let declares a named lazy binding. The computation runs at most once per
// example, on first read through Scope.Get, and the result is memoized for
// the rest of that example. An inner group's Let shadows an outer group's
// declaration of the same name.
func (g *Group) Let(name string, fn Computation) {
	g.declare(userKey(name), false, fn)
}

// LetEager declares a named binding that is forced during pre-example
// hooks, before the example body runs.
func (g *Group) LetEager(name string, fn Computation) {
	g.declare(userKey(name), true, fn)
}

// Subject declares the anonymous subject for this group. Scope.Subject and
// the implicit one-liner form read it. An anonymous subject's computation
// may call Scope.Super to invoke the declaration it shadows.
func (g *Group) Subject(fn Computation) {
	g.declare(subjectKey, false, fn)
}

// SubjectEager declares the anonymous subject and forces it during
// pre-example hooks.
func (g *Group) SubjectEager(fn Computation) {
	g.declare(subjectKey, true, fn)
}

// SubjectNamed declares the subject under a name. The computation is
// registered as an ordinary named binding, and the anonymous subject slot
// at this group is aliased to it, so Scope.Get(name), Scope.Subject, and
// the one-liner form all observe the same memoized value.
func (g *Group) SubjectNamed(name string, fn Computation) {
	g.subjectNamed(name, false, fn)
}

// SubjectNamedEager is SubjectNamed with the named binding forced during
// pre-example hooks.
func (g *Group) SubjectNamedEager(name string, fn Computation) {
	g.subjectNamed(name, true, fn)
}

func (g *Group) subjectNamed(name string, eager bool, fn Computation) {
	key := userKey(name)
	g.declare(key, eager, fn)
	g.declare(subjectKey, false, func(s *Scope) any {
		return s.force(key)
	})
}

// ItIsExpectedTo adds a one-liner example that reads the subject implicitly
// and applies the matcher to it. The example text is generated from the
// matcher's description.
func (g *Group) ItIsExpectedTo(m matchers.Matcher) *Example {
	return g.It("is expected to "+m.Describe(), func(s *Scope) {
		s.IsExpected().To(m)
	})
}

// userKey converts a declaration name into a registry key, rejecting names
// that cannot be declared.
func userKey(name string) bindingKey {
	if name == "" {
		panic("gospec: binding name must not be empty")
	}
	return bindingKey(name)
}
