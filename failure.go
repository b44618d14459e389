package gospec

import "errors"

// Sentinel errors for binding resolution failures. All of them surface as
// example failures; none are recovered by the engine itself. Match with
// errors.Is against a Result's Err.
var (
	// ErrUnboundBinding is reported when no group in the example's
	// ancestor chain declares the requested key.
	ErrUnboundBinding = errors.New("no binding declared for key")

	// ErrNoShadowedBinding is reported when Super is invoked from an
	// anonymous subject that has no outer declaration to defer to.
	ErrNoShadowedBinding = errors.New("no shadowed binding exists in any enclosing group")

	// ErrSuperOnNamedBinding is reported whenever Super is invoked from a
	// named binding's computation. Named bindings are self-contained;
	// chaining to the shadowed computation is reserved for the anonymous
	// subject. This holds even when a shadowed declaration exists.
	ErrSuperOnNamedBinding = errors.New("invoking the shadowed binding is not supported for named bindings")

	// ErrCyclicBinding is reported when a computation reads its own key
	// while that key is still resolving.
	ErrCyclicBinding = errors.New("binding computation refers to itself while resolving")
)

// Failure aborts the running example. The runner recovers it from the
// panic that Scope raises and records Err as the example's failure.
type Failure struct {
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string { return f.Err.Error() }

// Unwrap exposes the underlying error for errors.Is matching.
func (f *Failure) Unwrap() error { return f.Err }
