package arc

import (
	"github.com/wippyai/refkit/errors"
)

// Arc is a strong handle to a shared value of type T. Every live Arc is an
// owner: the value's cleanup runs exactly once, when the last owner
// releases.
//
// The zero value and a nil *Arc are empty handles. An empty handle can be
// released (a no-op) but panics on access.
//
// An Arc must be shared by cloning, not by copying the handle. Each handle
// has a single releaser; the underlying value may be used from any number of
// goroutines through separate clones.
type Arc[T any] struct {
	b *block[T]
}

// New returns a strong handle owning value.
//
// If the payload implements refkit.Dropper, Drop is called when the last
// strong handle releases.
func New[T any](value T) *Arc[T] {
	b := newBlock[T](nil)
	b.value = value
	return &Arc[T]{b: b}
}

// NewWithDrop returns a strong handle owning value. At the last strong
// release, drop is called with a pointer to the payload before it is
// cleared. A non-nil drop takes precedence over the payload's own Drop
// method.
func NewWithDrop[T any](value T, drop func(*T)) *Arc[T] {
	b := newBlock(drop)
	b.value = value
	return &Arc[T]{b: b}
}

// NewInPlace constructs the payload in place. The mk callback receives a
// pointer to the zero payload and returns the drop function to run at
// destruction, or nil.
//
// This is useful when the payload cannot be copied after construction.
func NewInPlace[T any](mk func(v *T) (drop func(*T))) *Arc[T] {
	b := newBlock[T](nil)
	b.drop = mk(&b.value)
	return &Arc[T]{b: b}
}

// Clone returns a new handle owning the same value. Panics if a has been
// released.
func (a *Arc[T]) Clone() *Arc[T] {
	if a == nil || a.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Arc"))
	}
	a.b.incStrong()
	return &Arc[T]{b: a.b}
}

// Release gives up this handle's ownership unit. If it is the last one, the
// payload is destroyed. Release is idempotent per handle: releasing an
// already released or empty handle has no effect, so a deferred Release is
// always safe.
func (a *Arc[T]) Release() {
	if a == nil || a.b == nil {
		return
	}
	b := a.b
	a.b = nil
	b.decStrong()
}

// Steal empties a and returns a new handle owning its unit. The use count
// is unchanged. Stealing an empty handle yields an empty handle.
//
// Steal makes ownership transfer explicit: the caller keeps a deferred
// Release on the original handle while the stolen handle travels.
func (a *Arc[T]) Steal() *Arc[T] {
	ret := &Arc[T]{b: a.b}
	a.b = nil
	return ret
}

// Get returns a pointer to the payload. Panics if a has been released.
//
// The pointer is valid only while at least one strong handle remains; it
// must not be used after the handles that justify it are released.
func (a *Arc[T]) Get() *T {
	if a == nil || a.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Arc"))
	}
	return &a.b.value
}

// Valid reports whether the handle currently owns a unit. Safe on nil.
func (a *Arc[T]) Valid() bool {
	return a != nil && a.b != nil
}

// UseCount returns the number of strong handles sharing the value, or 0 for
// an empty handle. The value is a snapshot and may be stale by the time it
// is read, except that 1 is stable when the caller holds the only handle.
func (a *Arc[T]) UseCount() int64 {
	if a == nil || a.b == nil {
		return 0
	}
	return a.b.strong.Load()
}

// Unique reports whether a is the only strong handle to its value.
func (a *Arc[T]) Unique() bool {
	return a.UseCount() == 1
}

// ID returns the identity of the shared header, or 0 for an empty handle.
// IDs are unique per payload lifetime within the process.
func (a *Arc[T]) ID() uint64 {
	if a == nil || a.b == nil {
		return 0
	}
	return a.b.id
}

// Same reports whether a and other own the same payload. Two empty handles
// compare as same.
func (a *Arc[T]) Same(other *Arc[T]) bool {
	return a.ID() == other.ID()
}

// Less orders handles by header identity, giving a strict weak ordering
// suitable for sorted containers and lock-ordering schemes. Handles to the
// same payload never order before each other; empty handles order first.
func (a *Arc[T]) Less(other *Arc[T]) bool {
	return a.ID() < other.ID()
}

// Downgrade returns a weak handle observing the value without owning it.
// Panics if a has been released.
func (a *Arc[T]) Downgrade() *Weak[T] {
	if a == nil || a.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Arc"))
	}
	a.b.incWeak()
	return &Weak[T]{b: a.b}
}
