package box

import (
	"github.com/wippyai/refkit"
	"github.com/wippyai/refkit/errors"
)

// Box owns a single value of type T. The zero value and a nil *Box are
// empty boxes: releasing them is a no-op, accessing them panics.
type Box[T any] struct {
	v    *T
	drop func(*T)
}

// New returns a box owning value. If the payload implements refkit.Dropper,
// Drop runs when the box releases it.
func New[T any](value T) *Box[T] {
	return &Box[T]{v: &value}
}

// NewWithDrop returns a box owning value with a custom drop function, which
// takes precedence over the payload's own Drop method. The drop function is
// kept across Reset.
func NewWithDrop[T any](value T, drop func(*T)) *Box[T] {
	return &Box[T]{v: &value, drop: drop}
}

// FromPtr returns a box adopting an existing allocation. drop may be nil.
// Panics if p is nil. The caller must not use p after handing it over.
func FromPtr[T any](p *T, drop func(*T)) *Box[T] {
	if p == nil {
		panic(errors.NilPointer(errors.PhaseAlloc, "box.FromPtr"))
	}
	return &Box[T]{v: p, drop: drop}
}

// Get returns a pointer to the boxed value. Panics if the box is empty.
func (b *Box[T]) Get() *T {
	if b == nil || b.v == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "box.Box"))
	}
	return b.v
}

// Valid reports whether the box currently owns a value. Safe on nil.
func (b *Box[T]) Valid() bool {
	return b != nil && b.v != nil
}

// Release destroys the boxed value and empties the box. Idempotent; safe on
// nil and empty boxes.
func (b *Box[T]) Release() {
	if b == nil || b.v == nil {
		return
	}
	v := b.v
	b.v = nil
	b.destroy(v)
}

// Close releases the box. It implements io.Closer so a box can ride a defer
// chain or any closer-aware helper; the error is always nil.
func (b *Box[T]) Close() error {
	b.Release()
	return nil
}

// Reset destroys the current value, if any, and boxes a new one. The drop
// function configured at construction is kept.
func (b *Box[T]) Reset(value T) {
	if b == nil {
		panic(errors.NilPointer(errors.PhaseAccess, "box.Box"))
	}
	if b.v != nil {
		v := b.v
		b.v = nil
		b.destroy(v)
	}
	b.v = &value
}

// Take relinquishes ownership without destroying the value and empties the
// box. Returns nil when the box is already empty. The caller becomes
// responsible for any cleanup.
func (b *Box[T]) Take() *T {
	if b == nil || b.v == nil {
		return nil
	}
	v := b.v
	b.v = nil
	return v
}

// Steal empties b and returns a new box owning its value. Stealing an empty
// box yields an empty box.
func (b *Box[T]) Steal() *Box[T] {
	ret := &Box[T]{v: b.v, drop: b.drop}
	b.v = nil
	return ret
}

// Swap exchanges the contents of two boxes, including their drop functions.
// Either box may be empty. Panics if other is nil.
func (b *Box[T]) Swap(other *Box[T]) {
	if b == nil || other == nil {
		panic(errors.NilPointer(errors.PhaseAccess, "box.Box"))
	}
	b.v, other.v = other.v, b.v
	b.drop, other.drop = other.drop, b.drop
}

func (b *Box[T]) destroy(v *T) {
	if b.drop != nil {
		b.drop(v)
		return
	}
	refkit.DropValue(v)
}
