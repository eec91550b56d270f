package arc

import (
	"github.com/wippyai/refkit/errors"
)

// Weak is a weak handle to a shared value of type T. It does not keep the
// value alive: once the last strong handle releases, the payload is
// destroyed and every Weak to it is expired. A Weak only pins the shared
// header.
//
// The zero value and a nil *Weak are empty handles; they behave as expired.
type Weak[T any] struct {
	b *block[T]
}

// Clone returns a new weak handle observing the same value. Cloning works
// even when the value is already expired. Panics if w has been released.
func (w *Weak[T]) Clone() *Weak[T] {
	if w == nil || w.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Weak"))
	}
	w.b.incWeak()
	return &Weak[T]{b: w.b}
}

// Release gives up this handle's claim on the shared header. Idempotent per
// handle; safe on nil and empty handles.
func (w *Weak[T]) Release() {
	if w == nil || w.b == nil {
		return
	}
	b := w.b
	w.b = nil
	b.decWeak()
}

// Steal empties w and returns a new weak handle taking over its claim.
func (w *Weak[T]) Steal() *Weak[T] {
	ret := &Weak[T]{b: w.b}
	w.b = nil
	return ret
}

// Expired reports whether the value has been destroyed. Empty handles
// report true. A false result is only a snapshot: the value may expire
// immediately after; use Lock to act on it.
func (w *Weak[T]) Expired() bool {
	return w == nil || w.b == nil || w.b.strong.Load() == 0
}

// Lock attempts to promote w to a strong handle. It succeeds only while at
// least one strong handle remains, in which case the returned Arc is a new
// owner the caller must release. Lock never resurrects a destroyed payload:
// the strong count cannot leave zero.
func (w *Weak[T]) Lock() (*Arc[T], bool) {
	if w == nil || w.b == nil {
		return nil, false
	}
	if !w.b.tryIncStrong() {
		return nil, false
	}
	return &Arc[T]{b: w.b}, true
}

// Valid reports whether the handle still holds a claim on a header. A valid
// weak handle may still be expired.
func (w *Weak[T]) Valid() bool {
	return w != nil && w.b != nil
}

// UseCount returns the current strong count, or 0 for an empty or expired
// handle. Snapshot semantics, same as Arc.UseCount.
func (w *Weak[T]) UseCount() int64 {
	if w == nil || w.b == nil {
		return 0
	}
	return w.b.strong.Load()
}

// ID returns the identity of the shared header, or 0 for an empty handle.
// A Weak and an Arc to the same payload report the same ID.
func (w *Weak[T]) ID() uint64 {
	if w == nil || w.b == nil {
		return 0
	}
	return w.b.id
}
