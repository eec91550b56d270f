package box

import (
	"github.com/wippyai/refkit"
	"github.com/wippyai/refkit/errors"
)

// BoxSlice owns a []T payload. Destruction drops the elements and then
// returns the storage to its allocator, mirroring the slice handles in
// package arc but with a single owner and no counting.
//
// The zero value and a nil *BoxSlice are empty.
type BoxSlice[T any] struct {
	data []T

	// drop runs at destruction with the full payload. When nil, elements
	// implementing refkit.Dropper are dropped individually.
	drop func([]T)

	// free returns the storage to its allocator, after elements are dropped.
	free func()
}

// NewSlice returns a box owning a freshly allocated []T of length n with
// zeroed elements. Panics if n is negative.
func NewSlice[T any](n int) *BoxSlice[T] {
	if n < 0 {
		panic(errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(n).
			Detail("negative slice length %d", n).
			Build())
	}
	return &BoxSlice[T]{data: make([]T, n)}
}

// NewSliceWithDrop is NewSlice with a custom drop function, called with the
// full payload at destruction. A non-nil drop takes precedence over
// per-element Drop methods.
func NewSliceWithDrop[T any](n int, drop func([]T)) *BoxSlice[T] {
	if n < 0 {
		panic(errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(n).
			Detail("negative slice length %d", n).
			Build())
	}
	return &BoxSlice[T]{data: make([]T, n), drop: drop}
}

// SliceOf returns a box owning the given elements.
func SliceOf[T any](elems ...T) *BoxSlice[T] {
	data := make([]T, len(elems))
	copy(data, elems)
	return &BoxSlice[T]{data: data}
}

// AdoptSlice takes ownership of existing storage. At destruction the
// elements are dropped, then free is called to return the storage to its
// allocator. free may be nil.
//
// The caller must not use buf after handing it over.
func AdoptSlice[T any](buf []T, free func()) *BoxSlice[T] {
	return &BoxSlice[T]{data: buf, free: free}
}

// NewBytes allocates an n-byte buffer from a and returns a box owning it.
func NewBytes(a refkit.Allocator, n int) (*BoxSlice[byte], error) {
	if a == nil {
		return nil, errors.NilPointer(errors.PhaseAlloc, "refkit.Allocator")
	}
	if n < 0 {
		return nil, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(n).
			Detail("negative buffer length %d", n).
			Build()
	}
	buf, release, err := a.Alloc(n)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseAlloc, n, err)
	}
	return AdoptSlice(buf, release), nil
}

// Len returns the payload length. Panics if the box is empty.
func (b *BoxSlice[T]) Len() int {
	if b == nil || b.data == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "box.BoxSlice"))
	}
	return len(b.data)
}

// At returns element i. Panics if the box is empty or i is out of bounds.
func (b *BoxSlice[T]) At(i int) T {
	return *b.Ptr(i)
}

// Ptr returns a pointer to element i. Panics if the box is empty or i is
// out of bounds.
func (b *BoxSlice[T]) Ptr(i int) *T {
	if b == nil || b.data == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "box.BoxSlice"))
	}
	if i < 0 || i >= len(b.data) {
		panic(errors.OutOfBounds(errors.PhaseAccess, i, len(b.data)))
	}
	return &b.data[i]
}

// Set stores v at element i. Panics if the box is empty or i is out of
// bounds.
func (b *BoxSlice[T]) Set(i int, v T) {
	*b.Ptr(i) = v
}

// Data returns the payload as a plain slice, borrowed from the box. It must
// not be used after the box releases the storage. Panics if the box is
// empty.
func (b *BoxSlice[T]) Data() []T {
	if b == nil || b.data == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "box.BoxSlice"))
	}
	return b.data
}

// Valid reports whether the box currently owns storage. Safe on nil.
func (b *BoxSlice[T]) Valid() bool {
	return b != nil && b.data != nil
}

// Release destroys the payload: elements are dropped, the box is emptied,
// and the storage goes back to its allocator. Idempotent; safe on nil and
// empty boxes.
func (b *BoxSlice[T]) Release() {
	if b == nil || b.data == nil {
		return
	}
	data := b.data
	b.data = nil
	switch {
	case b.drop != nil:
		b.drop(data)
	case refkit.ValueDrops[T]():
		for i := range data {
			refkit.DropValue(&data[i])
		}
	}
	if f := b.free; f != nil {
		b.free = nil
		f()
	}
}

// Close releases the box. It implements io.Closer; the error is always nil.
func (b *BoxSlice[T]) Close() error {
	b.Release()
	return nil
}

// Take relinquishes the storage without dropping elements or calling free,
// and empties the box. Returns nil when the box is already empty. The
// caller becomes responsible for the storage and its cleanup.
func (b *BoxSlice[T]) Take() []T {
	if b == nil || b.data == nil {
		return nil
	}
	data := b.data
	b.data = nil
	b.free = nil
	return data
}

// Steal empties b and returns a new box owning its storage.
func (b *BoxSlice[T]) Steal() *BoxSlice[T] {
	ret := &BoxSlice[T]{data: b.data, drop: b.drop, free: b.free}
	b.data = nil
	b.free = nil
	return ret
}

// Swap exchanges the contents of two boxes. Panics if either box is nil.
func (b *BoxSlice[T]) Swap(other *BoxSlice[T]) {
	if b == nil || other == nil {
		panic(errors.NilPointer(errors.PhaseAccess, "box.BoxSlice"))
	}
	b.data, other.data = other.data, b.data
	b.drop, other.drop = other.drop, b.drop
	b.free, other.free = other.free, b.free
}
