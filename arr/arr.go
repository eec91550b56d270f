package arr

import (
	"cmp"

	"github.com/wippyai/refkit/box"
	"github.com/wippyai/refkit/errors"
)

// Arr is a fixed-length array owning its elements. The length is set at
// construction and never changes. The zero value is a length-zero array.
type Arr[T any] struct {
	buf *box.BoxSlice[T]
}

// New returns an array of length n with zeroed elements. Panics if n is
// negative.
func New[T any](n int) *Arr[T] {
	return &Arr[T]{buf: box.NewSlice[T](n)}
}

// Of returns an array owning the given elements.
func Of[T any](elems ...T) *Arr[T] {
	return &Arr[T]{buf: box.SliceOf(elems...)}
}

// FromSlice returns an array owning a copy of src.
func FromSlice[T any](src []T) *Arr[T] {
	return &Arr[T]{buf: box.SliceOf(src...)}
}

// Repeat returns an array of count copies of value. Panics if count is
// negative.
func Repeat[T any](value T, count int) *Arr[T] {
	a := New[T](count)
	a.Fill(value)
	return a
}

// Len returns the array length. Safe on nil and released arrays, which
// report zero.
func (a *Arr[T]) Len() int {
	if a == nil || !a.buf.Valid() {
		return 0
	}
	return a.buf.Len()
}

// At returns element i. Panics if i is out of bounds.
func (a *Arr[T]) At(i int) T {
	return *a.Ptr(i)
}

// Ptr returns a pointer to element i. Panics if i is out of bounds. The
// pointer stays valid until the array is released.
func (a *Arr[T]) Ptr(i int) *T {
	n := a.Len()
	if i < 0 || i >= n {
		panic(errors.OutOfBounds(errors.PhaseAccess, i, n))
	}
	return a.buf.Ptr(i)
}

// Set stores value at element i. Panics if i is out of bounds.
func (a *Arr[T]) Set(i int, value T) {
	*a.Ptr(i) = value
}

// Front returns a pointer to the first element. Panics if the array is
// empty.
func (a *Arr[T]) Front() *T {
	return a.Ptr(0)
}

// Back returns a pointer to the last element. Panics if the array is empty.
func (a *Arr[T]) Back() *T {
	return a.Ptr(a.Len() - 1)
}

// Fill sets every element to value.
func (a *Arr[T]) Fill(value T) {
	for i := 0; i < a.Len(); i++ {
		a.buf.Set(i, value)
	}
}

// Data returns the elements as a plain slice borrowed from the array's
// storage. It must not be used after Release. Returns nil for an empty
// array.
func (a *Arr[T]) Data() []T {
	if a.Len() == 0 {
		return nil
	}
	return a.buf.Data()
}

// Each iterates over the elements in order until fn returns false.
func (a *Arr[T]) Each(fn func(i int, value T) bool) {
	for i := 0; i < a.Len(); i++ {
		if !fn(i, a.buf.At(i)) {
			return
		}
	}
}

// Swap exchanges the contents of two arrays of the same length. Panics if
// either array is nil or the lengths differ.
func (a *Arr[T]) Swap(other *Arr[T]) {
	if a == nil || other == nil {
		panic(errors.NilPointer(errors.PhaseAccess, "arr.Arr"))
	}
	if a.Len() != other.Len() {
		panic(errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Detail("length mismatch: %d vs %d", a.Len(), other.Len()).
			Build())
	}
	a.buf, other.buf = other.buf, a.buf
}

// Clone returns a deep copy of the array.
func (a *Arr[T]) Clone() *Arr[T] {
	out := New[T](a.Len())
	if a.Len() > 0 {
		copy(out.buf.Data(), a.buf.Data())
	}
	return out
}

// Release destroys the elements and frees the storage, leaving a
// length-zero array. Idempotent; safe on nil.
func (a *Arr[T]) Release() {
	if a == nil {
		return
	}
	a.buf.Release()
	a.buf = nil
}

// Equal reports whether two arrays hold equal elements in the same order.
// Nil and empty arrays compare equal.
func Equal[T comparable](a, b *Arr[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			return false
		}
	}
	return true
}

// Compare orders two arrays lexicographically, returning -1, 0, or 1.
func Compare[T cmp.Ordered](a, b *Arr[T]) int {
	n := min(a.Len(), b.Len())
	for i := 0; i < n; i++ {
		if c := cmp.Compare(a.At(i), b.At(i)); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Len(), b.Len())
}
