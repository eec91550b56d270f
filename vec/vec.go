package vec

import (
	"cmp"

	"github.com/wippyai/refkit"
	"github.com/wippyai/refkit/box"
	"github.com/wippyai/refkit/errors"
)

// Vec is a growable array owning its elements. The zero value is empty and
// ready to use.
//
// Slots beyond the length are always zero: every operation that removes
// elements clears their slots so the garbage collector is never blocked by
// stale references in spare capacity.
type Vec[T any] struct {
	buf *box.BoxSlice[T]
	n   int
}

// noElemDrop suppresses the buffer's own element dropping; the vector
// destroys exactly its live elements itself.
func noElemDrop[T any]([]T) {}

// New returns an empty vector.
func New[T any]() *Vec[T] {
	return &Vec[T]{}
}

// WithLen returns a vector of length n with zeroed elements. Panics if n is
// negative.
func WithLen[T any](n int) *Vec[T] {
	v := &Vec[T]{}
	v.Resize(n)
	return v
}

// WithCapacity returns an empty vector with room for n elements before the
// first reallocation. Panics if n is negative.
func WithCapacity[T any](n int) *Vec[T] {
	if n < 0 {
		panic(errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(n).
			Detail("negative capacity %d", n).
			Build())
	}
	v := &Vec[T]{}
	if n > 0 {
		v.realloc(n)
	}
	return v
}

// Of returns a vector owning the given elements.
func Of[T any](elems ...T) *Vec[T] {
	v := &Vec[T]{}
	v.Assign(elems)
	return v
}

// Repeat returns a vector of count copies of value. Panics if count is
// negative.
func Repeat[T any](value T, count int) *Vec[T] {
	v := &Vec[T]{}
	v.ResizeFill(count, value)
	return v
}

// FromSlice returns a vector owning a copy of src.
func FromSlice[T any](src []T) *Vec[T] {
	v := &Vec[T]{}
	v.Assign(src)
	return v
}

// Len returns the number of elements. Safe on nil.
func (v *Vec[T]) Len() int {
	if v == nil {
		return 0
	}
	return v.n
}

// Cap returns the storage capacity. Safe on nil.
func (v *Vec[T]) Cap() int {
	if v == nil || v.buf == nil {
		return 0
	}
	return v.buf.Len()
}

// At returns element i. Panics if i is out of bounds.
func (v *Vec[T]) At(i int) T {
	return *v.Ptr(i)
}

// Ptr returns a pointer to element i. Panics if i is out of bounds. The
// pointer is invalidated by any operation that reallocates the storage.
func (v *Vec[T]) Ptr(i int) *T {
	n := v.Len()
	if i < 0 || i >= n {
		panic(errors.OutOfBounds(errors.PhaseAccess, i, n))
	}
	return v.buf.Ptr(i)
}

// Set stores value at element i. Panics if i is out of bounds.
func (v *Vec[T]) Set(i int, value T) {
	*v.Ptr(i) = value
}

// Front returns a pointer to the first element. Panics if the vector is
// empty.
func (v *Vec[T]) Front() *T {
	return v.Ptr(0)
}

// Back returns a pointer to the last element. Panics if the vector is
// empty.
func (v *Vec[T]) Back() *T {
	return v.Ptr(v.Len() - 1)
}

// Push appends value, doubling the capacity when full.
func (v *Vec[T]) Push(value T) {
	if v.n == v.Cap() {
		newCap := 1
		if c := v.Cap(); c > 0 {
			newCap = 2 * c
			if newCap < 0 {
				panic(errors.Overflow(errors.PhaseAlloc, "vector capacity", c))
			}
		}
		v.realloc(newCap)
	}
	v.buf.Set(v.n, value)
	v.n++
}

// Append appends all elements in order.
func (v *Vec[T]) Append(elems ...T) {
	for _, e := range elems {
		v.Push(e)
	}
}

// Pop removes and returns the last element. The element is transferred, not
// destroyed: the caller takes over its cleanup. Returns the zero value and
// false on an empty vector.
func (v *Vec[T]) Pop() (T, bool) {
	var zero T
	if v.Len() == 0 {
		return zero, false
	}
	v.n--
	out := v.buf.At(v.n)
	v.buf.Set(v.n, zero)
	return out, true
}

// Clear destroys all elements and resets the length to zero. Capacity is
// kept.
func (v *Vec[T]) Clear() {
	if v.Len() == 0 {
		return
	}
	v.destroyRange(0, v.n)
	v.n = 0
}

// Reserve grows the capacity to at least n. It never shrinks and never
// changes the length.
func (v *Vec[T]) Reserve(n int) {
	if n <= v.Cap() {
		return
	}
	v.realloc(n)
}

// ShrinkToFit drops spare capacity, reallocating to exactly the current
// length. An empty vector gives up its storage entirely.
func (v *Vec[T]) ShrinkToFit() {
	if v == nil || v.buf == nil || v.n == v.Cap() {
		return
	}
	if v.n == 0 {
		v.buf.Release()
		v.buf = nil
		return
	}
	v.realloc(v.n)
}

// Resize sets the length to n. Growth appends zeroed elements; shrinking
// destroys the removed elements. Panics if n is negative.
func (v *Vec[T]) Resize(n int) {
	switch {
	case n < 0:
		panic(errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Value(n).
			Detail("negative length %d", n).
			Build())
	case n > v.n:
		v.Reserve(n)
		// Spare slots are maintained zero, so grown elements need no init.
		v.n = n
	case n < v.n:
		v.destroyRange(n, v.n)
		v.n = n
	}
}

// ResizeFill is Resize with value instead of zero for appended elements.
func (v *Vec[T]) ResizeFill(n int, value T) {
	switch {
	case n < 0:
		panic(errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Value(n).
			Detail("negative length %d", n).
			Build())
	case n > v.n:
		v.Reserve(n)
		for i := v.n; i < n; i++ {
			v.buf.Set(i, value)
		}
		v.n = n
	case n < v.n:
		v.destroyRange(n, v.n)
		v.n = n
	}
}

// Assign replaces the contents with a copy of src, reusing capacity when it
// fits. The previous elements are destroyed.
func (v *Vec[T]) Assign(src []T) {
	v.Clear()
	if len(src) == 0 {
		return
	}
	if len(src) > v.Cap() {
		v.realloc(len(src))
	}
	copy(v.buf.Data(), src)
	v.n = len(src)
}

// Data returns the live elements as a plain slice borrowed from the
// vector's storage. It is invalidated by any operation that reallocates or
// destroys elements. Returns nil for an empty vector.
func (v *Vec[T]) Data() []T {
	if v.Len() == 0 {
		return nil
	}
	return v.buf.Data()[:v.n]
}

// Each iterates over the elements in order until fn returns false.
func (v *Vec[T]) Each(fn func(i int, value T) bool) {
	for i := 0; i < v.Len(); i++ {
		if !fn(i, v.buf.At(i)) {
			return
		}
	}
}

// Swap exchanges the contents of two vectors. Panics if either is nil.
func (v *Vec[T]) Swap(other *Vec[T]) {
	if v == nil || other == nil {
		panic(errors.NilPointer(errors.PhaseAccess, "vec.Vec"))
	}
	v.buf, other.buf = other.buf, v.buf
	v.n, other.n = other.n, v.n
}

// Clone returns a deep copy with capacity trimmed to the length.
func (v *Vec[T]) Clone() *Vec[T] {
	out := &Vec[T]{}
	if v.Len() > 0 {
		out.realloc(v.n)
		copy(out.buf.Data(), v.Data())
		out.n = v.n
	}
	return out
}

// Release destroys all elements, returns the storage, and leaves an empty
// reusable vector. Idempotent; safe on nil.
func (v *Vec[T]) Release() {
	if v == nil {
		return
	}
	v.Clear()
	if v.buf != nil {
		v.buf.Release()
		v.buf = nil
	}
}

// realloc moves the live elements into a fresh buffer of capacity newCap.
// The old storage is abandoned without dropping elements; they moved.
func (v *Vec[T]) realloc(newCap int) {
	nb := box.NewSliceWithDrop[T](newCap, noElemDrop[T])
	if v.buf != nil {
		copy(nb.Data(), v.buf.Data()[:v.n])
		v.buf.Take()
	}
	v.buf = nb
}

// destroyRange drops elements in [from, to) and zeroes their slots.
func (v *Vec[T]) destroyRange(from, to int) {
	if refkit.ValueDrops[T]() {
		for i := from; i < to; i++ {
			refkit.DropValue(v.buf.Ptr(i))
		}
	}
	var zero T
	for i := from; i < to; i++ {
		v.buf.Set(i, zero)
	}
}

// Equal reports whether two vectors hold equal elements in the same order.
// Nil and empty vectors compare equal.
func Equal[T comparable](a, b *Vec[T]) bool {
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

// Compare orders two vectors lexicographically, returning -1, 0, or 1.
// A prefix orders before its extension.
func Compare[T cmp.Ordered](a, b *Vec[T]) int {
	n := min(a.Len(), b.Len())
	for i := 0; i < n; i++ {
		if c := cmp.Compare(a.At(i), b.At(i)); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Len(), b.Len())
}
