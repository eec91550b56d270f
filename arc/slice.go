package arc

import (
	"sync/atomic"

	"github.com/wippyai/refkit"
	"github.com/wippyai/refkit/errors"
)

// sliceBlock is the shared header for a reference-counted []T payload. The
// elements live in a separate allocation, so storage can be handed back to
// its allocator at the last strong release while weak handles still pin the
// header. Counter protocol is identical to block.
type sliceBlock[T any] struct {
	strong atomic.Int64
	weak   atomic.Int64

	id   uint64
	data []T

	// drop runs at the last strong release with the full payload. When nil,
	// elements implementing refkit.Dropper are dropped individually.
	drop func([]T)

	// free returns the storage to its allocator, after elements are dropped.
	free func()
}

func newSliceBlock[T any](data []T, drop func([]T), free func()) *sliceBlock[T] {
	b := &sliceBlock[T]{data: data, drop: drop, free: free}
	b.id = nextBlockID()
	b.strong.Store(1)
	b.weak.Store(1)
	return b
}

func (b *sliceBlock[T]) incStrong() {
	if n := b.strong.Add(1); n <= 1 {
		panic(errors.CorruptCount(errors.PhaseAccess, "strong", n-1))
	}
}

func (b *sliceBlock[T]) decStrong() {
	n := b.strong.Add(-1)
	if n < 0 {
		panic(errors.CorruptCount(errors.PhaseRelease, "strong", n))
	}
	if n == 0 {
		b.destroyPayload()
		b.decWeak()
	}
}

func (b *sliceBlock[T]) tryIncStrong() bool {
	for {
		n := b.strong.Load()
		if n == 0 {
			return false
		}
		if n < 0 {
			panic(errors.CorruptCount(errors.PhasePromote, "strong", n))
		}
		if b.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (b *sliceBlock[T]) incWeak() {
	if n := b.weak.Add(1); n <= 1 {
		panic(errors.CorruptCount(errors.PhaseAccess, "weak", n-1))
	}
}

func (b *sliceBlock[T]) decWeak() {
	if n := b.weak.Add(-1); n < 0 {
		panic(errors.CorruptCount(errors.PhaseRelease, "weak", n))
	}
	// Nothing references the header once weak hits zero; the garbage
	// collector reclaims it.
}

// destroyPayload drops the elements, severs the header's reference to the
// storage, and then returns the storage to its allocator.
func (b *sliceBlock[T]) destroyPayload() {
	switch {
	case b.drop != nil:
		b.drop(b.data)
	case refkit.ValueDrops[T]():
		for i := range b.data {
			refkit.DropValue(&b.data[i])
		}
	}
	b.data = nil
	if f := b.free; f != nil {
		b.free = nil
		f()
	}
}

// Slice is a strong handle to a shared []T payload. It follows the same
// ownership discipline as Arc: clone to share, one releaser per handle,
// payload destroyed at the last strong release.
//
// Element access is bounds-checked against the payload length and panics
// with a structured error on violation.
type Slice[T any] struct {
	b *sliceBlock[T]
}

// NewSlice returns a strong handle owning a freshly allocated []T of length
// n with zeroed elements. Panics if n is negative.
func NewSlice[T any](n int) *Slice[T] {
	if n < 0 {
		panic(errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(n).
			Detail("negative slice length %d", n).
			Build())
	}
	return &Slice[T]{b: newSliceBlock(make([]T, n), nil, nil)}
}

// NewSliceWithDrop is NewSlice with a custom drop function, called with the
// full payload at the last strong release. A non-nil drop takes precedence
// over per-element Drop methods.
func NewSliceWithDrop[T any](n int, drop func([]T)) *Slice[T] {
	if n < 0 {
		panic(errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(n).
			Detail("negative slice length %d", n).
			Build())
	}
	return &Slice[T]{b: newSliceBlock(make([]T, n), drop, nil)}
}

// NewSliceOf returns a strong handle owning the given elements.
func NewSliceOf[T any](elems ...T) *Slice[T] {
	data := make([]T, len(elems))
	copy(data, elems)
	return &Slice[T]{b: newSliceBlock(data, nil, nil)}
}

// NewSliceBuffer adopts existing storage. At the last strong release the
// elements are dropped, then free is called to return the storage to its
// allocator. free may be nil for storage with no explicit release.
//
// The caller must not use buf after handing it over.
func NewSliceBuffer[T any](buf []T, free func()) *Slice[T] {
	return &Slice[T]{b: newSliceBlock(buf, nil, free)}
}

// NewBytes allocates an n-byte buffer from a and returns a strong handle
// owning it. The buffer returns to the allocator when the last strong
// handle releases.
func NewBytes(a refkit.Allocator, n int) (*Slice[byte], error) {
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
	return NewSliceBuffer(buf, release), nil
}

// Clone returns a new handle owning the same payload. Panics if s has been
// released.
func (s *Slice[T]) Clone() *Slice[T] {
	if s == nil || s.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Slice"))
	}
	s.b.incStrong()
	return &Slice[T]{b: s.b}
}

// Release gives up this handle's ownership unit. Idempotent per handle.
func (s *Slice[T]) Release() {
	if s == nil || s.b == nil {
		return
	}
	b := s.b
	s.b = nil
	b.decStrong()
}

// Steal empties s and returns a new handle owning its unit.
func (s *Slice[T]) Steal() *Slice[T] {
	ret := &Slice[T]{b: s.b}
	s.b = nil
	return ret
}

// Valid reports whether the handle currently owns a unit. Safe on nil.
func (s *Slice[T]) Valid() bool {
	return s != nil && s.b != nil
}

// Len returns the payload length. Panics if s has been released.
func (s *Slice[T]) Len() int {
	if s == nil || s.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Slice"))
	}
	return len(s.b.data)
}

// At returns element i. Panics if s has been released or i is out of
// bounds.
func (s *Slice[T]) At(i int) T {
	return *s.Ptr(i)
}

// Ptr returns a pointer to element i. Panics if s has been released or i is
// out of bounds. The pointer is valid only while a strong handle remains.
func (s *Slice[T]) Ptr(i int) *T {
	if s == nil || s.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Slice"))
	}
	if i < 0 || i >= len(s.b.data) {
		panic(errors.OutOfBounds(errors.PhaseAccess, i, len(s.b.data)))
	}
	return &s.b.data[i]
}

// Set stores v at element i. Panics if s has been released or i is out of
// bounds.
func (s *Slice[T]) Set(i int, v T) {
	*s.Ptr(i) = v
}

// Data returns the payload as a plain slice. The slice borrows from the
// shared storage: it is valid only while a strong handle remains and must
// not be retained past the handles that justify it.
func (s *Slice[T]) Data() []T {
	if s == nil || s.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Slice"))
	}
	return s.b.data
}

// UseCount returns the number of strong handles sharing the payload, or 0
// for an empty handle.
func (s *Slice[T]) UseCount() int64 {
	if s == nil || s.b == nil {
		return 0
	}
	return s.b.strong.Load()
}

// Unique reports whether s is the only strong handle to its payload.
func (s *Slice[T]) Unique() bool {
	return s.UseCount() == 1
}

// ID returns the identity of the shared header, or 0 for an empty handle.
func (s *Slice[T]) ID() uint64 {
	if s == nil || s.b == nil {
		return 0
	}
	return s.b.id
}

// Same reports whether s and other own the same payload.
func (s *Slice[T]) Same(other *Slice[T]) bool {
	return s.ID() == other.ID()
}

// Less orders handles by header identity.
func (s *Slice[T]) Less(other *Slice[T]) bool {
	return s.ID() < other.ID()
}

// Downgrade returns a weak handle observing the payload without owning it.
// Panics if s has been released.
func (s *Slice[T]) Downgrade() *WeakSlice[T] {
	if s == nil || s.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.Slice"))
	}
	s.b.incWeak()
	return &WeakSlice[T]{b: s.b}
}

// WeakSlice is a weak handle to a shared []T payload.
type WeakSlice[T any] struct {
	b *sliceBlock[T]
}

// Clone returns a new weak handle observing the same payload. Panics if w
// has been released.
func (w *WeakSlice[T]) Clone() *WeakSlice[T] {
	if w == nil || w.b == nil {
		panic(errors.UseAfterRelease(errors.PhaseAccess, "arc.WeakSlice"))
	}
	w.b.incWeak()
	return &WeakSlice[T]{b: w.b}
}

// Release gives up this handle's claim on the shared header. Idempotent per
// handle; safe on nil and empty handles.
func (w *WeakSlice[T]) Release() {
	if w == nil || w.b == nil {
		return
	}
	b := w.b
	w.b = nil
	b.decWeak()
}

// Steal empties w and returns a new weak handle taking over its claim.
func (w *WeakSlice[T]) Steal() *WeakSlice[T] {
	ret := &WeakSlice[T]{b: w.b}
	w.b = nil
	return ret
}

// Expired reports whether the payload has been destroyed. Empty handles
// report true.
func (w *WeakSlice[T]) Expired() bool {
	return w == nil || w.b == nil || w.b.strong.Load() == 0
}

// Lock attempts to promote w to a strong handle. Succeeds only while at
// least one strong handle remains.
func (w *WeakSlice[T]) Lock() (*Slice[T], bool) {
	if w == nil || w.b == nil {
		return nil, false
	}
	if !w.b.tryIncStrong() {
		return nil, false
	}
	return &Slice[T]{b: w.b}, true
}

// Valid reports whether the handle still holds a claim on a header.
func (w *WeakSlice[T]) Valid() bool {
	return w != nil && w.b != nil
}

// UseCount returns the current strong count, or 0 for an empty or expired
// handle.
func (w *WeakSlice[T]) UseCount() int64 {
	if w == nil || w.b == nil {
		return 0
	}
	return w.b.strong.Load()
}

// ID returns the identity of the shared header, or 0 for an empty handle.
func (w *WeakSlice[T]) ID() uint64 {
	if w == nil || w.b == nil {
		return 0
	}
	return w.b.id
}
