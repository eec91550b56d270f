package arc

import (
	"sync/atomic"

	"github.com/wippyai/refkit"
	"github.com/wippyai/refkit/errors"
)

// blockID is the source of process-unique header identities. ID 0 is
// reserved for empty handles.
var blockID atomic.Uint64

func nextBlockID() uint64 {
	return blockID.Add(1)
}

// block is the shared header for a single reference-counted value. The
// payload is stored inline, so its memory is reclaimed together with the
// header at the last weak release; destruction at the last strong release
// runs user cleanup and clears the value.
//
// strong counts live strong handles. weak counts live weak handles plus one
// unit held collectively by the strong handles, so the header survives until
// both groups are gone.
type block[T any] struct {
	strong atomic.Int64
	weak   atomic.Int64

	// id identifies this header for equality and ordering between handles.
	// Reassigned on every reuse through a pool.
	id uint64

	value T

	// drop runs at the last strong release, before the value is cleared.
	drop func(*T)

	// recycle, when set, receives the header at the last weak release
	// instead of leaving it to the garbage collector.
	recycle func(*block[T])
}

// init prepares a fresh or recycled header for a new payload lifetime.
func (b *block[T]) init(drop func(*T)) {
	b.id = nextBlockID()
	b.strong.Store(1)
	b.weak.Store(1)
	b.drop = drop
}

func newBlock[T any](drop func(*T)) *block[T] {
	b := &block[T]{}
	b.init(drop)
	return b
}

// incStrong adds an ownership unit. The caller must already hold one, so a
// count at or below zero means a corrupted or smuggled handle.
func (b *block[T]) incStrong() {
	if n := b.strong.Add(1); n <= 1 {
		panic(errors.CorruptCount(errors.PhaseAccess, "strong", n-1))
	}
}

// decStrong drops an ownership unit. The last unit destroys the payload and
// then drops the strong group's weak unit.
func (b *block[T]) decStrong() {
	n := b.strong.Add(-1)
	if n < 0 {
		panic(errors.CorruptCount(errors.PhaseRelease, "strong", n))
	}
	if n == 0 {
		b.destroyPayload()
		b.decWeak()
	}
}

// tryIncStrong attempts to add an ownership unit without holding one. It
// succeeds only while at least one unit remains: once the count reaches zero
// it can never leave zero again.
func (b *block[T]) tryIncStrong() bool {
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

func (b *block[T]) incWeak() {
	if n := b.weak.Add(1); n <= 1 {
		panic(errors.CorruptCount(errors.PhaseAccess, "weak", n-1))
	}
}

// decWeak drops a weak unit. The last unit reclaims the header.
func (b *block[T]) decWeak() {
	n := b.weak.Add(-1)
	if n < 0 {
		panic(errors.CorruptCount(errors.PhaseRelease, "weak", n))
	}
	if n == 0 {
		b.deallocate()
	}
}

// destroyPayload runs user cleanup for the value. Headers destined for a
// pool keep their value allocated for reuse; all others clear it so the
// garbage collector can reclaim what it references even while weak handles
// pin the header.
func (b *block[T]) destroyPayload() {
	if b.drop != nil {
		b.drop(&b.value)
	} else {
		refkit.DropValue(&b.value)
	}
	if b.recycle == nil {
		var zero T
		b.value = zero
	}
}

// deallocate reclaims the header. Nothing can reference the header at this
// point: the weak count only reaches zero after every handle is gone.
func (b *block[T]) deallocate() {
	if r := b.recycle; r != nil {
		b.recycle = nil
		r(b)
	}
}
