package arc

import (
	"sync"
	"sync/atomic"
)

// Pool recycles payload headers across lifetimes. Headers return to the
// pool at their last weak release, when nothing can reference them anymore,
// and are handed out again by Get with fresh counters and a fresh identity.
//
// Payload values of pooled headers are not cleared at destruction, so
// allocations inside them (buffers, maps) survive for the next use. Reset
// is responsible for making a recycled value indistinguishable from a new
// one.
//
// The zero Pool is ready to use; all fields are optional.
type Pool[T any] struct {
	// New constructs the payload value for a fresh header. When nil, fresh
	// payloads start at the zero value.
	New func() T

	// Reset prepares a recycled payload value before it is handed out
	// again.
	Reset func(*T)

	// Drop runs as the payload's cleanup at the last strong release, like
	// a NewWithDrop drop function.
	Drop func(*T)

	blocks sync.Pool

	gets   atomic.Uint64
	reuses atomic.Uint64
	puts   atomic.Uint64
}

// Get returns a strong handle to a pooled value. The handle and its clones
// follow the normal ownership discipline; the pool takes the header back
// automatically once every strong and weak handle is gone.
func (p *Pool[T]) Get() *Arc[T] {
	p.gets.Add(1)
	var b *block[T]
	if x := p.blocks.Get(); x != nil {
		b = x.(*block[T])
		p.reuses.Add(1)
		if p.Reset != nil {
			p.Reset(&b.value)
		}
	} else {
		b = &block[T]{}
		if p.New != nil {
			b.value = p.New()
		}
	}
	b.init(p.Drop)
	b.recycle = p.put
	return &Arc[T]{b: b}
}

// put receives headers whose weak count hit zero.
func (p *Pool[T]) put(b *block[T]) {
	p.puts.Add(1)
	p.blocks.Put(b)
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	// Gets is the number of handles handed out.
	Gets uint64

	// Reuses is the number of gets served from recycled headers.
	Reuses uint64

	// Returns is the number of headers taken back after their last weak
	// release.
	Returns uint64
}

// Stats returns a snapshot of pool activity. Counters are monotonic and
// approximate under concurrency.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Gets:    p.gets.Load(),
		Reuses:  p.reuses.Load(),
		Returns: p.puts.Load(),
	}
}
