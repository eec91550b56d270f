// Package arc provides atomically reference-counted strong and weak handles.
//
// A strong handle (Arc, Slice) owns its payload jointly with every other
// strong handle cloned from it. A weak handle (Weak, WeakSlice) observes the
// payload without keeping it alive. The payload is destroyed exactly once,
// when the last strong handle releases, regardless of how many weak handles
// remain.
//
// # Handle Discipline
//
// Handles are pointers and cheap to pass around, but each handle represents
// exactly one ownership unit with exactly one releaser:
//
//	a := arc.New(conn)       // one owner
//	b := a.Clone()           // two owners
//	go worker(b)             // worker releases b
//	a.Release()              // releases a; payload lives until b releases
//
// Copying a handle value does not create a new owner. To share, Clone. To
// transfer, Steal:
//
//	moved := a.Steal()       // a is now empty, moved owns the unit
//
// Release is idempotent per handle, so a deferred Release is always safe
// even when the handle was released or stolen earlier.
//
// # Weak Handles
//
// Downgrade derives a weak handle; Lock promotes it back while owners
// remain:
//
//	w := a.Downgrade()
//	defer w.Release()
//	if s, ok := w.Lock(); ok {
//	    use(s.Get())
//	    s.Release()
//	}
//
// Lock is a pure compare-and-swap loop over the strong count: once the count
// has reached zero it can never leave zero, so a successful Lock proves the
// payload was never destroyed.
//
// # Counter Protocol
//
// Every payload header carries two counters. The strong count is the number
// of live strong handles. The weak count is the number of live weak handles
// plus one unit held collectively by the strong handles. The header moves
// through exactly three states:
//
//	strong > 0, weak > 0    alive: payload accessible, Lock succeeds
//	strong = 0, weak > 0    expired: payload destroyed, header remains
//	strong = 0, weak = 0    defunct: header reclaimed or recycled
//
// Counts that leave this state machine (a negative counter, an increment of
// a counter already at zero) indicate a corrupted handle and panic with a
// structured error rather than corrupting memory.
//
// # Single Values and Slices
//
// Arc owns a single value stored inline in its header. Slice owns a []T
// payload stored separately, so its storage can be returned to an arena or
// allocator as soon as the last strong handle releases. Both follow the same
// destruction contract: user cleanup (the drop function, or the payload's
// Drop method) runs at the last strong release, header reclamation waits for
// the last weak release.
//
// # Pooling
//
// Pool recycles payload headers through a sync.Pool. A header is returned to
// the pool only when its weak count hits zero, so a recycled header is never
// reachable from any live handle. Payloads of pooled headers are not zeroed
// at destruction; the pool's Reset callback prepares them for reuse instead.
package arc
