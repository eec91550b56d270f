// Package refkit provides atomically reference-counted ownership primitives
// for values whose lifetime cannot be left to the garbage collector alone.
//
// Go reclaims memory automatically, but many resources carry cleanup beyond
// memory: pooled buffers that must return to their pool, mmap'd regions that
// must be unmapped, file descriptors, C allocations, or payloads recycled
// through an arena. For those, something must still decide when the last user
// is gone. refkit implements that decision as explicit shared ownership with
// deterministic destruction.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	refkit/              Root package with Allocator and Dropper interfaces
//	├── arc/             Atomically reference-counted strong and weak handles
//	├── box/             Exclusively owned values with explicit transfer
//	├── vec/             Growable arrays owning their storage through box
//	├── arr/             Fixed-length sequences with checked access
//	├── arena/           Size-class slab allocator over mapped memory
//	├── registry/        Handle table publishing shared values by ID
//	├── stress/          Configurable concurrent workloads for validation
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Share a value across goroutines and destroy it exactly once:
//
//	a := arc.New(&Conn{})
//	defer a.Release()
//
//	clone := a.Clone()
//	go func() {
//	    defer clone.Release()
//	    clone.Get().Ping()
//	}()
//
// Observe without owning:
//
//	w := a.Downgrade()
//	defer w.Release()
//
//	if s, ok := w.Lock(); ok {
//	    s.Get().Ping()
//	    s.Release()
//	}
//
// # Ownership Model
//
// Every strong handle is an owner. Cloning a handle adds an owner, releasing
// one removes it, and the payload's destructor runs exactly once, when the
// last owner releases. Weak handles never keep the payload alive; they can
// only be promoted back to strong handles while at least one owner remains.
//
// Handles are cheap to copy by pointer and safe for concurrent use from any
// number of goroutines, but each individual handle has a single releaser:
// Release is idempotent per handle, and sharing requires Clone, not copying.
//
// # Destruction Timing
//
// Payload destruction is driven by the strong count, header reclamation by
// the weak count. Single-value and slice payloads follow the same contract:
// the payload is destroyed when the strong count hits zero, even while weak
// handles remain. A weak handle that outlives all owners observes only an
// expired header, never the payload.
package refkit
