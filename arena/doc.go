// Package arena provides a size-classed slab allocator for payload buffers.
//
// An Arena reserves large slabs of memory (anonymous mappings outside the Go
// heap on unix systems, plain heap buffers elsewhere) and carves them into
// power-of-two chunks. It implements [refkit.Allocator], so arc and box byte
// handles can draw their storage from an arena and return it deterministically
// through the release closure instead of waiting on the garbage collector.
//
// # Size Classes
//
// Chunk sizes are powers of two between Options.MinClass and Options.MaxClass
// (64 B to 1 MiB by default). A request is served from the smallest class that
// fits it; requests above MaxClass bypass the slabs and go straight to the
// heap, tracked in the same accounting.
//
// # Chunk Lifecycle
//
// Alloc returns the buffer together with the closure that gives it back:
//
//	buf, release, err := a.Alloc(4096)
//	if err != nil {
//	    return err
//	}
//	defer release()
//
// A released chunk is scrubbed and pushed onto its class free list for reuse.
// Releasing the same chunk twice panics with a structured error. Alloc and
// the release closures are safe for concurrent use.
//
// # Closing
//
// Close unmaps every slab. It refuses while chunks are outstanding unless
// Options.Force is set; a forced close invalidates all outstanding buffers.
// Stats exposes slab, chunk, and byte accounting at any point.
package arena
