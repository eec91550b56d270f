// Package registry provides a handle table for shared ownership handles.
//
// Subsystems that exchange plain integers instead of Go pointers (FFI
// layers, wire protocols, schedulers) park an arc in a Table and pass the
// Handle around. The table owns its own clone, so the payload stays alive
// for exactly as long as the entry does, whatever the original handle's
// owner decides.
//
// # Handle Table
//
// The Table maps integer handles to arc clones:
//
//	table := registry.NewTable[Conn]()
//
//	// Insert stores the table's own clone; the caller keeps theirs.
//	h, err := table.Insert(a)
//
//	// Get mints a fresh clone for the caller, who must release it.
//	c, ok := table.Get(h)
//	defer c.Release()
//
//	// Remove releases the table's clone.
//	table.Remove(h)
//
// # Stale Handles
//
// Handles carry the generation of their slot. Removing an entry bumps the
// slot's generation before the slot is recycled, so a handle minted before
// the recycle misses instead of silently aliasing the new occupant:
//
//	h1, _ := table.Insert(a)
//	table.Remove(h1)
//	h2, _ := table.Insert(b) // may reuse h1's slot
//	_, ok := table.Get(h1)   // ok == false, never b
//
// # Borrowing
//
// With runs a function against the payload under the table's read lock
// without minting a clone, for short read-mostly access:
//
//	table.With(h, func(c *Conn) {
//	    c.Touch()
//	})
//
// # Observers
//
// Subscribe to watch entries come and go:
//
//	table.Subscribe(obs) // OnTableEvent(Event) per Insert/Remove/eviction
//
// # Shutdown
//
// Entries are not garbage collected. Remove them when their handle is
// retired, or call Close to release everything and reject further use.
package registry
