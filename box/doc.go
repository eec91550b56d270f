// Package box provides exclusively owned values with explicit transfer.
//
// A Box holds exactly one value with exactly one owner. Unlike the shared
// handles in package arc there is no counting: destroying the box destroys
// the value. Ownership moves with Steal, leaves the box entirely with Take,
// and ends with Release.
//
//	b := box.NewWithDrop(conn, func(c *Conn) { c.Close() })
//	defer b.Release()
//
//	b.Get().Ping()
//
// BoxSlice is the array form: it owns a []T payload and can adopt storage
// that carries its own release function, such as an arena buffer.
//
// Boxes are not safe for concurrent use; they are single-owner by
// definition. Access to a released box panics with a structured error.
package box
