// Package vec provides a growable array that owns its storage.
//
// A Vec holds its elements in a box.BoxSlice buffer and manages their
// lifecycle explicitly: clearing, truncating, or releasing the vector drops
// the removed elements (via their refkit.Dropper implementation, when
// present) before the storage is reused or returned.
//
//	v := vec.New[*Conn]()
//	v.Push(conn)
//	defer v.Release()
//
// Capacity grows by doubling on Push and exactly on Reserve. Indexed access
// is bounds-checked against the length and panics with a structured error
// on violation, as does access to the front or back of an empty vector.
//
// Pop transfers the last element to the caller without dropping it; Resize
// and Clear destroy the elements they remove.
//
// A Vec is not safe for concurrent use. The zero value is an empty, ready
// to use vector.
package vec
