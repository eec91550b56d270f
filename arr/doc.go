// Package arr provides a fixed-length array owning its elements.
//
// An Arr is sized once at construction and never grows or shrinks. It sits
// between a plain Go array and [vec.Vec]: the length is a runtime value, but
// unlike a vector there are no append or resize operations, so pointers
// returned by Ptr, Front, and Back stay valid for the array's whole life.
//
// Element access is checked. Out-of-range indexes panic with a structured
// error instead of corrupting memory or silently reading a neighbor.
//
// Release destroys the elements (running their Drop methods, see
// [refkit.Dropper]) and frees the storage. Arrays are not safe for
// concurrent mutation; wrap one in an arc handle to share it.
package arr
