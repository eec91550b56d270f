package refkit

import "reflect"

// Allocator hands out byte buffers with explicit lifetimes. Alloc returns a
// buffer of exactly n bytes together with a release function that returns the
// buffer to the allocator. The buffer must not be used after release is called.
type Allocator interface {
	Alloc(n int) (buf []byte, release func(), err error)
}

// Dropper is optionally implemented by payload values that need cleanup.
// When a reference-counted or boxed payload implements Dropper, Drop is
// called at the point the payload is destroyed.
type Dropper interface {
	Drop()
}

// ValueDrops reports whether values of type T carry a Drop method, either
// on T itself or on *T. Containers use it to skip per-element drop loops
// entirely for plain payloads such as bytes.
func ValueDrops[T any]() bool {
	if _, ok := any((*T)(nil)).(Dropper); ok {
		return true
	}
	var zero T
	_, ok := any(zero).(Dropper)
	return ok
}

// DropValue invokes the Drop method of the value at p, preferring the
// pointer so that value-receiver payloads are dropped in place rather than
// on a copy. Pointer and interface payloads carry the method themselves and
// are dropped directly, except nil ones: a zeroed pointer slot has nothing
// to clean up, and calling Drop on it would run the method on a nil
// receiver. Reports whether a Drop method ran.
func DropValue[T any](p *T) bool {
	if d, ok := any(p).(Dropper); ok {
		d.Drop()
		return true
	}
	if d, ok := any(*p).(Dropper); ok {
		if nilValue(d) {
			return false
		}
		d.Drop()
		return true
	}
	return false
}

// nilValue reports whether the concrete value inside v is nil for the kinds
// where a method call runs on a nil receiver.
func nilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
