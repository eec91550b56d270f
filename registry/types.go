package registry

import (
	"github.com/wippyai/refkit/errors"
)

// Handle is an opaque reference to an entry in a Table.
// Handle 0 is reserved and always invalid.
//
// The low 32 bits address a slot; the high 32 bits carry the generation the
// handle was minted under. A slot's generation changes when its entry is
// removed, so handles from before the recycle miss instead of aliasing the
// new occupant.
type Handle uint64

func handleFor(slot int, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(uint32(slot)+1))
}

func (h Handle) slot() int {
	return int(uint32(h)) - 1
}

func (h Handle) gen() uint32 {
	return uint32(h >> 32)
}

// Event types for table lifecycle notifications.
type EventType uint8

const (
	EventInserted EventType = iota
	EventRemoved
	EventEvicted
)

// Event represents a table lifecycle event. Block is the identity of the
// arc the entry held (see arc ID methods).
type Event struct {
	Handle Handle
	Block  uint64
	Type   EventType
}

// Observer receives notifications about table lifecycle events.
type Observer interface {
	OnTableEvent(Event)
}

// ErrClosed is returned by table operations after Close.
var ErrClosed = errors.Closed(errors.PhaseRegistry, "registry table")
