package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/refkit/arc"
)

// Table maps generation-tagged integer handles to arc clones. Every entry
// is a strong handle the table owns; inserting clones, removing releases.
// All methods are safe for concurrent use.
type Table[T any] struct {
	entries   []entry[T]
	freeList  []int
	mu        sync.RWMutex
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
}

type entry[T any] struct {
	a     *arc.Arc[T]
	gen   uint32
	valid bool
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		entries:  make([]entry[T], 0, 64),
		freeList: make([]int, 0, 16),
	}
}

// Insert stores the table's own clone of a and returns the handle
// addressing it. The caller keeps ownership of a. Returns ErrClosed after
// Close. Inserting an empty handle panics the same way Clone does.
func (t *Table[T]) Insert(a *arc.Arc[T]) (Handle, error) {
	c := a.Clone()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		c.Release()
		return 0, ErrClosed
	}

	var slot int
	if n := len(t.freeList); n > 0 {
		slot = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[slot].a = c
		t.entries[slot].valid = true
	} else {
		t.entries = append(t.entries, entry[T]{a: c, valid: true})
		slot = len(t.entries) - 1
	}
	h := handleFor(slot, t.entries[slot].gen)
	id := c.ID()
	t.mu.Unlock()

	t.notify(Event{Type: EventInserted, Handle: h, Block: id})
	return h, nil
}

// Get mints a fresh clone for the caller, who must release it. Reports
// false for invalid, stale, and removed handles.
func (t *Table[T]) Get(h Handle) (*arc.Arc[T], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return nil, false
	}
	return e.a.Clone(), true
}

// With runs fn on the payload under the table's read lock, without minting
// a clone. fn must not call table methods that write. Reports false when
// the handle misses.
func (t *Table[T]) With(h Handle, fn func(*T)) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return false
	}
	fn(e.a.Get())
	return true
}

// Remove releases the table's clone and recycles the slot under a new
// generation, so older handles to the slot miss. Reports false when the
// handle misses.
func (t *Table[T]) Remove(h Handle) bool {
	a, ok := t.evict(h)
	if !ok {
		return false
	}
	id := a.ID()
	a.Release()
	t.notify(Event{Type: EventRemoved, Handle: h, Block: id})
	return true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table[T]) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live entries.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for i := range t.entries {
		if t.entries[i].valid {
			count++
		}
	}
	return count
}

// Each iterates over live entries until fn returns false. The arc passed
// to fn is the table's own: use it within the callback, do not release it.
func (t *Table[T]) Each(fn func(Handle, *arc.Arc[T]) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.entries {
		e := &t.entries[i]
		if !e.valid {
			continue
		}
		if !fn(handleFor(i, e.gen), e.a) {
			return
		}
	}
}

// Clear evicts every entry. Observers see one EventEvicted per entry. The
// table stays open.
func (t *Table[T]) Clear() {
	// Collect handles first to avoid holding the lock during release.
	var handles []Handle
	t.Each(func(h Handle, _ *arc.Arc[T]) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		if a, ok := t.evict(h); ok {
			id := a.ID()
			a.Release()
			t.notify(Event{Type: EventEvicted, Handle: h, Block: id})
		}
	}
	if len(handles) > 0 {
		Logger().Debug("registry table cleared", zap.Int("evicted", len(handles)))
	}
}

// Close evicts every entry and rejects further operations. Closing twice
// is a no-op.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	type victim struct {
		a *arc.Arc[T]
		h Handle
	}
	var victims []victim
	for i := range t.entries {
		e := &t.entries[i]
		if e.valid {
			victims = append(victims, victim{a: e.a, h: handleFor(i, e.gen)})
			e.valid = false
			e.a = nil
		}
	}
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for _, v := range victims {
		id := v.a.ID()
		v.a.Release()
		t.notify(Event{Type: EventEvicted, Handle: v.h, Block: id})
	}
	Logger().Debug("registry table closed", zap.Int("evicted", len(victims)))
	return nil
}

// notify dispatches an event to every subscribed observer. The observer
// list is snapshotted under the lock so callbacks run outside it and may
// subscribe or unsubscribe freely.
func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	observers := make([]Observer, len(t.observers))
	copy(observers, t.observers)
	t.obsMu.RUnlock()

	for _, o := range observers {
		o.OnTableEvent(e)
	}
}

// lookup resolves a handle to its live entry. Caller holds a lock.
func (t *Table[T]) lookup(h Handle) *entry[T] {
	idx := h.slot()
	if idx < 0 || idx >= len(t.entries) {
		return nil
	}
	e := &t.entries[idx]
	if !e.valid || e.gen != h.gen() {
		return nil
	}
	return e
}

// evict invalidates the entry, bumps its generation, and hands back the
// table's clone.
func (t *Table[T]) evict(h Handle) (*arc.Arc[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return nil, false
	}
	a := e.a
	e.a = nil
	e.valid = false
	e.gen++
	t.freeList = append(t.freeList, h.slot())
	return a, true
}
