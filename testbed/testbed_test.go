// Package testbed holds cross-package integration tests that exercise the
// library the way a consumer would: arcs backed by arena chunks, published
// through a registry table, churned by the stress runner, and owned by the
// container types.
package testbed

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wippyai/refkit/arc"
	"github.com/wippyai/refkit/arena"
	"github.com/wippyai/refkit/registry"
	"github.com/wippyai/refkit/stress"
	"github.com/wippyai/refkit/vec"
)

func TestArenaBytesThroughRegistry(t *testing.T) {
	a, err := arena.New(arena.Options{})
	if err != nil {
		t.Fatalf("arena.New failed: %v", err)
	}

	table := registry.NewTable[*arc.Slice[byte]]()

	// Publish an arena-backed buffer through the table.
	buf, err := arc.NewBytes(a, 4096)
	if err != nil {
		t.Fatalf("NewBytes failed: %v", err)
	}
	holder := arc.NewWithDrop(buf.Steal(), func(s **arc.Slice[byte]) {
		(*s).Release()
	})
	h, err := table.Insert(holder)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// A reader fetches the handle and keeps a weak observation.
	reader, ok := table.Get(h)
	if !ok {
		t.Fatal("Get missed a live handle")
	}
	inner := (*reader.Get()).Clone()
	weak := inner.Downgrade()
	inner.Release()
	reader.Release()

	if st := a.Stats(); st.ChunksInUse != 1 {
		t.Fatalf("expected 1 outstanding chunk, got %d", st.ChunksInUse)
	}

	// Dropping the published entry and the original handle must return the
	// chunk immediately, even though the weak observer is still alive.
	if !table.Remove(h) {
		t.Fatal("Remove missed")
	}
	holder.Release()

	if st := a.Stats(); st.ChunksInUse != 0 {
		t.Fatalf("chunk not returned at last strong release: %d in use", st.ChunksInUse)
	}
	if !weak.Expired() {
		t.Error("weak observer should be expired")
	}
	if _, ok := weak.Lock(); ok {
		t.Error("Lock succeeded after the buffer was destroyed")
	}
	weak.Release()

	if err := table.Close(); err != nil {
		t.Fatalf("table Close failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("arena Close failed: %v", err)
	}
}

func TestDropExactlyOnceUnderChurn(t *testing.T) {
	const (
		payloads   = 50
		goroutines = 20
	)
	var drops atomic.Int64

	for p := 0; p < payloads; p++ {
		a := arc.NewWithDrop(p, func(*int) { drops.Add(1) })
		w := a.Downgrade()

		var wg sync.WaitGroup
		for g := 0; g < goroutines; g++ {
			clone := a.Clone()
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					c := clone.Clone()
					_ = *c.Get()
					c.Release()
				}
				clone.Release()
			}()
		}
		a.Release()
		wg.Wait()

		if got := drops.Load(); got != int64(p+1) {
			t.Fatalf("after %d payloads expected %d drops, got %d", p+1, p+1, got)
		}
		if _, ok := w.Lock(); ok {
			t.Fatal("Lock succeeded after all strong handles released")
		}
		w.Release()
	}
}

// handleCell gives vec-owned elements a destructor that releases a shared
// handle, so container destruction drives arc accounting.
type handleCell struct {
	a *arc.Arc[int]
}

func (c *handleCell) Drop() {
	c.a.Release()
}

func TestVecOwnsArcClones(t *testing.T) {
	var drops atomic.Int64
	shared := arc.NewWithDrop(7, func(*int) { drops.Add(1) })

	v := vec.New[handleCell]()
	for i := 0; i < 10; i++ {
		v.Push(handleCell{a: shared.Clone()})
	}
	if got := shared.UseCount(); got != 11 {
		t.Fatalf("expected use count 11, got %d", got)
	}

	// Shrinking destroys exactly the removed cells.
	v.Resize(4)
	if got := shared.UseCount(); got != 5 {
		t.Fatalf("expected use count 5 after shrink, got %d", got)
	}

	v.Release()
	if got := shared.UseCount(); got != 1 {
		t.Fatalf("expected use count 1 after vec release, got %d", got)
	}
	shared.Release()
	if got := drops.Load(); got != 1 {
		t.Fatalf("expected exactly 1 drop, got %d", got)
	}
}

func TestStressPresetsComplete(t *testing.T) {
	for _, name := range stress.PresetNames() {
		t.Run(name, func(t *testing.T) {
			s, err := stress.Preset(name)
			if err != nil {
				t.Fatalf("Preset failed: %v", err)
			}
			s.Duration = stress.Duration(100 * time.Millisecond)

			r, err := stress.NewRunner(s)
			if err != nil {
				t.Fatalf("NewRunner failed: %v", err)
			}
			snap, err := r.Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if snap.CanaryBad != 0 {
				t.Errorf("%d canary violations", snap.CanaryBad)
			}
			if snap.Inserts == 0 {
				t.Error("no payloads published")
			}
		})
	}
}

func TestPooledLifecyclesDoNotLeak(t *testing.T) {
	pool := &arc.Pool[[]byte]{
		New: func() []byte { return make([]byte, 256) },
	}

	// Warm up so pool internals and testing overhead settle.
	for i := 0; i < 100; i++ {
		a := pool.Get()
		a.Release()
	}
	runtime.GC()

	var mBefore runtime.MemStats
	runtime.ReadMemStats(&mBefore)

	for i := 0; i < 1000; i++ {
		a := pool.Get()
		w := a.Downgrade()
		(*a.Get())[0] = byte(i)
		a.Release()
		w.Release()
	}

	runtime.GC()
	var mAfter runtime.MemStats
	runtime.ReadMemStats(&mAfter)

	heapGrowth := int64(mAfter.HeapAlloc) - int64(mBefore.HeapAlloc)
	t.Logf("Heap before: %d KB, after: %d KB, growth: %d KB",
		mBefore.HeapAlloc/1024, mAfter.HeapAlloc/1024, heapGrowth/1024)

	// 1000 pooled 256-byte lifetimes should not retain anywhere near 1MB,
	// even when the pool drops every recycled header.
	if heapGrowth > 1024*1024 {
		t.Errorf("potential leak: heap grew by %d bytes over 1000 lifetimes", heapGrowth)
	}
}
