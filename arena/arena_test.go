package arena

import (
	errs "errors"
	"sync"
	"testing"

	"github.com/wippyai/refkit/arc"
	"github.com/wippyai/refkit/errors"
)

func expectPanicKind(t *testing.T, kind errors.Kind, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic, got none")
		}
		err, ok := r.(*errors.Error)
		if !ok {
			t.Fatalf("expected *errors.Error panic, got %T: %v", r, r)
		}
		if err.Kind != kind {
			t.Fatalf("expected kind %s, got %s", kind, err.Kind)
		}
	}()
	fn()
}

func TestArena_Defaults(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	s := a.Stats()
	if s.Slabs != 0 || s.BytesReserved != 0 {
		t.Errorf("fresh arena should reserve nothing, got %+v", s)
	}
}

func TestArena_InvalidOptions(t *testing.T) {
	if _, err := New(Options{SlabSize: -1}); err == nil {
		t.Error("negative slab size should fail")
	}
	if _, err := New(Options{MinClass: 4096, MaxClass: 64}); err == nil {
		t.Error("max class below min class should fail")
	}
}

func TestArena_AllocRelease(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	buf, release, err := a.Alloc(100)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if len(buf) != 100 {
		t.Fatalf("expected 100 bytes, got %d", len(buf))
	}
	for i := range buf {
		buf[i] = byte(i)
	}

	s := a.Stats()
	if s.Slabs != 1 {
		t.Errorf("expected 1 slab, got %d", s.Slabs)
	}
	if s.ChunksInUse != 1 || s.BytesInUse != 128 {
		t.Errorf("expected one 128-byte chunk in use, got %+v", s)
	}

	release()
	s = a.Stats()
	if s.ChunksInUse != 0 || s.BytesInUse != 0 {
		t.Errorf("release did not balance accounting: %+v", s)
	}
	if s.Allocs != 1 || s.Frees != 1 {
		t.Errorf("expected allocs=1 frees=1, got %+v", s)
	}
}

func TestArena_ClassRounding(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	// 65 bytes lands in the 128-byte class; 64 in the smallest.
	_, rel1, err := a.Alloc(65)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	_, rel2, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}

	if got := a.Stats().BytesInUse; got != 128+64 {
		t.Errorf("expected 192 bytes in use, got %d", got)
	}
	rel1()
	rel2()
}

func TestArena_ChunkReuse(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	buf, release, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	first := &buf[0]
	for i := range buf {
		buf[i] = 0xFF
	}
	release()

	buf2, release2, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer release2()

	if &buf2[0] != first {
		t.Error("expected the freed chunk to be reused first")
	}
	for i, b := range buf2 {
		if b != 0 {
			t.Fatalf("reused chunk not scrubbed at byte %d: %#x", i, b)
		}
	}

	if got := a.Stats().Slabs; got != 1 {
		t.Errorf("reuse should not map another slab, got %d", got)
	}
}

func TestArena_Oversize(t *testing.T) {
	a, err := New(Options{MaxClass: 1024})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	buf, release, err := a.Alloc(4096)
	if err != nil {
		t.Fatalf("oversize Alloc failed: %v", err)
	}
	if len(buf) != 4096 {
		t.Fatalf("expected 4096 bytes, got %d", len(buf))
	}

	s := a.Stats()
	if s.Slabs != 0 {
		t.Errorf("oversize allocation should not map slabs, got %d", s.Slabs)
	}
	if s.BytesInUse != 4096 {
		t.Errorf("expected 4096 bytes in use, got %d", s.BytesInUse)
	}

	release()
	if got := a.Stats().BytesInUse; got != 0 {
		t.Errorf("expected 0 bytes in use after release, got %d", got)
	}
}

func TestArena_NegativeLength(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if _, _, err := a.Alloc(-1); err == nil {
		t.Fatal("negative length should fail")
	}
	if got := a.Stats().Fails; got != 1 {
		t.Errorf("expected fails=1, got %d", got)
	}
}

func TestArena_AllocAfterClose(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, _, err = a.Alloc(64)
	var e *errors.Error
	if !errs.As(err, &e) || e.Kind != errors.KindClosed {
		t.Fatalf("expected closed error, got %v", err)
	}
}

func TestArena_CloseWithOutstanding(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, release, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}

	if err := a.Close(); err == nil {
		t.Fatal("Close with outstanding chunks should fail")
	}

	release()
	if err := a.Close(); err != nil {
		t.Fatalf("Close after release failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}
}

func TestArena_ForceClose(t *testing.T) {
	a, err := New(Options{Force: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, release, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("forced Close failed: %v", err)
	}

	// The late release only settles accounting; the chunk is gone.
	release()
	if got := a.Stats().ChunksInUse; got != 0 {
		t.Errorf("expected 0 chunks after late release, got %d", got)
	}
}

func TestArena_DoubleReleasePanics(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	_, release, err := a.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	release()

	expectPanicKind(t, errors.KindDoubleRelease, release)
}

func TestArena_Concurrent(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	const goroutines = 50
	const iterations = 200

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				size := 64 << uint(j%5)
				buf, release, err := a.Alloc(size)
				if err != nil {
					t.Errorf("Alloc(%d) failed: %v", size, err)
					return
				}
				buf[0] = byte(n)
				buf[len(buf)-1] = byte(j)
				release()
			}
		}(i)
	}
	wg.Wait()

	s := a.Stats()
	if s.ChunksInUse != 0 || s.BytesInUse != 0 {
		t.Errorf("concurrent churn left chunks outstanding: %+v", s)
	}
	if s.Allocs != goroutines*iterations || s.Frees != goroutines*iterations {
		t.Errorf("expected %d allocs and frees, got %+v", goroutines*iterations, s)
	}
}

func TestArena_SliceBridge(t *testing.T) {
	a, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	s, err := arc.NewBytes(a, 256)
	if err != nil {
		t.Fatalf("NewBytes failed: %v", err)
	}
	s.Set(0, 0xAB)

	w := s.Downgrade()

	// The chunk must go back to the arena at the last strong release even
	// though the weak handle keeps the header alive.
	s.Release()
	if got := a.Stats().ChunksInUse; got != 0 {
		t.Errorf("expected chunk returned at last strong release, got %d in use", got)
	}
	if !w.Expired() {
		t.Error("weak handle should report expired")
	}
	w.Release()
}
