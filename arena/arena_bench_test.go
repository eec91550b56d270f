package arena

import (
	"testing"
)

func BenchmarkArena_AllocRelease(b *testing.B) {
	a, err := New(Options{})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	// Warm the slab and free list so steady-state reuse is measured.
	for i := 0; i < 64; i++ {
		_, release, err := a.Alloc(4096)
		if err != nil {
			b.Fatalf("warmup Alloc failed: %v", err)
		}
		release()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, release, err := a.Alloc(4096)
		if err != nil {
			b.Fatalf("Alloc failed: %v", err)
		}
		release()
	}
}

func BenchmarkArena_AllocRelease_Parallel(b *testing.B) {
	a, err := New(Options{})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, release, err := a.Alloc(512)
			if err != nil {
				b.Fatalf("Alloc failed: %v", err)
			}
			release()
		}
	})
}

func BenchmarkArena_OversizeAlloc(b *testing.B) {
	a, err := New(Options{MaxClass: 1024})
	if err != nil {
		b.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, release, err := a.Alloc(1 << 16)
		if err != nil {
			b.Fatalf("Alloc failed: %v", err)
		}
		release()
	}
}
