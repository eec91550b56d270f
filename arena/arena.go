package arena

import (
	"math/bits"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/refkit"
	"github.com/wippyai/refkit/errors"
)

// Default sizing. Classes are powers of two; requests above the largest
// class bypass the slabs.
const (
	DefaultSlabSize = 1 << 20
	DefaultMinClass = 64
	DefaultMaxClass = 1 << 20
)

// Options configure an Arena. Zero fields take the package defaults.
type Options struct {
	// SlabSize is the number of bytes reserved per slab. A slab is rounded
	// up to one chunk when a class is larger than it.
	SlabSize int

	// MinClass and MaxClass bound the chunk size classes. Both are rounded
	// up to powers of two.
	MinClass int
	MaxClass int

	// Force lets Close unmap slabs while chunks are still outstanding. The
	// outstanding buffers become invalid; only their accounting survives.
	Force bool
}

// Stats is a point-in-time snapshot of arena accounting.
type Stats struct {
	Slabs         int
	BytesReserved int64
	ChunksInUse   int64
	BytesInUse    int64
	Allocs        uint64
	Frees         uint64
	Fails         uint64
}

// Arena is a size-classed slab allocator for payload buffers. Slabs are
// carved into power-of-two chunks; a released chunk is scrubbed and reused
// by later allocations of its class. Alloc and the release closures it
// returns are safe for concurrent use.
type Arena struct {
	mu      sync.Mutex
	opts    Options
	shift   uint
	classes []sizeClass
	slabs   [][]byte
	closed  bool

	reserved int64
	inUse    int64
	chunks   int64
	allocs   uint64
	frees    uint64
	fails    uint64
}

type sizeClass struct {
	size int
	free [][]byte
}

var _ refkit.Allocator = (*Arena)(nil)

// New returns an arena configured by opts.
func New(opts Options) (*Arena, error) {
	if opts.SlabSize < 0 || opts.MinClass < 0 || opts.MaxClass < 0 {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("negative arena option").
			Build()
	}
	if opts.SlabSize == 0 {
		opts.SlabSize = DefaultSlabSize
	}
	if opts.MinClass == 0 {
		opts.MinClass = DefaultMinClass
	}
	if opts.MaxClass == 0 {
		opts.MaxClass = DefaultMaxClass
	}
	opts.MinClass = ceilPow2(opts.MinClass)
	opts.MaxClass = ceilPow2(opts.MaxClass)
	if opts.MaxClass < opts.MinClass {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("max class %d below min class %d", opts.MaxClass, opts.MinClass).
			Build()
	}

	a := &Arena{
		opts:  opts,
		shift: uint(bits.TrailingZeros(uint(opts.MinClass))),
	}
	for size := opts.MinClass; size <= opts.MaxClass; size <<= 1 {
		a.classes = append(a.classes, sizeClass{size: size})
	}
	return a, nil
}

// Alloc returns an n-byte buffer and the closure that returns it to the
// arena. It implements refkit.Allocator. Releasing the same buffer twice
// panics with a structured error.
func (a *Arena) Alloc(n int) ([]byte, func(), error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		a.fails++
		return nil, nil, errors.Closed(errors.PhaseAlloc, "arena")
	}
	if n < 0 {
		a.fails++
		return nil, nil, errors.New(errors.PhaseAlloc, errors.KindInvalidInput).
			Value(n).
			Detail("negative buffer length %d", n).
			Build()
	}
	if n > a.opts.MaxClass {
		return a.allocOversize(n)
	}

	cls := &a.classes[a.classFor(n)]
	if len(cls.free) == 0 {
		if err := a.grow(cls); err != nil {
			a.fails++
			return nil, nil, err
		}
	}
	chunk := cls.free[len(cls.free)-1]
	cls.free = cls.free[:len(cls.free)-1]

	a.allocs++
	a.chunks++
	a.inUse += int64(cls.size)

	released := false
	release := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if released {
			panic(errors.DoubleRelease(errors.PhaseRelease, "arena chunk"))
		}
		released = true
		a.frees++
		a.chunks--
		a.inUse -= int64(cls.size)
		if !a.closed {
			clear(chunk)
			cls.free = append(cls.free, chunk)
		}
	}
	return chunk[:n:n], release, nil
}

// allocOversize serves requests above MaxClass from the heap. Caller holds
// the lock.
func (a *Arena) allocOversize(n int) ([]byte, func(), error) {
	buf := make([]byte, n)
	a.allocs++
	a.chunks++
	a.inUse += int64(n)

	released := false
	release := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if released {
			panic(errors.DoubleRelease(errors.PhaseRelease, "arena chunk"))
		}
		released = true
		a.frees++
		a.chunks--
		a.inUse -= int64(n)
	}
	Logger().Debug("oversize allocation bypassed slabs",
		zap.Int("bytes", n),
		zap.Int("max_class", a.opts.MaxClass))
	return buf, release, nil
}

// grow maps one slab and carves it into chunks of the class size. Caller
// holds the lock.
func (a *Arena) grow(cls *sizeClass) error {
	slabBytes := a.opts.SlabSize
	if slabBytes < cls.size {
		slabBytes = cls.size
	}
	slab, err := mapSlab(slabBytes)
	if err != nil {
		Logger().Warn("slab map failed",
			zap.Int("bytes", slabBytes),
			zap.Error(err))
		return errors.AllocationFailed(errors.PhaseAlloc, slabBytes, err)
	}
	a.slabs = append(a.slabs, slab)
	a.reserved += int64(len(slab))
	for off := 0; off+cls.size <= len(slab); off += cls.size {
		cls.free = append(cls.free, slab[off:off+cls.size:off+cls.size])
	}
	Logger().Debug("mapped slab",
		zap.Int("bytes", len(slab)),
		zap.Int("class", cls.size),
		zap.Int("chunks", len(slab)/cls.size))
	return nil
}

// Stats returns a snapshot of the arena's accounting.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Stats{
		Slabs:         len(a.slabs),
		BytesReserved: a.reserved,
		ChunksInUse:   a.chunks,
		BytesInUse:    a.inUse,
		Allocs:        a.allocs,
		Frees:         a.frees,
		Fails:         a.fails,
	}
}

// Close unmaps every slab and marks the arena closed; further Allocs fail.
// It refuses while chunks are outstanding unless Options.Force was set.
// Closing twice is a no-op.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	if a.chunks > 0 && !a.opts.Force {
		return errors.New(errors.PhaseRelease, errors.KindInvalidInput).
			Value(a.chunks).
			Detail("cannot close arena: %d chunks outstanding", a.chunks).
			Build()
	}
	if a.chunks > 0 {
		Logger().Warn("arena force-closed with outstanding chunks",
			zap.Int64("chunks", a.chunks))
	}

	a.closed = true
	for i := range a.classes {
		a.classes[i].free = nil
	}

	var firstErr error
	for _, slab := range a.slabs {
		if err := unmapSlab(slab); err != nil && firstErr == nil {
			firstErr = errors.Wrap(errors.PhaseRelease, errors.KindAllocation, err,
				"failed to unmap slab")
		}
	}
	Logger().Debug("arena closed",
		zap.Int("slabs", len(a.slabs)),
		zap.Int64("bytes_reserved", a.reserved))
	a.slabs = nil
	a.reserved = 0
	return firstErr
}

// classFor returns the index of the smallest class that fits n. Caller
// guarantees 0 <= n <= MaxClass.
func (a *Arena) classFor(n int) int {
	if n <= a.opts.MinClass {
		return 0
	}
	return bits.Len(uint(n-1)) - int(a.shift)
}

func ceilPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
