package stress

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/refkit/arc"
	"github.com/wippyai/refkit/arena"
	"github.com/wippyai/refkit/errors"
	"github.com/wippyai/refkit/registry"
)

// canaryMagic folds into each payload's canary word. A successful lock or
// clone that observes a payload whose canary does not match has caught a
// destroyed or recycled value still reachable, which is exactly the bug
// class the runner exists to catch.
const canaryMagic uint64 = 0x9e3779b97f4a7c15

// Counters aggregates worker activity. All fields are atomics; workers add
// to them directly and Snapshot reads them while the run is in flight.
type Counters struct {
	Clones    atomic.Uint64
	Releases  atomic.Uint64
	LocksOK   atomic.Uint64
	LocksGone atomic.Uint64
	Drops     atomic.Uint64
	ElemDrops atomic.Uint64
	Inserts   atomic.Uint64
	Removes   atomic.Uint64
	Misses    atomic.Uint64
	CanaryBad atomic.Uint64
}

// Snapshot is a point-in-time copy of the counters plus run state.
type Snapshot struct {
	Clones    uint64
	Releases  uint64
	LocksOK   uint64
	LocksGone uint64
	Drops     uint64
	ElemDrops uint64
	Inserts   uint64
	Removes   uint64
	Misses    uint64
	CanaryBad uint64
	Elapsed   time.Duration
	Running   bool
}

// payload is the shared value the workers fight over. Exactly one of the
// owning fields is set, per the scenario's payload kind. The canary is
// written at mint and cleared at drop; every reader checks it.
type payload struct {
	seq    uint64
	canary uint64
	words  []uint64
	cells  *arc.Slice[int64]
	bytes  *arc.Slice[byte]
}

func (p *payload) checkCanary(c *Counters) {
	if p.canary != p.seq^canaryMagic {
		c.CanaryBad.Add(1)
	}
}

// Runner drives one scenario against one table of shared payloads. A
// Runner runs once; Snapshot is safe to call from other goroutines while
// Run is in flight.
type Runner struct {
	scenario Scenario
	counters Counters
	table    *registry.Table[payload]
	handles  []atomic.Uint64
	arena    *arena.Arena
	pool     *arc.Pool[payload]
	seq      atomic.Uint64
	started  atomic.Int64
	finished atomic.Int64
	running  atomic.Bool
	ran      atomic.Bool
}

// NewRunner validates the scenario and prepares its resources. Bytes
// scenarios get a dedicated arena sized by the scenario.
func NewRunner(s Scenario) (*Runner, error) {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		scenario: s,
		table:    registry.NewTable[payload](),
		handles:  make([]atomic.Uint64, s.Entries),
	}

	if s.Payload == PayloadBytes {
		a, err := arena.New(arena.Options{SlabSize: s.SlabSize})
		if err != nil {
			return nil, err
		}
		r.arena = a
	}
	if s.UsePool {
		r.pool = &arc.Pool[payload]{
			New:  func() payload { return payload{words: make([]uint64, 8)} },
			Drop: r.dropPayload,
		}
	}
	return r, nil
}

// Scenario returns the normalized scenario the runner was built from.
func (r *Runner) Scenario() Scenario {
	return r.scenario
}

// mint constructs a fresh payload under a new strong handle.
func (r *Runner) mint() (*arc.Arc[payload], error) {
	seq := r.seq.Add(1)

	if r.pool != nil {
		a := r.pool.Get()
		p := a.Get()
		p.seq = seq
		p.canary = seq ^ canaryMagic
		return a, nil
	}

	p := payload{seq: seq, canary: seq ^ canaryMagic}
	switch r.scenario.Payload {
	case PayloadObject:
		p.words = make([]uint64, 8)
	case PayloadSlice:
		c := &r.counters
		p.cells = arc.NewSliceWithDrop(r.scenario.SliceLen, func(elems []int64) {
			c.ElemDrops.Add(uint64(len(elems)))
		})
	case PayloadBytes:
		b, err := arc.NewBytes(r.arena, r.scenario.SliceLen)
		if err != nil {
			return nil, err
		}
		p.bytes = b
	}
	return arc.NewWithDrop(p, r.dropPayload), nil
}

// dropPayload runs at the payload's last strong release.
func (r *Runner) dropPayload(p *payload) {
	p.checkCanary(&r.counters)
	p.canary = 0
	if p.cells != nil {
		p.cells.Release()
		p.cells = nil
	}
	if p.bytes != nil {
		p.bytes.Release()
		p.bytes = nil
	}
	r.counters.Drops.Add(1)
}

// publish mints a payload, inserts it, and stores its handle in slot i.
// The displaced handle is removed from the table.
func (r *Runner) publish(i int) error {
	a, err := r.mint()
	if err != nil {
		return err
	}
	h, err := r.table.Insert(a)
	a.Release()
	if err != nil {
		return err
	}
	r.counters.Inserts.Add(1)

	old := r.handles[i].Load()
	if r.handles[i].CompareAndSwap(old, uint64(h)) {
		if old != 0 {
			if r.table.Remove(registry.Handle(old)) {
				r.counters.Removes.Add(1)
			} else {
				r.counters.Misses.Add(1)
			}
		}
		return nil
	}
	// Lost the slot to a concurrent publisher; retire our own entry.
	if r.table.Remove(h) {
		r.counters.Removes.Add(1)
	}
	return nil
}

// Run executes the scenario to completion and returns the final snapshot.
// The run stops at the scenario duration or when ctx is cancelled,
// whichever comes first. Run may be called once.
func (r *Runner) Run(ctx context.Context) (Snapshot, error) {
	if !r.ran.CompareAndSwap(false, true) {
		return Snapshot{}, errors.InvalidInput(errors.PhaseRuntime, "runner already ran")
	}

	s := r.scenario
	Logger().Info("stress run starting",
		zap.String("scenario", s.Name),
		zap.String("payload", string(s.Payload)),
		zap.Duration("duration", time.Duration(s.Duration)),
		zap.Int("cloners", s.Cloners),
		zap.Int("lockers", s.Lockers),
		zap.Int("churners", s.Churners),
		zap.Int("entries", s.Entries))

	for i := range r.handles {
		if err := r.publish(i); err != nil {
			r.table.Close()
			r.closeArena(true)
			return Snapshot{}, err
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(s.Duration))
	defer cancel()

	r.started.Store(time.Now().UnixNano())
	r.running.Store(true)

	var wg sync.WaitGroup
	for i := 0; i < s.Cloners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.cloner(runCtx)
		}()
	}
	for i := 0; i < s.Lockers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.locker(runCtx)
		}()
	}
	for i := 0; i < s.Churners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.churner(runCtx)
		}()
	}
	wg.Wait()

	r.running.Store(false)
	r.finished.Store(time.Now().UnixNano())

	r.table.Close()
	if err := r.verify(); err != nil {
		return r.Snapshot(), err
	}
	if err := r.closeArena(false); err != nil {
		return r.Snapshot(), err
	}

	snap := r.Snapshot()
	Logger().Info("stress run finished",
		zap.String("scenario", s.Name),
		zap.Uint64("clones", snap.Clones),
		zap.Uint64("locks_ok", snap.LocksOK),
		zap.Uint64("locks_gone", snap.LocksGone),
		zap.Uint64("drops", snap.Drops),
		zap.Duration("elapsed", snap.Elapsed))
	return snap, nil
}

// verify checks the post-run accounting identities: every minted payload
// dropped exactly once, every slice element dropped, no canary violations.
func (r *Runner) verify() error {
	minted := r.seq.Load()
	if drops := r.counters.Drops.Load(); drops != minted {
		return errors.New(errors.PhaseRuntime, errors.KindCorruptCount).
			Detail("%d payloads minted but %d dropped", minted, drops).
			Value(drops).
			Build()
	}
	if r.scenario.Payload == PayloadSlice {
		want := minted * uint64(r.scenario.SliceLen)
		if got := r.counters.ElemDrops.Load(); got != want {
			return errors.New(errors.PhaseRuntime, errors.KindCorruptCount).
				Detail("expected %d element drops, got %d", want, got).
				Value(got).
				Build()
		}
	}
	if bad := r.counters.CanaryBad.Load(); bad != 0 {
		return errors.New(errors.PhaseRuntime, errors.KindCorruptCount).
			Detail("%d canary violations", bad).
			Value(bad).
			Build()
	}
	return nil
}

// closeArena closes the bytes arena, first checking that every chunk came
// back. Force skips the check for error paths that already failed.
func (r *Runner) closeArena(force bool) error {
	if r.arena == nil {
		return nil
	}
	if !force {
		if st := r.arena.Stats(); st.ChunksInUse != 0 {
			return errors.New(errors.PhaseRuntime, errors.KindCorruptCount).
				Detail("%d arena chunks still outstanding after run", st.ChunksInUse).
				Value(st.ChunksInUse).
				Build()
		}
	}
	return r.arena.Close()
}

// Snapshot returns a point-in-time copy of the counters. Safe to call
// concurrently with a run in flight.
func (r *Runner) Snapshot() Snapshot {
	c := &r.counters
	snap := Snapshot{
		Clones:    c.Clones.Load(),
		Releases:  c.Releases.Load(),
		LocksOK:   c.LocksOK.Load(),
		LocksGone: c.LocksGone.Load(),
		Drops:     c.Drops.Load(),
		ElemDrops: c.ElemDrops.Load(),
		Inserts:   c.Inserts.Load(),
		Removes:   c.Removes.Load(),
		Misses:    c.Misses.Load(),
		CanaryBad: c.CanaryBad.Load(),
		Running:   r.running.Load(),
	}
	if start := r.started.Load(); start != 0 {
		end := r.finished.Load()
		if snap.Running || end == 0 {
			end = time.Now().UnixNano()
		}
		snap.Elapsed = time.Duration(end - start)
	}
	return snap
}

// randomHandle picks a currently published handle.
func (r *Runner) randomHandle() registry.Handle {
	return registry.Handle(r.handles[rand.Intn(len(r.handles))].Load())
}

// cloner fetches a handle, clones it through the table, reads the payload,
// and releases.
func (r *Runner) cloner(ctx context.Context) {
	c := &r.counters
	for ctx.Err() == nil {
		a, ok := r.table.Get(r.randomHandle())
		if !ok {
			c.Misses.Add(1)
			continue
		}
		c.Clones.Add(1)

		p := a.Get()
		p.checkCanary(c)
		switch {
		case p.cells != nil:
			_ = p.cells.At(int(p.seq) % p.cells.Len())
		case p.bytes != nil:
			_ = p.bytes.At(int(p.seq) % p.bytes.Len())
		}

		a.Release()
		c.Releases.Add(1)
	}
}

// locker holds a weak handle and races promotion against the churners.
// Every successful promotion must observe a live, intact payload.
func (r *Runner) locker(ctx context.Context) {
	c := &r.counters
	var w *arc.Weak[payload]
	defer func() {
		if w != nil {
			w.Release()
		}
	}()

	for ctx.Err() == nil {
		if w == nil {
			a, ok := r.table.Get(r.randomHandle())
			if !ok {
				c.Misses.Add(1)
				continue
			}
			w = a.Downgrade()
			a.Release()
		}

		if s, ok := w.Lock(); ok {
			if s.UseCount() < 1 {
				c.CanaryBad.Add(1)
			}
			s.Get().checkCanary(c)
			c.LocksOK.Add(1)
			s.Release()
		} else {
			c.LocksGone.Add(1)
			w.Release()
			w = nil
		}
	}
}

// churner replaces published payloads with fresh ones.
func (r *Runner) churner(ctx context.Context) {
	for ctx.Err() == nil {
		if err := r.publish(rand.Intn(len(r.handles))); err != nil {
			Logger().Error("churner stopping", zap.Error(err))
			return
		}
	}
}
