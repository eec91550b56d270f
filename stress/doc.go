// Package stress runs configurable concurrent lifecycle workloads against
// the library's ownership primitives.
//
// A Scenario describes the workload: how many goroutines clone, how many
// race weak-handle promotion, how many churn table entries, what payload
// they share (a plain object, an owned slice, or arena-backed bytes), and
// for how long. Scenarios load from YAML files or from built-in presets:
//
//	s, err := stress.Load("scenario.yaml")
//	// or
//	s, _ := stress.Preset("churn-heavy")
//
// A Runner drives the scenario and aggregates Counters across workers:
//
//	r, err := stress.NewRunner(s)
//	snap, err := r.Run(ctx)
//	fmt.Printf("%d clones, %d failed promotions\n", snap.Clones, snap.LocksGone)
//
// Snapshot is safe to call from other goroutines while the run is in
// flight, which is how the arcstress TUI animates its gauges.
//
// Workers share payloads exclusively through a registry table, so every
// handle crossing a goroutine boundary is a plain integer and the usual
// one-goroutine-per-handle discipline holds by construction. Finished runs
// leave nothing behind: the table is closed, every payload destructor has
// run, and the arena (bytes scenarios) closes with zero outstanding chunks.
package stress
