package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/refkit/arena"
	"github.com/wippyai/refkit/registry"
	"github.com/wippyai/refkit/stress"
)

func main() {
	var (
		scenarioFile = flag.String("scenario", "", "Path to a scenario YAML file")
		presetName   = flag.String("preset", "", "Built-in scenario name")
		duration     = flag.Duration("duration", 0, "Override the scenario duration")
		list         = flag.Bool("list", false, "List built-in scenarios and exit")
		interactive  = flag.Bool("i", false, "Interactive mode with TUI")
		verbose      = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *list {
		fmt.Println("Built-in scenarios:")
		for _, name := range stress.PresetNames() {
			s, _ := stress.Preset(name)
			fmt.Printf("  %-14s %s payload, %d cloners / %d lockers / %d churners, %d entries\n",
				name, s.Payload, s.Cloners, s.Lockers, s.Churners, s.Entries)
		}
		return
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		stress.SetLogger(logger.Named("stress"))
		arena.SetLogger(logger.Named("arena"))
		registry.SetLogger(logger.Named("registry"))
	}

	scenario, err := resolveScenario(*scenarioFile, *presetName, *duration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive && term.IsTerminal(int(os.Stdout.Fd())) {
		if err := runInteractive(scenario); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(scenario); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resolveScenario(file, preset string, override time.Duration) (stress.Scenario, error) {
	var (
		s   stress.Scenario
		err error
	)
	switch {
	case file != "" && preset != "":
		return stress.Scenario{}, fmt.Errorf("-scenario and -preset are mutually exclusive")
	case file != "":
		s, err = stress.Load(file)
	case preset != "":
		s, err = stress.Preset(preset)
	default:
		s = stress.Default()
	}
	if err != nil {
		return stress.Scenario{}, err
	}
	if override > 0 {
		s.Duration = stress.Duration(override)
	}
	return s, nil
}

func run(s stress.Scenario) error {
	r, err := stress.NewRunner(s)
	if err != nil {
		return err
	}
	s = r.Scenario()

	fmt.Printf("Scenario: %s\n", s.Name)
	fmt.Printf("Payload:  %s", s.Payload)
	if s.Payload != stress.PayloadObject {
		fmt.Printf(" (%d elements)", s.SliceLen)
	}
	if s.UsePool {
		fmt.Printf(" (pooled)")
	}
	fmt.Printf("\nWorkers:  %d cloners, %d lockers, %d churners over %d entries\n",
		s.Cloners, s.Lockers, s.Churners, s.Entries)
	fmt.Printf("Running for %v...\n\n", time.Duration(s.Duration))

	snap, err := r.Run(context.Background())
	if err != nil {
		return err
	}
	fmt.Print(formatSnapshot(snap))
	return nil
}

func formatSnapshot(snap stress.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Elapsed:        %v\n", snap.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "Clones:         %d\n", snap.Clones)
	fmt.Fprintf(&b, "Releases:       %d\n", snap.Releases)
	fmt.Fprintf(&b, "Locks (ok):     %d\n", snap.LocksOK)
	fmt.Fprintf(&b, "Locks (gone):   %d\n", snap.LocksGone)
	fmt.Fprintf(&b, "Inserts:        %d\n", snap.Inserts)
	fmt.Fprintf(&b, "Removes:        %d\n", snap.Removes)
	fmt.Fprintf(&b, "Misses:         %d\n", snap.Misses)
	fmt.Fprintf(&b, "Drops:          %d\n", snap.Drops)
	if snap.ElemDrops > 0 {
		fmt.Fprintf(&b, "Element drops:  %d\n", snap.ElemDrops)
	}
	if snap.CanaryBad > 0 {
		fmt.Fprintf(&b, "CANARY FAULTS:  %d\n", snap.CanaryBad)
	}
	return b.String()
}
