package stress

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/refkit/errors"
)

// PayloadKind selects what the shared value carries during a run.
type PayloadKind string

const (
	// PayloadObject shares a plain struct payload.
	PayloadObject PayloadKind = "object"

	// PayloadSlice shares a struct owning a counted element slice.
	PayloadSlice PayloadKind = "slice"

	// PayloadBytes shares a struct owning an arena-backed byte buffer.
	PayloadBytes PayloadKind = "bytes"
)

// Duration wraps time.Duration so scenarios can spell durations the
// human way ("250ms", "2s") in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			"duration must be a string like \"2s\"")
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			fmt.Sprintf("bad duration %q", s))
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Scenario describes a concurrent lifecycle workload. Zero fields take
// defaults from Normalize; a Scenario must pass Validate before it can
// drive a Runner.
type Scenario struct {
	// Name identifies the scenario in logs and the TUI.
	Name string `yaml:"name"`

	// Duration bounds the run. Context cancellation stops it earlier.
	Duration Duration `yaml:"duration"`

	// Cloners is the number of goroutines that fetch a handle from the
	// table, clone it, touch the payload, and release.
	Cloners int `yaml:"cloners"`

	// Lockers is the number of goroutines that hold weak handles and
	// race promotion against the churners.
	Lockers int `yaml:"lockers"`

	// Churners is the number of goroutines that remove table entries and
	// insert fresh payloads in their place.
	Churners int `yaml:"churners"`

	// Payload selects the payload shape. Defaults to object.
	Payload PayloadKind `yaml:"payload"`

	// SliceLen is the element count for slice and bytes payloads.
	SliceLen int `yaml:"slice_len"`

	// Entries is the number of table slots the workers fight over.
	Entries int `yaml:"entries"`

	// UsePool recycles payload headers through an arc.Pool. Object
	// payloads only.
	UsePool bool `yaml:"use_pool"`

	// SlabSize overrides the arena slab size for bytes payloads.
	SlabSize int `yaml:"slab_size"`
}

// Normalize fills zero fields with defaults and returns the result.
func (s Scenario) Normalize() Scenario {
	if s.Name == "" {
		s.Name = "custom"
	}
	if s.Duration <= 0 {
		s.Duration = Duration(2 * time.Second)
	}
	if s.Cloners == 0 {
		s.Cloners = 4
	}
	if s.Lockers == 0 {
		s.Lockers = 2
	}
	if s.Payload == "" {
		s.Payload = PayloadObject
	}
	if s.SliceLen == 0 && s.Payload != PayloadObject {
		s.SliceLen = 64
	}
	if s.Entries == 0 {
		s.Entries = 16
	}
	return s
}

// Validate reports the first problem with the scenario, or nil.
func (s Scenario) Validate() error {
	switch s.Payload {
	case PayloadObject, PayloadSlice, PayloadBytes:
	default:
		return errors.InvalidInput(errors.PhaseConfig,
			fmt.Sprintf("unknown payload kind %q", s.Payload))
	}
	if s.Duration <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "duration must be positive")
	}
	if s.Cloners < 0 || s.Lockers < 0 || s.Churners < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "worker counts must not be negative")
	}
	if s.Cloners+s.Lockers+s.Churners == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "scenario has no workers")
	}
	if s.Entries <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "entries must be positive")
	}
	if s.Payload != PayloadObject && s.SliceLen <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, "slice_len must be positive for slice and bytes payloads")
	}
	if s.UsePool && s.Payload != PayloadObject {
		return errors.InvalidInput(errors.PhaseConfig, "use_pool requires the object payload")
	}
	if s.SlabSize < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "slab_size must not be negative")
	}
	return nil
}

// Parse decodes a YAML scenario, normalizes it, and validates it.
func Parse(data []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err,
			"failed to parse scenario")
	}
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Load reads a scenario from a YAML file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err,
			fmt.Sprintf("failed to read %s", path))
	}
	return Parse(data)
}

// Built-in presets. Every preset validates.
var presets = map[string]Scenario{
	"default": {
		Name:     "default",
		Duration: Duration(2 * time.Second),
		Cloners:  4,
		Lockers:  2,
		Churners: 1,
		Payload:  PayloadObject,
		Entries:  16,
	},
	"churn-heavy": {
		Name:     "churn-heavy",
		Duration: Duration(2 * time.Second),
		Cloners:  2,
		Lockers:  2,
		Churners: 8,
		Payload:  PayloadObject,
		Entries:  8,
	},
	"promote-race": {
		Name:     "promote-race",
		Duration: Duration(2 * time.Second),
		Cloners:  1,
		Lockers:  8,
		Churners: 4,
		Payload:  PayloadObject,
		Entries:  4,
	},
	"slice-drop": {
		Name:     "slice-drop",
		Duration: Duration(2 * time.Second),
		Cloners:  4,
		Lockers:  2,
		Churners: 2,
		Payload:  PayloadSlice,
		SliceLen: 128,
		Entries:  16,
	},
	"bytes-arena": {
		Name:     "bytes-arena",
		Duration: Duration(2 * time.Second),
		Cloners:  4,
		Lockers:  2,
		Churners: 2,
		Payload:  PayloadBytes,
		SliceLen: 4096,
		Entries:  16,
	},
	"pooled": {
		Name:     "pooled",
		Duration: Duration(2 * time.Second),
		Cloners:  4,
		Lockers:  2,
		Churners: 4,
		Payload:  PayloadObject,
		Entries:  16,
		UsePool:  true,
	},
}

// Preset returns a named built-in scenario.
func Preset(name string) (Scenario, error) {
	s, ok := presets[name]
	if !ok {
		return Scenario{}, errors.NotFound(errors.PhaseConfig, "preset", name)
	}
	return s.Normalize(), nil
}

// Default returns the default preset.
func Default() Scenario {
	s, _ := Preset("default")
	return s
}

// PresetNames returns the built-in scenario names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
