// Package config implements the interpreter's tunable startup profile:
// the initial data-stack size, the eval-countdown signal-check period, the GC
// trigger threshold, and the maximum level depth (spec.md §4.6). It
// follows the same gopkg.in/yaml.v3 load-then-validate-then-default shape
// as the teacher's internal/ext.Config (internal/ext/config.go), generalized
// from a Go-binding manifest to a VM tuning profile.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile bundles the Interpreter construction knobs spec.md §6's Startup()
// takes as parameters, so an embedding can ship one as a file instead of
// wiring constants at the call site.
type Profile struct {
	// InitialStackSize is the capacity the Interpreter's data stack
	// (trampoline.Interpreter.DataStack, used for transient pushed cells
	// during specialization/sequence-building/mold) preallocates up
	// front, the stackless core's analogue of the teacher's initial VM
	// stack size.
	InitialStackSize int `yaml:"initial_stack_size"`

	// EvalCountdownPeriod is how many trampoline ticks elapse between
	// signal-consumption checks (spec.md §4.4 step 6).
	EvalCountdownPeriod int `yaml:"eval_countdown_period"`

	// GCTriggerAllocBytes is the managed-allocation byte total at which
	// embed.Machine's allocation accounting (noteAlloc) reports that a GC
	// pass is due; 0 disables that report. The allocation paths discard
	// the report, so no GC pass is requested from it.
	GCTriggerAllocBytes int64 `yaml:"gc_trigger_alloc_bytes"`

	// MaxLevelDepth bounds how many Levels may be live at once, the
	// core's substitute for a host stack-overflow guard now that
	// recursion no longer grows the Go stack (spec.md §9).
	MaxLevelDepth int `yaml:"max_level_depth"`
}

// DefaultProfile is used whenever an embedding does not supply its own
// profile. The eval-countdown period matches the teacher's own debug
// tracing cadence default; the rest are conservative round numbers with no
// load-bearing significance beyond "non-zero and sane".
var DefaultProfile = Profile{
	InitialStackSize:    256,
	EvalCountdownPeriod: 4096,
	GCTriggerAllocBytes: 64 << 20,
	MaxLevelDepth:       1 << 20,
}

// LoadProfile reads and validates a profile YAML file, filling any omitted
// field from DefaultProfile.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("config: reading profile %s: %w", path, err)
	}
	return ParseProfile(data, path)
}

// ParseProfile parses profile YAML content from bytes; path is used only
// for error messages.
func ParseProfile(data []byte, path string) (Profile, error) {
	p := DefaultProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("config: parsing profile %s: %w", path, err)
	}
	if err := p.validate(path); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) validate(path string) error {
	if p.InitialStackSize <= 0 {
		return fmt.Errorf("config: %s: initial_stack_size must be positive, got %d", path, p.InitialStackSize)
	}
	if p.EvalCountdownPeriod <= 0 {
		return fmt.Errorf("config: %s: eval_countdown_period must be positive, got %d", path, p.EvalCountdownPeriod)
	}
	if p.MaxLevelDepth <= 0 {
		return fmt.Errorf("config: %s: max_level_depth must be positive, got %d", path, p.MaxLevelDepth)
	}
	if p.GCTriggerAllocBytes < 0 {
		return fmt.Errorf("config: %s: gc_trigger_alloc_bytes cannot be negative, got %d", path, p.GCTriggerAllocBytes)
	}
	return nil
}
