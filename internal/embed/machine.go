// Package embed implements the host-facing API surface spec.md §6
// describes for embedding the core into a larger program: lifecycle
// (Startup/Shutdown/Tick), memory (alloc/realloc/free/manage/repossess),
// value construction, handle lifecycle, and the variadic evaluation
// entry points a host uses to run code and get values back.
//
// It plays the same role the teacher's pkg/embed.VM plays over
// internal/vm.VM (internal/vm's low-level machine behind a small,
// ergonomic Go API) — generalized from a bytecode VM wrapper to a
// trampoline/action wrapper, and cut down to the pieces that make sense
// without a front end (lexing/parsing/analysis are external collaborators
// per spec.md §1).
package embed

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/funvibe/corevm/internal/action"
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/config"
	"github.com/funvibe/corevm/internal/trampoline"
	"github.com/google/uuid"
)

// Machine bundles an Interpreter with the host-facing bookkeeping
// (handles, registered functions, memory accounting) spec.md §6 expects an
// embedding API to provide on top of the bare trampoline.
type Machine struct {
	Interp  *trampoline.Interpreter
	Profile config.Profile

	functions map[string]*action.Action

	managedBytes int64
}

// HostFunc is the Go callback shape a host supplies to RegisterFunction:
// it receives already-marshalled argument cells and returns a result cell
// or an error, the same request/response contract the teacher's
// hostCallHandler implements over reflect.Value (pkg/embed/vm.go),
// generalized away from reflection since this core has no static type
// system of its own to drive argument coercion.
type HostFunc func(args []cell.Cell) (cell.Cell, error)

// Startup constructs a Machine: spec.md §6's "allocate all structures,
// construct the bottom sentinel level, initialize signals", done here via
// trampoline.New, plus the embedding-level bookkeeping the bare
// Interpreter doesn't carry.
func Startup(profile config.Profile) *Machine {
	interp := trampoline.New(profile.EvalCountdownPeriod)
	interp.DataStack = make([]cell.Cell, 0, profile.InitialStackSize)
	interp.SetMaxLevelDepth(profile.MaxLevelDepth)
	return &Machine{
		Interp:    interp,
		Profile:   profile,
		functions: make(map[string]*action.Action),
	}
}

// Shutdown tears the machine down; clean mirrors Interpreter.Shutdown's
// clean flag (spec.md §6): with clean set it refuses to shut down while
// levels or manual flexes are still live; feeds are not checked.
func (m *Machine) Shutdown(clean bool) error {
	return m.Interp.Shutdown(clean)
}

// Tick reports the trampoline's monotonic step counter.
func (m *Machine) Tick() int { return m.Interp.Tick() }

// RegisterFunction binds name to fn so host code can be invoked from
// evaluated code the same way a user-defined action would be (spec.md §6
// "Function registration"): it builds a real Phase whose Dispatcher wraps
// fn, invoked with a frame via the ordinary action executor, with fn's
// result interpreted as a Bounce and type-checked against ret (nil means
// unconstrained). params describes the paramlist fn's args are fulfilled
// against — in particular, this means a host function is just as subject
// to refinement-defaulting, variadic feed handles, and infix calling as
// any other action (internal/action/executor.go), not a bypass of that
// machinery.
func (m *Machine) RegisterFunction(name string, params []*action.Param, ret *action.Param, fn HostFunc) {
	ph := action.NewPhase(action.Symbol(name), params, hostDispatcher(fn))
	ph.Return = ret
	m.functions[name] = action.New(ph)
}

// hostDispatcher adapts a HostFunc into an action.Dispatcher: once the
// executor has fulfilled every slot, it reads the filled varlist
// (excluding the reserved rootvar), calls fn, and turns the result into
// the level's Out — or, on error, a cooperative panic the trampoline
// treats exactly like any other dispatcher failure.
func hostDispatcher(fn HostFunc) action.Dispatcher {
	return func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		args := append([]cell.Cell(nil), l.Varlist.Cells[1:]...)
		result, err := fn(args)
		if err != nil {
			return trampoline.Thrown(trampoline.LabelPanic, err, nil)
		}
		l.Out = result
		return trampoline.Out()
	}
}

// Function looks up a previously registered host function's action.
func (m *Machine) Function(name string) (*action.Action, bool) {
	a, ok := m.functions[name]
	return a, ok
}

// noteAlloc accounts a managed allocation against the profile's GC trigger
// threshold, formatting an advisory in humanize's byte notation the same
// way an embedding's debug log would report memory pressure rather than
// raw byte counts.
func (m *Machine) noteAlloc(n int64) (triggerAdvice string, trigger bool) {
	m.managedBytes += n
	if m.Profile.GCTriggerAllocBytes > 0 && m.managedBytes >= m.Profile.GCTriggerAllocBytes {
		return fmt.Sprintf("managed allocations reached %s (threshold %s)",
			humanize.Bytes(uint64(m.managedBytes)), humanize.Bytes(uint64(m.Profile.GCTriggerAllocBytes))), true
	}
	return "", false
}

// newHandleID is split out purely so tests can assert uuid.New is really
// what backs handle identity (spec.md §3/§6).
func newHandleID() uuid.UUID { return uuid.New() }
