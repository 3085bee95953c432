package embed

import (
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/trampoline"
)

// Manage attaches c to l's alloc_value_list, returning a handle the host
// can hold onto across trampoline ticks; the handle's value is erased when
// l drops or is rolled back unless Unmanage detaches it first. This is the
// Go-API half of spec.md §6's handle lifecycle (the other half
// being the Level bookkeeping in internal/trampoline/level.go).
func Manage(l *trampoline.Level, c cell.Cell) *trampoline.AllocHandle {
	h := &trampoline.AllocHandle{ID: newHandleID(), Value: c}
	l.AttachHandle(h)
	return h
}

// Unmanage detaches h from l without releasing it, transferring ownership
// to the caller: the value now survives l's Drop/Rollback and it is the
// host's responsibility to call Release when finished with it.
func Unmanage(l *trampoline.Level, h *trampoline.AllocHandle) {
	l.DetachHandle(h)
	h.Managed = true
}

// Release erases h's value and detaches it from l if still attached. Safe
// to call on an already-unmanaged handle.
func Release(l *trampoline.Level, h *trampoline.AllocHandle) {
	l.DetachHandle(h)
	h.Value.Erase()
}

// Quote adds one level of quoting to c. Antiforms quote into the matching
// quasi-element one level up rather than staying antiform, the same
// "first quote stabilizes" rule spec.md §4.1 describes for antiforms in
// general.
func Quote(c cell.Cell) cell.Cell {
	if c.IsAntiform() {
		quasi, err := cell.Unlift(c, c.Heart)
		if err != nil {
			return c
		}
		quasi.Lift = cell.WithDepth(1)
		return quasi
	}
	c.Lift = cell.WithDepth(c.Lift.Depth() + 1)
	return c
}

// Unquote removes one level of quoting from c. It is the caller's error to
// unquote something not already quoted; ErrNotQuoted reports that.
var ErrNotQuoted = cell.ErrInvalidLift

func Unquote(c cell.Cell) (cell.Cell, error) {
	if !c.Lift.Quoted() {
		return cell.Cell{}, ErrNotQuoted
	}
	depth := c.Lift.Depth() - 1
	if depth <= 0 {
		c.Lift = cell.LiftBase
		return c, nil
	}
	c.Lift = cell.WithDepth(depth)
	return c, nil
}

// Arg is one argument to Run: either a plain value or a handle the host
// wants released automatically once Run has consumed it (spec.md §6's
// "rebR()-style" releasing-argument convention).
type Arg struct {
	Value        cell.Cell
	handle       *trampoline.AllocHandle
	releaseAfter bool
	owner        *trampoline.Level
}

// ValueArg wraps a plain cell as a Run argument.
func ValueArg(c cell.Cell) Arg { return Arg{Value: c} }

// Releasing wraps a handle so Run releases it immediately after the call,
// sparing the host an explicit follow-up Release for arguments that exist
// only to be passed once.
func Releasing(owner *trampoline.Level, h *trampoline.AllocHandle) Arg {
	return Arg{Value: h.Value, handle: h, releaseAfter: true, owner: owner}
}

// Run invokes a registered host function synchronously with the given
// arguments, releasing any Releasing-wrapped handles afterward regardless
// of whether the call succeeded. A registered host function is a real
// action.Action (RegisterFunction in machine.go) driven through the same
// NewCallLevel/RunWithTopAsRoot path as any other action — Run is just
// the host-to-host entry point spec.md §6 describes for "Function
// registration" callers, built on top of Value; a caller that needs
// label:/refinement addressing instead drives internal/action.Apply
// directly.
func (m *Machine) Run(name string, args ...Arg) (cell.Cell, error) {
	base, ok := m.Function(name)
	defer func() {
		for _, a := range args {
			if a.releaseAfter && a.handle != nil {
				Release(a.owner, a.handle)
			}
		}
	}()
	if !ok {
		return cell.Cell{}, ErrFunctionNotRegistered(name)
	}
	return m.Value(base, args...)
}

// Inline builds a blob cell wrapping raw bytes for splicing into a feed's
// VariadicSource as a feed.Item{Value: ...}; turning those bytes back into
// elements for further evaluation (rather than treating them as opaque
// binary data) is the Scanner collaborator's job, not this package's
// (spec.md §1).
func Inline(raw []byte) cell.Cell {
	return Blob(raw)
}
