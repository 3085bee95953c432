package action

import "github.com/funvibe/corevm/internal/cell"

// unspecializedPlaceholder occupies a varlist slot whose paramlist
// counterpart is still open. It is a HeartParameter antiform so that
// IsUnspecialized can tell "nobody has written an argument here yet" apart
// from any ordinary value a dispatcher might legitimately store, the same
// role the source's "parameter antiform" plays for varlist cells (distinct
// from the Paramlist/ParamSlot tag in param.go, which exists purely as a Go
// ergonomics choice — varlists are real cell.Stub arrays that outlive this
// package, so their empty slots need an actual in-band marker).
var unspecializedPlaceholder = cell.Cell{
	Heart: cell.HeartParameter,
	Lift:  cell.LiftAntiform,
	Flags: cell.FlagReadable,
}

// IsUnspecialized reports whether c is the varlist placeholder marking an
// argument slot nobody has filled yet.
func IsUnspecialized(c cell.Cell) bool {
	return c.Heart == cell.HeartParameter && c.Lift == cell.LiftAntiform
}

// NewVarlist allocates a fresh varlist for ph: a FlavorVarlist stub with one
// cell per paramlist slot, its Link pointing back at ph (so the dispatcher
// and any later specialization can recover the phase from the varlist
// alone, mirroring spec.md §3's rootvar-carries-the-phase convention), slot
// 0 holding the rootvar, and every other slot either the placeholder (still
// open) or the phase's already-specialized fixed value.
func NewVarlist(ph *Phase, rootvar cell.Cell) *cell.Stub {
	vl := cell.NewArrayStub(cell.FlavorVarlist, ph.NumSlots())
	vl.Link = ph
	vl.Cells[0] = rootvar
	for i := 1; i < ph.NumSlots(); i++ {
		slot := ph.Paramlist[i]
		if slot.Specialized() {
			vl.Cells[i] = slot.Fixed
		} else {
			vl.Cells[i] = unspecializedPlaceholder
		}
	}
	return vl
}

// PhaseOf recovers the phase backing a varlist built by NewVarlist.
func PhaseOf(varlist *cell.Stub) *Phase {
	ph, _ := varlist.Link.(*Phase)
	return ph
}
