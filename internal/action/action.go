package action

import "github.com/funvibe/corevm/internal/cell"

// Action bundles a phase with a concrete varlist instance: either the
// phase's zero-argument exemplar (every slot open except whatever the
// phase itself specialized at definition time) or a refinement of it
// produced by Specialize. This is the generalization of the teacher's
// *Function/*PartialApplication split (internal/evaluator/object_functions.go)
// into the single spec.md §3 model where "a specialized action and an
// unspecialized one are the same shape, differing only in which varlist
// slots are still placeholders".
type Action struct {
	Phase   *Phase
	Varlist *cell.Stub // FlavorVarlist, Link == Phase

	// Partials records, lowest-priority-first, the refinement slot
	// indices still open on this action (spec.md §4.5.2 step 6): the
	// application algorithm visits them tail-to-head, i.e.
	// highest-priority refinement first.
	Partials []int

	// Infix starts out equal to Phase.Infix and is carried independently
	// per Action (rather than read straight off the shared Phase) because
	// Specialize can demote it: spec.md §4.5.2/§8 "specializing out the
	// first parameter of an infix action demotes it to prefix".
	Infix bool
}

// New builds the zero-argument Action for ph: a fresh varlist with every
// non-prespecialized slot open, and no partial refinements yet recorded.
func New(ph *Phase) *Action {
	archetype := cell.New(cell.HeartAction, [2]uint64{}, 0, nil)
	return &Action{Phase: ph, Varlist: NewVarlist(ph, archetype), Infix: ph.Infix}
}

// Cell wraps a into an action-heart cell referencing it, suitable for
// storage in a variable or passing as a value (spec.md §3's "an action
// cell's payload is a varlist reference").
func (a *Action) Cell() cell.Cell {
	return cell.Cell{Heart: cell.HeartAction, Lift: cell.LiftBase, Flags: cell.FlagReadable, Ref: a}
}

// FromCell recovers the Action an action-heart cell references, or nil if
// c does not carry one (e.g. it is the antiform action~ form instead).
func FromCell(c cell.Cell) *Action {
	if c.Heart != cell.HeartAction {
		return nil
	}
	a, _ := c.Ref.(*Action)
	return a
}

// OpenParamIndices returns the paramlist indices (excluding the rootvar
// slot) still unspecialized and still fed positionally from the call
// feed, in keylist order. Refinement slots are deliberately excluded:
// spec.md §4.5.1 fills a refinement only when it is addressed by name
// (Apply's label: handling) or carried forward as a partial, never by
// position, so a plain positional executor (executor.go's fulfillStep)
// must default every open refinement to null instead of asking the feed
// for it. Use openRefinementIndices to enumerate the excluded slots.
func (a *Action) OpenParamIndices() []int {
	var out []int
	for i := 1; i < len(a.Phase.Paramlist); i++ {
		param := a.Phase.Paramlist[i].Param
		if param != nil && param.IsRefinement() {
			continue
		}
		if IsUnspecialized(a.Varlist.Cells[i]) {
			out = append(out, i)
		}
	}
	return out
}

// openRefinementIndices returns every paramlist index (excluding rootvar)
// that is both a refinement slot and still unspecialized, in paramlist
// order. Unlike Partials (which only records refinements a Specialize
// round has already carried forward), this walks the varlist directly,
// so it is correct even for a freshly built Action whose Partials is nil.
func openRefinementIndices(a *Action) []int {
	var out []int
	for i := 1; i < len(a.Phase.Paramlist); i++ {
		param := a.Phase.Paramlist[i].Param
		if param == nil || !param.IsRefinement() {
			continue
		}
		if IsUnspecialized(a.Varlist.Cells[i]) {
			out = append(out, i)
		}
	}
	return out
}

// refinementGroup returns refIdx together with the contiguous run of
// non-refinement paramlist slots immediately following it — its
// sub-parameters, in the convention that a refinement owns every slot up
// to (but not including) the next refinement or the end of the
// paramlist. Both the plain executor's auto-defaulting and Apply's
// label: fill use this to default or address a refinement as a unit.
func refinementGroup(ph *Phase, refIdx int) []int {
	group := []int{refIdx}
	for i := refIdx + 1; i < len(ph.Paramlist); i++ {
		param := ph.Paramlist[i].Param
		if param != nil && param.IsRefinement() {
			break
		}
		group = append(group, i)
	}
	return group
}
