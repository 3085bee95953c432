package action

import "github.com/funvibe/corevm/internal/cell"

// containsSymbol/containsInt are small linear-scan helpers; paramlists are
// short enough (parameter counts in the tens at most) that a map would be
// overkill, matching the teacher's preference for straight loops over
// small fixed slices in apply.go.
func containsSymbol(names []Symbol, s Symbol) bool {
	for _, n := range names {
		if n == s {
			return true
		}
	}
	return false
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func cloneVarlist(vl *cell.Stub) *cell.Stub {
	out := cell.NewArrayStub(cell.FlavorVarlist, vl.Len())
	copy(out.Cells, vl.Cells)
	out.Link = vl.Link
	return out
}

// Specialize builds a new Action from base by opening, for this round, every
// still-unspecialized non-refinement parameter plus any still-unspecialized
// refinement named in refine; calling fulfill to let the caller bind values
// into those (and only those) opened slots; and then folding the result
// back into a new varlist and Partials list (spec.md §4.5.2).
//
// A refinement that fulfill leaves untouched is treated as "present but
// argless" and locked to the ok antiform, the same way a parameterless
// refinement's presence is recorded once it is addressed at all. A
// refinement never named in refine carries forward as still-partial,
// appended to the tail of the returned Partials list the first round it is
// noticed open — so the priority order Apply later walks tail-to-head is
// the order in which successive Specialize rounds first found them open,
// most recently found first. A refinement that is named drops out of
// Partials.
func Specialize(base *Action, refine []Symbol, fulfill func(vl *cell.Stub)) *Action {
	newVarlist := cloneVarlist(base.Varlist)

	var opened []int
	for i := 1; i < len(newVarlist.Cells); i++ {
		if !IsUnspecialized(newVarlist.Cells[i]) {
			continue
		}
		param := base.Phase.Paramlist[i].Param
		if param != nil && param.IsRefinement() {
			if containsSymbol(refine, param.Name) {
				opened = append(opened, i)
			}
			continue
		}
		opened = append(opened, i)
	}

	fulfill(newVarlist)

	for _, i := range opened {
		param := base.Phase.Paramlist[i].Param
		if param != nil && param.IsRefinement() && IsUnspecialized(newVarlist.Cells[i]) {
			newVarlist.Cells[i] = cell.Ok()
		}
	}

	var partials []int
	for _, idx := range base.Partials {
		if IsUnspecialized(newVarlist.Cells[idx]) {
			partials = append(partials, idx)
		}
	}
	for i := 1; i < len(newVarlist.Cells); i++ {
		if !IsUnspecialized(newVarlist.Cells[i]) {
			continue
		}
		param := base.Phase.Paramlist[i].Param
		if param == nil || !param.IsRefinement() {
			continue
		}
		if containsInt(partials, i) || containsInt(opened, i) {
			continue
		}
		partials = append(partials, i)
	}

	// An infix action invoked with its first parameter already specialized
	// away has nothing left to take from its left-hand side, so it is
	// demoted to an ordinary prefix action (spec.md §4.5.2 step 5 / §8):
	// "specializing out the first parameter of an infix action demotes it
	// to prefix". Index 1 is that first parameter slot (index 0 is the
	// reserved rootvar).
	infix := base.Infix
	if infix && len(newVarlist.Cells) > 1 && !IsUnspecialized(newVarlist.Cells[1]) {
		infix = false
	}

	return &Action{Phase: base.Phase, Varlist: newVarlist, Partials: partials, Infix: infix}
}
