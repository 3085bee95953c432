package action

// FirstUnspecializedParam returns the lowest paramlist index (excluding the
// rootvar slot) whose slot is still open and is not a refinement (spec.md
// §4.5.4). It walks plain paramlist order and does not consult Partials, so
// for an action with still-partial refinements it is not the first slot
// Apply fills: Apply visits those refinement groups first.
func FirstUnspecializedParam(a *Action) (int, bool) {
	for i := 1; i < len(a.Phase.Paramlist); i++ {
		param := a.Phase.Paramlist[i].Param
		if param == nil || param.IsRefinement() {
			continue
		}
		if IsUnspecialized(a.Varlist.Cells[i]) {
			return i, true
		}
	}
	return 0, false
}

// LastUnspecializedParam returns the highest such index, used by callers
// that need to know how many positional arguments could still legally
// follow (e.g. arity-checking dispatch before committing to Apply).
func LastUnspecializedParam(a *Action) (int, bool) {
	for i := len(a.Phase.Paramlist) - 1; i >= 1; i-- {
		param := a.Phase.Paramlist[i].Param
		if param == nil || param.IsRefinement() {
			continue
		}
		if IsUnspecialized(a.Varlist.Cells[i]) {
			return i, true
		}
	}
	return 0, false
}

// OpenPartialRefinements reports a's still-partial refinement slots in the
// priority order Apply visits them: highest priority first, i.e. the
// reverse of how Partials is stored (spec.md §4.5.2 step 6).
func OpenPartialRefinements(a *Action) []int {
	out := make([]int, len(a.Partials))
	for i, idx := range a.Partials {
		out[len(out)-1-i] = idx
	}
	return out
}

// Saturated reports whether every non-refinement parameter slot has been
// filled, meaning Apply can proceed straight to dispatch without needing
// any more feed elements.
func Saturated(a *Action) bool {
	_, ok := FirstUnspecializedParam(a)
	return !ok
}
