package action

import (
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/feed"
	"github.com/funvibe/corevm/internal/trampoline"
)

// Label builds the `name:` separator cell spec.md §4.5.3 uses to address a
// parameter (ordinary or refinement) out of positional order: Apply jumps
// its evars cursor straight to name's slot instead of advancing to the
// next open one. It is a HeartChain cell carrying the interned Symbol,
// the same way a word cell's Ref carries its own interned name.
func Label(name Symbol) cell.Cell {
	return cell.Cell{Heart: cell.HeartChain, Lift: cell.LiftBase, Flags: cell.FlagReadable, Ref: name}
}

func labelName(c cell.Cell) (Symbol, bool) {
	if c.Heart != cell.HeartChain || c.Lift != cell.LiftBase {
		return "", false
	}
	name, ok := c.Ref.(Symbol)
	return name, ok
}

// Comma builds the `,` separator cell that closes out whatever refinement
// group the cursor currently sits inside: its remaining sub-parameters
// default to null and the cursor resumes positional fill at the next
// group (spec.md §4.5.3).
func Comma() cell.Cell {
	return cell.Cell{Heart: cell.HeartChain, Lift: cell.LiftBase, Flags: cell.FlagReadable, Extra: 1}
}

func isComma(c cell.Cell) bool {
	return c.Heart == cell.HeartChain && c.Lift == cell.LiftBase && c.Extra == 1 && c.Ref == nil
}

// evarGroup is one unit the application cursor advances through at a
// time: either a single ordinary parameter, or a refinement together
// with its sub-parameters (spec.md §4.5.3's "partials-then-refinements"
// ordering — a refinement and its arguments are addressed as one).
type evarGroup struct {
	indices []int
}

// buildApplyGroups enumerates every group Apply's cursor visits, in
// order, and a label: index mapping each addressable parameter name to
// its (group, offset) position. Still-partial refinements (left open by an
// earlier Specialize round and recorded in Partials) come first, in
// priority order; then every other open slot in paramlist order, where a
// refinement nobody has named yet forms one group with its
// sub-parameters. The cursor reaches those refinement groups by its
// positional walk as well as by label:.
func buildApplyGroups(call *Action) ([]evarGroup, map[Symbol][2]int) {
	var groups []evarGroup
	owned := make(map[int]bool)

	addGroup := func(indices []int) {
		groups = append(groups, evarGroup{indices: indices})
		for _, i := range indices {
			owned[i] = true
		}
	}

	for _, refIdx := range OpenPartialRefinements(call) {
		if owned[refIdx] {
			continue
		}
		addGroup(refinementGroup(call.Phase, refIdx))
	}

	for i := 1; i < len(call.Phase.Paramlist); i++ {
		if owned[i] {
			continue
		}
		param := call.Phase.Paramlist[i].Param
		if param == nil || !IsUnspecialized(call.Varlist.Cells[i]) {
			continue
		}
		if param.IsRefinement() {
			// Never yet named: still addressable by label:, but its
			// sub-parameters must not also surface as independent
			// positional groups, so they're marked owned right away too.
			addGroup(refinementGroup(call.Phase, i))
			continue
		}
		addGroup([]int{i})
	}

	labels := make(map[Symbol][2]int)
	for gi, g := range groups {
		for off, slot := range g.indices {
			labels[call.Phase.Keylist[slot]] = [2]int{gi, off}
		}
	}
	return groups, labels
}

// applyPlan is Apply's private per-call bookkeeping, threaded through
// Level.Action.SubState exactly like execPlan is for the plain positional
// executor.
type applyPlan struct {
	groups  []evarGroup
	labels  map[Symbol][2]int
	gi      int
	off     int
	curIdx  int // slot awaiting an ArgEvaluator result; -1 when idle
	relaxed bool
}

func (p *applyPlan) done() bool { return p.gi >= len(p.groups) }

func (p *applyPlan) currentSlot() int { return p.groups[p.gi].indices[p.off] }

// advance moves the cursor to the next slot within the current group, or
// to the start of the next group once the current one is exhausted.
func (p *applyPlan) advance() {
	p.off++
	if p.off >= len(p.groups[p.gi].indices) {
		p.gi++
		p.off = 0
	}
}

// defaultGroupTail fills indices (a suffix of some group's slots, starting
// at a given offset within that group) with their rest-of-group defaults:
// if the first remaining slot is a refinement's own (not yet marked
// present or absent), it becomes present-but-argless rather than null —
// the same rule Specialize applies to an argless refinement — and every
// slot after that is null.
func defaultGroupTail(l *trampoline.Level, ph *Phase, indices []int, atGroupStart bool) {
	for i, idx := range indices {
		if i == 0 && atGroupStart {
			param := ph.Paramlist[idx].Param
			if param != nil && param.IsRefinement() {
				l.Varlist.Cells[idx] = cell.Ok()
				continue
			}
		}
		l.Varlist.Cells[idx] = cell.Null()
	}
}

// defaultRestOfGroup defaults every slot in the current group from the
// cursor's position onward (used by Comma, and when the feed runs dry
// inside a refinement's sub-parameters) and moves past the group.
func defaultRestOfGroup(l *trampoline.Level, ph *Phase, p *applyPlan) {
	if p.done() {
		return
	}
	g := p.groups[p.gi]
	defaultGroupTail(l, ph, g.indices[p.off:], p.off == 0)
	p.gi++
	p.off = 0
}

// defaultRemainingGroups defaults every slot in every group the cursor
// never reached, run when the feed ends (or is exhausted in relaxed mode)
// before the remaining groups are refinements — never for a still-open
// ordinary parameter, which is instead ErrTooFewArguments.
func defaultRemainingGroups(l *trampoline.Level, ph *Phase, p *applyPlan) {
	for ; p.gi < len(p.groups); p.gi, p.off = p.gi+1, 0 {
		g := p.groups[p.gi]
		defaultGroupTail(l, ph, g.indices[p.off:], false)
	}
}

// Apply builds the Level implementing spec.md §4.5.3's application
// algorithm over base: an evars cursor visiting still-partial refinements
// first, then open ordinary parameters, filling each from f in turn,
// with label: cells (see Label) jumping the cursor to address a
// parameter out of order and Comma cells closing out the refinement
// group currently in progress. relaxed selects spec.md §4.5.3's two
// documented behaviors once every evars slot has been visited: relaxed
// silently stops and ignores whatever is left in f, strict throws
// ErrTooManyArguments.
func Apply(interp *trampoline.Interpreter, base *Action, f *feed.Feed, evalArg ArgEvaluator, relaxed bool) *trampoline.Level {
	call := CloneForCall(base)
	groups, labels := buildApplyGroups(call)
	l := trampoline.NewLevel(makeApplyExecutor(interp, call, f, evalArg))
	l.Feed = f
	l.Varlist = call.Varlist
	l.Rootvar = call.Varlist.Cells[0]
	l.Action = &trampoline.ActionState{SubState: &applyPlan{groups: groups, labels: labels, curIdx: -1, relaxed: relaxed}}
	return l
}

func makeApplyExecutor(interp *trampoline.Interpreter, call *Action, f *feed.Feed, evalArg ArgEvaluator) trampoline.Executor {
	var exec trampoline.Executor
	exec = func(l *trampoline.Level, in trampoline.Bounce) trampoline.Bounce {
		switch l.State {
		case 0: // InitialEntry
			l.State = stateFulfill
			return applyStep(l, interp, call, f, evalArg, trampoline.Bounce{})

		case stateFulfill:
			return applyStep(l, interp, call, f, evalArg, in)

		case stateDispatch:
			if in.Kind == trampoline.KindThrown || in.Kind == trampoline.KindPanic {
				l.State = stateAbruptCleanup
				return exec(l, in)
			}
			b := call.Phase.Dispatcher(l, interp, in)
			if b.Kind == trampoline.KindOut && call.Phase.Return != nil && call.Phase.Return.Constraint != nil {
				if !call.Phase.Return.Constraint(l.Out) {
					return trampoline.Thrown(trampoline.LabelPanic, ErrTypeMismatch, nil)
				}
			}
			return b

		case stateAbruptCleanup:
			return in

		default:
			panic("action: unreachable apply executor state")
		}
	}
	return exec
}

// applyStep advances (or resumes) the evars cursor. Unlike fulfillStep's
// plain positional walk, each tick may consume zero feed elements
// (Comma, a label: jump) or one (an ordinary value, or a label: cell
// itself), and the cursor can relocate out of sequence.
func applyStep(l *trampoline.Level, interp *trampoline.Interpreter, call *Action, f *feed.Feed, evalArg ArgEvaluator, in trampoline.Bounce) trampoline.Bounce {
	plan := l.Action.SubState.(*applyPlan)

	if plan.curIdx >= 0 {
		if in.Kind == trampoline.KindThrown || in.Kind == trampoline.KindPanic {
			return in
		}
		if err := applyConsume(l, call, plan, f, l.Out); err != nil {
			return trampoline.Thrown(trampoline.LabelPanic, err, nil)
		}
	}

	for !plan.done() {
		raw, ok := f.At()
		if !ok {
			break
		}

		if isComma(raw) {
			if err := f.Advance(); err != nil {
				return trampoline.Thrown(trampoline.LabelPanic, err, nil)
			}
			defaultRestOfGroup(l, call.Phase, plan)
			continue
		}

		if name, ok := labelName(raw); ok {
			target, known := plan.labels[name]
			if !known {
				return trampoline.Thrown(trampoline.LabelPanic, ErrUnknownLabel, nil)
			}
			if err := f.Advance(); err != nil {
				return trampoline.Thrown(trampoline.LabelPanic, err, nil)
			}
			plan.gi, plan.off = target[0], target[1]
			continue
		}

		idx := plan.currentSlot()
		param := call.Phase.Paramlist[idx].Param

		if param != nil && param.IsRefinement() {
			// Reaching a refinement's own slot positionally (priority
			// partials, or a label: jump that landed on the refinement
			// name itself) marks it present; its value is the ok
			// antiform, never read from the feed (spec.md §4.5.2's
			// "present but argless" convention Specialize also uses).
			l.Varlist.Cells[idx] = cell.Ok()
			plan.advance()
			continue
		}

		if param != nil && param.IsVariadic() {
			l.Varlist.Cells[idx] = FeedHandle(f)
			plan.advance()
			continue
		}

		switch {
		case param == nil:
			plan.advance()
			continue
		case param.Class == ClassMeta || param.Class == ClassJust || param.Class == ClassThe:
			if err := typecheck(call, idx, raw); err != nil {
				return trampoline.Thrown(trampoline.LabelPanic, err, nil)
			}
			l.Varlist.Cells[idx] = raw
			plan.advance()
			if err := f.Advance(); err != nil {
				return trampoline.Thrown(trampoline.LabelPanic, err, nil)
			}
			continue
		default: // ClassNormal, ClassSoft
			plan.curIdx = idx
			b := evalArg(l, raw)
			if b.Kind != trampoline.KindOut {
				return b
			}
			if err := applyConsume(l, call, plan, f, l.Out); err != nil {
				return trampoline.Thrown(trampoline.LabelPanic, err, nil)
			}
		}
	}

	if !plan.done() {
		// Feed ran dry mid-cursor. A refinement group nobody has started
		// addressing yet (cursor sitting on its own slot) simply defaults
		// to absent; anything else still open — an ordinary parameter, or
		// a refinement's argument once the refinement itself has already
		// been marked present — is a hard arity error.
		onlyRefinementsLeft := plan.off == 0
		for _, g := range plan.groups[plan.gi:] {
			if !isFirstSlotOfRefinementGroup(call.Phase, g) {
				onlyRefinementsLeft = false
				break
			}
		}
		if onlyRefinementsLeft {
			defaultRemainingGroups(l, call.Phase, plan)
		} else {
			return trampoline.Thrown(trampoline.LabelPanic, ErrTooFewArguments, nil)
		}
	} else if !f.AtEnd() {
		if !plan.relaxed {
			return trampoline.Thrown(trampoline.LabelPanic, ErrTooManyArguments, nil)
		}
	}

	l.State = stateDispatch
	return call.Phase.Dispatcher(l, interp, trampoline.Bounce{})
}

func isFirstSlotOfRefinementGroup(ph *Phase, g evarGroup) bool {
	if len(g.indices) == 0 {
		return false
	}
	param := ph.Paramlist[g.indices[0]].Param
	return param != nil && param.IsRefinement()
}

func applyConsume(l *trampoline.Level, call *Action, plan *applyPlan, f *feed.Feed, value cell.Cell) error {
	idx := plan.curIdx
	if err := typecheck(call, idx, value); err != nil {
		return err
	}
	l.Varlist.Cells[idx] = value
	l.Out = cell.Erased()
	plan.curIdx = -1
	plan.advance()
	return f.Advance()
}
