package trampoline

import "github.com/funvibe/corevm/internal/cell"

// Push links lvl above the interpreter's current top, snapshots the
// baseline, and makes lvl the new top. If lvl.State == 0 it asserts that
// lvl.Out is erased (spec.md testable property 1).
func (i *Interpreter) Push(lvl *Level) error {
	if lvl.State == 0 && !lvl.Out.IsErased() {
		return ErrPushNonErasedOut
	}
	if i.MaxLevelDepth > 0 && i.depth >= i.MaxLevelDepth {
		return ErrLevelDepthExceeded
	}
	lvl.Prior = i.Top
	lvl.Baseline = i.snapshot()
	i.Top = lvl
	i.depth++
	return nil
}

// Drop expects the interpreter's mutable positions to have returned to
// lvl's baseline. On a clean drop, lvl.AllocValueList must already be
// empty (handles were released by the API as values went out of scope);
// any handles still attached are released here in handle-creation order,
// and their presence does not itself constitute an imbalance.
func (i *Interpreter) Drop(lvl *Level) error {
	cur := i.snapshot()
	if cur != lvl.Baseline {
		return ErrUnbalancedDrop
	}
	for _, h := range lvl.AllocValueList {
		i.releaseHandle(h)
	}
	lvl.AllocValueList = nil
	i.Top = lvl.Prior
	i.depth--
	return nil
}

// Rollback undoes a level's side effects after it was aborted by throw or
// abrupt panic: restores the interpreter's mutable positions to lvl's
// baseline, frees any manual flexes allocated above it, and releases any
// API handles still in lvl.AllocValueList.
func (i *Interpreter) Rollback(lvl *Level) {
	b := lvl.Baseline
	if len(i.DataStack) > b.DataStackTop {
		i.DataStack = i.DataStack[:b.DataStackTop]
	}
	if len(i.MoldBuffer) > b.MoldBufferOffset {
		i.MoldBuffer = i.MoldBuffer[:b.MoldBufferOffset]
	}
	if len(i.GuardedStubs) > b.GuardedStubCount {
		i.GuardedStubs = i.GuardedStubs[:b.GuardedStubCount]
	}
	for id := b.ManualFlexCount; id < i.ManualFlexCount; id++ {
		if free, ok := i.manualFlexes[id]; ok {
			free()
			delete(i.manualFlexes, id)
		}
	}
	i.ManualFlexCount = b.ManualFlexCount

	for _, h := range lvl.AllocValueList {
		i.releaseHandle(h)
	}
	lvl.AllocValueList = nil
	i.Top = lvl.Prior
	i.depth--
}

func (i *Interpreter) releaseHandle(h *AllocHandle) {
	if h == nil {
		return
	}
	h.Value.Erase()
}

// AdjustForDownshift normalizes which level should be treated as
// "current" for throw/drop purposes when the trampoline-visible top is
// really a transparent passthrough (executor == JustUseOut). Certain
// dispatcher layouts push a level that stands in for a technically-higher
// level; this walks past those.
func (i *Interpreter) AdjustForDownshift(lvl *Level) *Level {
	for lvl != nil && lvl.Executor == nil {
		lvl = lvl.Prior
	}
	return lvl
}

// PushDataStack / PopDataStack manage the thread-local data stack used for
// transient pushed cells during specialization, sequence building, and
// mold operations (spec.md §5).
func (i *Interpreter) PushDataStack(c cell.Cell) {
	i.DataStack = append(i.DataStack, c)
}

func (i *Interpreter) PopDataStack() cell.Cell {
	n := len(i.DataStack)
	c := i.DataStack[n-1]
	i.DataStack = i.DataStack[:n-1]
	return c
}

// AllocManualFlex registers a manually-tracked heap allocation that free
// will release; it returns an id used by free and by Rollback.
func (i *Interpreter) AllocManualFlex(free func()) int {
	id := i.ManualFlexCount
	i.ManualFlexCount++
	i.manualFlexes[id] = free
	return id
}

// FreeManualFlex releases a manual flex explicitly (outside of rollback).
func (i *Interpreter) FreeManualFlex(id int) {
	if free, ok := i.manualFlexes[id]; ok {
		free()
		delete(i.manualFlexes, id)
	}
}

// UnmanageMemory detaches an allocation from rollback tracking so it
// survives panics at the cost of not being auto-freed (spec.md §6).
func (i *Interpreter) UnmanageMemory(id int) {
	delete(i.manualFlexes, id)
}
