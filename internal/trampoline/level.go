package trampoline

import (
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/feed"
	"github.com/google/uuid"
)

// Flag is the Level flag bitfield from spec.md §3.
type Flag uint32

const (
	FlagRootLevel Flag = 1 << iota
	FlagTrampolineKeepalive
	FlagUninterruptible
	FlagAfraidOfGhosts
	FlagDispatchingIntrinsic
	FlagMetaResult
	FlagForceHeavyNulls
	FlagForceSurprising
	FlagBranch
	FlagAbruptFailure
	FlagNotifyOnAbruptFailure
	FlagDidntLeftQuotePath
)

// Executor drives one Level's state machine for a single trampoline step.
// It must never recursively invoke the trampoline; the only legitimate way
// to run nested evaluation is to push a sub-level and return KindContinue
// or KindDelegate (spec.md §9, "stackless continuations").
//
// in is meaningless on a level's very first invocation (State == 0) —
// executors branch on their own State there, not on in. On every
// subsequent invocation in reports what happened since this level last
// bounced: KindOut means a pushed sub-level resolved and its value is
// already sitting in this level's Out; KindThrown means a throw (raised
// below, or handed down from a sub-level that did not catch it) is
// looking for a catcher; KindRedoChecked/KindRedoUnchecked are the
// action-executor redo protocol (spec.md §4.5.1 "Redo").
type Executor func(l *Level, in Bounce) Bounce

// ActionState is the per-executor union member used by action-invocation
// levels: iterators walking a phase's keylist/paramlist/feed in lockstep
// as argument fulfillment interleaves with user evaluation (spec.md
// §4.5.5).
type ActionState struct {
	KeyIndex int
	SubState any // executor-defined (FulfillArg/TypecheckArg/Dispatching/...)
}

// StepperState is the per-executor union member used by plain evaluator
// levels stepping through a feed one element at a time.
type StepperState struct {
	Current cell.Cell
	Gotten  cell.Cell // cached lookup of Current when it denotes a word
	HaveGot bool
}

// AllocHandle is one API-allocated value handle attached to this level's
// alloc_value_list (spec.md §3, §6). Handles are released on clean Drop
// unless Unmanage/Release already detached them, or released during
// Rollback if the level was aborted.
type AllocHandle struct {
	ID      uuid.UUID
	Value   cell.Cell
	Managed bool // true once Unmanage has detached it, leaving the host to Release it
}

// Level is the per-call stackless record. The bottom level of any Stack is
// a sentinel with Prior == nil; every other level's Prior points at the
// level beneath it.
type Level struct {
	ID uuid.UUID

	Prior    *Level
	Executor Executor
	State    byte // 0 means "initial entry, Out must be erased"
	Flags    Flag

	Out     cell.Cell
	Spare   cell.Cell
	Scratch cell.Cell

	Feed *feed.Feed

	Baseline Baseline

	AllocValueList []*AllocHandle

	// Varlist/Rootvar are populated for action-invocation levels only.
	Varlist *cell.Stub
	Rootvar cell.Cell

	Action  *ActionState
	Stepper *StepperState

	// Delegating is set when this level's executor returned KindDelegate:
	// once its pushed sub-level resolves, this level is itself treated as
	// resolved with the sub-level's result, without being re-invoked.
	Delegating bool

	// PendingIn is the Bounce the trampoline will hand to Executor on its
	// next invocation: the zero Bounce means "initial entry" (State==0),
	// KindOut means "your sub-level's result is already in Out", and
	// KindThrown/KindRedoChecked/KindRedoUnchecked carry the matching
	// protocol data.
	PendingIn Bounce
}

// NewLevel constructs a Level in its initial state: state byte zero,
// erased Out cell, a fresh ID for diagnostics and handle bookkeeping.
func NewLevel(executor Executor) *Level {
	return &Level{ID: uuid.New(), Executor: executor, State: 0, Out: cell.Erased()}
}

// IsRoot reports whether l is currently tagged as the trampoline's root.
func (l *Level) IsRoot() bool { return l.Flags&FlagRootLevel != 0 }

// Interruptible reports whether a halt signal may inject a throw while l
// is the running level.
func (l *Level) Interruptible() bool { return l.Flags&FlagUninterruptible == 0 }

// AttachHandle appends a handle to this level's alloc_value_list.
func (l *Level) AttachHandle(h *AllocHandle) {
	l.AllocValueList = append(l.AllocValueList, h)
}

// DetachHandle removes h from this level's alloc_value_list, if present,
// without releasing it — used by Unmanage and Release to retarget a handle's
// lifetime.
func (l *Level) DetachHandle(h *AllocHandle) {
	for i, cur := range l.AllocValueList {
		if cur == h {
			l.AllocValueList = append(l.AllocValueList[:i], l.AllocValueList[i+1:]...)
			return
		}
	}
}
