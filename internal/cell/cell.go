package cell

import "errors"

// Flag is the header bitfield carried by every cell. Most flags are
// hint bits the evaluator consults when shaping bounces (spec.md §4.4
// step 7); a few are structural.
type Flag uint16

const (
	FlagReadable Flag = 1 << iota
	FlagManaged       // subject to GC sweep rather than manual free
	FlagRoot          // held alive across GC independent of reachability
	FlagMark          // GC mark bit
	FlagNewlineBefore // molding hint: emit a newline before this element
	FlagUnsurprising  // OUT_HINT_UNSURPRISING: suppress "surprising" coercion
	FlagThrowMarker   // cell is carrying a throw label, not an ordinary value
)

// ErrInvalidLift is returned by Unlift when the cell is not in a form that
// can be unlifted (i.e. it is not a liftable antiform).
var ErrInvalidLift = errors.New("cell: not in liftable form")

// Cell is the fixed-size tagged union every value in the evaluator is built
// from. Cells are passed by value; heap-sized payloads are referenced
// through Ref (typically a *Stub, see internal/cell/stub.go) the same
// way the teacher's vm.Value keeps an evaluator.Object pointer alongside
// its inline Data word.
type Cell struct {
	Heart   Heart
	Lift    Lift
	Flags   Flag
	Payload [2]uint64 // two payload words
	Extra   uint64    // second data word / binding index when Ref is nil
	Ref     any       // heap reference: *Stub, binding context, etc.
}

// Erased returns the zero Cell. Legal only where spec.md permits: the
// initial state of a Level's out slot when its state byte is zero, and as
// a debug poison sentinel at the tail of dynamic arrays.
func Erased() Cell { return Cell{} }

// IsErased reports whether c is the all-zero erased cell.
func (c Cell) IsErased() bool {
	return c.Heart == HeartNone && c.Lift == 0 && c.Flags == 0 &&
		c.Payload == [2]uint64{} && c.Extra == 0 && c.Ref == nil
}

// IsReadable reports whether c carries the readable bit. A readable cell
// always has a defined Heart and Lift; erased cells are not readable.
func (c Cell) IsReadable() bool {
	return c.Flags&FlagReadable != 0
}

// Erase zeroes c in place, matching the "erase" primitive used at Level
// push time and wherever a slot must be reset to the poison sentinel.
func (c *Cell) Erase() {
	*c = Cell{}
}

// IsAntiform reports whether c is in antiform state (out-of-band: null,
// ok, void, ghost, splice, action, pack, error, tripwire).
func (c Cell) IsAntiform() bool {
	return c.Lift == LiftAntiform && c.Heart.isAntiformHeart()
}

// IsStable reports whether c may legally be stored in a variable. Every
// non-antiform readable cell is stable; among antiforms, stability is
// decided by Heart.Stable.
func (c Cell) IsStable() bool {
	if !c.IsAntiform() {
		return true
	}
	return c.Heart.Stable()
}

// CopyPolicy controls which flags survive a Copy.
type CopyPolicy struct {
	MaskUnsurprising bool
	MaskThrowMarker  bool
}

// DefaultCopyPolicy masks the flags spec.md §4.1 calls out by name:
// OUT_HINT_UNSURPRISING and the throw marker never survive a plain copy.
var DefaultCopyPolicy = CopyPolicy{MaskUnsurprising: true, MaskThrowMarker: true}

// Copy returns a duplicate of c with policy-selected flags masked off.
// Payload, Extra, Heart and Lift are always carried; most flags are too,
// except the ones policy says not to propagate.
func (c Cell) Copy(policy CopyPolicy) Cell {
	out := c
	if policy.MaskUnsurprising {
		out.Flags &^= FlagUnsurprising
	}
	if policy.MaskThrowMarker {
		out.Flags &^= FlagThrowMarker
	}
	return out
}

// Lifted converts a quasi-form element cell into its antiform, one level
// of quoting shallower. Lifting never fails: an unquoted element lifts
// into the antiform whose Heart names it.
func Lifted(quasiHeart Heart, antiformHeart Heart, payload [2]uint64, extra uint64, ref any) Cell {
	return Cell{
		Heart:   antiformHeart,
		Lift:    LiftAntiform,
		Flags:   FlagReadable,
		Payload: payload,
		Extra:   extra,
		Ref:     ref,
	}
}

// Unlift converts an antiform cell back into its quasi-form element,
// reversing Lifted. It fails with ErrInvalidLift if c is not an antiform.
func Unlift(c Cell, quasiHeart Heart) (Cell, error) {
	if !c.IsAntiform() {
		return Cell{}, ErrInvalidLift
	}
	out := c
	out.Heart = quasiHeart
	out.Lift = LiftBase
	return out, nil
}

// New constructs a readable, unquoted (LiftBase) element cell of the given
// heart with the supplied payload.
func New(h Heart, payload [2]uint64, extra uint64, ref any) Cell {
	return Cell{
		Heart:   h,
		Lift:    LiftBase,
		Flags:   FlagReadable,
		Payload: payload,
		Extra:   extra,
		Ref:     ref,
	}
}

// Antiform identity constructors. Each produces a readable, zero-payload
// antiform cell of the named kind; payload-carrying antiforms (action,
// pack, error, splice) are built by their owning packages via Lifted.

func Null() Cell      { return antiform(HeartAntiformNull) }
func Ok() Cell        { return antiform(HeartAntiformOk) }
func Void() Cell      { return antiform(HeartAntiformVoid) }
func Ghost() Cell     { return antiform(HeartAntiformGhost) }
func Tripwire() Cell  { return antiform(HeartAntiformTripwire) }

func antiform(h Heart) Cell {
	return Cell{Heart: h, Lift: LiftAntiform, Flags: FlagReadable}
}

// IsNull, IsOk, IsVoid, IsGhost, IsTripwire test antiform identity.
func (c Cell) IsNull() bool      { return c.Lift == LiftAntiform && c.Heart == HeartAntiformNull }
func (c Cell) IsOk() bool        { return c.Lift == LiftAntiform && c.Heart == HeartAntiformOk }
func (c Cell) IsVoid() bool      { return c.Lift == LiftAntiform && c.Heart == HeartAntiformVoid }
func (c Cell) IsGhost() bool     { return c.Lift == LiftAntiform && c.Heart == HeartAntiformGhost }
func (c Cell) IsSplice() bool    { return c.Lift == LiftAntiform && c.Heart == HeartAntiformSplice }
func (c Cell) IsPack() bool      { return c.Lift == LiftAntiform && c.Heart == HeartAntiformPack }
func (c Cell) IsError() bool     { return c.Lift == LiftAntiform && c.Heart == HeartAntiformError }
func (c Cell) IsTripwire() bool  { return c.Lift == LiftAntiform && c.Heart == HeartAntiformTripwire }
func (c Cell) IsActionForm() bool {
	return c.Heart == HeartAction || (c.Lift == LiftAntiform && c.Heart == HeartAntiformAction)
}
