package trampoline

import "github.com/funvibe/corevm/internal/cell"

// voidFromGhost promotes a ghost result to void, the FORCE_HEAVY_NULLS
// post-processing hook named in spec.md §4.4 step 7 and flagged as
// optional in §9.
func voidFromGhost(c cell.Cell) cell.Cell {
	if c.IsGhost() {
		return cell.Void()
	}
	return c
}

// unwindValue extracts the cell a LabelUnwind throw is carrying. Unwind
// throws wrap their payload cell in an error so they can travel through
// the same Bounce.Err field every other throw uses; UnwindPayload is the
// concrete error type used for that wrapping.
type UnwindPayload struct {
	Value cell.Cell
}

func (u *UnwindPayload) Error() string { return "trampoline: unwind carrying a value" }

func unwindValue(err error) cell.Cell {
	if u, ok := err.(*UnwindPayload); ok {
		return u.Value
	}
	return cell.Erased()
}

// Unwind builds the throw a `return` (or similar non-local exit) uses to
// jump straight to a specific ancestor level, per spec.md §4.4's
// "Unwind throw targeting this level is caught and converted to a normal
// result."
func Unwind(target *Level, value cell.Cell) Bounce {
	return Thrown(LabelUnwind, &UnwindPayload{Value: value}, target)
}
