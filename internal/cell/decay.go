package cell

import "errors"

// ErrUnstableError is returned by DecayIfUnstable when c is a raised error
// antiform and the caller did not opt in to receiving it (allowError is
// false). Callers that see this error are expected to convert it into a
// throw at the trampoline boundary (spec.md §4.1, §7); cell itself never
// throws — it only classifies.
var ErrUnstableError = errors.New("cell: unstable error antiform not decayed")

// Pack models the one piece of antiform payload DecayIfUnstable needs to
// inspect: an ordered sequence of lifted values. Owning packages (action,
// trampoline) build Cells whose Ref is a *Pack when Heart is
// HeartAntiformPack.
type Pack struct {
	Elements []Cell
}

// DecayIfUnstable normalizes an in-flight atom into a stable value per
// spec.md §4.1:
//   - a single-element pack collapses to its element
//   - a void (empty) pack collapses to void
//   - an error antiform surfaces as ErrUnstableError unless allowError
//   - a ghost stays a ghost (ghost is not further decayable here; callers
//     that cannot accept ghost results reject it themselves)
//   - anything already stable passes through unchanged
func DecayIfUnstable(c Cell, allowError bool) (Cell, error) {
	switch {
	case c.IsPack():
		p, _ := c.Ref.(*Pack)
		if p == nil || len(p.Elements) == 0 {
			return Void(), nil
		}
		if len(p.Elements) == 1 {
			return DecayIfUnstable(p.Elements[0], allowError)
		}
		// Multi-element packs decay to their first element; callers that
		// want the full sequence read Ref directly before decaying.
		return DecayIfUnstable(p.Elements[0], allowError)
	case c.IsError():
		if allowError {
			return c, nil
		}
		return Cell{}, ErrUnstableError
	default:
		return c, nil
	}
}
