package action

import (
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/feed"
)

// FeedHandle wraps f in a handle cell suitable for storing directly in a
// variadic parameter's varlist slot (spec.md §4.5.1 "Variadic: a feed
// handle is stored in the slot; the native reads from it"). f is AddRef'd
// so the handle keeps the feed alive independent of whatever cursor
// position the caller's own feed reference later reaches.
func FeedHandle(f *feed.Feed) cell.Cell {
	return cell.New(cell.HeartHandle, [2]uint64{}, 0, f.AddRef())
}

// FeedOf recovers the *feed.Feed a FeedHandle cell wraps, or nil if c does
// not carry one.
func FeedOf(c cell.Cell) *feed.Feed {
	if c.Heart != cell.HeartHandle {
		return nil
	}
	f, _ := c.Ref.(*feed.Feed)
	return f
}
