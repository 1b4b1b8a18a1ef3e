package goal

import "time"

// ProposeStatus decides whether an active goal should leave the active state.
// It fires only after the end date has passed and the target is reached:
// saving and purchase goals complete, spending goals are cancelled because
// the limit was exceeded. The second result is false when nothing changes.
func ProposeStatus(g *Goal, percent int, now time.Time) (Status, bool) {
	if !g.IsActive() || !g.EndedBefore(now) || percent < 100 {
		return g.Status, false
	}

	switch g.Type {
	case TypeSaving, TypePurchase:
		return StatusCompleted, true
	case TypeSpending:
		return StatusCancelled, true
	}
	return g.Status, false
}
