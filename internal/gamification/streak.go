package gamification

import "time"

// AdvanceStreak applies one verified completion at now to a daily streak
// whose last activity was lastActivity. Days are compared as calendar days
// in UTC. A second completion on the same day leaves the streak unchanged;
// a completion the day after extends it; any gap resets it to 1.
func AdvanceStreak(current, longest int, lastActivity, now time.Time) (newCurrent, newLongest int) {
	today := dayOf(now)
	last := dayOf(lastActivity)

	switch {
	case last.Equal(today):
		// already counted today
	case last.Equal(today.AddDate(0, 0, -1)):
		current++
	default:
		current = 1
	}

	if current > longest {
		longest = current
	}
	return current, longest
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
