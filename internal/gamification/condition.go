package gamification

import (
	"strconv"
	"strings"
)

// ConditionKind identifies what statistic an achievement condition tests.
// The set is closed; conditions with any other kind never unlock.
type ConditionKind string

const (
	CondChoresCompleted ConditionKind = "chores_completed"
	CondPointsEarned    ConditionKind = "points_earned"
	CondStreakDays      ConditionKind = "streak_days"
)

// Condition is a parsed achievement condition. The zero value has an empty
// kind and is never met.
type Condition struct {
	Kind      ConditionKind
	Threshold int
}

// Stats holds the per-user statistics conditions are evaluated against.
// PointsBalance is the current balance, so points_earned conditions stay
// locked for users who have spent back below the threshold.
type Stats struct {
	ChoresCompleted int
	PointsBalance   int
	StreakDays      int
}

// ParseCondition parses a "kind:threshold" string, e.g. "streak_days:7".
// Unknown kinds, missing separators, and non-numeric or negative thresholds
// all yield the zero Condition rather than an error so a bad row in the
// catalog can never unlock anything or break evaluation.
func ParseCondition(raw string) Condition {
	kind, value, ok := strings.Cut(raw, ":")
	if !ok {
		return Condition{}
	}
	threshold, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || threshold < 0 {
		return Condition{}
	}

	switch k := ConditionKind(strings.TrimSpace(kind)); k {
	case CondChoresCompleted, CondPointsEarned, CondStreakDays:
		return Condition{Kind: k, Threshold: threshold}
	}
	return Condition{}
}

// Met reports whether the statistics satisfy the condition. Thresholds are
// inclusive: a condition of points_earned:100 is met at exactly 100.
func (c Condition) Met(s Stats) bool {
	switch c.Kind {
	case CondChoresCompleted:
		return s.ChoresCompleted >= c.Threshold
	case CondPointsEarned:
		return s.PointsBalance >= c.Threshold
	case CondStreakDays:
		return s.StreakDays >= c.Threshold
	}
	return false
}
