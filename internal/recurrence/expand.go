package recurrence

import (
	"sort"
	"time"
)

// Safety cap on generated occurrences per expansion.
const maxOccurrences = 10000

// Occurrence is a single generated instance of a recurring event.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Expand generates the occurrences of a recurring event overlapping
// [rangeStart, rangeEnd). eventStart and eventEnd define the first
// occurrence; the duration carries over to every instance.
func Expand(rule Rule, eventStart, eventEnd, rangeStart, rangeEnd time.Time) []Occurrence {
	duration := eventEnd.Sub(eventStart)
	next := generator(rule, eventStart)

	var out []Occurrence
	for i := 0; i < maxOccurrences; i++ {
		if rule.Count > 0 && i >= rule.Count {
			break
		}
		start := next()
		if rule.Until != nil && start.After(*rule.Until) {
			break
		}
		if !start.Before(rangeEnd) {
			break
		}
		end := start.Add(duration)
		if end.After(rangeStart) {
			out = append(out, Occurrence{Start: start, End: end})
		}
	}
	return out
}

// NextAfter returns the first occurrence strictly after t, or nil when the
// rule is exhausted before reaching one.
func NextAfter(rule Rule, eventStart, t time.Time) *time.Time {
	next := generator(rule, eventStart)
	for i := 0; i < maxOccurrences; i++ {
		if rule.Count > 0 && i >= rule.Count {
			return nil
		}
		start := next()
		if rule.Until != nil && start.After(*rule.Until) {
			return nil
		}
		if start.After(t) {
			return &start
		}
	}
	return nil
}

// generator returns a closure yielding occurrence start times in order,
// beginning at eventStart (or the first BYDAY match at or after it).
func generator(rule Rule, start time.Time) func() time.Time {
	switch rule.Freq {
	case Weekly:
		if len(rule.ByDay) > 0 {
			return weeklyByDay(rule, start)
		}
		return stepped(start, 0, 7*rule.Interval)
	case Monthly:
		return monthly(rule, start)
	case Yearly:
		return yearly(rule, start)
	default:
		return stepped(start, 0, rule.Interval)
	}
}

// stepped yields start, then advances by the given months and days.
func stepped(start time.Time, months, days int) func() time.Time {
	cur := start
	first := true
	return func() time.Time {
		if first {
			first = false
			return cur
		}
		cur = cur.AddDate(0, months, days)
		return cur
	}
}

// weeklyByDay walks the requested weekdays within each active week,
// Monday-based, skipping candidates before the event start.
func weeklyByDay(rule Rule, start time.Time) func() time.Time {
	offsets := make([]int, len(rule.ByDay))
	for i, d := range rule.ByDay {
		offsets[i] = mondayOffset(d)
	}
	sort.Ints(offsets)

	week := startOfWeek(start)
	idx := 0
	return func() time.Time {
		for {
			if idx >= len(offsets) {
				week = week.AddDate(0, 0, 7*rule.Interval)
				idx = 0
			}
			candidate := time.Date(
				week.Year(), week.Month(), week.Day()+offsets[idx],
				start.Hour(), start.Minute(), start.Second(), 0, start.Location(),
			)
			idx++
			if !candidate.Before(start) {
				return candidate
			}
		}
	}
}

// monthly yields the start, then the target day of each interval-th month,
// skipping months too short to contain it (BYMONTHDAY=31 skips April).
func monthly(rule Rule, start time.Time) func() time.Time {
	day := rule.ByMonthDay
	if day == 0 {
		day = start.Day()
	}

	// Months as a flat index avoids AddDate overflow (Jan 31 + 1 month).
	monthIdx := start.Year()*12 + int(start.Month()) - 1
	first := true
	return func() time.Time {
		if first {
			first = false
			return start
		}
		for {
			monthIdx += rule.Interval
			year, month := monthIdx/12, time.Month(monthIdx%12+1)
			if day <= daysInMonth(year, month) {
				return time.Date(year, month, day,
					start.Hour(), start.Minute(), start.Second(), 0, start.Location())
			}
		}
	}
}

// yearly yields the start, then the same date each interval-th year. A
// February 29 start only recurs in leap years.
func yearly(rule Rule, start time.Time) func() time.Time {
	year := start.Year()
	first := true
	return func() time.Time {
		if first {
			first = false
			return start
		}
		for {
			year += rule.Interval
			if start.Month() == time.February && start.Day() == 29 && !isLeap(year) {
				continue
			}
			return time.Date(year, start.Month(), start.Day(),
				start.Hour(), start.Minute(), start.Second(), 0, start.Location())
		}
	}
}

func mondayOffset(d time.Weekday) int {
	offset := int(d) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return offset
}

func startOfWeek(t time.Time) time.Time {
	monday := t.AddDate(0, 0, -mondayOffset(t.Weekday()))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
