package recurrence

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	until := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		want    Rule
		wantErr bool
	}{
		{"daily", "FREQ=DAILY", Rule{Freq: Daily, Interval: 1}, false},
		{"biweekly", "FREQ=WEEKLY;INTERVAL=2", Rule{Freq: Weekly, Interval: 2}, false},
		{
			"weekly byday", "FREQ=WEEKLY;BYDAY=MO,WE",
			Rule{Freq: Weekly, Interval: 1, ByDay: []time.Weekday{time.Monday, time.Wednesday}}, false,
		},
		{"monthly byday", "FREQ=MONTHLY;BYMONTHDAY=15", Rule{Freq: Monthly, Interval: 1, ByMonthDay: 15}, false},
		{"count", "FREQ=DAILY;COUNT=5", Rule{Freq: Daily, Interval: 1, Count: 5}, false},
		{"until date", "FREQ=DAILY;UNTIL=20260601", Rule{Freq: Daily, Interval: 1, Until: &until}, false},
		{"empty", "", Rule{}, true},
		{"missing freq", "INTERVAL=2", Rule{}, true},
		{"bad freq", "FREQ=HOURLY", Rule{}, true},
		{"bad interval", "FREQ=DAILY;INTERVAL=0", Rule{}, true},
		{"bad day", "FREQ=WEEKLY;BYDAY=XX", Rule{}, true},
		{"bad monthday", "FREQ=MONTHLY;BYMONTHDAY=32", Rule{}, true},
		{"unknown key", "FREQ=DAILY;BYSETPOS=1", Rule{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.raw, err)
			}
			if got.Freq != tt.want.Freq || got.Interval != tt.want.Interval ||
				got.ByMonthDay != tt.want.ByMonthDay || got.Count != tt.want.Count {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
			if len(got.ByDay) != len(tt.want.ByDay) {
				t.Errorf("ByDay = %v, want %v", got.ByDay, tt.want.ByDay)
			}
			if (got.Until == nil) != (tt.want.Until == nil) {
				t.Errorf("Until = %v, want %v", got.Until, tt.want.Until)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	rules := []string{
		"FREQ=DAILY",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR",
		"FREQ=MONTHLY;BYMONTHDAY=31",
		"FREQ=DAILY;COUNT=10",
		"FREQ=YEARLY",
	}
	for _, raw := range rules {
		r, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if got := r.String(); got != raw {
			t.Errorf("round trip %q -> %q", raw, got)
		}
	}
}

func TestExpandDaily(t *testing.T) {
	rule := Rule{Freq: Daily, Interval: 1}
	start := date(2026, 3, 2, 9)

	occs := Expand(rule, start, start.Add(time.Hour), date(2026, 3, 2, 0), date(2026, 3, 5, 0))
	if len(occs) != 3 {
		t.Fatalf("occurrences = %d, want 3", len(occs))
	}
	for i, occ := range occs {
		want := start.AddDate(0, 0, i)
		if !occ.Start.Equal(want) {
			t.Errorf("occ[%d].Start = %v, want %v", i, occ.Start, want)
		}
		if occ.End.Sub(occ.Start) != time.Hour {
			t.Errorf("occ[%d] duration = %v, want 1h", i, occ.End.Sub(occ.Start))
		}
	}
}

func TestExpandEveryOtherDay(t *testing.T) {
	rule := Rule{Freq: Daily, Interval: 2}
	start := date(2026, 3, 2, 9)

	occs := Expand(rule, start, start.Add(time.Hour), start, date(2026, 3, 9, 0))
	var days []int
	for _, occ := range occs {
		days = append(days, occ.Start.Day())
	}
	want := []int{2, 4, 6, 8}
	if len(days) != len(want) {
		t.Fatalf("days = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("days = %v, want %v", days, want)
		}
	}
}

func TestExpandWeeklyByDay(t *testing.T) {
	// Start on a Wednesday; MO,WE rule must skip the Monday before start.
	rule := Rule{Freq: Weekly, Interval: 1, ByDay: []time.Weekday{time.Monday, time.Wednesday}}
	start := date(2026, 3, 4, 18) // Wednesday

	occs := Expand(rule, start, start.Add(time.Hour), start, date(2026, 3, 15, 0))
	var got []string
	for _, occ := range occs {
		got = append(got, occ.Start.Format("Mon 01-02"))
	}
	want := []string{"Wed 03-04", "Mon 03-09", "Wed 03-11"}
	if len(got) != len(want) {
		t.Fatalf("occurrences = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("occurrences = %v, want %v", got, want)
		}
	}
}

func TestExpandCountLimit(t *testing.T) {
	rule := Rule{Freq: Daily, Interval: 1, Count: 3}
	start := date(2026, 3, 2, 9)

	occs := Expand(rule, start, start.Add(time.Hour), start, date(2026, 4, 1, 0))
	if len(occs) != 3 {
		t.Errorf("occurrences = %d, want 3 (COUNT)", len(occs))
	}
}

func TestExpandUntil(t *testing.T) {
	until := date(2026, 3, 4, 23)
	rule := Rule{Freq: Daily, Interval: 1, Until: &until}
	start := date(2026, 3, 2, 9)

	occs := Expand(rule, start, start.Add(time.Hour), start, date(2026, 4, 1, 0))
	if len(occs) != 3 {
		t.Errorf("occurrences = %d, want 3 (UNTIL)", len(occs))
	}
}

func TestExpandMonthlyClampSkipsShortMonths(t *testing.T) {
	rule := Rule{Freq: Monthly, Interval: 1, ByMonthDay: 31}
	start := date(2026, 1, 31, 10)

	occs := Expand(rule, start, start.Add(time.Hour), start, date(2026, 6, 1, 0))
	var months []time.Month
	for _, occ := range occs {
		months = append(months, occ.Start.Month())
	}
	// February and April have no 31st.
	want := []time.Month{time.January, time.March, time.May}
	if len(months) != len(want) {
		t.Fatalf("months = %v, want %v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Fatalf("months = %v, want %v", months, want)
		}
	}
}

func TestExpandYearlyLeapDay(t *testing.T) {
	rule := Rule{Freq: Yearly, Interval: 1}
	start := date(2024, 2, 29, 12)

	occs := Expand(rule, start, start.Add(time.Hour), start, date(2033, 1, 1, 0))
	var years []int
	for _, occ := range occs {
		years = append(years, occ.Start.Year())
	}
	want := []int{2024, 2028, 2032}
	if len(years) != len(want) {
		t.Fatalf("years = %v, want %v", years, want)
	}
	for i := range want {
		if years[i] != want[i] {
			t.Fatalf("years = %v, want %v", years, want)
		}
	}
}

func TestExpandRangeFilter(t *testing.T) {
	rule := Rule{Freq: Daily, Interval: 1}
	start := date(2026, 3, 1, 9)

	// Range begins after several occurrences have passed.
	occs := Expand(rule, start, start.Add(time.Hour), date(2026, 3, 10, 0), date(2026, 3, 12, 0))
	if len(occs) != 2 {
		t.Fatalf("occurrences = %d, want 2", len(occs))
	}
	if occs[0].Start.Day() != 10 || occs[1].Start.Day() != 11 {
		t.Errorf("occurrence days = %d, %d, want 10, 11", occs[0].Start.Day(), occs[1].Start.Day())
	}
}

func TestNextAfter(t *testing.T) {
	rule := Rule{Freq: Weekly, Interval: 1, ByDay: []time.Weekday{time.Saturday}}
	start := date(2026, 3, 7, 10) // Saturday

	next := NextAfter(rule, start, date(2026, 3, 8, 0))
	if next == nil {
		t.Fatal("NextAfter returned nil")
	}
	if next.Weekday() != time.Saturday || next.Day() != 14 {
		t.Errorf("next = %v, want Saturday the 14th", next)
	}

	exhausted := Rule{Freq: Daily, Interval: 1, Count: 2}
	if got := NextAfter(exhausted, start, start.AddDate(0, 0, 10)); got != nil {
		t.Errorf("NextAfter on exhausted rule = %v, want nil", got)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"FREQ=DAILY", "Repeats daily"},
		{"FREQ=DAILY;INTERVAL=3", "Repeats every 3 days"},
		{"FREQ=WEEKLY;INTERVAL=2", "Repeats every 2 weeks"},
		{"FREQ=WEEKLY;BYDAY=MO,FR", "Repeats weekly on Mon, Fri"},
		{"FREQ=MONTHLY", "Repeats monthly"},
		{"FREQ=YEARLY", "Repeats yearly"},
	}
	for _, tt := range tests {
		r, err := Parse(tt.raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.raw, err)
		}
		if got := r.Describe(); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
