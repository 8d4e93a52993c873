package gamification

import (
	"testing"
	"time"
)

func TestAdvanceStreak(t *testing.T) {
	day := func(d int, hour int) time.Time {
		return time.Date(2026, 3, d, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name             string
		current, longest int
		last, now        time.Time
		wantCur, wantLng int
	}{
		{"same day no change", 3, 5, day(10, 9), day(10, 21), 3, 5},
		{"next day extends", 3, 5, day(10, 23), day(11, 1), 4, 5},
		{"extends past longest", 5, 5, day(10, 12), day(11, 12), 6, 6},
		{"gap resets", 9, 9, day(10, 12), day(13, 12), 1, 9},
		{"two day gap resets", 2, 4, day(10, 12), day(12, 12), 1, 4},
		{"earlier activity resets", 2, 2, day(12, 12), day(10, 12), 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, lng := AdvanceStreak(tt.current, tt.longest, tt.last, tt.now)
			if cur != tt.wantCur || lng != tt.wantLng {
				t.Errorf("AdvanceStreak(%d, %d, %v, %v) = (%d, %d), want (%d, %d)",
					tt.current, tt.longest, tt.last, tt.now, cur, lng, tt.wantCur, tt.wantLng)
			}
		})
	}
}

func TestAdvanceStreakNormalizesZones(t *testing.T) {
	// 23:30 UTC-5 on the 10th is 04:30 UTC on the 11th; day comparison
	// happens after converting to UTC.
	est := time.FixedZone("EST", -5*3600)
	last := time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, est)

	cur, lng := AdvanceStreak(1, 1, last, now)
	if cur != 1 || lng != 1 {
		t.Errorf("same UTC day across zones = (%d, %d), want (1, 1)", cur, lng)
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int
		want  string
	}{
		{500, "$5.00"},
		{1, "$0.01"},
		{1250, "$12.50"},
		{99, "$0.99"},
	}
	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
