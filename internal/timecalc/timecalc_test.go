package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/trackmytime/internal/timecalc"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{60 * time.Second, "1m 00s"},
		{90 * time.Second, "1m 30s"},
		{time.Hour, "1h 00m 00s"},
		{time.Hour + 5*time.Minute + 3*time.Second, "1h 05m 03s"},
		{26*time.Hour + 1500*time.Millisecond, "26h 00m 01s"},
		{-time.Minute, "0s"},
	}
	for _, tt := range tests {
		got := timecalc.FormatDuration(tt.d)
		if got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := timecalc.FormatSeconds(3903.9); got != "1h 05m 03s" {
		t.Errorf("FormatSeconds(3903.9) = %q, want %q", got, "1h 05m 03s")
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{3661 * time.Second, "01:01:01"},
	}
	for _, tt := range tests {
		got := timecalc.FormatClock(tt.d)
		if got != tt.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStartOfDayAndNextDay(t *testing.T) {
	ts := time.Date(2026, 2, 28, 17, 30, 0, 0, time.UTC)
	if got, want := timecalc.StartOfDay(ts), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
	if got, want := timecalc.NextDay(ts), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("NextDay = %v, want %v", got, want)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), -1, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)},
		{time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC), -1, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)},
		{time.Date(2025, 3, 31, 8, 0, 0, 0, time.UTC), -1, time.Date(2025, 2, 28, 8, 0, 0, 0, time.UTC)},
		{time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), -3, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), -3, time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := timecalc.AddMonths(tt.in, tt.n)
		if !got.Equal(tt.want) {
			t.Errorf("AddMonths(%v, %d) = %v, want %v", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestParseWhen(t *testing.T) {
	ref := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"", ref},
		{"2026-02-20T08:15:00Z", time.Date(2026, 2, 20, 8, 15, 0, 0, time.UTC)},
		{"2026-02-20T08:15", time.Date(2026, 2, 20, 8, 15, 0, 0, time.UTC)},
		{"2026-02-20 08:15", time.Date(2026, 2, 20, 8, 15, 0, 0, time.UTC)},
		{"2026-02-20", time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
		{"07:45", time.Date(2026, 2, 27, 7, 45, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := timecalc.ParseWhen(tt.in, ref)
		if err != nil {
			t.Errorf("ParseWhen(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseWhen(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := timecalc.ParseWhen("yesterday", ref); err == nil {
		t.Error("ParseWhen(\"yesterday\"): expected error")
	}
}
