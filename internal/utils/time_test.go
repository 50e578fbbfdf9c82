package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: "", wantErr: false},
		{name: "Local returns local", timezone: "Local", wantErr: false},
		{name: "valid timezone UTC", timezone: "UTC", wantErr: false},
		{name: "valid timezone Europe/Paris", timezone: "Europe/Paris", wantErr: false},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestRoundUpToHalfHour(t *testing.T) {
	at := func(h, m, s int) time.Time { return time.Date(2026, 1, 5, h, m, s, 0, time.UTC) }
	tests := []struct {
		in, want time.Time
	}{
		{at(9, 0, 0), at(9, 0, 0)},
		{at(9, 30, 0), at(9, 30, 0)},
		{at(9, 12, 0), at(9, 30, 0)},
		{at(9, 45, 0), at(10, 0, 0)},
		{at(9, 29, 30), at(9, 30, 0)},
		{at(9, 30, 1), at(10, 0, 0)},
		{at(23, 50, 0), time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := RoundUpToHalfHour(tt.in)
		if !got.Equal(tt.want) {
			t.Errorf("RoundUpToHalfHour(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got.Before(tt.in) {
			t.Errorf("RoundUpToHalfHour(%v) = %v is before input", tt.in, got)
		}
	}
}

func TestStartOfWeek(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for d := 0; d < 7; d++ {
		in := monday.AddDate(0, 0, d).Add(15 * time.Hour)
		if got := StartOfWeek(in); !got.Equal(monday) {
			t.Errorf("StartOfWeek(%v) = %v, want %v", in, got, monday)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 1, 5, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 1, 6, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween = %d, want 1", got)
	}
	if got := DaysBetween(b, a); got != -1 {
		t.Errorf("DaysBetween reversed = %d, want -1", got)
	}
	if !SameDay(a, a.Add(30*time.Minute)) {
		t.Error("SameDay should be true within the same day")
	}
}

func TestCombineDateAndTime(t *testing.T) {
	got, err := CombineDateAndTime("2026-01-05", "14:30", time.UTC)
	if err != nil {
		t.Fatalf("CombineDateAndTime failed: %v", err)
	}
	want := time.Date(2026, 1, 5, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := CombineDateAndTime("bad", "14:30", time.UTC); err == nil {
		t.Error("expected error for invalid date")
	}
	if _, err := ParseTimeToMinutes("25:99"); err == nil {
		t.Error("expected error for invalid time")
	}
}
