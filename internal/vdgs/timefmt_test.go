package vdgs

import (
	"testing"
	"time"
)

func TestFormatTimeShort(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "2025-06-01T10:05:00.000Z", want: "10:05Z"},
		{input: "2025-06-01T23:59", want: "23:59Z"},
		{input: "1025", want: "10:25Z"},
		{input: "", want: "--:--Z"},
		{input: "10:25", want: "--:--Z"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FormatTimeShort(tt.input); got != tt.want {
				t.Errorf("FormatTimeShort(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 30, 45, 0, time.UTC)

	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "iso timestamp drops seconds",
			input:  "2025-05-31T22:15:30.000Z",
			want:   time.Date(2025, 5, 31, 22, 15, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "hhmm uses today",
			input:  "0945",
			want:   time.Date(2025, 6, 1, 9, 45, 0, 0, time.UTC),
			wantOK: true,
		},
		{name: "empty", input: "", wantOK: false},
		{name: "garbage iso", input: "yyyy-mm-ddThh:mm", wantOK: false},
		{name: "garbage hhmm", input: "ab12", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTime(tt.input, now)
			if ok != tt.wantOK {
				t.Fatalf("ParseTime(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTime_LocalNowUsesUTCDay(t *testing.T) {
	// 00:30 in UTC+2 is still the previous day in UTC.
	loc := time.FixedZone("CEST", 2*60*60)
	now := time.Date(2025, 6, 2, 0, 30, 0, 0, loc)

	got, ok := ParseTime("2200", now)
	if !ok {
		t.Fatal("ParseTime returned false")
	}

	want := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseTime() = %v, want %v", got, want)
	}
}
