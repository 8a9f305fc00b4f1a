package models

import (
	"testing"
	"time"
)

func TestNoteRecordTime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-21T10:30:00Z", time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC)},
		{"2024-06-21T12:30:00+02:00", time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC)},
		{"2024-06-21T10:30:00.123456", time.Date(2024, 6, 21, 10, 30, 0, 123456000, time.UTC)},
		{"2024-06-21T10:30:00", time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC)},
		{"2024-06-21 10:30:00.5", time.Date(2024, 6, 21, 10, 30, 0, 500000000, time.UTC)},
		{"2024-06-21 10:30:00", time.Date(2024, 6, 21, 10, 30, 0, 0, time.UTC)},
		{"2024-06-21", time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := NoteRecord{Timestamp: tt.in}.Time()
		if err != nil {
			t.Errorf("Time(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Time(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNoteRecordTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "21/06/2024", "yesterday"} {
		if _, err := (NoteRecord{Timestamp: in}).Time(); err == nil {
			t.Errorf("Time(%q) should fail", in)
		}
	}
}

func TestFormatTimestampIsUTC(t *testing.T) {
	in := time.Date(2024, 6, 21, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	if got := FormatTimestamp(in); got != "2024-06-21T10:00:00Z" {
		t.Errorf("FormatTimestamp = %q", got)
	}
}
