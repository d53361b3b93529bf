package repo

import (
	"testing"
	"time"
)

func TestParseTSUTC_StripsTrailingUTCLiteral(t *testing.T) {
	got, err := parseTSUTC("2024-10-14 11:30:00 UTC")
	if err != nil {
		t.Fatalf("parseTSUTC: %v", err)
	}
	want := time.Date(2024, 10, 14, 11, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTSUTC_RFC3339(t *testing.T) {
	got, err := parseTSUTC("2024-10-14T11:30:00Z")
	if err != nil {
		t.Fatalf("parseTSUTC: %v", err)
	}
	want := time.Date(2024, 10, 14, 11, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTSUTC_Invalid(t *testing.T) {
	if _, err := parseTSUTC("not-a-timestamp"); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := parseTimeOfDay("22:00:00")
	if err != nil {
		t.Fatalf("parseTimeOfDay: %v", err)
	}
	if tod.Hour != 22 || tod.Min != 0 || tod.Sec != 0 {
		t.Fatalf("unexpected TimeOfDay: %+v", tod)
	}
}
