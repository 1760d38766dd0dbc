package postgres

import (
	"testing"
	"time"
)

func TestDBTime_MicrosecondUTC(t *testing.T) {
	in := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.FixedZone("CET", 3600))

	got := dbTime(in)

	if got.Location() != time.UTC {
		t.Fatalf("expected UTC, got %v", got.Location())
	}
	if got.Nanosecond() != 123456000 {
		t.Fatalf("expected microsecond precision, got %d ns", got.Nanosecond())
	}
	if !got.Equal(time.Date(2024, 3, 1, 11, 0, 0, 123456000, time.UTC)) {
		t.Fatalf("unexpected instant %v", got)
	}
}
