package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected true for sql.ErrNoRows")
	}
	if !isNotFound(fmt.Errorf("get fixture: %w", sql.ErrNoRows)) {
		t.Fatalf("expected true for wrapped sql.ErrNoRows")
	}
	if isNotFound(fakeErr("pq: relation fixtures does not exist")) {
		t.Fatalf("expected false for unrelated error")
	}
}

func TestNullConversions(t *testing.T) {
	if got := nullInt64ToIntPtr(sql.NullInt64{}); got != nil {
		t.Fatalf("expected nil for null int, got %d", *got)
	}
	if got := nullInt64ToIntPtr(sql.NullInt64{Int64: 3, Valid: true}); got == nil || *got != 3 {
		t.Fatalf("unexpected int conversion: %v", got)
	}
	if got := nullBoolToPtr(sql.NullBool{Bool: true, Valid: true}); got == nil || !*got {
		t.Fatalf("unexpected bool conversion: %v", got)
	}

	at := time.Date(2026, 3, 14, 19, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	got := nullTimeToPtr(sql.NullTime{Time: at, Valid: true})
	if got == nil || got.Location() != time.UTC || !got.Equal(at) {
		t.Fatalf("unexpected time conversion: %v", got)
	}
}

func TestOptionalString(t *testing.T) {
	if optionalString("  ") != nil {
		t.Fatalf("expected nil for blank string")
	}
	if got := optionalString(" trace-1 "); got == nil || *got != "trace-1" {
		t.Fatalf("unexpected optional string: %v", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
