package types

import (
	"testing"
	"time"
)

// TestParseDate tests the accepted input formats
func TestParseDate(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Date
		expectError bool
	}{
		{"ISO date", "2026-03-15", "2026-03-15", false},
		{"RFC3339 timestamp", "2026-03-15T10:30:00Z", "2026-03-15", false},
		{"Timestamp without zone", "2026-03-15T10:30:00", "2026-03-15", false},
		{"Slash separated", "2026/03/15", "2026-03-15", false},
		{"Day first", "15/03/2026", "2026-03-15", false},
		{"Empty is absent", "", "", false},
		{"Whitespace only", "   ", "", false},
		{"Garbage", "next tuesday", "", true},
		{"Partial date", "2026-03", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.input)

			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
			if !tt.expectError && d != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, d)
			}
		})
	}
}

// TestDateZeroValue tests that the zero value means absent
func TestDateZeroValue(t *testing.T) {
	var d Date

	if !d.IsZero() {
		t.Error("Expected zero value to be zero")
	}

	v, err := d.Value()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v != nil {
		t.Errorf("Expected nil driver value for zero date, got %v", v)
	}
}

// TestDateScan tests scanning database values
func TestDateScan(t *testing.T) {
	var d Date

	if err := d.Scan(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d != "2026-03-15" {
		t.Errorf("Expected 2026-03-15, got %q", d)
	}

	if err := d.Scan(nil); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !d.IsZero() {
		t.Errorf("Expected zero date after scanning nil, got %q", d)
	}
}

// TestDateOrdering tests that lexical comparison matches chronology
func TestDateOrdering(t *testing.T) {
	earlier := Date("2026-03-15")
	later := Date("2026-11-02")

	if !earlier.Before(later) {
		t.Error("Expected earlier date to sort before later date")
	}
	if later.Before(earlier) {
		t.Error("Expected later date not to sort before earlier date")
	}
}

// TestDateAddDays tests date arithmetic
func TestDateAddDays(t *testing.T) {
	d := Date("2026-02-27")

	if got := d.AddDays(2); got != "2026-03-01" {
		t.Errorf("Expected 2026-03-01, got %q", got)
	}
}
