package utils

import (
	"database/sql"
	"reflect"
	"testing"
	"time"
)

func TestSplitRecipients(t *testing.T) {
	recipients := SplitRecipients("ops@plant.example, head@plant.example ,,")
	expected := []string{"ops@plant.example", "head@plant.example"}
	if !reflect.DeepEqual(recipients, expected) {
		t.Errorf("got %v, want %v", recipients, expected)
	}

	if SplitRecipients("") != nil {
		t.Error("empty list should yield no recipients")
	}
}

func TestFormatValue(t *testing.T) {
	if got := FormatValue(120); got != "120.00" {
		t.Errorf("got %q, want 120.00", got)
	}
	if got := FormatValue(99.456); got != "99.46" {
		t.Errorf("got %q, want 99.46", got)
	}
}

func TestFormatStandard(t *testing.T) {
	if got := FormatStandard(100); got != "100" {
		t.Errorf("got %q, want 100", got)
	}
	if got := FormatStandard(2.5); got != "2.5" {
		t.Errorf("got %q, want 2.5", got)
	}
}

func TestFormatStaleTimestamp(t *testing.T) {
	lastRegional := sql.NullTime{Time: time.Date(2024, 10, 2, 14, 30, 0, 0, time.UTC), Valid: true}
	if got := FormatStaleTimestamp(lastRegional); got != "Wednesday, 02 October, 2024 02:30 PM" {
		t.Errorf("got %q", got)
	}
	if got := FormatStaleTimestamp(sql.NullTime{}); got != "never" {
		t.Errorf("got %q, want never", got)
	}
}
