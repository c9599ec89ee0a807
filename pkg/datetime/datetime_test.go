package datetime_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-entityform/pkg/datetime"
)

func TestRoundTripPreservesWireValue(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	wires := []string{
		"2024-01-02T03:04:00Z",
		"2024-01-02T03:04:05Z",
		"2024-01-02T03:04:05.123Z",
		"1999-12-31T23:59:00Z",
	}

	for _, loc := range []*time.Location{nil, time.UTC, saoPaulo} {
		for _, wire := range wires {
			editable, err := datetime.ToEditable(wire, loc)
			if err != nil {
				t.Fatalf("ToEditable(%q): %v", wire, err)
			}
			back, err := datetime.ToWire(editable, loc)
			if err != nil {
				t.Fatalf("ToWire(%q): %v", editable, err)
			}
			if back != wire {
				t.Errorf("round trip %q -> %q -> %q", wire, editable, back)
			}
		}
	}
}

func TestToEditableUsesLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	got, err := datetime.ToEditable("2024-01-02T03:04:00Z", saoPaulo)
	if err != nil {
		t.Fatalf("ToEditable: %v", err)
	}
	if got != "2024-01-02T00:04" {
		t.Fatalf("editable = %q", got)
	}
}

func TestEmptyValuesStayEmpty(t *testing.T) {
	if got, err := datetime.ToEditable("", nil); got != "" || err != nil {
		t.Fatalf("ToEditable empty = %q, %v", got, err)
	}
	if got, err := datetime.ToWire("  ", nil); got != "" || err != nil {
		t.Fatalf("ToWire empty = %q, %v", got, err)
	}
}

func TestInvalidValues(t *testing.T) {
	if _, err := datetime.ToEditable("yesterday", nil); !errors.Is(err, datetime.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := datetime.ToWire("2024-13-01T00:00", nil); !errors.Is(err, datetime.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := datetime.DateToWire("02/01/2024"); !errors.Is(err, datetime.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestDefaultEditableIsStartOfDay(t *testing.T) {
	now := time.Date(2024, 5, 6, 17, 45, 12, 0, time.UTC)
	if got := datetime.DefaultEditable(now, time.UTC); got != "2024-05-06T00:00" {
		t.Fatalf("default = %q", got)
	}
}

func TestDateConversions(t *testing.T) {
	got, err := datetime.DateToEditable("2024-03-09T10:00:00Z")
	if err != nil || got != "2024-03-09" {
		t.Fatalf("DateToEditable = %q, %v", got, err)
	}
	got, err = datetime.DateToWire("2024-03-09")
	if err != nil || got != "2024-03-09" {
		t.Fatalf("DateToWire = %q, %v", got, err)
	}
}

func TestToWireKeepingPreservesUnchangedText(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	cases := []struct {
		name     string
		original string
		editable string
		loc      *time.Location
		want     string
	}{
		{"zero fraction", "2024-01-15T10:30:00.000Z", "2024-01-15T10:30", time.UTC, "2024-01-15T10:30:00.000Z"},
		{"numeric offset", "2024-01-15T10:30:00+02:00", "2024-01-15T08:30", time.UTC, "2024-01-15T10:30:00+02:00"},
		{"offset in other location", "2024-01-15T10:30:00+02:00", "2024-01-15T05:30", saoPaulo, "2024-01-15T10:30:00+02:00"},
		{"edited value", "2024-01-15T10:30:00.000Z", "2024-01-15T11:00", time.UTC, "2024-01-15T11:00:00Z"},
		{"no original", "", "2024-01-15T10:30", time.UTC, "2024-01-15T10:30:00Z"},
		{"cleared", "2024-01-15T10:30:00.000Z", "", time.UTC, ""},
		{"unparsable original", "yesterday", "2024-01-15T10:30", time.UTC, "2024-01-15T10:30:00Z"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := datetime.ToWireKeeping(tc.original, tc.editable, tc.loc)
			if err != nil {
				t.Fatalf("ToWireKeeping: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ToWireKeeping(%q, %q) = %q, want %q", tc.original, tc.editable, got, tc.want)
			}
		})
	}

	if _, err := datetime.ToWireKeeping("2024-01-15T10:30:00Z", "tomorrow", time.UTC); !errors.Is(err, datetime.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for an edited invalid value, got %v", err)
	}
}

func TestDateToWireKeepingPreservesUnchangedText(t *testing.T) {
	got, err := datetime.DateToWireKeeping("2024-02-01T00:00:00Z", "2024-02-01")
	if err != nil || got != "2024-02-01T00:00:00Z" {
		t.Fatalf("unchanged date = %q, %v", got, err)
	}
	got, err = datetime.DateToWireKeeping("2024-02-01T00:00:00Z", "2024-02-02")
	if err != nil || got != "2024-02-02" {
		t.Fatalf("edited date = %q, %v", got, err)
	}
}
