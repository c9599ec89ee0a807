// Package datetime converts date and datetime values between the wire
// representation used by the remote store (RFC 3339 instants in UTC, ISO
// local dates) and the editable representation used by form inputs
// (datetime-local style "2006-01-02T15:04" in the form's location).
//
// ToWire always emits a canonical UTC instant, so a wire value written with a
// numeric offset or trailing zero fractions comes back in a different text.
// ToWireKeeping and DateToWireKeeping return the original wire text instead
// when the editable value still describes it.
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// EditableLayout is the minute-precision layout form inputs use.
	EditableLayout = "2006-01-02T15:04"
	// EditableLayoutSeconds is used when the instant carries seconds.
	EditableLayoutSeconds = "2006-01-02T15:04:05"
	// EditableLayoutNanos is used when the instant carries sub-second digits.
	EditableLayoutNanos = "2006-01-02T15:04:05.999999999"
	// DateLayout is shared by the wire and editable forms of date fields.
	DateLayout = "2006-01-02"
)

// ErrInvalidValue reports an unparsable date or datetime.
var ErrInvalidValue = errors.New("datetime: invalid value")

// ToEditable converts a wire instant into the editable representation in loc.
// Empty input yields empty output. Precision is kept: the minute layout is
// used only when seconds and sub-seconds are zero, so ToWire(ToEditable(v))
// returns v for any UTC wire value produced by ToWire.
func ToEditable(wire string, loc *time.Location) (string, error) {
	wire = strings.TrimSpace(wire)
	if wire == "" {
		return "", nil
	}
	t, err := time.Parse(time.RFC3339Nano, wire)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not an RFC 3339 instant", ErrInvalidValue, wire)
	}
	return FormatEditable(t, loc), nil
}

// FormatEditable renders t in loc using the shortest lossless editable layout.
func FormatEditable(t time.Time, loc *time.Location) string {
	t = t.In(location(loc))
	switch {
	case t.Nanosecond() != 0:
		return t.Format(EditableLayoutNanos)
	case t.Second() != 0:
		return t.Format(EditableLayoutSeconds)
	default:
		return t.Format(EditableLayout)
	}
}

// ToWire converts an editable value interpreted in loc into a UTC RFC 3339
// instant. Empty input yields empty output.
func ToWire(editable string, loc *time.Location) (string, error) {
	t, ok, err := ParseEditable(editable, loc)
	if err != nil || !ok {
		return "", err
	}
	return t.UTC().Format(time.RFC3339Nano), nil
}

// ToWireKeeping is ToWire, except that original is returned unchanged when
// editable is what ToEditable yields for it.
func ToWireKeeping(original, editable string, loc *time.Location) (string, error) {
	if original != "" {
		if same, err := ToEditable(original, loc); err == nil && same == strings.TrimSpace(editable) {
			return original, nil
		}
	}
	return ToWire(editable, loc)
}

// ParseEditable parses an editable value. ok is false for empty input.
func ParseEditable(editable string, loc *time.Location) (time.Time, bool, error) {
	editable = strings.TrimSpace(editable)
	if editable == "" {
		return time.Time{}, false, nil
	}
	for _, layout := range []string{EditableLayout, EditableLayoutSeconds, EditableLayoutNanos} {
		if t, err := time.ParseInLocation(layout, editable, location(loc)); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%w: %q is not a local date-time", ErrInvalidValue, editable)
}

// DefaultEditable is the create-mode default for datetime fields: the start of
// the current day in loc.
func DefaultEditable(now time.Time, loc *time.Location) string {
	t := now.In(location(loc))
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.Format(EditableLayout)
}

// DateToEditable reduces a wire date (or instant) to "2006-01-02".
func DateToEditable(wire string) (string, error) {
	wire = strings.TrimSpace(wire)
	if wire == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, wire); err == nil {
		return wire, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, wire); err == nil {
		return t.Format(DateLayout), nil
	}
	return "", fmt.Errorf("%w: %q is not a date", ErrInvalidValue, wire)
}

// DateToWire checks an editable date and returns it unchanged.
func DateToWire(editable string) (string, error) {
	editable = strings.TrimSpace(editable)
	if editable == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, editable); err != nil {
		return "", fmt.Errorf("%w: %q is not a date", ErrInvalidValue, editable)
	}
	return editable, nil
}

// DateToWireKeeping is DateToWire, except that original is returned unchanged
// when editable is what DateToEditable yields for it.
func DateToWireKeeping(original, editable string) (string, error) {
	if original != "" {
		if same, err := DateToEditable(original); err == nil && same == strings.TrimSpace(editable) {
			return original, nil
		}
	}
	return DateToWire(editable)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
