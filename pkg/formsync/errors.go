package formsync

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-entityform/pkg/validation"
)

var (
	// ErrAlreadyMounted is returned by a second Mount call.
	ErrAlreadyMounted = errors.New("formsync: form already mounted")
	// ErrUnmounted is returned once the form has been unmounted.
	ErrUnmounted = errors.New("formsync: form is unmounted")
	// ErrNotReady is returned before the form has been populated.
	ErrNotReady = errors.New("formsync: form is not ready")
	// ErrSubmitInFlight is returned while a create or update is in flight.
	ErrSubmitInFlight = errors.New("formsync: submit already in flight")
	// ErrAlreadySubmitted is returned after a successful submit.
	ErrAlreadySubmitted = errors.New("formsync: form already submitted")
	// ErrEntityUnavailable is returned when the edited entity failed to load.
	ErrEntityUnavailable = errors.New("formsync: entity could not be loaded")
	// ErrInvalid is the sentinel all validation failures unwrap to.
	ErrInvalid = errors.New("formsync: form is invalid")
	// ErrUnknownField is returned when setting a field the form does not declare.
	ErrUnknownField = errors.New("formsync: unknown field")
	// ErrReadOnly is returned when setting a read-only field.
	ErrReadOnly = errors.New("formsync: field is read-only")
	// ErrKindMismatch is returned when a value does not fit the field kind.
	ErrKindMismatch = errors.New("formsync: value does not match field kind")
	// ErrCollectionNotLoaded is the resolution cause when the referenced
	// collection has not been loaded by this form.
	ErrCollectionNotLoaded = errors.New("formsync: referenced collection not loaded")
	// ErrReferenceNotFound is the resolution cause when the id is not in the
	// loaded collection.
	ErrReferenceNotFound = errors.New("formsync: referenced entity not found")
)

// FetchError reports a failed entity or collection load. Fetches are not
// retried.
type FetchError struct {
	Collection string
	ID         string
	Err        error
}

func (e *FetchError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("formsync: fetch %s/%s: %v", e.Collection, e.ID, e.Err)
	}
	return fmt.Sprintf("formsync: fetch %s: %v", e.Collection, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ResolutionError reports a reference id that could not be turned back into
// an embedded reference object.
type ResolutionError struct {
	Field      string
	Collection string
	ID         string
	Err        error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("formsync: resolve %s=%q in %s: %v", e.Field, e.ID, e.Collection, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ValidationError blocks a submit. It carries every failing field, including
// reference resolution failures.
type ValidationError struct {
	Fields      validation.Errors
	Resolutions []*ResolutionError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("formsync: invalid fields %s", strings.Join(e.Fields.Fields(), ", "))
}

// Unwrap exposes ErrInvalid and each resolution failure to errors.Is/As.
func (e *ValidationError) Unwrap() []error {
	out := make([]error, 0, len(e.Resolutions)+1)
	out = append(out, ErrInvalid)
	for _, res := range e.Resolutions {
		out = append(out, res)
	}
	return out
}

// SubmitError reports a create or update rejected by the remote store. Fields
// holds server messages mapped onto form fields; Form holds the rest.
type SubmitError struct {
	Err    error
	Fields map[string][]string
	Form   []string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("formsync: submit: %v", e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }
