package tui

import (
	"github.com/goliatone/go-entityform/pkg/validation"
)

// State collects values of a form that is not bound to a synchronizer, such
// as account registration.
type State struct {
	values map[string]any
	errors validation.Errors
}

// NewState seeds the state with prefilled values.
func NewState(prefill map[string]any) *State {
	values := make(map[string]any, len(prefill))
	for k, v := range prefill {
		values[k] = v
	}
	return &State{values: values}
}

// Values returns a copy of the collected values.
func (s *State) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Value returns the value of name.
func (s *State) Value(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// SetValue stores value under name and clears its previous errors.
func (s *State) SetValue(name string, value any) {
	s.values[name] = value
	delete(s.errors, name)
}

// SetErrors replaces the recorded validation errors.
func (s *State) SetErrors(errs validation.Errors) {
	s.errors = errs
}

// ErrorsFor returns the errors recorded for name.
func (s *State) ErrorsFor(name string) []string {
	return s.errors[name]
}
