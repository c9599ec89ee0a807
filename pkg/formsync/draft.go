package formsync

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-entityform/pkg/datetime"
	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/validation"
)

// Draft is the form-local edit buffer. Boolean fields hold bool; every other
// kind holds string (reference fields hold the bare id).
type Draft map[string]any

// Text returns the string value of name.
func (d Draft) Text(name string) string {
	v, _ := d[name].(string)
	return v
}

// Bool returns the boolean value of name.
func (d Draft) Bool(name string) bool {
	v, _ := d[name].(bool)
	return v
}

func (d Draft) clone() Draft {
	if d == nil {
		return nil
	}
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func createDefaults(spec model.FormSpec, now time.Time, loc *time.Location) Draft {
	draft := make(Draft, len(spec.Fields))
	for _, field := range spec.Fields {
		switch field.Kind {
		case model.KindBoolean:
			draft[field.Name] = defaultBool(field.Default)
		case model.KindDateTime:
			if field.DefaultNow {
				draft[field.Name] = datetime.DefaultEditable(now, loc)
				continue
			}
			draft[field.Name] = defaultText(field.Default)
		case model.KindDate:
			if field.DefaultNow {
				draft[field.Name] = now.In(loc).Format(datetime.DateLayout)
				continue
			}
			draft[field.Name] = defaultText(field.Default)
		default:
			draft[field.Name] = defaultText(field.Default)
		}
	}
	return draft
}

// editDefaults reduces a fetched entity to draft values. Values that cannot
// be converted are kept verbatim so validation reports them.
func editDefaults(spec model.FormSpec, e entity.Entity, loc *time.Location) (Draft, []error) {
	draft := make(Draft, len(spec.Fields))
	var errs []error
	for _, field := range spec.Fields {
		switch field.Kind {
		case model.KindBoolean:
			draft[field.Name] = e.Bool(field.Name)
		case model.KindDateTime:
			raw := e.Text(field.Name)
			editable, err := datetime.ToEditable(raw, loc)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", field.Name, err))
				editable = raw
			}
			draft[field.Name] = editable
		case model.KindDate:
			raw := e.Text(field.Name)
			editable, err := datetime.DateToEditable(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", field.Name, err))
				editable = raw
			}
			draft[field.Name] = editable
		case model.KindReference:
			draft[field.Name] = e.ReferenceID(field.Name)
		default:
			if field.Name == entity.IDField {
				draft[field.Name] = e.ID()
				continue
			}
			draft[field.Name] = e.Text(field.Name)
		}
	}
	return draft, errs
}

func defaultText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return entity.IDString(v)
	}
}

func defaultBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(v))
		return parsed
	default:
		return false
	}
}

// Draft returns a copy of the current draft, or nil before the form is ready.
func (s *Synchronizer) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.clone()
}

// SetText sets a text, date, datetime or reference field.
func (s *Synchronizer) SetText(name, value string) error {
	return s.set(name, value)
}

// SetBool sets a boolean field.
func (s *Synchronizer) SetBool(name string, value bool) error {
	return s.set(name, value)
}

// SetValue sets a field from a string or bool, as delivered by renderers.
func (s *Synchronizer) SetValue(name string, value any) error {
	switch v := value.(type) {
	case string, bool:
		return s.set(name, v)
	default:
		return fmt.Errorf("%w: %s got %T", ErrKindMismatch, name, value)
	}
}

func (s *Synchronizer) set(name string, value any) error {
	field, ok := s.spec.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if field.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}
	_, isBool := value.(bool)
	if isBool != (field.Kind == model.KindBoolean) {
		return fmt.Errorf("%w: %s is %s", ErrKindMismatch, name, field.Kind)
	}

	s.mu.Lock()
	switch {
	case s.unmounted:
		s.mu.Unlock()
		return ErrUnmounted
	case !s.ready:
		s.mu.Unlock()
		return ErrNotReady
	case s.updateSuccess:
		s.mu.Unlock()
		return ErrAlreadySubmitted
	}
	s.draft[name] = value
	s.revalidateLocked(name)
	s.mu.Unlock()

	s.emit()
	return nil
}

// revalidateLocked refreshes the messages of name and of every field that
// compares itself against name.
func (s *Synchronizer) revalidateLocked(name string) {
	targets := []string{name}
	for _, field := range s.spec.Fields {
		for _, rule := range field.Validations {
			if rule.Kind == model.ValidationRuleEqualTo && strings.TrimSpace(rule.Params["field"]) == name {
				if s.draft.Text(field.Name) != "" {
					targets = append(targets, field.Name)
				}
			}
		}
	}

	values := map[string]any(s.draft)
	for _, target := range targets {
		field, _ := s.spec.Field(target)
		msgs := validation.Field(field, values[target], values)
		if len(msgs) == 0 {
			if s.errors != nil {
				delete(s.errors, target)
			}
			continue
		}
		if s.errors == nil {
			s.errors = make(validation.Errors)
		}
		s.errors[target] = msgs
	}
}

// Validate runs every field rule against the current draft and records the
// result. Reference resolution is checked at submit time.
func (s *Synchronizer) Validate() validation.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	s.errors = validation.Validate(s.spec, map[string]any(s.draft))
	return copyErrors(s.errors)
}

func copyErrors(errs validation.Errors) validation.Errors {
	if len(errs) == 0 {
		return nil
	}
	out := make(validation.Errors, len(errs))
	for k, v := range errs {
		out[k] = append([]string(nil), v...)
	}
	return out
}
