package formsync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/pkg/datetime"
	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/fielderrors"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/store"
	"github.com/goliatone/go-entityform/pkg/validation"
)

// MessageUnresolved is the field message for a reference that cannot be
// resolved against its loaded collection.
const MessageUnresolved = "The selected entry is not available."

// Submit validates the draft and dispatches exactly one create (new) or
// update (existing). It blocks until the store answers. On success the form
// navigates to the listing route; on failure it stays editable.
func (s *Synchronizer) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.unmounted:
		s.mu.Unlock()
		return ErrUnmounted
	case s.updating:
		s.mu.Unlock()
		return ErrSubmitInFlight
	case s.updateSuccess:
		s.mu.Unlock()
		return ErrAlreadySubmitted
	case s.entityErr != nil:
		err := s.entityErr
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrEntityUnavailable, err)
	case !s.ready:
		s.mu.Unlock()
		return ErrNotReady
	}

	values := s.draft.clone()
	errs := validation.Validate(s.spec, map[string]any(values))
	if errs == nil {
		errs = make(validation.Errors)
	}
	fields, convErrs := s.wireValues(values)
	for name, msg := range convErrs {
		if len(errs[name]) == 0 {
			errs.Add(name, msg)
		}
	}
	refs, resolutions := s.resolveLocked(values)
	for _, res := range resolutions {
		if len(errs[res.Field]) == 0 {
			errs.Add(res.Field, MessageUnresolved)
		}
	}

	if !errs.Empty() {
		s.errors = errs
		verr := &ValidationError{Fields: copyErrors(errs), Resolutions: resolutions}
		s.mu.Unlock()

		s.logger.Debug("submit rejected by validation", zap.Strings("fields", errs.Fields()))
		s.emit()
		return verr
	}

	payload := merge(s.entity, fields, refs)
	s.updating = true
	s.errors = nil
	s.submitErr = nil
	s.mu.Unlock()
	s.emit()

	var (
		result entity.Entity
		err    error
	)
	if s.mode.IsNew() {
		result, err = s.store.CreateEntity(ctx, s.spec.Collection, payload)
	} else {
		result, err = s.store.UpdateEntity(ctx, s.spec.Collection, payload)
	}

	s.mu.Lock()
	s.updating = false
	if err != nil {
		serr := s.submitError(err)
		s.submitErr = serr
		if len(serr.Fields) > 0 {
			s.errors = make(validation.Errors, len(serr.Fields))
			for name, msgs := range serr.Fields {
				s.errors[name] = append([]string(nil), msgs...)
			}
		}
		s.mu.Unlock()

		s.logger.Warn("submit failed", zap.Error(err))
		s.emit()
		return serr
	}

	s.updateSuccess = true
	s.entity = result
	navigate := !s.unmounted
	s.mu.Unlock()

	s.logger.Info("entity saved", zap.String("id", result.ID()))
	s.emit()
	if navigate {
		s.navigator.Navigate(s.spec.ListingRoute())
	}
	return nil
}

// wireValues converts draft values of non-reference fields into their wire
// form. Read-only fields are skipped; their value comes from the loaded
// entity. Unchanged dates and datetimes keep their loaded wire text.
func (s *Synchronizer) wireValues(values Draft) (entity.Entity, map[string]string) {
	out := make(entity.Entity, len(values))
	var errs map[string]string
	fail := func(name string, err error) {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs[name] = err.Error()
	}

	for _, field := range s.spec.Fields {
		if field.ReadOnly || field.Kind == model.KindReference {
			continue
		}
		switch field.Kind {
		case model.KindBoolean:
			out[field.Name] = values.Bool(field.Name)
		case model.KindDateTime:
			wire, err := datetime.ToWireKeeping(s.loadedText(field.Name), values.Text(field.Name), s.loc)
			if err != nil {
				fail(field.Name, err)
				continue
			}
			out[field.Name] = nilIfEmpty(wire)
		case model.KindDate:
			wire, err := datetime.DateToWireKeeping(s.loadedText(field.Name), values.Text(field.Name))
			if err != nil {
				fail(field.Name, err)
				continue
			}
			out[field.Name] = nilIfEmpty(wire)
		default:
			value, err := textToWire(field, values.Text(field.Name))
			if err != nil {
				fail(field.Name, err)
				continue
			}
			out[field.Name] = value
		}
	}
	return out, errs
}

// loadedText returns the loaded entity's value for name when it is a string.
func (s *Synchronizer) loadedText(name string) string {
	text, _ := s.entity[name].(string)
	return text
}

// textToWire keeps text as-is unless the field carries a numeric value type;
// empty numeric values become nil.
func textToWire(field model.FieldSpec, text string) (any, error) {
	switch field.Metadata[model.MetadataValueType] {
	case "integer":
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", text)
		}
		return n, nil
	case "number":
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", text)
		}
		return f, nil
	default:
		return text, nil
	}
}

// resolveLocked turns reference ids back into embedded reference objects. An
// empty id resolves to "no reference". A non-empty id must be present in the
// listing this instance loaded; otherwise resolution fails.
func (s *Synchronizer) resolveLocked(values Draft) (map[string]entity.Entity, []*ResolutionError) {
	refs := make(map[string]entity.Entity)
	var failures []*ResolutionError

	for _, field := range s.spec.Fields {
		if field.Kind != model.KindReference {
			continue
		}
		id := values.Text(field.Name)
		if id == "" {
			refs[field.Name] = nil
			continue
		}
		collection := field.Reference.Collection

		state := s.collections[collection]
		if state == nil || !state.done || state.err != nil {
			cause := ErrCollectionNotLoaded
			if state != nil && state.err != nil {
				cause = fmt.Errorf("%w: %w", ErrCollectionNotLoaded, state.err)
			}
			failures = append(failures, &ResolutionError{Field: field.Name, Collection: collection, ID: id, Err: cause})
			continue
		}

		list, _ := s.store.Entities(collection)
		found, ok := entity.Find(list, id)
		if !ok {
			failures = append(failures, &ResolutionError{Field: field.Name, Collection: collection, ID: id, Err: ErrReferenceNotFound})
			continue
		}
		refs[field.Name] = found
	}
	return refs, failures
}

// merge applies form values over the previously loaded entity and resolved
// references last, so stale reference ids never survive. Empty references
// are omitted.
func merge(previous, fields entity.Entity, refs map[string]entity.Entity) entity.Entity {
	out := previous.Clone()
	if out == nil {
		out = entity.Entity{}
	}
	for k, v := range fields {
		out[k] = v
	}
	for name, ref := range refs {
		if ref == nil {
			delete(out, name)
			continue
		}
		out[name] = map[string]any(ref.Clone())
	}
	return out
}

func (s *Synchronizer) submitError(err error) *SubmitError {
	serr := &SubmitError{Err: err}
	var fe store.FieldErrorer
	if errors.As(err, &fe) {
		mapped := fielderrors.Map(s.spec, fe.FieldErrors())
		serr.Fields = mapped.Fields
		serr.Form = mapped.Form
	}
	return serr
}

func nilIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
