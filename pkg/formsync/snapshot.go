package formsync

import (
	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/validation"
)

// Choice is one selectable entry of a reference field.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Snapshot is a consistent copy of the form state for rendering.
type Snapshot struct {
	Mode Mode
	// Loading stays true in edit mode until the entity arrives; it never
	// clears when the fetch fails, EntityErr is set instead.
	Loading       bool
	Updating      bool
	UpdateSuccess bool
	Ready         bool
	Draft         Draft
	Errors        validation.Errors
	Choices       map[string][]Choice
	EntityErr     error
	// CollectionErrs holds listing failures keyed by collection.
	CollectionErrs map[string]error
	SubmitErr      error
}

// Snapshot returns the current state.
func (s *Synchronizer) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Choices lists the selectable entries for a reference field. The list is
// empty until this form's fetch of the collection succeeded.
func (s *Synchronizer) Choices(field string) []Choice {
	spec, ok := s.spec.Field(field)
	if !ok || spec.Kind != model.KindReference {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.choicesLocked(spec)
}

func (s *Synchronizer) snapshotLocked() Snapshot {
	snap := Snapshot{
		Mode:          s.mode,
		Loading:       s.loading,
		Updating:      s.updating,
		UpdateSuccess: s.updateSuccess,
		Ready:         s.ready,
		Draft:         s.draft.clone(),
		Errors:        copyErrors(s.errors),
		EntityErr:     s.entityErr,
		SubmitErr:     s.submitErr,
		Choices:       make(map[string][]Choice),
	}
	for name, state := range s.collections {
		if state.err == nil {
			continue
		}
		if snap.CollectionErrs == nil {
			snap.CollectionErrs = make(map[string]error)
		}
		snap.CollectionErrs[name] = state.err
	}
	for _, field := range s.spec.Fields {
		if field.Kind == model.KindReference {
			snap.Choices[field.Name] = s.choicesLocked(field)
		}
	}
	return snap
}

func (s *Synchronizer) choicesLocked(field model.FieldSpec) []Choice {
	collection := field.Reference.Collection
	state := s.collections[collection]
	if state == nil || !state.done || state.err != nil {
		return []Choice{}
	}
	list, _ := s.store.Entities(collection)
	display := field.Reference.Display()
	out := make([]Choice, 0, len(list))
	for _, item := range list {
		label := item.Text(display)
		if label == "" {
			label = item.ID()
		}
		out = append(out, Choice{Value: item.ID(), Label: label})
	}
	return out
}

// Entity returns a copy of the entity the form was populated from, or the
// saved entity after a successful submit.
func (s *Synchronizer) Entity() entity.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entity.Clone()
}
