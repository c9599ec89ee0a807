// Package tui drives entity and registration forms through terminal prompts.
package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-entityform/pkg/account"
	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/validation"
)

// NoneOption is the first entry of every reference selection; it clears the
// reference.
const NoneOption = "(none)"

// Renderer prompts for form fields and pushes the answers into a form.
type Renderer struct {
	driver       PromptDriver
	stdio        *Stdio
	outputFormat OutputFormat
	theme        Theme
	logger       *zap.Logger
	maxAttempts  int
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.stdio)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// setter applies one answer and returns the messages it produced for the
// field.
type setter func(field model.FieldSpec, value any) ([]string, error)

// Edit prompts every editable field of a mounted, ready synchronizer and
// submits. Fields rejected by validation or by the server are asked again;
// after a server failure the user decides whether to retry.
func (r *Renderer) Edit(ctx context.Context, s *formsync.Synchronizer) error {
	snap := s.Snapshot()
	if snap.EntityErr != nil {
		return fmt.Errorf("tui: %w", snap.EntityErr)
	}
	if !snap.Ready {
		return formsync.ErrNotReady
	}
	for collection, err := range snap.CollectionErrs {
		r.warn(ctx, fmt.Sprintf("Could not load %s: %v", collection, err))
	}

	form := s.Spec()
	set := func(field model.FieldSpec, value any) ([]string, error) {
		if err := s.SetValue(field.Name, value); err != nil {
			return nil, err
		}
		return s.Snapshot().Errors[field.Name], nil
	}
	current := func(name string) any {
		return s.Draft()[name]
	}

	if !snap.Mode.IsNew() {
		for _, field := range form.Fields {
			if field.ReadOnly {
				r.info(ctx, fmt.Sprintf("%s: %s", field.DisplayLabel(), textOf(snap.Draft[field.Name])))
			}
		}
	}
	fields := editableFields(form)
	for attempt := 1; ; attempt++ {
		for _, field := range fields {
			var choices []formsync.Choice
			if field.Kind == model.KindReference {
				choices = s.Choices(field.Name)
			}
			if err := r.promptField(ctx, field, current(field.Name), choices, set); err != nil {
				return err
			}
		}

		err := s.Submit(ctx)
		if err == nil {
			r.info(ctx, fmt.Sprintf("Saved %s.", form.Entity))
			return nil
		}

		var verr *formsync.ValidationError
		var serr *formsync.SubmitError
		switch {
		case errors.As(err, &verr):
			r.reportErrors(ctx, form, verr.Fields)
			fields = failingFields(form, verr.Fields, fields)
		case errors.As(err, &serr):
			for _, msg := range serr.Form {
				r.warn(ctx, msg)
			}
			r.reportErrors(ctx, form, serr.Fields)
			if r.maxAttempts > 0 && attempt >= r.maxAttempts {
				return err
			}
			retry, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Save failed. Edit and try again?", Default: true})
			if cerr != nil {
				return cerr
			}
			if !retry {
				return fmt.Errorf("%w: %w", ErrGaveUp, err)
			}
			if len(serr.Fields) > 0 {
				fields = failingFields(form, serr.Fields, fields)
			}
		default:
			return err
		}
		fields = promptable(s, fields)
		if len(fields) == 0 {
			return err
		}
		r.logger.Debug("prompting again", zap.Int("attempt", attempt+1), zap.Int("fields", len(fields)))
	}
}

// Register prompts the registration form and submits it through svc. It
// returns the collected values.
func (r *Renderer) Register(ctx context.Context, svc *account.Service, prefill map[string]any) (map[string]any, error) {
	form := svc.Form()
	state := NewState(prefill)
	set := func(field model.FieldSpec, value any) ([]string, error) {
		state.SetValue(field.Name, value)
		return validation.Field(field, value, state.Values()), nil
	}

	fields := form.Fields
	for {
		for _, field := range fields {
			value, _ := state.Value(field.Name)
			if err := r.promptField(ctx, field, value, nil, set); err != nil {
				return nil, err
			}
		}

		err := svc.Register(ctx, state.Values())
		if err == nil {
			r.info(ctx, account.DefaultSuccessMessage)
			return state.Values(), nil
		}
		var verr *account.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		state.SetErrors(verr.Fields)
		r.reportErrors(ctx, form, verr.Fields)
		fields = failingFields(form, verr.Fields, form.Fields)
	}
}

func (r *Renderer) promptField(ctx context.Context, field model.FieldSpec, current any, choices []formsync.Choice, set setter) error {
	for {
		value, err := r.ask(ctx, field, current, choices)
		if err != nil {
			return err
		}
		msgs, err := set(field, value)
		if err != nil {
			return err
		}
		if len(msgs) == 0 || (field.Kind == model.KindReference && len(choices) == 0) {
			return nil
		}
		for _, msg := range msgs {
			r.warn(ctx, fmt.Sprintf("%s: %s", field.DisplayLabel(), msg))
		}
		current = value
	}
}

func (r *Renderer) ask(ctx context.Context, field model.FieldSpec, current any, choices []formsync.Choice) (any, error) {
	label := field.DisplayLabel()
	if field.IsRequired() {
		label += " *"
	}
	help := displayHelp(field)

	switch field.Kind {
	case model.KindBoolean:
		checked, _ := current.(bool)
		return r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked, Help: help})
	case model.KindReference:
		return r.askReference(ctx, label, help, textOf(current), choices)
	}

	text := textOf(current)
	switch field.Format {
	case model.FormatPassword:
		return r.driver.Password(ctx, InputConfig{Message: label, Help: help})
	case model.FormatTextArea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: text, Help: help})
	default:
		return r.driver.Input(ctx, InputConfig{Message: label, Default: text, Help: help})
	}
}

func (r *Renderer) askReference(ctx context.Context, label, help, selected string, choices []formsync.Choice) (string, error) {
	if len(choices) == 0 {
		if selected != "" {
			r.warn(ctx, fmt.Sprintf("%s: no entries available, keeping %s", label, selected))
		}
		return selected, nil
	}

	options := make([]string, 0, len(choices)+1)
	options = append(options, NoneOption)
	defaultIdx := 0
	for i, choice := range choices {
		options = append(options, choice.Label)
		if choice.Value == selected {
			defaultIdx = i + 1
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         help,
		})
		if err != nil {
			return "", err
		}
		switch {
		case idx == 0:
			return "", nil
		case idx > 0 && idx <= len(choices):
			return choices[idx-1].Value, nil
		}
		r.warn(ctx, fmt.Sprintf("Invalid %s selection", label))
	}
}

func (r *Renderer) reportErrors(ctx context.Context, form model.FormSpec, errs validation.Errors) {
	for _, name := range errs.Fields() {
		label := name
		if field, ok := form.Field(name); ok {
			label = field.DisplayLabel()
		}
		for _, msg := range errs[name] {
			r.warn(ctx, fmt.Sprintf("%s: %s", label, msg))
		}
	}
}

func (r *Renderer) info(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) warn(ctx context.Context, msg string) {
	_ = r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func editableFields(form model.FormSpec) []model.FieldSpec {
	out := make([]model.FieldSpec, 0, len(form.Fields))
	for _, field := range form.Fields {
		if field.ReadOnly {
			continue
		}
		out = append(out, field)
	}
	return out
}

// failingFields keeps the fields named in errs, in form order. Fields outside
// candidates are ignored.
func failingFields(form model.FormSpec, errs validation.Errors, candidates []model.FieldSpec) []model.FieldSpec {
	allowed := make(map[string]bool, len(candidates))
	for _, field := range candidates {
		allowed[field.Name] = true
	}
	var out []model.FieldSpec
	for _, field := range form.Fields {
		if len(errs[field.Name]) > 0 && allowed[field.Name] {
			out = append(out, field)
		}
	}
	return out
}

// promptable drops reference fields whose collection offers no entries;
// asking them again cannot change the answer.
func promptable(s *formsync.Synchronizer, fields []model.FieldSpec) []model.FieldSpec {
	out := fields[:0:0]
	for _, field := range fields {
		if field.Kind == model.KindReference && len(s.Choices(field.Name)) == 0 {
			continue
		}
		out = append(out, field)
	}
	return out
}

func displayHelp(field model.FieldSpec) string {
	parts := make([]string, 0, 2)
	if desc := plainText(field.Description); desc != "" {
		parts = append(parts, desc)
	}
	switch {
	case field.Placeholder != "":
		parts = append(parts, "Format: "+field.Placeholder)
	case field.Kind == model.KindDate:
		parts = append(parts, "Format: YYYY-MM-DD")
	case field.Kind == model.KindDateTime:
		parts = append(parts, "Format: YYYY-MM-DDTHH:mm")
	}
	return strings.Join(parts, " ")
}

func textOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

var (
	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

// plainText strips markup from descriptions meant for HTML help blocks.
func plainText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(trimmed)))
}
