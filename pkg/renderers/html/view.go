package html

import (
	"errors"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/formsync"
	"github.com/goliatone/go-entityform/pkg/model"
	"github.com/goliatone/go-entityform/pkg/validation"
)

// View is the template model of one form.
type View struct {
	ID          string      `json:"id"`
	Action      string      `json:"action"`
	Mode        string      `json:"mode"`
	HeadingID   string      `json:"heading_id"`
	Title       string      `json:"title"`
	SubmitLabel string      `json:"submit_label"`
	CancelRoute string      `json:"cancel_route"`
	Loading     bool        `json:"loading"`
	Updating    bool        `json:"updating"`
	Error       string      `json:"error"`
	FormErrors  []string    `json:"form_errors"`
	Fields      []FieldView `json:"fields"`
}

// FieldView is the template model of one control.
type FieldView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Input       string       `json:"input"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder"`
	Description string       `json:"description"`
	Value       string       `json:"value"`
	Checked     bool         `json:"checked"`
	Required    bool         `json:"required"`
	ReadOnly    bool         `json:"readonly"`
	MinLength   int          `json:"minlength"`
	MaxLength   int          `json:"maxlength"`
	Pattern     string       `json:"pattern"`
	Options     []OptionView `json:"options"`
	Errors      []string     `json:"errors"`
}

// OptionView is one entry of a select control.
type OptionView struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// FromSnapshot builds the view of a synchronized entity form. Read-only
// fields are hidden in create mode.
func FromSnapshot(form model.FormSpec, snap formsync.Snapshot) View {
	view := baseView(form)
	view.Mode = snap.Mode.String()
	view.CancelRoute = form.ListingRoute()
	view.Updating = snap.Updating
	view.Loading = snap.Loading || !snap.Ready
	if snap.EntityErr != nil {
		view.Error = snap.EntityErr.Error()
	}
	view.FormErrors = submitMessages(snap.SubmitErr)

	if view.Loading {
		return view
	}
	for _, field := range form.Fields {
		if field.ReadOnly && snap.Mode.IsNew() {
			continue
		}
		fv := fieldView(form, field, snap.Draft[field.Name], snap.Errors[field.Name])
		if field.Kind == model.KindReference {
			selected := snap.Draft.Text(field.Name)
			for _, choice := range snap.Choices[field.Name] {
				fv.Options = append(fv.Options, OptionView{
					Value:    choice.Value,
					Label:    choice.Label,
					Selected: choice.Value == selected,
				})
			}
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}

// FromValues builds the view of a form that is not bound to a synchronizer,
// such as account registration.
func FromValues(form model.FormSpec, values map[string]any, errs validation.Errors) View {
	view := baseView(form)
	view.Mode = "create"
	if strings.TrimSpace(form.ListRoute) != "" {
		view.CancelRoute = form.ListRoute
	}
	for _, field := range form.Fields {
		view.Fields = append(view.Fields, fieldView(form, field, values[field.Name], errs[field.Name]))
	}
	return view
}

func baseView(form model.FormSpec) View {
	title := form.Title
	if title == "" {
		title = form.Entity
	}
	return View{
		ID:          form.Entity + "-form",
		Action:      "/" + form.Collection,
		HeadingID:   form.Entity + "-heading",
		Title:       title,
		SubmitLabel: "Save",
	}
}

func fieldView(form model.FormSpec, field model.FieldSpec, value any, errs []string) FieldView {
	fv := FieldView{
		ID:          form.Entity + "-" + field.Name,
		Name:        field.Name,
		Kind:        string(field.Kind),
		Input:       inputType(field),
		Label:       field.DisplayLabel(),
		Placeholder: field.Placeholder,
		Description: sanitizeDescription(field.Description),
		Required:    field.IsRequired(),
		ReadOnly:    field.ReadOnly,
		Errors:      errs,
	}
	switch v := value.(type) {
	case bool:
		fv.Checked = v
	case string:
		fv.Value = v
	case nil:
	default:
		fv.Value = entity.IDString(v)
	}
	for _, rule := range field.Validations {
		switch rule.Kind {
		case model.ValidationRuleMinLength:
			fv.MinLength, _ = rule.IntParam("value")
		case model.ValidationRuleMaxLength:
			fv.MaxLength, _ = rule.IntParam("value")
		case model.ValidationRulePattern:
			fv.Pattern = rule.Params["pattern"]
		}
	}
	return fv
}

func inputType(field model.FieldSpec) string {
	switch field.Kind {
	case model.KindBoolean:
		return "checkbox"
	case model.KindDate:
		return "date"
	case model.KindDateTime:
		return "datetime-local"
	case model.KindReference:
		return "select"
	}
	switch field.Format {
	case model.FormatPassword:
		return "password"
	case model.FormatEmail:
		return "email"
	case model.FormatTextArea:
		return "textarea"
	default:
		return "text"
	}
}

func submitMessages(err error) []string {
	if err == nil {
		return nil
	}
	var serr *formsync.SubmitError
	if errors.As(err, &serr) {
		if len(serr.Form) > 0 {
			return append([]string(nil), serr.Form...)
		}
		if len(serr.Fields) > 0 {
			return nil
		}
		return []string{serr.Err.Error()}
	}
	return []string{err.Error()}
}

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy
)

func sanitizeDescription(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	descriptionPolicyOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "br", "span")
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		policy.AllowURLSchemes("http", "https", "mailto")
		descriptionPolicy = policy
	})
	return strings.TrimSpace(descriptionPolicy.Sanitize(trimmed))
}
