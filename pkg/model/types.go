package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// FieldKind is the tagged variant for form-friendly field kinds.
type FieldKind string

const (
	KindText      FieldKind = "text"
	KindBoolean   FieldKind = "boolean"
	KindDate      FieldKind = "date"
	KindDateTime  FieldKind = "datetime"
	KindReference FieldKind = "reference"
)

// Valid reports whether k is one of the known kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindBoolean, KindDate, KindDateTime, KindReference:
		return true
	default:
		return false
	}
}

const (
	ValidationRuleRequired  = "required"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
	ValidationRuleEmail     = "email"
	ValidationRuleEqualTo   = "equalTo"
)

const (
	FormatPassword = "password"
	FormatEmail    = "email"
	FormatTextArea = "textarea"
)

// MetadataValueType marks text fields whose wire value is numeric
// ("integer" or "number").
const MetadataValueType = "valueType"

// ValidationRule represents a single validation constraint applied to a field.
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Message returns the rule's custom message, if any.
func (r ValidationRule) Message() string {
	return strings.TrimSpace(r.Params["message"])
}

// IntParam parses Params[key] as an integer.
func (r ValidationRule) IntParam(key string) (int, bool) {
	raw := strings.TrimSpace(r.Params[key])
	if raw == "" {
		return 0, false
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// Reference describes a field whose value is the id of an entity stored in a
// different collection.
type Reference struct {
	Collection   string `json:"collection" yaml:"collection"`
	DisplayField string `json:"displayField,omitempty" yaml:"displayField,omitempty"`
}

// Display returns the field used to label options, defaulting to "id".
func (r *Reference) Display() string {
	if r == nil || strings.TrimSpace(r.DisplayField) == "" {
		return "id"
	}
	return r.DisplayField
}

// FieldSpec models an individual input inside a form.
type FieldSpec struct {
	Name        string            `json:"name" yaml:"name"`
	Kind        FieldKind         `json:"kind" yaml:"kind"`
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Format      string            `json:"format,omitempty" yaml:"format,omitempty"`
	Required    bool              `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly    bool              `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Default     any               `json:"default,omitempty" yaml:"default,omitempty"`
	DefaultNow  bool              `json:"defaultNow,omitempty" yaml:"defaultNow,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty" yaml:"validations,omitempty"`
	Reference   *Reference        `json:"reference,omitempty" yaml:"reference,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldSpec) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// IsRequired reports whether the field is required either through the flag or
// an explicit required rule.
func (f FieldSpec) IsRequired() bool {
	if f.Required {
		return true
	}
	for _, rule := range f.Validations {
		if rule.Kind == ValidationRuleRequired {
			return true
		}
	}
	return false
}

// FormSpec is the top-level form description the synchronizer and renderers
// consume.
type FormSpec struct {
	// Entity is the singular entity name used in logs and element ids.
	Entity string `json:"entity" yaml:"entity"`
	// Collection is the remote resource the form reads from and writes to.
	Collection string `json:"collection" yaml:"collection"`
	// ListRoute is where navigation goes after a successful submit or cancel.
	ListRoute string      `json:"listRoute,omitempty" yaml:"listRoute,omitempty"`
	Title     string      `json:"title,omitempty" yaml:"title,omitempty"`
	Fields    []FieldSpec `json:"fields" yaml:"fields"`
}

// Field looks up a field descriptor by name.
func (s FormSpec) Field(name string) (FieldSpec, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// ReferencedCollections returns the distinct collections referenced by
// reference fields, in field order.
func (s FormSpec) ReferencedCollections() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, field := range s.Fields {
		if field.Kind != KindReference || field.Reference == nil {
			continue
		}
		name := field.Reference.Collection
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ListingRoute returns ListRoute, defaulting to "/<entity>".
func (s FormSpec) ListingRoute() string {
	if route := strings.TrimSpace(s.ListRoute); route != "" {
		return route
	}
	return "/" + s.Entity
}

var (
	errEntityMissing     = errors.New("model: form entity is required")
	errCollectionMissing = errors.New("model: form collection is required")
)

// Validate checks the form description for structural problems.
func (s FormSpec) Validate() error {
	if strings.TrimSpace(s.Entity) == "" {
		return errEntityMissing
	}
	if strings.TrimSpace(s.Collection) == "" {
		return errCollectionMissing
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for idx, field := range s.Fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("model: form %q field %d has no name", s.Entity, idx)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("model: form %q defines field %q twice", s.Entity, name)
		}
		seen[name] = struct{}{}
		if !field.Kind.Valid() {
			return fmt.Errorf("model: form %q field %q has unknown kind %q", s.Entity, name, field.Kind)
		}
		if field.Kind == KindReference {
			if field.Reference == nil || strings.TrimSpace(field.Reference.Collection) == "" {
				return fmt.Errorf("model: form %q reference field %q has no collection", s.Entity, name)
			}
		}
		for _, rule := range field.Validations {
			if rule.Kind != ValidationRuleEqualTo {
				continue
			}
			target := strings.TrimSpace(rule.Params["field"])
			if _, ok := s.Field(target); !ok {
				return fmt.Errorf("model: form %q field %q compares against unknown field %q", s.Entity, name, target)
			}
		}
	}
	return nil
}
