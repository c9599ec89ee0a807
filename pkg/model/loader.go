package model

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds form descriptions keyed by entity name.
type Registry struct {
	forms map[string]FormSpec
}

// NewRegistry builds a registry from the given forms. Invalid or duplicate
// forms are rejected.
func NewRegistry(forms ...FormSpec) (*Registry, error) {
	reg := &Registry{forms: make(map[string]FormSpec, len(forms))}
	for _, form := range forms {
		if err := reg.add(form, "inline"); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFS walks the provided filesystem and parses JSON/YAML form files. When
// fsys is nil or no form files are present, the returned registry is empty.
func LoadFS(fsys fs.FS) (*Registry, error) {
	reg := &Registry{forms: make(map[string]FormSpec)}
	if fsys == nil {
		return reg, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("model: read %s: %w", path, err)
		}

		forms, err := ParseForms(data, path)
		if err != nil {
			return err
		}
		for _, form := range forms {
			if err := reg.add(form, path); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Form returns the description registered under entity.
func (r *Registry) Form(entity string) (FormSpec, bool) {
	if r == nil {
		return FormSpec{}, false
	}
	form, ok := r.forms[strings.TrimSpace(entity)]
	return form, ok
}

// Names lists the registered entity names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.forms))
	for name := range r.forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) add(form FormSpec, source string) error {
	if err := form.Validate(); err != nil {
		return fmt.Errorf("model: %s: %w", source, err)
	}
	if _, exists := r.forms[form.Entity]; exists {
		return fmt.Errorf("model: duplicate form %q (file %s)", form.Entity, source)
	}
	r.forms[form.Entity] = form
	return nil
}

type documentFile struct {
	Forms map[string]formFile `json:"forms" yaml:"forms"`
}

type formFile struct {
	Collection string      `json:"collection" yaml:"collection"`
	ListRoute  string      `json:"listRoute" yaml:"listRoute"`
	Title      string      `json:"title" yaml:"title"`
	Fields     []FieldSpec `json:"fields" yaml:"fields"`
}

// ParseForms decodes a JSON or YAML document holding a `forms` map.
func ParseForms(data []byte, source string) ([]FormSpec, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("model: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("model: parse %s: invalid JSON or YAML", source)
		}
	}

	entities := make([]string, 0, len(doc.Forms))
	for name := range doc.Forms {
		entities = append(entities, name)
	}
	sort.Strings(entities)

	out := make([]FormSpec, 0, len(entities))
	for _, name := range entities {
		raw := doc.Forms[name]
		entity := strings.TrimSpace(name)
		if entity == "" {
			return nil, fmt.Errorf("model: file %s defines a form with an empty name", source)
		}
		form := FormSpec{
			Entity:     entity,
			Collection: strings.TrimSpace(raw.Collection),
			ListRoute:  strings.TrimSpace(raw.ListRoute),
			Title:      raw.Title,
			Fields:     make([]FieldSpec, len(raw.Fields)),
		}
		if form.Collection == "" {
			form.Collection = entity
		}
		for idx, field := range raw.Fields {
			cloned := cloneField(field)
			cloned.Name = strings.TrimSpace(cloned.Name)
			if cloned.Kind == "" {
				cloned.Kind = KindText
			}
			EnsureReference(&cloned)
			form.Fields[idx] = cloned
		}
		out = append(out, form)
	}
	return out, nil
}

func cloneField(field FieldSpec) FieldSpec {
	out := field
	out.Reference = cloneReference(field.Reference)
	if len(field.Validations) > 0 {
		out.Validations = make([]ValidationRule, len(field.Validations))
		for idx, rule := range field.Validations {
			out.Validations[idx] = ValidationRule{Kind: rule.Kind}
			if len(rule.Params) > 0 {
				out.Validations[idx].Params = make(map[string]string, len(rule.Params))
				for k, v := range rule.Params {
					out.Validations[idx].Params[k] = v
				}
			}
		}
	}
	if len(field.Metadata) > 0 {
		out.Metadata = make(map[string]string, len(field.Metadata))
		for k, v := range field.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
