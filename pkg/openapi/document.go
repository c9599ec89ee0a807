package openapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-entityform/pkg/entity"
	"github.com/goliatone/go-entityform/pkg/model"
)

const componentSchemaPrefix = "#/components/schemas/"

// ErrUnknownSchema is returned when a component schema does not exist or is
// not an object.
var ErrUnknownSchema = errors.New("openapi: unknown entity schema")

// Document is a parsed OpenAPI document.
type Document struct {
	source Source
	spec   *openapi3.T
}

// Parse decodes an OpenAPI 3 document (JSON or YAML) and resolves its local
// references.
func Parse(ctx context.Context, src Source, data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	return &Document{source: src, spec: spec}, nil
}

// Location returns the origin of the document, if known.
func (d *Document) Location() string {
	if d == nil || d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Entities lists the object component schemas, sorted by name.
func (d *Document) Entities() []string {
	var out []string
	for name, ref := range d.schemas() {
		if ref != nil && ref.Value != nil && isObject(ref.Value) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// FormOption adjusts a generated form description.
type FormOption func(*model.FormSpec)

// WithCollection overrides the derived collection name.
func WithCollection(collection string) FormOption {
	return func(form *model.FormSpec) {
		if collection != "" {
			form.Collection = collection
		}
	}
}

// WithListRoute overrides the derived listing route.
func WithListRoute(route string) FormOption {
	return func(form *model.FormSpec) {
		if route != "" {
			form.ListRoute = route
		}
	}
}

// Form builds the form description of the component schema named component.
func (d *Document) Form(component string, opts ...FormOption) (model.FormSpec, error) {
	ref, ok := d.schemas()[component]
	if !ok || ref == nil || ref.Value == nil || !isObject(ref.Value) {
		return model.FormSpec{}, fmt.Errorf("%w: %s", ErrUnknownSchema, component)
	}
	schema := ref.Value

	form := model.FormSpec{
		Entity:     entityName(component),
		Collection: collectionName(component),
		Title:      schema.Title,
	}
	if form.Title == "" {
		form.Title = "Create or edit a " + component
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	for _, name := range orderedProperties(schema) {
		field, ok := buildField(name, schema.Properties[name], required[name])
		if ok {
			form.Fields = append(form.Fields, field)
		}
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&form)
		}
	}
	if err := form.Validate(); err != nil {
		return model.FormSpec{}, fmt.Errorf("openapi: %s: %w", component, err)
	}
	return form, nil
}

// Forms builds a form for every entity schema.
func (d *Document) Forms() ([]model.FormSpec, error) {
	names := d.Entities()
	out := make([]model.FormSpec, 0, len(names))
	for _, name := range names {
		form, err := d.Form(name)
		if err != nil {
			return nil, err
		}
		out = append(out, form)
	}
	return out, nil
}

func (d *Document) schemas() openapi3.Schemas {
	if d == nil || d.spec == nil || d.spec.Components == nil {
		return nil
	}
	return d.spec.Components.Schemas
}

// orderedProperties honours x-entityform-order, then places id first and the
// remaining properties alphabetically.
func orderedProperties(schema *openapi3.Schema) []string {
	seen := make(map[string]bool, len(schema.Properties))
	var out []string
	for _, name := range fieldOrder(schema.Extensions) {
		if _, ok := schema.Properties[name]; ok && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}

	rest := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if rest[i] == entity.IDField || rest[j] == entity.IDField {
			return rest[i] == entity.IDField
		}
		return rest[i] < rest[j]
	})
	return append(out, rest...)
}

func buildField(name string, ref *openapi3.SchemaRef, required bool) (model.FieldSpec, bool) {
	if ref == nil || ref.Value == nil {
		return model.FieldSpec{}, false
	}
	schema := ref.Value
	hints := formHints(schema.Extensions)
	rel := relationship(schema.Extensions)

	field := model.FieldSpec{
		Name:        name,
		Label:       firstNonEmpty(hintString(hints, "label"), schema.Title, humanize(name)),
		Placeholder: hintString(hints, "placeholder"),
		Description: schema.Description,
		Required:    required,
		ReadOnly:    schema.ReadOnly || name == entity.IDField,
		Default:     schema.Default,
		DefaultNow:  hintBool(hints, "defaultNow"),
	}

	switch {
	case rel[relationshipCardAttr] == "many" || schemaType(schema) == openapi3.TypeArray:
		return model.FieldSpec{}, false
	case ref.Ref != "" || rel[relationshipTargetAttr] != "" || isObject(schema):
		collection := rel[relationshipTargetAttr]
		if collection == "" && strings.HasPrefix(ref.Ref, componentSchemaPrefix) {
			collection = collectionName(strings.TrimPrefix(ref.Ref, componentSchemaPrefix))
		}
		if collection == "" {
			return model.FieldSpec{}, false
		}
		field.Kind = model.KindReference
		field.Reference = &model.Reference{
			Collection:   collection,
			DisplayField: firstNonEmpty(hintString(hints, "displayField"), rel[relationshipDisplayAttr]),
		}
		field.Default = nil
		return field, true
	case schemaType(schema) == openapi3.TypeBoolean:
		field.Kind = model.KindBoolean
		return field, true
	}

	field.Kind = model.KindText
	switch schema.Format {
	case "date-time":
		field.Kind = model.KindDateTime
	case "date":
		field.Kind = model.KindDate
	case "email":
		field.Format = model.FormatEmail
		field.Validations = append(field.Validations, model.Email(""))
	case "password":
		field.Format = model.FormatPassword
	}
	if format := hintString(hints, "format"); format != "" {
		field.Format = format
	}
	switch schemaType(schema) {
	case openapi3.TypeInteger, openapi3.TypeNumber:
		field.Metadata = map[string]string{model.MetadataValueType: schemaType(schema)}
	}

	if schema.MinLength > 0 {
		field.Validations = append(field.Validations, model.MinLength(int(schema.MinLength), ""))
	}
	if schema.MaxLength != nil {
		field.Validations = append(field.Validations, model.MaxLength(int(*schema.MaxLength), ""))
	}
	if schema.Pattern != "" {
		field.Validations = append(field.Validations, model.Pattern(schema.Pattern, ""))
	}
	return field, true
}

func schemaType(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		return ""
	}
	for _, value := range schema.Type.Slice() {
		if value != openapi3.TypeNull {
			return value
		}
	}
	return ""
}

func isObject(schema *openapi3.Schema) bool {
	return schemaType(schema) == openapi3.TypeObject || (schema.Type == nil && len(schema.Properties) > 0)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
