// Package fielderrors maps the field errors reported by a REST backend onto
// the fields of a form.
package fielderrors

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-entityform/pkg/model"
)

// Mapping holds server messages split by destination.
type Mapping struct {
	// Fields is keyed by form field name.
	Fields map[string][]string
	// Form holds messages no field claims.
	Form []string
}

// envelopes are leading path segments servers wrap request bodies in.
var envelopes = map[string]bool{
	"body":       true,
	"request":    true,
	"payload":    true,
	"data":       true,
	"attributes": true,
}

// Map assigns every path of payload to a field of form. Paths may be plain
// names ("observacoes"), prefixed with the DTO name ("acao.dataCriacao",
// "acaoDTO.dataCriacao"), JSON pointers ("/body/cadastroDoacao/id") or
// indexed. A path into an embedded reference resolves to the reference field.
// Messages of paths that match no field become form-level messages.
func Map(form model.FormSpec, payload map[string][]string) Mapping {
	var out Mapping
	for path, messages := range payload {
		messages = Normalize(messages)
		if len(messages) == 0 {
			continue
		}
		field, ok := Resolve(form, path)
		if !ok {
			out.Form = append(out.Form, messages...)
			continue
		}
		if out.Fields == nil {
			out.Fields = make(map[string][]string)
		}
		out.Fields[field] = Normalize(append(out.Fields[field], messages...))
	}
	out.Form = Normalize(out.Form)
	return out
}

// Resolve returns the form field a server error path refers to.
func Resolve(form model.FormSpec, path string) (string, bool) {
	segments := split(path)
	if len(segments) == 0 || isFormKey(segments[0]) {
		return "", false
	}
	if _, ok := form.Field(segments[0]); ok {
		return segments[0], true
	}

	entity := strings.ToLower(form.Entity)
	compact := strings.ReplaceAll(entity, "-", "")
	for _, segment := range segments {
		lower := strings.ToLower(segment)
		switch {
		case envelopes[lower], lower == entity, lower == compact, lower == compact+"dto":
			continue
		case isIndex(segment):
			continue
		}
		if _, ok := form.Field(segment); ok {
			return segment, true
		}
		return "", false
	}
	return "", false
}

// Normalize trims messages and drops blanks and repeats, keeping order.
func Normalize(messages []string) []string {
	var out []string
	seen := make(map[string]bool, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(message)
		if message == "" || seen[message] {
			continue
		}
		seen[message] = true
		out = append(out, message)
	}
	return out
}

// Merge appends extras to existing and normalizes the result.
func Merge(existing []string, extras ...string) []string {
	all := make([]string, 0, len(existing)+len(extras))
	all = append(all, existing...)
	return Normalize(append(all, extras...))
}

func split(path string) []string {
	parts := strings.FieldsFunc(strings.TrimSpace(path), func(r rune) bool {
		switch r {
		case '.', '/', '[', ']', '#', '$':
			return true
		}
		return false
	})
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, strings.NewReplacer("~1", "/", "~0", "~").Replace(part))
	}
	return out
}

func isIndex(segment string) bool {
	_, err := strconv.Atoi(segment)
	return err == nil
}

func isFormKey(segment string) bool {
	switch strings.ToLower(segment) {
	case "form", "base", "global", "__all__", "non_field_errors", "non-field-errors":
		return true
	}
	return false
}
