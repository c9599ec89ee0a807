package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// hintKinds lists the keys accepted inside x-entityform and whether each
// expects a boolean.
var hintKinds = map[string]bool{
	"label":        false,
	"placeholder":  false,
	"format":       false,
	"displayField": false,
	"defaultNow":   true,
}

// Violation reports one unsupported or malformed form extension.
type Violation struct {
	Schema   string
	Property string
	Message  string
}

// Location renders the schema and property path of the violation.
func (v Violation) Location() string {
	if v.Property == "" {
		return v.Schema
	}
	return v.Schema + " > " + v.Property
}

func (v Violation) String() string {
	return v.Location() + " -> " + v.Message
}

// AllowedHintKeys returns the keys accepted inside x-entityform, sorted.
func AllowedHintKeys() []string {
	keys := make([]string, 0, len(hintKinds))
	for key := range hintKinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Lint checks the form extensions of every entity schema. Violations are
// sorted by schema, property and message.
func (d *Document) Lint() []Violation {
	var out []Violation
	for _, name := range d.Entities() {
		schema := d.schemas()[name].Value
		out = append(out, lintOrder(name, schema)...)
		for prop, ref := range schema.Properties {
			if ref == nil || ref.Value == nil || ref.Ref != "" {
				continue
			}
			out = append(out, lintProperty(name, prop, ref.Value)...)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Schema != out[j].Schema {
			return out[i].Schema < out[j].Schema
		}
		if out[i].Property != out[j].Property {
			return out[i].Property < out[j].Property
		}
		return out[i].Message < out[j].Message
	})
	return out
}

func lintOrder(name string, schema *openapi3.Schema) []Violation {
	raw, ok := schema.Extensions[orderExtensionKey]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return []Violation{{Schema: name, Message: fmt.Sprintf("%s must be a list, found %T", orderExtensionKey, raw)}}
	}
	var out []Violation
	for _, item := range items {
		prop, ok := item.(string)
		if !ok {
			out = append(out, Violation{Schema: name, Message: fmt.Sprintf("%s entries must be strings, found %T", orderExtensionKey, item)})
			continue
		}
		if _, exists := schema.Properties[prop]; !exists {
			out = append(out, Violation{Schema: name, Message: fmt.Sprintf("%s names unknown property %q", orderExtensionKey, prop)})
		}
	}
	return out
}

func lintProperty(name, prop string, schema *openapi3.Schema) []Violation {
	var out []Violation
	if raw, ok := schema.Extensions[formExtensionKey]; ok {
		hints, ok := raw.(map[string]any)
		if !ok {
			return append(out, Violation{Schema: name, Property: prop, Message: fmt.Sprintf("%s must be an object, found %T", formExtensionKey, raw)})
		}
		for key, value := range hints {
			wantBool, known := hintKinds[key]
			switch {
			case !known:
				out = append(out, Violation{Schema: name, Property: prop, Message: fmt.Sprintf("unsupported %s key %q (supported: %s)", formExtensionKey, key, strings.Join(AllowedHintKeys(), ", "))})
			case wantBool:
				if _, ok := value.(bool); !ok {
					out = append(out, Violation{Schema: name, Property: prop, Message: fmt.Sprintf("value for %q must be a boolean (got %T)", key, value)})
				}
			default:
				if _, ok := value.(string); !ok {
					out = append(out, Violation{Schema: name, Property: prop, Message: fmt.Sprintf("value for %q must be a string (got %T)", key, value)})
				}
			}
		}
	}
	if raw, ok := schema.Extensions[relationshipExtensionKey]; ok {
		rel, ok := raw.(map[string]any)
		if !ok {
			return append(out, Violation{Schema: name, Property: prop, Message: fmt.Sprintf("%s must be an object, found %T", relationshipExtensionKey, raw)})
		}
		for key := range rel {
			if _, known := relationshipKeyLookup[normaliseKey(key)]; !known {
				out = append(out, Violation{Schema: name, Property: prop, Message: fmt.Sprintf("unsupported %s key %q", relationshipExtensionKey, key)})
			}
		}
	}
	return out
}
