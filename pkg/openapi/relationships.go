package openapi

import (
	"strings"
	"unicode"
)

const (
	relationshipExtensionKey = "x-relationships"
	formExtensionKey         = "x-entityform"
	orderExtensionKey        = "x-entityform-order"

	relationshipTypeAttr    = "type"
	relationshipTargetAttr  = "target"
	relationshipDisplayAttr = "display"
	relationshipCardAttr    = "cardinality"
)

var relationshipKeyLookup = map[string]string{
	"type":         relationshipTypeAttr,
	"kind":         relationshipTypeAttr,
	"target":       relationshipTargetAttr,
	"collection":   relationshipTargetAttr,
	"display":      relationshipDisplayAttr,
	"displayfield": relationshipDisplayAttr,
	"labelfield":   relationshipDisplayAttr,
	"cardinality":  relationshipCardAttr,
}

// relationship reads the x-relationships extension into canonical keys.
// Unknown keys are dropped.
func relationship(ext map[string]any) map[string]string {
	raw, ok := ext[relationshipExtensionKey].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}

	out := make(map[string]string)
	for key, val := range raw {
		canonical, ok := relationshipKeyLookup[normaliseKey(key)]
		if !ok {
			continue
		}
		if str, ok := val.(string); ok && str != "" {
			out[canonical] = str
		}
	}
	if len(out) == 0 {
		return nil
	}
	if _, exists := out[relationshipCardAttr]; !exists {
		if card := deriveCardinality(out[relationshipTypeAttr]); card != "" {
			out[relationshipCardAttr] = card
		}
	}
	return out
}

func normaliseKey(raw string) string {
	var builder strings.Builder
	builder.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			builder.WriteRune(unicode.ToLower(r))
		}
	}
	return builder.String()
}

func deriveCardinality(relType string) string {
	switch strings.ToLower(relType) {
	case "belongsto", "hasone", "manytoone", "onetoone":
		return "one"
	case "hasmany", "onetomany", "manytomany":
		return "many"
	default:
		return ""
	}
}

// formHints reads the per-property x-entityform extension.
func formHints(ext map[string]any) map[string]any {
	hints, _ := ext[formExtensionKey].(map[string]any)
	return hints
}

func hintString(hints map[string]any, key string) string {
	value, _ := hints[key].(string)
	return strings.TrimSpace(value)
}

func hintBool(hints map[string]any, key string) bool {
	value, _ := hints[key].(bool)
	return value
}

// fieldOrder reads the schema-level x-entityform-order extension.
func fieldOrder(ext map[string]any) []string {
	raw, ok := ext[orderExtensionKey].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if name, ok := item.(string); ok && name != "" {
			out = append(out, name)
		}
	}
	return out
}

// entityName converts a schema name into the kebab-case entity name used for
// routes and collections: CadastroDoacao becomes cadastro-doacao.
func entityName(schema string) string {
	var builder strings.Builder
	runes := []rune(schema)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				builder.WriteByte('-')
			}
			builder.WriteRune(unicode.ToLower(r))
			continue
		}
		if r == '_' || r == ' ' {
			builder.WriteByte('-')
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// collectionName pluralises an entity name the way generated REST resources
// do: cadastro-doacao becomes cadastro-doacaos.
func collectionName(schema string) string {
	return entityName(schema) + "s"
}

// humanize turns a camelCase property name into a label: dataCriacao becomes
// "Data Criacao".
func humanize(name string) string {
	var builder strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case i == 0:
			builder.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			builder.WriteByte(' ')
			builder.WriteRune(r)
		case r == '_' || r == '-':
			builder.WriteByte(' ')
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}
