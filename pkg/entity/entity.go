// Package entity holds the generic record representation exchanged with the
// remote store: a mapping from field name to value with a distinguished `id`.
package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// IDField is the distinguished identifier field.
const IDField = "id"

// Entity maps field names to values. Values are whatever the wire decoding
// produced: strings, booleans, numbers, nested maps for embedded references.
type Entity map[string]any

// ID returns the identifier as a string, or "" when absent.
func (e Entity) ID() string {
	if e == nil {
		return ""
	}
	return IDString(e[IDField])
}

// IsNew reports whether the entity has not been persisted yet.
func (e Entity) IsNew() bool {
	return e.ID() == ""
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	if e == nil {
		return nil
	}
	out := make(Entity, len(e))
	for k, v := range e {
		out[k] = deepCopy(v)
	}
	return out
}

// ReferenceID extracts the bare id of the embedded reference stored under
// field. It accepts either an embedded object ({"id": 7}) or a bare id.
func (e Entity) ReferenceID(field string) string {
	if e == nil {
		return ""
	}
	switch ref := e[field].(type) {
	case nil:
		return ""
	case map[string]any:
		return IDString(ref[IDField])
	case Entity:
		return ref.ID()
	default:
		return IDString(ref)
	}
}

// Text renders a scalar field as a string; missing or nil values yield "".
func (e Entity) Text(field string) string {
	if e == nil {
		return ""
	}
	switch v := e[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return IDString(v)
	}
}

// Bool reads a boolean field, accepting string encodings.
func (e Entity) Bool(field string) bool {
	if e == nil {
		return false
	}
	switch v := e[field].(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(v))
		return parsed
	default:
		return false
	}
}

// IDString normalises identifier values so ids decoded from JSON (float64),
// json.Number, integers and strings compare equal: 7, 7.0, "7" all yield "7".
func IDString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return IDString(string(v))
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return IDString(float64(v))
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Find returns the entity whose id matches the given id.
func Find(list []Entity, id string) (Entity, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	for _, item := range list {
		if item.ID() == id {
			return item, true
		}
	}
	return nil, false
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case Entity:
		return typed.Clone()
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}
