package html

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"

	"github.com/flosch/pongo2/v6"
)

// Executor runs a named template against a data context.
type Executor interface {
	Execute(name string, data map[string]any) ([]byte, error)
}

// pongoExecutor loads templates from an fs.FS through a pongo2 set. Includes
// resolve relative to the including template.
type pongoExecutor struct {
	set *pongo2.TemplateSet
}

func newPongoExecutor(files fs.FS) *pongoExecutor {
	set := pongo2.NewSet("entityform-html", pongo2.NewFSLoader(files))
	return &pongoExecutor{set: set}
}

func (e *pongoExecutor) Execute(name string, data map[string]any) ([]byte, error) {
	tmpl, err := e.set.FromCache(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(pongo2.Context(data), &buf); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// templateData converts value to plain maps keyed by JSON names so templates
// write view.heading_id rather than Go field names. Integral numbers stay
// integers.
func templateData(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return plainNumbers(out), nil
}

func plainNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return f
	case map[string]any:
		for key, item := range v {
			v[key] = plainNumbers(item)
		}
	case []any:
		for i, item := range v {
			v[i] = plainNumbers(item)
		}
	}
	return value
}
