package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-entityform/pkg/entity"
)

// ContentType reports the serialization format used by Summary.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/yaml"
	default:
		return "application/json"
	}
}

// Summary serializes values in the configured output format.
func (r *Renderer) Summary(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		out, err := yaml.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: encode yaml: %w", err)
		}
		return out, nil
	default:
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode json: %w", err)
		}
		return append(out, '\n'), nil
	}
}

func flattenForm(values map[string]any) string {
	out := url.Values{}
	flatten("", values, out)
	return out.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, v[k], out)
		}
	case entity.Entity:
		flatten(prefix, map[string]any(v), out)
	case nil:
		out.Add(prefix, "")
	case string:
		out.Add(prefix, v)
	default:
		out.Add(prefix, entity.IDString(v))
	}
}
