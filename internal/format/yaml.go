package format

import (
	"encoding/json"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes v as a YAML document using its json field names.
func WriteYAML(w io.Writer, v any) error {
	x, err := generic(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlValue(x)); err != nil {
		return err
	}
	return enc.Close()
}

// yamlValue replaces json.Number, which yaml.v3 would quote as a string.
func yamlValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(t.String(), 64); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = yamlValue(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = yamlValue(x)
		}
		return out
	}
	return v
}

// DecodeYAML reads a YAML document into v through its json tags, so types
// with custom JSON encodings round-trip through YAML as well.
func DecodeYAML(r io.Reader, v any) error {
	var x any
	if err := yaml.NewDecoder(r).Decode(&x); err != nil {
		return err
	}
	b, err := json.Marshal(jsonValue(x))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// jsonValue turns yaml.v3's map[string]any and map[any]any trees into
// something encoding/json accepts.
func jsonValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = jsonValue(x)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[toString(k)] = jsonValue(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = jsonValue(x)
		}
		return out
	}
	return v
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	b, _ := json.Marshal(v)
	return string(b)
}
