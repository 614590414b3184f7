package sfawire

import (
	"bytes"
	"encoding/json"

	"github.com/iancoleman/strcase"
)

// SnakeJSON re-encodes a JSON document with every object key in snake_case
func SnakeJSON(data []byte) ([]byte, error) {
	return rekey(data, strcase.ToSnake)
}

// CamelJSON re-encodes a JSON document with every object key in lowerCamelCase
func CamelJSON(data []byte) ([]byte, error) {
	return rekey(data, strcase.ToLowerCamel)
}

func rekey(data []byte, conv func(string) string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return json.Marshal(convertKeys(v, conv))
}

// convertKeys walks decoded JSON and renames object keys. String values,
// including embedded JSON strings, are left untouched.
func convertKeys(v any, conv func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[conv(k)] = convertKeys(val, conv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = convertKeys(val, conv)
		}
		return out
	default:
		return v
	}
}

// Marshal encodes v with its camelCase tags and converts the keys to snake_case
func Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return SnakeJSON(data)
}

// Unmarshal converts snake_case keys back to camelCase and decodes into v
func Unmarshal(data []byte, v any) error {
	camel, err := CamelJSON(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(camel, v)
}
