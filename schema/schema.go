// Package schema validates inbound JSON bodies against a JSON Schema subset.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Schema is a decoded JSON Schema document.
type Schema = map[string]any

// Validate checks a document against a JSON Schema (draft-07 subset).
// Returns nil if validation passes or the schema is nil.
//
// Supported JSON Schema keywords:
//   - type (string, number, integer, boolean, object, array, null)
//   - properties, required
//   - items (for arrays)
//   - minLength
//   - enum
func Validate(schema Schema, doc map[string]any) error {
	if schema == nil {
		return nil
	}
	return validateValue(schema, doc, "$")
}

func validateValue(schema Schema, value any, path string) error {
	if t, ok := schema["type"].(string); ok {
		if err := checkType(t, value, path); err != nil {
			return err
		}
	}

	if enumList, ok := schema["enum"].([]any); ok {
		if err := checkEnum(enumList, value, path); err != nil {
			return err
		}
	}

	switch v := value.(type) {
	case map[string]any:
		return validateObject(schema, v, path)
	case []any:
		return validateArray(schema, v, path)
	case string:
		return validateString(schema, v, path)
	}
	return nil
}

func checkType(expected string, value any, path string) error {
	actual := jsonType(value)
	switch {
	case actual == expected:
		return nil
	case expected == "number" && actual == "integer":
		return nil
	case expected == "integer" && actual == "number" && isWhole(value):
		return nil
	}
	return fmt.Errorf("%s: expected type %q, got %q", path, expected, actual)
}

func jsonType(v any) string {
	if v == nil {
		return "null"
	}
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, json.Number:
		return "number"
	case int, int64:
		return "integer"
	default:
		return reflect.TypeOf(v).String()
	}
}

func isWhole(v any) bool {
	switch n := v.(type) {
	case float64:
		return n == float64(int64(n))
	case json.Number:
		_, err := n.Int64()
		return err == nil
	}
	return false
}

func checkEnum(allowed []any, value any, path string) error {
	for _, a := range allowed {
		if reflect.DeepEqual(a, value) {
			return nil
		}
	}
	return fmt.Errorf("%s: value %v not in enum %v", path, value, allowed)
}

func validateObject(schema Schema, obj map[string]any, path string) error {
	if reqList, ok := schema["required"].([]any); ok {
		for _, r := range reqList {
			field, ok := r.(string)
			if !ok {
				continue
			}
			if _, exists := obj[field]; !exists {
				return fmt.Errorf("%s: missing required field %q", path, field)
			}
		}
	}

	props, _ := schema["properties"].(map[string]any)
	for field, propSchema := range props {
		val, exists := obj[field]
		if !exists {
			continue
		}
		ps, ok := propSchema.(map[string]any)
		if !ok {
			continue
		}
		if err := validateValue(ps, val, path+"."+field); err != nil {
			return err
		}
	}
	return nil
}

func validateArray(schema Schema, arr []any, path string) error {
	itemSchema, ok := schema["items"].(map[string]any)
	if !ok {
		return nil
	}
	for i, elem := range arr {
		if err := validateValue(itemSchema, elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateString(schema Schema, s string, path string) error {
	if v, ok := toFloat(schema["minLength"]); ok && float64(len(s)) < v {
		return fmt.Errorf("%s: string length %d is less than minLength %v", path, len(s), v)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
