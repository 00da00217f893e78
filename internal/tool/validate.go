package tool

import (
	"encoding/json"
	"fmt"
)

// ValidateInput checks raw JSON input against a tool's schema before
// execution: required fields present, primitive types correct, enum values
// respected. Malformed input is rejected here, not inside the tool.
func ValidateInput(schema Schema, input json.RawMessage) error {
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(input, &fields); err != nil {
		return fmt.Errorf("input is not a JSON object: %w", err)
	}

	for _, name := range schema.Required {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("missing required field %q", name)
		}
	}

	for name, raw := range fields {
		prop, ok := schema.Properties[name]
		if !ok {
			// Unknown fields are tolerated; models occasionally add extras.
			continue
		}
		if err := checkType(name, prop, raw); err != nil {
			return err
		}
	}
	return nil
}

func checkType(name string, prop Property, raw json.RawMessage) error {
	switch prop.Type {
	case "string":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("field %q must be a string", name)
		}
		if len(prop.Enum) > 0 && !contains(prop.Enum, s) {
			return fmt.Errorf("field %q must be one of %v", name, prop.Enum)
		}
	case "number", "integer":
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return fmt.Errorf("field %q must be a number", name)
		}
		if prop.Type == "integer" && f != float64(int64(f)) {
			return fmt.Errorf("field %q must be an integer", name)
		}
	case "boolean":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("field %q must be a boolean", name)
		}
	case "object":
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("field %q must be an object", name)
		}
	case "array":
		var a []json.RawMessage
		if err := json.Unmarshal(raw, &a); err != nil {
			return fmt.Errorf("field %q must be an array", name)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
