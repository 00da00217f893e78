// Package tool defines the contract every agent capability satisfies and the
// registry that dispatches model-requested invocations to implementations.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
)

// Property describes a single input field.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// Schema is the JSON-Schema subset used to validate tool input.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Descriptor is a tool's static metadata: unique name, human-readable
// description, and input schema. Immutable after registration.
type Descriptor struct {
	Name        string
	Description string
	InputSchema Schema
}

// Result is the outcome of one tool invocation. Exactly one of Output/Error is
// meaningful depending on Success.
type Result struct {
	Success bool
	Output  string
	Error   string
}

// Ok builds a successful result.
func Ok(output string) *Result {
	return &Result{Success: true, Output: output}
}

// Errorf builds a failed result.
func Errorf(format string, args ...any) *Result {
	return &Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Text returns the result payload to feed back to the model.
func (r *Result) Text() string {
	if r.Success {
		return r.Output
	}
	return r.Error
}

// Tool is a callable capability the model may invoke.
type Tool interface {
	// Descriptor returns the tool's static metadata.
	Descriptor() Descriptor
	// Execute runs the tool with validated JSON input. A returned error means
	// the execution itself blew up; declared failures use Result.Success=false.
	Execute(ctx context.Context, input json.RawMessage) (*Result, error)
}

// ObjectSchema builds the common object schema shape.
func ObjectSchema(props map[string]Property, required ...string) Schema {
	return Schema{Type: "object", Properties: props, Required: required}
}
