// Package validation checks workflow definitions before save and
// deploy: structural shape via JSON Schema, semantic reference checks,
// and dependency-graph analysis.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// definitionSchemaJSON is the JSON Schema for WorkflowDefinition.
// Embedded as a constant to avoid filesystem dependencies.
const definitionSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://workflow-app.dev/schemas/definition.json",
  "type": "object",
  "required": ["nodes", "connections"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "connections": {
      "type": "array",
      "items": { "$ref": "#/$defs/connection" }
    },
    "variables": {
      "type": "array",
      "items": { "$ref": "#/$defs/variable" }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "type"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": { "type": "string", "minLength": 1 },
        "name": { "type": "string" },
        "position": {
          "type": "object",
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" }
          },
          "additionalProperties": false
        },
        "config": { "type": "object" },
        "data": {},
        "status": {
          "type": "string",
          "enum": ["", "idle", "running", "success", "failed"]
        }
      },
      "additionalProperties": false
    },
    "connection": {
      "type": "object",
      "required": ["id", "source", "target"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "source": { "type": "string", "minLength": 1 },
        "sourceHandle": { "type": "string" },
        "target": { "type": "string", "minLength": 1 },
        "targetHandle": { "type": "string" }
      },
      "additionalProperties": false
    },
    "variable": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": { "type": "string", "minLength": 1 },
        "value": { "type": "string" },
        "type": {
          "type": "string",
          "enum": ["", "string", "number", "boolean", "json"]
        },
        "description": { "type": "string" },
        "isSecret": { "type": "boolean" },
        "scope": { "type": "string" }
      },
      "additionalProperties": false
    }
  }
}`

// SchemaValidator validates definitions against the embedded JSON
// Schema. It is safe for concurrent use; the schema is compiled once.
type SchemaValidator struct {
	compiled *jsonschema.Schema
}

// NewSchemaValidator compiles the definition schema.
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(definitionSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal definition schema: %w", err)
	}
	if err := c.AddResource("https://workflow-app.dev/schemas/definition.json", doc); err != nil {
		return nil, fmt.Errorf("add definition schema resource: %w", err)
	}

	compiled, err := c.Compile("https://workflow-app.dev/schemas/definition.json")
	if err != nil {
		return nil, fmt.Errorf("compile definition schema: %w", err)
	}
	return &SchemaValidator{compiled: compiled}, nil
}

// Validate checks a definition's structural shape.
func (v *SchemaValidator) Validate(def *schema.WorkflowDefinition) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if def == nil {
		result.AddError("", schema.ErrCodeValidation, "workflow definition is nil")
		return result
	}

	doc, err := toJSONValue(def)
	if err != nil {
		result.AddError("", schema.ErrCodeValidation, "workflow definition is not JSON-encodable")
		return result
	}

	if err := v.compiled.Validate(doc); err != nil {
		for _, violation := range collectViolations(err) {
			result.AddError(violation.path, schema.ErrCodeValidation, violation.message)
		}
	}
	return result
}

type violation struct {
	path    string
	message string
}

// collectViolations walks a ValidationError tree and collects leaf
// messages with their instance locations.
func collectViolations(err error) []violation {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []violation{{path: "/", message: err.Error()}}
	}

	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []violation{{path: loc, message: verr.Error()}}
	}

	var out []violation
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}

// toJSONValue round-trips a Go value through JSON so numbers become
// json.Number, which the jsonschema library requires.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
}
