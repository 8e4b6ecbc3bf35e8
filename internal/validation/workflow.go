package validation

import (
	"github.com/abdsal1508/workflow-app/internal/catalog"
	"github.com/abdsal1508/workflow-app/internal/expressions"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// Validator runs the full definition validation pipeline:
// JSON Schema shape, then semantic reference checks, then graph
// analysis. Structural failures stop the pipeline; the later stages
// assume a well-shaped definition.
type Validator struct {
	schema  *SchemaValidator
	cat     *catalog.Catalog
	engines map[string]expressions.Engine
}

// NewValidator builds a pipeline validator. cat may be nil to skip
// node-type checks.
func NewValidator(cat *catalog.Catalog) (*Validator, error) {
	sv, err := NewSchemaValidator()
	if err != nil {
		return nil, err
	}
	engines, err := expressions.Engines()
	if err != nil {
		return nil, err
	}
	return &Validator{schema: sv, cat: cat, engines: engines}, nil
}

// Validate runs all stages and aggregates their issues.
func (v *Validator) Validate(def *schema.WorkflowDefinition) *schema.ValidationResult {
	result := v.schema.Validate(def)
	if !result.Valid() {
		return result
	}

	result.Merge(checkSemantics(def, v.cat, v.engines))
	result.Merge(checkDAG(def))
	return result
}
