// Package variables manages workflow-scoped named values usable in
// expressions as {{variables.<name>}}. Secret values render masked
// everywhere a human sees them but resolve to their real value during
// expression evaluation.
package variables

import (
	"encoding/json"
	"strconv"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// Store holds a workflow's variables in definition order.
type Store struct {
	vars  map[string]*schema.Variable
	order []string
}

// NewStore creates an empty variable store.
func NewStore() *Store {
	return &Store{vars: make(map[string]*schema.Variable)}
}

// Define adds a variable. Names are unique; redefining an existing name
// fails with CONFLICT. An empty type defaults to string, an empty scope
// to workflow.
func (s *Store) Define(v schema.Variable) error {
	if v.Name == "" {
		return schema.NewError(schema.ErrCodeValidation, "variable name is required")
	}
	if _, ok := s.vars[v.Name]; ok {
		return schema.NewErrorf(schema.ErrCodeConflict,
			"variable %q already exists", v.Name)
	}
	if v.Type == "" {
		v.Type = schema.VariableString
	}
	if v.Scope == "" {
		v.Scope = schema.ScopeWorkflow
	}
	s.vars[v.Name] = &v
	s.order = append(s.order, v.Name)
	return nil
}

// Update replaces an existing variable's fields, keeping its position.
func (s *Store) Update(name string, v schema.Variable) error {
	if _, ok := s.vars[name]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "variable %q not found", name)
	}
	v.Name = name
	if v.Type == "" {
		v.Type = schema.VariableString
	}
	if v.Scope == "" {
		v.Scope = schema.ScopeWorkflow
	}
	s.vars[name] = &v
	return nil
}

// Delete removes a variable by name.
func (s *Store) Delete(name string) error {
	if _, ok := s.vars[name]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "variable %q not found", name)
	}
	delete(s.vars, name)
	out := s.order[:0]
	for _, n := range s.order {
		if n != name {
			out = append(out, n)
		}
	}
	s.order = out
	return nil
}

// Get returns a variable by name.
func (s *Store) Get(name string) (schema.Variable, bool) {
	v, ok := s.vars[name]
	if !ok {
		return schema.Variable{}, false
	}
	return *v, true
}

// List returns all variables in definition order.
func (s *Store) List() []schema.Variable {
	out := make([]schema.Variable, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.vars[name])
	}
	return out
}

// Rendered returns the variables for display: secret values are
// replaced with the mask. Order matches List.
func (s *Store) Rendered() []schema.Variable {
	out := s.List()
	for i := range out {
		if out[i].IsSecret {
			out[i].Value = schema.SecretMask
		}
	}
	return out
}

// TypedValue converts a variable's raw string value per its declared
// type. Values that fail to parse degrade to the raw string rather
// than erroring; the editor never blocks on a malformed variable.
func TypedValue(v schema.Variable) any {
	switch v.Type {
	case schema.VariableNumber:
		if f, err := strconv.ParseFloat(v.Value, 64); err == nil {
			return f
		}
		return v.Value
	case schema.VariableBoolean:
		if b, err := strconv.ParseBool(v.Value); err == nil {
			return b
		}
		return v.Value
	case schema.VariableJSON:
		var decoded any
		if err := json.Unmarshal([]byte(v.Value), &decoded); err == nil {
			return decoded
		}
		return v.Value
	default:
		return v.Value
	}
}

// ContextLayer builds the variables layer for expression scopes. Real
// values, secrets included; masking is a display concern only.
func (s *Store) ContextLayer() map[string]any {
	layer := make(map[string]any, len(s.order))
	for _, name := range s.order {
		layer[name] = TypedValue(*s.vars[name])
	}
	return layer
}

// Load replaces the store's contents from a persisted definition.
func (s *Store) Load(vars []schema.Variable) {
	s.vars = make(map[string]*schema.Variable, len(vars))
	s.order = s.order[:0]
	for i := range vars {
		v := vars[i]
		if v.Type == "" {
			v.Type = schema.VariableString
		}
		if v.Scope == "" {
			v.Scope = schema.ScopeWorkflow
		}
		if _, ok := s.vars[v.Name]; ok {
			continue
		}
		s.vars[v.Name] = &v
		s.order = append(s.order, v.Name)
	}
}
