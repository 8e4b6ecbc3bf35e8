package expressions

import "context"

// Engine validates and evaluates condition expressions at authoring time.
// Three implementations: CEL (default for condition nodes), Expr (logic),
// GoJQ (data filters).
type Engine interface {
	Name() string
	// Compile checks an expression without evaluating it; used by the
	// validation pipeline.
	Compile(expression string) error
	Evaluate(ctx context.Context, expression string, data map[string]any) (any, error)
}

// Engines returns the registry of available engines keyed by language name.
// Construction errors (CEL env) surface once here.
func Engines() (map[string]Engine, error) {
	celEngine, err := NewCELEngine()
	if err != nil {
		return nil, err
	}
	registry := map[string]Engine{}
	for _, e := range []Engine{celEngine, NewExprEngine(), NewGoJQEngine()} {
		registry[e.Name()] = e
	}
	return registry, nil
}

// DefaultLanguage is the condition language assumed when a node's config
// does not name one.
const DefaultLanguage = "cel"
