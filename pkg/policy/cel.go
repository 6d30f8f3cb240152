package policy

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"github.com/funvibe/proxykit/pkg/proxy"
)

// CEL compiles a boolean CEL expression over the variable method, a map
// with the keys:
//
//	name        string
//	params      list of parameter type names
//	result      result type name, "" for none
//	visibility  "public", "protected", ...
//	declaring   declaring type name
//	origin      "base" or "contract"
//	default     bool, the method has a body
//	abstract    bool
//
// For example: method.name.startsWith("Get") && size(method.params) == 1.
// A candidate whose evaluation fails does not match.
func CEL(expr string) (Matcher, error) {
	env, err := cel.NewEnv(
		cel.Variable("method", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) && !ast.OutputType().IsExactType(cel.DynType) {
		return nil, fmt.Errorf("CEL expression %q must be boolean, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program error: %w", err)
	}
	logger := slog.Default().With("component", "policy")
	return func(m *proxy.Candidate) bool {
		out, _, err := prg.Eval(map[string]any{"method": Attributes(m)})
		if err != nil {
			logger.Debug("CEL eval failed", "expr", expr, "method", m.String(), "error", err)
			return false
		}
		ok, _ := out.Value().(bool)
		return ok
	}, nil
}

// Attributes returns the attribute map CEL expressions see for m.
func Attributes(m *proxy.Candidate) map[string]any {
	params := make([]string, 0, m.Method.NumParams())
	for _, p := range m.Params() {
		params = append(params, p.String())
	}
	result := ""
	if r := m.Result(); r != nil {
		result = r.String()
	}
	return map[string]any{
		"name":       m.Name(),
		"params":     params,
		"result":     result,
		"visibility": m.Visibility().String(),
		"declaring":  m.DeclaringType().Name(),
		"origin":     m.Origin.String(),
		"default":    m.HasDefault(),
		"abstract":   m.Method.IsAbstract(),
	}
}
