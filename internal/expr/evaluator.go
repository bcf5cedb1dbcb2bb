package expr

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"

	"github.com/szaher/layermake/internal/target"
)

// EvalBool evaluates a compiled expression against env and requires a
// boolean result.
func (c *CompiledExpr) EvalBool(env map[string]interface{}) (bool, error) {
	if c == nil || c.program == nil {
		return false, fmt.Errorf("nil compiled expression")
	}

	result, err := expr.Run(c.program, env)
	if err != nil {
		return false, fmt.Errorf("expression eval error for %q: %w", c.Source, err)
	}

	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %T, expected bool", c.Source, result)
	}
	return b, nil
}

// GateEnv builds the environment for build-file when: gates: the machine
// vars under `vars` and an env(NAME) lookup over the process environment.
func GateEnv(vars map[string]string) map[string]interface{} {
	vm := make(map[string]interface{}, len(vars))
	for k, v := range vars {
		vm[k] = v
	}
	return map[string]interface{}{
		"vars": vm,
		"env": func(name string) string {
			return os.Getenv(name)
		},
	}
}

// FilterEnv builds the environment for --filter expressions over one target.
func FilterEnv(t *target.Target) map[string]interface{} {
	return map[string]interface{}{
		"name":      t.Name,
		"essential": t.Essential,
		"abstract":  t.Abstract(),
		"depends":   t.Depends,
		"provides":  t.Provides,
		"source":    t.Source,
	}
}
