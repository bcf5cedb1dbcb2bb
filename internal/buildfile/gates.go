package buildfile

import (
	"fmt"

	"github.com/szaher/layermake/internal/expr"
	"github.com/szaher/layermake/internal/vars"
)

// ApplyGates evaluates each target's when: expression against the machine
// vars and drops targets whose gate is false. Targets without a gate always
// pass. Returns the names of dropped targets.
func (f *File) ApplyGates(v vars.Map) ([]string, error) {
	env := expr.GateEnv(v)

	var dropped []string
	kept := f.Targets[:0]
	for _, t := range f.Targets {
		if t.When == "" {
			kept = append(kept, t)
			continue
		}
		compiled, err := expr.Compile(t.When)
		if err != nil {
			return nil, fmt.Errorf("buildfile: target %q: when: %w", t.Name, err)
		}
		ok, err := compiled.EvalBool(env)
		if err != nil {
			return nil, fmt.Errorf("buildfile: target %q: when: %w", t.Name, err)
		}
		if ok {
			kept = append(kept, t)
		} else {
			dropped = append(dropped, t.Name)
		}
	}
	f.Targets = kept
	return dropped, nil
}
