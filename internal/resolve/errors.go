package resolve

import (
	"fmt"
	"strings"
)

// UnknownReferenceError reports a depends entry or requested name that no
// target declares or provides. From is empty when the request itself named
// the missing target.
type UnknownReferenceError struct {
	From string
	Name string
}

func (e *UnknownReferenceError) Error() string {
	if e.From == "" {
		return fmt.Sprintf("unknown target %q requested", e.Name)
	}
	return fmt.Sprintf("target %q depends on unknown name %q", e.From, e.Name)
}

// CycleError reports a dependency cycle. Path starts and ends with the
// re-entered name, e.g. [A B A].
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// ProbeError reports a readiness probe failure. Probe failures abort the
// whole resolution: a plan over an unknown environment snapshot would not
// be meaningful.
type ProbeError struct {
	Target string
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("readiness probe failed for %q: %v", e.Target, e.Err)
}

func (e *ProbeError) Unwrap() error {
	return e.Err
}
