// Package probe implements the readiness check used during resolution: the
// duck-typing test of whether a target's backing artifact is actually
// present on this machine.
package probe

import (
	"fmt"
	"os"

	"github.com/szaher/layermake/internal/target"
	"github.com/szaher/layermake/internal/vars"
)

// Probe reports whether a target's backing artifact exists. The resolver
// calls IsReady at most once per target per run through a Snapshot.
type Probe interface {
	IsReady(t *target.Target) (bool, error)
	// ArtifactPath returns the substituted artifact path for display and
	// queue entries, "" for abstract targets.
	ArtifactPath(t *target.Target) string
}

// FS probes the filesystem: the target's exists template is substituted
// with the machine vars and stat'ed. Targets without an artifact template
// are never ready.
type FS struct {
	Vars vars.Map
}

// NewFS creates a filesystem probe over the given substitution vars.
func NewFS(v vars.Map) *FS {
	return &FS{Vars: v}
}

// IsReady implements Probe.
func (p *FS) IsReady(t *target.Target) (bool, error) {
	if t.Exists == "" {
		return false, nil
	}
	path, err := vars.Expand(t.Exists, p.Vars)
	if err != nil {
		return false, fmt.Errorf("probing %s: %w", t.Name, err)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("probing %s at %s: %w", t.Name, path, err)
	}
	return true, nil
}

// ArtifactPath implements Probe. Expansion failures yield "" here; IsReady
// is the error-reporting path.
func (p *FS) ArtifactPath(t *target.Target) string {
	if t.Exists == "" {
		return ""
	}
	path, err := vars.Expand(t.Exists, p.Vars)
	if err != nil {
		return ""
	}
	return path
}
