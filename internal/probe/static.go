package probe

import "github.com/szaher/layermake/internal/target"

// Static answers from a fixed map: names absent from Ready are not ready.
// Used in tests and as the base for pure graph checks.
type Static struct {
	Ready map[string]bool
	Paths map[string]string
}

// NewStatic creates a static probe over fixed readiness answers.
func NewStatic(ready map[string]bool) *Static {
	return &Static{Ready: ready}
}

// IsReady implements Probe.
func (p *Static) IsReady(t *target.Target) (bool, error) {
	return p.Ready[t.Name], nil
}

// ArtifactPath implements Probe.
func (p *Static) ArtifactPath(t *target.Target) string {
	return p.Paths[t.Name]
}

// Override forces readiness answers for selected targets on top of a base
// probe. It backs the --assume / --deny CLI flags.
type Override struct {
	Base   Probe
	Forced map[string]bool
}

// NewOverride wraps base, forcing assume names ready and deny names not
// ready. A name in both lists ends up denied.
func NewOverride(base Probe, assume, deny []string) *Override {
	forced := make(map[string]bool, len(assume)+len(deny))
	for _, name := range assume {
		forced[name] = true
	}
	for _, name := range deny {
		forced[name] = false
	}
	return &Override{Base: base, Forced: forced}
}

// IsReady implements Probe.
func (p *Override) IsReady(t *target.Target) (bool, error) {
	if ready, ok := p.Forced[t.Name]; ok {
		return ready, nil
	}
	return p.Base.IsReady(t)
}

// ArtifactPath implements Probe.
func (p *Override) ArtifactPath(t *target.Target) string {
	return p.Base.ArtifactPath(t)
}
