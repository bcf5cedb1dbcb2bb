package probe

import "github.com/szaher/layermake/internal/target"

// Report is one target's probed state within a snapshot.
type Report struct {
	Ready bool
	Path  string
}

// Snapshot memoizes probe answers for one resolution run, guaranteeing at
// most one underlying IsReady call per target and a stable view for the
// whole run. Errors are memoized too. Not safe for concurrent use; each
// run owns its snapshot.
type Snapshot struct {
	base    Probe
	reports map[string]Report
	errs    map[string]error
}

// NewSnapshot creates an empty snapshot over base.
func NewSnapshot(base Probe) *Snapshot {
	return &Snapshot{
		base:    base,
		reports: make(map[string]Report),
		errs:    make(map[string]error),
	}
}

// Report probes the target once and replays the answer afterwards.
func (s *Snapshot) Report(t *target.Target) (Report, error) {
	if err, ok := s.errs[t.Name]; ok {
		return Report{}, err
	}
	if r, ok := s.reports[t.Name]; ok {
		return r, nil
	}

	ready, err := s.base.IsReady(t)
	if err != nil {
		s.errs[t.Name] = err
		return Report{}, err
	}
	r := Report{Ready: ready, Path: s.base.ArtifactPath(t)}
	s.reports[t.Name] = r
	return r, nil
}
