// Package resolve implements the resolution engine: depth-first post-order
// expansion of requested names over the capability index, with duck-typed
// selection of capability providers by readiness, exhaustive ambiguity
// collection, and cycle and reference checking.
package resolve

import (
	"github.com/szaher/layermake/internal/probe"
	"github.com/szaher/layermake/internal/registry"
	"github.com/szaher/layermake/internal/target"
)

// DefaultTarget is substituted when the request list is empty.
const DefaultTarget = "default"

type state int

const (
	stateUnresolved state = iota
	stateResolving
	stateResolved
	stateAmbiguous
	// stateBlocked marks a name whose own candidates resolved but whose
	// subtree hit an ambiguity; it is settled for the run (no retry, no
	// enqueue) without being ambiguous itself.
	stateBlocked
)

// Resolve expands the requested names against the registry into a build
// queue. The probe is wrapped in a per-run snapshot, so each target is
// probed at most once. A nil error means the outcome is a Success or
// PartialFailure Result; fatal conditions return *UnknownReferenceError,
// *CycleError, or *ProbeError.
func Resolve(reg *registry.Registry, requested []string, p probe.Probe) (*Result, error) {
	if len(requested) == 0 {
		requested = []string{DefaultTarget}
	}

	r := &run{
		reg:      reg,
		snap:     probe.NewSnapshot(p),
		states:   make(map[string]state),
		selected: make(map[string]string),
		effDeps:  make(map[string][]string),
	}

	for _, name := range requested {
		if err := r.resolve(name, ""); err != nil {
			return nil, err
		}
	}

	return &Result{
		Requested:   requested,
		Queue:       r.queue,
		Ambiguities: r.ambiguities,
		Selected:    r.selected,
		Deps:        r.deps,
	}, nil
}

// run is the transient state of one Resolve call.
type run struct {
	reg  *registry.Registry
	snap *probe.Snapshot

	states   map[string]state
	stack    []string
	selected map[string]string
	effDeps  map[string][]string

	queue       []QueueEntry
	deps        map[string][]string
	ambiguities []Ambiguity
}

// resolve drives one name through the state machine:
// Unresolved -> Resolving -> Resolved | Ambiguous | Blocked, with
// Resolving acting purely as the cycle guard.
func (r *run) resolve(name, from string) error {
	switch r.states[name] {
	case stateResolved, stateAmbiguous, stateBlocked:
		return nil
	case stateResolving:
		return &CycleError{Path: r.cyclePath(name)}
	}

	candidates := r.reg.Candidates(name)
	if candidates == nil {
		return &UnknownReferenceError{From: from, Name: name}
	}

	r.states[name] = stateResolving
	r.stack = append(r.stack, name)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	chosen, ambiguous, err := r.choose(name, candidates)
	if err != nil {
		return err
	}
	if ambiguous {
		r.states[name] = stateAmbiguous
		return nil
	}

	if chosen.Name != name {
		// A capability delegating to its chosen provider.
		if err := r.resolve(chosen.Name, from); err != nil {
			return err
		}
		if r.states[chosen.Name] == stateResolved {
			r.states[name] = stateResolved
			r.selected[name] = r.selected[chosen.Name]
		} else {
			r.states[name] = stateBlocked
		}
		return nil
	}

	// The name is this target: dependencies first, in declared order.
	// Fatal errors abort immediately; ambiguities only block this target
	// after every sibling dependency has been walked.
	for _, dep := range chosen.Depends {
		if err := r.resolve(dep, name); err != nil {
			return err
		}
	}
	for _, dep := range chosen.Depends {
		if r.states[dep] != stateResolved {
			r.states[name] = stateBlocked
			return nil
		}
	}

	if err := r.enqueue(chosen); err != nil {
		return err
	}
	r.states[name] = stateResolved
	r.selected[name] = name
	return nil
}

// choose picks the single target for a name. Multi-candidate names select
// by readiness: exactly one ready candidate wins, anything else is
// ambiguous. Single candidates are taken directly without a probe gate.
func (r *run) choose(name string, candidates []*target.Target) (*target.Target, bool, error) {
	if len(candidates) == 1 {
		return candidates[0], false, nil
	}

	var ready []*target.Target
	for _, c := range candidates {
		rep, err := r.snap.Report(c)
		if err != nil {
			return nil, false, &ProbeError{Target: c.Name, Err: err}
		}
		if rep.Ready {
			ready = append(ready, c)
		}
	}

	if len(ready) != 1 {
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = c.Name
		}
		r.ambiguities = append(r.ambiguities, Ambiguity{
			Capability: name,
			Candidates: names,
			Essential:  r.reg.Essential(name),
		})
		return nil, true, nil
	}

	return ready[0], false, nil
}

// enqueue appends a concrete target to the queue with its probed state.
// Abstract targets resolve without an entry. Effective concrete
// dependencies are recorded for ordering checks and stage grouping.
func (r *run) enqueue(t *target.Target) error {
	eff := r.effectiveDeps(t)
	r.effDeps[t.Name] = eff

	if t.Abstract() {
		return nil
	}

	rep, err := r.snap.Report(t)
	if err != nil {
		return &ProbeError{Target: t.Name, Err: err}
	}

	if r.deps == nil {
		r.deps = make(map[string][]string)
	}
	r.deps[t.Name] = eff
	r.queue = append(r.queue, QueueEntry{
		Name:     t.Name,
		Artifact: rep.Path,
		Ready:    rep.Ready,
		Actions:  t.Actions,
	})
	return nil
}

// effectiveDeps flattens a target's depends to queue-entry names: a dep
// resolved to a concrete target contributes that target, a dep resolved
// through an abstract target contributes the abstract target's own
// effective deps.
func (r *run) effectiveDeps(t *target.Target) []string {
	var out []string
	seen := make(map[string]bool)
	for _, dep := range t.Depends {
		satisfier, ok := r.selected[dep]
		if !ok {
			continue
		}
		st, _ := r.reg.Target(satisfier)
		var contrib []string
		if st != nil && !st.Abstract() {
			contrib = []string{satisfier}
		} else {
			contrib = r.effDeps[satisfier]
		}
		for _, name := range contrib {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func (r *run) cyclePath(name string) []string {
	for i, n := range r.stack {
		if n == name {
			path := make([]string, 0, len(r.stack)-i+1)
			path = append(path, r.stack[i:]...)
			return append(path, name)
		}
	}
	return []string{name, name}
}
