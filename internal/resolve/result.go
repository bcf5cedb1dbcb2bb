package resolve

import "github.com/szaher/layermake/internal/target"

// QueueEntry is one concrete target in the build queue: everything an
// external executor needs, with actions passed through uninterpreted.
type QueueEntry struct {
	Name     string          `json:"name"`
	Artifact string          `json:"artifact,omitempty"`
	Ready    bool            `json:"ready"`
	Actions  []target.Action `json:"actions,omitempty"`
}

// Ambiguity records a capability that zero or more than one ready
// candidate could satisfy, with the full candidate list for diagnostics.
type Ambiguity struct {
	Capability string   `json:"capability"`
	Candidates []string `json:"candidates"`
	Essential  bool     `json:"essential,omitempty"`
}

// Result is a non-fatal resolution outcome: a Success when Ambiguities is
// empty, a PartialFailure otherwise. Fatal conditions (unknown reference,
// cycle, probe failure) are returned as errors instead.
type Result struct {
	// Requested is the request after defaulting.
	Requested []string `json:"requested"`
	// Queue is the ordered, deduplicated build queue,
	// dependency-before-dependent.
	Queue []QueueEntry `json:"queue"`
	// Ambiguities lists every unresolved capability encountered, in
	// deterministic traversal order.
	Ambiguities []Ambiguity `json:"ambiguities,omitempty"`
	// Selected maps each resolved name to the target that satisfied it
	// (a capability maps to its chosen provider, a target to itself).
	Selected map[string]string `json:"selected,omitempty"`
	// Deps maps each resolved target to its effective concrete
	// dependencies: the queue entries that must precede it, with
	// abstract pass-through targets flattened away.
	Deps map[string][]string `json:"deps,omitempty"`
}

// Success reports whether every needed capability resolved uniquely.
func (r *Result) Success() bool {
	return len(r.Ambiguities) == 0
}

// EssentialUnresolved returns the ambiguities on essential capabilities.
func (r *Result) EssentialUnresolved() []Ambiguity {
	var out []Ambiguity
	for _, a := range r.Ambiguities {
		if a.Essential {
			out = append(out, a)
		}
	}
	return out
}

// QueueNames returns the queued target names in order.
func (r *Result) QueueNames() []string {
	out := make([]string, len(r.Queue))
	for i, e := range r.Queue {
		out[i] = e.Name
	}
	return out
}
