// Package plan turns resolution results into build plans: annotated queue
// rows for rendering, snapshot capture for the state backends, and drift
// detection against a previously saved run.
package plan

import (
	"sort"
	"time"

	"github.com/szaher/layermake/internal/registry"
	"github.com/szaher/layermake/internal/resolve"
	"github.com/szaher/layermake/internal/state"
	"github.com/szaher/layermake/internal/target"
)

// Row is one queue entry annotated for display.
type Row struct {
	Name     string   `json:"name"`
	Artifact string   `json:"artifact,omitempty"`
	Ready    bool     `json:"ready"`
	Layers   []string `json:"layers,omitempty"`
}

// Plan wraps a resolution result with display annotations.
type Plan struct {
	Requested   []string
	Rows        []Row
	Ambiguities []resolve.Ambiguity
	Levels      [][]Row
	result      *resolve.Result
}

// New builds a plan from a resolution result. The registry supplies the
// layer lists for each queued target.
func New(res *resolve.Result, reg *registry.Registry) *Plan {
	p := &Plan{
		Requested:   res.Requested,
		Ambiguities: append([]resolve.Ambiguity(nil), res.Ambiguities...),
		result:      res,
	}
	// Essential ambiguities list first; walk order is kept within each
	// group.
	sort.SliceStable(p.Ambiguities, func(i, j int) bool {
		return p.Ambiguities[i].Essential && !p.Ambiguities[j].Essential
	})
	for _, e := range res.Queue {
		p.Rows = append(p.Rows, newRow(e, reg))
	}
	for _, stage := range resolve.Levels(res) {
		var rows []Row
		for _, e := range stage {
			rows = append(rows, newRow(e, reg))
		}
		p.Levels = append(p.Levels, rows)
	}
	return p
}

func newRow(e resolve.QueueEntry, reg *registry.Registry) Row {
	return Row{
		Name:     e.Name,
		Artifact: e.Artifact,
		Ready:    e.Ready,
		Layers:   layersOf(e.Name, e.Actions),
	}
}

// layersOf lists the layers a target's actions write, defaulting to the
// target's own name when it declares no layer actions.
func layersOf(name string, actions []target.Action) []string {
	var out []string
	for _, a := range actions {
		switch a.Kind {
		case target.ActionLayers:
			out = append(out, a.Layers...)
		case target.ActionMerges:
			out = append(out, a.Merges...)
		}
	}
	if len(out) == 0 {
		return []string{name}
	}
	return out
}

// Success reports whether every capability resolved uniquely.
func (p *Plan) Success() bool {
	return len(p.Ambiguities) == 0
}

// Capture converts the plan's result into a persistable snapshot.
func (p *Plan) Capture(runID string, at time.Time) *state.Snapshot {
	snap := &state.Snapshot{
		Version:   state.Version,
		RunID:     runID,
		SavedAt:   at,
		Requested: p.Requested,
		Selected:  p.result.Selected,
	}
	for _, e := range p.result.Queue {
		snap.Queue = append(snap.Queue, state.Entry{
			Name:     e.Name,
			Artifact: e.Artifact,
			Ready:    e.Ready,
		})
	}
	return snap
}
