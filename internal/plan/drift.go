package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/szaher/layermake/internal/state"
)

// Drift kinds.
const (
	DriftAdded     = "added"
	DriftRemoved   = "removed"
	DriftArtifact  = "artifact_changed"
	DriftReadiness = "readiness_changed"
)

// DriftEntry describes one queue difference between a saved snapshot and
// the current plan.
type DriftEntry struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// DriftResult is the full comparison outcome.
type DriftResult struct {
	HasDrift bool         `json:"has_drift"`
	Drifted  []DriftEntry `json:"drifted,omitempty"`
}

// DetectDrift compares a saved snapshot against the current plan: targets
// that entered or left the queue, artifact paths that moved, and readiness
// that changed since the save.
func DetectDrift(saved *state.Snapshot, current *Plan) *DriftResult {
	result := &DriftResult{}

	savedNames := make(map[string]state.Entry, len(saved.Queue))
	for _, e := range saved.Queue {
		savedNames[e.Name] = e
	}
	currentNames := make(map[string]Row, len(current.Rows))
	for _, r := range current.Rows {
		currentNames[r.Name] = r
	}

	for _, r := range current.Rows {
		old, ok := savedNames[r.Name]
		if !ok {
			result.Drifted = append(result.Drifted, DriftEntry{
				Name: r.Name, Type: DriftAdded, Actual: r.Artifact,
			})
			continue
		}
		if old.Artifact != r.Artifact {
			result.Drifted = append(result.Drifted, DriftEntry{
				Name: r.Name, Type: DriftArtifact, Expected: old.Artifact, Actual: r.Artifact,
			})
		}
		if old.Ready != r.Ready {
			result.Drifted = append(result.Drifted, DriftEntry{
				Name: r.Name, Type: DriftReadiness,
				Expected: readiness(old.Ready), Actual: readiness(r.Ready),
			})
		}
	}

	for _, e := range saved.Queue {
		if _, ok := currentNames[e.Name]; !ok {
			result.Drifted = append(result.Drifted, DriftEntry{
				Name: e.Name, Type: DriftRemoved, Expected: e.Artifact,
			})
		}
	}

	result.HasDrift = len(result.Drifted) > 0
	return result
}

// FormatDriftText renders the drift report for terminals.
func FormatDriftText(d *DriftResult) string {
	if !d.HasDrift {
		return fmt.Sprintf("%-22s no drift since last save\n", successMark())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-22s %d drifted target(s)\n", errorMark(), len(d.Drifted))
	for _, e := range d.Drifted {
		switch e.Type {
		case DriftAdded:
			fmt.Fprintf(&sb, "  + %-32s now queued (%s)\n", e.Name, displayPath(e.Actual))
		case DriftRemoved:
			fmt.Fprintf(&sb, "  - %-32s no longer queued\n", e.Name)
		case DriftArtifact:
			fmt.Fprintf(&sb, "  ~ %-32s %s -> %s\n", e.Name, displayPath(e.Expected), displayPath(e.Actual))
		case DriftReadiness:
			fmt.Fprintf(&sb, "  ~ %-32s %s -> %s\n", e.Name, e.Expected, e.Actual)
		}
	}
	return sb.String()
}

// FormatDriftJSON renders the drift report as indented JSON.
func FormatDriftJSON(d *DriftResult) (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

func readiness(ready bool) string {
	if ready {
		return "ready"
	}
	return "missing"
}
