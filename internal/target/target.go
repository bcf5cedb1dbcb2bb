// Package target defines the build-target records shared by the build file
// loader, the registry, and the resolver.
package target

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionKind tags an opaque build action. The resolver never interprets
// actions; they ride along to whatever executes the plan.
type ActionKind string

const (
	ActionLayers    ActionKind = "layers"
	ActionMerges    ActionKind = "merges"
	ActionBootstrap ActionKind = "bootstrap"
)

// Action is one opaque build step attached to a target. Marshalling is
// custom on both encodings: the wire form is the build file's single-key
// mapping, not this struct.
type Action struct {
	Kind    ActionKind
	Layers  []string
	Merges  []string
	Command string
}

// Summary renders a short human-readable form for plan tables.
func (a Action) Summary() string {
	switch a.Kind {
	case ActionLayers:
		return "layers[" + strings.Join(a.Layers, " ") + "]"
	case ActionMerges:
		return "merges[" + strings.Join(a.Merges, " ") + "]"
	case ActionBootstrap:
		return fmt.Sprintf("bootstrap[%s]", a.Command)
	}
	return string(a.Kind)
}

// MarshalYAML writes the action in build-file shape, a single-key mapping,
// so exported target sets parse back as build files.
func (a Action) MarshalYAML() (interface{}, error) {
	switch a.Kind {
	case ActionLayers:
		return map[string][]string{"layers": a.Layers}, nil
	case ActionMerges:
		return map[string][]string{"merges": a.Merges}, nil
	case ActionBootstrap:
		return map[string]string{"bootstrap": a.Command}, nil
	}
	return nil, fmt.Errorf("unknown action kind %q", a.Kind)
}

// MarshalJSON matches the YAML shape.
func (a Action) MarshalJSON() ([]byte, error) {
	v, err := a.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Target is a named node in the dependency graph.
//
// A target with neither an artifact template nor actions is abstract: it is
// satisfied purely by the satisfaction of its dependencies and contributes
// no build-queue entry of its own.
type Target struct {
	Name      string   `json:"-" yaml:"-"`
	Exists    string   `json:"exists,omitempty" yaml:"exists,omitempty"`
	Depends   []string `json:"depends,omitempty" yaml:"depends,omitempty"`
	Provides  []string `json:"provides,omitempty" yaml:"provides,omitempty"`
	Essential bool     `json:"essential,omitempty" yaml:"essential,omitempty"`
	When      string   `json:"when,omitempty" yaml:"when,omitempty"`
	Actions   []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
	Clean     []string `json:"clean,omitempty" yaml:"clean,omitempty"`

	// Source records where the definition came from: "file", "discovered",
	// or "plugin:<name>". Informational only, never part of the document
	// schema.
	Source string `json:"source,omitempty" yaml:"-"`
}

// Abstract reports whether the target has no artifact and no actions.
func (t *Target) Abstract() bool {
	return t.Exists == "" && len(t.Actions) == 0
}

// ActionSummary joins the summaries of all actions, "-" when there are none.
func (t *Target) ActionSummary() string {
	if len(t.Actions) == 0 {
		return "-"
	}
	parts := make([]string, len(t.Actions))
	for i, a := range t.Actions {
		parts[i] = a.Summary()
	}
	return strings.Join(parts, " ")
}

func (t *Target) String() string {
	return t.Name
}
