package target

import (
	"encoding/json"
	"testing"
)

func TestTarget_Abstract(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		want   bool
	}{
		{"empty body", Target{Name: "edition"}, true},
		{"with artifact", Target{Name: "goty", Exists: "%(GAME)s/goty"}, false},
		{"with actions only", Target{Name: "setup", Actions: []Action{{Kind: ActionBootstrap, Command: "true"}}}, false},
		{"depends only", Target{Name: "all", Depends: []string{"a", "b"}}, true},
		{"provides only", Target{Name: "feline", Provides: []string{"mammal"}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.target.Abstract(); got != tc.want {
				t.Errorf("Abstract() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAction_Summary(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"layers", Action{Kind: ActionLayers, Layers: []string{"a", "b"}}, "layers[a b]"},
		{"merges", Action{Kind: ActionMerges, Merges: []string{"input_xml"}}, "merges[input_xml]"},
		{"bootstrap", Action{Kind: ActionBootstrap, Command: "git checkout ng"}, "bootstrap[git checkout ng]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.action.Summary(); got != tc.want {
				t.Errorf("Summary() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAction_MarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"layers", Action{Kind: ActionLayers, Layers: []string{"modsettings"}}, `{"layers":["modsettings"]}`},
		{"merges", Action{Kind: ActionMerges, Merges: []string{"input_xml"}}, `{"merges":["input_xml"]}`},
		{"bootstrap", Action{Kind: ActionBootstrap, Command: "git checkout ng"}, `{"bootstrap":"git checkout ng"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := json.Marshal(tc.action)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("Marshal() = %s, want %s", got, tc.want)
			}
		})
	}

	if _, err := json.Marshal(Action{Kind: "explode"}); err == nil {
		t.Error("expected error for unknown action kind")
	}
}

func TestTarget_ActionSummary(t *testing.T) {
	tr := Target{Name: "ng", Actions: []Action{
		{Kind: ActionLayers, Layers: []string{"dlc_ng"}},
		{Kind: ActionBootstrap, Command: "true"},
	}}
	if got, want := tr.ActionSummary(), "layers[dlc_ng] bootstrap[true]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	abstract := Target{Name: "edition"}
	if got := abstract.ActionSummary(); got != "-" {
		t.Errorf("got %q, want %q", got, "-")
	}
}
