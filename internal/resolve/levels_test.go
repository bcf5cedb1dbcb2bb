package resolve

import (
	"reflect"
	"testing"

	"github.com/szaher/layermake/internal/probe"
	"github.com/szaher/layermake/internal/target"
)

func levelNames(levels [][]QueueEntry) [][]string {
	out := make([][]string, len(levels))
	for i, level := range levels {
		for _, entry := range level {
			out[i] = append(out[i], entry.Name)
		}
	}
	return out
}

func TestLevels_GroupsIndependentTargets(t *testing.T) {
	reg := build(t,
		&target.Target{Name: "common", Exists: "/common"},
		&target.Target{Name: "left", Exists: "/left", Depends: []string{"common"}},
		&target.Target{Name: "right", Exists: "/right", Depends: []string{"common"}},
		&target.Target{Name: "top", Exists: "/top", Depends: []string{"left", "right"}},
	)

	res, err := Resolve(reg, []string{"top"}, probe.NewStatic(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := levelNames(Levels(res))
	want := [][]string{{"common"}, {"left", "right"}, {"top"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("levels = %v, want %v", got, want)
	}
}

func TestLevels_FlattensAbstractDependencies(t *testing.T) {
	reg := build(t,
		&target.Target{Name: "edition"},
		&target.Target{Name: "goty", Exists: "/goty", Provides: []string{"edition"}},
		&target.Target{Name: "mods", Exists: "/mods", Depends: []string{"edition"}},
	)
	p := probe.NewStatic(map[string]bool{"goty": true})

	res, err := Resolve(reg, []string{"mods"}, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := levelNames(Levels(res))
	want := [][]string{{"goty"}, {"mods"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("levels = %v, want %v", got, want)
	}
}

func TestLevels_EmptyQueue(t *testing.T) {
	reg := build(t, &target.Target{Name: "abstract_only", Provides: nil})

	res, err := Resolve(reg, []string{"abstract_only"}, probe.NewStatic(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Levels(res); len(got) != 0 {
		t.Errorf("levels = %v, want none", got)
	}
}
