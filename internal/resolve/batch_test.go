package resolve

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/szaher/layermake/internal/probe"
	"github.com/szaher/layermake/internal/target"
)

func TestResolveBatch_ResultsInRequestOrder(t *testing.T) {
	reg := build(t,
		&target.Target{Name: "a", Exists: "/a"},
		&target.Target{Name: "b", Exists: "/b", Depends: []string{"a"}},
		&target.Target{Name: "c", Exists: "/c"},
	)
	requests := []Request{
		{Name: "deep", Targets: []string{"b"}},
		{Name: "shallow", Targets: []string{"c"}},
		{Name: "broken", Targets: []string{"missing"}},
	}

	results := ResolveBatch(context.Background(), reg, probe.NewStatic(nil), requests, 2)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if results[0].Name != "deep" || results[1].Name != "shallow" || results[2].Name != "broken" {
		t.Fatalf("results out of order: %v %v %v", results[0].Name, results[1].Name, results[2].Name)
	}
	if results[0].Err != nil {
		t.Errorf("deep: unexpected error %v", results[0].Err)
	}
	if got := results[0].Result.QueueNames(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("deep queue = %v, want [a b]", got)
	}

	var unknown *UnknownReferenceError
	if !errors.As(results[2].Err, &unknown) {
		t.Errorf("broken: error = %v, want *UnknownReferenceError", results[2].Err)
	}
	if results[2].Result != nil {
		t.Error("broken: result should be nil on fatal error")
	}

	// An unrelated failure must not poison the siblings.
	if results[1].Err != nil || results[1].Result == nil {
		t.Errorf("shallow: err=%v result=%v", results[1].Err, results[1].Result)
	}
}

func TestResolveBatch_CancelledContext(t *testing.T) {
	reg := build(t, &target.Target{Name: "a", Exists: "/a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := ResolveBatch(ctx, reg, probe.NewStatic(nil), []Request{{Name: "only", Targets: []string{"a"}}}, 1)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", results[0].Err)
	}
}

func TestResolveBatch_EmptyRequests(t *testing.T) {
	reg := build(t, &target.Target{Name: "a", Exists: "/a"})

	results := ResolveBatch(context.Background(), reg, probe.NewStatic(nil), nil, 4)
	if len(results) != 0 {
		t.Errorf("got %d results, want none", len(results))
	}
}
