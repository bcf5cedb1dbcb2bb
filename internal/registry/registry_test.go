package registry

import (
	"errors"
	"testing"

	"github.com/szaher/layermake/internal/target"
)

func names(ts []*target.Target) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuild_DuplicateName(t *testing.T) {
	_, err := Build([]*target.Target{
		{Name: "goty"},
		{Name: "goty"},
	})
	if err == nil {
		t.Fatal("expected error for duplicate name, got nil")
	}
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("error type = %T, want *DuplicateNameError", err)
	}
	if dup.Name != "goty" {
		t.Errorf("dup.Name = %q, want goty", dup.Name)
	}
}

func TestBuild_EmptyName(t *testing.T) {
	if _, err := Build([]*target.Target{{Name: ""}}); err == nil {
		t.Fatal("expected error for empty name, got nil")
	}
}

func TestCandidates_SelfOnly(t *testing.T) {
	r, err := Build([]*target.Target{
		{Name: "feline", Provides: []string{"mammal"}},
		{Name: "cat", Exists: "/cats", Depends: []string{"feline"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A target name with no other providers maps to itself even when
	// abstract (the pass-through case).
	if got := names(r.Candidates("feline")); !equal(got, []string{"feline"}) {
		t.Errorf("Candidates(feline) = %v, want [feline]", got)
	}
	// A declared capability maps to its providers.
	if got := names(r.Candidates("mammal")); !equal(got, []string{"feline"}) {
		t.Errorf("Candidates(mammal) = %v, want [feline]", got)
	}
	// Unknown name yields nil.
	if got := r.Candidates("reptile"); got != nil {
		t.Errorf("Candidates(reptile) = %v, want nil", got)
	}
}

func TestCandidates_AbstractLabelExcluded(t *testing.T) {
	r, err := Build([]*target.Target{
		{Name: "edition", Essential: true},
		{Name: "goty", Exists: "/goty", Provides: []string{"edition"}},
		{Name: "nextgen", Exists: "/ng", Provides: []string{"edition"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The abstract declaration is a label; candidates are the providers in
	// declaration order.
	if got := names(r.Candidates("edition")); !equal(got, []string{"goty", "nextgen"}) {
		t.Errorf("Candidates(edition) = %v, want [goty nextgen]", got)
	}
}

func TestCandidates_ConcreteSelfIncluded(t *testing.T) {
	r, err := Build([]*target.Target{
		{Name: "patch", Exists: "/patch/v1"},
		{Name: "community_patch", Exists: "/patch/community", Provides: []string{"patch"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A concrete target with extra providers competes with them, in
	// declaration order.
	if got := names(r.Candidates("patch")); !equal(got, []string{"patch", "community_patch"}) {
		t.Errorf("Candidates(patch) = %v, want [patch community_patch]", got)
	}
}

func TestCandidates_DeclarationOrder(t *testing.T) {
	r, err := Build([]*target.Target{
		{Name: "zeta", Exists: "/z", Provides: []string{"cap"}},
		{Name: "alpha", Exists: "/a", Provides: []string{"cap"}},
		{Name: "mid", Exists: "/m", Provides: []string{"cap"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := names(r.Candidates("cap")); !equal(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("Candidates(cap) = %v, want declaration order [zeta alpha mid]", got)
	}
}

func TestEssentials(t *testing.T) {
	r, err := Build([]*target.Target{
		{Name: "edition", Essential: true},
		{Name: "base", Essential: true},
		{Name: "goty", Provides: []string{"edition"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !r.Essential("edition") || !r.Essential("base") {
		t.Error("expected edition and base to be essential")
	}
	if r.Essential("goty") {
		t.Error("goty should not be essential")
	}
	if got := r.Essentials(); !equal(got, []string{"base", "edition"}) {
		t.Errorf("Essentials() = %v, want sorted [base edition]", got)
	}
}

func TestTargets_Order(t *testing.T) {
	ts := []*target.Target{{Name: "b"}, {Name: "a"}, {Name: "c"}}
	r, err := Build(ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := names(r.Targets()); !equal(got, []string{"b", "a", "c"}) {
		t.Errorf("Targets() = %v, want declaration order", got)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}
