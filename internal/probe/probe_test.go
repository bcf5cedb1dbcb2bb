package probe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/szaher/layermake/internal/target"
	"github.com/szaher/layermake/internal/vars"
)

func TestFS_IsReady(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "goty")
	if err := os.WriteFile(present, []byte("x"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p := NewFS(vars.Map{"GAME": dir})

	tests := []struct {
		name   string
		target target.Target
		want   bool
	}{
		{"present artifact", target.Target{Name: "goty", Exists: "%(GAME)s/goty"}, true},
		{"absent artifact", target.Target{Name: "ng", Exists: "%(GAME)s/ng"}, false},
		{"abstract never ready", target.Target{Name: "edition"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.IsReady(&tc.target)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("IsReady = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFS_IsReady_UndefinedVar(t *testing.T) {
	p := NewFS(vars.Map{})
	_, err := p.IsReady(&target.Target{Name: "goty", Exists: "%(GAME)s/goty"})
	if err == nil {
		t.Fatal("expected error for undefined var, got nil")
	}
}

func TestFS_ArtifactPath(t *testing.T) {
	p := NewFS(vars.Map{"GAME": "/g"})

	if got := p.ArtifactPath(&target.Target{Name: "goty", Exists: "%(GAME)s/goty"}); got != "/g/goty" {
		t.Errorf("ArtifactPath = %q, want /g/goty", got)
	}
	if got := p.ArtifactPath(&target.Target{Name: "edition"}); got != "" {
		t.Errorf("ArtifactPath for abstract = %q, want empty", got)
	}
	if got := p.ArtifactPath(&target.Target{Name: "bad", Exists: "%(MISSING)s"}); got != "" {
		t.Errorf("ArtifactPath with undefined var = %q, want empty", got)
	}
}

func TestOverride(t *testing.T) {
	base := NewStatic(map[string]bool{"goty": true, "ng": true})
	p := NewOverride(base, []string{"extra"}, []string{"ng"})

	for name, want := range map[string]bool{"goty": true, "ng": false, "extra": true} {
		got, err := p.IsReady(&target.Target{Name: name})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("IsReady(%s) = %v, want %v", name, got, want)
		}
	}
}

type countingProbe struct {
	calls map[string]int
	fail  map[string]int // fail the first N calls per target
}

func (p *countingProbe) IsReady(t *target.Target) (bool, error) {
	p.calls[t.Name]++
	if p.fail[t.Name] >= p.calls[t.Name] {
		return false, errors.New("transient failure")
	}
	return true, nil
}

func (p *countingProbe) ArtifactPath(t *target.Target) string { return "/p/" + t.Name }

func TestRetry_EventualSuccess(t *testing.T) {
	base := &countingProbe{calls: map[string]int{}, fail: map[string]int{"goty": 2}}
	p := WithRetry(base, RetryConfig{Attempts: 3})

	ready, err := p.IsReady(&target.Target{Name: "goty"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ready {
		t.Error("expected ready after retries")
	}
	if base.calls["goty"] != 3 {
		t.Errorf("base called %d times, want 3", base.calls["goty"])
	}
}

func TestRetry_Exhausted(t *testing.T) {
	base := &countingProbe{calls: map[string]int{}, fail: map[string]int{"goty": 10}}
	p := WithRetry(base, RetryConfig{Attempts: 2})

	if _, err := p.IsReady(&target.Target{Name: "goty"}); err == nil {
		t.Fatal("expected error after exhausted retries, got nil")
	}
	if base.calls["goty"] != 2 {
		t.Errorf("base called %d times, want 2", base.calls["goty"])
	}
}

func TestSnapshot_MemoizesOnePerTarget(t *testing.T) {
	base := &countingProbe{calls: map[string]int{}, fail: map[string]int{}}
	snap := NewSnapshot(base)
	tr := &target.Target{Name: "goty"}

	for i := 0; i < 3; i++ {
		r, err := snap.Report(tr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.Ready || r.Path != "/p/goty" {
			t.Errorf("Report = %+v", r)
		}
	}
	if base.calls["goty"] != 1 {
		t.Errorf("base called %d times, want 1", base.calls["goty"])
	}
}

func TestSnapshot_MemoizesErrors(t *testing.T) {
	base := &countingProbe{calls: map[string]int{}, fail: map[string]int{"bad": 100}}
	snap := NewSnapshot(base)
	tr := &target.Target{Name: "bad"}

	if _, err := snap.Report(tr); err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, err := snap.Report(tr); err == nil {
		t.Fatal("expected memoized error, got nil")
	}
	if base.calls["bad"] != 1 {
		t.Errorf("base called %d times, want 1", base.calls["bad"])
	}
}
