package plugin

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/szaher/layermake/internal/target"
	"github.com/szaher/layermake/internal/testutil"
)

func TestParseTargets(t *testing.T) {
	data := []byte(`{
		"zeta": {"exists": "%(MODS)s/modZeta"},
		"alpha": {
			"exists": "%(DLC)s/dlcAlpha",
			"depends": ["base"],
			"provides": ["edition"],
			"essential": true,
			"layers": ["alphaLayer"]
		}
	}`)

	targets, err := parseTargets(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("parsed %d targets, want 2", len(targets))
	}

	// Sorted by name for deterministic merges.
	if targets[0].Name != "alpha" || targets[1].Name != "zeta" {
		t.Fatalf("order = %s, %s", targets[0].Name, targets[1].Name)
	}

	alpha := targets[0]
	if alpha.Exists != "%(DLC)s/dlcAlpha" || !alpha.Essential {
		t.Errorf("alpha = %+v", alpha)
	}
	if len(alpha.Actions) != 1 || alpha.Actions[0].Kind != target.ActionLayers {
		t.Errorf("alpha actions = %+v", alpha.Actions)
	}
	if alpha.Source != SourcePlugin {
		t.Errorf("alpha source = %q", alpha.Source)
	}

	zeta := targets[1]
	if zeta.Abstract() {
		t.Error("zeta should be concrete")
	}
	if len(zeta.Actions) != 0 {
		t.Errorf("zeta actions = %+v, want none", zeta.Actions)
	}
}

func TestParseTargets_Invalid(t *testing.T) {
	if _, err := parseTargets([]byte(`[1, 2]`)); err == nil {
		t.Fatal("expected error for non-object payload")
	}
}

func TestCheckConflicts(t *testing.T) {
	plugins := []*Plugin{
		{Manifest: Manifest{Name: "witcher"}},
		{Manifest: Manifest{Name: "skyrim"}},
	}
	contributed := map[string][]string{
		"witcher": {"dlcAlpha", "modBeta"},
		"skyrim":  {"modGamma"},
	}
	if err := CheckConflicts(plugins, contributed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contributed["skyrim"] = append(contributed["skyrim"], "modBeta")
	testutil.AssertErrorContains(t, CheckConflicts(plugins, contributed), "modBeta")
}

func TestResolvePath_Direct(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "helper.wasm", "\x00")

	got, err := ResolvePath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
}

func TestResolvePath_Missing(t *testing.T) {
	if _, err := ResolvePath(filepath.Join(t.TempDir(), "ghost.wasm")); err == nil {
		t.Fatal("expected error for missing plugin")
	}
}

func TestHost_LoadMissingFile(t *testing.T) {
	ctx := context.Background()
	h, err := NewHost(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Close(ctx)

	if _, err := h.Load(ctx, filepath.Join(t.TempDir(), "ghost.wasm")); err == nil {
		t.Fatal("expected error for missing module")
	}
	if len(h.Plugins()) != 0 {
		t.Errorf("plugins = %d, want none after failed load", len(h.Plugins()))
	}
}
