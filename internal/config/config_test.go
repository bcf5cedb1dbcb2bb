package config

import (
	"path/filepath"
	"testing"

	"github.com/szaher/layermake/internal/testutil"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	return testutil.WriteFile(t, t.TempDir(), name, content)
}

func TestLoad_SingleFile(t *testing.T) {
	path := writeConfig(t, "layers-config.yaml", `
GAME: /games/witcher3
MODS: /games/witcher3/mods
PORT: 8080
DEBUG: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"GAME":  "/games/witcher3",
		"MODS":  "/games/witcher3/mods",
		"PORT":  "8080",
		"DEBUG": "true",
	}
	for k, v := range want {
		if cfg.Vars[k] != v {
			t.Errorf("Vars[%q] = %q, want %q", k, cfg.Vars[k], v)
		}
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != path {
		t.Errorf("Sources = %v, want [%s]", cfg.Sources, path)
	}
}

func TestLoad_MergeOrder(t *testing.T) {
	base := writeConfig(t, "base.yaml", "GAME: /base\nMODS: /base/mods\n")
	override := writeConfig(t, "override.yaml", "GAME: /override\n")

	cfg, err := Load(base, override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Vars["GAME"] != "/override" {
		t.Errorf("GAME = %q, want /override", cfg.Vars["GAME"])
	}
	if cfg.Vars["MODS"] != "/base/mods" {
		t.Errorf("MODS = %q, want /base/mods", cfg.Vars["MODS"])
	}
}

func TestLoad_Plugins(t *testing.T) {
	path := writeConfig(t, "cfg.yaml", `
GAME: /g
PLUGINS:
  - plugins/discover.wasm
  - plugins/extra.wasm
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Plugins) != 2 || cfg.Plugins[0] != "plugins/discover.wasm" {
		t.Errorf("Plugins = %v", cfg.Plugins)
	}
	if _, ok := cfg.Vars["PLUGINS"]; ok {
		t.Error("PLUGINS leaked into the variable map")
	}
}

func TestLoad_NonScalarValue(t *testing.T) {
	path := writeConfig(t, "bad.yaml", "GAME:\n  nested: true\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-scalar value, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestApplyEnvironment(t *testing.T) {
	cfg := New()
	cfg.Vars["GAME"] = "/from-file"

	cfg.ApplyEnvironment([]string{
		"LAYERMAKE_VAR_GAME=/from-env",
		"LAYERMAKE_VAR_EXTRA=yes",
		"UNRELATED=ignored",
		"LAYERMAKE_VAR_=empty-name-ignored",
	})

	if cfg.Vars["GAME"] != "/from-env" {
		t.Errorf("GAME = %q, want /from-env", cfg.Vars["GAME"])
	}
	if cfg.Vars["EXTRA"] != "yes" {
		t.Errorf("EXTRA = %q, want yes", cfg.Vars["EXTRA"])
	}
	if _, ok := cfg.Vars["UNRELATED"]; ok {
		t.Error("unrelated env entry leaked into vars")
	}
}

func TestApplySet(t *testing.T) {
	cfg := New()
	cfg.Vars["GAME"] = "/file"

	if err := cfg.ApplySet([]string{"GAME=/set", "NEW=v"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Vars["GAME"] != "/set" || cfg.Vars["NEW"] != "v" {
		t.Errorf("Vars = %v", cfg.Vars)
	}

	if err := cfg.ApplySet([]string{"noequals"}); err == nil {
		t.Fatal("expected error for malformed --set, got nil")
	}
	if err := cfg.ApplySet([]string{"=value"}); err == nil {
		t.Fatal("expected error for empty name, got nil")
	}
}

func TestVarNames_Sorted(t *testing.T) {
	cfg := New()
	cfg.Vars["B"] = "2"
	cfg.Vars["A"] = "1"
	cfg.Vars["C"] = "3"

	got := cfg.VarNames()
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("VarNames() = %v, want %v", got, want)
		}
	}
}
