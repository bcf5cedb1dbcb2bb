package expr

import (
	"testing"

	"github.com/szaher/layermake/internal/target"
)

func TestCompile_Empty(t *testing.T) {
	if _, err := Compile(""); err == nil {
		t.Fatal("expected error for empty expression, got nil")
	}
}

func TestValidateSyntax(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"comparison", `vars.PLATFORM == "gog"`, false},
		{"membership", `"edition" in provides`, false},
		{"boolean ops", `essential && !abstract`, false},
		{"unbalanced paren", `(a == `, true},
		{"empty", ``, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSyntax(tc.source)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %q, got nil", tc.source)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.source, err)
			}
		})
	}
}

func TestEvalBool_Gate(t *testing.T) {
	env := GateEnv(map[string]string{"PLATFORM": "gog", "GAME": "/g"})

	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"var equal", `vars.PLATFORM == "gog"`, true},
		{"var not equal", `vars.PLATFORM == "steam"`, false},
		{"var presence", `vars.GAME != ""`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Compile(tc.source)
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}
			got, err := c.EvalBool(env)
			if err != nil {
				t.Fatalf("unexpected eval error: %v", err)
			}
			if got != tc.want {
				t.Errorf("EvalBool(%q) = %v, want %v", tc.source, got, tc.want)
			}
		})
	}
}

func TestEvalBool_GateEnvFunc(t *testing.T) {
	t.Setenv("LAYERMAKE_TEST_GATE", "yes")

	c, err := Compile(`env("LAYERMAKE_TEST_GATE") == "yes"`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	got, err := c.EvalBool(GateEnv(nil))
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if !got {
		t.Error("expected env() gate to evaluate true")
	}
}

func TestEvalBool_NonBoolean(t *testing.T) {
	c, err := Compile(`vars.PLATFORM`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if _, err := c.EvalBool(GateEnv(map[string]string{"PLATFORM": "gog"})); err == nil {
		t.Fatal("expected error for non-boolean result, got nil")
	}
}

func TestEvalBool_Filter(t *testing.T) {
	tr := &target.Target{
		Name:      "goty",
		Exists:    "%(GAME)s/goty",
		Provides:  []string{"edition"},
		Essential: false,
		Source:    "file",
	}

	tests := []struct {
		name   string
		source string
		want   bool
	}{
		{"name match", `name == "goty"`, true},
		{"provides membership", `"edition" in provides`, true},
		{"not abstract", `!abstract`, true},
		{"essential", `essential`, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Compile(tc.source)
			if err != nil {
				t.Fatalf("unexpected compile error: %v", err)
			}
			got, err := c.EvalBool(FilterEnv(tr))
			if err != nil {
				t.Fatalf("unexpected eval error: %v", err)
			}
			if got != tc.want {
				t.Errorf("EvalBool(%q) = %v, want %v", tc.source, got, tc.want)
			}
		})
	}
}
