// Package testutil provides shared test helpers to reduce boilerplate
// across unit tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/szaher/layermake/internal/buildfile"
	"github.com/szaher/layermake/internal/target"
)

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ParseTargets parses inline build-file YAML, failing the test on error.
func ParseTargets(t *testing.T, source string) []*target.Target {
	t.Helper()
	f, err := buildfile.Parse([]byte(source), "inline.yaml")
	if err != nil {
		t.Fatalf("parsing build file: %v", err)
	}
	return f.Targets
}

// AssertErrorContains asserts that err is non-nil and its message
// contains substr.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("expected error containing %q, got %q", substr, err.Error())
	}
}
