// Package validate performs static checks over a parsed build file without
// touching the filesystem: duplicate names, dangling references, dependency
// cycles, malformed actions, gate syntax, and undefined template variables.
// It collects every finding instead of stopping at the first, so one run
// reports the full state of the file.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/szaher/layermake/internal/buildfile"
)

// Finding is one validation problem, tied to the build file and usually to
// a single target.
type Finding struct {
	File    string `json:"file,omitempty"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func (f *Finding) Error() string {
	var s string
	if f.Target != "" {
		s = fmt.Sprintf("%s: target %q: %s", f.File, f.Target, f.Message)
	} else {
		s = fmt.Sprintf("%s: %s", f.File, f.Message)
	}
	if f.Hint != "" {
		s += "\n  hint: " + f.Hint
	}
	return s
}

// Check runs all static checks and returns the combined findings.
// knownVars lists the variable names available for template expansion,
// normally the configuration's var names.
func Check(f *buildfile.File, knownVars []string) []*Finding {
	var findings []*Finding
	findings = append(findings, CheckStructural(f)...)
	findings = append(findings, CheckSemantic(f)...)
	findings = append(findings, CheckVars(f, knownVars)...)
	return findings
}

// FormatText renders findings one per line, empty string for none.
func FormatText(findings []*Finding) string {
	var b strings.Builder
	for _, f := range findings {
		b.WriteString(f.Error())
		b.WriteByte('\n')
	}
	return b.String()
}

type jsonReport struct {
	Valid    bool       `json:"valid"`
	Findings []*Finding `json:"findings"`
}

// FormatJSON renders findings as a machine-readable report.
func FormatJSON(findings []*Finding) (string, error) {
	rep := jsonReport{Valid: len(findings) == 0, Findings: findings}
	if rep.Findings == nil {
		rep.Findings = []*Finding{}
	}
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("validate: encoding report: %w", err)
	}
	return string(out) + "\n", nil
}
