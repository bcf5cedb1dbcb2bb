package validate

import (
	"fmt"

	"github.com/szaher/layermake/internal/buildfile"
	"github.com/szaher/layermake/internal/vars"
)

// CheckVars reports %(NAME)s references that no configuration variable
// backs. Every templated field is covered: exists, layer and merge paths,
// bootstrap commands, and clean globs.
func CheckVars(f *buildfile.File, knownVars []string) []*Finding {
	known := make(map[string]bool, len(knownVars))
	for _, n := range knownVars {
		known[n] = true
	}

	var findings []*Finding
	for _, t := range f.Targets {
		findings = append(findings, templateFindings(f.Path, t.Name, "exists", t.Exists, known)...)
		for _, a := range t.Actions {
			for _, l := range a.Layers {
				findings = append(findings, templateFindings(f.Path, t.Name, "actions.layers", l, known)...)
			}
			for _, m := range a.Merges {
				findings = append(findings, templateFindings(f.Path, t.Name, "actions.merges", m, known)...)
			}
			if a.Command != "" {
				findings = append(findings, templateFindings(f.Path, t.Name, "actions.bootstrap", a.Command, known)...)
			}
		}
		for _, c := range t.Clean {
			findings = append(findings, templateFindings(f.Path, t.Name, "clean", c, known)...)
		}
	}
	return findings
}

func templateFindings(file, name, field, template string, known map[string]bool) []*Finding {
	var findings []*Finding
	for _, ref := range vars.Refs(template) {
		if !known[ref] {
			findings = append(findings, &Finding{
				File: file, Target: name,
				Message: fmt.Sprintf("field %s references undefined variable %%(%s)s", field, ref),
				Hint:    suggestName(ref, known),
			})
		}
	}
	return findings
}
