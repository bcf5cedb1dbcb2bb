package validate

import (
	"fmt"
	"strings"

	"github.com/szaher/layermake/internal/buildfile"
	"github.com/szaher/layermake/internal/expr"
	"github.com/szaher/layermake/internal/target"
)

// CheckStructural validates each target in isolation: names, gate
// expressions, and action shapes. The parser already rejects unknown
// action kinds; this catches what survives parsing but cannot work.
func CheckStructural(f *buildfile.File) []*Finding {
	var findings []*Finding

	for _, t := range f.Targets {
		if t.Name == "" {
			findings = append(findings, &Finding{
				File:    f.Path,
				Message: "target with an empty name",
				Hint:    "every target needs a non-empty mapping key",
			})
			continue
		}

		if t.When != "" {
			if err := expr.ValidateSyntax(t.When); err != nil {
				findings = append(findings, &Finding{
					File: f.Path, Target: t.Name,
					Message: fmt.Sprintf("when gate does not compile: %v", err),
					Hint:    `gates are boolean expressions over config vars, e.g. vars.PLATFORM == "gog"`,
				})
			}
		}

		for i, a := range t.Actions {
			switch a.Kind {
			case target.ActionLayers:
				if len(a.Layers) == 0 {
					findings = append(findings, actionFinding(f.Path, t.Name, i, "layers action has an empty list"))
				}
			case target.ActionMerges:
				if len(a.Merges) == 0 {
					findings = append(findings, actionFinding(f.Path, t.Name, i, "merges action has an empty list"))
				}
			case target.ActionBootstrap:
				if strings.TrimSpace(a.Command) == "" {
					findings = append(findings, actionFinding(f.Path, t.Name, i, "bootstrap action has an empty command"))
				}
			}
		}
	}

	return findings
}

func actionFinding(file, name string, index int, msg string) *Finding {
	return &Finding{
		File: file, Target: name,
		Message: fmt.Sprintf("action %d: %s", index+1, msg),
		Hint:    "remove the action or give it content",
	}
}
