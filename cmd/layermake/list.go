package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/szaher/layermake/internal/buildfile"
	"github.com/szaher/layermake/internal/expr"
	"github.com/szaher/layermake/internal/resolve"
	"github.com/szaher/layermake/internal/target"
)

func newListCmd() *cobra.Command {
	var (
		filter  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the effective target set",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			proj, err := loadProject(cmd.Context(), logger)
			if err != nil {
				return err
			}
			reg, err := proj.registry()
			if err != nil {
				return err
			}

			targets := reg.Targets()
			if filter != "" {
				targets, err = filterTargets(targets, filter)
				if err != nil {
					return err
				}
			}

			if jsonOut {
				data, err := json.MarshalIndent(namedTargets(targets), "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			for i, t := range targets {
				if i > 0 {
					fmt.Println()
				}
				printTarget(t)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", `Expression over name/essential/abstract/provides, e.g. 'essential && !abstract'`)
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output targets as JSON")

	return cmd
}

func filterTargets(targets []*target.Target, filter string) ([]*target.Target, error) {
	compiled, err := expr.Compile(filter)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	var kept []*target.Target
	for _, t := range targets {
		ok, err := compiled.EvalBool(expr.FilterEnv(t))
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		if ok {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

func printTarget(t *target.Target) {
	var notes []string
	if t.Name == resolve.DefaultTarget {
		notes = append(notes, "default")
	}
	if t.Essential {
		notes = append(notes, "essential")
	}
	if t.Abstract() {
		notes = append(notes, "abstract")
	}

	heading := t.Name
	if len(notes) > 0 {
		heading += " (" + strings.Join(notes, ", ") + ")"
	}
	fmt.Println(heading)

	if t.Exists != "" {
		fmt.Printf("  exists: %s\n", t.Exists)
	}
	if len(t.Depends) > 0 {
		fmt.Printf("  depends: %s\n", strings.Join(t.Depends, ", "))
	}
	if len(t.Provides) > 0 {
		fmt.Printf("  provides: %s\n", strings.Join(t.Provides, ", "))
	}
	if t.When != "" {
		fmt.Printf("  when: %s\n", t.When)
	}
	if len(t.Actions) > 0 {
		fmt.Printf("  actions: %s\n", t.ActionSummary())
	}
	if t.Source != "" && t.Source != buildfile.SourceFile {
		fmt.Printf("  source: %s\n", t.Source)
	}
}
