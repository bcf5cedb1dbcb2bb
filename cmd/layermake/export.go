package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/szaher/layermake/internal/target"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the effective target set after gates, discovery, and plugins",
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

			var output []byte
			switch format {
			case "yaml":
				output, err = marshalBuildFile(targets)
			case "json":
				output, err = json.MarshalIndent(namedTargets(targets), "", "  ")
				output = append(output, '\n')
			default:
				err = fmt.Errorf("unknown format %q (expected json or yaml)", format)
			}
			if err != nil {
				return err
			}

			if out != "" {
				if err := os.WriteFile(out, output, 0644); err != nil {
					return err
				}
				fmt.Printf("Exported %d targets to %s\n", len(targets), out)
				return nil
			}
			fmt.Print(string(output))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (json|yaml)")
	cmd.Flags().StringVar(&out, "out", "", "Write to a file instead of stdout")

	return cmd
}

// marshalBuildFile renders targets as a build-file-shaped mapping in
// declaration order, so the export parses back as a build file.
func marshalBuildFile(targets []*target.Target) ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, t := range targets {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: t.Name}
		val := &yaml.Node{}
		if err := val.Encode(t); err != nil {
			return nil, fmt.Errorf("encoding target %q: %w", t.Name, err)
		}
		if len(val.Content) == 0 {
			val.Style = yaml.FlowStyle
		}
		doc.Content = append(doc.Content, key, val)
	}
	return yaml.Marshal(doc)
}

// namedTarget carries the name explicitly for list-shaped JSON output.
type namedTarget struct {
	Name string `json:"name"`
	target.Target
}

func namedTargets(targets []*target.Target) []namedTarget {
	out := make([]namedTarget, len(targets))
	for i, t := range targets {
		out[i] = namedTarget{Name: t.Name, Target: *t}
	}
	return out
}
