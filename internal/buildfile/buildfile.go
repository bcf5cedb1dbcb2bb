// Package buildfile reads the declarative build file: a single YAML mapping
// of target names to target bodies. Parsing preserves declaration order,
// which the registry later uses as the deterministic candidate ordering.
package buildfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/szaher/layermake/internal/target"
)

// SourceFile marks targets declared in the build file itself.
const SourceFile = "file"

// ParseError describes a malformed build file with its location.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// File is a parsed build file with targets in declaration order. Duplicate
// names are preserved here; the registry reports them.
type File struct {
	Path    string
	Targets []*target.Target
}

// Read loads and parses the build file at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("buildfile: reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses build file data. The path is used in error messages only.
func Parse(data []byte, path string) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{File: path, Message: err.Error()}
	}

	f := &File{Path: path}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return f, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{File: path, Line: root.Line, Message: "build file must be a mapping of target names"}
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || keyNode.Value == "" {
			return nil, &ParseError{File: path, Line: keyNode.Line, Message: "target name must be a non-empty string"}
		}
		t, err := parseTarget(keyNode.Value, valNode, path)
		if err != nil {
			return nil, err
		}
		f.Targets = append(f.Targets, t)
	}

	return f, nil
}

func parseTarget(name string, node *yaml.Node, path string) (*target.Target, error) {
	t := &target.Target{Name: name, Source: SourceFile}

	// An empty body ({} or null) is a pure abstract target.
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return t, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{File: path, Line: node.Line, Message: fmt.Sprintf("target %q: body must be a mapping", name)}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value
		switch key {
		case "exists":
			if err := valNode.Decode(&t.Exists); err != nil {
				return nil, fieldErr(path, valNode, name, key, err)
			}
		case "depends":
			var deps []string
			if err := valNode.Decode(&deps); err != nil {
				return nil, fieldErr(path, valNode, name, key, err)
			}
			t.Depends = dedup(deps)
		case "provides":
			var provides []string
			if err := valNode.Decode(&provides); err != nil {
				return nil, fieldErr(path, valNode, name, key, err)
			}
			t.Provides = dedup(provides)
		case "essential":
			if err := valNode.Decode(&t.Essential); err != nil {
				return nil, fieldErr(path, valNode, name, key, err)
			}
		case "when":
			if err := valNode.Decode(&t.When); err != nil {
				return nil, fieldErr(path, valNode, name, key, err)
			}
		case "actions":
			actions, err := parseActions(name, valNode, path)
			if err != nil {
				return nil, err
			}
			t.Actions = actions
		case "clean":
			if err := valNode.Decode(&t.Clean); err != nil {
				return nil, fieldErr(path, valNode, name, key, err)
			}
		default:
			return nil, &ParseError{File: path, Line: keyNode.Line,
				Message: fmt.Sprintf("target %q: unknown field %q", name, key)}
		}
	}

	return t, nil
}

func parseActions(name string, node *yaml.Node, path string) ([]target.Action, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &ParseError{File: path, Line: node.Line,
			Message: fmt.Sprintf("target %q: actions must be a list", name)}
	}

	var actions []target.Action
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return nil, &ParseError{File: path, Line: item.Line,
				Message: fmt.Sprintf("target %q: each action must have exactly one of layers, merges, bootstrap", name)}
		}
		keyNode, valNode := item.Content[0], item.Content[1]
		var a target.Action
		switch keyNode.Value {
		case "layers":
			a.Kind = target.ActionLayers
			if err := valNode.Decode(&a.Layers); err != nil {
				return nil, fieldErr(path, valNode, name, "actions.layers", err)
			}
		case "merges":
			a.Kind = target.ActionMerges
			if err := valNode.Decode(&a.Merges); err != nil {
				return nil, fieldErr(path, valNode, name, "actions.merges", err)
			}
		case "bootstrap":
			a.Kind = target.ActionBootstrap
			if err := valNode.Decode(&a.Command); err != nil {
				return nil, fieldErr(path, valNode, name, "actions.bootstrap", err)
			}
		default:
			return nil, &ParseError{File: path, Line: keyNode.Line,
				Message: fmt.Sprintf("target %q: unknown action kind %q", name, keyNode.Value)}
		}
		actions = append(actions, a)
	}

	return actions, nil
}

func fieldErr(path string, node *yaml.Node, name, field string, err error) error {
	return &ParseError{File: path, Line: node.Line,
		Message: fmt.Sprintf("target %q: field %s: %v", name, field, err)}
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Append adds synthesized targets (discovery or plugins) to the file. Names
// already present are skipped when skipExisting is set; the skipped names
// are returned for logging.
func (f *File) Append(extra []*target.Target, skipExisting bool) []string {
	declared := make(map[string]bool, len(f.Targets))
	for _, t := range f.Targets {
		declared[t.Name] = true
	}

	var skipped []string
	for _, t := range extra {
		if skipExisting && declared[t.Name] {
			skipped = append(skipped, t.Name)
			continue
		}
		declared[t.Name] = true
		f.Targets = append(f.Targets, t)
	}
	return skipped
}
