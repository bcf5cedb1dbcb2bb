// Package discover scans the layers directory for simple mod layers that
// were never declared in the build file. A layer carrying a ro/dlc/ or
// ro/mods/ payload becomes a concrete target whose exists pattern points
// at the installed copy, so plain drop-in mods need no declaration at all.
package discover

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/szaher/layermake/internal/target"
)

// SourceDiscovered marks targets synthesized from the layers directory.
const SourceDiscovered = "discovered"

// Layer names matching any of these patterns are never picked up:
// underscore-prefixed working copies and encoding or supplement variants
// of a declared layer.
var skipPatterns = []string{"_*", "*_utf*", "*_supplement*"}

// Scan reads the immediate subdirectories of layersDir and synthesizes a
// target for each undeclared simple layer. A missing or non-directory
// layersDir yields no targets and no error. Results are sorted by name.
func Scan(layersDir string, declared func(name string) bool) ([]*target.Target, error) {
	info, err := os.Stat(layersDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	entries, err := os.ReadDir(layersDir)
	if err != nil {
		return nil, err
	}

	var out []*target.Target
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if skip(name) || (declared != nil && declared(name)) {
			continue
		}
		exists := detectExists(filepath.Join(layersDir, name))
		if exists == "" {
			continue
		}
		out = append(out, &target.Target{
			Name:   name,
			Exists: exists,
			Actions: []target.Action{
				{Kind: target.ActionLayers, Layers: []string{name}},
			},
			Source: SourceDiscovered,
		})
	}
	return out, nil
}

func skip(name string) bool {
	for _, pattern := range skipPatterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// detectExists maps a layer's payload to its installed location: a DLC
// payload installs under %(DLC)s, a mods payload under %(MODS)s. The
// first payload directory in lexical order names the installed entry.
func detectExists(layerDir string) string {
	if sub := firstDir(layerDir, "ro/dlc/*"); sub != "" {
		return "%(DLC)s/" + sub
	}
	if sub := firstDir(layerDir, "ro/mods/*"); sub != "" {
		return "%(MODS)s/" + sub
	}
	return ""
}

func firstDir(root, pattern string) string {
	var first string
	_ = doublestar.GlobWalk(os.DirFS(root), pattern, func(path string, d fs.DirEntry) error {
		if !d.IsDir() {
			return nil
		}
		if first == "" || path < first {
			first = path
		}
		return nil
	})
	if first == "" {
		return ""
	}
	return filepath.Base(first)
}

// Names returns the discovered target names, for logging.
func Names(targets []*target.Target) string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
