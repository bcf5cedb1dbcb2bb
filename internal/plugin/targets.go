package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/szaher/layermake/internal/target"
)

// wireTarget is the JSON shape plugins return from targets(). A flat
// layers list stands in for the full action syntax; most plugin targets
// only carry an exists pattern.
type wireTarget struct {
	Exists    string   `json:"exists,omitempty"`
	Depends   []string `json:"depends,omitempty"`
	Provides  []string `json:"provides,omitempty"`
	Essential bool     `json:"essential,omitempty"`
	Layers    []string `json:"layers,omitempty"`
}

// parseTargets decodes a plugin's target map, sorted by name for
// deterministic merge order.
func parseTargets(data []byte) ([]*target.Target, error) {
	var wire map[string]wireTarget
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(wire))
	for name := range wire {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []*target.Target
	for _, name := range names {
		w := wire[name]
		t := &target.Target{
			Name:      name,
			Exists:    w.Exists,
			Depends:   w.Depends,
			Provides:  w.Provides,
			Essential: w.Essential,
			Source:    SourcePlugin,
		}
		if len(w.Layers) > 0 {
			t.Actions = []target.Action{{Kind: target.ActionLayers, Layers: w.Layers}}
		}
		out = append(out, t)
	}
	return out, nil
}

// CheckConflicts rejects the same target name contributed by two plugins.
func CheckConflicts(plugins []*Plugin, contributed map[string][]string) error {
	owner := make(map[string]string)
	for _, p := range plugins {
		for _, name := range contributed[p.Manifest.Name] {
			if existing, ok := owner[name]; ok {
				return fmt.Errorf("target %q contributed by both %q and %q",
					name, existing, p.Manifest.Name)
			}
			owner[name] = p.Manifest.Name
		}
	}
	return nil
}

// ResolvePath finds a plugin module: a path that exists is used as
// given, a bare name is looked up under ~/.layermake/plugins/<name>.wasm.
func ResolvePath(entry string) (string, error) {
	if _, err := os.Stat(entry); err == nil {
		return entry, nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		name := entry
		if filepath.Ext(name) != ".wasm" {
			name += ".wasm"
		}
		cached := filepath.Join(home, ".layermake", "plugins", name)
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
	}

	return "", fmt.Errorf("plugin %q not found", entry)
}
