// Package plugin implements the WASM plugin host. Plugins contribute
// targets the build file never declared, the way a game-specific helper
// would synthesize layers from an installed game tree.
//
// A plugin module exports two functions, each returning a packed
// (ptr, size) pair into its linear memory:
//
//	manifest() -> JSON {name, version, description}
//	targets()  -> JSON map of target name to
//	              {exists, depends, provides, essential, layers}
//
// The machine config is passed to targets() as JSON on stdin.
package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/szaher/layermake/internal/target"
	"github.com/szaher/layermake/internal/vars"
)

// SourcePlugin marks targets contributed by a plugin.
const SourcePlugin = "plugin"

// Manifest describes a loaded plugin.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Host manages WASM plugin instances.
type Host struct {
	runtime wazero.Runtime
	plugins []*Plugin
}

// Plugin is a compiled plugin module with its manifest.
type Plugin struct {
	Manifest Manifest
	Path     string

	host     *Host
	compiled wazero.CompiledModule
}

// NewHost creates a WASM plugin host with WASI available to modules.
func NewHost(ctx context.Context) (*Host, error) {
	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	return &Host{runtime: rt}, nil
}

// Load compiles a plugin and reads its manifest.
func (h *Host) Load(ctx context.Context, path string) (*Plugin, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plugin %s: %w", path, err)
	}

	compiled, err := h.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("compiling plugin %s: %w", path, err)
	}

	p := &Plugin{Path: path, host: h, compiled: compiled}
	data, err := p.call(ctx, "manifest", nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &p.Manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest of %s: %w", path, err)
	}
	if p.Manifest.Name == "" {
		return nil, fmt.Errorf("plugin %s declares no name", path)
	}

	h.plugins = append(h.plugins, p)
	return p, nil
}

// Plugins returns the loaded plugins in load order.
func (h *Host) Plugins() []*Plugin {
	return h.plugins
}

// Close releases all plugin resources.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// Targets asks the plugin for its contributed targets, passing the
// machine config as JSON on stdin.
func (p *Plugin) Targets(ctx context.Context, v vars.Map) ([]*target.Target, error) {
	stdin, err := json.Marshal(map[string]string(v))
	if err != nil {
		return nil, err
	}
	data, err := p.call(ctx, "targets", stdin)
	if err != nil {
		return nil, err
	}
	targets, err := parseTargets(data)
	if err != nil {
		return nil, fmt.Errorf("parsing targets of %s: %w", p.Manifest.Name, err)
	}
	return targets, nil
}

// call instantiates the module fresh, invokes an export returning a
// packed (ptr, size) pair, and copies the result out of linear memory.
// Instances are anonymous so one compiled module can be invoked
// repeatedly.
func (p *Plugin) call(ctx context.Context, fnName string, stdin []byte) ([]byte, error) {
	cfg := wazero.NewModuleConfig().
		WithName("").
		WithStdout(os.Stdout).
		WithStderr(os.Stderr)
	if stdin != nil {
		cfg = cfg.WithStdin(bytes.NewReader(stdin))
	}

	mod, err := p.host.runtime.InstantiateModule(ctx, p.compiled, cfg)
	if err != nil {
		return nil, fmt.Errorf("instantiating plugin %s: %w", p.Path, err)
	}
	defer func() { _ = mod.Close(ctx) }()

	fn := mod.ExportedFunction(fnName)
	if fn == nil {
		return nil, fmt.Errorf("plugin %s does not export %q", p.Path, fnName)
	}

	results, err := fn.Call(ctx)
	if err != nil {
		return nil, fmt.Errorf("calling %s in %s: %w", fnName, p.Path, err)
	}
	if len(results) < 2 {
		return nil, fmt.Errorf("%s in %s returned no (ptr, size) pair", fnName, p.Path)
	}

	ptr, size := uint32(results[0]), uint32(results[1])
	data, ok := mod.Memory().Read(ptr, size)
	if !ok {
		return nil, fmt.Errorf("reading %s result of %s out of memory bounds", fnName, p.Path)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
