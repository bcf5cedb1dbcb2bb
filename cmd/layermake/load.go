package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/szaher/layermake/internal/buildfile"
	"github.com/szaher/layermake/internal/config"
	"github.com/szaher/layermake/internal/discover"
	"github.com/szaher/layermake/internal/plugin"
	"github.com/szaher/layermake/internal/probe"
	"github.com/szaher/layermake/internal/registry"
	"github.com/szaher/layermake/internal/target"
	"github.com/szaher/layermake/internal/telemetry"
)

// project is what subcommands share after loading: the merged config and
// the build file with gates applied and discovery and plugin targets
// folded in.
type project struct {
	cfg        *config.Config
	file       *buildfile.File
	gated      []string
	discovered []string
	plugged    []string
}

// registry indexes the effective target set. Kept separate from loading
// so validate can inspect a file whose duplicates would fail the build.
func (p *project) registry() (*registry.Registry, error) {
	return registry.Build(p.file.Targets)
}

// loadProject runs the load pipeline: config overlay, build file parse,
// when gates, implicit discovery, plugin contributions.
func loadProject(ctx context.Context, logger *slog.Logger) (*project, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	f, err := buildfile.Read(buildFile)
	if err != nil {
		return nil, err
	}

	gated, err := f.ApplyGates(cfg.Vars)
	if err != nil {
		return nil, err
	}
	if len(gated) > 0 {
		logger.Debug("targets gated out", "names", gated)
	}

	var discovered []string
	if layersDir := cfg.Vars["LAYERS"]; layersDir != "" {
		declared := make(map[string]bool, len(f.Targets))
		for _, t := range f.Targets {
			declared[t.Name] = true
		}
		found, err := discover.Scan(layersDir, func(name string) bool { return declared[name] })
		if err != nil {
			return nil, err
		}
		for _, t := range found {
			discovered = append(discovered, t.Name)
		}
		f.Append(found, true)
		if len(found) > 0 {
			logger.Debug("layers discovered", "names", discovered)
		}
	}

	plugged, err := loadPlugins(ctx, cfg, f, logger)
	if err != nil {
		return nil, err
	}

	return &project{
		cfg:        cfg,
		file:       f,
		gated:      gated,
		discovered: discovered,
		plugged:    plugged,
	}, nil
}

func loadConfig() (*config.Config, error) {
	paths := configPaths
	if len(paths) == 0 {
		paths = defaultConfigPaths()
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvironment(os.Environ())
	if err := cfg.ApplySet(setVars); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultConfigPaths returns the conventional config locations that exist,
// user-global first so the project file wins the overlay.
func defaultConfigPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "layermake", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	if _, err := os.Stat("layers-config.yaml"); err == nil {
		paths = append(paths, "layers-config.yaml")
	}
	return paths
}

func loadPlugins(ctx context.Context, cfg *config.Config, f *buildfile.File, logger *slog.Logger) ([]string, error) {
	if len(cfg.Plugins) == 0 {
		return nil, nil
	}

	host, err := plugin.NewHost(ctx)
	if err != nil {
		return nil, err
	}
	defer host.Close(ctx)

	contributed := make(map[string][]string)
	var all []*target.Target
	for _, entry := range cfg.Plugins {
		path, err := plugin.ResolvePath(entry)
		if err != nil {
			return nil, err
		}
		pl, err := host.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		tgts, err := pl.Targets(ctx, cfg.Vars)
		if err != nil {
			return nil, fmt.Errorf("plugin %q: %w", pl.Manifest.Name, err)
		}
		for _, t := range tgts {
			contributed[pl.Manifest.Name] = append(contributed[pl.Manifest.Name], t.Name)
		}
		all = append(all, tgts...)
		logger.Debug("plugin loaded",
			"name", pl.Manifest.Name,
			"version", pl.Manifest.Version,
			"targets", len(tgts))
	}

	if err := plugin.CheckConflicts(host.Plugins(), contributed); err != nil {
		return nil, err
	}

	skipped := f.Append(all, true)
	if len(skipped) > 0 {
		logger.Debug("plugin targets shadowed by declarations", "names", skipped)
	}

	var names []string
	for _, t := range all {
		names = append(names, t.Name)
	}
	return names, nil
}

// newProbe builds the filesystem probe with any CLI readiness overrides
// layered on top.
func newProbe(cfg *config.Config, assume, deny []string) probe.Probe {
	var p probe.Probe = probe.NewFS(cfg.Vars)
	if len(assume) > 0 || len(deny) > 0 {
		p = probe.NewOverride(p, assume, deny)
	}
	return p
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return telemetry.NewLogger(os.Stderr, level)
}
