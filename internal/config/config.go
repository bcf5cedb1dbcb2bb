// Package config loads the machine-specific configuration that supplies
// %(VAR)s substitution values, the implicit-discovery root, and plugin
// paths. Configuration is a flat YAML mapping; later sources win.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/szaher/layermake/internal/vars"
)

// EnvVarPrefix is the prefix for environment overrides: LAYERMAKE_VAR_GAME
// sets the GAME variable.
const EnvVarPrefix = "LAYERMAKE_VAR_"

// ReservedPlugins is the config key listing WASM plugin paths; it is not a
// substitution variable.
const ReservedPlugins = "PLUGINS"

// Config is the merged machine configuration.
type Config struct {
	Vars    vars.Map
	Plugins []string
	Sources []string
}

// New returns an empty configuration.
func New() *Config {
	return &Config{Vars: vars.Map{}}
}

// Load reads and merges the given YAML files in order. Every path must
// exist; callers filter optional locations first.
func Load(paths ...string) (*Config, error) {
	cfg := New()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := cfg.merge(data, path); err != nil {
			return nil, err
		}
		cfg.Sources = append(cfg.Sources, path)
	}
	return cfg, nil
}

func (c *Config) merge(data []byte, source string) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: parsing %s: %w", source, err)
	}

	for key, value := range raw {
		if key == ReservedPlugins {
			paths, err := stringList(value)
			if err != nil {
				return fmt.Errorf("config: %s: %s: %w", source, key, err)
			}
			c.Plugins = append(c.Plugins, paths...)
			continue
		}
		s, err := scalarString(value)
		if err != nil {
			return fmt.Errorf("config: %s: value for %q: %w", source, key, err)
		}
		c.Vars[key] = s
	}
	return nil
}

// ApplyEnvironment overlays LAYERMAKE_VAR_* entries from environ (as
// returned by os.Environ) onto the variable map.
func (c *Config) ApplyEnvironment(environ []string) {
	for _, entry := range environ {
		if !strings.HasPrefix(entry, EnvVarPrefix) {
			continue
		}
		kv := strings.SplitN(entry[len(EnvVarPrefix):], "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			continue
		}
		c.Vars[kv[0]] = kv[1]
	}
}

// ApplySet overlays NAME=value pairs from --set flags, highest precedence.
func (c *Config) ApplySet(pairs []string) error {
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return fmt.Errorf("config: malformed --set %q (expected NAME=value)", pair)
		}
		c.Vars[kv[0]] = kv[1]
	}
	return nil
}

// VarNames returns the defined variable names, sorted.
func (c *Config) VarNames() []string {
	names := make([]string, 0, len(c.Vars))
	for k := range c.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func scalarString(v interface{}) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("must be a scalar, got %T", v)
	}
}

func stringList(v interface{}) ([]string, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("must be a list of strings, got %T", v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("must be a list of strings, got element %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}
