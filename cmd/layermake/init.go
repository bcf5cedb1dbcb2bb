package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterBuildFile = `# layermake build file. Each key is a target; depends and provides wire
# targets together, exists tells the probe what to look for on disk.

default:
  depends: [edition, mods]

# Abstract capability: satisfied by whichever edition is installed.
edition:
  essential: true

goty:
  exists: "%(GAME)s/content"
  provides: [edition]

nextgen:
  exists: "%(GAME)s/content_ng"
  provides: [edition]

mods:
  exists: "%(MODS)s/mod_merged"
  depends: [edition]
  actions:
    - layers: [modsettings]
`

const starterConfigFile = `# Machine-specific paths. %(NAME)s placeholders in the build file resolve
# against these. LAYERS also enables implicit discovery of drop-in layers;
# PLUGINS lists WASM modules that contribute targets.

GAME: /games/witcher3
MODS: /games/witcher3/mods
DLC: /games/witcher3/dlc
LAYERS: ./layers
`

const starterConfigName = "layers-config.yaml"

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a starter build file and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range []string{buildFile, starterConfigName} {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("file %q already exists", path)
				}
			}

			if err := os.WriteFile(buildFile, []byte(starterBuildFile), 0644); err != nil {
				return fmt.Errorf("write %s: %w", buildFile, err)
			}
			if err := os.WriteFile(starterConfigName, []byte(starterConfigFile), 0644); err != nil {
				return fmt.Errorf("write %s: %w", starterConfigName, err)
			}

			fmt.Printf("Created %s and %s\n", buildFile, starterConfigName)
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Printf("  1. Edit %s so the paths match this machine\n", starterConfigName)
			fmt.Printf("  2. Run: layermake validate\n")
			fmt.Printf("  3. Run: layermake plan\n")
			return nil
		},
	}

	return cmd
}
