// Package main is the entry point for the layermake CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "0.2.0"

// Global flags.
var (
	buildFile   string
	configPaths []string
	setVars     []string
	stateURI    string
	verbose     bool
	noColor     bool
	runID       string
)

const defaultStateURI = ".layermake.state.json"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "layermake",
		Short: "Declarative layer resolution for modded game installs",
		Long: `Layermake reads a build file of named layers, works out which layers a
request needs by probing what is already installed, and prints the build
queue in dependency order. Abstract names are satisfied by whichever
provider is present on this machine; a tie is reported, never guessed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVarP(&buildFile, "file", "f", "layers.yaml", "Path to the build file")
	root.PersistentFlags().StringArrayVarP(&configPaths, "config", "c", nil, "Config file (repeatable, later files win)")
	root.PersistentFlags().StringArrayVar(&setVars, "set", nil, "Override a config variable (NAME=value, repeatable)")
	root.PersistentFlags().StringVar(&stateURI, "state", defaultStateURI, "State location (path, file://, s3://, postgres://, etcd://)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose output")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().StringVar(&runID, "run-id", "", "Set explicit run ID")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newDevCmd())
	root.AddCommand(newInitCmd())

	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
