package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/szaher/layermake/internal/state"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("layermake version %s (state format %s)\n", version, state.Version)
		},
	}
}
