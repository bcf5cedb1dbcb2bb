package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/szaher/layermake/internal/plan"
	"github.com/szaher/layermake/internal/resolve"
	"github.com/szaher/layermake/internal/state"
)

func newStatusCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compare the saved snapshot against current readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()

			backend, err := state.Open(ctx, stateURI)
			if err != nil {
				return err
			}
			defer backend.Close()

			saved, err := backend.Load(ctx)
			if err != nil {
				return err
			}
			if saved == nil {
				return fmt.Errorf("no saved state at %s (run 'layermake plan --save' first)", stateURI)
			}

			proj, err := loadProject(ctx, logger)
			if err != nil {
				return err
			}
			reg, err := proj.registry()
			if err != nil {
				return err
			}

			// Re-resolve the names the snapshot was taken for, so the
			// comparison sees the same request.
			res, err := resolve.Resolve(reg, saved.Requested, newProbe(proj.cfg, nil, nil))
			if err != nil {
				return err
			}
			current := plan.New(res, reg)

			drift := plan.DetectDrift(saved, current)

			var output string
			if jsonOut {
				output, err = plan.FormatDriftJSON(drift)
				if err != nil {
					return err
				}
			} else {
				output = plan.FormatDriftText(drift)
			}
			fmt.Print(output)

			if drift.HasDrift {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output drift as JSON")

	return cmd
}
