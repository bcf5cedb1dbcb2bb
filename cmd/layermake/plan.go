package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/szaher/layermake/internal/plan"
	"github.com/szaher/layermake/internal/registry"
	"github.com/szaher/layermake/internal/resolve"
	"github.com/szaher/layermake/internal/state"
	"github.com/szaher/layermake/internal/telemetry"
)

func newPlanCmd() *cobra.Command {
	var (
		jsonOut       bool
		levels        bool
		save          bool
		ignoreUnknown bool
		assume        []string
		deny          []string
	)

	cmd := &cobra.Command{
		Use:   "plan [targets...]",
		Short: "Resolve targets and print the build queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()

			proj, err := loadProject(ctx, logger)
			if err != nil {
				return err
			}
			reg, err := proj.registry()
			if err != nil {
				return err
			}

			requested := args
			if ignoreUnknown {
				requested = dropUnknown(reg, requested, logger)
			}

			id := runID
			if id == "" {
				id = telemetry.NewRunID()
			}

			start := time.Now()
			res, err := resolve.Resolve(reg, requested, newProbe(proj.cfg, assume, deny))
			if err != nil {
				return err
			}
			p := plan.New(res, reg)
			logger.Debug("resolution finished",
				"run_id", id,
				"queue", len(p.Rows),
				"ambiguities", len(p.Ambiguities),
				"elapsed", time.Since(start))

			var output string
			switch {
			case jsonOut:
				output, err = plan.FormatJSON(p)
				if err != nil {
					return err
				}
			case levels:
				output = plan.FormatLevels(p)
			default:
				output = plan.FormatText(p)
			}
			fmt.Print(output)

			if save {
				if p.Success() {
					if err := saveSnapshot(ctx, p, id); err != nil {
						return err
					}
				} else {
					logger.Warn("not saving state, resolution incomplete")
				}
			}

			if !p.Success() {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the plan as JSON")
	cmd.Flags().BoolVar(&levels, "levels", false, "Group the queue into parallel stages")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the outcome to the state backend")
	cmd.Flags().BoolVar(&ignoreUnknown, "ignore-unknown", false, "Drop unknown requested targets instead of failing")
	cmd.Flags().StringArrayVar(&assume, "assume", nil, "Treat a target as ready without probing (repeatable)")
	cmd.Flags().StringArrayVar(&deny, "deny", nil, "Treat a target as missing without probing (repeatable)")

	return cmd
}

func dropUnknown(reg *registry.Registry, requested []string, logger *slog.Logger) []string {
	var kept []string
	for _, name := range requested {
		if len(reg.Candidates(name)) == 0 {
			logger.Warn("ignoring unknown target", "name", name)
			continue
		}
		kept = append(kept, name)
	}
	return kept
}

func saveSnapshot(ctx context.Context, p *plan.Plan, id string) error {
	backend, err := state.Open(ctx, stateURI)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.Save(ctx, p.Capture(id, time.Now())); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}
