package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/szaher/layermake/internal/events"
	"github.com/szaher/layermake/internal/plan"
	"github.com/szaher/layermake/internal/resolve"
	"github.com/szaher/layermake/internal/telemetry"
	"github.com/szaher/layermake/internal/watch"
)

func newDevCmd() *cobra.Command {
	var (
		listen   string
		schedule string
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "dev [targets...]",
		Short: "Watch for changes and serve live resolution state",
		Long: `Re-resolves whenever the build file, a config file, or the layers
directory changes, and serves the latest outcome over HTTP:
/healthz, /plan, /events (SSE), and /metrics (Prometheus).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			id := runID
			if id == "" {
				id = telemetry.NewRunID()
			}

			requested := args
			resolveFn := func(ctx context.Context) (*plan.Plan, error) {
				proj, err := loadProject(ctx, logger)
				if err != nil {
					return nil, err
				}
				reg, err := proj.registry()
				if err != nil {
					return nil, err
				}
				res, err := resolve.Resolve(reg, requested, newProbe(proj.cfg, nil, nil))
				if err != nil {
					return nil, err
				}
				return plan.New(res, reg), nil
			}

			srv := watch.NewServer(resolveFn, logger, telemetry.NewMetrics(), &events.LogEmitter{Logger: logger}, id)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			paths := watchPaths()
			logger.Info("starting dev server", "listen", listen, "paths", paths, "run_id", id)

			return watch.Run(ctx, srv, watch.Options{
				Addr:     listen,
				Paths:    paths,
				Schedule: schedule,
				Debounce: debounce,
			})
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8484", "HTTP listen address")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron spec for periodic re-probing")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Delay before rebuilding after a change")

	return cmd
}

// watchPaths collects the inputs whose changes should trigger a rebuild:
// the build file, every config source, and the layers directory.
func watchPaths() []string {
	paths := []string{buildFile}

	cfg, err := loadConfig()
	if err != nil {
		return paths
	}
	paths = append(paths, cfg.Sources...)

	if layersDir := cfg.Vars["LAYERS"]; layersDir != "" {
		if info, err := os.Stat(layersDir); err == nil && info.IsDir() {
			paths = append(paths, layersDir)
		}
	}
	return paths
}
