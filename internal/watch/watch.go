// Package watch implements the dev server loop: a filesystem watcher and
// an optional schedule trigger re-resolutions, and an HTTP server exposes
// the latest plan, health, metrics, and a live event stream.
package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/szaher/layermake/internal/events"
)

// DefaultDebounce coalesces bursts of filesystem events into one rebuild.
const DefaultDebounce = 250 * time.Millisecond

// Options configures a dev server run.
type Options struct {
	// Addr is the HTTP listen address.
	Addr string
	// Paths are the files and directories to watch.
	Paths []string
	// Schedule is an optional cron spec for periodic re-resolution.
	Schedule string
	// Debounce delays rebuilds after a filesystem event; zero uses
	// DefaultDebounce.
	Debounce time.Duration
}

// Run starts the dev server and blocks until ctx is cancelled. The
// server performs an initial resolution before serving.
func Run(ctx context.Context, s *Server, opts Options) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var schedule cron.Schedule
	if opts.Schedule != "" {
		var err error
		schedule, err = cron.ParseStandard(opts.Schedule)
		if err != nil {
			return fmt.Errorf("invalid schedule %q: %w", opts.Schedule, err)
		}
	}

	s.Rebuild(ctx, "manual")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.ListenAndServe(opts.Addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	if len(opts.Paths) > 0 {
		g.Go(func() error {
			return watchFiles(ctx, s, opts.Paths, debounce)
		})
	}

	if schedule != nil {
		c := cron.New()
		c.Schedule(schedule, cron.FuncJob(func() {
			s.Rebuild(ctx, "schedule")
		}))
		g.Go(func() error {
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		})
	}

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// watchFiles drives rebuilds from filesystem events, debounced so editor
// save bursts resolve once.
func watchFiles(ctx context.Context, s *Server, paths []string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
	}

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.emit(events.New(events.WatchChanged, s.runID).WithData("path", ev.Name))
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)

		case <-timerC:
			s.Rebuild(ctx, "fs")
		}
	}
}
