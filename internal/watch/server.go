package watch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/szaher/layermake/internal/events"
	"github.com/szaher/layermake/internal/plan"
	"github.com/szaher/layermake/internal/telemetry"
)

// ResolveFunc re-reads the build inputs and resolves a fresh plan.
type ResolveFunc func(ctx context.Context) (*plan.Plan, error)

// Server holds the latest plan and serves it over HTTP while the
// watcher and schedule trigger re-resolutions.
type Server struct {
	resolve     ResolveFunc
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	emitter     events.Emitter
	broadcaster *Broadcaster
	runID       string

	mux       *http.ServeMux
	server    *http.Server
	startTime time.Time

	mu        sync.RWMutex
	latest    *plan.Plan
	latestErr error
	runs      int
}

// NewServer wires the handler mux. The emitter receives lifecycle events
// in addition to the SSE broadcaster.
func NewServer(resolve ResolveFunc, logger *slog.Logger, metrics *telemetry.Metrics, emitter events.Emitter, runID string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	s := &Server{
		resolve:     resolve,
		logger:      logger,
		metrics:     metrics,
		emitter:     emitter,
		broadcaster: NewBroadcaster(),
		runID:       runID,
		startTime:   time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /plan", s.handlePlan)
	mux.HandleFunc("POST /resolve", s.handleResolve)
	mux.HandleFunc("GET /events", s.handleEvents)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}
	s.mux = mux
	return s
}

// Handler returns the HTTP handler, for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{Addr: addr, Handler: s.mux}
	s.logger.Info("dev server starting", "addr", addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Runs returns how many resolutions have completed since start.
func (s *Server) Runs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs
}

// Latest returns the most recent plan and the error of the last run.
func (s *Server) Latest() (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latestErr
}

// Rebuild runs one resolution, updates the served plan, and records
// metrics and events. The trigger is "fs", "schedule", or "manual".
func (s *Server) Rebuild(ctx context.Context, trigger string) {
	start := time.Now()
	s.emit(events.New(events.WatchRebuild, s.runID).WithData("trigger", trigger))

	p, err := s.resolve(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.runs++
	s.latestErr = err
	if err == nil {
		s.latest = p
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.IncRebuild(trigger)
	}

	if err != nil {
		s.logger.Error("resolution failed", "trigger", trigger, "error", err)
		if s.metrics != nil {
			s.metrics.ObserveResolution(telemetry.StatusFatal, elapsed, 0, 0)
		}
		s.emit(events.New(events.ResolveFailed, s.runID).WithData("error", err.Error()))
		return
	}

	status := telemetry.StatusSuccess
	eventType := events.ResolveCompleted
	if !p.Success() {
		status = telemetry.StatusPartial
		eventType = events.ResolveAmbiguous
	}
	if s.metrics != nil {
		s.metrics.ObserveResolution(status, elapsed, len(p.Rows), len(p.Ambiguities))
	}
	s.logger.Info("resolved", "trigger", trigger,
		"queue", len(p.Rows), "ambiguities", len(p.Ambiguities),
		"elapsed", elapsed)
	s.emit(events.New(eventType, s.runID).
		WithData("trigger", trigger).
		WithData("queue", len(p.Rows)).
		WithData("ambiguities", len(p.Ambiguities)))
}

func (s *Server) emit(e *events.Event) {
	s.broadcaster.Emit(e)
	s.emitter.Emit(e)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	runs := s.runs
	healthy := s.latestErr == nil
	s.mu.RUnlock()

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"uptime": time.Since(s.startTime).String(),
		"runs":   runs,
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	latest := s.latest
	latestErr := s.latestErr
	s.mu.RUnlock()

	if latestErr != nil {
		writeError(w, http.StatusServiceUnavailable, "resolution_failed", latestErr.Error())
		return
	}
	if latest == nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "no resolution has completed yet")
		return
	}

	out, err := plan.FormatJSON(latest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	s.Rebuild(r.Context(), "manual")
	s.handlePlan(w, r)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", err.Error())
		return
	}

	ch, cancel := s.broadcaster.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := sse.WriteEvent(e); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}
