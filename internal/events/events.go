// Package events defines structured event types emitted around
// resolution runs, watch triggers, and state saves.
package events

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"
)

// Type represents the kind of event.
type Type string

const (
	ResolveStarted   Type = "resolve.started"
	ResolveCompleted Type = "resolve.completed"
	ResolveAmbiguous Type = "resolve.ambiguous"
	ResolveFailed    Type = "resolve.failed"
	WatchChanged     Type = "watch.changed"
	WatchRebuild     Type = "watch.rebuild"
	StateSaved       Type = "state.saved"
	StateDrift       Type = "state.drift"
)

// Event is a structured event emitted during a run.
type Event struct {
	Type      Type                   `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	RunID     string                 `json:"run_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// New creates a new event with the given type and run ID.
func New(eventType Type, runID string) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		RunID:     runID,
	}
}

// WithData adds a data field to the event and returns it for chaining.
func (e *Event) WithData(key string, value interface{}) *Event {
	if e.Data == nil {
		e.Data = make(map[string]interface{})
	}
	e.Data[key] = value
	return e
}

// JSON returns the event serialized as JSON.
func (e *Event) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Emitter is the interface for event consumers.
type Emitter interface {
	Emit(event *Event)
}

// NoopEmitter discards all events.
type NoopEmitter struct{}

// Emit implements Emitter by discarding the event.
func (NoopEmitter) Emit(*Event) {}

// LogEmitter writes each event to a structured logger.
type LogEmitter struct {
	Logger *slog.Logger
}

// Emit implements Emitter.
func (l *LogEmitter) Emit(event *Event) {
	l.Logger.Info("event",
		"event_type", string(event.Type),
		"run_id", event.RunID,
		"data", event.Data)
}

// CollectorEmitter collects events in memory for testing.
type CollectorEmitter struct {
	Events []*Event
}

// Emit appends the event to the collector.
func (c *CollectorEmitter) Emit(event *Event) {
	c.Events = append(c.Events, event)
}

// MultiEmitter fans one event out to several consumers.
type MultiEmitter []Emitter

// Emit implements Emitter.
func (m MultiEmitter) Emit(event *Event) {
	for _, e := range m {
		e.Emit(event)
	}
}

// ExportLog writes collected events to a JSON file, one indented array.
func ExportLog(evs []*Event, path string) error {
	data, err := json.MarshalIndent(evs, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}
