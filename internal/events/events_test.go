package events

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEvent_WithDataChaining(t *testing.T) {
	e := New(ResolveCompleted, "01JRUN").
		WithData("queue", 3).
		WithData("ambiguities", 0)

	if e.Type != ResolveCompleted || e.RunID != "01JRUN" {
		t.Errorf("event = %+v", e)
	}
	if e.Data["queue"] != 3 {
		t.Errorf("Data[queue] = %v", e.Data["queue"])
	}
	if e.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestEvent_JSON(t *testing.T) {
	e := New(WatchChanged, "01JRUN").WithData("path", "layers.yaml")

	data, err := e.JSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"type":"watch.changed"`) || !strings.Contains(s, `"path":"layers.yaml"`) {
		t.Errorf("json = %s", s)
	}
}

func TestLogEmitter(t *testing.T) {
	var buf bytes.Buffer
	l := &LogEmitter{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	l.Emit(New(ResolveAmbiguous, "01JRUN").WithData("capability", "edition"))

	s := buf.String()
	if !strings.Contains(s, "resolve.ambiguous") || !strings.Contains(s, "01JRUN") {
		t.Errorf("log line = %s", s)
	}
}

func TestCollectorEmitter(t *testing.T) {
	c := &CollectorEmitter{}

	c.Emit(New(ResolveStarted, "a"))
	c.Emit(New(ResolveCompleted, "a"))

	if len(c.Events) != 2 {
		t.Fatalf("collected %d events, want 2", len(c.Events))
	}
	if c.Events[0].Type != ResolveStarted {
		t.Errorf("first event = %v", c.Events[0].Type)
	}
}

func TestMultiEmitter(t *testing.T) {
	a := &CollectorEmitter{}
	b := &CollectorEmitter{}
	m := MultiEmitter{a, b, NoopEmitter{}}

	m.Emit(New(StateSaved, "a"))

	if len(a.Events) != 1 || len(b.Events) != 1 {
		t.Errorf("fan-out reached %d and %d emitters", len(a.Events), len(b.Events))
	}
}

func TestExportLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	evs := []*Event{
		New(ResolveStarted, "01JRUN"),
		New(ResolveCompleted, "01JRUN").WithData("queue", 2),
	}

	if err := ExportLog(evs, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded []Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("exported file is not JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Type != ResolveCompleted {
		t.Errorf("decoded = %+v", decoded)
	}
}
