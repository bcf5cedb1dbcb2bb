// Package state persists resolution snapshots so later runs can detect
// drift. Backends are addressed by URI: a bare path or file:// URI selects
// the local JSON backend, s3://, postgres:// and etcd:// select the remote
// ones.
package state

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Version is the snapshot schema version written by this build.
const Version = "1"

// Snapshot is the persisted outcome of one resolution run.
type Snapshot struct {
	Version   string            `json:"version"`
	RunID     string            `json:"run_id,omitempty"`
	SavedAt   time.Time         `json:"saved_at"`
	Requested []string          `json:"requested"`
	Queue     []Entry           `json:"queue"`
	Selected  map[string]string `json:"selected,omitempty"`
}

// Entry records one queued target at save time.
type Entry struct {
	Name     string `json:"name"`
	Artifact string `json:"artifact,omitempty"`
	Ready    bool   `json:"ready"`
}

// Names returns the queued target names in order.
func (s *Snapshot) Names() []string {
	out := make([]string, len(s.Queue))
	for i, e := range s.Queue {
		out[i] = e.Name
	}
	return out
}

// Entry returns the named queue entry, or nil.
func (s *Snapshot) Entry(name string) *Entry {
	for i := range s.Queue {
		if s.Queue[i].Name == name {
			return &s.Queue[i]
		}
	}
	return nil
}

// Backend is the interface for snapshot persistence. Load returns
// (nil, nil) when no snapshot has been saved yet.
type Backend interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}

// Open selects and connects a backend for the given URI.
func Open(ctx context.Context, uri string) (Backend, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty state location")
	}
	if !strings.Contains(uri, "://") {
		return NewLocalBackend(uri), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing state location %q: %w", uri, err)
	}

	switch u.Scheme {
	case "file":
		return NewLocalBackend(u.Path), nil
	case "s3":
		return NewS3Backend(ctx, u)
	case "postgres", "postgresql":
		return NewPostgresBackend(ctx, uri)
	case "etcd":
		return NewEtcdBackend(ctx, u)
	default:
		return nil, fmt.Errorf("unsupported state backend %q", u.Scheme)
	}
}
