package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// LockConfig tunes the advisory file lock guarding local snapshots.
type LockConfig struct {
	// Timeout bounds the wait for the lock; zero keeps the default.
	Timeout time.Duration
	// RetryDelay is the poll interval while waiting; zero keeps the
	// default.
	RetryDelay time.Duration
}

// DefaultLockConfig returns the lock settings used when none are given.
func DefaultLockConfig() LockConfig {
	return LockConfig{
		Timeout:    5 * time.Second,
		RetryDelay: 100 * time.Millisecond,
	}
}

// LocalBackend stores the snapshot in a local JSON file, guarded by an
// advisory flock so concurrent runs against the same file do not
// interleave writes.
type LocalBackend struct {
	Path       string
	lockConfig LockConfig
}

// NewLocalBackend creates a local JSON snapshot backend.
func NewLocalBackend(path string) *LocalBackend {
	return &LocalBackend{Path: path, lockConfig: DefaultLockConfig()}
}

// WithLockConfig overrides lock settings. Zero fields keep their current
// value. Returns the backend for chaining.
func (b *LocalBackend) WithLockConfig(cfg LockConfig) *LocalBackend {
	if cfg.Timeout > 0 {
		b.lockConfig.Timeout = cfg.Timeout
	}
	if cfg.RetryDelay > 0 {
		b.lockConfig.RetryDelay = cfg.RetryDelay
	}
	return b
}

// withLock runs fn while holding the advisory lock next to the snapshot
// file.
func (b *LocalBackend) withLock(ctx context.Context, fn func() error) error {
	lock := flock.New(b.Path + ".lock")
	lockCtx, cancel := context.WithTimeout(ctx, b.lockConfig.Timeout)
	defer cancel()

	ok, err := lock.TryLockContext(lockCtx, b.lockConfig.RetryDelay)
	if err != nil {
		return fmt.Errorf("locking state file %s: %w", b.Path, err)
	}
	if !ok {
		return fmt.Errorf("state file %s is locked by another run", b.Path)
	}
	defer lock.Unlock()

	return fn()
}

// Load reads the snapshot, returning (nil, nil) when the file does not
// exist yet.
func (b *LocalBackend) Load(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := b.withLock(ctx, func() error {
		data, err := os.ReadFile(b.Path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		s, err := DecodeSnapshot(data)
		if err != nil {
			return fmt.Errorf("decoding state file %s: %w", b.Path, err)
		}
		snap = s
		return nil
	})
	return snap, err
}

// Save writes the snapshot atomically: a temp file in the same directory
// renamed over the target.
func (b *LocalBackend) Save(ctx context.Context, snap *Snapshot) error {
	return b.withLock(ctx, func() error {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')

		tmp := b.Path + ".tmp"
		if err := os.WriteFile(tmp, data, 0644); err != nil {
			return err
		}
		return os.Rename(tmp, b.Path)
	})
}

// Close implements Backend.
func (b *LocalBackend) Close() error { return nil }
