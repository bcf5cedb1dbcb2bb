package probe

import (
	"fmt"
	"time"

	"github.com/szaher/layermake/internal/target"
)

// RetryConfig bounds the retry behavior of a retrying probe.
type RetryConfig struct {
	// Attempts is the total number of tries per target; values below 1
	// fall back to 3.
	Attempts int
	// Delay is the pause between tries.
	Delay time.Duration
}

// Retry wraps a probe with bounded retries. Retry policy belongs to the
// probe, not the resolver, so flaky media (network mounts, slow external
// drives) are handled here.
type Retry struct {
	Base Probe
	Cfg  RetryConfig
}

// WithRetry wraps base in a retrying probe.
func WithRetry(base Probe, cfg RetryConfig) *Retry {
	if cfg.Attempts < 1 {
		cfg.Attempts = 3
	}
	return &Retry{Base: base, Cfg: cfg}
}

// IsReady implements Probe.
func (p *Retry) IsReady(t *target.Target) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < p.Cfg.Attempts; attempt++ {
		if attempt > 0 && p.Cfg.Delay > 0 {
			time.Sleep(p.Cfg.Delay)
		}
		ready, err := p.Base.IsReady(t)
		if err == nil {
			return ready, nil
		}
		lastErr = err
	}
	return false, fmt.Errorf("after %d attempts: %w", p.Cfg.Attempts, lastErr)
}

// ArtifactPath implements Probe.
func (p *Retry) ArtifactPath(t *target.Target) string {
	return p.Base.ArtifactPath(t)
}
