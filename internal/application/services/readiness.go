package services

import (
	"context"
	"fmt"
	"time"

	"kilometers.ai/loader/internal/core/poll"
	"kilometers.ai/loader/internal/core/ports"
)

// DefaultHostInterval is the wait between two host readiness checks
const DefaultHostInterval = 300 * time.Millisecond

// ReadinessShim gates loader startup on the host's navigation capability
type ReadinessShim struct {
	host     ports.Host
	interval time.Duration
	logger   ports.Logger
}

// NewReadinessShim creates a shim polling host every interval
func NewReadinessShim(host ports.Host, interval time.Duration, logger ports.Logger) *ReadinessShim {
	if interval <= 0 {
		interval = DefaultHostInterval
	}
	return &ReadinessShim{host: host, interval: interval, logger: logger}
}

// AwaitHostReady blocks until the host exposes its navigator. There is no
// deadline; only ctx cancellation ends the wait early.
func (s *ReadinessShim) AwaitHostReady(ctx context.Context) error {
	res, err := poll.Until(ctx, poll.Every(s.interval), func() bool {
		_, ok := s.host.Navigator()
		return ok
	})
	if err != nil {
		return fmt.Errorf("waiting for host: %w", err)
	}
	if res.Attempts > 1 {
		s.logger.Debug("host ready", "attempts", res.Attempts, "elapsed", res.Elapsed)
	}
	return nil
}
