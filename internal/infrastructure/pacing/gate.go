package pacing

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"NewsDesk/internal/ports"
)

// Gate spaces outbound calls by a fixed minimum interval.
type Gate struct {
	limiter *rate.Limiter
}

var _ ports.Pacer = (*Gate)(nil)

// NewGate allows one call per interval. A non-positive interval disables pacing.
func NewGate(interval time.Duration) *Gate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Gate{limiter: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next call may proceed or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacing wait: %w", err)
	}
	return nil
}
