// Package health caches backend availability so hot paths do not ping the
// search backend on every call.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long one ping verdict is trusted.
const DefaultTTL = 10 * time.Second

// Pinger is the slice of the backend client the gate needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Gate answers "is the backend reachable" from a cached ping. Both positive
// and negative verdicts are cached for the TTL, so a backend outage costs at
// most one failed ping per window.
type Gate struct {
	pinger Pinger
	ttl    time.Duration
	logger *zap.Logger

	now func() time.Time

	mu        sync.Mutex
	checkedAt time.Time
	available bool
}

// NewGate returns a gate over the given pinger. A non-positive ttl falls back
// to DefaultTTL.
func NewGate(pinger Pinger, ttl time.Duration, logger *zap.Logger) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		pinger: pinger,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Available reports whether the backend answered a ping within the TTL
// window. A fresh ping is issued only when the cached verdict has expired.
func (g *Gate) Available(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.checkedAt.IsZero() && g.now().Sub(g.checkedAt) < g.ttl {
		return g.available
	}

	err := g.pinger.Ping(ctx)
	g.checkedAt = g.now()
	g.available = err == nil
	if err != nil {
		g.logger.Warn("search backend unavailable", zap.Error(err))
	}
	return g.available
}

// Refresh forces the next Available call to ping again.
func (g *Gate) Refresh() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkedAt = time.Time{}
}
