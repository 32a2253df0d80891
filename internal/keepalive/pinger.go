// Package keepalive pings the hosted backend on an interval so the
// free-tier project is never paused for inactivity.
package keepalive

import (
	"context"
	"time"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// Pinger drives the periodic keep-alive ping.
type Pinger struct {
	backend  backend.Service
	interval time.Duration
	logger   *logging.Logger
}

func New(be backend.Service, interval time.Duration, logger *logging.Logger) *Pinger {
	if logger == nil {
		logger = logging.Default()
	}
	return &Pinger{backend: be, interval: interval, logger: logger}
}

// Run pings immediately, then on every tick until ctx is cancelled.
// A failed ping is logged and retried at the next tick.
func (p *Pinger) Run(ctx context.Context) {
	p.ping(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("keepalive stopped")
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	if err := p.backend.Ping(ctx); err != nil {
		p.logger.Warn("keepalive ping failed", "error", err)
		return
	}
	p.logger.Debug("keepalive ping ok")
}
