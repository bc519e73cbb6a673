package core

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/coregx/tabula/internal/logger"
)

// healthChecker pings the pool on a fixed interval so dead connections
// surface before the next query does.
type healthChecker struct {
	db       *sql.DB
	logger   logger.Logger
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	lastErr  error
	lastPing time.Time
}

func newHealthChecker(db *sql.DB, log logger.Logger, interval time.Duration) *healthChecker {
	return &healthChecker{
		db:       db,
		logger:   log,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// start launches the probe loop in a background goroutine.
func (h *healthChecker) start() {
	h.wg.Add(1)
	go h.run()
}

func (h *healthChecker) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.ping()
		case <-h.stop:
			return
		}
	}
}

func (h *healthChecker) ping() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := h.db.PingContext(ctx)

	h.mu.Lock()
	h.lastErr = err
	h.lastPing = time.Now()
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("database health check failed",
			"error", err,
			"interval", h.interval)
	} else {
		h.logger.Debug("database health check passed",
			"interval", h.interval)
	}
}

// shutdown halts the loop and waits for the goroutine to exit.
func (h *healthChecker) shutdown() {
	close(h.stop)
	h.wg.Wait()
}

// isHealthy reports whether the most recent probe succeeded. Before the
// first probe fires it reports true, matching a freshly opened pool.
func (h *healthChecker) isHealthy() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr == nil
}

// lastCheck returns the time of the most recent probe.
func (h *healthChecker) lastCheck() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastPing
}
