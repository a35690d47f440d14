package monitor

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval is the default time between health checks
const DefaultInterval = 15 * time.Second

// Pinger is the database handle the monitor checks
type Pinger interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// Recorder receives database metrics
type Recorder interface {
	RecordDBPool(stats sql.DBStats)
	SetDBUp(up bool)
}

// HealthStatus represents the result of a health check
type HealthStatus struct {
	Healthy   bool
	Database  string
	Error     string
	Latency   time.Duration
	Pool      sql.DBStats
	Timestamp time.Time
}

// HealthMonitor monitors database health
type HealthMonitor struct {
	db       Pinger
	recorder Recorder
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu        sync.RWMutex
	running   bool
	status    HealthStatus
	listeners []func(healthy bool)
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewHealthMonitor creates a new health monitor. recorder may be nil.
func NewHealthMonitor(db Pinger, recorder Recorder, interval, timeout time.Duration, logger *zap.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if timeout <= 0 {
		timeout = interval
	}

	return &HealthMonitor{
		db:       db,
		recorder: recorder,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		status:   HealthStatus{Database: "unknown"},
	}
}

// OnChange registers fn to be called whenever the health state flips
func (h *HealthMonitor) OnChange(fn func(healthy bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Start runs a first check and then keeps checking in the background
func (h *HealthMonitor) Start(ctx context.Context) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stopCh = make(chan struct{})
	h.doneCh = make(chan struct{})
	h.mu.Unlock()

	h.Check(ctx)

	go h.run(ctx)
}

// Stop stops the health monitor and waits for the loop to exit
func (h *HealthMonitor) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	stopCh, doneCh := h.stopCh, h.doneCh
	h.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (h *HealthMonitor) run(ctx context.Context) {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Check pings the database now and updates the stored status
func (h *HealthMonitor) Check(ctx context.Context) HealthStatus {
	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(checkCtx)
	status := HealthStatus{
		Healthy:   err == nil,
		Database:  "ok",
		Latency:   time.Since(start),
		Pool:      h.db.Stats(),
		Timestamp: time.Now(),
	}
	if err != nil {
		status.Database = "error"
		status.Error = err.Error()
	}

	if h.recorder != nil {
		h.recorder.RecordDBPool(status.Pool)
		h.recorder.SetDBUp(status.Healthy)
	}

	h.logger.Debug("database health check",
		zap.Bool("healthy", status.Healthy),
		zap.Duration("latency", status.Latency),
		zap.Int("open", status.Pool.OpenConnections),
		zap.Int("in_use", status.Pool.InUse),
		zap.Int("idle", status.Pool.Idle))

	if !status.Healthy {
		h.logger.Warn("database is unhealthy", zap.Error(err))
	}

	if limit := status.Pool.MaxOpenConnections; limit > 0 && status.Pool.InUse >= limit {
		h.logger.Warn("all database connections are in use - consider raising DB_POOL_MAX",
			zap.Int("max", limit))
	}

	h.mu.Lock()
	changed := h.status.Healthy != status.Healthy || h.status.Timestamp.IsZero()
	h.status = status
	listeners := append([]func(bool){}, h.listeners...)
	h.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(status.Healthy)
		}
	}

	return status
}

// GetStatus returns the result of the last check
func (h *HealthMonitor) GetStatus() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// IsHealthy returns true if the last check succeeded
func (h *HealthMonitor) IsHealthy() bool {
	return h.GetStatus().Healthy
}
