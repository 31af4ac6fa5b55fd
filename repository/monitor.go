package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emzola/shelflog/internal/jsonlog"
)

// Connector is the connection surface a backend exposes to the Monitor.
type Connector interface {
	// Connect establishes (or re-establishes) the backend connection.
	Connect(ctx context.Context) error
	// Ping checks that an established connection is still usable.
	Ping(ctx context.Context) error
}

// Monitor keeps track of whether a backend is ready. It connects in the
// background, retries with a fixed delay after a failure and pings on an
// interval to notice disconnects. Readiness is never request visible beyond
// Ready: callers fail fast instead of waiting on the reconnect loop.
type Monitor struct {
	name           string
	conn           Connector
	logger         *jsonlog.Logger
	reconnectDelay time.Duration
	heartbeat      time.Duration
	timeout        time.Duration
	ready          atomic.Bool
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

// NewMonitor creates a Monitor for conn. timeout bounds every Connect and Ping.
func NewMonitor(name string, conn Connector, logger *jsonlog.Logger, reconnectDelay, heartbeat, timeout time.Duration) *Monitor {
	return &Monitor{
		name:           name,
		conn:           conn,
		logger:         logger,
		reconnectDelay: reconnectDelay,
		heartbeat:      heartbeat,
		timeout:        timeout,
	}
}

// Start launches the monitoring goroutine. It returns immediately.
func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(ctx)
	}()
}

// Stop ends monitoring and waits for the goroutine to exit.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.ready.Store(false)
}

// Ready reports whether the last connection attempt or heartbeat succeeded.
func (m *Monitor) Ready() bool {
	return m.ready.Load()
}

func (m *Monitor) run(ctx context.Context) {
	for {
		if !m.ready.Load() {
			if err := m.call(ctx, m.conn.Connect); err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.PrintError(err, map[string]string{
					"database": m.name,
					"retry_in": m.reconnectDelay.String(),
				})
				if !sleep(ctx, m.reconnectDelay) {
					return
				}
				continue
			}
			m.ready.Store(true)
			m.logger.PrintInfo("database connected", map[string]string{"database": m.name})
		}
		if !sleep(ctx, m.heartbeat) {
			return
		}
		if err := m.call(ctx, m.conn.Ping); err != nil {
			if ctx.Err() != nil {
				return
			}
			m.ready.Store(false)
			m.logger.PrintInfo("database disconnected, attempting to reconnect", map[string]string{
				"database": m.name,
				"error":    err.Error(),
			})
		}
	}
}

func (m *Monitor) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	return fn(ctx)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// WaitReady blocks until r reports ready or ctx is done.
func WaitReady(ctx context.Context, r interface{ Ready() bool }, interval time.Duration) error {
	for !r.Ready() {
		if !sleep(ctx, interval) {
			return ErrUnavailable
		}
	}
	return nil
}
