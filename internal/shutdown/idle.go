// Package shutdown provides idle monitoring for scale-to-zero deployments.
package shutdown

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// BusyCheck reports whether background work is in progress, holding off an
// idle shutdown while the archive worker is mid-sweep.
type BusyCheck func() bool

// IdleMonitor signals when the server has served no requests for a
// configurable duration, so platforms like Fly.io can stop the machine.
// A zero timeout disables it entirely.
type IdleMonitor struct {
	timeout      time.Duration
	excludePaths []string
	busyCheck    BusyCheck
	logger       *slog.Logger

	active       atomic.Int64
	mu           sync.RWMutex
	lastActivity time.Time

	idle chan struct{}
	stop chan struct{}
}

// NewIdleMonitor creates an idle monitor. excludePaths (probe endpoints) do
// not count as activity.
func NewIdleMonitor(timeout time.Duration, excludePaths []string, busyCheck BusyCheck, logger *slog.Logger) *IdleMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdleMonitor{
		timeout:      timeout,
		excludePaths: excludePaths,
		busyCheck:    busyCheck,
		logger:       logger.With("component", "idle_monitor"),
		lastActivity: time.Now(),
		idle:         make(chan struct{}),
		stop:         make(chan struct{}),
	}
}

// Start begins monitoring. No-op when the timeout is zero.
func (m *IdleMonitor) Start() {
	if m.timeout <= 0 {
		return
	}
	m.logger.Info("idle monitoring started", "timeout", m.timeout)
	go m.run()
}

// Stop stops the monitor.
func (m *IdleMonitor) Stop() {
	if m.timeout <= 0 {
		return
	}
	close(m.stop)
}

// IdleChan is closed once the idle timeout elapses with no activity.
func (m *IdleMonitor) IdleChan() <-chan struct{} {
	return m.idle
}

// Middleware tracks request activity.
func (m *IdleMonitor) Middleware(next http.Handler) http.Handler {
	if m.timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.excluded(r.URL.Path) {
			m.active.Add(1)
			m.touch()
			defer func() {
				m.active.Add(-1)
				m.touch()
			}()
		}
		next.ServeHTTP(w, r)
	})
}

func (m *IdleMonitor) excluded(path string) bool {
	for _, p := range m.excludePaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (m *IdleMonitor) touch() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

func (m *IdleMonitor) run() {
	interval := m.timeout / 6
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}
	if interval > 30*time.Second {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			busy := m.active.Load() > 0 || (m.busyCheck != nil && m.busyCheck())
			if busy {
				m.touch()
				continue
			}

			m.mu.RLock()
			idleFor := time.Since(m.lastActivity)
			m.mu.RUnlock()

			if idleFor >= m.timeout {
				m.logger.Info("idle timeout reached, signaling shutdown", "idle_for", idleFor)
				close(m.idle)
				return
			}
		}
	}
}
