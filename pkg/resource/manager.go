// pkg/resource/manager.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-orrery/pkg/config"
	"github.com/opd-ai/go-orrery/pkg/logging"
)

var (
	// ErrGoroutineLimit is returned when the background goroutine budget is spent.
	ErrGoroutineLimit = errors.New("goroutine limit exceeded")
	// ErrShuttingDown is returned once Shutdown has been called.
	ErrShuttingDown = errors.New("resource manager is shutting down")
)

// Manager runs background work such as asset fetches on tracked goroutines,
// watches memory usage and drains everything on shutdown. The simulation
// tick never waits on it.
type Manager struct {
	maxMemoryMB     int64
	maxGoroutines   int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration

	active    atomic.Int64
	memoryMB  atomic.Int64
	lastCheck atomic.Int64 // unix nanos

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	stopped bool
	logger  *logging.Logger
}

// NewManager creates a manager with the limits from env. A nil logger
// discards output.
func NewManager(env *config.EnvironmentConfig, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		maxMemoryMB:     env.MaxMemoryMB,
		maxGoroutines:   int64(env.MaxGoroutines),
		shutdownTimeout: env.ShutdownTimeout,
		checkInterval:   env.ResourceCheckInterval,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		logger:          logger,
	}
}

// Start begins the periodic memory check.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return ErrShuttingDown
	}
	if m.running {
		return fmt.Errorf("resource manager already running")
	}
	m.running = true

	go m.monitoringLoop()

	m.logger.Info(m.ctx, "resource manager started",
		"max_memory_mb", m.maxMemoryMB,
		"max_goroutines", m.maxGoroutines,
		"check_interval", m.checkInterval.String(),
	)
	return nil
}

// Go runs fn on a tracked goroutine. The context passed to fn is cancelled
// when ctx is done or the manager shuts down. Panics are recovered and
// logged.
func (m *Manager) Go(ctx context.Context, name string, fn func(context.Context)) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return ErrShuttingDown
	}
	if n := m.active.Add(1); n > m.maxGoroutines {
		m.active.Add(-1)
		m.mu.Unlock()
		m.logger.Warn(ctx, "goroutine limit exceeded", "name", name, "limit", m.maxGoroutines)
		return fmt.Errorf("%w: %d/%d", ErrGoroutineLimit, n-1, m.maxGoroutines)
	}
	m.wg.Add(1)
	m.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.ctx, cancel)

	go func() {
		defer m.wg.Done()
		defer m.active.Add(-1)
		defer stop()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error(ctx, "background task panicked", fmt.Errorf("panic: %v", r), "name", name)
			}
		}()

		fn(runCtx)
	}()

	return nil
}

// CheckMemoryUsage samples heap usage and compares it against the limit.
func (m *Manager) CheckMemoryUsage() error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	currentMB := int64(ms.Alloc / 1024 / 1024)
	m.memoryMB.Store(currentMB)
	m.lastCheck.Store(time.Now().UnixNano())

	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// Active returns the number of running tracked goroutines.
func (m *Manager) Active() int64 {
	return m.active.Load()
}

// MemoryUsage returns the last sampled heap size in MB.
func (m *Manager) MemoryUsage() int64 {
	return m.memoryMB.Load()
}

// Stats returns current resource usage statistics.
func (m *Manager) Stats() Stats {
	var last time.Time
	if nanos := m.lastCheck.Load(); nanos != 0 {
		last = time.Unix(0, nanos)
	}
	return Stats{
		Goroutines:      m.Active(),
		MaxGoroutines:   m.maxGoroutines,
		MemoryUsageMB:   m.MemoryUsage(),
		MaxMemoryMB:     m.maxMemoryMB,
		LastMemoryCheck: last,
	}
}

// Stats contains resource usage statistics.
type Stats struct {
	Goroutines      int64     `json:"goroutines"`
	MaxGoroutines   int64     `json:"max_goroutines"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// Shutdown cancels background work and waits for it to finish, bounded by
// the configured shutdown timeout.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	wasRunning := m.running
	m.running = false
	m.mu.Unlock()

	m.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
	defer cancel()

	if wasRunning {
		select {
		case <-m.done:
		case <-shutdownCtx.Done():
			m.logger.Warn(ctx, "resource monitoring loop did not stop in time")
		}
	}

	drained := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		m.logger.Debug(ctx, "background tasks finished")
		return nil
	case <-shutdownCtx.Done():
		remaining := m.Active()
		m.logger.Warn(ctx, "shutdown timeout exceeded", "remaining", remaining)
		return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
	}
}

func (m *Manager) monitoringLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.CheckMemoryUsage(); err != nil {
				m.logger.Error(m.ctx, "memory limit exceeded", err, "limit_mb", m.maxMemoryMB)
			}
			m.logger.Debug(m.ctx, "resource usage check",
				"goroutines", m.Active(),
				"memory_mb", m.MemoryUsage(),
			)
		case <-m.ctx.Done():
			return
		}
	}
}
