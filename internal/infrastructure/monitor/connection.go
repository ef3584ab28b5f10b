package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Probe checks a single dependency.
type Probe func(ctx context.Context) error

// Check binds a probe to a component name. Optional components, such as the
// suggestion cache or the AI credential, never make the service unhealthy.
type Check struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Probe    Probe
}

type Monitor struct {
	checks []Check

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(checks []Check, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether the store can currently accept writes.
func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and records the result.
func (m *Monitor) Refresh() {
	components := make(map[string]ComponentStatus, len(m.checks))
	for _, c := range m.checks {
		components[c.Name] = m.run(c)
	}
	status := Status{
		Components: components,
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) run(c Check) ComponentStatus {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cs := ComponentStatus{Required: c.Required}
	if c.Probe == nil {
		return cs
	}
	if err := c.Probe(ctx); err != nil {
		if c.Required {
			m.logger.Warn("health check failed", zap.String("component", c.Name), zap.Error(err))
		}
		cs.Error = err.Error()
		return cs
	}
	cs.Online = true
	return cs
}
