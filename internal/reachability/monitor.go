package reachability

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"
)

const (
	defaultProbeInterval = 5 * time.Second
	defaultDialTimeout   = 3 * time.Second
)

// Event is published to subscribers whenever connectivity flips.
type Event struct {
	Connected bool
	At        time.Time
}

// Probe reports whether the network is currently usable.
type Probe interface {
	Reachable(ctx context.Context) bool
}

// ProbeFunc adapts a plain function to Probe.
type ProbeFunc func(ctx context.Context) bool

func (f ProbeFunc) Reachable(ctx context.Context) bool { return f(ctx) }

// DialProbe treats a successful TCP connect to Address as connectivity.
type DialProbe struct {
	Address string
	Timeout time.Duration
}

func (p DialProbe) Reachable(ctx context.Context) bool {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Monitor tracks connectivity and broadcasts transitions. It only reports;
// reacting to a transition is up to subscribers.
type Monitor struct {
	probe    Probe
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	connected   bool
	nextID      int
	subscribers map[int]func(Event)
	order       []int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor returns a monitor that polls probe every interval once started.
// The monitor assumes connectivity until the first probe says otherwise.
func NewMonitor(probe Probe, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		probe:       probe,
		interval:    interval,
		logger:      logger,
		now:         time.Now,
		connected:   true,
		subscribers: make(map[int]func(Event)),
	}
}

// Start launches the background probe loop. It returns immediately. Calling
// Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil || m.probe == nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			m.check(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Close stops the probe loop and waits for it to exit.
func (m *Monitor) Close() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Monitor) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()
	ok := m.probe.Reachable(probeCtx)
	if ctx.Err() != nil {
		return
	}
	m.Set(ok)
}

// IsConnected reports the last observed state.
func (m *Monitor) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Set records connected and notifies subscribers if it differs from the
// current state.
func (m *Monitor) Set(connected bool) {
	m.mu.Lock()
	if m.connected == connected {
		m.mu.Unlock()
		return
	}
	m.connected = connected
	event := Event{Connected: connected, At: m.now()}
	subs := make([]func(Event), 0, len(m.order))
	for _, id := range m.order {
		subs = append(subs, m.subscribers[id])
	}
	m.mu.Unlock()

	m.logger.Info("network reachability changed", "connected", connected)
	for _, fn := range subs {
		fn(event)
	}
}

// Subscribe registers fn for transition events and returns a function that
// removes it. fn runs on the goroutine that observed the transition.
func (m *Monitor) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	m.order = append(m.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subscribers, id)
			for i, v := range m.order {
				if v == id {
					m.order = append(m.order[:i], m.order[i+1:]...)
					break
				}
			}
		})
	}
}
