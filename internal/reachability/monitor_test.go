package reachability

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) record(e Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) connected() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]bool, len(l.events))
	for i, e := range l.events {
		out[i] = e.Connected
	}
	return out
}

func TestMonitor_StartsConnected(t *testing.T) {
	m := NewMonitor(nil, 0, nil)
	assert.True(t, m.IsConnected())
}

func TestMonitor_PublishesTransitionsOnly(t *testing.T) {
	m := NewMonitor(nil, 0, nil)
	var log eventLog
	m.Subscribe(log.record)

	m.Set(true)
	m.Set(false)
	m.Set(false)
	m.Set(true)
	m.Set(true)

	assert.Equal(t, []bool{false, true}, log.connected())
	assert.True(t, m.IsConnected())
}

func TestMonitor_BroadcastsToEverySubscriber(t *testing.T) {
	m := NewMonitor(nil, 0, nil)
	var a, b eventLog
	m.Subscribe(a.record)
	m.Subscribe(b.record)

	m.Set(false)

	assert.Equal(t, []bool{false}, a.connected())
	assert.Equal(t, []bool{false}, b.connected())
}

func TestMonitor_UnsubscribeStopsDelivery(t *testing.T) {
	m := NewMonitor(nil, 0, nil)
	var log eventLog
	unsubscribe := m.Subscribe(log.record)

	m.Set(false)
	unsubscribe()
	unsubscribe()
	m.Set(true)

	assert.Equal(t, []bool{false}, log.connected())
}

func TestMonitor_EventCarriesTimestamp(t *testing.T) {
	m := NewMonitor(nil, 0, nil)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return at }
	var log eventLog
	m.Subscribe(log.record)

	m.Set(false)

	require.Len(t, log.events, 1)
	assert.Equal(t, at, log.events[0].At)
}

func TestMonitor_StartPollsProbe(t *testing.T) {
	var up atomic.Bool
	var calls atomic.Int32
	probe := ProbeFunc(func(context.Context) bool {
		calls.Add(1)
		return up.Load()
	})
	m := NewMonitor(probe, 10*time.Millisecond, nil)
	var log eventLog
	m.Subscribe(log.record)

	m.Start(context.Background())
	defer m.Close()

	require.Eventually(t, func() bool { return !m.IsConnected() }, time.Second, 5*time.Millisecond)
	up.Store(true)
	require.Eventually(t, func() bool { return m.IsConnected() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []bool{false, true}, log.connected())
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestMonitor_CloseStopsPolling(t *testing.T) {
	var calls atomic.Int32
	probe := ProbeFunc(func(context.Context) bool {
		calls.Add(1)
		return true
	})
	m := NewMonitor(probe, 5*time.Millisecond, nil)
	m.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)

	m.Close()
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
	m.Close()
}

func TestDialProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	assert.True(t, DialProbe{Address: addr, Timeout: time.Second}.Reachable(context.Background()))

	require.NoError(t, ln.Close())
	assert.False(t, DialProbe{Address: addr, Timeout: 200 * time.Millisecond}.Reachable(context.Background()))
}
