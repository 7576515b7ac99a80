package imageloader

import (
	"net/url"
	"sync"

	"github.com/five82/galley/internal/reachability"
)

// ReachabilitySource is the part of reachability.Monitor ReconnectRetry
// needs.
type ReachabilitySource interface {
	Subscribe(fn func(reachability.Event)) func()
}

// ReconnectRetry reloads the last requested image when the network comes
// back and the loader is showing a failure. It retries once per transition
// with no backoff.
type ReconnectRetry struct {
	mu          sync.Mutex
	loader      *Loader
	last        *url.URL
	scale       float64
	unsubscribe func()
}

// NewReconnectRetry subscribes to source. Pass the result to New so the
// loader attaches itself.
func NewReconnectRetry(source ReachabilitySource) *ReconnectRetry {
	r := &ReconnectRetry{}
	if source != nil {
		r.unsubscribe = source.Subscribe(r.handle)
	}
	return r
}

func (r *ReconnectRetry) Attach(l *Loader) {
	r.mu.Lock()
	r.loader = l
	r.mu.Unlock()
}

func (r *ReconnectRetry) LoadStarted(u *url.URL, scale float64) {
	r.mu.Lock()
	copied := *u
	r.last = &copied
	r.scale = scale
	r.mu.Unlock()
}

func (r *ReconnectRetry) PhaseChanged(Phase) {}

// Close stops listening for reachability events.
func (r *ReconnectRetry) Close() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (r *ReconnectRetry) handle(e reachability.Event) {
	if !e.Connected {
		return
	}
	r.mu.Lock()
	loader, last, scale := r.loader, r.last, r.scale
	r.mu.Unlock()

	if loader == nil || last == nil || !loader.Phase().IsFailure() {
		return
	}
	loader.Load(last, scale)
}
