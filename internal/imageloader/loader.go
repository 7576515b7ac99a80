package imageloader

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/five82/galley/internal/respcache"
	"github.com/five82/galley/internal/session"
)

// Scheduler runs closures on the UI's update loop.
type Scheduler interface {
	Post(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Post(fn func()) { f(fn) }

// Inline runs posted closures on the calling goroutine.
var Inline Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Observer is told when a load begins and whenever the phase changes.
// PhaseChanged always runs on the Scheduler.
type Observer interface {
	LoadStarted(u *url.URL, scale float64)
	PhaseChanged(p Phase)
}

// Bindable observers receive the loader they were attached to.
type Bindable interface {
	Attach(l *Loader)
}

// Options configure a Loader.
type Options struct {
	Session   session.Session
	Cache     *respcache.Cache
	Scheduler Scheduler
	Logger    *slog.Logger
}

type flight struct {
	cancel context.CancelFunc
}

// Loader drives one image display: it owns a Phase, fetches at most once per
// URL at a time, and fills the response cache on success.
type Loader struct {
	session   session.Session
	cache     *respcache.Cache
	scheduler Scheduler
	logger    *slog.Logger

	mu         sync.Mutex
	phase      Phase
	current    string
	generation uint64
	inflight   map[string]*flight
	observers  []Observer
	onChange   func(Phase)
}

// New builds a loader. Observers implementing Bindable are attached to it.
func New(opts Options, observers ...Observer) *Loader {
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = Inline
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		session:   opts.Session,
		cache:     opts.Cache,
		scheduler: scheduler,
		logger:    logger,
		phase:     Empty(),
		inflight:  make(map[string]*flight),
		observers: observers,
	}
	for _, o := range observers {
		if b, ok := o.(Bindable); ok {
			b.Attach(l)
		}
	}
	return l
}

// Phase returns the current phase.
func (l *Loader) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.phase
}

// OnChange sets a callback run on the Scheduler after every phase change.
func (l *Loader) OnChange(fn func(Phase)) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// Load requests u at scale. A cached response that decodes is used without a
// network round trip. A second Load for a URL already being fetched does
// nothing.
func (l *Loader) Load(u *url.URL, scale float64) {
	if u == nil {
		return
	}
	for _, o := range l.observersSnapshot() {
		o.LoadStarted(u, scale)
	}

	key := u.String()
	l.mu.Lock()
	l.current = key
	gen := l.generation
	l.mu.Unlock()

	if entry, ok := l.cache.Lookup(u); ok && isSuccessStatus(entry.StatusCode) {
		img, err := Decode(entry.Body, scale)
		if err == nil {
			l.post(gen, key, Success(img))
			return
		}
		l.logger.Debug("cached image undecodable, refetching", "url", key, "error", err)
	}

	l.mu.Lock()
	if _, busy := l.inflight[key]; busy {
		l.mu.Unlock()
		return
	}
	if gen != l.generation {
		l.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	f := &flight{cancel: cancel}
	l.inflight[key] = f
	l.mu.Unlock()

	go l.fetch(ctx, f, gen, u, scale)
}

// Cancel aborts every fetch in flight. Results that arrive afterwards, and
// phase changes already queued on the Scheduler, are dropped. Safe to call
// repeatedly.
func (l *Loader) Cancel() {
	l.mu.Lock()
	l.generation++
	flights := l.inflight
	l.inflight = make(map[string]*flight)
	l.mu.Unlock()

	for _, f := range flights {
		f.cancel()
	}
}

// Reset returns the loader to Empty. Callers reset before loading a
// different URL.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.current = ""
	gen := l.generation
	l.mu.Unlock()
	l.apply(gen, "", Empty())
}

func (l *Loader) fetch(ctx context.Context, f *flight, gen uint64, u *url.URL, scale float64) {
	key := u.String()
	p, ok := l.retrieve(ctx, u, scale)

	f.cancel()
	l.mu.Lock()
	if l.inflight[key] == f {
		delete(l.inflight, key)
	}
	l.mu.Unlock()

	if ok {
		l.post(gen, key, p)
	}
}

// retrieve performs the network fetch. ok is false when ctx was cancelled.
func (l *Loader) retrieve(ctx context.Context, u *url.URL, scale float64) (Phase, bool) {
	if l.session == nil {
		return Failure(&Error{Kind: TransportError, Err: errors.New("no session configured")}), true
	}

	resp, err := l.session.Fetch(ctx, u)
	if ctx.Err() != nil {
		return Phase{}, false
	}
	if err != nil {
		l.logger.Debug("image fetch failed", "url", u.String(), "error", err)
		return Failure(&Error{Kind: TransportError, Err: err}), true
	}
	if resp.IsHTTP() && !resp.OK() {
		return Failure(&Error{Kind: IncorrectStatusCode, StatusCode: resp.StatusCode}), true
	}
	img, err := Decode(resp.Body, scale)
	if err != nil {
		return Failure(&Error{Kind: IncorrectDataType, StatusCode: resp.StatusCode, Err: err}), true
	}

	l.cache.Save(u, respcache.Entry{
		Body:        resp.Body,
		StatusCode:  statusForCache(resp.StatusCode),
		ContentType: resp.ContentType(),
	})
	return Success(img), true
}

func (l *Loader) post(gen uint64, key string, p Phase) {
	l.scheduler.Post(func() { l.apply(gen, key, p) })
}

// apply commits p when it still belongs to the live generation and URL.
func (l *Loader) apply(gen uint64, key string, p Phase) {
	l.mu.Lock()
	if gen != l.generation || key != l.current {
		l.mu.Unlock()
		return
	}
	l.phase = p
	observers := append([]Observer(nil), l.observers...)
	onChange := l.onChange
	l.mu.Unlock()

	for _, o := range observers {
		o.PhaseChanged(p)
	}
	if onChange != nil {
		onChange(p)
	}
}

func (l *Loader) observersSnapshot() []Observer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Observer(nil), l.observers...)
}

func isSuccessStatus(code int) bool {
	return code == 0 || (code >= 200 && code <= 299)
}

// File responses carry no status; they are stored as 200 so replays look
// like any other hit.
func statusForCache(code int) int {
	if code == 0 {
		return 200
	}
	return code
}
