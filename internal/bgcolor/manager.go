// Package bgcolor derives a screen tint from the image nearest the middle of
// the viewport.
package bgcolor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/singleflight"

	"github.com/five82/galley/internal/colorsample"
	"github.com/five82/galley/internal/imageloader"
	"github.com/five82/galley/internal/session"
)

// DefaultThreshold is how far, in rows or points, an image midpoint may sit
// from the viewport centre and still drive the colour.
const DefaultThreshold = 100

// Geometry locates an image relative to its viewport. Both values use the
// same unit.
type Geometry struct {
	MidY           float64
	ViewportHeight float64
}

// InRange reports whether the image midpoint is strictly within threshold of
// the viewport centre.
func (g Geometry) InRange(threshold float64) bool {
	return math.Abs(g.MidY-g.ViewportHeight/2) < threshold
}

// Options configure a Manager.
type Options struct {
	Session   session.Session
	Scheduler imageloader.Scheduler
	Threshold float64
	Algorithm colorsample.Algorithm
	Logger    *slog.Logger
	// OnChange runs on the Scheduler each time a colour is published.
	OnChange func(colorful.Color)
}

// Manager keeps one colour per image URL for the lifetime of a screen. The
// cache is never evicted; build a new Manager per screen.
type Manager struct {
	session   session.Session
	scheduler imageloader.Scheduler
	threshold float64
	logger    *slog.Logger
	onChange  func(colorful.Color)

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group
	wg     sync.WaitGroup

	mu        sync.Mutex
	algorithm colorsample.Algorithm
	colors    map[string]colorful.Color
	current   colorful.Color
	hasColor  bool
	closed    bool
}

// New returns a Manager ready for Update calls.
func New(opts Options) *Manager {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	scheduler := opts.Scheduler
	if scheduler == nil {
		scheduler = imageloader.Inline
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		session:   opts.Session,
		scheduler: scheduler,
		threshold: threshold,
		logger:    logger,
		onChange:  opts.OnChange,
		ctx:       ctx,
		cancel:    cancel,
		algorithm: opts.Algorithm,
		colors:    make(map[string]colorful.Color),
	}
}

// Update is called as the view scrolls. Out of range or unparsable URLs are
// ignored. A cached colour is published right away; otherwise the image is
// fetched and sampled in the background. ctx only gates starting a fetch; the
// fetch itself lives until Close.
func (m *Manager) Update(ctx context.Context, imageURL string, g Geometry) {
	if !g.InRange(m.threshold) {
		return
	}
	u, err := url.Parse(imageURL)
	if err != nil || u.Scheme == "" {
		return
	}
	key := u.String()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	cached, ok := m.colors[key]
	if ok {
		m.mu.Unlock()
		m.publish(cached)
		return
	}
	if ctx.Err() != nil {
		m.mu.Unlock()
		return
	}
	alg := m.algorithm
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		v, err, _ := m.group.Do(key+"#"+alg.String(), func() (any, error) {
			m.mu.Lock()
			cached, ok := m.colors[key]
			fresh := m.algorithm == alg
			m.mu.Unlock()
			if ok && fresh {
				return cached, nil
			}
			c, err := m.sample(u, alg)
			if err != nil {
				return nil, err
			}
			m.mu.Lock()
			if m.algorithm == alg {
				m.colors[key] = c
			}
			m.mu.Unlock()
			return c, nil
		})
		if err != nil {
			if m.ctx.Err() == nil {
				m.logger.Debug("background color unavailable", "url", key, "error", err)
			}
			return
		}
		m.mu.Lock()
		stale := m.algorithm != alg
		m.mu.Unlock()
		if !stale {
			m.publish(v.(colorful.Color))
		}
	}()
}

// Color returns the last published colour.
func (m *Manager) Color() (colorful.Color, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.hasColor
}

// SetAlgorithm switches the reducer and forgets every cached colour.
func (m *Manager) SetAlgorithm(alg colorsample.Algorithm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.algorithm == alg {
		return
	}
	m.algorithm = alg
	m.colors = make(map[string]colorful.Color)
}

// Close cancels outstanding fetches and waits for them. Nothing is published
// afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
	m.wg.Wait()
}

func (m *Manager) sample(u *url.URL, alg colorsample.Algorithm) (colorful.Color, error) {
	if m.session == nil {
		return colorful.Color{}, fmt.Errorf("no session configured")
	}
	resp, err := m.session.Fetch(m.ctx, u)
	if err != nil {
		return colorful.Color{}, err
	}
	if resp.IsHTTP() && !resp.OK() {
		return colorful.Color{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	img, err := imageloader.Decode(resp.Body, 1)
	if err != nil {
		return colorful.Color{}, err
	}
	c, ok := colorsample.Average(img.Image, alg)
	if !ok {
		return colorful.Color{}, fmt.Errorf("image has no pixels")
	}
	return c, nil
}

func (m *Manager) publish(c colorful.Color) {
	m.scheduler.Post(func() {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return
		}
		m.current = c
		m.hasColor = true
		onChange := m.onChange
		m.mu.Unlock()
		if onChange != nil {
			onChange(c)
		}
	})
}
