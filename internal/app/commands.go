package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/five82/galley/internal/imageloader"
	"github.com/five82/galley/internal/recipes"
	"github.com/five82/galley/internal/respcache"
	"github.com/five82/galley/internal/session"
)

const (
	defaultPrefetchConcurrency = 4
	defaultPrefetchRate        = 8 // requests per second
)

// List fetches the recipe list and writes one tab-separated line per recipe,
// ordered by cuisine then name.
func List(ctx context.Context, opts Options, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg)

	sess := session.NewHTTPSession(cfg.RequestTimeout)
	serviceCfg, err := session.NewConfiguration(cfg.BaseURL, sess)
	if err != nil {
		return fmt.Errorf("configure service: %w", err)
	}
	client, err := recipes.NewClient(serviceCfg)
	if err != nil {
		return fmt.Errorf("init recipes client: %w", err)
	}

	list, err := client.FetchRecipes(ctx)
	if err != nil {
		return fmt.Errorf("fetch recipes: %w", err)
	}
	logger.Debug("recipes fetched", "count", len(list), "endpoint", client.Endpoint().String())

	for _, r := range recipes.SortByCuisine(list) {
		if _, err := fmt.Fprintf(stdout, "%s\t%s\t%s\t%s\n", r.ID, r.Cuisine, r.Title(), r.PhotoURLSmall); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}
	return nil
}

// PrefetchOptions tune the cache warm-up.
type PrefetchOptions struct {
	Concurrency int     // parallel downloads; zero uses 4
	Rate        float64 // requests per second; zero uses 8
}

// PrefetchStats summarises a warm-up run.
type PrefetchStats struct {
	Fetched int
	Cached  int
	Failed  int
}

// Prefetch downloads every recipe photo that is not already cached.
func Prefetch(ctx context.Context, opts Options, popts PrefetchOptions, stderr io.Writer) (PrefetchStats, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return PrefetchStats{}, err
	}
	logger := newLogger(stderr, cfg)

	svc, err := openServices(cfg, logger)
	if err != nil {
		return PrefetchStats{}, err
	}
	defer svc.Close()

	list, err := svc.client.FetchRecipes(ctx)
	if err != nil {
		return PrefetchStats{}, fmt.Errorf("fetch recipes: %w", err)
	}

	w := newWarmer(svc.session, svc.cache, popts, logger)
	return w.warm(ctx, photoURLs(list))
}

// PurgeCache removes every cached image.
func PurgeCache(opts Options, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg)

	cache, err := openCache(cfg, logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	if err := cache.Purge(); err != nil {
		return fmt.Errorf("purge cache: %w", err)
	}
	logger.Info("cache purged", "dir", cfg.CacheDir)
	return nil
}

// photoURLs returns each distinct photo URL, small ones first so the list
// thumbnails warm before the detail photos.
func photoURLs(list []recipes.Recipe) []*url.URL {
	seen := make(map[string]bool)
	var out []*url.URL
	add := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			return
		}
		seen[raw] = true
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" {
			return
		}
		out = append(out, u)
	}
	for _, r := range list {
		add(r.PhotoURLSmall)
	}
	for _, r := range list {
		add(r.PhotoURLLarge)
	}
	return out
}

type warmer struct {
	session     session.Session
	cache       *respcache.Cache
	limiter     *rate.Limiter
	concurrency int
	logger      *slog.Logger
}

func newWarmer(sess session.Session, cache *respcache.Cache, popts PrefetchOptions, logger *slog.Logger) *warmer {
	concurrency := popts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultPrefetchConcurrency
	}
	perSecond := popts.Rate
	if perSecond <= 0 {
		perSecond = defaultPrefetchRate
	}
	return &warmer{
		session:     sess,
		cache:       cache,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), concurrency),
		concurrency: concurrency,
		logger:      logger,
	}
}

// warm fetches the uncached URLs. Individual failures are counted, not
// returned; only cancellation stops the run.
func (w *warmer) warm(ctx context.Context, urls []*url.URL) (PrefetchStats, error) {
	var fetched, cached, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, u := range urls {
		if _, ok := w.cache.Lookup(u); ok {
			cached.Add(1)
			continue
		}
		g.Go(func() error {
			if err := w.limiter.Wait(gctx); err != nil {
				return err
			}
			if err := w.fetch(gctx, u); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				w.logger.Warn("prefetch failed", "url", u.String(), "error", err)
				return nil
			}
			fetched.Add(1)
			return nil
		})
	}
	err := g.Wait()

	stats := PrefetchStats{
		Fetched: int(fetched.Load()),
		Cached:  int(cached.Load()),
		Failed:  int(failed.Load()),
	}
	w.logger.Info("prefetch finished", "fetched", stats.Fetched, "cached", stats.Cached, "failed", stats.Failed)
	return stats, err
}

// fetch stores u only when it decodes, matching what the image loader would
// accept from the cache later.
func (w *warmer) fetch(ctx context.Context, u *url.URL) error {
	resp, err := w.session.Fetch(ctx, u)
	if err != nil {
		return err
	}
	if resp.IsHTTP() && !resp.OK() {
		return &imageloader.Error{Kind: imageloader.IncorrectStatusCode, StatusCode: resp.StatusCode}
	}
	if _, err := imageloader.Decode(resp.Body, 1); err != nil {
		return &imageloader.Error{Kind: imageloader.IncorrectDataType, Err: err}
	}
	status := resp.StatusCode
	if status == 0 {
		status = 200
	}
	w.cache.Save(u, respcache.Entry{
		Body:        resp.Body,
		StatusCode:  status,
		ContentType: resp.ContentType(),
	})
	return nil
}
