package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/five82/galley/internal/config"
	"github.com/five82/galley/internal/recipes"
	"github.com/five82/galley/internal/respcache"
	"github.com/five82/galley/internal/session"
)

const (
	probeTimeout = 3 * time.Second
	gcInterval   = 10 * time.Minute
)

// services bundles what every command needs to talk to the recipe API.
type services struct {
	cfg     config.Config
	session session.Session
	client  *recipes.Client
	cache   *respcache.Cache
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load galley config: %w", err)
	}
	return cfg.WithBaseURL(opts.BaseURL), nil
}

func openServices(cfg config.Config, logger *slog.Logger) (*services, error) {
	sess := session.NewHTTPSession(cfg.RequestTimeout)
	serviceCfg, err := session.NewConfiguration(cfg.BaseURL, sess)
	if err != nil {
		return nil, fmt.Errorf("configure service: %w", err)
	}
	client, err := recipes.NewClient(serviceCfg)
	if err != nil {
		return nil, fmt.Errorf("init recipes client: %w", err)
	}
	cache, err := openCache(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &services{cfg: cfg, session: sess, client: client, cache: cache}, nil
}

// openCache builds the two-tier image cache. Signed query parameters are
// stripped from keys so re-signed URLs hit the same entry.
func openCache(cfg config.Config, logger *slog.Logger) (*respcache.Cache, error) {
	memory, err := respcache.NewMemoryStore(cfg.MemoryCapacity)
	if err != nil {
		return nil, fmt.Errorf("open memory cache: %w", err)
	}
	disk, err := respcache.OpenDisk(respcache.DiskConfig{
		Dir:        cfg.CacheDir,
		Capacity:   cfg.DiskCapacity,
		GCInterval: gcInterval,
		Logger:     logger,
	})
	if err != nil {
		_ = memory.Close()
		return nil, fmt.Errorf("open disk cache: %w", err)
	}
	store := &respcache.Tiered{Memory: memory, Disk: disk}
	return respcache.New(store, respcache.StripQuery(cfg.CacheKeyStripQuery...), logger), nil
}

func (s *services) Close() error {
	if s == nil || s.cache == nil {
		return nil
	}
	if err := s.cache.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	return nil
}
