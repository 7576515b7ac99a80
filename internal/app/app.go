package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/five82/galley/internal/prefs"
	"github.com/five82/galley/internal/reachability"
	"github.com/five82/galley/internal/state"
	"github.com/five82/galley/internal/ui"
)

// Options configure a galley run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/galley/prefs.toml
	BaseURL    string // overrides base_url from the config file
}

// Run boots the galley TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogFile(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	svc, err := openServices(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	var probe reachability.Probe
	if cfg.ProbeAddress != "" {
		probe = reachability.DialProbe{Address: cfg.ProbeAddress, Timeout: probeTimeout}
	}
	monitor := reachability.NewMonitor(probe, cfg.ProbeInterval, logger)
	monitor.Start(ctx)
	defer monitor.Close()

	store := state.NewRecipesStore(svc.client, logger)
	defer store.Close()

	logger.Info("galley starting",
		"base_url", cfg.BaseURL,
		"cache_dir", cfg.CacheDir,
		"probe_address", cfg.ProbeAddress,
	)

	err = ui.Run(ui.Options{
		Context:      ctx,
		Store:        store,
		Session:      svc.session,
		Cache:        svc.cache,
		Reachability: monitor,
		Logger:       logger,
		ThemeName:    userPrefs.Theme,
		Algorithm:    userPrefs.Algorithm(),
		PrefsPath:    prefsPath,
	})
	if err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
