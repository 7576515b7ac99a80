package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/galley/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "galley: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:           "galley",
		Short:         "Browse recipes in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "override galley config path (optional)")
	flags.StringVar(&opts.BaseURL, "base-url", "", "override the recipe API base URL (optional)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "override preferences path (optional)")

	root.AddCommand(
		newListCommand(&opts),
		newPrefetchCommand(&opts),
		newCacheCommand(&opts),
		newLogsCommand(&opts),
	)
	return root
}

func newListCommand(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the recipe list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.List(cmd.Context(), *opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func newPrefetchCommand(opts *app.Options) *cobra.Command {
	var popts app.PrefetchOptions
	cmd := &cobra.Command{
		Use:   "prefetch",
		Short: "Download every recipe photo into the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := app.Prefetch(cmd.Context(), *opts, popts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, already cached %d, failed %d\n",
				stats.Fetched, stats.Cached, stats.Failed)
			return nil
		},
	}
	cmd.Flags().IntVar(&popts.Concurrency, "concurrency", 0, "parallel downloads (default 4)")
	cmd.Flags().Float64Var(&popts.Rate, "rate", 0, "requests per second (default 8)")
	return cmd
}

func newCacheCommand(opts *app.Options) *cobra.Command {
	cache := &cobra.Command{
		Use:   "cache",
		Short: "Manage the image cache",
	}
	cache.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove every cached image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.PurgeCache(*opts, cmd.ErrOrStderr())
		},
	})
	return cache
}

func newLogsCommand(opts *app.Options) *cobra.Command {
	var lopts app.LogsOptions
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the newest lines of the galley log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Logs(*opts, lopts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&lopts.Lines, "lines", "n", 0, "number of lines (default 50)")
	cmd.Flags().StringVar(&lopts.MinLevel, "level", "", "minimum level: debug, info, warn, error")
	return cmd
}
