// Package main provides the entry point for MCStats Companion.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bramblefox/mcstats-companion/internal/app"
	"github.com/bramblefox/mcstats-companion/internal/assets"
	"github.com/bramblefox/mcstats-companion/internal/config"
	"github.com/bramblefox/mcstats-companion/internal/gate"
	"github.com/bramblefox/mcstats-companion/internal/identity"
	"github.com/bramblefox/mcstats-companion/internal/output"
	"github.com/bramblefox/mcstats-companion/internal/player"
	"github.com/bramblefox/mcstats-companion/internal/savedata"
	"github.com/bramblefox/mcstats-companion/internal/singleinstance"
	"github.com/bramblefox/mcstats-companion/internal/stats"
	"github.com/bramblefox/mcstats-companion/internal/store"
	"github.com/bramblefox/mcstats-companion/internal/version"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:     "mcstats",
		Short:   "MCStats Companion - Minecraft server player statistics aggregator",
		Version: version.String(),
		Long: `MCStats Companion reads a Minecraft server's save data, statistics, and
advancements, resolves player identities against the session API, and writes
flat per-player JSON documents for static site generators.`,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(playerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads the config file and applies flag and env overrides.
// Flags beat env vars, which beat the file.
func loadConfig(serverDir, outputDir string) config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	cfg = config.ApplyEnvOverrides(cfg)
	if serverDir != "" {
		cfg.ServerDir = serverDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg
}

// openCache opens the SQLite name cache and prunes entries older than the
// TTL. The cache is an optimization: on any failure the pipeline runs
// without it.
func openCache(ctx context.Context, cfg config.Config, logger *slog.Logger) *store.Store {
	if _, err := config.EnsureDataDir(); err != nil {
		logger.Warn("data directory unavailable, running without name cache", "error", err)
		return nil
	}
	path, err := config.CachePath()
	if err != nil {
		logger.Warn("cache path unavailable, running without name cache", "error", err)
		return nil
	}
	db, err := store.Open(path)
	if err != nil {
		logger.Warn("name cache unavailable", "path", path, "error", err)
		return nil
	}

	cutoff := time.Now().Add(-time.Duration(cfg.CacheTTLHours) * time.Hour)
	if n, err := db.Prune(ctx, cutoff); err != nil {
		logger.Warn("name cache prune failed", "error", err)
	} else if n > 0 {
		logger.Debug("pruned stale cache entries", "removed", n)
	}
	return db
}

// newResolver wires the rate gate, name cache, and session API client.
func newResolver(cfg config.Config, cache *store.Store, logger *slog.Logger) *identity.Resolver {
	gateCfg := gate.DefaultConfig()
	gateCfg.Interval = time.Duration(cfg.RateLimitMS) * time.Millisecond
	gateCfg.Disabled = cfg.RateLimitDisabled

	opts := []identity.Option{identity.WithLogger(logger)}
	if cache != nil {
		opts = append(opts, identity.WithCache(cache, time.Duration(cfg.CacheTTLHours)*time.Hour))
	}
	return identity.New(gate.New(gateCfg), cfg.APIHost, cfg.DefaultName, opts...)
}

func runCmd() *cobra.Command {
	var serverDir, outputDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile all players and write the output documents",
		Long: `Run one full batch: list every player known to the server, build each
player's record, fetch avatars, and write per-player stats.json documents
plus the players.json snapshot that seeds the next run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			release, ok, err := singleinstance.AcquireLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another instance is already running")
			}
			defer release()

			cfg := loadConfig(serverDir, outputDir)
			if workers > 0 {
				cfg.Workers = workers
			}
			logger := newLogger()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cache := openCache(ctx, cfg, logger)
			if cache != nil {
				defer cache.Close()
			}

			resolver := newResolver(cfg, cache, logger)
			saves := savedata.NewReader(cfg.ServerDir, savedata.WithLogger(logger))
			statsReader := stats.NewReader(cfg.ServerDir, stats.WithLogger(logger))
			fetcher := assets.New(assets.Config{SkinServer: cfg.SkinServer}, resolver, assets.WithLogger(logger))
			writer := output.NewWriter(cfg.OutputDir, output.WithLogger(logger))

			builder := app.NewBuilder(saves, resolver, statsReader,
				app.WithBaseline(writer.LoadList()),
				app.WithBanned(saves.Banned()),
				app.WithAssets(fetcher, writer.PlayerDir),
				app.WithBuilderLogger(logger),
			)
			runner := app.NewRunner(saves, builder, writer,
				app.WithWorkers(cfg.Workers),
				app.WithWhitelist(saves.Whitelist()),
				app.WithRunnerLogger(logger),
			)

			summary, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Done: %d players (%d resolved, %d absent)\n",
				summary.Total, summary.Resolved, summary.Absent)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverDir, "server-dir", "", "Minecraft server directory (overrides config)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (overrides config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (overrides config)")
	return cmd
}

func playerCmd() *cobra.Command {
	var serverDir, outputDir string

	cmd := &cobra.Command{
		Use:   "player <uuid>",
		Short: "Build a single player's record and print it",
		Long: `Build one player's reconciled document without touching the output
directory, printing the JSON to stdout. The UUID must be in the hyphenated
form.

Example:
  mcstats player 069a79f4-44e9-4726-a5be-fca90e38aaf5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := player.ParseKey(args[0])
			if err != nil {
				return err
			}

			cfg := loadConfig(serverDir, outputDir)
			logger := newLogger()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cache := openCache(ctx, cfg, logger)
			if cache != nil {
				defer cache.Close()
			}

			resolver := newResolver(cfg, cache, logger)
			saves := savedata.NewReader(cfg.ServerDir, savedata.WithLogger(logger))
			statsReader := stats.NewReader(cfg.ServerDir, stats.WithLogger(logger))
			writer := output.NewWriter(cfg.OutputDir, output.WithLogger(logger))

			builder := app.NewBuilder(saves, resolver, statsReader,
				app.WithBaseline(writer.LoadList()),
				app.WithBanned(saves.Banned()),
				app.WithBuilderLogger(logger),
			)

			outcome := builder.Build(ctx, key)
			if outcome == nil {
				return fmt.Errorf("no record for %s", key)
			}

			doc := &output.PlayerDocument{
				Stats:        outcome.Stats.Merged,
				StatsSource:  outcome.Stats.Source,
				Advancements: outcome.Advancements.Data,
				Data:         outcome.Record,
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}

	cmd.Flags().StringVar(&serverDir, "server-dir", "", "Minecraft server directory (overrides config)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "output directory (overrides config)")
	return cmd
}
