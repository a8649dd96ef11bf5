package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldagent/fieldagent/internal/config"
	"github.com/fieldagent/fieldagent/internal/configstore"
	"github.com/fieldagent/fieldagent/internal/events"
	"github.com/fieldagent/fieldagent/internal/executor"
	"github.com/fieldagent/fieldagent/internal/fieldkind"
	"github.com/fieldagent/fieldagent/internal/ledger"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
	"github.com/fieldagent/fieldagent/internal/schema/memory"
	"github.com/fieldagent/fieldagent/internal/schema/postgres"
	"github.com/fieldagent/fieldagent/internal/ui"
)

var (
	jsonOutput bool

	cfg       *config.Config
	logger    *slog.Logger
	store     schema.Store
	reg       *registry.Registry
	exec      *executor.Executor
	records   *ledger.FileStore
	configs   *configstore.Store
	publisher events.Publisher
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var rootCmd = &cobra.Command{
	Use:   "fieldagent",
	Short: "Schema operations agent for a CMS content model",
	Long: `fieldagent turns operation plans (hand-written, stored, or LLM-generated)
into fields, entry types, sections, and taxonomy groups, records every batch
so it can be rolled back, and exposes discovery tools over the current schema.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.LogLevel),
		}))

		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}

		if cfg.DatabaseURL != "" {
			store, err = postgres.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
		} else {
			logger.Warn("no database configured, using in-memory store (schema state will not persist)")
			store = memory.New()
		}

		builder := registry.NewBuilder(logger)
		reg, err = fieldkind.NewRegistry(builder)
		if err != nil {
			return fmt.Errorf("build field registry: %w", err)
		}

		exec = executor.New(store, reg,
			executor.WithLogger(logger),
			executor.WithRetry(cfg.RetryAttempts, cfg.RetryDelay),
		)

		records, err = ledger.NewFileStore(filepath.Join(cfg.StorageDir, "records"), logger)
		if err != nil {
			return fmt.Errorf("open record store: %w", err)
		}

		configs, err = configstore.New(filepath.Join(cfg.StorageDir, "configs"), cfg.MaxStoredConfigs, logger)
		if err != nil {
			return fmt.Errorf("open config store: %w", err)
		}

		if cfg.NATSURL != "" {
			publisher, err = events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				return fmt.Errorf("connect to NATS: %w", err)
			}
		} else {
			publisher = &events.NoopPublisher{}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if publisher != nil {
			publisher.Close()
		}
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(configsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(backupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
