package cmd

import (
	"context"
	"fmt"

	"library-sync/core/config"
	"library-sync/core/database"
	"library-sync/core/logger"
	"library-sync/core/storage"
	"library-sync/feature/library"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var forceSync bool

// syncCmd runs a single sync pass and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one library sync pass",
	Long: `Runs a single sync pass against the remote library service.

Uploads local changes since the last checkpoint, merges remote changes into
the catalog and records a new checkpoint. Failures are contained within the
pass: a transport error leaves the checkpoint untouched so the next run
covers the same window.

Examples:
  # Incremental sync from the stored checkpoint
  library-sync sync

  # Ignore the checkpoint and exchange the full library
  library-sync sync --force`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&forceSync, "force", false, "Ignore the checkpoint and run a full sync")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	catalog := library.NewGormCatalog(db)
	if err := catalog.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate catalog schema: %w", err)
	}

	var archiver *library.Archiver
	if cfg.Storage.Enabled {
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
		archiver = library.NewArchiver(store, cfg.Storage.Bucket, l)
	}

	codec, err := library.NewCodec(ctx, catalog)
	if err != nil {
		return fmt.Errorf("failed to load category tables: %w", err)
	}

	syncer := library.NewSyncer(catalog, codec, library.NewClient(cfg.Remote),
		library.NewConfigCredentials(cfg.Remote), archiver, l)

	updated := false
	syncer.Notifier().Subscribe(library.EventUpdated, func() { updated = true })

	// Errors are contained within the pass and logged there; a configured-
	// but-failed pass still exits 0 and the next run retries the window.
	syncer.SyncLocalLibrary(ctx, forceSync)

	l.Info("Sync pass finished", zap.Bool("local_changes", updated))
	return nil
}
