package cmd

import (
	"context"
	"fmt"
	"strconv"

	"library-sync/core/config"
	"library-sync/core/database"
	"library-sync/core/logger"
	"library-sync/feature/library"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// deleteCmd removes catalog records from the remote library.
var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete games from the remote library",
	Long: `Sends a delete request for the given catalog record ids to the remote
library service. Local records are not touched; the remote side is solely
responsible for honoring the delete set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	RootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid record id %q", arg)
		}
		ids = append(ids, id)
	}

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

	recs, err := catalog.GamesByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("no games found for the given ids")
	}

	codec, err := library.NewCodec(ctx, catalog)
	if err != nil {
		return fmt.Errorf("failed to load category tables: %w", err)
	}

	syncer := library.NewSyncer(catalog, codec, library.NewClient(cfg.Remote),
		library.NewConfigCredentials(cfg.Remote), nil, l)

	resp, err := syncer.DeleteFromRemoteLibrary(ctx, recs)
	if err != nil {
		return fmt.Errorf("remote delete failed: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("sync is not configured (no credentials)")
	}

	l.Info("Deleted games from remote library",
		zap.Int("count", len(recs)),
		zap.ByteString("response", resp))
	return nil
}
