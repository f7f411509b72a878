package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"library-sync/core/config"
	"library-sync/core/database"
	"library-sync/core/loader"
	"library-sync/core/logger"
	"library-sync/core/middleware/auth"
	"library-sync/core/middleware/rayid"
	"library-sync/core/storage"
	"library-sync/feature/library"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the library sync server",
	Long:  `Starts the HTTP server exposing the sync trigger, status and remote delete endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the catalog database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to catalog database", zap.Error(err))
		}
		catalog := library.NewGormCatalog(db)
		if err := catalog.Migrate(); err != nil {
			logg.Fatal("Failed to migrate catalog schema", zap.Error(err))
		}

		// 4. Snapshot storage (optional)
		var archiver *library.Archiver
		if cfg.Storage.Enabled {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			archiver = library.NewArchiver(store, cfg.Storage.Bucket, logg)
		}

		// 5. Build the sync engine
		codec, err := library.NewCodec(context.Background(), catalog)
		if err != nil {
			logg.Fatal("Failed to load category tables", zap.Error(err))
		}
		client := library.NewClient(cfg.Remote)
		creds := library.NewConfigCredentials(cfg.Remote)
		syncer := library.NewSyncer(catalog, codec, client, creds, archiver, logg)
		syncer.Notifier().Subscribe(library.EventUpdated, func() {
			logg.Info("Local library changed by sync")
		})

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Logging middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth (protect the API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		mgr := loader.NewManager()
		mgr.Register(library.NewFeature(syncer, logg))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
