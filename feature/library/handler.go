package library

import (
	"context"

	"library-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the library sync feature.
type Handler struct {
	syncer *Syncer
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(syncer *Syncer, logg *zap.Logger) *Handler {
	return &Handler{syncer: syncer, logger: logg}
}

// RegisterRoutes registers the library routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/library")
	group.Post("/sync", h.HandleSync)
	group.Get("/sync/status", h.HandleStatus)
	group.Delete("/remote", h.HandleRemoteDelete)
}

// HandleSync triggers a sync pass in the background. Returns 409 when a pass
// is already running.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if h.syncer.IsSyncing() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "sync already in progress",
		})
	}

	force := c.QueryBool("force")
	l.Info("Triggering library sync", zap.Bool("force", force))

	// The pass outlives the request; run it detached from the request context.
	go h.syncer.SyncLocalLibrary(context.Background(), force)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
	})
}

// HandleStatus reports whether a pass is running and when the last one
// completed.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"syncing":      h.syncer.IsSyncing(),
		"last_sync_at": h.syncer.LastSyncAt(c.Context()),
	})
}

type remoteDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// HandleRemoteDelete forwards a delete request for the given catalog records
// to the remote library service.
func (h *Handler) HandleRemoteDelete(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req remoteDeleteRequest
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "body must contain a non-empty ids array",
		})
	}

	recs, err := h.syncer.catalog.GamesByIDs(c.Context(), req.IDs)
	if err != nil {
		l.Error("Failed to load games for remote delete", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load games",
		})
	}
	if len(recs) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no matching games",
		})
	}

	resp, err := h.syncer.DeleteFromRemoteLibrary(c.Context(), recs)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "remote delete failed",
		})
	}
	if resp == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "sync not configured",
		})
	}

	l.Info("Deleted games from remote library", zap.Int("count", len(recs)))
	c.Set("Content-Type", "application/json")
	return c.Send(resp)
}
