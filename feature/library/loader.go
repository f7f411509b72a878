package library

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	syncer  *Syncer
	handler *Handler
}

// NewFeature creates the library sync feature.
func NewFeature(syncer *Syncer, logg *zap.Logger) *Feature {
	return &Feature{
		syncer:  syncer,
		handler: NewHandler(syncer, logg),
	}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "library"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
