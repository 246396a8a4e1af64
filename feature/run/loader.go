package run

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	recorder *Recorder
	handler  *Handler
}

// NewFeature creates the run tracking feature.
func NewFeature(db *gorm.DB, logger *zap.Logger) *Feature {
	recorder := NewRecorder(db, logger)
	return &Feature{recorder: recorder, handler: NewHandler(recorder)}
}

// Recorder exposes the recorder so the sync service can report into it.
func (f *Feature) Recorder() *Recorder {
	return f.recorder
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "run"
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
