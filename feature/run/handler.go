package run

import (
	"errors"

	"matchday/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	recorder *Recorder
}

// NewHandler creates a new HTTP handler.
func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// RegisterRoutes registers the run routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/:id", h.HandleGetRun)
}

// HandleGetRun returns one run with its per-item outcomes.
// @Summary Get Run
// @Description Get a sync run's lifecycle record and per-item outcomes.
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunReport "Run Report"
// @Failure 404 {object} map[string]string "Run Not Found"
// @Router /runs/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	id := c.Params("id")
	l := logger.WithRayID(h.recorder.logger, c)

	report, err := h.recorder.GetRun(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "run not found",
			})
		}
		l.Error("Failed to load run", zap.String("run_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
