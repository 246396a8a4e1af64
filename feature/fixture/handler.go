package fixture

import (
	"errors"
	"strconv"

	"matchday/core/logger"
	"matchday/feature/fixture/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler handles HTTP requests for fixtures.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the fixture routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/fixtures")
	group.Post("/sync", h.HandleSync)
	group.Get("/", h.HandleListFixtures)
	group.Get("/:externalID/audit", h.HandleGetAudit)
}

// syncRequest is the optional POST body for a manual batch.
type syncRequest struct {
	Fixtures []models.FixtureDTO `json:"fixtures"`
}

// HandleSync triggers a sync run. Without a body the provider feed is
// fetched; with a fixtures body the supplied batch is synced as a manual run.
// @Summary Trigger Fixture Sync
// @Description Run the fixture sync engine against the provider feed or a supplied batch.
// @Tags fixtures
// @Accept json
// @Produce json
// @Param dry_run query bool false "Compute results without writing"
// @Param bypass_state_validation query bool false "Skip state transition validation"
// @Success 200 {object} SyncReport "Sync Report"
// @Failure 502 {object} map[string]string "Upstream Failure"
// @Router /fixtures/sync [post]
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	opts := SyncOptions{
		DryRun:                c.QueryBool("dry_run"),
		BypassStateValidation: c.QueryBool("bypass_state_validation"),
	}

	var req syncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed request body",
			})
		}
	}

	var (
		report *SyncReport
		err    error
	)
	if len(req.Fixtures) > 0 {
		report, err = h.service.SyncFixtures(c.Context(), req.Fixtures, opts)
	} else {
		report, err = h.service.SyncFromFeed(c.Context(), opts)
	}
	if err != nil {
		l.Error("Fixture sync failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleListFixtures returns fixtures ordered by kickoff.
// @Summary List Fixtures
// @Description List fixtures, optionally filtered by state.
// @Tags fixtures
// @Produce json
// @Param state query string false "Lifecycle state filter"
// @Param limit query int false "Page size (default 100)"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Fixture "Fixtures"
// @Router /fixtures [get]
func (h *Handler) HandleListFixtures(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	filter := ListFilter{
		State:  c.Query("state"),
		Limit:  c.QueryInt("limit"),
		Offset: c.QueryInt("offset"),
	}

	fixtures, err := h.service.ListFixtures(c.Context(), filter)
	if err != nil {
		if filter.State != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		l.Error("Fixture listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fixtures)
}

// HandleGetAudit returns one fixture's audit trail, newest first.
// @Summary Get Fixture Audit Trail
// @Description Get a fixture and its audited field changes by external id.
// @Tags fixtures
// @Produce json
// @Param externalID path int true "Provider External ID"
// @Success 200 {object} AuditTrail "Audit Trail"
// @Failure 404 {object} map[string]string "Fixture Not Found"
// @Router /fixtures/{externalID}/audit [get]
func (h *Handler) HandleGetAudit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	externalID, err := strconv.ParseInt(c.Params("externalID"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "external id must be an integer",
		})
	}

	trail, err := h.service.AuditForFixture(c.Context(), externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "fixture not found",
			})
		}
		l.Error("Audit trail lookup failed", zap.Int64("external_id", externalID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(trail)
}
