package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
)

// ActivityHandler serves the public activity catalog.
type ActivityHandler struct {
	catalog service.CatalogService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the public catalog handler.
func NewActivityHandler(catalog service.CatalogService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		catalog: catalog,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// List returns every published activity, optionally narrowed to those
// tagged with the skill named in the query. The filter matches skill names
// exactly; an unknown name yields an empty list, not an error.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	skillName := strings.TrimSpace(c.Query("skill"))

	result, err := h.catalog.List(c.UserContext(), skillName)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load activity catalog")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activities")
	}

	return utils.SendSuccess(c, "activities retrieved", result)
}
