package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/models"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
)

// SeedRequest loads demo catalog content. The token gates the endpoint in
// environments where seeding is enabled at all.
type SeedRequest struct {
	Token string              `json:"token"`
	Items []dto.ActivityDraft `json:"items"`
}

// SeedHandler exposes the demo-data loader.
type SeedHandler struct {
	seeds  service.SeedService
	logger zerolog.Logger
}

// NewSeedHandler constructs the seed handler.
func NewSeedHandler(seeds service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		seeds:  seeds,
		logger: logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Seed upserts the provided activities into the catalog.
func (h *SeedHandler) Seed(c *fiber.Ctx) error {
	var req SeedRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	items := make([]models.Activity, 0, len(req.Items))
	for _, draft := range req.Items {
		items = append(items, models.Activity{
			Name:        draft.Name,
			Description: draft.Description,
			Dates:       datatypes.NewJSONSlice(draft.Dates),
			Skills:      datatypes.NewJSONSlice(draft.Skills),
			ImageURLs:   datatypes.NewJSONSlice(draft.ImageURLs),
		})
	}

	affected, err := h.seeds.SeedActivities(c.UserContext(), req.Token, items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusNotFound, "not found")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid seed token")
		default:
			h.logger.Error().Err(err).Msg("failed to seed activities")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to seed activities")
		}
	}

	return utils.SendSuccess(c, "activities seeded", fiber.Map{"affected": affected})
}
