package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
)

// AdminSubmissionHandler is the review side of the submission queue.
type AdminSubmissionHandler struct {
	reviews service.ReviewService
	logger  zerolog.Logger
}

// NewAdminSubmissionHandler constructs the review handler.
func NewAdminSubmissionHandler(reviews service.ReviewService, logger zerolog.Logger) *AdminSubmissionHandler {
	return &AdminSubmissionHandler{
		reviews: reviews,
		logger:  logger.With().Str("component", "admin_submission_handler").Logger(),
	}
}

// List returns submissions across all students, optionally filtered by
// status via the query string.
func (h *AdminSubmissionHandler) List(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.Query("status"))

	items, err := h.reviews.List(c.UserContext(), status)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load submission queue")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", items)
}

// UpdateSkills overwrites a submission's skill array wholesale.
func (h *AdminSubmissionHandler) UpdateSkills(c *fiber.Ctx) error {
	id, err := parseParamID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	var req dto.SkillsUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.reviews.UpdateSkills(c.UserContext(), id, req.Skills)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		h.logger.Error().Err(err).Uint("submission_id", id).Msg("failed to update skills")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to update skills")
	}

	return utils.SendSuccess(c, "skills updated", updated)
}

// Approve flips a submission to approved. The transition never reverses;
// approving twice is harmless.
func (h *AdminSubmissionHandler) Approve(c *fiber.Ctx) error {
	id, err := parseParamID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid submission id")
	}

	approved, err := h.reviews.Approve(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		h.logger.Error().Err(err).Uint("submission_id", id).Msg("failed to approve submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to approve submission")
	}

	return utils.SendSuccess(c, "submission approved", approved)
}
