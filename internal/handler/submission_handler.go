package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
)

// SubmissionHandler is the student side of activity submissions.
type SubmissionHandler struct {
	submissions service.SubmissionService
	logger      zerolog.Logger
}

// NewSubmissionHandler constructs the submission handler.
func NewSubmissionHandler(submissions service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Submit records a new activity submission. The request is multipart: name,
// description and a JSON-encoded skills array as form fields, plus an
// optional certificate file.
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)
	if claims == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	skills, err := parseSkillsField(c.FormValue("skills"))
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "skills must be a JSON array")
	}

	req := dto.SubmissionRequest{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Skills:      skills,
	}

	var certificate *multipart.FileHeader
	if file, err := c.FormFile("certificate"); err == nil {
		certificate = file
	}

	created, err := h.submissions.Submit(c.UserContext(), claims, req, certificate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrMissingSkill),
			errors.Is(err, service.ErrUnknownSkill),
			errors.Is(err, service.ErrInvalidLevel):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		default:
			h.logger.Error().Err(err).Str("user_id", claims.Account).Msg("failed to record submission")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to record submission")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission recorded", created)
}

// ListMine returns the caller's submissions split by status plus the
// aggregated radar levels derived from the approved ones.
func (h *SubmissionHandler) ListMine(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)
	if claims == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	result, err := h.submissions.ListMine(c.UserContext(), claims.Account)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", claims.Account).Msg("failed to load submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", result)
}
