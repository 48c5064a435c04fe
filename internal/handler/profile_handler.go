package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
)

// ProfileHandler serves the per-account profile document.
type ProfileHandler struct {
	profiles service.ProfileService
	logger   zerolog.Logger
}

// NewProfileHandler constructs the profile handler.
func NewProfileHandler(profiles service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		logger:   logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Get returns the caller's profile. Accounts that never uploaded an image
// get an empty URL.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)
	if claims == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	profile, err := h.profiles.Get(c.UserContext(), claims.Account)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", claims.Account).Msg("failed to load profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load profile")
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

// UpdateImage replaces the caller's profile image.
func (h *ProfileHandler) UpdateImage(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)
	if claims == nil {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "image file is required")
	}

	profile, err := h.profiles.SetImage(c.UserContext(), claims.Account, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		default:
			h.logger.Error().Err(err).Str("user_id", claims.Account).Msg("failed to update profile image")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update profile image")
		}
	}

	return utils.SendSuccess(c, "profile image updated", profile)
}
