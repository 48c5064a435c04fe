package handler

import (
	"errors"
	"mime/multipart"
	"net/url"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
)

// AdminActivityHandler is the write side of the activity catalog.
type AdminActivityHandler struct {
	catalog service.CatalogService
	uploads service.UploadService
	logger  zerolog.Logger
}

// NewAdminActivityHandler constructs the admin catalog handler.
func NewAdminActivityHandler(catalog service.CatalogService, uploads service.UploadService, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		catalog: catalog,
		uploads: uploads,
		logger:  logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Create publishes a new activity to the catalog.
func (h *AdminActivityHandler) Create(c *fiber.Ctx) error {
	var draft dto.ActivityDraft
	if err := c.BodyParser(&draft); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.catalog.Create(c.UserContext(), draft)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDraft) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create activity")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "activity created", created)
}

// Update overwrites every field of an existing activity.
func (h *AdminActivityHandler) Update(c *fiber.Ctx) error {
	id, err := parseParamID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	var draft dto.ActivityDraft
	if err := c.BodyParser(&draft); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated, err := h.catalog.Update(c.UserContext(), id, draft)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrActivityNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		case errors.Is(err, service.ErrInvalidDraft):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Uint("activity_id", id).Msg("failed to update activity")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update activity")
		}
	}

	return utils.SendSuccess(c, "activity updated", updated)
}

// Delete removes an activity from the catalog.
func (h *AdminActivityHandler) Delete(c *fiber.Ctx) error {
	id, err := parseParamID(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid activity id")
	}

	if err := h.catalog.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "activity not found")
		}
		h.logger.Error().Err(err).Uint("activity_id", id).Msg("failed to delete activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete activity")
	}

	return utils.SendSuccess(c, "activity deleted", nil)
}

// UploadImages stores the multipart images and returns their public URLs
// along with the storage keys needed to delete them later. Files upload
// concurrently; one bad file fails the whole batch.
func (h *AdminActivityHandler) UploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "multipart form required")
	}

	files := form.File["images"]
	if len(files) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "at least one image is required")
	}

	ctx := c.UserContext()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		images   = make([]dto.UploadedImage, 0, len(files))
		firstErr error
	)
	for _, file := range files {
		wg.Add(1)
		go func(file *multipart.FileHeader) {
			defer wg.Done()

			uploaded, err := h.uploads.Upload(ctx, service.FolderImages, file)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			images = append(images, uploaded)
		}(file)
	}
	wg.Wait()

	if firstErr != nil {
		switch {
		case errors.Is(firstErr, service.ErrUploadTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, firstErr.Error())
		case errors.Is(firstErr, service.ErrUploadTypeNotAllowed):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, firstErr.Error())
		default:
			h.logger.Error().Err(firstErr).Msg("image upload failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to upload images")
		}
	}

	return utils.SendSuccess(c, "images uploaded", dto.ImageUploadResponse{Images: images})
}

// DeleteImage removes a stored image by its storage key. The key may contain
// slashes, so the route captures it as a wildcard and the handler unescapes
// it.
func (h *AdminActivityHandler) DeleteImage(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Params("*"))
	publicID, err := url.PathUnescape(raw)
	if err != nil || publicID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid image id")
	}

	if err := h.uploads.Delete(c.UserContext(), publicID); err != nil {
		h.logger.Error().Err(err).Str("public_id", publicID).Msg("failed to delete image")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete image")
	}

	return utils.SendSuccess(c, "image deleted", nil)
}
