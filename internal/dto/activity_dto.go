package dto

import (
	"time"

	"github.com/tracktivity/tracktivity-api/internal/models"
)

// ActivityDraft carries the fields an admin composes for a published
// activity. Updates overwrite every field; there is no partial merge.
type ActivityDraft struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Dates       []string       `json:"dates"`
	Skills      []models.Skill `json:"skills" validate:"dive"`
	ImageURLs   []string       `json:"imageUrls"`
}

// ActivityResponse represents a published activity returned to the frontend.
type ActivityResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Dates       []string       `json:"dates"`
	Skills      []models.Skill `json:"skills"`
	ImageURLs   []string       `json:"imageUrls"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ActivityListResponse wraps the activity catalog snapshot.
type ActivityListResponse struct {
	Items    []ActivityResponse `json:"items"`
	Total    int                `json:"total"`
	CacheHit bool               `json:"cache_hit"`
}

// NewActivityResponse converts a stored activity into its response shape.
func NewActivityResponse(item models.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Dates:       append([]string(nil), item.Dates...),
		Skills:      append([]models.Skill(nil), item.Skills...),
		ImageURLs:   append([]string(nil), item.ImageURLs...),
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// NewActivityResponseSlice converts a snapshot of stored activities.
func NewActivityResponseSlice(items []models.Activity) []ActivityResponse {
	responses := make([]ActivityResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewActivityResponse(item))
	}
	return responses
}

// UploadedImage pairs the public download URL with the storage key needed to
// delete the blob later.
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Filename string `json:"filename"`
}

// ImageUploadResponse lists uploads in completion order.
type ImageUploadResponse struct {
	Images []UploadedImage `json:"images"`
}
