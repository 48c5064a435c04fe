package dto

import (
	"time"

	"github.com/tracktivity/tracktivity-api/internal/models"
)

// SubmissionRequest is the student-facing activity submission payload. The
// certificate file travels as a separate multipart part.
type SubmissionRequest struct {
	Name        string         `json:"name" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Skills      []models.Skill `json:"skills" validate:"required,min=1,dive"`
}

// SubmissionResponse represents a pending or approved student activity.
type SubmissionResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Skills      []models.Skill `json:"skills"`
	Status      string         `json:"status"`
	FileURL     *string        `json:"fileUrl"`
	UserID      string         `json:"userId"`
	Firstname   string         `json:"firstname"`
	Lastname    string         `json:"lastname"`
	StudentID   string         `json:"studentId"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// SkillLevel is one axis of the radar chart.
type SkillLevel struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// MySubmissionsResponse splits the caller's submissions by status and carries
// the aggregated radar levels for the six fixed skill categories.
type MySubmissionsResponse struct {
	Pending      []SubmissionResponse `json:"pending"`
	Approved     []SubmissionResponse `json:"approved"`
	SkillSummary []SkillLevel         `json:"skillSummary"`
}

// SkillsUpdateRequest overwrites a pending activity's skill array wholesale.
type SkillsUpdateRequest struct {
	Skills []models.Skill `json:"skills" validate:"dive"`
}

// NewSubmissionResponse converts a stored pending activity.
func NewSubmissionResponse(item models.PendingActivity) SubmissionResponse {
	return SubmissionResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Skills:      append([]models.Skill(nil), item.Skills...),
		Status:      item.Status,
		FileURL:     item.FileURL,
		UserID:      item.UserID,
		Firstname:   item.Firstname,
		Lastname:    item.Lastname,
		StudentID:   item.StudentID,
		CreatedAt:   item.CreatedAt,
	}
}

// NewSubmissionResponseSlice converts a snapshot of pending activities.
func NewSubmissionResponseSlice(items []models.PendingActivity) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewSubmissionResponse(item))
	}
	return responses
}
