package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/models"
	"github.com/tracktivity/tracktivity-api/internal/observability"
	"github.com/tracktivity/tracktivity-api/internal/repository"
)

// ErrSubmissionNotFound indicates the pending activity id does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ReviewService is the admin side of the submission queue.
type ReviewService interface {
	List(ctx context.Context, status string) ([]dto.SubmissionResponse, error)
	UpdateSkills(ctx context.Context, id uint, skills []models.Skill) (dto.SubmissionResponse, error)
	Approve(ctx context.Context, id uint) (dto.SubmissionResponse, error)
}

type reviewService struct {
	repo      repository.PendingActivityRepository
	realtime  RealtimeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewReviewService constructs the review service.
func NewReviewService(repo repository.PendingActivityRepository, realtime RealtimeService, validate *validator.Validate, logger zerolog.Logger) ReviewService {
	return &reviewService{
		repo:      repo,
		realtime:  realtime,
		validator: validate,
		logger:    logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) List(ctx context.Context, status string) ([]dto.SubmissionResponse, error) {
	items, err := s.repo.List(ctx, repository.PendingActivityFilter{Status: status})
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponseSlice(items), nil
}

// UpdateSkills overwrites the skill array wholesale. Adding a blank row and
// deleting a row by index both arrive here as a brand new array.
func (s *reviewService) UpdateSkills(ctx context.Context, id uint, skills []models.Skill) (dto.SubmissionResponse, error) {
	if _, err := s.get(ctx, id); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if skills == nil {
		skills = []models.Skill{}
	}
	if err := s.repo.UpdateSkills(ctx, id, skills); err != nil {
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.get(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if s.realtime != nil {
		s.realtime.Publish(ctx, CollectionPendingActivities)
	}

	return dto.NewSubmissionResponse(updated), nil
}

// Approve flips status to approved unconditionally. Re-approving an approved
// record is a no-op in effect; the transition never reverses.
func (s *reviewService) Approve(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	if _, err := s.get(ctx, id); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if err := s.repo.UpdateStatus(ctx, id, models.StatusApproved); err != nil {
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.get(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	observability.Approvals().Inc()
	s.logger.Info().Uint("submission_id", id).Str("user_id", updated.UserID).Msg("submission approved")

	if s.realtime != nil {
		s.realtime.Publish(ctx, CollectionPendingActivities)
	}

	return dto.NewSubmissionResponse(updated), nil
}

func (s *reviewService) get(ctx context.Context, id uint) (models.PendingActivity, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PendingActivity{}, ErrSubmissionNotFound
		}
		return models.PendingActivity{}, err
	}
	return item, nil
}
