package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/repository"
)

// ProfileService manages the per-account profile document.
type ProfileService interface {
	Get(ctx context.Context, userID string) (dto.ProfileResponse, error)
	SetImage(ctx context.Context, userID string, file *multipart.FileHeader) (dto.ProfileResponse, error)
}

type profileService struct {
	repo    repository.ProfileRepository
	uploads UploadService
	logger  zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(repo repository.ProfileRepository, uploads UploadService, logger zerolog.Logger) ProfileService {
	return &profileService{
		repo:    repo,
		uploads: uploads,
		logger:  logger.With().Str("component", "profile_service").Logger(),
	}
}

// Get returns the profile document; accounts that never uploaded an image
// get an empty URL, not an error.
func (s *profileService) Get(ctx context.Context, userID string) (dto.ProfileResponse, error) {
	profile, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{UserID: userID}, nil
		}
		return dto.ProfileResponse{}, err
	}

	return dto.ProfileResponse{UserID: profile.UserID, ProfileImageURL: profile.ProfileImageURL}, nil
}

// SetImage uploads the new profile image and upserts the document in one
// statement; two tabs racing resolve to whichever write lands last, without
// a torn read-merge-write.
func (s *profileService) SetImage(ctx context.Context, userID string, file *multipart.FileHeader) (dto.ProfileResponse, error) {
	uploaded, err := s.uploads.Upload(ctx, FolderProfileImages, file)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	if err := s.repo.SetImageURL(ctx, userID, uploaded.URL); err != nil {
		return dto.ProfileResponse{}, err
	}

	s.logger.Info().Str("user_id", userID).Msg("profile image updated")

	return dto.ProfileResponse{UserID: userID, ProfileImageURL: uploaded.URL}, nil
}
