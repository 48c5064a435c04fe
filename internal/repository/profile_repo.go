package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tracktivity/tracktivity-api/internal/models"
)

// ProfileRepository persists per-account profile documents.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (models.UserProfile, error)
	SetImageURL(ctx context.Context, userID, imageURL string) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository constructs the repository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	var profile models.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	return profile, err
}

// SetImageURL upserts in a single statement so concurrent updates from two
// sessions cannot interleave a read-merge-write.
func (r *profileRepository) SetImageURL(ctx context.Context, userID, imageURL string) error {
	profile := models.UserProfile{UserID: userID, ProfileImageURL: imageURL}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"profile_image_url", "updated_at"}),
	}).Create(&profile).Error
}
