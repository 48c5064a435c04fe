package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tracktivity/tracktivity-api/internal/models"
)

// PendingActivityFilter narrows pending activity queries.
type PendingActivityFilter struct {
	UserID string
	Status string
}

// PendingActivityRepository exposes persistence helpers for student submissions.
type PendingActivityRepository interface {
	List(ctx context.Context, filter PendingActivityFilter) ([]models.PendingActivity, error)
	Get(ctx context.Context, id uint) (models.PendingActivity, error)
	Create(ctx context.Context, item *models.PendingActivity) error
	UpdateSkills(ctx context.Context, id uint, skills []models.Skill) error
	UpdateStatus(ctx context.Context, id uint, status string) error
}

type pendingActivityRepository struct {
	db *gorm.DB
}

// NewPendingActivityRepository constructs the repository implementation.
func NewPendingActivityRepository(db *gorm.DB) PendingActivityRepository {
	return &pendingActivityRepository{db: db}
}

func (r *pendingActivityRepository) List(ctx context.Context, filter PendingActivityFilter) ([]models.PendingActivity, error) {
	query := r.db.WithContext(ctx).Model(&models.PendingActivity{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var items []models.PendingActivity
	if err := query.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *pendingActivityRepository) Get(ctx context.Context, id uint) (models.PendingActivity, error) {
	var item models.PendingActivity
	err := r.db.WithContext(ctx).First(&item, id).Error
	return item, err
}

func (r *pendingActivityRepository) Create(ctx context.Context, item *models.PendingActivity) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateSkills replaces the skill array wholesale.
func (r *pendingActivityRepository) UpdateSkills(ctx context.Context, id uint, skills []models.Skill) error {
	return r.db.WithContext(ctx).Model(&models.PendingActivity{}).
		Where("id = ?", id).
		Update("skills", datatypes.NewJSONSlice(skills)).Error
}

// UpdateStatus sets the status unconditionally; approving twice is a no-op
// in effect.
func (r *pendingActivityRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.PendingActivity{}).
		Where("id = ?", id).
		Update("status", status).Error
}
