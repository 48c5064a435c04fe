package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tracktivity/tracktivity-api/internal/models"
)

// ActivityRepository exposes persistence helpers for published activities.
type ActivityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)
	Get(ctx context.Context, id uint) (models.Activity, error)
	Create(ctx context.Context, item *models.Activity) error
	Update(ctx context.Context, item *models.Activity) error
	Delete(ctx context.Context, id uint) error
	UpsertBatch(ctx context.Context, items []models.Activity) (int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the repository implementation.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) List(ctx context.Context) ([]models.Activity, error) {
	var items []models.Activity
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *activityRepository) Get(ctx context.Context, id uint) (models.Activity, error) {
	var item models.Activity
	err := r.db.WithContext(ctx).First(&item, id).Error
	return item, err
}

func (r *activityRepository) Create(ctx context.Context, item *models.Activity) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update overwrites every draft field; last writer wins, no version check.
func (r *activityRepository) Update(ctx context.Context, item *models.Activity) error {
	return r.db.WithContext(ctx).Model(&models.Activity{ID: item.ID}).
		Select("name", "description", "dates", "skills", "image_urls").
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"dates":       item.Dates,
			"skills":      item.Skills,
			"image_urls":  item.ImageURLs,
		}).Error
}

func (r *activityRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Activity{}, id).Error
}

func (r *activityRepository) UpsertBatch(ctx context.Context, items []models.Activity) (int64, error) {
	if len(items) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Create(&items)
	return result.RowsAffected, result.Error
}
