package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/models"
	"github.com/tracktivity/tracktivity-api/internal/observability"
	"github.com/tracktivity/tracktivity-api/internal/repository"
)

const catalogCacheKey = "activities:catalog:v1"

var (
	// ErrActivityNotFound indicates the activity id does not exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidDraft indicates the draft failed required-field validation.
	ErrInvalidDraft = errors.New("name and description are required")
)

// CatalogService exposes the published activity catalog: public reads plus
// the admin write path.
type CatalogService interface {
	List(ctx context.Context, skillName string) (dto.ActivityListResponse, error)
	Create(ctx context.Context, draft dto.ActivityDraft) (dto.ActivityResponse, error)
	Update(ctx context.Context, id uint, draft dto.ActivityDraft) (dto.ActivityResponse, error)
	Delete(ctx context.Context, id uint) error
	Seed(ctx context.Context, items []models.Activity) (int64, error)
}

type catalogService struct {
	repo      repository.ActivityRepository
	cache     *redis.Client
	ttl       time.Duration
	realtime  RealtimeService
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(repo repository.ActivityRepository, cache *redis.Client, ttl time.Duration, realtime RealtimeService, validate *validator.Validate, logger zerolog.Logger) CatalogService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &catalogService{
		repo:      repo,
		cache:     cache,
		ttl:       ttl,
		realtime:  realtime,
		validator: validate,
		logger:    logger.With().Str("component", "catalog_service").Logger(),
		policy:    bluemonday.StrictPolicy(),
	}
}

func (s *catalogService) List(ctx context.Context, skillName string) (dto.ActivityListResponse, error) {
	start := time.Now()
	defer func() {
		observability.CatalogLatency().Observe(time.Since(start).Seconds())
	}()

	items, cacheHit, err := s.loadCatalog(ctx)
	if err != nil {
		observability.CatalogRequests().WithLabelValues("error").Inc()
		return dto.ActivityListResponse{}, err
	}

	filtered := FilterBySkill(items, skillName)

	outcome := "miss"
	if cacheHit {
		outcome = "hit"
	}
	observability.CatalogRequests().WithLabelValues(outcome).Inc()

	return dto.ActivityListResponse{Items: filtered, Total: len(filtered), CacheHit: cacheHit}, nil
}

// FilterBySkill returns the activities having at least one skill whose name
// equals skillName exactly (case-sensitive). An empty skillName is the
// identity filter.
func FilterBySkill(items []dto.ActivityResponse, skillName string) []dto.ActivityResponse {
	if skillName == "" {
		return items
	}

	filtered := make([]dto.ActivityResponse, 0, len(items))
	for _, item := range items {
		for _, skill := range item.Skills {
			if skill.Name == skillName {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

func (s *catalogService) Create(ctx context.Context, draft dto.ActivityDraft) (dto.ActivityResponse, error) {
	if err := s.validateDraft(draft); err != nil {
		return dto.ActivityResponse{}, err
	}

	item := s.modelFromDraft(draft)
	if err := s.repo.Create(ctx, &item); err != nil {
		return dto.ActivityResponse{}, err
	}

	s.afterMutation(ctx)
	s.logger.Info().Uint("activity_id", item.ID).Msg("activity published")

	return dto.NewActivityResponse(item), nil
}

// Update overwrites every field of the activity; there is no partial merge
// and no version check, so the last writer wins.
func (s *catalogService) Update(ctx context.Context, id uint, draft dto.ActivityDraft) (dto.ActivityResponse, error) {
	if err := s.validateDraft(draft); err != nil {
		return dto.ActivityResponse{}, err
	}

	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, ErrActivityNotFound
		}
		return dto.ActivityResponse{}, err
	}

	item := s.modelFromDraft(draft)
	item.ID = id
	if err := s.repo.Update(ctx, &item); err != nil {
		return dto.ActivityResponse{}, err
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return dto.ActivityResponse{}, err
	}

	s.afterMutation(ctx)

	return dto.NewActivityResponse(updated), nil
}

func (s *catalogService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrActivityNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.afterMutation(ctx)
	s.logger.Info().Uint("activity_id", id).Msg("activity deleted")

	return nil
}

func (s *catalogService) Seed(ctx context.Context, items []models.Activity) (int64, error) {
	affected, err := s.repo.UpsertBatch(ctx, items)
	if err != nil {
		return 0, err
	}
	s.afterMutation(ctx)
	return affected, nil
}

func (s *catalogService) validateDraft(draft dto.ActivityDraft) error {
	if err := s.validator.Struct(draft); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDraft, err)
	}
	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.Description) == "" {
		return ErrInvalidDraft
	}
	return nil
}

func (s *catalogService) modelFromDraft(draft dto.ActivityDraft) models.Activity {
	return models.Activity{
		Name:        strings.TrimSpace(draft.Name),
		Description: s.policy.Sanitize(draft.Description),
		Dates:       datatypes.NewJSONSlice(draft.Dates),
		Skills:      datatypes.NewJSONSlice(draft.Skills),
		ImageURLs:   datatypes.NewJSONSlice(draft.ImageURLs),
	}
}

func (s *catalogService) loadCatalog(ctx context.Context) ([]dto.ActivityResponse, bool, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, catalogCacheKey).Result(); err == nil && cached != "" {
			var items []dto.ActivityResponse
			if err := json.Unmarshal([]byte(cached), &items); err == nil {
				return items, true, nil
			}
		}
	}

	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, false, err
	}
	items := dto.NewActivityResponseSlice(stored)

	if s.cache != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache catalog")
			}
		}
	}

	return items, false, nil
}

// afterMutation invalidates the catalog cache and pushes a fresh snapshot to
// live subscribers.
func (s *catalogService) afterMutation(ctx context.Context) {
	if s.cache != nil {
		if err := s.cache.Del(ctx, catalogCacheKey).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate catalog cache")
		}
	}
	if s.realtime != nil {
		s.realtime.Publish(ctx, CollectionAdminActivities)
	}
}
