package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/internal/models"
	"github.com/tracktivity/tracktivity-api/internal/observability"
	"github.com/tracktivity/tracktivity-api/internal/repository"
)

var (
	// ErrMissingSkill indicates the submission carried no skill entries.
	ErrMissingSkill = errors.New("at least one skill is required")
	// ErrMissingFields indicates name or description were empty.
	ErrMissingFields = errors.New("name and description are required")
	// ErrUnknownSkill indicates a skill name outside the rubric's categories.
	ErrUnknownSkill = errors.New("skill name is not one of the rubric categories")
	// ErrInvalidLevel indicates a skill level outside 1..5.
	ErrInvalidLevel = errors.New("skill level must be between 1 and 5")
)

// SubmissionService handles student activity submissions and the profile
// view derived from them.
type SubmissionService interface {
	Submit(ctx context.Context, claims *middleware.SessionClaims, req dto.SubmissionRequest, certificate *multipart.FileHeader) (dto.SubmissionResponse, error)
	ListMine(ctx context.Context, userID string) (dto.MySubmissionsResponse, error)
}

type submissionService struct {
	repo      repository.PendingActivityRepository
	uploads   UploadService
	realtime  RealtimeService
	validator *validator.Validate
	logger    zerolog.Logger
	policy    *bluemonday.Policy
	tracer    trace.Tracer
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(repo repository.PendingActivityRepository, uploads UploadService, realtime RealtimeService, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:      repo,
		uploads:   uploads,
		realtime:  realtime,
		validator: validate,
		logger:    logger.With().Str("component", "submission_service").Logger(),
		policy:    bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/tracktivity/tracktivity-api/internal/service/submission"),
	}
}

func (s *submissionService) Submit(ctx context.Context, claims *middleware.SessionClaims, req dto.SubmissionRequest, certificate *multipart.FileHeader) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.create", trace.WithAttributes(
		attribute.String("submission.user_id", claims.Account),
		attribute.Int("submission.skill_count", len(req.Skills)),
	))
	defer span.End()

	if err := s.validate(req); err != nil {
		observability.Submissions().WithLabelValues("rejected").Inc()
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	var fileURL *string
	if certificate != nil {
		uploaded, err := s.uploads.Upload(ctx, FolderCertificates, certificate)
		if err != nil {
			observability.Submissions().WithLabelValues("upload_failed").Inc()
			span.RecordError(err)
			return dto.SubmissionResponse{}, err
		}
		fileURL = &uploaded.URL
	}

	item := models.PendingActivity{
		Name:        strings.TrimSpace(req.Name),
		Description: s.policy.Sanitize(req.Description),
		Skills:      datatypes.NewJSONSlice(req.Skills),
		Status:      models.StatusPending,
		FileURL:     fileURL,
		UserID:      claims.Account,
		Firstname:   claims.FirstnameEN,
		Lastname:    claims.LastnameEN,
		StudentID:   claims.StudentID,
	}

	if err := s.repo.Create(ctx, &item); err != nil {
		observability.Submissions().WithLabelValues("error").Inc()
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	observability.Submissions().WithLabelValues("accepted").Inc()
	s.logger.Info().Uint("submission_id", item.ID).Str("user_id", item.UserID).Msg("activity submitted")

	if s.realtime != nil {
		s.realtime.Publish(ctx, CollectionPendingActivities)
	}

	return dto.NewSubmissionResponse(item), nil
}

func (s *submissionService) ListMine(ctx context.Context, userID string) (dto.MySubmissionsResponse, error) {
	items, err := s.repo.List(ctx, repository.PendingActivityFilter{UserID: userID})
	if err != nil {
		return dto.MySubmissionsResponse{}, err
	}

	response := dto.MySubmissionsResponse{
		Pending:  make([]dto.SubmissionResponse, 0),
		Approved: make([]dto.SubmissionResponse, 0),
	}
	approvedSkills := make([]models.Skill, 0)
	for _, item := range items {
		converted := dto.NewSubmissionResponse(item)
		switch item.Status {
		case models.StatusApproved:
			response.Approved = append(response.Approved, converted)
			approvedSkills = append(approvedSkills, item.Skills...)
		default:
			response.Pending = append(response.Pending, converted)
		}
	}

	response.SkillSummary = SummarizeSkills(approvedSkills)

	return response, nil
}

// SummarizeSkills computes one radar level per rubric category: the maximum
// level across all approved skills of that name, 0 when absent.
func SummarizeSkills(skills []models.Skill) []dto.SkillLevel {
	summary := make([]dto.SkillLevel, 0, len(models.SkillNames))
	for _, name := range models.SkillNames {
		level := 0
		for _, skill := range skills {
			if skill.Name == name && skill.Level > level {
				level = skill.Level
			}
		}
		summary = append(summary, dto.SkillLevel{Name: name, Level: level})
	}
	return summary
}

func (s *submissionService) validate(req dto.SubmissionRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		return ErrMissingFields
	}
	if len(req.Skills) == 0 {
		return ErrMissingSkill
	}
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	for _, skill := range req.Skills {
		if !knownSkillName(skill.Name) {
			return ErrUnknownSkill
		}
		if skill.Level < 1 || skill.Level > 5 {
			return ErrInvalidLevel
		}
	}
	return nil
}

func knownSkillName(name string) bool {
	for _, known := range models.SkillNames {
		if known == name {
			return true
		}
	}
	return false
}
