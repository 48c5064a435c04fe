package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/observability"
)

// Blob storage folders, kept from the original layout. Keys inside them are
// unique per upload, so the folders are no longer a shared collision-prone
// namespace.
const (
	FolderImages        = "images"
	FolderCertificates  = "certificates"
	FolderProfileImages = "profileImages"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

var allowedUploadPrefixes = []string{"image/", "application/pdf"}

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, folder, name string, reader io.Reader) (url, publicID string, err error)
	Delete(ctx context.Context, publicID string) error
}

// UploadService validates files and hands them to blob storage.
type UploadService interface {
	Upload(ctx context.Context, folder string, file *multipart.FileHeader) (dto.UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
}

type uploadService struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(storage FileStorage, maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploadService{
		storage: storage,
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/tracktivity/tracktivity-api/internal/service/upload"),
	}
}

func (s *uploadService) Upload(ctx context.Context, folder string, file *multipart.FileHeader) (dto.UploadedImage, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		span.SetStatus(codes.Error, "file missing")
		return dto.UploadedImage{}, fmt.Errorf("no file provided")
	}

	span.SetAttributes(
		attribute.String("upload.folder", folder),
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		span.SetStatus(codes.Error, "too large")
		return dto.UploadedImage{}, ErrUploadTooLarge
	}

	reader, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.UploadedImage{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer reader.Close()

	detected, err := mimetype.DetectReader(reader)
	if err != nil {
		span.RecordError(err)
		return dto.UploadedImage{}, fmt.Errorf("failed to sniff upload: %w", err)
	}
	if !uploadTypeAllowed(detected.String()) {
		span.SetStatus(codes.Error, "type not allowed")
		return dto.UploadedImage{}, ErrUploadTypeNotAllowed
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		span.RecordError(err)
		return dto.UploadedImage{}, fmt.Errorf("failed to rewind upload: %w", err)
	}

	url, publicID, err := s.storage.Upload(ctx, folder, file.Filename, reader)
	if err != nil {
		span.RecordError(err)
		return dto.UploadedImage{}, err
	}

	s.logger.Info().
		Str("folder", folder).
		Str("public_id", publicID).
		Str("mime", detected.String()).
		Msg("upload stored")

	return dto.UploadedImage{URL: url, PublicID: publicID, Filename: file.Filename}, nil
}

// Delete removes the blob; failures are surfaced to the caller, which may
// choose to swallow them on best-effort paths.
func (s *uploadService) Delete(ctx context.Context, publicID string) error {
	return s.storage.Delete(ctx, publicID)
}

func uploadTypeAllowed(mime string) bool {
	for _, prefix := range allowedUploadPrefixes {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
	}
	return false
}
