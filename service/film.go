package service

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"filmroom/constant"
	"filmroom/dto"
	"filmroom/entities"
	"filmroom/pkg/rabbitmq"
	"filmroom/repository"
)

var (
	ErrUploadNotReady = errors.New("upload is not ready")
	ErrInvalidWindow  = errors.New("segment window is invalid")
)

type NewUpload struct {
	TeamID       uuid.UUID
	UploadedById *uuid.UUID
	Title        string
	Notes        *string
	FileName     string
	Body         io.Reader
	Size         int64
}

type FilmService interface {
	CreateUpload(ctx context.Context, in NewUpload) (*entities.Upload, error)
	ListUploads(ctx context.Context, teamId uuid.UUID) ([]*entities.Upload, error)
	GetUpload(ctx context.Context, teamId, uploadId uuid.UUID) (*entities.Upload, error)
	DeleteUpload(ctx context.Context, teamId, uploadId uuid.UUID) error
	ApplyStatusReport(ctx context.Context, report dto.FilmStatusMessage) error
}

type filmService struct {
	repo  repository.FilmRepository
	store ObjectStore
	queue rabbitmq.Publisher
}

func NewFilmService(repo repository.FilmRepository, store ObjectStore, queue rabbitmq.Publisher) FilmService {
	return &filmService{
		repo:  repo,
		store: store,
		queue: queue,
	}
}

func (s *filmService) CreateUpload(ctx context.Context, in NewUpload) (*entities.Upload, error) {
	id := uuid.New()
	ext := filepath.Ext(in.FileName)
	key := "raw/" + id.String() + ext

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "video/mp4"
	}

	if err := s.store.Put(ctx, key, in.Body, in.Size, contentType); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to store raw film")
		return nil, err
	}

	upload := &entities.Upload{
		ID:           id,
		TeamID:       in.TeamID,
		UploadedById: in.UploadedById,
		Title:        in.Title,
		Notes:        in.Notes,
		Status:       constant.UploadStatusProcessing,
		StorageKey:   key,
		ContentType:  contentType,
		UploadedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateUpload(ctx, upload); err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}

	err := s.queue.Publish(ctx, dto.ProcessFilmMessage{
		UploadId:   upload.ID,
		StorageKey: key,
		FileName:   in.FileName,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("upload_id", upload.ID.String()).Msg("failed to enqueue film for processing")
		if delErr := s.repo.DeleteUpload(ctx, upload.ID); delErr != nil {
			zerolog.Ctx(ctx).Error().Err(delErr).Msg("failed to roll back upload row")
		}
		s.removeObject(ctx, key)
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("upload_id", upload.ID.String()).Msg("film upload accepted")
	return upload, nil
}

func (s *filmService) removeObject(ctx context.Context, key string) {
	if err := s.store.Remove(ctx, key); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to remove object")
	}
}

func (s *filmService) ListUploads(ctx context.Context, teamId uuid.UUID) ([]*entities.Upload, error) {
	return s.repo.ListUploads(ctx, teamId)
}

func (s *filmService) GetUpload(ctx context.Context, teamId, uploadId uuid.UUID) (*entities.Upload, error) {
	return s.repo.FindUploadById(ctx, teamId, uploadId)
}

// DeleteUpload removes the raw file, its row and its segments. Clips already
// published from this upload are left in place.
func (s *filmService) DeleteUpload(ctx context.Context, teamId, uploadId uuid.UUID) error {
	upload, err := s.repo.FindUploadById(ctx, teamId, uploadId)
	if err != nil {
		return err
	}
	s.removeObject(ctx, upload.StorageKey)
	return s.repo.DeleteUpload(ctx, upload.ID)
}

// ApplyStatusReport applies a pipeline report. Terminal rows absorb further
// reports, and suggested segments are inserted only when none exist yet.
func (s *filmService) ApplyStatusReport(ctx context.Context, report dto.FilmStatusMessage) error {
	upload, err := s.repo.FindUpload(ctx, report.UploadId)
	if errors.Is(err, repository.ErrNotFound) {
		zerolog.Ctx(ctx).Warn().Str("upload_id", report.UploadId.String()).Msg("status report for unknown upload")
		return nil
	}
	if err != nil {
		return err
	}

	if upload.Status.Terminal() {
		zerolog.Ctx(ctx).Info().
			Str("upload_id", upload.ID.String()).
			Str("status", string(upload.Status)).
			Msg("upload already in a terminal state, ignoring report")
		return nil
	}

	status := constant.UploadStatus(report.Status)
	if status != constant.UploadStatusReady && status != constant.UploadStatusError {
		zerolog.Ctx(ctx).Warn().Str("status", report.Status).Msg("unrecognized status in report, dropping")
		return nil
	}

	if status == constant.UploadStatusReady && len(report.Segments) > 0 {
		count, err := s.repo.CountSegments(ctx, upload.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			segments := make([]*entities.Segment, 0, len(report.Segments))
			for _, suggestion := range report.Segments {
				if suggestion.StartSecond < 0 || suggestion.EndSecond <= suggestion.StartSecond {
					continue
				}
				segments = append(segments, &entities.Segment{
					ID:          uuid.New(),
					UploadID:    upload.ID,
					StartSecond: suggestion.StartSecond,
					EndSecond:   suggestion.EndSecond,
					Label:       suggestion.Label,
					Notes:       suggestion.Notes,
					Confidence:  suggestion.Confidence,
					CreatedAt:   time.Now().UTC(),
				})
			}
			if err := s.repo.CreateSegments(ctx, segments); err != nil {
				return err
			}
		}
	}

	if err := s.repo.UpdateUploadStatus(ctx, upload.ID, status, report.DurationSeconds); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("upload_id", upload.ID.String()).
		Str("status", string(status)).
		Int("suggested_segments", len(report.Segments)).
		Msg("applied pipeline status report")
	return nil
}
