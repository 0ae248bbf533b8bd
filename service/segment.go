package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"filmroom/constant"
	"filmroom/dto"
	"filmroom/entities"
	"filmroom/repository"
)

type SegmentService interface {
	CreateSegment(ctx context.Context, teamId, uploadId uuid.UUID, createdBy *uuid.UUID, req dto.CreateSegmentRequest) (*entities.Segment, error)
	ListSegments(ctx context.Context, teamId, uploadId uuid.UUID) ([]*entities.Segment, error)
	PublishSegment(ctx context.Context, teamId, uploadId, segmentId uuid.UUID, publishedBy *uuid.UUID) (*entities.Clip, error)
}

type segmentService struct {
	repo repository.FilmRepository
}

func NewSegmentService(repo repository.FilmRepository) SegmentService {
	return &segmentService{repo: repo}
}

// CreateSegment re-validates the window even though well-behaved callers
// check it before submitting. An unknown duration never blocks creation.
func (s *segmentService) CreateSegment(ctx context.Context, teamId, uploadId uuid.UUID, createdBy *uuid.UUID, req dto.CreateSegmentRequest) (*entities.Segment, error) {
	upload, err := s.repo.FindUploadById(ctx, teamId, uploadId)
	if err != nil {
		return nil, err
	}
	if upload.Status != constant.UploadStatusReady {
		return nil, ErrUploadNotReady
	}
	if req.StartSecond < 0 || req.EndSecond <= req.StartSecond {
		return nil, ErrInvalidWindow
	}
	if upload.DurationSeconds != nil && req.EndSecond > *upload.DurationSeconds {
		return nil, ErrInvalidWindow
	}

	segment := &entities.Segment{
		ID:          uuid.New(),
		UploadID:    upload.ID,
		StartSecond: req.StartSecond,
		EndSecond:   req.EndSecond,
		Label:       req.Label,
		Notes:       req.Notes,
		CreatedById: createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateSegment(ctx, segment); err != nil {
		return nil, err
	}
	return segment, nil
}

func (s *segmentService) ListSegments(ctx context.Context, teamId, uploadId uuid.UUID) ([]*entities.Segment, error) {
	if _, err := s.repo.FindUploadById(ctx, teamId, uploadId); err != nil {
		return nil, err
	}
	return s.repo.ListSegments(ctx, uploadId)
}

// PublishSegment promotes a segment to a clip. The segment itself is not
// touched, and publishing the same segment again creates another clip.
func (s *segmentService) PublishSegment(ctx context.Context, teamId, uploadId, segmentId uuid.UUID, publishedBy *uuid.UUID) (*entities.Clip, error) {
	upload, err := s.repo.FindUploadById(ctx, teamId, uploadId)
	if err != nil {
		return nil, err
	}
	if upload.Status != constant.UploadStatusReady {
		return nil, ErrUploadNotReady
	}
	segment, err := s.repo.FindSegmentById(ctx, upload.ID, segmentId)
	if err != nil {
		return nil, err
	}

	title := upload.Title
	if segment.Label != nil && *segment.Label != "" {
		title = *segment.Label
	}

	start := segment.StartSecond
	end := segment.EndSecond
	clip := &entities.Clip{
		ID:                uuid.New(),
		TeamID:            &upload.TeamID,
		GameID:            upload.GameID,
		UploadedById:      publishedBy,
		Title:             title,
		Notes:             segment.Notes,
		Status:            constant.ClipStatusPublished,
		StorageKey:        upload.StorageKey,
		ContentType:       upload.ContentType,
		UploadedAt:        time.Now().UTC(),
		SourceUploadID:    &upload.ID,
		SourceStartSecond: &start,
		SourceEndSecond:   &end,
	}
	if err := s.repo.CreateClip(ctx, clip); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("clip_id", clip.ID.String()).
		Str("segment_id", segment.ID.String()).
		Int("start", start).
		Int("end", end).
		Msg("segment published")
	return clip, nil
}
