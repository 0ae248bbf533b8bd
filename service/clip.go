package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"filmroom/entities"
	"filmroom/repository"
)

var ErrNotClipOwner = errors.New("clip belongs to another user")

type ClipService interface {
	ListClips(ctx context.Context, teamId uuid.UUID) ([]*entities.Clip, error)
	GetClip(ctx context.Context, teamId, clipId uuid.UUID) (*entities.Clip, error)
	DeleteClip(ctx context.Context, teamId, clipId uuid.UUID, requestedBy *uuid.UUID) error
}

type clipService struct {
	repo repository.FilmRepository
}

func NewClipService(repo repository.FilmRepository) ClipService {
	return &clipService{repo: repo}
}

func (s *clipService) ListClips(ctx context.Context, teamId uuid.UUID) ([]*entities.Clip, error) {
	return s.repo.ListClips(ctx, teamId)
}

func (s *clipService) GetClip(ctx context.Context, teamId, clipId uuid.UUID) (*entities.Clip, error) {
	return s.repo.FindClipById(ctx, teamId, clipId)
}

// DeleteClip removes a clip row. Only the uploader may delete a clip that has
// a recorded owner. The clip's bytes are left alone when they belong to a
// source upload.
func (s *clipService) DeleteClip(ctx context.Context, teamId, clipId uuid.UUID, requestedBy *uuid.UUID) error {
	clip, err := s.repo.FindClipById(ctx, teamId, clipId)
	if err != nil {
		return err
	}
	if clip.UploadedById != nil {
		if requestedBy == nil || *requestedBy != *clip.UploadedById {
			return ErrNotClipOwner
		}
	}
	return s.repo.DeleteClip(ctx, clip.ID)
}
