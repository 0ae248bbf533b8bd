package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filmroom/constant"
	"filmroom/entities"
)

var ErrNotFound = errors.New("record not found")

type FilmRepository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB

	CreateUpload(ctx context.Context, upload *entities.Upload) error
	ListUploads(ctx context.Context, teamId uuid.UUID) ([]*entities.Upload, error)
	FindUploadById(ctx context.Context, teamId, uploadId uuid.UUID) (*entities.Upload, error)
	FindUpload(ctx context.Context, uploadId uuid.UUID) (*entities.Upload, error)
	DeleteUpload(ctx context.Context, uploadId uuid.UUID) error
	UpdateUploadStatus(ctx context.Context, uploadId uuid.UUID, status constant.UploadStatus, durationSeconds *int) error

	CreateSegment(ctx context.Context, segment *entities.Segment) error
	CreateSegments(ctx context.Context, segments []*entities.Segment) error
	ListSegments(ctx context.Context, uploadId uuid.UUID) ([]*entities.Segment, error)
	FindSegmentById(ctx context.Context, uploadId, segmentId uuid.UUID) (*entities.Segment, error)
	CountSegments(ctx context.Context, uploadId uuid.UUID) (int64, error)

	CreateClip(ctx context.Context, clip *entities.Clip) error
	ListClips(ctx context.Context, teamId uuid.UUID) ([]*entities.Clip, error)
	FindClipById(ctx context.Context, teamId, clipId uuid.UUID) (*entities.Clip, error)
	DeleteClip(ctx context.Context, clipId uuid.UUID) error
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) FilmRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.GetDB().Transaction(func(tx *gorm.DB) error {
		return callback(ctx)
	}, opts...)
}

func (r *repo) CreateUpload(ctx context.Context, upload *entities.Upload) error {
	return r.GetDB().WithContext(ctx).Create(upload).Error
}

func (r *repo) ListUploads(ctx context.Context, teamId uuid.UUID) ([]*entities.Upload, error) {
	var uploads []*entities.Upload
	err := r.GetDB().WithContext(ctx).
		Where("team_id = ?", teamId).
		Order("uploaded_at DESC").
		Find(&uploads).Error
	if err != nil {
		return nil, err
	}
	return uploads, nil
}

func (r *repo) FindUploadById(ctx context.Context, teamId, uploadId uuid.UUID) (*entities.Upload, error) {
	upload := &entities.Upload{}
	err := r.GetDB().WithContext(ctx).
		First(upload, "id = ? AND team_id = ?", uploadId, teamId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return upload, nil
}

func (r *repo) FindUpload(ctx context.Context, uploadId uuid.UUID) (*entities.Upload, error) {
	upload := &entities.Upload{}
	err := r.GetDB().WithContext(ctx).First(upload, "id = ?", uploadId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return upload, nil
}

func (r *repo) DeleteUpload(ctx context.Context, uploadId uuid.UUID) error {
	// Segments go with the upload. Published clips are left alone: they are
	// independent artifacts once published.
	err := r.GetDB().WithContext(ctx).
		Where("upload_id = ?", uploadId).
		Delete(&entities.Segment{}).Error
	if err != nil {
		return err
	}
	return r.GetDB().WithContext(ctx).Delete(&entities.Upload{}, "id = ?", uploadId).Error
}

func (r *repo) UpdateUploadStatus(ctx context.Context, uploadId uuid.UUID, status constant.UploadStatus, durationSeconds *int) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if durationSeconds != nil {
		updates["duration_seconds"] = *durationSeconds
	}
	return r.GetDB().WithContext(ctx).
		Model(&entities.Upload{}).
		Where("id = ?", uploadId).
		Updates(updates).Error
}

func (r *repo) CreateSegment(ctx context.Context, segment *entities.Segment) error {
	return r.GetDB().WithContext(ctx).Create(segment).Error
}

func (r *repo) CreateSegments(ctx context.Context, segments []*entities.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	return r.GetDB().WithContext(ctx).Create(segments).Error
}

func (r *repo) ListSegments(ctx context.Context, uploadId uuid.UUID) ([]*entities.Segment, error) {
	var segments []*entities.Segment
	err := r.GetDB().WithContext(ctx).
		Where("upload_id = ?", uploadId).
		Order("start_second ASC").
		Find(&segments).Error
	if err != nil {
		return nil, err
	}
	return segments, nil
}

func (r *repo) FindSegmentById(ctx context.Context, uploadId, segmentId uuid.UUID) (*entities.Segment, error) {
	segment := &entities.Segment{}
	err := r.GetDB().WithContext(ctx).
		First(segment, "id = ? AND upload_id = ?", segmentId, uploadId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return segment, nil
}

func (r *repo) CountSegments(ctx context.Context, uploadId uuid.UUID) (int64, error) {
	var count int64
	err := r.GetDB().WithContext(ctx).
		Model(&entities.Segment{}).
		Where("upload_id = ?", uploadId).
		Count(&count).Error
	return count, err
}

func (r *repo) CreateClip(ctx context.Context, clip *entities.Clip) error {
	return r.GetDB().WithContext(ctx).Create(clip).Error
}

func (r *repo) ListClips(ctx context.Context, teamId uuid.UUID) ([]*entities.Clip, error) {
	var clips []*entities.Clip
	err := r.GetDB().WithContext(ctx).
		Where("team_id = ?", teamId).
		Order("uploaded_at DESC").
		Find(&clips).Error
	if err != nil {
		return nil, err
	}
	return clips, nil
}

func (r *repo) FindClipById(ctx context.Context, teamId, clipId uuid.UUID) (*entities.Clip, error) {
	clip := &entities.Clip{}
	err := r.GetDB().WithContext(ctx).
		First(clip, "id = ? AND team_id = ?", clipId, teamId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return clip, nil
}

func (r *repo) DeleteClip(ctx context.Context, clipId uuid.UUID) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.Clip{}, "id = ?", clipId).Error
}
