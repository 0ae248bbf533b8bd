package service

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"filmroom/constant"
	"filmroom/entities"
	"filmroom/pkg/httprange"
	"filmroom/repository"
)

// fakeRepo is an in-memory FilmRepository for service tests.
type fakeRepo struct {
	mu       sync.Mutex
	uploads  map[uuid.UUID]*entities.Upload
	segments map[uuid.UUID]*entities.Segment
	clips    map[uuid.UUID]*entities.Clip

	createSegmentsCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		uploads:  make(map[uuid.UUID]*entities.Upload),
		segments: make(map[uuid.UUID]*entities.Segment),
		clips:    make(map[uuid.UUID]*entities.Clip),
	}
}

func (f *fakeRepo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return callback(ctx)
}

func (f *fakeRepo) GetDB() *gorm.DB { return nil }

func (f *fakeRepo) CreateUpload(ctx context.Context, upload *entities.Upload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *upload
	f.uploads[upload.ID] = &cp
	return nil
}

func (f *fakeRepo) ListUploads(ctx context.Context, teamId uuid.UUID) ([]*entities.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Upload
	for _, u := range f.uploads {
		if u.TeamID == teamId {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (f *fakeRepo) FindUploadById(ctx context.Context, teamId, uploadId uuid.UUID) (*entities.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.uploads[uploadId]
	if !ok || u.TeamID != teamId {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) FindUpload(ctx context.Context, uploadId uuid.UUID) (*entities.Upload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.uploads[uploadId]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) DeleteUpload(ctx context.Context, uploadId uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploads, uploadId)
	for id, s := range f.segments {
		if s.UploadID == uploadId {
			delete(f.segments, id)
		}
	}
	return nil
}

func (f *fakeRepo) UpdateUploadStatus(ctx context.Context, uploadId uuid.UUID, status constant.UploadStatus, durationSeconds *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.uploads[uploadId]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	if durationSeconds != nil {
		d := *durationSeconds
		u.DurationSeconds = &d
	}
	return nil
}

func (f *fakeRepo) CreateSegment(ctx context.Context, segment *entities.Segment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *segment
	f.segments[segment.ID] = &cp
	return nil
}

func (f *fakeRepo) CreateSegments(ctx context.Context, segments []*entities.Segment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createSegmentsCalls++
	for _, s := range segments {
		cp := *s
		f.segments[s.ID] = &cp
	}
	return nil
}

func (f *fakeRepo) ListSegments(ctx context.Context, uploadId uuid.UUID) ([]*entities.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Segment
	for _, s := range f.segments {
		if s.UploadID == uploadId {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartSecond < out[j].StartSecond })
	return out, nil
}

func (f *fakeRepo) FindSegmentById(ctx context.Context, uploadId, segmentId uuid.UUID) (*entities.Segment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.segments[segmentId]
	if !ok || s.UploadID != uploadId {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) CountSegments(ctx context.Context, uploadId uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.segments {
		if s.UploadID == uploadId {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CreateClip(ctx context.Context, clip *entities.Clip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *clip
	f.clips[clip.ID] = &cp
	return nil
}

func (f *fakeRepo) ListClips(ctx context.Context, teamId uuid.UUID) ([]*entities.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Clip
	for _, c := range f.clips {
		if c.TeamID != nil && *c.TeamID == teamId {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (f *fakeRepo) FindClipById(ctx context.Context, teamId, clipId uuid.UUID) (*entities.Clip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.clips[clipId]
	if !ok || c.TeamID == nil || *c.TeamID != teamId {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) DeleteClip(ctx context.Context, clipId uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.clips, clipId)
	return nil
}

// fakeStore holds object bytes in memory.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) Stat(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return 0, ErrObjectNotFound
	}
	return int64(len(data)), nil
}

func (f *fakeStore) Get(ctx context.Context, key string, byteRange *httprange.ByteRange) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	if byteRange != nil {
		data = data[byteRange.Start : byteRange.End+1]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// fakePublisher captures published payloads, optionally failing.
type fakePublisher struct {
	mu       sync.Mutex
	payloads []any
	err      error
}

func (f *fakePublisher) Publish(ctx context.Context, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func ptr[T any](v T) *T { return &v }
