package service

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"

	"filmroom/pkg/httprange"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStore is the slice of object storage the film services use. Get with
// a nil range returns the whole object.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Stat(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string, byteRange *httprange.ByteRange) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

type minioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) ObjectStore {
	return &minioStore{client: client, bucket: bucket}
}

func (s *minioStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *minioStore) Stat(ctx context.Context, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		var respErr minio.ErrorResponse
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return 0, ErrObjectNotFound
		}
		return 0, err
	}
	return info.Size, nil
}

func (s *minioStore) Get(ctx context.Context, key string, byteRange *httprange.ByteRange) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if byteRange != nil {
		if err := opts.SetRange(byteRange.Start, byteRange.End); err != nil {
			return nil, err
		}
	}
	return s.client.GetObject(ctx, s.bucket, key, opts)
}

func (s *minioStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
