package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"filmroom/pkg/httprange"
)

// StreamService serves raw media bytes out of object storage with HTTP range
// support, so browser video elements can seek.
type StreamService interface {
	Stream(w http.ResponseWriter, r *http.Request, key, contentType string) error
}

type streamService struct {
	store ObjectStore
}

func NewStreamService(store ObjectStore) StreamService {
	return &streamService{store: store}
}

func (s *streamService) Stream(w http.ResponseWriter, r *http.Request, key, contentType string) error {
	ctx := r.Context()

	size, err := s.store.Stat(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		http.Error(w, "film file not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat object %s: %w", key, err)
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	byteRange, err := httprange.Parse(r.Header.Get("Range"), size)
	if errors.Is(err, httprange.ErrUnsatisfiable) {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}
	// A malformed Range header falls back to serving the whole object.
	if err != nil && !errors.Is(err, httprange.ErrMalformed) {
		return err
	}

	object, err := s.store.Get(ctx, key, byteRange)
	if err != nil {
		return fmt.Errorf("get object %s: %w", key, err)
	}
	defer object.Close()

	if byteRange == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, object); err != nil {
			logCopyError(ctx, key, err)
		}
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", byteRange.Length()))
	w.Header().Set("Content-Range", byteRange.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, object, byteRange.Length()); err != nil {
		logCopyError(ctx, key, err)
	}
	return nil
}

// Clients abandon streams constantly while seeking; a failed copy is not a
// server fault worth surfacing.
func logCopyError(ctx context.Context, key string, err error) {
	zerolog.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("stream copy ended early")
}
