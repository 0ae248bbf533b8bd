// Package lifecycle tracks an upload's processing status by polling the film
// api until a terminal state is reached.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"filmroom/constant"
	"filmroom/entities"
)

const DefaultInterval = 5 * time.Second

// UploadAPI is the slice of the film client the poller needs.
type UploadAPI interface {
	GetUpload(ctx context.Context, teamId, uploadId uuid.UUID) (*entities.Upload, error)
	ListSegments(ctx context.Context, teamId, uploadId uuid.UUID) ([]*entities.Segment, error)
}

// Snapshot is one observation of an upload. Segments is populated only once
// the upload has been seen ready.
type Snapshot struct {
	Upload   *entities.Upload
	Segments []*entities.Segment
}

type Poller struct {
	api      UploadAPI
	interval time.Duration
}

func NewPoller(api UploadAPI, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{api: api, interval: interval}
}

// Handle owns one polling loop. Cancel stops it; nothing is emitted after
// cancellation. Updates is closed when the loop ends, either because a
// terminal status was observed or because the handle was cancelled.
type Handle struct {
	cancel  context.CancelFunc
	updates chan Snapshot
}

func (h *Handle) Updates() <-chan Snapshot {
	return h.updates
}

func (h *Handle) Cancel() {
	h.cancel()
}

// Start fetches the upload once immediately, then on a fixed interval until
// the status is terminal. There is exactly one segment-list fetch, fired on
// the edge into ready. Transient fetch failures are logged and the loop
// keeps going.
func (p *Poller) Start(ctx context.Context, teamId, uploadId uuid.UUID) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel:  cancel,
		updates: make(chan Snapshot, 1),
	}

	go p.run(ctx, h, teamId, uploadId)
	return h
}

func (p *Poller) run(ctx context.Context, h *Handle, teamId, uploadId uuid.UUID) {
	defer close(h.updates)

	var prev constant.UploadStatus

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		upload, err := p.api.GetUpload(ctx, teamId, uploadId)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zerolog.Ctx(ctx).Warn().Err(err).Str("upload_id", uploadId.String()).Msg("status poll failed")
			timer.Reset(p.interval)
			continue
		}

		snapshot := Snapshot{Upload: upload}

		if upload.Status == constant.UploadStatusReady && prev != constant.UploadStatusReady {
			segments, err := p.api.ListSegments(ctx, teamId, uploadId)
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("upload_id", uploadId.String()).Msg("segment fetch after ready failed")
			} else {
				snapshot.Segments = segments
			}
		}
		prev = upload.Status

		select {
		case h.updates <- snapshot:
		case <-ctx.Done():
			return
		}

		if upload.Status.Terminal() {
			return
		}
		timer.Reset(p.interval)
	}
}
