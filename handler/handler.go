package handler

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"filmroom/dto"
	"filmroom/service"
)

type ServiceDependencies struct {
	FilmService    service.FilmService
	SegmentService service.SegmentService
	ClipService    service.ClipService
	StreamService  service.StreamService
}

// FilmStatusHandler consumes pipeline reports and applies them to uploads.
func FilmStatusHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var report dto.FilmStatusMessage
	if err := json.Unmarshal(msg.Body, &report); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal film status message")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("upload_id", report.UploadId.String()).
		Str("status", report.Status).
		Msg("received film status report")

	return deps.FilmService.ApplyStatusReport(ctx, report)
}
