package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"filmroom/config"
)

// Publisher sends JSON messages to a single exchange/routing-key pair.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
}

type publisher struct {
	conn       *amqp.Connection
	cfg        *config.RabbitMQ
	exchange   string
	routingKey string
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ, exchange, routingKey string) Publisher {
	return &publisher{
		conn:       conn,
		cfg:        cfg,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

func (p *publisher) Publish(ctx context.Context, payload any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.exchange, p.cfg.Kind, true, false, false, false, nil); err != nil {
		zerolog.Ctx(ctx).Error().Str("exchange", p.exchange).Msg("failed to declare exchange")
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
