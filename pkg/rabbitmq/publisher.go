package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"course-api/config"
	"course-api/dto"
)

// Publisher broadcasts invalidated cache keys to every running instance.
type Publisher interface {
	PublishInvalidation(ctx context.Context, keys ...string) error
}

type publisher struct {
	conn *amqp.Connection
	cfg  *config.RabbitMQ
}

func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ) Publisher {
	return &publisher{conn: conn, cfg: cfg}
}

func (p *publisher) PublishInvalidation(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	exchange := p.cfg.ExchangeName
	if exchange == "" {
		exchange = exchangeName
	}

	err = ch.ExchangeDeclare(exchange, p.cfg.Kind, true, false, false, false, nil)
	if err != nil {
		zerolog.Ctx(ctx).Error().Str("exchange", exchange).Msg("failed to declare exchange")
		return err
	}

	body, err := json.Marshal(dto.InvalidationMessage{Keys: keys})
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

// NoopPublisher stands in when the broker is unreachable; single-instance
// deployments lose nothing since the local cache is invalidated directly.
type NoopPublisher struct{}

func (NoopPublisher) PublishInvalidation(ctx context.Context, keys ...string) error {
	return nil
}
