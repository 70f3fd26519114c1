package handler

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"course-api/dto"
	"course-api/service"
)

type InvalidationDeps struct {
	Cache service.ListCache
}

// InvalidationHandler drops the cache keys another instance declared stale.
func InvalidationHandler(ctx context.Context, msg amqp.Delivery, deps InvalidationDeps) error {
	var m dto.InvalidationMessage
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		return err
	}

	if len(m.Keys) == 0 {
		return nil
	}

	zerolog.Ctx(ctx).Debug().Strs("keys", m.Keys).Msg("received cache invalidation")
	return deps.Cache.Invalidate(ctx, m.Keys...)
}
