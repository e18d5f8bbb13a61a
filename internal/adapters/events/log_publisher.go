package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/habit-hero/internal/core/domain"
	"github.com/comitanigiacomo/habit-hero/internal/logger"
)

var _ domain.EventPublisher = (*LogPublisher)(nil)

// LogPublisher writes events to the log. Used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: logger.OrNop(log).Named("events")}
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.log.Info("event", zap.String("routing_key", routingKey), zap.ByteString("payload", body))
	return nil
}
