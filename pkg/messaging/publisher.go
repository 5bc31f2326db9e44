package messaging

import (
	"context"
	"fmt"

	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

// Publisher delivers JSON encoded events keyed by aggregate id.
type Publisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

// New builds the publisher selected by config.Driver.
func New(config utils.EventsConfig, log *zap.Logger) (Publisher, error) {
	switch config.Driver {
	case "", utils.EventsDriverNone:
		return Noop{}, nil
	case utils.EventsDriverRabbitMQ:
		return NewRabbitMQ(config.RabbitMQURL, config.RabbitMQQueue, log)
	case utils.EventsDriverKafka:
		return NewKafka(config.KafkaBrokers, config.KafkaTopic, log), nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", config.Driver)
	}
}
