package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka writes events to one topic, keyed so that events of the same hold
// land on the same partition.
type Kafka struct {
	writer messageWriter
	topic  string
	log    *zap.Logger
}

func NewKafka(brokers []string, topic string, log *zap.Logger) *Kafka {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafka(writer, topic, log)
}

func newKafka(writer messageWriter, topic string, log *zap.Logger) *Kafka {
	return &Kafka{
		writer: writer,
		topic:  topic,
		log:    log.With(zap.String("publisher", "kafka")),
	}
}

func (p *Kafka) Publish(ctx context.Context, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka write %s: %w", p.topic, err)
	}
	p.log.Debug("Event published", zap.String("topic", p.topic), zap.String("key", key))
	return nil
}

func (p *Kafka) Close() error {
	return p.writer.Close()
}
