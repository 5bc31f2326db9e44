package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialFunc opens a channel with the queue already declared.
type dialFunc func() (amqpChannel, func() error, error)

// RabbitMQ publishes persistent messages to one durable queue through the
// default exchange. A broken channel is redialed on the next publish.
type RabbitMQ struct {
	mu        sync.Mutex
	dial      dialFunc
	ch        amqpChannel
	closeConn func() error
	queue     string
	log       *zap.Logger
}

func NewRabbitMQ(url, queue string, log *zap.Logger) (*RabbitMQ, error) {
	dial := func() (amqpChannel, func() error, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
		}
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("rabbitmq declare %s: %w", queue, err)
		}
		return ch, conn.Close, nil
	}

	p := newRabbitMQ(dial, queue, log)
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func newRabbitMQ(dial dialFunc, queue string, log *zap.Logger) *RabbitMQ {
	return &RabbitMQ{
		dial:  dial,
		queue: queue,
		log:   log.With(zap.String("publisher", "rabbitmq")),
	}
}

func (p *RabbitMQ) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectLocked()
}

func (p *RabbitMQ) connectLocked() error {
	ch, closeConn, err := p.dial()
	if err != nil {
		return err
	}
	p.ch = ch
	p.closeConn = closeConn
	return nil
}

func (p *RabbitMQ) Publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    key,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.connectLocked(); err != nil {
			return err
		}
	}
	if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.log.Warn("Publish failed, dropping channel", zap.Error(err), zap.String("queue", p.queue))
		p.resetLocked()
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

func (p *RabbitMQ) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.closeConn != nil {
		_ = p.closeConn()
	}
	p.ch = nil
	p.closeConn = nil
}

func (p *RabbitMQ) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}
