package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"cinema-reservation/pkg/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type event struct {
	Type   string `json:"type"`
	HoldID string `json:"holdId"`
}

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestNew_SelectsDriver(t *testing.T) {
	p, err := New(utils.EventsConfig{Driver: utils.EventsDriverNone}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)

	p, err = New(utils.EventsConfig{Driver: utils.EventsDriverKafka, KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Kafka{}, p)
	assert.NoError(t, p.Close())

	_, err = New(utils.EventsConfig{Driver: "nats"}, zap.NewNop())
	assert.Error(t, err)
}

func TestRabbitMQ_PublishesPersistentJSON(t *testing.T) {
	ch := &mockChannel{}
	ch.On("PublishWithContext", "", "booking.events", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var e event
		return msg.DeliveryMode == amqp.Persistent &&
			msg.ContentType == "application/json" &&
			msg.MessageId == "hold-1" &&
			json.Unmarshal(msg.Body, &e) == nil && e.Type == "hold.created"
	})).Return(nil).Once()

	dials := 0
	p := newRabbitMQ(func() (amqpChannel, func() error, error) {
		dials++
		return ch, func() error { return nil }, nil
	}, "booking.events", zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), "hold-1", event{Type: "hold.created", HoldID: "hold-1"}))

	assert.Equal(t, 1, dials)
	ch.AssertExpectations(t)
}

func TestRabbitMQ_RedialsAfterFailure(t *testing.T) {
	broken := &mockChannel{}
	broken.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything).Return(amqp.ErrClosed).Once()
	broken.On("Close").Return(nil).Once()
	healthy := &mockChannel{}
	healthy.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	channels := []amqpChannel{broken, healthy}
	p := newRabbitMQ(func() (amqpChannel, func() error, error) {
		ch := channels[0]
		channels = channels[1:]
		return ch, func() error { return nil }, nil
	}, "q", zap.NewNop())
	require.NoError(t, p.connect())

	err := p.Publish(context.Background(), "k", event{})
	assert.ErrorIs(t, err, amqp.ErrClosed)

	assert.NoError(t, p.Publish(context.Background(), "k", event{}))
	broken.AssertExpectations(t)
	healthy.AssertExpectations(t)
}

func TestRabbitMQ_DialFailure(t *testing.T) {
	p := newRabbitMQ(func() (amqpChannel, func() error, error) {
		return nil, nil, errors.New("connection refused")
	}, "q", zap.NewNop())

	assert.ErrorContains(t, p.Publish(context.Background(), "k", event{}), "connection refused")
}

func TestKafka_PublishKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := newKafka(w, "booking.events", zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), "hold-9", event{Type: "hold.expired", HoldID: "hold-9"}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("hold-9"), w.msgs[0].Key)
	assert.JSONEq(t, `{"type":"hold.expired","holdId":"hold-9"}`, string(w.msgs[0].Value))
}

func TestKafka_WriteError(t *testing.T) {
	p := newKafka(&fakeWriter{err: errors.New("leader not available")}, "booking.events", zap.NewNop())

	err := p.Publish(context.Background(), "k", event{})

	assert.ErrorContains(t, err, "kafka write booking.events")
}
