package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/raseen-shahil/Med-App-sub000/config"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublishUsesEventTopic(t *testing.T) {
	w := &fakeWriter{}
	k := &Kafka{writer: w}

	err := k.Publish(context.Background(), TopicOrderPlaced, "ORD1", OrderPlaced{
		OrderID: "ORD1",
		Total:   decimal.RequireFromString("200"),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, TopicOrderPlaced, w.msgs[0].Topic)
	assert.Equal(t, []byte("ORD1"), w.msgs[0].Key)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "ORD1", got["orderId"])

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(_ context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg.ContentType, string(msg.Body)).Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestAMQPPublishRoutesByTopic(t *testing.T) {
	ch := new(mockChannel)
	ch.On("PublishWithContext", "medapp.events", TopicPasswordReset, "application/json",
		`{"email":"a@b.c","link":"https://reset"}`).Return(nil).Once()
	ch.On("Close").Return(nil).Once()

	a := &AMQP{ch: ch, exchange: "medapp.events"}
	require.NoError(t, a.Publish(context.Background(), TopicPasswordReset, "a@b.c", PasswordReset{Email: "a@b.c", Link: "https://reset"}))
	require.NoError(t, a.Close())
	ch.AssertExpectations(t)
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, string, string, any) error {
	f.calls++
	return errors.New("broker down")
}
func (f *failingPublisher) Close() error { return nil }

func TestEmitSwallowsErrors(t *testing.T) {
	p := &failingPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Emit(ctx, p, TopicOrderStatusChanged, "ORD1", OrderStatusChanged{OrderID: "ORD1"})
	assert.Equal(t, 1, p.calls)
}

func TestNewSelectsDriver(t *testing.T) {
	p, err := New(&config.Config{EventsDriver: "none"})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)

	p, err = New(&config.Config{EventsDriver: "kafka", KafkaBrokers: "localhost:9092"})
	require.NoError(t, err)
	assert.IsType(t, &Kafka{}, p)
	require.NoError(t, p.Close())

	_, err = New(&config.Config{EventsDriver: "sqs"})
	require.Error(t, err)
}
