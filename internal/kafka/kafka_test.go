package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"kafila-ticketing/internal/config"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func testTopics() config.TopicConfig {
	return config.TopicConfig{
		OrderCreated:   "t.created",
		OrderPaid:      "t.paid",
		OrderRefunded:  "t.refunded",
		OrderCheckedIn: "t.checked_in",
	}
}

func TestPublishRoutesByEventType(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{Writer: w, Topics: testTopics(), Logger: logger.NewNop()}
	ctx := context.Background()

	cases := map[string]string{
		models.EventOrderCreated:   "t.created",
		models.EventOrderPaid:      "t.paid",
		models.EventOrderRefunded:  "t.refunded",
		models.EventOrderCheckedIn: "t.checked_in",
	}
	for evType, topic := range cases {
		w.msgs = nil
		require.NoError(t, p.Publish(ctx, models.LifecycleEvent{Type: evType, OrderID: "order-1", Timestamp: time.Now()}))
		require.Len(t, w.msgs, 1)
		assert.Equal(t, topic, w.msgs[0].Topic)
		assert.Equal(t, []byte("order-1"), w.msgs[0].Key)

		var decoded models.LifecycleEvent
		require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
		assert.Equal(t, evType, decoded.Type)
	}
}

func TestPublishRejectsUnknownType(t *testing.T) {
	p := &Producer{Writer: &fakeWriter{}, Topics: testTopics(), Logger: logger.NewNop()}
	assert.Error(t, p.Publish(context.Background(), models.LifecycleEvent{Type: "order.lost"}))
}

func TestPublishWrapsWriterError(t *testing.T) {
	p := &Producer{Writer: &fakeWriter{err: errors.New("broker down")}, Topics: testTopics(), Logger: logger.NewNop()}
	err := p.Publish(context.Background(), models.LifecycleEvent{Type: models.EventOrderPaid, OrderID: "o"})
	assert.ErrorContains(t, err, "broker down")
}

type fakeReader struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		if f.err != nil {
			return kafka.Message{}, f.err
		}
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) Close() error { return nil }

func TestConsumerDecodesAndSkipsGarbage(t *testing.T) {
	paid, _ := json.Marshal(models.LifecycleEvent{Type: models.EventOrderPaid, OrderID: "o-1"})
	reader := &fakeReader{msgs: []kafka.Message{
		{Topic: "t.paid", Value: paid},
		{Topic: "t.paid", Value: []byte("{not json")},
	}, err: io.EOF}

	c := NewConsumerWith(reader, logger.NewNop())

	var got []models.LifecycleEvent
	err := c.Start(context.Background(), func(topic string, ev models.LifecycleEvent) {
		assert.Equal(t, "t.paid", topic)
		got = append(got, ev)
	})
	assert.ErrorIs(t, err, io.EOF)
	require.Len(t, got, 1)
	assert.Equal(t, "o-1", got[0].OrderID)
}

func TestConsumerStopsOnCancel(t *testing.T) {
	c := NewConsumerWith(&fakeReader{}, logger.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.NoError(t, c.Start(ctx, func(string, models.LifecycleEvent) {}))
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), models.LifecycleEvent{Type: "anything"}))
	assert.NoError(t, p.Close())
}
