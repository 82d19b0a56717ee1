package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	require.Error(t, err)

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("zstd"))
	require.NoError(t, err)
	assert.Equal(t, "zstd", p.comp)
}

func TestProducer_PublishEncodesValues(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "gzip")
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Publish(context.Background(), "t1", []byte("k"), map[string]string{"ticker": "AAPL"}))
	require.NoError(t, p.PublishBatch(context.Background(), "t1", []Message{{Value: "raw"}, {Value: []byte("b")}}))
	require.NoError(t, p.PublishBatch(context.Background(), "t1", nil))

	require.Len(t, w.msgs, 3)
	assert.JSONEq(t, `{"ticker":"AAPL"}`, string(w.msgs[0].Value))
	assert.Equal(t, "k", string(w.msgs[0].Key))
	assert.Equal(t, "t1", w.msgs[0].Topic)
	assert.Equal(t, fixed, w.msgs[0].Time)
	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Equal(t, "b", string(w.msgs[2].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishError(t *testing.T) {
	p := newProducer(&fakeWriter{err: errors.New("broker down")}, "gzip")
	err := p.Publish(context.Background(), "t1", nil, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
