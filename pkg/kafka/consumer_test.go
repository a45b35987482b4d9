package kafka

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages, then blocks until ctx is done.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    int32
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	atomic.AddInt32(&r.closed, 1)
	return nil
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func eventMessage(t *testing.T, eventType string) kafka.Message {
	t.Helper()
	event, err := NewEvent(context.Background(), eventType, "user-1", "user", "account", nil)
	require.NoError(t, err)
	data, err := event.Marshal()
	require.NoError(t, err)
	return kafka.Message{Topic: Topic("user", "synced"), Value: data}
}

func runConsumer(t *testing.T, c *Consumer, until func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, until, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, "user.synced")}}
	var handled int32
	c := newConsumer(r, ConsumerConfig{Topic: "t"}, func(ctx context.Context, e *Event) error {
		assert.Equal(t, "user.synced", e.EventType)
		atomic.AddInt32(&handled, 1)
		return nil
	}, testLogger())

	runConsumer(t, c, func() bool { return r.committedCount() == 1 })

	assert.Equal(t, int32(1), atomic.LoadInt32(&handled))
	assert.Equal(t, int32(1), atomic.LoadInt32(&r.closed))
}

func TestConsumer_SkipsPoisonAfterRetries(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{eventMessage(t, "user.synced")}}
	var attempts int32
	c := newConsumer(r, ConsumerConfig{Topic: "t"}, func(ctx context.Context, e *Event) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("always fails")
	}, testLogger())
	c.backoff = time.Millisecond

	runConsumer(t, c, func() bool { return r.committedCount() == 1 })

	assert.Equal(t, int32(maxHandlerRetries), atomic.LoadInt32(&attempts))
}

func TestConsumer_CommitsUndecodableMessage(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Value: []byte("not json")}}}
	c := newConsumer(r, ConsumerConfig{Topic: "t"}, func(ctx context.Context, e *Event) error {
		t.Fatal("handler must not run")
		return nil
	}, testLogger())

	runConsumer(t, c, func() bool { return r.committedCount() == 1 })
}
