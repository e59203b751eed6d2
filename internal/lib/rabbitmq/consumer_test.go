package rabbitmq

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openChannel(ctx context.Context, t *testing.T) *amqp.Channel {
	t.Helper()
	conn, err := Connect(ctx, brokerURI(ctx, t), 3, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}

func TestConsumerMessage_HandleMessages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ch := openChannel(ctx, t)

	queueName := "consumer-test"
	_, err := ch.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	// Синхронизация через WaitGroup
	var wg sync.WaitGroup
	wg.Add(2)

	received := make([]string, 0)
	var mu sync.Mutex

	handler := func(_ context.Context, body []byte) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, string(body))
		wg.Done()
		return nil
	}

	err = ConsumerMessage(ctx, newNoopLogger(), ch, queueName, handler)
	require.NoError(t, err)

	for _, msg := range []string{"hello", "world"} {
		err := ch.Publish("", queueName, false, false, amqp.Publishing{
			ContentType: "text/plain",
			Body:        []byte(msg),
		})
		require.NoError(t, err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Timeout waiting for messages to be processed")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"hello", "world"}, received)
}

func TestConsumerMessage_HandlerErrorTriggersRedelivery(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ch := openChannel(ctx, t)

	queueName := "nack-test"
	_, err := ch.QueueDeclare(queueName, false, false, false, false, nil)
	require.NoError(t, err)

	// Первая попытка падает, повторная доставка проходит
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	handler := func(_ context.Context, _ []byte) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return fmt.Errorf("fail")
		}
		close(done)
		return nil
	}

	err = ConsumerMessage(ctx, newNoopLogger(), ch, queueName, handler)
	require.NoError(t, err)

	err = ch.Publish("", queueName, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        []byte("bad"),
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Did not receive requeued message after Nack")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestConsumerMessage_RejectGoesToDeadLetter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := Connect(ctx, brokerURI(ctx, t), 3, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	queues := []QueueConfig{{QueueName: "reject-test", RoutingKey: "reject_test", DeadLetterQueue: "reject-test.dead"}}
	ch, err := SetupChannel(conn, queues)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	calls := make(chan struct{}, 4)
	handler := func(_ context.Context, _ []byte) error {
		calls <- struct{}{}
		return fmt.Errorf("bad payload: %w", ErrReject)
	}
	require.NoError(t, ConsumerMessage(ctx, newNoopLogger(), ch, "reject-test", handler))
	require.NoError(t, NewPublisher(ch).Publish("reject_test", map[string]string{"mode": "???"}))

	dead, err := ch.Consume("reject-test.dead", "dead-reader", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-dead:
		assert.JSONEq(t, `{"mode":"???"}`, string(d.Body))
	case <-time.After(10 * time.Second):
		t.Fatal("rejected message did not reach the dead letter queue")
	}
	assert.Len(t, calls, 1, "rejected message must not be redelivered")
}
