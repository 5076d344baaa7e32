package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBrokerDeliversToAllSubscribers(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx := context.Background()
	a, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)
	c, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "events", map[string]string{"k": "v"}))

	for _, ch := range []<-chan []byte{a, c} {
		select {
		case payload := <-ch:
			var got map[string]string
			require.NoError(t, json.Unmarshal(payload, &got))
			assert.Equal(t, "v", got["k"])
		case <-time.After(time.Second):
			t.Fatal("subscriber never received message")
		}
	}
}

func TestMemoryBrokerIsolatesTopics(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx := context.Background()
	other, err := b.Subscribe(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "events", "hello"))

	select {
	case <-other:
		t.Fatal("message crossed topics")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBrokerContextCancelUnsubscribes(t *testing.T) {
	b := NewMemoryBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := b.Subscribe(ctx, "events")
	require.NoError(t, err)
	require.Equal(t, 1, b.SubscriberCount("events"))

	cancel()

	require.Eventually(t, func() bool {
		return b.SubscriberCount("events") == 0
	}, time.Second, 5*time.Millisecond)

	_, open := <-ch
	assert.False(t, open)
}

func TestMemoryBrokerPublishAfterClose(t *testing.T) {
	b := NewMemoryBroker()
	require.NoError(t, b.Close())

	assert.Error(t, b.Publish(context.Background(), "events", "x"))
	_, err := b.Subscribe(context.Background(), "events")
	assert.Error(t, err)
}
