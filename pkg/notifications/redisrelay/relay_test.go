package redisrelay

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/boardnotify/pkg/notifications"
)

type recordingNotifier struct {
	mu  sync.Mutex
	got []notifications.Notification
}

func (r *recordingNotifier) Notify(_ int64, n notifications.Notification) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return 1
}

func (r *recordingNotifier) received() []notifications.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Notification(nil), r.got...)
}

func TestNew(t *testing.T) {
	t.Parallel()

	r, err := New(nil, &recordingNotifier{}, WithOrigin("node-a"))
	require.NoError(t, err)
	assert.Equal(t, "node-a", r.Origin())
	assert.Equal(t, DefaultChannel, r.channel)

	r, err = New(nil, &recordingNotifier{})
	require.NoError(t, err)
	assert.NotEmpty(t, r.Origin())

	_, err = New(nil, &recordingNotifier{}, WithChannel(""))
	assert.ErrorIs(t, err, ErrEmptyChannel)
}

func TestRelay_Handle(t *testing.T) {
	t.Parallel()

	n := notifications.Notification{ID: 5, UserID: 42, BoardID: 1, NodeID: 2, Message: "hi"}

	encode := func(origin string) string {
		body, err := json.Marshal(envelope{Origin: origin, Notification: n})
		require.NoError(t, err)
		return string(body)
	}

	t.Run("forwards foreign messages", func(t *testing.T) {
		sink := &recordingNotifier{}
		r, err := New(nil, sink, WithOrigin("node-a"))
		require.NoError(t, err)

		r.handle(context.Background(), encode("node-b"))
		got := sink.received()
		require.Len(t, got, 1)
		assert.Equal(t, n.ID, got[0].ID)
		assert.Equal(t, n.Message, got[0].Message)
	})

	t.Run("skips own messages", func(t *testing.T) {
		sink := &recordingNotifier{}
		r, err := New(nil, sink, WithOrigin("node-a"))
		require.NoError(t, err)

		r.handle(context.Background(), encode("node-a"))
		assert.Empty(t, sink.received())
	})

	t.Run("drops malformed messages", func(t *testing.T) {
		sink := &recordingNotifier{}
		r, err := New(nil, sink, WithOrigin("node-a"))
		require.NoError(t, err)

		r.handle(context.Background(), "not json")
		r.handle(context.Background(), `{"origin":"node-b","notification":{"id":0,"user_id":42}}`)
		r.handle(context.Background(), `{"notification":{"id":1,"user_id":42}}`)
		assert.Empty(t, sink.received())
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	r, err := New(nil, &recordingNotifier{}, WithOrigin("node-a"))
	require.NoError(t, err)

	body, err := r.encode(notifications.Notification{ID: 9, UserID: 3, Message: "x"})
	require.NoError(t, err)

	env, err := decode(string(body))
	require.NoError(t, err)
	assert.Equal(t, "node-a", env.Origin)
	assert.Equal(t, int64(9), env.Notification.ID)

	_, err = decode("{")
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestRelay_Integration(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	channel := "boardnotify:test:" + time.Now().Format("150405.000000")

	registry := notifications.NewRegistry()
	defer registry.Close()

	receiver, err := New(client, registry, WithChannel(channel), WithOrigin("receiver"))
	require.NoError(t, err)
	sender, err := New(client, &recordingNotifier{}, WithChannel(channel), WithOrigin("sender"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- receiver.Run(ctx) }()

	_, w, err := registry.CheckAndRegister(ctx, 42, 0, time.Now().Add(5*time.Second), nil)
	require.NoError(t, err)
	require.NotNil(t, w)

	// Publish until the subscriber is up; the waiter only resolves once.
	n := notifications.Notification{ID: 1, UserID: 42, Message: "remote"}
	require.Eventually(t, func() bool {
		_ = sender.Deliver(ctx, n)
		return w.Resolved()
	}, 3*time.Second, 50*time.Millisecond)

	res := <-w.Done()
	assert.Equal(t, notifications.OutcomeDelivered, res.Outcome)
	require.Len(t, res.Notifications, 1)
	assert.Equal(t, "remote", res.Notifications[0].Message)

	cancel()
	assert.NoError(t, <-done)
}
