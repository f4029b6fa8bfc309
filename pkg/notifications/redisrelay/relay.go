// Package redisrelay shares notification wake-ups between service
// instances over Redis pub/sub. Each instance keeps its own in-memory
// waiter registry; the relay replays notifications created elsewhere into it.
package redisrelay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/boardnotify/pkg/logger"
	"github.com/dmitrymomot/boardnotify/pkg/notifications"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "boardnotify:notifications"

var (
	ErrEmptyChannel   = errors.New("redisrelay: empty channel name")
	ErrInvalidMessage = errors.New("redisrelay: invalid relay message")
	ErrSubscribe      = errors.New("redisrelay: failed to subscribe")
)

// Config is read from RELAY_* environment variables.
type Config struct {
	Channel string `env:"RELAY_CHANNEL" envDefault:"boardnotify:notifications"`
}

// Notifier receives notifications that arrived from other instances.
// *notifications.Registry implements it.
type Notifier interface {
	Notify(userID int64, n notifications.Notification) int
}

// envelope is the message published on the channel.
type envelope struct {
	Origin       string                     `json:"origin"`
	Notification notifications.Notification `json:"notification"`
}

// Relay publishes local notifications and forwards foreign ones to a Notifier.
// It implements notifications.Deliverer.
type Relay struct {
	client  redis.UniversalClient
	sink    Notifier
	channel string
	origin  string
	logger  *slog.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithLogger sets the logger for the Relay.
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithChannel overrides DefaultChannel.
func WithChannel(channel string) Option {
	return func(r *Relay) {
		r.channel = channel
	}
}

// WithOrigin sets the instance id stamped on published messages.
// A random UUID is used by default.
func WithOrigin(origin string) Option {
	return func(r *Relay) {
		if origin != "" {
			r.origin = origin
		}
	}
}

// New creates a Relay. Start Run in its own goroutine to receive messages.
func New(client redis.UniversalClient, sink Notifier, opts ...Option) (*Relay, error) {
	r := &Relay{
		client:  client,
		sink:    sink,
		channel: DefaultChannel,
		origin:  uuid.New().String(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.channel == "" {
		return nil, ErrEmptyChannel
	}
	return r, nil
}

// Origin returns the id this instance stamps on its messages.
func (r *Relay) Origin() string {
	return r.origin
}

// Deliver publishes n for the other instances.
func (r *Relay) Deliver(ctx context.Context, n notifications.Notification) error {
	body, err := r.encode(n)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, body).Err(); err != nil {
		return fmt.Errorf("redisrelay: publish notification %d: %w", n.ID, err)
	}
	return nil
}

// DeliverBatch publishes ns in order within one pipeline.
func (r *Relay) DeliverBatch(ctx context.Context, ns []notifications.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, n := range ns {
			body, err := r.encode(n)
			if err != nil {
				return err
			}
			p.Publish(ctx, r.channel, body)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisrelay: publish batch of %d: %w", len(ns), err)
	}
	return nil
}

// Run subscribes to the channel and forwards messages from other instances
// until ctx is done. It returns nil on cancellation.
func (r *Relay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	// Wait for the subscription confirmation before reading messages.
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Join(ErrSubscribe, err)
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "notification relay subscribed",
		logger.Component("redisrelay"),
		slog.String("channel", r.channel),
		slog.String("origin", r.origin),
	)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(ctx, msg.Payload)
		}
	}
}

// handle decodes one message and wakes local waiters unless it was
// published by this instance, whose waiters were already woken locally.
func (r *Relay) handle(ctx context.Context, payload string) {
	env, err := decode(payload)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "dropping relay message",
			logger.Component("redisrelay"),
			logger.Error(err),
		)
		return
	}
	if env.Origin == r.origin {
		return
	}

	woken := r.sink.Notify(env.Notification.UserID, env.Notification)
	r.logger.LogAttrs(ctx, slog.LevelDebug, "relayed notification",
		logger.Component("redisrelay"),
		logger.NotificationID(env.Notification.ID),
		logger.UserID(env.Notification.UserID),
		logger.Count(woken),
	)
}

func (r *Relay) encode(n notifications.Notification) ([]byte, error) {
	body, err := json.Marshal(envelope{Origin: r.origin, Notification: n})
	if err != nil {
		return nil, fmt.Errorf("redisrelay: encode notification %d: %w", n.ID, err)
	}
	return body, nil
}

func decode(payload string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return envelope{}, errors.Join(ErrInvalidMessage, err)
	}
	if env.Origin == "" || env.Notification.ID <= 0 || env.Notification.UserID <= 0 {
		return envelope{}, ErrInvalidMessage
	}
	return env, nil
}
