package notifications

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/boardnotify/pkg/logger"
)

// Deliverer hands freshly stored notifications to whatever is waiting for
// them: the local waiter registry, a cross-instance relay, or both.
type Deliverer interface {
	// Deliver pushes one notification to its user's waiters.
	Deliver(ctx context.Context, n Notification) error

	// DeliverBatch pushes several notifications in order.
	DeliverBatch(ctx context.Context, ns []Notification) error
}

// MultiDeliverer fans a notification out to several deliverers.
type MultiDeliverer struct {
	deliverers []Deliverer
	logger     *slog.Logger
}

// MultiDelivererOption configures a MultiDeliverer.
type MultiDelivererOption func(*MultiDeliverer)

// WithMultiDelivererLogger sets the logger for the MultiDeliverer.
func WithMultiDelivererLogger(l *slog.Logger) MultiDelivererOption {
	return func(m *MultiDeliverer) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMultiDeliverer creates a deliverer that calls every non-nil deliverer in order.
func NewMultiDeliverer(deliverers []Deliverer, opts ...MultiDelivererOption) *MultiDeliverer {
	m := &MultiDeliverer{
		deliverers: make([]Deliverer, 0, len(deliverers)),
		logger:     slog.Default(),
	}
	for _, d := range deliverers {
		if d != nil {
			m.deliverers = append(m.deliverers, d)
		}
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Deliver sends n through all deliverers. Failures are logged and skipped.
func (m *MultiDeliverer) Deliver(ctx context.Context, n Notification) error {
	for i, d := range m.deliverers {
		if err := d.Deliver(ctx, n); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver notification",
				logger.NotificationID(n.ID),
				logger.UserID(n.UserID),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
		}
	}
	return nil
}

// DeliverBatch sends ns through all deliverers. Failures are logged and skipped.
func (m *MultiDeliverer) DeliverBatch(ctx context.Context, ns []Notification) error {
	for i, d := range m.deliverers {
		if err := d.DeliverBatch(ctx, ns); err != nil {
			m.logger.LogAttrs(ctx, slog.LevelError, "failed to deliver notification batch",
				logger.Count(len(ns)),
				slog.Int("deliverer_index", i),
				logger.Error(err),
			)
		}
	}
	return nil
}

// NoOpDeliverer drops everything. Useful when nobody long-polls.
type NoOpDeliverer struct{}

func (NoOpDeliverer) Deliver(context.Context, Notification) error { return nil }

func (NoOpDeliverer) DeliverBatch(context.Context, []Notification) error { return nil }
