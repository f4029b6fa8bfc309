package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/boardnotify/pkg/logger"
)

// Poller answers long-poll requests: it returns unseen notifications right
// away when there are any, otherwise it parks the caller on a registry
// waiter until a notification, the deadline, or a disconnect.
type Poller struct {
	storage   Storage
	directory UserDirectory
	registry  *Registry
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPollerLogger sets the logger for the Poller.
func WithPollerLogger(l *slog.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoller creates a long-poll coordinator. A nil directory accepts every user.
func NewPoller(storage Storage, directory UserDirectory, registry *Registry, cfg Config, opts ...PollerOption) *Poller {
	p := &Poller{
		storage:   storage,
		directory: directory,
		registry:  registry,
		cfg:       cfg,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll returns the user's notifications newer than cursor, in ascending id
// order. A nil cursor means "from now": only notifications created after
// the call are reported. maxWait of zero selects the configured default;
// longer waits than the configured maximum are clamped.
//
// A timeout yields an empty, non-nil slice. A cancelled ctx unregisters
// the waiter and returns ctx.Err().
func (p *Poller) Poll(ctx context.Context, userID int64, cursor *int64, maxWait time.Duration) ([]Notification, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidArgument)
	}
	if cursor != nil && *cursor < 0 {
		return nil, fmt.Errorf("%w: cursor must not be negative", ErrInvalidArgument)
	}
	if maxWait < 0 {
		return nil, fmt.Errorf("%w: wait must not be negative", ErrInvalidArgument)
	}

	if err := p.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var from int64
	if cursor != nil {
		from = *cursor
	} else {
		latest, err := p.storage.LatestID(ctx, userID)
		if err != nil {
			return nil, storeFailure(err)
		}
		from = latest
	}

	wait := p.cfg.waitFor(maxWait)
	check := func(ctx context.Context) ([]Notification, error) {
		return p.storage.ListUnseenSince(ctx, userID, from)
	}

	found, w, err := p.registry.CheckAndRegister(ctx, userID, from, p.now().Add(wait), check)
	if err != nil {
		if errors.Is(err, ErrRegistryClosed) {
			return nil, err
		}
		return nil, storeFailure(err)
	}
	if w == nil {
		return found, nil
	}

	select {
	case res := <-w.Done():
		return p.settle(ctx, w, res)
	case <-ctx.Done():
		p.registry.Cancel(w)
		p.logger.LogAttrs(ctx, slog.LevelDebug, "long-poll abandoned by client",
			logger.Component("poller"),
			logger.UserID(userID),
			logger.WaiterID(w.ID()),
		)
		return nil, ctx.Err()
	}
}

func (p *Poller) ensureUser(ctx context.Context, userID int64) error {
	if p.directory == nil {
		return nil
	}
	ok, err := p.directory.Exists(ctx, userID)
	if err != nil {
		return storeFailure(err)
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// settle turns a waiter resolution into the poll result. An event wake
// re-reads everything after the original cursor so that notifications
// created before the waking one are never skipped.
func (p *Poller) settle(ctx context.Context, w *Waiter, res Resolution) ([]Notification, error) {
	switch res.Outcome {
	case OutcomeDelivered:
		fresh, err := p.storage.ListUnseenSince(ctx, w.UserID(), w.Cursor())
		if err != nil {
			p.logger.LogAttrs(ctx, slog.LevelWarn, "re-query after wake failed, returning delivered payload",
				logger.Component("poller"),
				logger.UserID(w.UserID()),
				logger.Cursor(w.Cursor()),
				logger.Error(err),
			)
			return res.Notifications, nil
		}
		return fresh, nil
	case OutcomeTimeout:
		return []Notification{}, nil
	case OutcomeClosed:
		return nil, ErrRegistryClosed
	case OutcomeCancelled:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []Notification{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown waiter outcome %d", ErrInvariantViolation, res.Outcome)
	}
}
