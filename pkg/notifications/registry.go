package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/boardnotify/pkg/logger"
)

// CheckFunc looks for notifications the caller has not seen yet. The
// registry runs it while holding the user's lock.
type CheckFunc func(ctx context.Context) ([]Notification, error)

// userSlot is the per-user synchronization unit. refs counts goroutines that
// looked the slot up and may still lock it; the slot is dropped from the
// registry once refs is zero and no waiters remain.
type userSlot struct {
	mu      sync.Mutex
	waiters map[*Waiter]struct{}
	refs    int
}

// Registry is the process-wide table of pending long-poll waiters keyed by
// user. Registration, notification and cancellation for one user are
// serialized by that user's slot lock; different users never share a lock
// beyond the short slot lookup.
type Registry struct {
	mu     sync.Mutex
	users  map[int64]*userSlot
	closed atomic.Bool
	logger *slog.Logger
	now    func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger for the Registry.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty waiter registry. Call Close on shutdown.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		users:  make(map[int64]*userSlot),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// acquire returns the user's slot, creating it on first use, and pins it
// until release is called.
func (r *Registry) acquire(userID int64) (*userSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed.Load() {
		return nil, ErrRegistryClosed
	}
	slot, ok := r.users[userID]
	if !ok {
		slot = &userSlot{waiters: make(map[*Waiter]struct{})}
		r.users[userID] = slot
	}
	slot.refs++
	return slot, nil
}

// release unpins the slot and drops it when nobody uses it anymore.
// Must be called without slot.mu held.
func (r *Registry) release(userID int64, slot *userSlot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot.refs--
	if slot.refs > 0 {
		return
	}
	slot.mu.Lock()
	empty := len(slot.waiters) == 0
	slot.mu.Unlock()
	if empty && r.users[userID] == slot {
		delete(r.users, userID)
	}
}

// CheckAndRegister runs check and, if it finds nothing, registers a waiter
// for userID, all under the user's lock. A Notify for the same user cannot
// interleave, so nothing created between the check and the registration is
// missed.
//
// It returns either the non-empty check result (no waiter) or a registered
// waiter. A check error aborts before registration.
func (r *Registry) CheckAndRegister(ctx context.Context, userID, cursor int64, deadline time.Time, check CheckFunc) ([]Notification, *Waiter, error) {
	slot, err := r.acquire(userID)
	if err != nil {
		return nil, nil, err
	}
	defer r.release(userID, slot)

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if check != nil {
		found, err := check(ctx)
		if err != nil {
			return nil, nil, err
		}
		if len(found) > 0 {
			return found, nil, nil
		}
	}

	// Close may have detached this slot while check was running.
	if r.closed.Load() {
		return nil, nil, ErrRegistryClosed
	}

	w := newWaiter(userID, cursor, deadline)
	w.owner = slot
	slot.waiters[w] = struct{}{}

	wait := deadline.Sub(r.now())
	if wait < 0 {
		wait = 0
	}
	w.timer = time.AfterFunc(wait, func() { r.expire(w) })

	r.logger.LogAttrs(ctx, slog.LevelDebug, "waiter registered",
		logger.Component("registry"),
		logger.UserID(userID),
		logger.WaiterID(w.id),
		logger.Cursor(cursor),
	)

	return nil, w, nil
}

// Notify resolves every waiter of userID whose cursor is below n.ID with n.
// Waiters that already saw n stay registered. Each delivery is isolated: a
// failure while resolving one waiter is logged and the rest still resolve.
func (r *Registry) Notify(userID int64, n Notification) int {
	slot, err := r.acquire(userID)
	if err != nil {
		return 0
	}
	defer r.release(userID, slot)

	slot.mu.Lock()
	defer slot.mu.Unlock()

	delivered := 0
	for w := range slot.waiters {
		if w.cursor >= n.ID {
			continue
		}
		delete(slot.waiters, w)
		if r.deliver(w, n) {
			delivered++
		}
	}
	return delivered
}

// deliver resolves one waiter and contains any panic to that waiter.
// Must be called with the slot lock held.
func (r *Registry) deliver(w *Waiter, n Notification) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			r.logger.LogAttrs(context.Background(), slog.LevelError, "waiter delivery failed",
				logger.Component("registry"),
				logger.UserID(w.userID),
				logger.WaiterID(w.id),
				logger.NotificationID(n.ID),
				logger.Error(fmt.Errorf("%w: %v", ErrInvariantViolation, p)),
			)
		}
	}()

	return w.resolve(stateDelivered, Resolution{
		Outcome:       OutcomeDelivered,
		Notifications: []Notification{n},
	})
}

// Deliver implements Deliverer so the registry can sit behind Service.
func (r *Registry) Deliver(_ context.Context, n Notification) error {
	r.Notify(n.UserID, n)
	return nil
}

// DeliverBatch implements Deliverer. Notifications are delivered in the
// order given, so each user's waiters are woken by the lowest new id.
func (r *Registry) DeliverBatch(_ context.Context, ns []Notification) error {
	for _, n := range ns {
		r.Notify(n.UserID, n)
	}
	return nil
}

// Cancel removes w without delivering data, e.g. after a client disconnect.
// It is a no-op for waiters that are already resolved.
func (r *Registry) Cancel(w *Waiter) {
	if w == nil {
		return
	}
	r.remove(w, stateCancelled, Resolution{Outcome: OutcomeCancelled})
}

// expire is the deadline path: resolve with an empty result and unregister.
func (r *Registry) expire(w *Waiter) {
	if r.remove(w, stateTimedOut, Resolution{Outcome: OutcomeTimeout, Notifications: []Notification{}}) {
		r.logger.LogAttrs(context.Background(), slog.LevelDebug, "waiter timed out",
			logger.Component("registry"),
			logger.UserID(w.userID),
			logger.WaiterID(w.id),
		)
	}
}

// remove unregisters w and resolves it with res if it was still pending.
func (r *Registry) remove(w *Waiter, state int32, res Resolution) bool {
	slot := w.owner
	if slot == nil {
		return w.resolve(state, res)
	}

	r.mu.Lock()
	slot.refs++
	r.mu.Unlock()
	defer r.release(w.userID, slot)

	slot.mu.Lock()
	defer slot.mu.Unlock()

	delete(slot.waiters, w)
	return w.resolve(state, res)
}

// Len returns the number of pending waiters across all users.
func (r *Registry) Len() int {
	r.mu.Lock()
	slots := make([]*userSlot, 0, len(r.users))
	for _, s := range r.users {
		slots = append(slots, s)
	}
	r.mu.Unlock()

	total := 0
	for _, s := range slots {
		s.mu.Lock()
		total += len(s.waiters)
		s.mu.Unlock()
	}
	return total
}

// UserCount returns the number of users that currently have a slot.
func (r *Registry) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// Close rejects new registrations and resolves every pending waiter with
// OutcomeClosed. It is safe to call more than once.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed.Swap(true) {
		r.mu.Unlock()
		return nil
	}
	users := r.users
	r.users = make(map[int64]*userSlot)
	r.mu.Unlock()

	drained := 0
	for _, slot := range users {
		slot.mu.Lock()
		for w := range slot.waiters {
			delete(slot.waiters, w)
			if w.resolve(stateClosed, Resolution{Outcome: OutcomeClosed}) {
				drained++
			}
		}
		slot.mu.Unlock()
	}

	r.logger.LogAttrs(context.Background(), slog.LevelInfo, "waiter registry closed",
		logger.Component("registry"),
		logger.Count(drained),
	)
	return nil
}
