package notifications

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// waiter states; a waiter leaves statePending exactly once.
const (
	statePending int32 = iota
	stateDelivered
	stateTimedOut
	stateCancelled
	stateClosed
)

// Outcome tells a poller why its waiter was resolved.
type Outcome int

const (
	// OutcomeDelivered: a notification above the cursor arrived.
	OutcomeDelivered Outcome = iota + 1
	// OutcomeTimeout: the wait elapsed with nothing new.
	OutcomeTimeout
	// OutcomeCancelled: the poller gave up, usually on client disconnect.
	OutcomeCancelled
	// OutcomeClosed: the registry shut down.
	OutcomeClosed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Resolution is the single value a waiter's delivery slot ever carries.
type Resolution struct {
	Outcome       Outcome
	Notifications []Notification
}

// Waiter is the registry's bookkeeping for one suspended poll. It lives
// only between registration and resolution and is never persisted.
type Waiter struct {
	id       string
	userID   int64
	cursor   int64
	deadline time.Time

	state atomic.Int32
	slot  chan Resolution // buffered(1), written only by the resolve winner
	timer *time.Timer
	owner *userSlot
}

func newWaiter(userID, cursor int64, deadline time.Time) *Waiter {
	return &Waiter{
		id:       uuid.New().String(),
		userID:   userID,
		cursor:   cursor,
		deadline: deadline,
		slot:     make(chan Resolution, 1),
	}
}

func (w *Waiter) ID() string          { return w.id }
func (w *Waiter) UserID() int64       { return w.userID }
func (w *Waiter) Cursor() int64       { return w.cursor }
func (w *Waiter) Deadline() time.Time { return w.deadline }

// Done returns the channel that receives the waiter's single Resolution.
func (w *Waiter) Done() <-chan Resolution {
	return w.slot
}

// Resolved reports whether the waiter has left the pending state.
func (w *Waiter) Resolved() bool {
	return w.state.Load() != statePending
}

// resolve moves the waiter out of pending. The first caller wins and fills
// the slot; every later caller gets false and must not touch the slot.
func (w *Waiter) resolve(state int32, res Resolution) bool {
	if !w.state.CompareAndSwap(statePending, state) {
		return false
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.slot <- res
	return true
}
