package notifications

import (
	"context"
)

// Storage handles notification persistence. Implementations hold no
// long-poll state; all listings are ordered by ascending ID and never
// include soft-deleted records.
type Storage interface {
	// Create persists a new unread notification and returns it with ID and CreatedAt assigned.
	Create(ctx context.Context, userID, boardID, nodeID int64, message string) (Notification, error)

	// Get returns a single notification. Soft-deleted records yield ErrNotificationNotFound.
	Get(ctx context.Context, id int64) (Notification, error)

	// ListUnseenSince returns the user's notifications with ID greater than cursor.
	ListUnseenSince(ctx context.Context, userID, cursor int64) ([]Notification, error)

	// ListAll returns every notification of the user.
	ListAll(ctx context.Context, userID int64) ([]Notification, error)

	// ListUnread returns the user's notifications that have no ReadAt.
	ListUnread(ctx context.Context, userID int64) ([]Notification, error)

	// LatestID returns the highest notification ID ever assigned to the user,
	// deleted ones included, or 0 if none exist.
	LatestID(ctx context.Context, userID int64) (int64, error)

	// CountUnread returns the number of unread notifications of the user.
	CountUnread(ctx context.Context, userID int64) (int, error)

	// MarkRead sets ReadAt if it is not set yet. Already-read notifications are left untouched.
	MarkRead(ctx context.Context, id int64) error

	// MarkAllRead marks every unread notification of the user and returns how many changed.
	MarkAllRead(ctx context.Context, userID int64) (int, error)

	// SoftDelete sets DeletedAt. Missing or already deleted records yield ErrNotificationNotFound.
	SoftDelete(ctx context.Context, id int64) error
}

// UserDirectory answers whether a user exists in the owning system.
// Users are not managed here; this is only the lookup boundary.
type UserDirectory interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}
