package notifications

import "time"

// Notification is a single message addressed to one user, produced when
// content they follow changes (a new post on a board node).
// IDs are assigned by Storage, grow monotonically and double as the
// long-poll cursor.
type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	BoardID   int64      `json:"board_id"`
	NodeID    int64      `json:"node_id"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsRead reports whether the notification has been marked as read.
func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

// IsDeleted reports whether the notification was soft-deleted.
func (n Notification) IsDeleted() bool {
	return n.DeletedAt != nil
}
