package notification

import (
	"time"

	"github.com/dmitrymomot/boardnotify/pkg/notifications"
)

// Record is the long-poll payload for one notification.
type Record struct {
	Message        string `json:"message"`
	BoardID        int64  `json:"board_id"`
	NodeID         int64  `json:"node_id"`
	NotificationID int64  `json:"notification_id"`
}

// Item is a notification as returned by the listing endpoints.
type Item struct {
	NotificationID int64      `json:"notification_id"`
	UserID         int64      `json:"user_id"`
	BoardID        int64      `json:"board_id"`
	NodeID         int64      `json:"node_id"`
	Message        string     `json:"message"`
	IsRead         bool       `json:"is_read"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at"`
}

// Records converts ns; the result is never nil so it encodes as [].
func Records(ns []notifications.Notification) []Record {
	out := make([]Record, 0, len(ns))
	for _, n := range ns {
		out = append(out, Record{
			Message:        n.Message,
			BoardID:        n.BoardID,
			NodeID:         n.NodeID,
			NotificationID: n.ID,
		})
	}
	return out
}

// NewItem converts a single notification.
func NewItem(n notifications.Notification) Item {
	return Item{
		NotificationID: n.ID,
		UserID:         n.UserID,
		BoardID:        n.BoardID,
		NodeID:         n.NodeID,
		Message:        n.Message,
		IsRead:         n.IsRead(),
		CreatedAt:      n.CreatedAt,
		ReadAt:         n.ReadAt,
	}
}

// Items converts ns; the result is never nil so it encodes as [].
func Items(ns []notifications.Notification) []Item {
	out := make([]Item, 0, len(ns))
	for _, n := range ns {
		out = append(out, NewItem(n))
	}
	return out
}

type (
	// LongPollRequest binds GET /longpoll/{userID}?cursor=&timeout=.
	// Timeout accepts a Go duration or whole seconds; zero picks the default.
	LongPollRequest struct {
		UserID  int64         `path:"userID"`
		Cursor  *int64        `query:"cursor"`
		Timeout time.Duration `query:"timeout"`
	}

	UserRequest struct {
		UserID int64 `path:"userID"`
	}

	NotificationRequest struct {
		NotificationID int64 `path:"notificationID"`
	}

	// CreateRequest is the body of the internal trigger. UserIDs, when set,
	// sends the same notification to every listed user instead of UserID.
	CreateRequest struct {
		UserID  int64   `json:"user_id"`
		UserIDs []int64 `json:"user_ids"`
		BoardID int64   `json:"board_id"`
		NodeID  int64   `json:"node_id"`
		Message string  `json:"message"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}

	UpdatedResponse struct {
		Updated int `json:"updated"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)
