package notifications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage for development and tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*Notification
	byUser  map[int64][]int64 // ascending ids, deleted included
	latest  map[int64]int64
	nowFunc func() time.Time
}

// NewMemoryStorage creates an empty in-memory notification storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		byID:    make(map[int64]*Notification),
		byUser:  make(map[int64][]int64),
		latest:  make(map[int64]int64),
		nowFunc: time.Now,
	}
}

func (s *MemoryStorage) Create(_ context.Context, userID, boardID, nodeID int64, message string) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	n := &Notification{
		ID:        s.nextID,
		UserID:    userID,
		BoardID:   boardID,
		NodeID:    nodeID,
		Message:   message,
		CreatedAt: s.nowFunc(),
	}
	s.byID[n.ID] = n
	s.byUser[userID] = append(s.byUser[userID], n.ID)
	s.latest[userID] = n.ID

	return *n, nil
}

func (s *MemoryStorage) Get(_ context.Context, id int64) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.byID[id]
	if !ok || n.IsDeleted() {
		return Notification{}, ErrNotificationNotFound
	}
	return *n, nil
}

func (s *MemoryStorage) ListUnseenSince(_ context.Context, userID, cursor int64) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byUser[userID]
	// ids are appended in creation order, so they are already ascending
	start := sort.Search(len(ids), func(i int) bool { return ids[i] > cursor })
	return s.collect(ids[start:], func(*Notification) bool { return true }), nil
}

func (s *MemoryStorage) ListAll(_ context.Context, userID int64) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byUser[userID], func(*Notification) bool { return true }), nil
}

func (s *MemoryStorage) ListUnread(_ context.Context, userID int64) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(s.byUser[userID], func(n *Notification) bool { return !n.IsRead() }), nil
}

func (s *MemoryStorage) LatestID(_ context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest[userID], nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range s.byUser[userID] {
		if n := s.byID[id]; !n.IsDeleted() && !n.IsRead() {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStorage) MarkRead(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok || n.IsDeleted() {
		return ErrNotificationNotFound
	}
	if n.ReadAt == nil {
		now := s.nowFunc()
		n.ReadAt = &now
	}
	return nil
}

func (s *MemoryStorage) MarkAllRead(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	updated := 0
	for _, id := range s.byUser[userID] {
		n := s.byID[id]
		if n.IsDeleted() || n.IsRead() {
			continue
		}
		readAt := now
		n.ReadAt = &readAt
		updated++
	}
	return updated, nil
}

func (s *MemoryStorage) SoftDelete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.byID[id]
	if !ok || n.IsDeleted() {
		return ErrNotificationNotFound
	}
	now := s.nowFunc()
	n.DeletedAt = &now
	return nil
}

// collect copies the non-deleted notifications among ids that match keep.
// Must be called with lock held.
func (s *MemoryStorage) collect(ids []int64, keep func(*Notification) bool) []Notification {
	out := make([]Notification, 0, len(ids))
	for _, id := range ids {
		n := s.byID[id]
		if n.IsDeleted() || !keep(n) {
			continue
		}
		out = append(out, *n)
	}
	return out
}
