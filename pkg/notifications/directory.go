package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/boardnotify/pkg/cache"
)

// MemoryDirectory is a UserDirectory backed by a set of known ids.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[int64]struct{}
}

// NewMemoryDirectory creates a directory that knows the given users.
func NewMemoryDirectory(userIDs ...int64) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[int64]struct{}, len(userIDs))}
	for _, id := range userIDs {
		d.users[id] = struct{}{}
	}
	return d
}

// Add registers users with the directory.
func (d *MemoryDirectory) Add(userIDs ...int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, id := range userIDs {
		d.users[id] = struct{}{}
	}
}

// Remove forgets a user.
func (d *MemoryDirectory) Remove(userID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, userID)
}

func (d *MemoryDirectory) Exists(_ context.Context, userID int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.users[userID]
	return ok, nil
}

// CachedDirectory remembers positive answers of another directory for a
// while. Negative answers and errors are never cached, so a user created
// upstream becomes visible on the next lookup.
type CachedDirectory struct {
	next  UserDirectory
	known *cache.LRUCache[int64, struct{}]
}

// NewCachedDirectory wraps next with an LRU cache of up to size users kept for ttl.
func NewCachedDirectory(next UserDirectory, size int, ttl time.Duration) *CachedDirectory {
	if size <= 0 {
		size = 1
	}
	return &CachedDirectory{
		next:  next,
		known: cache.NewExpiringLRUCache[int64, struct{}](size, ttl),
	}
}

func (d *CachedDirectory) Exists(ctx context.Context, userID int64) (bool, error) {
	if _, ok := d.known.Get(userID); ok {
		return true, nil
	}
	ok, err := d.next.Exists(ctx, userID)
	if err != nil || !ok {
		return ok, err
	}
	d.known.Put(userID, struct{}{})
	return true, nil
}

// Forget drops a cached user, e.g. after it was deleted upstream.
func (d *CachedDirectory) Forget(userID int64) {
	d.known.Remove(userID)
}
