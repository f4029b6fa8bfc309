// Package cache provides a generic, thread-safe LRU cache with optional
// time-based expiry.
//
// boardnotify uses it to remember which users exist so that every long-poll
// request does not hit the user store:
//
//	known := cache.NewExpiringLRUCache[int64, struct{}](10_000, 5*time.Minute)
//	known.Put(userID, struct{}{})
//	if _, ok := known.Get(userID); ok {
//		// skip the lookup
//	}
//
// Get, Put and Remove are O(1). An entry is evicted either when it is the
// least recently used one and the cache is over capacity, or lazily on Get
// once its ttl has elapsed.
package cache
