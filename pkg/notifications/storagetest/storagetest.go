// Package storagetest holds behavioural checks shared by notifications.Storage
// implementations.
package storagetest

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/boardnotify/pkg/notifications"
)

// OrderedVisibility creates notifications for userID from several goroutines
// while a follower tails ListUnseenSince the way a long-polling client does,
// moving its cursor to the highest id it has seen. The follower must end up
// with every created id: a lower id that becomes visible after a higher one
// would be stepped over and lost.
func OrderedVisibility(t *testing.T, s notifications.Storage, userID int64) {
	t.Helper()

	const (
		writers   = 8
		perWriter = 25
	)

	ctx := context.Background()
	start, err := s.LatestID(ctx, userID)
	require.NoError(t, err)

	var (
		mu      sync.Mutex
		created []int64
		wg      sync.WaitGroup
	)
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				n, err := s.Create(ctx, userID, int64(w), int64(i), "ordered")
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				created = append(created, n.ID)
				mu.Unlock()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	cursor := start
	var seen []int64
	follow := func() {
		ns, err := s.ListUnseenSince(ctx, userID, cursor)
		require.NoError(t, err)
		for _, n := range ns {
			seen = append(seen, n.ID)
			cursor = max(cursor, n.ID)
		}
	}

	for {
		select {
		case <-done:
			follow()
			slices.Sort(created)
			assert.Equal(t, created, seen, "follower missed notifications")
			return
		default:
			follow()
		}
	}
}
