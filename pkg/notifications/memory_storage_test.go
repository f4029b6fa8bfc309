package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ns []Notification) []int64 {
	out := make([]int64, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestMemoryStorage_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	n1, err := s.Create(ctx, 42, 7, 13, "first")
	require.NoError(t, err)
	n2, err := s.Create(ctx, 43, 7, 14, "second")
	require.NoError(t, err)

	assert.Equal(t, int64(1), n1.ID)
	assert.Equal(t, int64(2), n2.ID)
	assert.Equal(t, int64(42), n1.UserID)
	assert.Equal(t, int64(7), n1.BoardID)
	assert.Equal(t, int64(13), n1.NodeID)
	assert.Equal(t, "first", n1.Message)
	assert.False(t, n1.CreatedAt.IsZero())
	assert.Nil(t, n1.ReadAt)
	assert.Nil(t, n1.DeletedAt)
}

func TestMemoryStorage_ListUnseenSince(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	for i := 0; i < 5; i++ {
		_, err := s.Create(ctx, 42, 1, int64(i), "msg")
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, 43, 1, 1, "other user")
	require.NoError(t, err)

	tests := []struct {
		name   string
		cursor int64
		want   []int64
	}{
		{name: "from zero", cursor: 0, want: []int64{1, 2, 3, 4, 5}},
		{name: "from middle", cursor: 3, want: []int64{4, 5}},
		{name: "from latest", cursor: 5, want: []int64{}},
		{name: "beyond latest", cursor: 100, want: []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListUnseenSince(ctx, 42, tt.cursor)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("excludes deleted", func(t *testing.T) {
		require.NoError(t, s.SoftDelete(ctx, 4))
		got, err := s.ListUnseenSince(ctx, 42, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 5}, ids(got))
	})
}

func TestMemoryStorage_ListUnread(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	for i := 0; i < 3; i++ {
		_, err := s.Create(ctx, 42, 1, 1, "msg")
		require.NoError(t, err)
	}
	require.NoError(t, s.MarkRead(ctx, 2))

	unread, err := s.ListUnread(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(unread))

	all, err := s.ListAll(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids(all))

	count, err := s.CountUnread(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryStorage_MarkRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return clock }

	n, err := s.Create(ctx, 42, 1, 1, "msg")
	require.NoError(t, err)

	t.Run("keeps first read time", func(t *testing.T) {
		require.NoError(t, s.MarkRead(ctx, n.ID))
		first, err := s.Get(ctx, n.ID)
		require.NoError(t, err)
		require.NotNil(t, first.ReadAt)

		clock = clock.Add(time.Hour)
		require.NoError(t, s.MarkRead(ctx, n.ID))
		second, err := s.Get(ctx, n.ID)
		require.NoError(t, err)
		assert.Equal(t, *first.ReadAt, *second.ReadAt)
	})

	t.Run("missing id", func(t *testing.T) {
		assert.ErrorIs(t, s.MarkRead(ctx, 999), ErrNotificationNotFound)
	})

	t.Run("deleted id", func(t *testing.T) {
		require.NoError(t, s.SoftDelete(ctx, n.ID))
		err := s.MarkRead(ctx, n.ID)
		assert.ErrorIs(t, err, ErrNotificationNotFound)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStorage_MarkAllRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	for i := 0; i < 4; i++ {
		_, err := s.Create(ctx, 42, 1, 1, "msg")
		require.NoError(t, err)
	}
	require.NoError(t, s.MarkRead(ctx, 1))
	require.NoError(t, s.SoftDelete(ctx, 2))

	updated, err := s.MarkAllRead(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	count, err := s.CountUnread(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, count)

	updated, err = s.MarkAllRead(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestMemoryStorage_SoftDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	read, err := s.Create(ctx, 42, 1, 1, "read")
	require.NoError(t, err)
	unread, err := s.Create(ctx, 42, 1, 1, "unread")
	require.NoError(t, err)
	require.NoError(t, s.MarkRead(ctx, read.ID))

	require.NoError(t, s.SoftDelete(ctx, read.ID))
	require.NoError(t, s.SoftDelete(ctx, unread.ID))

	all, err := s.ListAll(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, all)

	unreadList, err := s.ListUnread(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, unreadList)

	_, err = s.Get(ctx, read.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	assert.ErrorIs(t, s.SoftDelete(ctx, read.ID), ErrNotificationNotFound)
	assert.ErrorIs(t, s.SoftDelete(ctx, 999), ErrNotificationNotFound)

	latest, err := s.LatestID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, unread.ID, latest, "deleted ids still count for the cursor")
}

func TestMemoryStorage_LatestID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	latest, err := s.LatestID(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, latest)

	_, err = s.Create(ctx, 42, 1, 1, "a")
	require.NoError(t, err)
	_, err = s.Create(ctx, 43, 1, 1, "b")
	require.NoError(t, err)

	latest, err = s.LatestID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest)
}

func TestMemoryStorage_Concurrency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStorage()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := s.Create(ctx, int64(i%5+1), 1, 1, "msg")
			assert.NoError(t, err)
			_ = s.MarkRead(ctx, n.ID)
			_, _ = s.ListUnseenSince(ctx, n.UserID, 0)
		}(i)
	}
	wg.Wait()

	total := 0
	for u := int64(1); u <= 5; u++ {
		all, err := s.ListAll(ctx, u)
		require.NoError(t, err)
		total += len(all)
		for i := 1; i < len(all); i++ {
			assert.Less(t, all[i-1].ID, all[i].ID)
		}
	}
	assert.Equal(t, 50, total)
}
