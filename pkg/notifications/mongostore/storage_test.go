package mongostore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	driver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/boardnotify/pkg/mongo"
	"github.com/dmitrymomot/boardnotify/pkg/notifications"
	"github.com/dmitrymomot/boardnotify/pkg/notifications/mongostore"
	"github.com/dmitrymomot/boardnotify/pkg/notifications/storagetest"
)

func setupDatabase(t *testing.T) *driver.Database {
	t.Helper()

	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	name := fmt.Sprintf("boardnotify_test_%d", time.Now().UnixNano())
	db, err := mongo.NewWithDatabase(ctx, mongo.Config{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		MaxPoolSize:    5,
		RetryAttempts:  1,
	}, name)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = db.Client().Disconnect(context.Background())
	})
	return db
}

// storageOptions drops transactions when the test server is a standalone
// mongod, which cannot run them.
func storageOptions() []mongostore.Option {
	if os.Getenv("MONGODB_STANDALONE") != "" {
		return []mongostore.Option{mongostore.WithoutTransactions()}
	}
	return nil
}

func TestStorage_OrderedVisibility(t *testing.T) {
	db := setupDatabase(t)
	s := mongostore.New(db, storageOptions()...)
	require.NoError(t, s.EnsureIndexes(context.Background()))

	storagetest.OrderedVisibility(t, s, 42)
}

func TestStorage_Lifecycle(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()

	s := mongostore.New(db, storageOptions()...)
	require.NoError(t, s.EnsureIndexes(ctx))

	latest, err := s.LatestID(ctx, 42)
	require.NoError(t, err)
	assert.Zero(t, latest)

	first, err := s.Create(ctx, 42, 7, 13, "first")
	require.NoError(t, err)
	second, err := s.Create(ctx, 42, 7, 14, "second")
	require.NoError(t, err)
	other, err := s.Create(ctx, 43, 7, 15, "other user")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, int64(3), other.ID)

	unseen, err := s.ListUnseenSince(ctx, 42, first.ID)
	require.NoError(t, err)
	require.Len(t, unseen, 1)
	assert.Equal(t, "second", unseen[0].Message)

	latest, err = s.LatestID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest)

	require.NoError(t, s.MarkRead(ctx, first.ID))
	read, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)

	require.NoError(t, s.MarkRead(ctx, first.ID))
	again, err := s.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.ReadAt.Equal(*again.ReadAt))

	count, err := s.CountUnread(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.SoftDelete(ctx, second.ID))
	assert.ErrorIs(t, s.SoftDelete(ctx, second.ID), notifications.ErrNotificationNotFound)
	assert.ErrorIs(t, s.MarkRead(ctx, second.ID), notifications.ErrNotificationNotFound)
	assert.ErrorIs(t, s.MarkRead(ctx, 999), notifications.ErrNotificationNotFound)

	all, err := s.ListAll(ctx, 42)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)

	unread, err := s.ListUnread(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, unread)

	updated, err := s.MarkAllRead(ctx, 43)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
}

func TestDirectory_Exists(t *testing.T) {
	db := setupDatabase(t)
	ctx := context.Background()

	_, err := db.Collection("users").InsertOne(ctx, bson.M{"_id": int64(42)})
	require.NoError(t, err)

	d := mongostore.NewDirectory(db, "", "")

	ok, err := d.Exists(ctx, 42)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Exists(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}
