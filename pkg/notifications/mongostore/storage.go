// Package mongostore keeps notifications in MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/boardnotify/pkg/notifications"
)

const (
	notificationsCollection = "notifications"
	countersCollection      = "counters"
	sequenceName            = "notifications"
)

type document struct {
	ID        int64      `bson:"_id"`
	UserID    int64      `bson:"user_id"`
	BoardID   int64      `bson:"board_id"`
	NodeID    int64      `bson:"node_id"`
	Message   string     `bson:"message"`
	CreatedAt time.Time  `bson:"created_at"`
	ReadAt    *time.Time `bson:"read_at"`
	DeletedAt *time.Time `bson:"deleted_at"`
}

func (d document) notification() notifications.Notification {
	return notifications.Notification{
		ID:        d.ID,
		UserID:    d.UserID,
		BoardID:   d.BoardID,
		NodeID:    d.NodeID,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
		ReadAt:    d.ReadAt,
		DeletedAt: d.DeletedAt,
	}
}

// Storage implements notifications.Storage on a MongoDB database.
// Integer ids come from a counters collection so cursors stay numeric and
// strictly increasing.
//
// By default the counter bump and the insert share one transaction, which
// needs a replica set or a sharded cluster. Concurrent transactions conflict
// on the counter document, so ids commit in the order they were assigned.
type Storage struct {
	client       *mongo.Client
	coll         *mongo.Collection
	counters     *mongo.Collection
	locks        *userLocks
	transactions bool
	now          func() time.Time
}

// Option configures a Storage.
type Option func(*Storage)

// WithoutTransactions runs Create without a transaction, for standalone
// servers. Creates are then ordered per user only within this process, so
// only one instance may write notifications.
func WithoutTransactions() Option {
	return func(s *Storage) {
		s.transactions = false
	}
}

// New creates a Storage over db. Call EnsureIndexes once at startup.
func New(db *mongo.Database, opts ...Option) *Storage {
	s := &Storage{
		client:       db.Client(),
		coll:         db.Collection(notificationsCollection),
		counters:     db.Collection(countersCollection),
		locks:        newUserLocks(),
		transactions: true,
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureIndexes creates the indexes used by the per-user listings.
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read_at", Value: 1}, {Key: "deleted_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

// Create holds the user's lock for the whole counter-then-insert sequence,
// so a user's ids become visible in the order they were assigned.
func (s *Storage) Create(ctx context.Context, userID, boardID, nodeID int64, message string) (notifications.Notification, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	if !s.transactions {
		return s.insert(ctx, userID, boardID, nodeID, message)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return notifications.Notification{}, errors.Join(notifications.ErrStoreFailure, err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return s.insert(ctx, userID, boardID, nodeID, message)
	})
	if err != nil {
		if errors.Is(err, notifications.ErrStoreFailure) {
			return notifications.Notification{}, err
		}
		return notifications.Notification{}, errors.Join(notifications.ErrStoreFailure, err)
	}
	return res.(notifications.Notification), nil
}

func (s *Storage) insert(ctx context.Context, userID, boardID, nodeID int64, message string) (notifications.Notification, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return notifications.Notification{}, err
	}

	doc := document{
		ID:        id,
		UserID:    userID,
		BoardID:   boardID,
		NodeID:    nodeID,
		Message:   message,
		CreatedAt: s.now(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return notifications.Notification{}, errors.Join(notifications.ErrStoreFailure, err)
	}
	return doc.notification(), nil
}

func (s *Storage) Get(ctx context.Context, id int64) (notifications.Notification, error) {
	var doc document
	err := s.coll.FindOne(ctx, visible(bson.M{"_id": id})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notifications.Notification{}, notifications.ErrNotificationNotFound
		}
		return notifications.Notification{}, errors.Join(notifications.ErrStoreFailure, err)
	}
	return doc.notification(), nil
}

func (s *Storage) ListUnseenSince(ctx context.Context, userID, cursor int64) ([]notifications.Notification, error) {
	return s.find(ctx, visible(bson.M{"user_id": userID, "_id": bson.M{"$gt": cursor}}))
}

func (s *Storage) ListAll(ctx context.Context, userID int64) ([]notifications.Notification, error) {
	return s.find(ctx, visible(bson.M{"user_id": userID}))
}

func (s *Storage) ListUnread(ctx context.Context, userID int64) ([]notifications.Notification, error) {
	return s.find(ctx, visible(bson.M{"user_id": userID, "read_at": nil}))
}

func (s *Storage) LatestID(ctx context.Context, userID int64) (int64, error) {
	var doc struct {
		ID int64 `bson:"_id"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetProjection(bson.M{"_id": 1})
	err := s.coll.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, errors.Join(notifications.ErrStoreFailure, err)
	}
	return doc.ID, nil
}

func (s *Storage) CountUnread(ctx context.Context, userID int64) (int, error) {
	count, err := s.coll.CountDocuments(ctx, visible(bson.M{"user_id": userID, "read_at": nil}))
	if err != nil {
		return 0, errors.Join(notifications.ErrStoreFailure, err)
	}
	return int(count), nil
}

// MarkRead only touches unread documents, so the first read time is kept.
func (s *Storage) MarkRead(ctx context.Context, id int64) error {
	res, err := s.coll.UpdateOne(ctx,
		visible(bson.M{"_id": id, "read_at": nil}),
		bson.M{"$set": bson.M{"read_at": s.now()}},
	)
	if err != nil {
		return errors.Join(notifications.ErrStoreFailure, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Nothing unread matched: either already read or gone.
	n, err := s.coll.CountDocuments(ctx, visible(bson.M{"_id": id}), options.Count().SetLimit(1))
	if err != nil {
		return errors.Join(notifications.ErrStoreFailure, err)
	}
	if n == 0 {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

func (s *Storage) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	res, err := s.coll.UpdateMany(ctx,
		visible(bson.M{"user_id": userID, "read_at": nil}),
		bson.M{"$set": bson.M{"read_at": s.now()}},
	)
	if err != nil {
		return 0, errors.Join(notifications.ErrStoreFailure, err)
	}
	return int(res.ModifiedCount), nil
}

func (s *Storage) SoftDelete(ctx context.Context, id int64) error {
	res, err := s.coll.UpdateOne(ctx,
		visible(bson.M{"_id": id}),
		bson.M{"$set": bson.M{"deleted_at": s.now()}},
	)
	if err != nil {
		return errors.Join(notifications.ErrStoreFailure, err)
	}
	if res.MatchedCount == 0 {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

func (s *Storage) find(ctx context.Context, filter bson.M) ([]notifications.Notification, error) {
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Join(notifications.ErrStoreFailure, err)
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Join(notifications.ErrStoreFailure, err)
	}

	out := make([]notifications.Notification, len(docs))
	for i, d := range docs {
		out[i] = d.notification()
	}
	return out, nil
}

func (s *Storage) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": sequenceName},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, errors.Join(notifications.ErrStoreFailure, fmt.Errorf("next notification id: %w", err))
	}
	return counter.Seq, nil
}

// visible restricts filter to documents that are not soft-deleted.
// A nil match covers both an explicit null and a missing field.
func visible(filter bson.M) bson.M {
	filter["deleted_at"] = nil
	return filter
}
