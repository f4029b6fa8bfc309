// Package pgstore keeps notifications in PostgreSQL.
package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/boardnotify/pkg/notifications"
	"github.com/dmitrymomot/boardnotify/pkg/pg"
)

// DB is the subset of pgxpool.Pool used by the store. pgx.Tx satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const columns = `id, user_id, board_id, node_id, message, created_at, read_at, deleted_at`

const (
	queryLockUser = `SELECT pg_advisory_xact_lock($1)`

	queryCreate = `INSERT INTO notifications (user_id, board_id, node_id, message)
VALUES ($1, $2, $3, $4)
RETURNING ` + columns

	queryGet = `SELECT ` + columns + ` FROM notifications
WHERE id = $1 AND deleted_at IS NULL`

	queryUnseenSince = `SELECT ` + columns + ` FROM notifications
WHERE user_id = $1 AND id > $2 AND deleted_at IS NULL
ORDER BY id`

	queryAll = `SELECT ` + columns + ` FROM notifications
WHERE user_id = $1 AND deleted_at IS NULL
ORDER BY id`

	queryUnread = `SELECT ` + columns + ` FROM notifications
WHERE user_id = $1 AND deleted_at IS NULL AND read_at IS NULL
ORDER BY id`

	queryLatestID = `SELECT COALESCE(MAX(id), 0) FROM notifications WHERE user_id = $1`

	queryCountUnread = `SELECT COUNT(*) FROM notifications
WHERE user_id = $1 AND deleted_at IS NULL AND read_at IS NULL`

	queryMarkRead = `UPDATE notifications SET read_at = COALESCE(read_at, now())
WHERE id = $1 AND deleted_at IS NULL`

	queryMarkAllRead = `UPDATE notifications SET read_at = now()
WHERE user_id = $1 AND deleted_at IS NULL AND read_at IS NULL`

	querySoftDelete = `UPDATE notifications SET deleted_at = now()
WHERE id = $1 AND deleted_at IS NULL`
)

// Storage implements notifications.Storage on a pgx connection pool.
type Storage struct {
	db DB
}

// New creates a Storage. The schema comes from Migrations.
func New(db DB) *Storage {
	return &Storage{db: db}
}

// Create inserts under a per-user advisory lock held until commit, so a
// user's ids become visible in the order they were assigned.
func (s *Storage) Create(ctx context.Context, userID, boardID, nodeID int64, message string) (notifications.Notification, error) {
	var n notifications.Notification
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, queryLockUser, userID); err != nil {
			return err
		}
		var err error
		n, err = scanNotification(tx.QueryRow(ctx, queryCreate, userID, boardID, nodeID, message))
		return err
	})
	if err != nil {
		return notifications.Notification{}, errors.Join(notifications.ErrStoreFailure, err)
	}
	return n, nil
}

func (s *Storage) Get(ctx context.Context, id int64) (notifications.Notification, error) {
	n, err := scanNotification(s.db.QueryRow(ctx, queryGet, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return notifications.Notification{}, notifications.ErrNotificationNotFound
		}
		return notifications.Notification{}, errors.Join(notifications.ErrStoreFailure, err)
	}
	return n, nil
}

func (s *Storage) ListUnseenSince(ctx context.Context, userID, cursor int64) ([]notifications.Notification, error) {
	return s.list(ctx, queryUnseenSince, userID, cursor)
}

func (s *Storage) ListAll(ctx context.Context, userID int64) ([]notifications.Notification, error) {
	return s.list(ctx, queryAll, userID)
}

func (s *Storage) ListUnread(ctx context.Context, userID int64) ([]notifications.Notification, error) {
	return s.list(ctx, queryUnread, userID)
}

func (s *Storage) LatestID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	if err := s.db.QueryRow(ctx, queryLatestID, userID).Scan(&id); err != nil {
		return 0, errors.Join(notifications.ErrStoreFailure, err)
	}
	return id, nil
}

func (s *Storage) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, queryCountUnread, userID).Scan(&count); err != nil {
		return 0, errors.Join(notifications.ErrStoreFailure, err)
	}
	return count, nil
}

func (s *Storage) MarkRead(ctx context.Context, id int64) error {
	return s.updateOne(ctx, queryMarkRead, id)
}

func (s *Storage) MarkAllRead(ctx context.Context, userID int64) (int, error) {
	tag, err := s.db.Exec(ctx, queryMarkAllRead, userID)
	if err != nil {
		return 0, errors.Join(notifications.ErrStoreFailure, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Storage) SoftDelete(ctx context.Context, id int64) error {
	return s.updateOne(ctx, querySoftDelete, id)
}

func (s *Storage) list(ctx context.Context, query string, args ...any) ([]notifications.Notification, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(notifications.ErrStoreFailure, err)
	}
	ns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (notifications.Notification, error) {
		return scanNotification(row)
	})
	if err != nil {
		return nil, errors.Join(notifications.ErrStoreFailure, err)
	}
	if ns == nil {
		ns = []notifications.Notification{}
	}
	return ns, nil
}

// updateOne runs a single-row update and maps "no row touched" to not found.
func (s *Storage) updateOne(ctx context.Context, query string, id int64) error {
	tag, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return errors.Join(notifications.ErrStoreFailure, err)
	}
	if tag.RowsAffected() == 0 {
		return notifications.ErrNotificationNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (notifications.Notification, error) {
	var n notifications.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.BoardID,
		&n.NodeID,
		&n.Message,
		&n.CreatedAt,
		&n.ReadAt,
		&n.DeletedAt,
	)
	return n, err
}
