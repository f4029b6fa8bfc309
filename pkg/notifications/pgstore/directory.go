package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/boardnotify/pkg/notifications"
)

// Directory implements notifications.UserDirectory by looking up ids in a
// users table owned by another service.
type Directory struct {
	db    DB
	query string
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithUsersTable changes the table the ids are looked up in. The name is
// quoted as a single identifier.
func WithUsersTable(table string) DirectoryOption {
	return func(d *Directory) {
		if table != "" {
			d.query = existsQuery(table)
		}
	}
}

// NewDirectory creates a Directory reading the "users" table.
func NewDirectory(db DB, opts ...DirectoryOption) *Directory {
	d := &Directory{db: db, query: existsQuery("users")}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Directory) Exists(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	if err := d.db.QueryRow(ctx, d.query, userID).Scan(&ok); err != nil {
		return false, errors.Join(notifications.ErrStoreFailure, err)
	}
	return ok, nil
}

func existsQuery(table string) string {
	return fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, pgx.Identifier{table}.Sanitize())
}
