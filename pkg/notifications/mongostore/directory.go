package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/boardnotify/pkg/notifications"
)

// Directory implements notifications.UserDirectory over a users collection
// owned by another service, matching the numeric user id against idField.
type Directory struct {
	coll    *mongo.Collection
	idField string
}

// NewDirectory creates a Directory. Empty collection and idField default
// to "users" and "_id".
func NewDirectory(db *mongo.Database, collection, idField string) *Directory {
	if collection == "" {
		collection = "users"
	}
	if idField == "" {
		idField = "_id"
	}
	return &Directory{coll: db.Collection(collection), idField: idField}
}

func (d *Directory) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := d.coll.CountDocuments(ctx, bson.M{d.idField: userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Join(notifications.ErrStoreFailure, err)
	}
	return n > 0, nil
}
