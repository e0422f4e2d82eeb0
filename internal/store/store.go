// Package store adapts a document database behind a small per-collection
// interface. All operations act on a single collection; there are no
// cross-collection transactions and no foreign-key enforcement — referential
// integrity across collections is the caller's problem.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrNoDocuments is returned by FindOne and FindOneAndUpdate when the filter
// matches nothing.
var ErrNoDocuments = errors.New("store: no documents in result")

// ErrDuplicateKey is returned by InsertOne when a document with the same _id
// already exists.
var ErrDuplicateKey = errors.New("store: duplicate key")

// Collection is a single document collection.
//
// Filters and updates use the Mongo operator syntax; implementations must
// support the subset the ledgers use: equality matches, $in, $set, $inc,
// $addToSet, $pull and $pullAll.
type Collection interface {
	// InsertOne stores a new document.
	InsertOne(ctx context.Context, doc any) error
	// FindOne decodes the first matching document into out, or returns
	// ErrNoDocuments.
	FindOne(ctx context.Context, filter bson.M, out any) error
	// Find decodes all matching documents into out, which must be a pointer
	// to a slice. No match decodes an empty slice, not an error.
	Find(ctx context.Context, filter bson.M, out any) error
	// FindOneAndUpdate applies update to the first matching document and
	// decodes the post-update document into out, or returns ErrNoDocuments.
	FindOneAndUpdate(ctx context.Context, filter, update bson.M, out any) error
	// DeleteOne removes the first matching document and reports how many
	// documents were removed (0 or 1).
	DeleteOne(ctx context.Context, filter bson.M) (int64, error)
	// DeleteMany removes every matching document and reports the count.
	DeleteMany(ctx context.Context, filter bson.M) (int64, error)
}

// Store exposes the three collections of the notepads data model.
type Store interface {
	Users() Collection
	Categories() Collection
	Notepads() Collection
	Close(ctx context.Context) error
}
