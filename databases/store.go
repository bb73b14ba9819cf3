package databases

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sentinel errors returned by Store implementations. Repositories translate them
// into the typed errors in the models package.
var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record version conflict")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Store is the storage abstraction every repository is built on. Documents are
// bson-tagged structs keyed by their "_id" and versioned by "__v".
type Store interface {
	// Get decodes the document with id into out, or returns ErrNotFound
	Get(ctx context.Context, collection, id string, out interface{}) error
	// Insert stores a new document; an existing _id yields ErrDuplicateKey
	Insert(ctx context.Context, collection string, doc interface{}) error
	// Replace overwrites the document with id only while its stored __v still
	// equals version. A mismatch yields ErrConflict, a missing id ErrNotFound.
	Replace(ctx context.Context, collection, id string, version int32, doc interface{}) error
	Delete(ctx context.Context, collection, id string) error
	DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error)
	// Find decodes every document matching filter into out, a pointer to a slice
	Find(ctx context.Context, collection string, filter bson.M, out interface{}, opts ...*options.FindOptions) error
	// WithLock runs fn while holding the mutation locks for ids
	WithLock(ctx context.Context, ids []string, fn func(ctx context.Context) error) error
	// WithTransaction runs fn as one unit of work where the backend supports it
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
