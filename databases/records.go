package databases

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/accident-recon-api/models"
)

// records is the typed access to one collection shared by the repositories. It
// maps store sentinels onto the models error types.
type records[T any] struct {
	store Store
	name  string
	kind  string
}

func newRecords[T any](store Store, name, kind string) records[T] {
	return records[T]{store: store, name: name, kind: kind}
}

func (r records[T]) wrap(op, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return &models.NotFoundError{Kind: r.kind, ID: id}
	case errors.Is(err, ErrConflict):
		return &models.ConflictError{Kind: r.kind, ID: id}
	case errors.Is(err, ErrDuplicateKey):
		return models.NewValidationError("_id", "%s %q already exists", r.kind, id)
	}
	return &models.StorageError{Op: op + " " + r.name, Err: err}
}

func (r records[T]) get(ctx context.Context, id string) (T, error) {
	var out T
	if id == "" {
		return out, &models.NotFoundError{Kind: r.kind, ID: id}
	}
	if err := r.store.Get(ctx, r.name, id, &out); err != nil {
		var zero T
		return zero, r.wrap("get", id, err)
	}
	return out, nil
}

// find never returns a nil slice
func (r records[T]) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	out := []T{}
	if err := r.store.Find(ctx, r.name, filter, &out, opts...); err != nil {
		return []T{}, r.wrap("find", "", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// findOne returns nil when nothing matches
func (r records[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	found, err := r.find(ctx, filter, options.Find().SetLimit(1))
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (r records[T]) insert(ctx context.Context, id string, doc T) error {
	return r.wrap("insert", id, r.store.Insert(ctx, r.name, doc))
}

func (r records[T]) replace(ctx context.Context, id string, version int32, doc T) error {
	return r.wrap("replace", id, r.store.Replace(ctx, r.name, id, version, doc))
}

func (r records[T]) delete(ctx context.Context, id string) error {
	return r.wrap("delete", id, r.store.Delete(ctx, r.name, id))
}

func (r records[T]) deleteMany(ctx context.Context, filter bson.M) (int64, error) {
	n, err := r.store.DeleteMany(ctx, r.name, filter)
	return n, r.wrap("delete", "", err)
}

// recentFirst is the default listing order
func recentFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
}

// dateRange builds a {$gte, $lte} condition; a zero bound is left open
func dateRange(from, to time.Time) bson.M {
	cond := bson.M{}
	if !from.IsZero() {
		cond["$gte"] = from
	}
	if !to.IsZero() {
		cond["$lte"] = to
	}
	return cond
}
