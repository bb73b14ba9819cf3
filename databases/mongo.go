package databases

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mongoStore struct {
	db           DatabaseHelper
	locks        *keyedLocker
	transactions bool
}

// NewMongoStore returns a Store backed by db. When transactions is set, unit-of-
// work callbacks run inside a session transaction, which requires a replica set.
func NewMongoStore(db DatabaseHelper, transactions bool) Store {
	return &mongoStore{
		db:           db,
		locks:        newKeyedLocker(),
		transactions: transactions,
	}
}

func (s *mongoStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func (s *mongoStore) Insert(ctx context.Context, collection string, doc interface{}) error {
	_, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (s *mongoStore) Replace(ctx context.Context, collection, id string, version int32, doc interface{}) error {
	coll := s.db.Collection(collection)
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id, "__v": version}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *mongoStore) Delete(ctx context.Context, collection, id string) error {
	n, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *mongoStore) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return s.db.Collection(collection).DeleteMany(ctx, filter)
}

func (s *mongoStore) Find(ctx context.Context, collection string, filter bson.M, out interface{}, opts ...*options.FindOptions) error {
	cur, err := s.db.Collection(collection).Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	return cur.All(ctx, out)
}

// WithLock only serializes callers within this process. Writers in other
// processes are caught by the version check in Replace.
func (s *mongoStore) WithLock(ctx context.Context, ids []string, fn func(ctx context.Context) error) error {
	return s.locks.withLock(ctx, ids, fn)
}

func (s *mongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil {
		zap.S().Errorw("transaction aborted", "error", err)
	}
	return err
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		userName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		caseName: {
			{Keys: bson.D{{Key: "caseNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: -1}}},
			{Keys: bson.D{{Key: "dueDate", Value: 1}}},
		},
		accidentName: {
			{Keys: bson.D{{Key: "caseID", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "policeReportNumber", Value: 1}}},
			{Keys: bson.D{{Key: "coordinates.latitude", Value: 1}, {Key: "coordinates.longitude", Value: 1}}},
		},
		vehicleName: {
			{Keys: bson.D{{Key: "accidentID", Value: 1}, {Key: "vehicleNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "licensePlate", Value: 1}}},
		},
		witnessName: {
			{Keys: bson.D{{Key: "accidentID", Value: 1}}},
		},
		evidenceName: {
			{Keys: bson.D{{Key: "evidenceNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "accidentID", Value: 1}}},
			{Keys: bson.D{{Key: "currentCustodian", Value: 1}}},
		},
		insuranceClaimName: {
			{Keys: bson.D{{Key: "claimNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "caseID", Value: 1}}},
		},
	}
	for name, models := range indexes {
		if err := db.Collection(name).CreateIndexes(ctx, models); err != nil {
			zap.S().Errorw("failed to create indexes", "collection", name, "error", err)
			return err
		}
	}
	return nil
}
