package databases

// go generate: mockery --name WitnessDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/accident-recon-api/models"
)

const witnessName = "witnesses"

// WitnessDatabase contains the methods to use with the witness database
type WitnessDatabase interface {
	FindByID(ctx context.Context, id string) (models.Witness, error)
	FindByAccident(ctx context.Context, accidentID string) ([]models.Witness, error)
	FindByReliability(ctx context.Context, accidentID string, reliability models.Reliability) ([]models.Witness, error)
	Insert(ctx context.Context, w models.Witness) error
	Update(ctx context.Context, w models.Witness) (models.Witness, error)
	DeleteByAccident(ctx context.Context, accidentID string) (int64, error)
}

type witnessDatabase struct {
	records records[models.Witness]
}

// NewWitnessDatabase initializes a new instance of witness database with the provided store
func NewWitnessDatabase(store Store) WitnessDatabase {
	return &witnessDatabase{
		records: newRecords[models.Witness](store, witnessName, "witness"),
	}
}

func (w *witnessDatabase) FindByID(ctx context.Context, id string) (models.Witness, error) {
	return w.records.get(ctx, id)
}

func (w *witnessDatabase) FindByAccident(ctx context.Context, accidentID string) ([]models.Witness, error) {
	return w.records.find(ctx, bson.M{"accidentID": accidentID}, recentFirst())
}

func (w *witnessDatabase) FindByReliability(ctx context.Context, accidentID string, reliability models.Reliability) ([]models.Witness, error) {
	return w.records.find(ctx, bson.M{"accidentID": accidentID, "reliability": reliability}, recentFirst())
}

func (w *witnessDatabase) Insert(ctx context.Context, witness models.Witness) error {
	return w.records.insert(ctx, witness.ID, witness)
}

func (w *witnessDatabase) Update(ctx context.Context, witness models.Witness) (models.Witness, error) {
	expected := witness.Version
	witness.Version++
	if err := w.records.replace(ctx, witness.ID, expected, witness); err != nil {
		return models.Witness{}, err
	}
	return witness, nil
}

func (w *witnessDatabase) DeleteByAccident(ctx context.Context, accidentID string) (int64, error) {
	return w.records.deleteMany(ctx, bson.M{"accidentID": accidentID})
}
