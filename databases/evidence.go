package databases

// go generate: mockery --name EvidenceDatabase

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/accident-recon-api/models"
)

const evidenceName = "evidence"

// EvidenceDatabase contains the methods to use with the evidence database
type EvidenceDatabase interface {
	FindByID(ctx context.Context, id string) (models.Evidence, error)
	FindByEvidenceNumber(ctx context.Context, number string) (*models.Evidence, error)
	FindByAccident(ctx context.Context, accidentID string) ([]models.Evidence, error)
	FindByCustodian(ctx context.Context, custodian string) ([]models.Evidence, error)
	FindByCustodyStatus(ctx context.Context, statuses ...models.CustodyStatus) ([]models.Evidence, error)
	Insert(ctx context.Context, e models.Evidence) error
	Update(ctx context.Context, e models.Evidence) (models.Evidence, error)
	DeleteByAccident(ctx context.Context, accidentID string) (int64, error)
}

type evidenceDatabase struct {
	records records[models.Evidence]
}

// NewEvidenceDatabase initializes a new instance of evidence database with the provided store
func NewEvidenceDatabase(store Store) EvidenceDatabase {
	return &evidenceDatabase{
		records: newRecords[models.Evidence](store, evidenceName, "evidence"),
	}
}

func (e *evidenceDatabase) FindByID(ctx context.Context, id string) (models.Evidence, error) {
	return e.records.get(ctx, id)
}

func (e *evidenceDatabase) FindByEvidenceNumber(ctx context.Context, number string) (*models.Evidence, error) {
	return e.records.findOne(ctx, bson.M{"evidenceNumber": strings.TrimSpace(number)})
}

func (e *evidenceDatabase) FindByAccident(ctx context.Context, accidentID string) ([]models.Evidence, error) {
	return e.records.find(ctx, bson.M{"accidentID": accidentID}, recentFirst())
}

func (e *evidenceDatabase) FindByCustodian(ctx context.Context, custodian string) ([]models.Evidence, error) {
	custodian = strings.TrimSpace(custodian)
	if custodian == "" {
		return []models.Evidence{}, nil
	}
	return e.records.find(ctx, bson.M{"currentCustodian": custodian}, recentFirst())
}

func (e *evidenceDatabase) FindByCustodyStatus(ctx context.Context, statuses ...models.CustodyStatus) ([]models.Evidence, error) {
	if len(statuses) == 0 {
		return []models.Evidence{}, nil
	}
	return e.records.find(ctx, bson.M{"custodyStatus": bson.M{"$in": statuses}}, recentFirst())
}

func (e *evidenceDatabase) Insert(ctx context.Context, ev models.Evidence) error {
	return e.records.insert(ctx, ev.ID, ev)
}

func (e *evidenceDatabase) Update(ctx context.Context, ev models.Evidence) (models.Evidence, error) {
	expected := ev.Version
	ev.Version++
	if err := e.records.replace(ctx, ev.ID, expected, ev); err != nil {
		return models.Evidence{}, err
	}
	return ev, nil
}

func (e *evidenceDatabase) DeleteByAccident(ctx context.Context, accidentID string) (int64, error) {
	return e.records.deleteMany(ctx, bson.M{"accidentID": accidentID})
}
