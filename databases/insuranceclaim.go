package databases

// go generate: mockery --name InsuranceClaimDatabase

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/linesmerrill/accident-recon-api/models"
)

const insuranceClaimName = "insuranceClaims"

// ClaimFilter narrows claim listings. Zero fields do not filter.
type ClaimFilter struct {
	CaseID   string
	Statuses []models.ClaimStatus
	Types    []models.ClaimType
	Insurer  string
}

func (f ClaimFilter) bson() bson.M {
	filter := bson.M{}
	if f.CaseID != "" {
		filter["caseID"] = f.CaseID
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if len(f.Types) > 0 {
		filter["type"] = bson.M{"$in": f.Types}
	}
	if f.Insurer != "" {
		filter["insurer"] = f.Insurer
	}
	return filter
}

// pendingStatuses are the statuses for which InsuranceClaim.IsPending holds
var pendingStatuses = []models.ClaimStatus{
	models.ClaimStatusSubmitted,
	models.ClaimStatusUnderReview,
	models.ClaimStatusAdditionalInfoRequired,
}

// InsuranceClaimDatabase contains the methods to use with the insurance claim database
type InsuranceClaimDatabase interface {
	FindByID(ctx context.Context, id string) (models.InsuranceClaim, error)
	FindByClaimNumber(ctx context.Context, number string) (*models.InsuranceClaim, error)
	Find(ctx context.Context, f ClaimFilter) ([]models.InsuranceClaim, error)
	FindByCase(ctx context.Context, caseID string) ([]models.InsuranceClaim, error)
	FindByStatus(ctx context.Context, statuses ...models.ClaimStatus) ([]models.InsuranceClaim, error)
	FindPending(ctx context.Context) ([]models.InsuranceClaim, error)
	Insert(ctx context.Context, c models.InsuranceClaim) error
	Update(ctx context.Context, c models.InsuranceClaim) (models.InsuranceClaim, error)
	DeleteByCase(ctx context.Context, caseID string) (int64, error)
	Statistics(ctx context.Context, f ClaimFilter) (models.ClaimStatistics, error)
}

type insuranceClaimDatabase struct {
	records records[models.InsuranceClaim]
}

// NewInsuranceClaimDatabase initializes a new instance of insurance claim database with the provided store
func NewInsuranceClaimDatabase(store Store) InsuranceClaimDatabase {
	return &insuranceClaimDatabase{
		records: newRecords[models.InsuranceClaim](store, insuranceClaimName, "insurance claim"),
	}
}

func (c *insuranceClaimDatabase) FindByID(ctx context.Context, id string) (models.InsuranceClaim, error) {
	return c.records.get(ctx, id)
}

func (c *insuranceClaimDatabase) FindByClaimNumber(ctx context.Context, number string) (*models.InsuranceClaim, error) {
	return c.records.findOne(ctx, bson.M{"claimNumber": strings.TrimSpace(number)})
}

func (c *insuranceClaimDatabase) Find(ctx context.Context, f ClaimFilter) ([]models.InsuranceClaim, error) {
	return c.records.find(ctx, f.bson(), recentFirst())
}

func (c *insuranceClaimDatabase) FindByCase(ctx context.Context, caseID string) ([]models.InsuranceClaim, error) {
	if caseID == "" {
		return []models.InsuranceClaim{}, nil
	}
	return c.Find(ctx, ClaimFilter{CaseID: caseID})
}

func (c *insuranceClaimDatabase) FindByStatus(ctx context.Context, statuses ...models.ClaimStatus) ([]models.InsuranceClaim, error) {
	if len(statuses) == 0 {
		return []models.InsuranceClaim{}, nil
	}
	return c.Find(ctx, ClaimFilter{Statuses: statuses})
}

func (c *insuranceClaimDatabase) FindPending(ctx context.Context) ([]models.InsuranceClaim, error) {
	return c.FindByStatus(ctx, pendingStatuses...)
}

func (c *insuranceClaimDatabase) Insert(ctx context.Context, claim models.InsuranceClaim) error {
	return c.records.insert(ctx, claim.ID, claim)
}

func (c *insuranceClaimDatabase) Update(ctx context.Context, claim models.InsuranceClaim) (models.InsuranceClaim, error) {
	expected := claim.Version
	claim.Version++
	if err := c.records.replace(ctx, claim.ID, expected, claim); err != nil {
		return models.InsuranceClaim{}, err
	}
	return claim, nil
}

func (c *insuranceClaimDatabase) DeleteByCase(ctx context.Context, caseID string) (int64, error) {
	return c.records.deleteMany(ctx, bson.M{"caseID": caseID})
}

func (c *insuranceClaimDatabase) Statistics(ctx context.Context, f ClaimFilter) (models.ClaimStatistics, error) {
	claims, err := c.records.find(ctx, f.bson())
	if err != nil {
		return models.ClaimStatistics{}, err
	}
	return SummarizeClaims(claims), nil
}
