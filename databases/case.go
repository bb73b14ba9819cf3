package databases

// go generate: mockery --name CaseDatabase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/linesmerrill/accident-recon-api/models"
)

const caseName = "cases"

// CaseFilter narrows case listings. Zero fields do not filter.
type CaseFilter struct {
	Statuses   []models.CaseStatus
	Priorities []models.Priority
	UserID     string
	AssignedTo string
	Tag        string
	From       time.Time
	To         time.Time
	// Limit and Page paginate Find; a zero Limit returns every match
	Limit int
	Page  int
}

func (f CaseFilter) bson() bson.M {
	filter := bson.M{}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}
	if len(f.Priorities) > 0 {
		filter["priority"] = bson.M{"$in": f.Priorities}
	}
	if f.UserID != "" {
		filter["userID"] = f.UserID
	}
	if f.AssignedTo != "" {
		filter["assignedTo"] = f.AssignedTo
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if created := dateRange(f.From, f.To); len(created) > 0 {
		filter["createdAt"] = created
	}
	return filter
}

// CaseDatabase contains the methods to use with the case database
type CaseDatabase interface {
	FindByID(ctx context.Context, id string) (models.Case, error)
	FindByCaseNumber(ctx context.Context, number string) (*models.Case, error)
	Find(ctx context.Context, f CaseFilter) ([]models.Case, error)
	FindByUser(ctx context.Context, userID string) ([]models.Case, error)
	FindByStatus(ctx context.Context, statuses ...models.CaseStatus) ([]models.Case, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Case, error)
	FindOverdue(ctx context.Context, now time.Time) ([]models.Case, error)
	Search(ctx context.Context, term string) ([]models.Case, error)
	FindFullDetail(ctx context.Context, id string, now time.Time) (models.CaseDetail, error)
	Insert(ctx context.Context, c models.Case) error
	Update(ctx context.Context, c models.Case) (models.Case, error)
	Delete(ctx context.Context, id string) error
	Statistics(ctx context.Context, f CaseFilter, now time.Time) (models.CaseStatistics, error)
}

type caseDatabase struct {
	records   records[models.Case]
	accidents records[models.Accident]
	vehicles  records[models.Vehicle]
	witnesses records[models.Witness]
	evidence  records[models.Evidence]
	claims    records[models.InsuranceClaim]
}

// NewCaseDatabase initializes a new instance of case database with the provided store
func NewCaseDatabase(store Store) CaseDatabase {
	return &caseDatabase{
		records:   newRecords[models.Case](store, caseName, "case"),
		accidents: newRecords[models.Accident](store, accidentName, "accident"),
		vehicles:  newRecords[models.Vehicle](store, vehicleName, "vehicle"),
		witnesses: newRecords[models.Witness](store, witnessName, "witness"),
		evidence:  newRecords[models.Evidence](store, evidenceName, "evidence"),
		claims:    newRecords[models.InsuranceClaim](store, insuranceClaimName, "insurance claim"),
	}
}

func (c *caseDatabase) FindByID(ctx context.Context, id string) (models.Case, error) {
	return c.records.get(ctx, id)
}

func (c *caseDatabase) FindByCaseNumber(ctx context.Context, number string) (*models.Case, error) {
	return c.records.findOne(ctx, bson.M{"caseNumber": strings.TrimSpace(number)})
}

func (c *caseDatabase) Find(ctx context.Context, f CaseFilter) ([]models.Case, error) {
	return c.records.find(ctx, f.bson(), newMongoPaginate(f.Limit, f.Page).getPaginatedOpts())
}

func (c *caseDatabase) FindByUser(ctx context.Context, userID string) ([]models.Case, error) {
	return c.Find(ctx, CaseFilter{UserID: userID})
}

func (c *caseDatabase) FindByStatus(ctx context.Context, statuses ...models.CaseStatus) ([]models.Case, error) {
	if len(statuses) == 0 {
		return []models.Case{}, nil
	}
	return c.Find(ctx, CaseFilter{Statuses: statuses})
}

func (c *caseDatabase) FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Case, error) {
	return c.Find(ctx, CaseFilter{From: from, To: to})
}

// FindOverdue returns open cases past their due date, earliest due first
func (c *caseDatabase) FindOverdue(ctx context.Context, now time.Time) ([]models.Case, error) {
	filter := bson.M{
		"dueDate": bson.M{"$lt": now},
		"status":  bson.M{"$ne": models.CaseStatusClosed},
	}
	return c.records.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}}))
}

// Search matches term case-insensitively against title, case number and description
func (c *caseDatabase) Search(ctx context.Context, term string) ([]models.Case, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.Case{}, nil
	}
	pattern := bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
	filter := bson.M{"$or": []bson.M{
		{"title": pattern},
		{"caseNumber": pattern},
		{"description": pattern},
	}}
	return c.records.find(ctx, filter, recentFirst())
}

// FindFullDetail loads a case with its accident, the accident's vehicles,
// witnesses and evidence, and the case's claims.
func (c *caseDatabase) FindFullDetail(ctx context.Context, id string, now time.Time) (models.CaseDetail, error) {
	kase, err := c.records.get(ctx, id)
	if err != nil {
		return models.CaseDetail{}, err
	}
	detail := models.CaseDetail{
		Case:      kase,
		IsOverdue: kase.IsOverdue(now),
		DaysOpen:  kase.DaysOpen(now),
	}

	g, gctx := errgroup.WithContext(ctx)
	var accident *models.Accident
	g.Go(func() error {
		var err error
		accident, err = c.accidents.findOne(gctx, bson.M{"caseID": id})
		return err
	})
	g.Go(func() error {
		var err error
		detail.Claims, err = c.claims.find(gctx, bson.M{"caseID": id}, recentFirst())
		return err
	})
	if err := g.Wait(); err != nil {
		return models.CaseDetail{}, err
	}
	if accident == nil {
		return detail, nil
	}

	ad := &models.AccidentDetail{Accident: *accident, Severity: accident.Severity()}
	byAccident := bson.M{"accidentID": accident.ID}
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ad.Vehicles, err = c.vehicles.find(gctx, byAccident, options.Find().SetSort(bson.D{{Key: "vehicleNumber", Value: 1}}))
		return err
	})
	g.Go(func() error {
		var err error
		ad.Witnesses, err = c.witnesses.find(gctx, byAccident, recentFirst())
		return err
	})
	g.Go(func() error {
		var err error
		ad.Evidence, err = c.evidence.find(gctx, byAccident, recentFirst())
		return err
	})
	if err := g.Wait(); err != nil {
		return models.CaseDetail{}, err
	}
	detail.Accident = ad
	return detail, nil
}

func (c *caseDatabase) Insert(ctx context.Context, kase models.Case) error {
	return c.records.insert(ctx, kase.ID, kase)
}

// Update writes kase if its version is still current and returns the stored copy
func (c *caseDatabase) Update(ctx context.Context, kase models.Case) (models.Case, error) {
	expected := kase.Version
	kase.Version++
	if err := c.records.replace(ctx, kase.ID, expected, kase); err != nil {
		return models.Case{}, err
	}
	return kase, nil
}

func (c *caseDatabase) Delete(ctx context.Context, id string) error {
	return c.records.delete(ctx, id)
}

func (c *caseDatabase) Statistics(ctx context.Context, f CaseFilter, now time.Time) (models.CaseStatistics, error) {
	cases, err := c.records.find(ctx, f.bson())
	if err != nil {
		return models.CaseStatistics{}, err
	}
	return SummarizeCases(cases, now), nil
}
