package databases

// go generate: mockery --name AccidentDatabase

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/accident-recon-api/models"
)

const accidentName = "accidents"

// MilesPerDegree approximates the length of one degree of latitude
const MilesPerDegree = 69.0

// AccidentFilter narrows accident listings. Zero fields do not filter.
type AccidentFilter struct {
	Weather        []models.Weather
	RoadConditions []models.RoadCondition
	From           time.Time
	To             time.Time
}

func (f AccidentFilter) bson() bson.M {
	filter := bson.M{}
	if len(f.Weather) > 0 {
		filter["weather"] = bson.M{"$in": f.Weather}
	}
	if len(f.RoadConditions) > 0 {
		filter["roadCondition"] = bson.M{"$in": f.RoadConditions}
	}
	if occurred := dateRange(f.From, f.To); len(occurred) > 0 {
		filter["dateTime"] = occurred
	}
	return filter
}

// AccidentDatabase contains the methods to use with the accident database
type AccidentDatabase interface {
	FindByID(ctx context.Context, id string) (models.Accident, error)
	FindByCaseID(ctx context.Context, caseID string) (*models.Accident, error)
	FindByPoliceReportNumber(ctx context.Context, number string) ([]models.Accident, error)
	Find(ctx context.Context, f AccidentFilter) ([]models.Accident, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Accident, error)
	FindNearLocation(ctx context.Context, lat, lng, radiusMiles float64) ([]models.Accident, error)
	Insert(ctx context.Context, a models.Accident) error
	Update(ctx context.Context, a models.Accident) (models.Accident, error)
	Delete(ctx context.Context, id string) error
	DeleteByCase(ctx context.Context, caseID string) (int64, error)
	Statistics(ctx context.Context, f AccidentFilter) (models.AccidentStatistics, error)
}

type accidentDatabase struct {
	records records[models.Accident]
}

// NewAccidentDatabase initializes a new instance of accident database with the provided store
func NewAccidentDatabase(store Store) AccidentDatabase {
	return &accidentDatabase{
		records: newRecords[models.Accident](store, accidentName, "accident"),
	}
}

func (a *accidentDatabase) FindByID(ctx context.Context, id string) (models.Accident, error) {
	return a.records.get(ctx, id)
}

// FindByCaseID returns nil when the case has no accident yet
func (a *accidentDatabase) FindByCaseID(ctx context.Context, caseID string) (*models.Accident, error) {
	return a.records.findOne(ctx, bson.M{"caseID": caseID})
}

func (a *accidentDatabase) FindByPoliceReportNumber(ctx context.Context, number string) ([]models.Accident, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return []models.Accident{}, nil
	}
	return a.records.find(ctx, bson.M{"policeReportNumber": number}, recentFirst())
}

func (a *accidentDatabase) Find(ctx context.Context, f AccidentFilter) ([]models.Accident, error) {
	return a.records.find(ctx, f.bson(), recentFirst())
}

func (a *accidentDatabase) FindByDateRange(ctx context.Context, from, to time.Time) ([]models.Accident, error) {
	return a.records.find(ctx, AccidentFilter{From: from, To: to}.bson(),
		options.Find().SetSort(bson.D{{Key: "dateTime", Value: -1}}))
}

// FindNearLocation returns accidents within radiusMiles of (lat, lng), nearest
// first. The store is queried with a bounding box and the result refined with
// the flat-earth distance. Boxes crossing the antimeridian are not split.
func (a *accidentDatabase) FindNearLocation(ctx context.Context, lat, lng, radiusMiles float64) ([]models.Accident, error) {
	if radiusMiles < 0 {
		return []models.Accident{}, nil
	}
	latDelta := radiusMiles / MilesPerDegree
	lngScale := MilesPerDegree * math.Cos(lat*math.Pi/180)
	lngDelta := 180.0
	if lngScale > 1e-9 {
		lngDelta = math.Min(radiusMiles/lngScale, 180)
	}
	filter := bson.M{
		"coordinates.latitude":  bson.M{"$gte": lat - latDelta, "$lte": lat + latDelta},
		"coordinates.longitude": bson.M{"$gte": lng - lngDelta, "$lte": lng + lngDelta},
	}
	boxed, err := a.records.find(ctx, filter)
	if err != nil {
		return nil, err
	}

	type hit struct {
		accident models.Accident
		miles    float64
	}
	hits := make([]hit, 0, len(boxed))
	for _, acc := range boxed {
		if acc.Coordinates == nil {
			continue
		}
		d := DistanceMiles(lat, lng, acc.Coordinates.Latitude, acc.Coordinates.Longitude)
		if d <= radiusMiles {
			hits = append(hits, hit{accident: acc, miles: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].miles < hits[j].miles })

	out := make([]models.Accident, len(hits))
	for i, h := range hits {
		out[i] = h.accident
	}
	return out, nil
}

// DistanceMiles approximates the distance between two points using 69 miles per
// degree of latitude and a cosine-scaled degree of longitude.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	meanLat := (lat1 + lat2) / 2 * math.Pi / 180
	dy := (lat2 - lat1) * MilesPerDegree
	dx := (lng2 - lng1) * MilesPerDegree * math.Cos(meanLat)
	return math.Hypot(dx, dy)
}

func (a *accidentDatabase) Insert(ctx context.Context, acc models.Accident) error {
	return a.records.insert(ctx, acc.ID, acc)
}

func (a *accidentDatabase) Update(ctx context.Context, acc models.Accident) (models.Accident, error) {
	expected := acc.Version
	acc.Version++
	if err := a.records.replace(ctx, acc.ID, expected, acc); err != nil {
		return models.Accident{}, err
	}
	return acc, nil
}

func (a *accidentDatabase) Delete(ctx context.Context, id string) error {
	return a.records.delete(ctx, id)
}

func (a *accidentDatabase) DeleteByCase(ctx context.Context, caseID string) (int64, error) {
	return a.records.deleteMany(ctx, bson.M{"caseID": caseID})
}

func (a *accidentDatabase) Statistics(ctx context.Context, f AccidentFilter) (models.AccidentStatistics, error) {
	accidents, err := a.records.find(ctx, f.bson())
	if err != nil {
		return models.AccidentStatistics{}, err
	}
	return SummarizeAccidents(accidents), nil
}
