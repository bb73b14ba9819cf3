package databases

// go generate: mockery --name VehicleDatabase

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/accident-recon-api/models"
)

const vehicleName = "vehicles"

// VehicleDatabase contains the methods to use with the vehicle database
type VehicleDatabase interface {
	FindByID(ctx context.Context, id string) (models.Vehicle, error)
	FindByAccident(ctx context.Context, accidentID string) ([]models.Vehicle, error)
	FindByLicensePlate(ctx context.Context, plate string) ([]models.Vehicle, error)
	NextVehicleNumber(ctx context.Context, accidentID string) (int, error)
	Insert(ctx context.Context, v models.Vehicle) error
	Update(ctx context.Context, v models.Vehicle) (models.Vehicle, error)
	DeleteByAccident(ctx context.Context, accidentID string) (int64, error)
}

type vehicleDatabase struct {
	records records[models.Vehicle]
}

// NewVehicleDatabase initializes a new instance of vehicle database with the provided store
func NewVehicleDatabase(store Store) VehicleDatabase {
	return &vehicleDatabase{
		records: newRecords[models.Vehicle](store, vehicleName, "vehicle"),
	}
}

func (v *vehicleDatabase) FindByID(ctx context.Context, id string) (models.Vehicle, error) {
	return v.records.get(ctx, id)
}

// FindByAccident orders by vehicle number
func (v *vehicleDatabase) FindByAccident(ctx context.Context, accidentID string) ([]models.Vehicle, error) {
	return v.records.find(ctx, bson.M{"accidentID": accidentID},
		options.Find().SetSort(bson.D{{Key: "vehicleNumber", Value: 1}}))
}

// FindByLicensePlate matches the stored upper-cased plate exactly
func (v *vehicleDatabase) FindByLicensePlate(ctx context.Context, plate string) ([]models.Vehicle, error) {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	if plate == "" {
		return []models.Vehicle{}, nil
	}
	return v.records.find(ctx, bson.M{"licensePlate": plate}, recentFirst())
}

// NextVehicleNumber returns one more than the highest number used in the accident
func (v *vehicleDatabase) NextVehicleNumber(ctx context.Context, accidentID string) (int, error) {
	last, err := v.records.find(ctx, bson.M{"accidentID": accidentID},
		options.Find().SetSort(bson.D{{Key: "vehicleNumber", Value: -1}}).SetLimit(1))
	if err != nil {
		return 0, err
	}
	if len(last) == 0 {
		return 1, nil
	}
	return last[0].VehicleNumber + 1, nil
}

func (v *vehicleDatabase) Insert(ctx context.Context, vehicle models.Vehicle) error {
	return v.records.insert(ctx, vehicle.ID, vehicle)
}

func (v *vehicleDatabase) Update(ctx context.Context, vehicle models.Vehicle) (models.Vehicle, error) {
	expected := vehicle.Version
	vehicle.Version++
	if err := v.records.replace(ctx, vehicle.ID, expected, vehicle); err != nil {
		return models.Vehicle{}, err
	}
	return vehicle, nil
}

func (v *vehicleDatabase) DeleteByAccident(ctx context.Context, accidentID string) (int64, error) {
	return v.records.deleteMany(ctx, bson.M{"accidentID": accidentID})
}
