package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/accident-recon-api/api"
	"github.com/linesmerrill/accident-recon-api/config"
	"github.com/linesmerrill/accident-recon-api/databases"
	"github.com/linesmerrill/accident-recon-api/investigation"
	"github.com/linesmerrill/accident-recon-api/models"
)

// DefaultRadiusMiles is used by AccidentsNearHandler when radius is omitted
const DefaultRadiusMiles = 5.0

// Accident exported for testing purposes. It also serves the vehicles and
// witnesses recorded against an accident.
type Accident struct {
	Svc *investigation.Service
}

func accidentFilter(r *http.Request) (databases.AccidentFilter, error) {
	from, err := queryTime(r, "from")
	if err != nil {
		return databases.AccidentFilter{}, err
	}
	to, err := queryTime(r, "to")
	if err != nil {
		return databases.AccidentFilter{}, err
	}
	return databases.AccidentFilter{
		Weather:        enums[models.Weather](queryList(r, "weather")),
		RoadConditions: enums[models.RoadCondition](queryList(r, "road_condition")),
		From:           from,
		To:             to,
	}, nil
}

// CreateAccidentHandler records the accident of a case
func (a Accident) CreateAccidentHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Accident
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.CaseID = mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accident, err := a.Svc.CreateAccident(ctx, req)
	if err != nil {
		config.ErrorFor("failed to create accident", w, err)
		return
	}
	zap.S().Infow("accident created", "accidentID", accident.ID, "caseID", accident.CaseID)
	writeJSON(w, http.StatusCreated, accident)
}

// AccidentHandler returns an accident by ID
func (a Accident) AccidentHandler(w http.ResponseWriter, r *http.Request) {
	accidentID := mux.Vars(r)["accident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accident, err := a.Svc.Repos().Accidents.FindByID(ctx, accidentID)
	if err != nil {
		config.ErrorFor("failed to get accident by ID", w, err)
		return
	}
	writeJSON(w, http.StatusOK, accident)
}

// UpdateAccidentHandler changes an accident's details
func (a Accident) UpdateAccidentHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Accident
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.ID = mux.Vars(r)["accident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accident, err := a.Svc.UpdateAccident(ctx, req)
	if err != nil {
		config.ErrorFor("failed to update accident", w, err)
		return
	}
	writeJSON(w, http.StatusOK, accident)
}

// AccidentsHandler lists accidents by weather, road condition and date range
func (a Accident) AccidentsHandler(w http.ResponseWriter, r *http.Request) {
	f, err := accidentFilter(r)
	if err != nil {
		config.ErrorFor("failed to parse filter", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accidents, err := a.Svc.Repos().Accidents.Find(ctx, f)
	if err != nil {
		config.ErrorFor("failed to get accidents", w, err)
		return
	}
	writeJSON(w, http.StatusOK, accidents)
}

// AccidentsNearHandler lists accidents within radius miles of lat/lng
func (a Accident) AccidentsNearHandler(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		config.ErrorFor("failed to parse location", w, err)
		return
	}
	lng, err := queryFloat(r, "lng")
	if err != nil {
		config.ErrorFor("failed to parse location", w, err)
		return
	}
	radius := DefaultRadiusMiles
	if r.URL.Query().Get("radius") != "" {
		if radius, err = queryFloat(r, "radius"); err != nil {
			config.ErrorFor("failed to parse radius", w, err)
			return
		}
	}
	if radius <= 0 {
		config.ErrorFor("failed to parse radius", w, models.NewValidationError("radius", "must be positive"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accidents, err := a.Svc.Repos().Accidents.FindNearLocation(ctx, lat, lng, radius)
	if err != nil {
		config.ErrorFor("failed to get accidents near location", w, err)
		return
	}
	writeJSON(w, http.StatusOK, accidents)
}

// AccidentsByPoliceReportHandler returns the accidents filed under a police
// report number
func (a Accident) AccidentsByPoliceReportHandler(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["report_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	accidents, err := a.Svc.Repos().Accidents.FindByPoliceReportNumber(ctx, number)
	if err != nil {
		config.ErrorFor("failed to get accidents by police report", w, err)
		return
	}
	writeJSON(w, http.StatusOK, accidents)
}

// AccidentStatisticsHandler summarizes the accidents matching the query filters
func (a Accident) AccidentStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	f, err := accidentFilter(r)
	if err != nil {
		config.ErrorFor("failed to parse filter", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	stats, err := a.Svc.AccidentStatistics(ctx, f)
	if err != nil {
		config.ErrorFor("failed to get accident statistics", w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// VehiclesHandler lists the vehicles involved in an accident
func (a Accident) VehiclesHandler(w http.ResponseWriter, r *http.Request) {
	accidentID := mux.Vars(r)["accident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	vehicles, err := a.Svc.Repos().Vehicles.FindByAccident(ctx, accidentID)
	if err != nil {
		config.ErrorFor("failed to get vehicles", w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// CreateVehicleHandler adds a vehicle to an accident
func (a Accident) CreateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Vehicle
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.AccidentID = mux.Vars(r)["accident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	vehicle, err := a.Svc.CreateVehicle(ctx, req)
	if err != nil {
		config.ErrorFor("failed to create vehicle", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

// UpdateVehicleHandler changes a vehicle's details
func (a Accident) UpdateVehicleHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Vehicle
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.ID = mux.Vars(r)["vehicle_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	vehicle, err := a.Svc.UpdateVehicle(ctx, req)
	if err != nil {
		config.ErrorFor("failed to update vehicle", w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

// VehiclesByPlateHandler finds vehicles by license plate, ignoring case
func (a Accident) VehiclesByPlateHandler(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	vehicles, err := a.Svc.Repos().Vehicles.FindByLicensePlate(ctx, plate)
	if err != nil {
		config.ErrorFor("failed to get vehicles by plate", w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}

// WitnessesHandler lists the witnesses of an accident, optionally only those
// of the given reliability
func (a Accident) WitnessesHandler(w http.ResponseWriter, r *http.Request) {
	accidentID := mux.Vars(r)["accident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	var (
		witnesses []models.Witness
		err       error
	)
	if reliability := r.URL.Query().Get("reliability"); reliability != "" {
		witnesses, err = a.Svc.Repos().Witnesses.FindByReliability(ctx, accidentID, models.Reliability(reliability))
	} else {
		witnesses, err = a.Svc.Repos().Witnesses.FindByAccident(ctx, accidentID)
	}
	if err != nil {
		config.ErrorFor("failed to get witnesses", w, err)
		return
	}
	writeJSON(w, http.StatusOK, witnesses)
}

// CreateWitnessHandler records a witness statement against an accident
func (a Accident) CreateWitnessHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Witness
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.AccidentID = mux.Vars(r)["accident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	witness, err := a.Svc.CreateWitness(ctx, req)
	if err != nil {
		config.ErrorFor("failed to create witness", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, witness)
}

// UpdateWitnessHandler changes a witness's details
func (a Accident) UpdateWitnessHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Witness
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.ID = mux.Vars(r)["witness_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	witness, err := a.Svc.UpdateWitness(ctx, req)
	if err != nil {
		config.ErrorFor("failed to update witness", w, err)
		return
	}
	writeJSON(w, http.StatusOK, witness)
}
