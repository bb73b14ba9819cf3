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

// Case exported for testing purposes
type Case struct {
	Svc *investigation.Service
}

type createCaseRequest struct {
	models.Case
	Accident *models.Accident `json:"accident,omitempty"`
}

type caseWithAccident struct {
	Case     models.Case     `json:"case"`
	Accident models.Accident `json:"accident"`
}

type caseStatusRequest struct {
	Status models.CaseStatus `json:"status"`
	Notes  string            `json:"notes"`
}

type assignRequest struct {
	AssignedTo string `json:"assignedTo"`
}

func caseFilter(r *http.Request) (databases.CaseFilter, error) {
	from, err := queryTime(r, "from")
	if err != nil {
		return databases.CaseFilter{}, err
	}
	to, err := queryTime(r, "to")
	if err != nil {
		return databases.CaseFilter{}, err
	}
	q := r.URL.Query()
	return databases.CaseFilter{
		Statuses:   enums[models.CaseStatus](queryList(r, "status")),
		Priorities: enums[models.Priority](queryList(r, "priority")),
		UserID:     q.Get("user_id"),
		AssignedTo: q.Get("assigned_to"),
		Tag:        q.Get("tag"),
		From:       from,
		To:         to,
		Limit:      queryInt(r, "limit", 0),
		Page:       queryInt(r, "page", 0),
	}, nil
}

// CasesHandler lists cases matching the query filters, or the cases whose
// number, title or description contain q
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if term := r.URL.Query().Get("q"); term != "" {
		cases, err := c.Svc.Repos().Cases.Search(ctx, term)
		if err != nil {
			config.ErrorFor("failed to search cases", w, err)
			return
		}
		writeJSON(w, http.StatusOK, cases)
		return
	}

	f, err := caseFilter(r)
	if err != nil {
		config.ErrorFor("failed to parse filter", w, err)
		return
	}
	cases, err := c.Svc.Repos().Cases.Find(ctx, f)
	if err != nil {
		config.ErrorFor("failed to get cases", w, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// CreateCaseHandler opens a case. When the body carries an accident, both are
// stored together or not at all.
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	if req.UserID == "" {
		req.UserID = api.UserID(r.Context())
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if req.Accident != nil {
		kase, accident, err := c.Svc.CreateCaseWithAccident(ctx, req.Case, *req.Accident)
		if err != nil {
			config.ErrorFor("failed to create case", w, err)
			return
		}
		zap.S().Infow("case created", "caseID", kase.ID, "caseNumber", kase.CaseNumber, "accidentID", accident.ID)
		writeJSON(w, http.StatusCreated, caseWithAccident{Case: kase, Accident: accident})
		return
	}

	kase, err := c.Svc.CreateCase(ctx, req.Case)
	if err != nil {
		config.ErrorFor("failed to create case", w, err)
		return
	}
	zap.S().Infow("case created", "caseID", kase.ID, "caseNumber", kase.CaseNumber)
	writeJSON(w, http.StatusCreated, kase)
}

// CaseHandler returns a case with its accident, vehicles, witnesses, evidence
// and claims
func (c Case) CaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	detail, err := c.Svc.CaseDetail(ctx, caseID)
	if err != nil {
		config.ErrorFor("failed to get case by ID", w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// CaseByNumberHandler returns a case by its case number
func (c Case) CaseByNumberHandler(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["case_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	kase, err := c.Svc.Repos().Cases.FindByCaseNumber(ctx, number)
	if err == nil && kase == nil {
		err = &models.NotFoundError{Kind: "case", ID: number}
	}
	if err != nil {
		config.ErrorFor("failed to get case by number", w, err)
		return
	}
	writeJSON(w, http.StatusOK, kase)
}

// UpdateCaseHandler changes a case's descriptive fields
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Case
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.ID = mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	kase, err := c.Svc.UpdateCase(ctx, req)
	if err != nil {
		config.ErrorFor("failed to update case", w, err)
		return
	}
	writeJSON(w, http.StatusOK, kase)
}

// CaseStatusHandler moves a case through its lifecycle
func (c Case) CaseStatusHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	var req caseStatusRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	kase, err := c.Svc.TransitionCaseStatus(ctx, caseID, req.Status, req.Notes)
	if err != nil {
		config.ErrorFor("failed to change case status", w, err)
		return
	}
	zap.S().Infow("case status changed", "caseID", kase.ID, "status", kase.Status)
	writeJSON(w, http.StatusOK, kase)
}

// AssignCaseHandler assigns a case to an active investigator
func (c Case) AssignCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]
	var req assignRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	kase, err := c.Svc.AssignCase(ctx, caseID, req.AssignedTo)
	if err != nil {
		config.ErrorFor("failed to assign case", w, err)
		return
	}
	writeJSON(w, http.StatusOK, kase)
}

// DeleteCaseHandler removes a case and every record that belongs to it
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	if err := c.Svc.DeleteCase(ctx, caseID); err != nil {
		config.ErrorFor("failed to delete case", w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "case deleted successfully"})
}

// OverdueCasesHandler lists open cases past their due date
func (c Case) OverdueCasesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	cases, err := c.Svc.OverdueCases(ctx)
	if err != nil {
		config.ErrorFor("failed to get overdue cases", w, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// CaseStatisticsHandler summarizes the cases matching the query filters
func (c Case) CaseStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	f, err := caseFilter(r)
	if err != nil {
		config.ErrorFor("failed to parse filter", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	stats, err := c.Svc.CaseStatistics(ctx, f)
	if err != nil {
		config.ErrorFor("failed to get case statistics", w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
