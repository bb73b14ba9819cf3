package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/linesmerrill/accident-recon-api/api"
	"github.com/linesmerrill/accident-recon-api/config"
	"github.com/linesmerrill/accident-recon-api/investigation"
	"github.com/linesmerrill/accident-recon-api/models"
)

// Evidence exported for testing purposes
type Evidence struct {
	Svc *investigation.Service
}

type custodyRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Reason    string `json:"reason"`
	Signature string `json:"signature"`
}

type analysisRequest struct {
	AnalyzedBy string `json:"analyzedBy"`
	Findings   string `json:"findings"`
	Notes      string `json:"notes"`
}

// EvidenceHandler lists evidence held by a custodian or in the given custody
// statuses
func (e Evidence) EvidenceHandler(w http.ResponseWriter, r *http.Request) {
	custodian := r.URL.Query().Get("custodian")
	statuses := enums[models.CustodyStatus](queryList(r, "status"))
	if custodian == "" && len(statuses) == 0 {
		config.ErrorFor("failed to get evidence", w, models.NewValidationError("custodian", "custodian or status is required"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	var (
		evidence []models.Evidence
		err      error
	)
	if custodian != "" {
		evidence, err = e.Svc.Repos().Evidence.FindByCustodian(ctx, custodian)
	} else {
		evidence, err = e.Svc.Repos().Evidence.FindByCustodyStatus(ctx, statuses...)
	}
	if err != nil {
		config.ErrorFor("failed to get evidence", w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}

// EvidenceByAccidentHandler lists the evidence collected for an accident
func (e Evidence) EvidenceByAccidentHandler(w http.ResponseWriter, r *http.Request) {
	accidentID := mux.Vars(r)["accident_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	evidence, err := e.Svc.Repos().Evidence.FindByAccident(ctx, accidentID)
	if err != nil {
		config.ErrorFor("failed to get evidence", w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}

// EvidenceByIDHandler returns an evidence item by ID
func (e Evidence) EvidenceByIDHandler(w http.ResponseWriter, r *http.Request) {
	evidenceID := mux.Vars(r)["evidence_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	evidence, err := e.Svc.Repos().Evidence.FindByID(ctx, evidenceID)
	if err != nil {
		config.ErrorFor("failed to get evidence by ID", w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}

// EvidenceByNumberHandler returns an evidence item by its evidence number
func (e Evidence) EvidenceByNumberHandler(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["evidence_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	evidence, err := e.Svc.Repos().Evidence.FindByEvidenceNumber(ctx, number)
	if err == nil && evidence == nil {
		err = &models.NotFoundError{Kind: "evidence", ID: number}
	}
	if err != nil {
		config.ErrorFor("failed to get evidence by number", w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}

// CreateEvidenceHandler logs a new evidence item against an accident
func (e Evidence) CreateEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Evidence
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.AccidentID = mux.Vars(r)["accident_id"]
	if req.CollectedBy == "" {
		req.CollectedBy = api.UserID(r.Context())
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	evidence, err := e.Svc.CreateEvidence(ctx, req)
	if err != nil {
		config.ErrorFor("failed to create evidence", w, err)
		return
	}
	zap.S().Infow("evidence logged", "evidenceID", evidence.ID, "evidenceNumber", evidence.EvidenceNumber)
	writeJSON(w, http.StatusCreated, evidence)
}

// UpdateEvidenceHandler changes an evidence item's descriptive fields
func (e Evidence) UpdateEvidenceHandler(w http.ResponseWriter, r *http.Request) {
	var req models.Evidence
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.ID = mux.Vars(r)["evidence_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	evidence, err := e.Svc.UpdateEvidence(ctx, req)
	if err != nil {
		config.ErrorFor("failed to update evidence", w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}

// AddCustodyEntryHandler appends an entry to the chain of custody
func (e Evidence) AddCustodyEntryHandler(w http.ResponseWriter, r *http.Request) {
	evidenceID := mux.Vars(r)["evidence_id"]
	var req custodyRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	evidence, err := e.Svc.AddCustodyEntry(ctx, evidenceID, req.From, req.To, req.Reason, req.Signature)
	if err != nil {
		config.ErrorFor("failed to add custody entry", w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}

// TransferCustodyHandler hands an evidence item to a new custodian
func (e Evidence) TransferCustodyHandler(w http.ResponseWriter, r *http.Request) {
	evidenceID := mux.Vars(r)["evidence_id"]
	var req custodyRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	evidence, err := e.Svc.TransferCustody(ctx, evidenceID, req.To, req.Reason, req.Signature)
	if err != nil {
		config.ErrorFor("failed to transfer custody", w, err)
		return
	}
	zap.S().Infow("custody transferred", "evidenceID", evidence.ID, "custodian", evidence.CurrentCustodian)
	writeJSON(w, http.StatusOK, evidence)
}

// MarkAnalyzedHandler records the analysis of an evidence item
func (e Evidence) MarkAnalyzedHandler(w http.ResponseWriter, r *http.Request) {
	evidenceID := mux.Vars(r)["evidence_id"]
	var req analysisRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	if req.AnalyzedBy == "" {
		req.AnalyzedBy = api.UserID(r.Context())
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	evidence, err := e.Svc.MarkAnalyzed(ctx, evidenceID, req.AnalyzedBy, req.Findings, req.Notes)
	if err != nil {
		config.ErrorFor("failed to mark evidence analyzed", w, err)
		return
	}
	writeJSON(w, http.StatusOK, evidence)
}
