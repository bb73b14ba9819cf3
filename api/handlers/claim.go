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

// Claim exported for testing purposes
type Claim struct {
	Svc *investigation.Service
}

type claimStatusRequest struct {
	Status models.ClaimStatus `json:"status"`
}

func claimFilter(r *http.Request) databases.ClaimFilter {
	q := r.URL.Query()
	return databases.ClaimFilter{
		CaseID:   q.Get("case_id"),
		Statuses: enums[models.ClaimStatus](queryList(r, "status")),
		Types:    enums[models.ClaimType](queryList(r, "type")),
		Insurer:  q.Get("insurer"),
	}
}

// ClaimsHandler lists claims by case, status, type and insurer
func (c Claim) ClaimsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claims, err := c.Svc.Repos().Claims.Find(ctx, claimFilter(r))
	if err != nil {
		config.ErrorFor("failed to get claims", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

// ClaimsByCaseHandler lists the claims filed for a case
func (c Claim) ClaimsByCaseHandler(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claims, err := c.Svc.Repos().Claims.FindByCase(ctx, caseID)
	if err != nil {
		config.ErrorFor("failed to get claims", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

// PendingClaimsHandler lists claims still waiting on the insurer
func (c Claim) PendingClaimsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claims, err := c.Svc.Repos().Claims.FindPending(ctx)
	if err != nil {
		config.ErrorFor("failed to get pending claims", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

// ClaimStatisticsHandler summarizes the claims matching the query filters
func (c Claim) ClaimStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	stats, err := c.Svc.ClaimStatistics(ctx, claimFilter(r))
	if err != nil {
		config.ErrorFor("failed to get claim statistics", w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ClaimHandler returns a claim by ID
func (c Claim) ClaimHandler(w http.ResponseWriter, r *http.Request) {
	claimID := mux.Vars(r)["claim_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claim, err := c.Svc.Repos().Claims.FindByID(ctx, claimID)
	if err != nil {
		config.ErrorFor("failed to get claim by ID", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// ClaimByNumberHandler returns a claim by its claim number
func (c Claim) ClaimByNumberHandler(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["claim_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claim, err := c.Svc.Repos().Claims.FindByClaimNumber(ctx, number)
	if err == nil && claim == nil {
		err = &models.NotFoundError{Kind: "claim", ID: number}
	}
	if err != nil {
		config.ErrorFor("failed to get claim by number", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// CreateClaimHandler files an insurance claim for a case
func (c Claim) CreateClaimHandler(w http.ResponseWriter, r *http.Request) {
	var req models.InsuranceClaim
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.CaseID = mux.Vars(r)["case_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claim, err := c.Svc.CreateInsuranceClaim(ctx, req)
	if err != nil {
		config.ErrorFor("failed to create claim", w, err)
		return
	}
	zap.S().Infow("claim filed", "claimID", claim.ID, "claimNumber", claim.ClaimNumber, "caseID", claim.CaseID)
	writeJSON(w, http.StatusCreated, claim)
}

// UpdateClaimHandler changes a claim's insurer, policy and amounts
func (c Claim) UpdateClaimHandler(w http.ResponseWriter, r *http.Request) {
	var req models.InsuranceClaim
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	req.ID = mux.Vars(r)["claim_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claim, err := c.Svc.UpdateInsuranceClaim(ctx, req)
	if err != nil {
		config.ErrorFor("failed to update claim", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// ClaimStatusHandler moves a claim through its lifecycle
func (c Claim) ClaimStatusHandler(w http.ResponseWriter, r *http.Request) {
	claimID := mux.Vars(r)["claim_id"]
	var req claimStatusRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claim, err := c.Svc.TransitionClaimStatus(ctx, claimID, req.Status)
	if err != nil {
		config.ErrorFor("failed to change claim status", w, err)
		return
	}
	zap.S().Infow("claim status changed", "claimID", claim.ID, "status", claim.Status)
	writeJSON(w, http.StatusOK, claim)
}

// RecordPaymentHandler records a payment received against a claim
func (c Claim) RecordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	claimID := mux.Vars(r)["claim_id"]
	var req models.Payment
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claim, err := c.Svc.RecordPayment(ctx, claimID, req)
	if err != nil {
		config.ErrorFor("failed to record payment", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// AddDocumentHandler attaches a document to a claim
func (c Claim) AddDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claimID := mux.Vars(r)["claim_id"]
	var req models.ClaimDocument
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claim, err := c.Svc.AddClaimDocument(ctx, claimID, req)
	if err != nil {
		config.ErrorFor("failed to add claim document", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

// AddCommunicationHandler logs correspondence with the insurer
func (c Claim) AddCommunicationHandler(w http.ResponseWriter, r *http.Request) {
	claimID := mux.Vars(r)["claim_id"]
	var req models.Communication
	if err := decodeBody(r, &req); err != nil {
		config.ErrorFor("failed to decode request", w, err)
		return
	}
	if req.Author == "" {
		req.Author = api.UserID(r.Context())
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	claim, err := c.Svc.AddClaimCommunication(ctx, claimID, req)
	if err != nil {
		config.ErrorFor("failed to add claim communication", w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}
