// Package docs Accident Recon API.
//
// Documentation of the Accident Recon API: investigation cases, accidents,
// vehicles, witnesses, evidence custody and insurance claims.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//     - bearer
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/accident-recon-api/models"
)

// swagger:route GET /health health healthEndpointID
// Reports whether the web service is alive.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body struct {
		Alive bool `json:"alive"`
	}
}

// swagger:route GET /api/v1/case/{case_id} case caseByID
// Gets a case with its accident, vehicles, witnesses, evidence and claims.
// responses:
//   200: caseDetailResponse
//   404: errorResponse

// Shows a single case by the given {case_id}
// swagger:response caseDetailResponse
type caseDetailResponseWrapper struct {
	// in:body
	Body models.CaseDetail
}

// swagger:route GET /api/v1/cases/stats case caseStatistics
// Summarizes the cases matching the query filters.
// responses:
//   200: caseStatisticsResponse

// swagger:response caseStatisticsResponse
type caseStatisticsResponseWrapper struct {
	// in:body
	Body models.CaseStatistics
}

// swagger:route GET /api/v1/evidence/{evidence_id} evidence evidenceByID
// Gets an evidence item with its chain of custody.
// responses:
//   200: evidenceResponse
//   404: errorResponse

// swagger:response evidenceResponse
type evidenceResponseWrapper struct {
	// in:body
	Body models.Evidence
}

// swagger:route POST /api/v1/claim/{claim_id}/payments claim recordPayment
// Records a payment against a claim. Payments may not exceed the approved amount.
// responses:
//   200: claimResponse
//   400: errorResponse
//   404: errorResponse

// swagger:response claimResponse
type claimResponseWrapper struct {
	// in:body
	Body models.InsuranceClaim
}

// Every failure is answered with the message and the offending field, if any.
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
