package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/accident-recon-api/api/handlers"
	"github.com/linesmerrill/accident-recon-api/databases"
	"github.com/linesmerrill/accident-recon-api/investigation"
	"github.com/linesmerrill/accident-recon-api/models"
)

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "correct horse battery"
)

type credentials struct {
	email, password, token string
}

var owner = credentials{email: ownerEmail, password: ownerPassword}

func newApp(t *testing.T) (*mux.Router, models.User) {
	t.Helper()
	reg := prometheus.NewRegistry()
	a := handlers.App{
		Registry: reg,
		Service: investigation.NewService(databases.NewMemoryStore(),
			investigation.WithPasswordCost(bcrypt.MinCost),
			investigation.WithMetrics(investigation.NewMetrics(reg)),
		),
	}
	r := a.New()

	rr := do(t, r, "POST", "/api/v1/users", map[string]string{
		"email":     ownerEmail,
		"password":  ownerPassword,
		"firstName": "Dana",
		"lastName":  "Reyes",
		"role":      "investigator",
	}, credentials{})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var u models.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &u))
	return r, u
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, c credentials) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.email != "":
		req.SetBasicAuth(c.email, c.password)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestApp_HealthCheck(t *testing.T) {
	r, _ := newApp(t)

	rr := do(t, r, "GET", "/health", nil, credentials{})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alive": true}`, rr.Body.String())
}

func TestApp_RequiresCredentials(t *testing.T) {
	r, _ := newApp(t)

	rr := do(t, r, "GET", "/api/v1/cases", nil, credentials{})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, r, "GET", "/api/v1/cases", nil, credentials{email: ownerEmail, password: "not the password"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, r, "GET", "/api/v1/cases", nil, owner)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestApp_TokenLifecycle(t *testing.T) {
	r, u := newApp(t)

	rr := do(t, r, "POST", "/api/v1/auth/token", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	tok := decode[map[string]string](t, rr)
	assert.Equal(t, u.ID, tok["_id"])
	require.NotEmpty(t, tok["token"])

	bearer := credentials{token: tok["token"]}
	rr = do(t, r, "GET", "/api/v1/user/"+u.ID, nil, bearer)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "passwordHash")

	rr = do(t, r, "DELETE", "/api/v1/auth/logout", nil, bearer)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, r, "GET", "/api/v1/user/"+u.ID, nil, bearer)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApp_DeactivatedUserLosesAccess(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	svc := investigation.NewService(databases.NewMemoryStore(), investigation.WithPasswordCost(bcrypt.MinCost))
	r := (&handlers.App{Registry: reg, Service: svc}).New()

	_, err := svc.CreateUser(ctx, models.User{
		Email: "chief@example.com", FirstName: "Ana", LastName: "Lima", Role: models.RoleAdmin,
	}, "chief password")
	require.NoError(t, err)
	admin := credentials{email: "chief@example.com", password: "chief password"}
	u, err := svc.CreateUser(ctx, models.User{
		Email: ownerEmail, FirstName: "Dana", LastName: "Reyes", Role: models.RoleInvestigator,
	}, ownerPassword)
	require.NoError(t, err)

	rr := do(t, r, "GET", "/api/v1/cases", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, r, "POST", "/api/v1/auth/token", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	bearer := credentials{token: decode[map[string]string](t, rr)["token"]}

	rr = do(t, r, "POST", "/api/v1/user/"+u.ID+"/deactivate", nil, admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, r, "GET", "/api/v1/cases", nil, owner)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = do(t, r, "GET", "/api/v1/cases", nil, bearer)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = do(t, r, "POST", "/api/v1/auth/token", nil, owner)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, r, "GET", "/api/v1/cases", nil, admin)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestApp_TokenRejectsBadPassword(t *testing.T) {
	r, _ := newApp(t)

	rr := do(t, r, "POST", "/api/v1/auth/token", nil, credentials{email: ownerEmail, password: "nope nope nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, r, "POST", "/api/v1/auth/token", nil, credentials{})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApp_MetricsEndpoint(t *testing.T) {
	r, _ := newApp(t)
	do(t, r, "GET", "/api/v1/cases", nil, owner)

	rr := do(t, r, "GET", "/metrics", nil, credentials{})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `accident_recon_http_requests_total{method="GET",route="/api/v1/cases",status="200"} 1`)
	assert.Contains(t, rr.Body.String(), `accident_recon_mutations_total`)
}

func TestUser_RegistrationRules(t *testing.T) {
	r, u := newApp(t)

	rr := do(t, r, "POST", "/api/v1/users", map[string]string{
		"email": "OWNER@example.com", "password": "another password",
		"firstName": "Sam", "lastName": "Ortiz", "role": "analyst",
	}, credentials{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "email", decode[models.ErrorMessageResponse](t, rr).Response.Field)

	rr = do(t, r, "POST", "/api/v1/users", map[string]string{
		"email": "boss@example.com", "password": "another password",
		"firstName": "Sam", "lastName": "Ortiz", "role": "admin",
	}, credentials{})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, r, "PUT", "/api/v1/user/"+u.ID, map[string]string{
		"email": ownerEmail, "firstName": "Dana", "lastName": "Reyes", "role": "admin",
	}, owner)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, r, "POST", "/api/v1/users", map[string]string{
		"email": "short@example.com", "password": "short",
		"firstName": "Sam", "lastName": "Ortiz", "role": "analyst",
	}, credentials{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "password", decode[models.ErrorMessageResponse](t, rr).Response.Field)

	rr = do(t, r, "POST", "/api/v1/users", map[string]string{
		"email": "analyst@example.com", "password": "analyst password",
		"firstName": "Sam", "lastName": "Ortiz", "role": "analyst",
	}, credentials{})
	require.Equal(t, http.StatusCreated, rr.Code)
	analyst := credentials{email: "analyst@example.com", password: "analyst password"}

	rr = do(t, r, "PUT", "/api/v1/user/"+u.ID, map[string]string{
		"email": ownerEmail, "firstName": "Hijacked", "lastName": "Reyes", "role": "admin",
	}, analyst)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, r, "PUT", "/api/v1/user/"+u.ID, map[string]string{
		"email": ownerEmail, "firstName": "Dana", "lastName": "Reyes-Kim", "role": "investigator",
	}, owner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Reyes-Kim", decode[models.User](t, rr).LastName)

	rr = do(t, r, "POST", "/api/v1/user/"+u.ID+"/deactivate", nil, analyst)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCase_InvestigationFlow(t *testing.T) {
	r, u := newApp(t)
	occurred := time.Now().UTC().Add(-3 * time.Hour).Truncate(time.Second)

	rr := do(t, r, "POST", "/api/v1/cases", map[string]interface{}{
		"title": "Intersection Collision",
		"tags":  []string{"downtown"},
		"accident": map[string]interface{}{
			"dateTime":    occurred,
			"location":    "Main St & 5th Ave",
			"weather":     "rain",
			"injuries":    2,
			"coordinates": map[string]float64{"latitude": 40.7128, "longitude": -74.006},
		},
	}, owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[struct {
		Case     models.Case     `json:"case"`
		Accident models.Accident `json:"accident"`
	}](t, rr)
	assert.Equal(t, u.ID, created.Case.UserID)
	assert.Equal(t, created.Case.ID, created.Accident.CaseID)
	caseID, accidentID := created.Case.ID, created.Accident.ID

	rr = do(t, r, "POST", "/api/v1/case/"+caseID+"/accident", map[string]interface{}{
		"dateTime": occurred, "location": "Elsewhere",
	}, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, r, "POST", "/api/v1/accident/"+accidentID+"/vehicles", map[string]interface{}{
		"make": "Honda", "model": "Civic", "year": 2019, "driverName": "Sam Ortiz",
		"licensePlate": "abc 123", "occupants": 2, "injuredOccupants": 1,
	}, owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 1, decode[models.Vehicle](t, rr).VehicleNumber)

	rr = do(t, r, "GET", "/api/v1/vehicles/plate/ABC%20123", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Vehicle](t, rr), 1)

	rr = do(t, r, "POST", "/api/v1/accident/"+accidentID+"/witnesses", map[string]interface{}{
		"name": "Pat Doe", "statement": "The sedan ran the red light", "reliability": "high",
	}, owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, r, "POST", "/api/v1/accident/"+accidentID+"/evidence", map[string]interface{}{
		"type": "photo", "source": "scene", "description": "Skid marks at the stop line",
		"collectedBy": "Officer Lee",
	}, owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	evidence := decode[models.Evidence](t, rr)
	assert.Equal(t, "Officer Lee", evidence.CurrentCustodian)

	rr = do(t, r, "POST", "/api/v1/evidence/"+evidence.ID+"/transfer", map[string]string{
		"to": "Lab Tech Smith", "reason": "lab analysis",
	}, owner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	evidence = decode[models.Evidence](t, rr)
	assert.Equal(t, "Lab Tech Smith", evidence.CurrentCustodian)
	require.Len(t, evidence.ChainOfCustody, 1)

	rr = do(t, r, "GET", "/api/v1/evidence?custodian=Lab%20Tech%20Smith", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Evidence](t, rr), 1)

	rr = do(t, r, "GET", "/api/v1/evidence/number/"+evidence.EvidenceNumber, nil, owner)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, r, "PUT", "/api/v1/case/"+caseID+"/status", map[string]string{
		"status": "active", "notes": "scene processed",
	}, owner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, models.CaseStatusActive, decode[models.Case](t, rr).Status)

	rr = do(t, r, "GET", "/api/v1/case/"+caseID, nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	detail := decode[models.CaseDetail](t, rr)
	require.NotNil(t, detail.Accident)
	assert.Len(t, detail.Accident.Vehicles, 1)
	assert.Len(t, detail.Accident.Witnesses, 1)
	assert.Len(t, detail.Accident.Evidence, 1)
	assert.Equal(t, models.SeverityModerate, detail.Accident.Severity)

	rr = do(t, r, "GET", "/api/v1/cases/number/"+created.Case.CaseNumber, nil, owner)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, r, "GET", "/api/v1/cases?q=intersection", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Case](t, rr), 1)

	rr = do(t, r, "GET", "/api/v1/cases?status=closed,archived", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]models.Case](t, rr))

	rr = do(t, r, "GET", "/api/v1/cases/stats", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[models.CaseStatistics](t, rr).Total)

	rr = do(t, r, "DELETE", "/api/v1/case/"+caseID, nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, r, "GET", "/api/v1/accident/"+accidentID, nil, owner)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, r, "GET", "/api/v1/evidence/"+evidence.ID, nil, owner)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCase_Errors(t *testing.T) {
	r, _ := newApp(t)

	rr := do(t, r, "POST", "/api/v1/cases", map[string]interface{}{"description": "no title"}, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "title", decode[models.ErrorMessageResponse](t, rr).Response.Field)

	rr = do(t, r, "GET", "/api/v1/case/missing", nil, owner)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, r, "GET", "/api/v1/cases/number/ACC-1999-00000", nil, owner)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, r, "PUT", "/api/v1/case/missing/status", map[string]string{"status": "active"}, owner)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, r, "GET", "/api/v1/cases?from=yesterday", nil, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "from", decode[models.ErrorMessageResponse](t, rr).Response.Field)

	req, err := http.NewRequest("POST", "/api/v1/cases", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.SetBasicAuth(ownerEmail, ownerPassword)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccident_NearLocation(t *testing.T) {
	r, _ := newApp(t)

	rr := do(t, r, "POST", "/api/v1/cases", map[string]interface{}{
		"title": "Bridge pile-up",
		"accident": map[string]interface{}{
			"dateTime":    time.Now().UTC().Add(-time.Hour),
			"location":    "Brooklyn Bridge",
			"coordinates": map[string]float64{"latitude": 40.7061, "longitude": -73.9969},
		},
	}, owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, r, "GET", "/api/v1/accidents/near?lat=40.7128&lng=-74.006&radius=2", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]models.Accident](t, rr), 1)

	rr = do(t, r, "GET", "/api/v1/accidents/near?lat=34.0522&lng=-118.2437", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]models.Accident](t, rr))

	rr = do(t, r, "GET", "/api/v1/accidents/near?lng=-74.006", nil, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "lat", decode[models.ErrorMessageResponse](t, rr).Response.Field)

	rr = do(t, r, "GET", "/api/v1/accidents/near?lat=40.7&lng=-74.0&radius=-1", nil, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestClaim_PaymentFlow(t *testing.T) {
	r, _ := newApp(t)

	rr := do(t, r, "POST", "/api/v1/cases", map[string]interface{}{"title": "Parking lot scrape"}, owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	caseID := decode[models.Case](t, rr).ID

	rr = do(t, r, "POST", "/api/v1/case/"+caseID+"/claims", map[string]interface{}{
		"type": "collision", "insurer": "Acme Mutual", "amount": 5000, "approvedAmount": 3000,
	}, owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	claim := decode[models.InsuranceClaim](t, rr)

	for _, status := range []string{"submitted", "under_review", "approved"} {
		rr = do(t, r, "PUT", "/api/v1/claim/"+claim.ID+"/status", map[string]string{"status": status}, owner)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = do(t, r, "POST", "/api/v1/claim/"+claim.ID+"/payments", map[string]interface{}{"amount": 2500, "reference": "CHK-1"}, owner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, r, "POST", "/api/v1/claim/"+claim.ID+"/payments", map[string]interface{}{"amount": 600}, owner)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "paidAmount", decode[models.ErrorMessageResponse](t, rr).Response.Field)

	rr = do(t, r, "POST", "/api/v1/claim/"+claim.ID+"/communications", map[string]string{"channel": "email", "message": "payment sent"}, owner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[models.InsuranceClaim](t, rr)
	require.Len(t, updated.Communications, 1)
	assert.NotEmpty(t, updated.Communications[0].Author)

	rr = do(t, r, "GET", "/api/v1/claims/stats?case_id="+caseID, nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[models.ClaimStatistics](t, rr)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 2500.0, stats.TotalPaid)

	rr = do(t, r, "GET", "/api/v1/claims/pending", nil, owner)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]models.InsuranceClaim](t, rr))

	rr = do(t, r, "GET", "/api/v1/claims/number/"+claim.ClaimNumber, nil, owner)
	assert.Equal(t, http.StatusOK, rr.Code)
}
