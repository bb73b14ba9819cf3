package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/linesmerrill/accident-recon-api/api"
	"github.com/linesmerrill/accident-recon-api/config"
	"github.com/linesmerrill/accident-recon-api/databases"
	"github.com/linesmerrill/accident-recon-api/investigation"
	"github.com/linesmerrill/accident-recon-api/models"
)

// RequestTimeout bounds every API request
const RequestTimeout = 30 * time.Second

// TokenTTL is how long an issued bearer token stays valid
const TokenTTL = 24 * time.Hour

// App stores the router and the service, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Service  *investigation.Service
	Registry *prometheus.Registry
	client   databases.ClientHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	if a.Registry == nil {
		a.Registry = prometheus.NewRegistry()
	}
	r := api.New(a.Registry)
	r.Use(api.MetricsMiddleware(api.NewHTTPMetrics(a.Registry)))
	r.Use(mux.MiddlewareFunc(api.TimeoutMiddleware(RequestTimeout)))

	guard := api.NewGuard(a.Service, TokenTTL)
	u := User{Svc: a.Service}
	c := Case{Svc: a.Service}
	acc := Accident{Svc: a.Service}
	ev := Evidence{Svc: a.Service}
	cl := Claim{Svc: a.Service}

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/token", http.HandlerFunc(guard.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", guard.Middleware(http.HandlerFunc(guard.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/users", http.HandlerFunc(u.CreateUserHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", guard.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}", guard.Middleware(http.HandlerFunc(u.UpdateUserHandler))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}/deactivate", guard.Middleware(http.HandlerFunc(u.DeactivateUserHandler))).Methods("POST")

	apiCreate.Handle("/cases", guard.Middleware(http.HandlerFunc(c.CasesHandler))).Methods("GET")
	apiCreate.Handle("/cases", guard.Middleware(http.HandlerFunc(c.CreateCaseHandler))).Methods("POST")
	apiCreate.Handle("/cases/overdue", guard.Middleware(http.HandlerFunc(c.OverdueCasesHandler))).Methods("GET")
	apiCreate.Handle("/cases/stats", guard.Middleware(http.HandlerFunc(c.CaseStatisticsHandler))).Methods("GET")
	apiCreate.Handle("/cases/number/{case_number}", guard.Middleware(http.HandlerFunc(c.CaseByNumberHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}", guard.Middleware(http.HandlerFunc(c.CaseHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}", guard.Middleware(http.HandlerFunc(c.UpdateCaseHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}", guard.Middleware(http.HandlerFunc(c.DeleteCaseHandler))).Methods("DELETE")
	apiCreate.Handle("/case/{case_id}/status", guard.Middleware(http.HandlerFunc(c.CaseStatusHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}/assign", guard.Middleware(http.HandlerFunc(c.AssignCaseHandler))).Methods("PUT")
	apiCreate.Handle("/case/{case_id}/accident", guard.Middleware(http.HandlerFunc(acc.CreateAccidentHandler))).Methods("POST")
	apiCreate.Handle("/case/{case_id}/claims", guard.Middleware(http.HandlerFunc(cl.ClaimsByCaseHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}/claims", guard.Middleware(http.HandlerFunc(cl.CreateClaimHandler))).Methods("POST")

	apiCreate.Handle("/accidents", guard.Middleware(http.HandlerFunc(acc.AccidentsHandler))).Methods("GET")
	apiCreate.Handle("/accidents/near", guard.Middleware(http.HandlerFunc(acc.AccidentsNearHandler))).Methods("GET")
	apiCreate.Handle("/accidents/stats", guard.Middleware(http.HandlerFunc(acc.AccidentStatisticsHandler))).Methods("GET")
	apiCreate.Handle("/accidents/police-report/{report_number}", guard.Middleware(http.HandlerFunc(acc.AccidentsByPoliceReportHandler))).Methods("GET")
	apiCreate.Handle("/accident/{accident_id}", guard.Middleware(http.HandlerFunc(acc.AccidentHandler))).Methods("GET")
	apiCreate.Handle("/accident/{accident_id}", guard.Middleware(http.HandlerFunc(acc.UpdateAccidentHandler))).Methods("PUT")
	apiCreate.Handle("/accident/{accident_id}/vehicles", guard.Middleware(http.HandlerFunc(acc.VehiclesHandler))).Methods("GET")
	apiCreate.Handle("/accident/{accident_id}/vehicles", guard.Middleware(http.HandlerFunc(acc.CreateVehicleHandler))).Methods("POST")
	apiCreate.Handle("/accident/{accident_id}/witnesses", guard.Middleware(http.HandlerFunc(acc.WitnessesHandler))).Methods("GET")
	apiCreate.Handle("/accident/{accident_id}/witnesses", guard.Middleware(http.HandlerFunc(acc.CreateWitnessHandler))).Methods("POST")
	apiCreate.Handle("/accident/{accident_id}/evidence", guard.Middleware(http.HandlerFunc(ev.EvidenceByAccidentHandler))).Methods("GET")
	apiCreate.Handle("/accident/{accident_id}/evidence", guard.Middleware(http.HandlerFunc(ev.CreateEvidenceHandler))).Methods("POST")
	apiCreate.Handle("/vehicle/{vehicle_id}", guard.Middleware(http.HandlerFunc(acc.UpdateVehicleHandler))).Methods("PUT")
	apiCreate.Handle("/vehicles/plate/{plate}", guard.Middleware(http.HandlerFunc(acc.VehiclesByPlateHandler))).Methods("GET")
	apiCreate.Handle("/witness/{witness_id}", guard.Middleware(http.HandlerFunc(acc.UpdateWitnessHandler))).Methods("PUT")

	apiCreate.Handle("/evidence", guard.Middleware(http.HandlerFunc(ev.EvidenceHandler))).Methods("GET")
	apiCreate.Handle("/evidence/number/{evidence_number}", guard.Middleware(http.HandlerFunc(ev.EvidenceByNumberHandler))).Methods("GET")
	apiCreate.Handle("/evidence/{evidence_id}", guard.Middleware(http.HandlerFunc(ev.EvidenceByIDHandler))).Methods("GET")
	apiCreate.Handle("/evidence/{evidence_id}", guard.Middleware(http.HandlerFunc(ev.UpdateEvidenceHandler))).Methods("PUT")
	apiCreate.Handle("/evidence/{evidence_id}/custody", guard.Middleware(http.HandlerFunc(ev.AddCustodyEntryHandler))).Methods("POST")
	apiCreate.Handle("/evidence/{evidence_id}/transfer", guard.Middleware(http.HandlerFunc(ev.TransferCustodyHandler))).Methods("POST")
	apiCreate.Handle("/evidence/{evidence_id}/analysis", guard.Middleware(http.HandlerFunc(ev.MarkAnalyzedHandler))).Methods("POST")

	apiCreate.Handle("/claims", guard.Middleware(http.HandlerFunc(cl.ClaimsHandler))).Methods("GET")
	apiCreate.Handle("/claims/pending", guard.Middleware(http.HandlerFunc(cl.PendingClaimsHandler))).Methods("GET")
	apiCreate.Handle("/claims/stats", guard.Middleware(http.HandlerFunc(cl.ClaimStatisticsHandler))).Methods("GET")
	apiCreate.Handle("/claims/number/{claim_number}", guard.Middleware(http.HandlerFunc(cl.ClaimByNumberHandler))).Methods("GET")
	apiCreate.Handle("/claim/{claim_id}", guard.Middleware(http.HandlerFunc(cl.ClaimHandler))).Methods("GET")
	apiCreate.Handle("/claim/{claim_id}", guard.Middleware(http.HandlerFunc(cl.UpdateClaimHandler))).Methods("PUT")
	apiCreate.Handle("/claim/{claim_id}/status", guard.Middleware(http.HandlerFunc(cl.ClaimStatusHandler))).Methods("PUT")
	apiCreate.Handle("/claim/{claim_id}/payments", guard.Middleware(http.HandlerFunc(cl.RecordPaymentHandler))).Methods("POST")
	apiCreate.Handle("/claim/{claim_id}/documents", guard.Middleware(http.HandlerFunc(cl.AddDocumentHandler))).Methods("POST")
	apiCreate.Handle("/claim/{claim_id}/communications", guard.Middleware(http.HandlerFunc(cl.AddCommunicationHandler))).Methods("POST")

	return r
}

// Initialize is invoked by main to open the store, build the service and create a router
func (a *App) Initialize() error {
	store, err := a.openStore()
	if err != nil {
		return err
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Service = investigation.NewService(store,
		investigation.WithRetries(a.Config.MutationRetries),
		investigation.WithMetrics(investigation.NewMetrics(a.Registry)),
	)

	// initialize api router
	a.initializeRoutes()
	return nil
}

func (a *App) openStore() (databases.Store, error) {
	if a.Config.Storage != config.StorageMongo {
		zap.S().Warnw("using in-memory storage, records are lost on restart", "storage", a.Config.Storage)
		return databases.NewMemoryStore(), nil
	}

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().Errorw("failed to create new client", "error", err)
		return nil, err
	}
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()
	if err = client.Connect(ctx); err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().Errorw("failed to connect to database", "error", err)
		return nil, err
	}
	a.client = client
	zap.S().Info("accident-recon-api has connected to the database")

	db := databases.NewDatabase(&a.Config, client)
	if err = databases.EnsureIndexes(ctx, db); err != nil {
		zap.S().Errorw("failed to create indexes", "error", err)
		return nil, err
	}
	return databases.NewMongoStore(db, a.Config.Transactions), nil
}

// Close disconnects from the database, if one was opened
func (a *App) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

// writeJSON marshals v and writes it with status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// decodeBody reads the JSON request body into v
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return models.NewValidationError("body", "is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.NewValidationError("body", "failed to decode request: %v", err)
	}
	return nil
}

// queryList splits a comma separated query parameter
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, part := range strings.Split(r.URL.Query().Get(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// queryTime parses an RFC3339 query parameter; a missing one is the zero time
func queryTime(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, models.NewValidationError(key, "must be an RFC3339 timestamp")
	}
	return t, nil
}

func queryFloat(r *http.Request, key string) (float64, error) {
	f, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil {
		return 0, models.NewValidationError(key, "must be a number")
	}
	return f, nil
}

// queryInt returns fallback when key is absent or malformed
func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		zap.S().Warnw("query parameter is not a number, using default", "key", key, "default", fallback, "error", err)
		return fallback
	}
	return n
}

func enums[T ~string](values []string) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		out = append(out, T(v))
	}
	return out
}
