package config

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/linesmerrill/accident-recon-api/logging"
	"github.com/linesmerrill/accident-recon-api/models"
)

// Storage backends selectable with STORAGE
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	Env          string
	// Storage is StorageMongo or StorageMemory
	Storage string
	// Transactions runs cascade deletes in a Mongo session transaction
	// (requires a replica set)
	Transactions bool
	// MutationRetries bounds how often a read-modify-write is retried after a
	// version conflict
	MutationRetries  int
	OverdueSweepCron string
	SendgridAPIKey   string
	NotifyFromEmail  string
}

// New sets up all config related services
func New() *Config {
	conf := &Config{
		URL:              os.Getenv("DB_URI"),
		DatabaseName:     os.Getenv("DB_NAME"),
		BaseURL:          os.Getenv("BASE_URL"),
		Port:             getenv("PORT", "8080"),
		Env:              getenv("ENV", "production"),
		Storage:          os.Getenv("STORAGE"),
		Transactions:     os.Getenv("DB_TRANSACTIONS") == "true",
		MutationRetries:  getint("MUTATION_RETRIES", 5),
		OverdueSweepCron: getenv("OVERDUE_SWEEP_CRON", "0 6 * * *"),
		SendgridAPIKey:   os.Getenv("SENDGRID_API_KEY"),
		NotifyFromEmail:  getenv("NOTIFY_FROM_EMAIL", "noreply@accident-recon.app"),
	}
	if conf.Storage == "" {
		conf.Storage = StorageMemory
		if conf.URL != "" {
			conf.Storage = StorageMongo
		}
	}

	//setup zap logger and replace default logger
	logger, err := logging.New(conf.Env)
	if err != nil {
		logger = zap.NewExample()
	}
	_ = zap.ReplaceGlobals(logger)

	return conf
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	if httpStatusCode >= http.StatusInternalServerError {
		zap.S().Errorw(message, "error", err)
	} else {
		zap.S().Debugw(message, "error", err)
	}
	body := models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errString(err)}}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		body.Response.Field = ve.Field
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// StatusFor maps an error onto the HTTP status the API answers with
func StatusFor(err error) int {
	var (
		ve *models.ValidationError
		nf *models.NotFoundError
		ce *models.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// ErrorFor writes err with the status StatusFor picks
func ErrorFor(message string, w http.ResponseWriter, err error) {
	ErrorStatus(message, StatusFor(err), w, err)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
