package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/accident-recon-api/models"
)

func TestNew(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	os.Setenv("STORAGE", "")
	os.Setenv("MUTATION_RETRIES", "")
	conf := New()

	assert.NotEmpty(t, conf)
	assert.Equal(t, StorageMongo, conf.Storage)
	assert.Equal(t, 5, conf.MutationRetries)
	assert.Equal(t, "0 6 * * *", conf.OverdueSweepCron)
}

func TestNew_MemoryWithoutDatabase(t *testing.T) {
	os.Setenv("DB_URI", "")
	os.Setenv("STORAGE", "")
	os.Setenv("MUTATION_RETRIES", "9")
	defer os.Setenv("MUTATION_RETRIES", "")
	conf := New()

	assert.Equal(t, StorageMemory, conf.Storage)
	assert.Equal(t, 9, conf.MutationRetries)
}

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorStatus("error it borked", http.StatusBadRequest, rr, errors.New("bad request"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error it borked", body.Response.Message)
	assert.Equal(t, "bad request", body.Response.Error)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("title", "is required"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", &models.NotFoundError{Kind: "case", ID: "c1"}), http.StatusNotFound},
		{&models.ConflictError{Kind: "claim", ID: "k1"}, http.StatusConflict},
		{&models.StorageError{Op: "find", Err: errors.New("down")}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestErrorFor_IncludesField(t *testing.T) {
	rr := httptest.NewRecorder()
	ErrorFor("failed to record payment", rr, models.NewValidationError("paidAmount", "exceeds approved amount"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "paidAmount", body.Response.Field)
}
