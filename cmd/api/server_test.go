package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/kiekky-matchmaker/internal/common/logger"
)

func TestCorsMiddleware(t *testing.T) {
	called := false
	h := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/dating/discover", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dating/discover", nil))
	assert.True(t, called)
}

func TestLoggingMiddlewareCapturesStatus(t *testing.T) {
	h := loggingMiddleware(logger.NewTestLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "postgres")

	rec := httptest.NewRecorder()
	healthCheck(db, nil)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotContains(t, rec.Body.String(), "redis")

	db.Close()
	rec = httptest.NewRecorder()
	healthCheck(db, nil)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
}

func TestRunMigrations(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	for i := range migrations {
		e := mock.ExpectExec(".+")
		if i == 1 {
			e.WillReturnError(errors.New(`relation "user_blocks" already exists`))
			continue
		}
		e.WillReturnResult(sqlmock.NewResult(0, 0))
	}

	err = runMigrations(context.Background(), sqlx.NewDb(mockDB, "postgres"), logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsFails(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS dating_profiles").WillReturnError(errors.New("permission denied"))

	err = runMigrations(context.Background(), sqlx.NewDb(mockDB, "postgres"), logger.NewNoOpLogger())
	assert.ErrorContains(t, err, "migration 1 failed")
}
