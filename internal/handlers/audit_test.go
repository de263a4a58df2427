package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crucial707/profiles-api/internal/models"
	"github.com/crucial707/profiles-api/internal/repo"
)

func TestAuditHandler_ListAudit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM audit_log ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(500, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource_type", "resource_id", "details", "created_at"}).
			AddRow(1, 1, "create", "profile", 1, "", time.Now()))

	h := &AuditHandler{Repo: repo.NewAuditRepo(db)}
	rr := httptest.NewRecorder()
	h.ListAudit(rr, httptest.NewRequest("GET", "/api/audit?limit=10000", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var entries []models.AuditEntry
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, models.ResourceProfile, entries[0].ResourceType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
