package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/sjperalta/gymflow-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Index(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", NewHealthHandler(nil).Index)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

type listingAuditRepo struct {
	mockAuditRepo
	query *repository.ListQuery
}

func (m *listingAuditRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	m.query = query
	return []models.AuditLog{{ID: 1, Action: models.AuditActionCancel, Entity: "Contract", EntityID: 42}}, 1, nil
}

func TestAuditHandler_Index(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &listingAuditRepo{}
	r := gin.New()
	r.GET("/admin/audits", NewAuditHandler(services.NewAuditService(repo)).Index)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/audits?action=CANCEL&entity_id=42&per_page=500", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.query)
	assert.Equal(t, "CANCEL", repo.query.Filters["action"])
	assert.Equal(t, "42", repo.query.Filters["entity_id"])
	assert.Equal(t, 50, repo.query.PerPage)

	body := decode(t, w)
	assert.Len(t, body["audits"], 1)
}
