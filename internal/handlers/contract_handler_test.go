package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/sjperalta/gymflow-api/internal/services"
	"github.com/sjperalta/gymflow-api/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testGymID  uint = 1
	testUserID uint = 10
)

type mockContractRepo struct {
	repository.ContractRepository
	mockFindByIDInGym      func(ctx context.Context, gymID, id uint) (*models.Contract, error)
	mockFindActiveByClient func(ctx context.Context, clientID uint) (*models.Contract, error)
	mockCreate             func(ctx context.Context, contract *models.Contract) error
	mockUpdate             func(ctx context.Context, contract *models.Contract) error
	mockList               func(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error)
	mockExpireDue          func(ctx context.Context, now time.Time) (int64, error)
	mockCountExpiringSoon  func(ctx context.Context, now time.Time, window time.Duration) (int64, error)
}

func (m *mockContractRepo) FindByIDInGym(ctx context.Context, gymID, id uint) (*models.Contract, error) {
	return m.mockFindByIDInGym(ctx, gymID, id)
}

func (m *mockContractRepo) FindActiveByClient(ctx context.Context, clientID uint) (*models.Contract, error) {
	if m.mockFindActiveByClient == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.mockFindActiveByClient(ctx, clientID)
}

func (m *mockContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	return m.mockCreate(ctx, contract)
}

func (m *mockContractRepo) Update(ctx context.Context, contract *models.Contract) error {
	return m.mockUpdate(ctx, contract)
}

func (m *mockContractRepo) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	return m.mockList(ctx, query)
}

func (m *mockContractRepo) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return m.mockExpireDue(ctx, now)
}

func (m *mockContractRepo) CountExpiringSoon(ctx context.Context, now time.Time, window time.Duration) (int64, error) {
	return m.mockCountExpiringSoon(ctx, now, window)
}

type mockGymRepo struct {
	repository.GymRepository
}

func (m *mockGymRepo) FindByID(ctx context.Context, id uint) (*models.Gym, error) {
	if id != testGymID {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Gym{ID: testGymID, OwnerID: testUserID, Organization: models.Organization{Currency: "HNL"}}, nil
}

func (m *mockGymRepo) HasAccess(ctx context.Context, gymID, userID uint) (bool, error) {
	return gymID == testGymID && userID == testUserID, nil
}

type mockClientRepo struct {
	repository.ClientRepository
}

func (m *mockClientRepo) FindActiveClient(ctx context.Context, clientID, gymID uint) (*models.Client, error) {
	if clientID != 5 {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Client{ID: 5, GymID: gymID, FullName: "Ana López", Status: models.StatusActive}, nil
}

type mockPlanRepo struct {
	repository.PlanRepository
}

func (m *mockPlanRepo) FindActivePlan(ctx context.Context, planID, gymID uint) (*models.MembershipPlan, error) {
	months := 1
	return &models.MembershipPlan{ID: planID, GymID: gymID, Name: "Mensual", BasePrice: 100, DurationMonths: &months, PaymentFrequency: models.PaymentFrequencyMonthly, Status: models.StatusActive}, nil
}

type mockAuditRepo struct {
	repository.AuditRepository
	entries []models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

type testEnv struct {
	router    *gin.Engine
	contracts *mockContractRepo
	audits    *mockAuditRepo
}

func newTestEnv(t *testing.T, role string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	contracts := &mockContractRepo{}
	audits := &mockAuditRepo{}
	access := services.NewGymAccessService(&mockGymRepo{})
	auditSvc := services.NewAuditService(audits)
	window := 7 * 24 * time.Hour

	querySvc := services.NewContractQueryService(contracts, access, window)
	contractSvc := services.NewContractService(contracts, &mockClientRepo{}, &mockPlanRepo{}, access, auditSvc,
		services.ContractPolicy{MaxFreezeDays: 30})
	observer, err := metrics.NewReconciliationObserver("handlers_test", prometheus.NewRegistry())
	require.NoError(t, err)

	contractHandler := NewContractHandler(contractSvc, querySvc, services.NewExportService(querySvc))
	reconciliationHandler := NewReconciliationHandler(services.NewReconciliationService(contracts, observer, window), auditSvc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", testUserID)
		c.Set("userRole", role)
		c.Next()
	})
	gyms := r.Group("/gyms/:gym_id")
	gyms.GET("/contracts", contractHandler.Index)
	gyms.GET("/contracts/export", contractHandler.Export)
	gyms.POST("/contracts", contractHandler.Create)
	gyms.GET("/contracts/:contract_id", contractHandler.Show)
	gyms.POST("/contracts/:contract_id/freeze", contractHandler.Freeze)
	gyms.POST("/contracts/:contract_id/cancel", contractHandler.Cancel)
	gyms.GET("/clients/:client_id/contracts", contractHandler.ClientHistory)
	r.POST("/admin/contracts/reconcile", reconciliationHandler.Reconcile)

	return &testEnv{router: r, contracts: contracts, audits: audits}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func activeContract() *models.Contract {
	return &models.Contract{
		ID:               42,
		GymID:            testGymID,
		ClientID:         5,
		MembershipPlanID: 7,
		StartDate:        time.Now().AddDate(0, 0, -10),
		EndDate:          time.Now().AddDate(0, 0, 20),
		BasePrice:        100,
		FinalAmount:      100,
		Currency:         "HNL",
		Status:           models.ContractStatusActive,
	}
}

func TestContractHandler_Create(t *testing.T) {
	env := newTestEnv(t, "staff")
	var saved *models.Contract
	env.contracts.mockCreate = func(ctx context.Context, contract *models.Contract) error {
		contract.ID = 1
		saved = contract
		return nil
	}

	w := env.do("POST", "/gyms/1/contracts",
		`{"contract": {"client_id": 5, "membership_plan_id": 7, "start_date": "2024-03-01", "discount_percentage": 20}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	contract := decode(t, w)["contract"].(map[string]interface{})
	assert.Equal(t, 80.0, contract["final_amount"])
	assert.Equal(t, "HNL", contract["currency"])
	assert.Equal(t, models.ContractStatusActive, contract["status"])
	require.NotNil(t, saved)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), saved.EndDate)
	assert.Len(t, env.audits.entries, 1)
}

func TestContractHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		existing bool
		status   int
		code     string
	}{
		{
			name:   "invalid body",
			path:   "/gyms/1/contracts",
			body:   `{"client_id": 5}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "bad start date",
			path:   "/gyms/1/contracts",
			body:   `{"client_id": 5, "membership_plan_id": 7, "start_date": "01/03/2024"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "gym without access",
			path:   "/gyms/3/contracts",
			body:   `{"client_id": 5, "membership_plan_id": 7, "start_date": "2024-03-01"}`,
			status: http.StatusNotFound,
		},
		{
			name:   "unknown client",
			path:   "/gyms/1/contracts",
			body:   `{"client_id": 6, "membership_plan_id": 7, "start_date": "2024-03-01"}`,
			status: http.StatusNotFound,
		},
		{
			name:     "client already has an active contract",
			path:     "/gyms/1/contracts",
			body:     `{"client_id": 5, "membership_plan_id": 7, "start_date": "2024-03-01"}`,
			existing: true,
			status:   http.StatusUnprocessableEntity,
			code:     "duplicate_active_contract",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "staff")
			if tt.existing {
				env.contracts.mockFindActiveByClient = func(ctx context.Context, clientID uint) (*models.Contract, error) {
					return activeContract(), nil
				}
			}
			env.contracts.mockCreate = func(ctx context.Context, contract *models.Contract) error {
				t.Fatal("create must not be called")
				return nil
			}

			w := env.do("POST", tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decode(t, w)["code"])
			}
		})
	}
}

func TestContractHandler_Freeze(t *testing.T) {
	env := newTestEnv(t, "staff")
	existing := activeContract()
	env.contracts.mockFindByIDInGym = func(ctx context.Context, gymID, id uint) (*models.Contract, error) {
		c := *existing
		return &c, nil
	}
	env.contracts.mockUpdate = func(ctx context.Context, contract *models.Contract) error { return nil }

	w := env.do("POST", "/gyms/1/contracts/42/freeze", `{"freeze_start_date": "2024-03-10", "freeze_end_date": "2024-03-15", "reason": "viaje"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	contract := decode(t, w)["contract"].(map[string]interface{})
	assert.Len(t, contract["events"], 1)

	w = env.do("POST", "/gyms/1/contracts/42/freeze", `{"freeze_start_date": "2024-03-01", "freeze_end_date": "2024-05-01"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "freeze_too_long", decode(t, w)["code"])

	w = env.do("POST", "/gyms/1/contracts/42/freeze", `{"freeze_start_date": "2024-03-10"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContractHandler_Cancel(t *testing.T) {
	env := newTestEnv(t, "staff")
	existing := activeContract()
	existing.Status = models.ContractStatusCancelled
	env.contracts.mockFindByIDInGym = func(ctx context.Context, gymID, id uint) (*models.Contract, error) {
		c := *existing
		return &c, nil
	}

	w := env.do("POST", "/gyms/1/contracts/42/cancel", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("POST", "/gyms/1/contracts/42/cancel", `{"reason": "mudanza"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "already_cancelled", decode(t, w)["code"])
}

func TestContractHandler_Cancel_BlankReason(t *testing.T) {
	env := newTestEnv(t, "staff")
	env.contracts.mockFindByIDInGym = func(ctx context.Context, gymID, id uint) (*models.Contract, error) {
		return activeContract(), nil
	}
	updated := false
	env.contracts.mockUpdate = func(ctx context.Context, contract *models.Contract) error {
		updated = true
		return nil
	}

	for _, body := range []string{`{"reason": "   "}`, `{"reason": "\t\n"}`} {
		w := env.do("POST", "/gyms/1/contracts/42/cancel", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.False(t, updated)

	w := env.do("POST", "/gyms/1/contracts/42/cancel", `{"reason": "  mudanza  "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.True(t, updated)
	events := decode(t, w)["contract"].(map[string]interface{})["events"].([]interface{})
	require.Len(t, events, 1)
	assert.Equal(t, "mudanza", events[0].(map[string]interface{})["reason"])
}

func TestContractHandler_Show(t *testing.T) {
	env := newTestEnv(t, "staff")
	env.contracts.mockFindByIDInGym = func(ctx context.Context, gymID, id uint) (*models.Contract, error) {
		switch id {
		case 42:
			return activeContract(), nil
		case 43:
			return nil, gorm.ErrRecordNotFound
		default:
			return nil, errors.New("connection reset")
		}
	}

	w := env.do("GET", "/gyms/1/contracts/42", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do("GET", "/gyms/1/contracts/43", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("GET", "/gyms/1/contracts/44", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = env.do("GET", "/gyms/1/contracts/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContractHandler_Index(t *testing.T) {
	env := newTestEnv(t, "staff")
	var captured *repository.ContractQuery
	env.contracts.mockList = func(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
		captured = query
		return []models.Contract{*activeContract()}, 41, nil
	}

	w := env.do("GET", "/gyms/1/contracts?status=expiring_soon&limit=10&offset=20&client_id=5&end_to=2024-12-31", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NotNil(t, captured)
	assert.Equal(t, testGymID, captured.GymID)
	assert.Equal(t, models.ContractStatusExpiringSoon, captured.Status)
	assert.Equal(t, uint(5), captured.ClientID)
	assert.Equal(t, 10, captured.PerPage)
	assert.Equal(t, 20, captured.SkipCount())
	assert.Equal(t, "2024-12-31", captured.Filters["end_to"])

	pagination := decode(t, w)["pagination"].(map[string]interface{})
	assert.Equal(t, 5.0, pagination["total_pages"])

	w = env.do("GET", "/gyms/1/contracts?status=frozen", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContractHandler_ClientHistory(t *testing.T) {
	env := newTestEnv(t, "staff")
	var captured *repository.ContractQuery
	env.contracts.mockList = func(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
		captured = query
		return []models.Contract{*activeContract()}, 1, nil
	}

	w := env.do("GET", "/gyms/1/clients/5/contracts", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, captured)
	assert.Equal(t, uint(5), captured.ClientID)
	assert.Equal(t, testGymID, captured.GymID)
	assert.Empty(t, captured.Status)
	assert.Zero(t, captured.PerPage)
	assert.Equal(t, "start_date", captured.SortBy)
	assert.Equal(t, "desc", captured.SortDir)
	assert.Equal(t, 1.0, decode(t, w)["total"])

	w = env.do("GET", "/gyms/1/clients/5/contracts?status=expired&start_from=2024-01-01&end_to=2024-12-31&per_page=5", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, uint(5), captured.ClientID)
	assert.Equal(t, models.ContractStatusExpired, captured.Status)
	assert.Equal(t, "2024-01-01", captured.Filters["start_from"])
	assert.Equal(t, "2024-12-31", captured.Filters["end_to"])
	assert.Equal(t, 5, captured.PerPage)

	w = env.do("GET", "/gyms/1/clients/5/contracts?status=frozen", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("GET", "/gyms/1/clients/5/contracts?start_from=01-01-2024", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContractHandler_Export(t *testing.T) {
	env := newTestEnv(t, "staff")
	env.contracts.mockList = func(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
		return []models.Contract{*activeContract()}, 1, nil
	}

	w := env.do("GET", "/gyms/1/contracts/export?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=contratos_gym_1_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "ID,Cliente,Plan"))

	w = env.do("GET", "/gyms/1/contracts/export?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconciliationHandler_Reconcile(t *testing.T) {
	env := newTestEnv(t, "admin")
	env.contracts.mockExpireDue = func(ctx context.Context, now time.Time) (int64, error) { return 0, nil }
	env.contracts.mockCountExpiringSoon = func(ctx context.Context, now time.Time, window time.Duration) (int64, error) {
		return 3, nil
	}

	w := env.do("POST", "/admin/contracts/reconcile", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, 0.0, body["expired_count"])
	assert.Equal(t, 3.0, body["expiring_soon_count"])
	assert.Contains(t, body, "execution_time_ms")
	require.Len(t, env.audits.entries, 1)
	assert.Equal(t, models.AuditActionReconcile, env.audits.entries[0].Action)

	env.contracts.mockExpireDue = func(ctx context.Context, now time.Time) (int64, error) {
		return 0, errors.New("deadlock detected")
	}
	w = env.do("POST", "/admin/contracts/reconcile", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
