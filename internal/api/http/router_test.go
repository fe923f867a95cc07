package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civic-kit/issue-service/internal/api/http/handlers"
	"github.com/civic-kit/issue-service/internal/auth"
	"github.com/civic-kit/issue-service/internal/domain"
	"github.com/civic-kit/issue-service/internal/events"
	"github.com/civic-kit/issue-service/internal/observability"
	"github.com/civic-kit/issue-service/internal/service"
	"github.com/civic-kit/issue-service/internal/sla"
	"github.com/civic-kit/issue-service/internal/store"
)

type testEnv struct {
	app        *fiber.App
	mem        *store.Memory
	adminToken string
	fieldToken string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := auth.HashPassword("changeme", 4)
	require.NoError(t, err)

	mem := store.NewMemory()
	mem.LoadReference(
		[]domain.Department{
			{ID: "PWD001", Name: "Public Works Department", Code: "PWD"},
			{ID: "PHE001", Name: "Public Health Engineering", Code: "PHE"},
		},
		[]domain.Ward{{ID: "RAN001", Name: "Hinoo", Zone: "Central Ranchi"}},
		[]domain.RoutingRule{
			{ID: "RT001", Category: domain.CategoryRoadRepair, Ward: domain.AllWards, Department: "PWD", Priority: domain.PriorityHigh, AutoAssign: true},
		},
		[]domain.EscalationRule{
			{ID: "ESC001", Level: 1, Condition: "No acknowledgment in 2 hours",
				Statuses:  []domain.IssueStatus{domain.StatusNew},
				Threshold: 2 * time.Hour, Basis: domain.BasisCreated,
				Action: "Notify Department Head", Active: true},
		},
		[]domain.CategoryPolicy{
			{Category: domain.CategoryRoadRepair, SLATarget: domain.SLATarget{Amount: 24, Unit: domain.SLAUnitHours}, DefaultDept: "PWD"},
		},
		[]domain.Staff{
			{ID: "STF001", Name: "Anjali Mehta", Email: "anjali@example.gov", PasswordHash: hash, Role: domain.RoleSuperAdmin, Active: true},
			{ID: "STF004", Name: "Nilesh Topno", Email: "nilesh@example.gov", PasswordHash: hash, Role: domain.RoleFieldStaff, Department: "PWD", Active: true},
		},
	)

	logger := zap.NewNop()
	evaluator := sla.NewEvaluator(2)
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:          mem.Issues(),
		DepartmentRepo:     mem.Departments(),
		StaffRepo:          mem.Staff(),
		RoutingRuleRepo:    mem.RoutingRules(),
		EscalationRuleRepo: mem.EscalationRules(),
		PolicyRepo:         mem.Policies(),
		Evaluator:          evaluator,
		Dispatcher:         events.NewInMemoryDispatcher(),
		Logger:             logger,
	})
	statsService := service.NewStatsService(mem.Issues(), evaluator, nil, logger, nil)
	tokens := auth.NewTokenManager("test-secret", 60)
	authService := service.NewAuthService(mem.Staff(), tokens, nil)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil, observability.NewMetrics()),
		Auth:           handlers.NewAuthHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Routing:        handlers.NewRoutingHandler(issueService, mem.RoutingRules(), mem.EscalationRules()),
		Reference:      handlers.NewReferenceHandler(mem.Departments(), mem.Wards(), mem.Policies()),
		Stats:          handlers.NewStatsHandler(statsService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, mem.Staff()),
	})

	env := &testEnv{app: app, mem: mem}
	env.adminToken = env.login(t, "anjali@example.gov")
	env.fieldToken = env.login(t, "nilesh@example.gov")
	return env
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "changeme",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decode(t, resp, &body)
	require.NotEmpty(t, body.Data.Token)
	return body.Data.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Buffer = bytes.NewBuffer(nil)
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createIssue(t *testing.T, env *testEnv) (id, reportID string) {
	t.Helper()
	resp := env.do(t, http.MethodPost, "/issues", "", map[string]any{
		"title":    "Pothole on main road",
		"category": string(domain.CategoryRoadRepair),
		"ward":     "Hinoo",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data domain.Issue `json:"data"`
	}
	decode(t, resp, &body)
	return body.Data.ID, body.Data.ReportID
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntakeIsOpenButListIsNot(t *testing.T) {
	env := newTestEnv(t)

	id, reportID := createIssue(t, env)
	assert.NotEmpty(t, id)
	assert.NotEmpty(t, reportID)

	resp := env.do(t, http.MethodGet, "/issues", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/issues", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 1, body.Total)
}

func TestGetIssueByReportID(t *testing.T) {
	env := newTestEnv(t)
	_, reportID := createIssue(t, env)

	resp := env.do(t, http.MethodGet, "/issues/"+reportID, env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			domain.Issue
			SLA struct {
				Status string `json:"status"`
			} `json:"sla"`
		} `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, reportID, body.Data.ReportID)
	assert.Equal(t, "normal", body.Data.SLA.Status)
}

func TestTransitionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	id, _ := createIssue(t, env)

	// Field staff can move to the direct successor.
	resp := env.do(t, http.MethodPatch, "/issues/"+id+"/status", env.fieldToken, map[string]any{
		"status": string(domain.StatusAcknowledged),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Skipping without override conflicts.
	resp = env.do(t, http.MethodPatch, "/issues/"+id+"/status", env.adminToken, map[string]any{
		"status": string(domain.StatusClosed),
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var errBody struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, resp, &errBody)
	assert.Equal(t, "ILLEGAL_TRANSITION", errBody.Error.Code)

	// Field staff cannot override.
	resp = env.do(t, http.MethodPatch, "/issues/"+id+"/status", env.fieldToken, map[string]any{
		"status": string(domain.StatusClosed), "override": true, "notes": "done",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin override with a note succeeds.
	resp = env.do(t, http.MethodPatch, "/issues/"+id+"/status", env.adminToken, map[string]any{
		"status": string(domain.StatusClosed), "override": true, "notes": "resolved offline",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBulkTransitionEndpoint(t *testing.T) {
	env := newTestEnv(t)
	firstID, _ := createIssue(t, env)
	secondID, _ := createIssue(t, env)

	resp := env.do(t, http.MethodPost, "/issues/bulk/status", env.adminToken, map[string]any{
		"ids":    []string{firstID, secondID, "missing-id"},
		"status": string(domain.StatusAcknowledged),
	})
	assert.Equal(t, http.StatusMultiStatus, resp.StatusCode)

	var body struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 2, body.Succeeded)
	assert.Equal(t, 1, body.Failed)
}

func TestAssignRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	id, _ := createIssue(t, env)

	resp := env.do(t, http.MethodPost, "/issues/"+id+"/assign", env.fieldToken, map[string]any{
		"department": "PHE",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/issues/"+id+"/assign", env.adminToken, map[string]any{
		"department": "PHE", "assignedTo": "Seema Kisku",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data domain.Issue `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "PHE", body.Data.AssignedDept)

	// Once the issue belongs to another department, PWD field staff cannot
	// touch its status.
	resp = env.do(t, http.MethodPatch, "/issues/"+id+"/status", env.fieldToken, map[string]any{
		"status": string(domain.StatusAcknowledged),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRoutingPreviewEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/routing/preview?category=Road+Repair&ward=Hinoo", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Department string `json:"dept"`
		} `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "PWD", body.Data.Department)

	resp = env.do(t, http.MethodGet, "/routing/preview?category=Drainage&ward=Hinoo", env.adminToken, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateUnroutedReportsRoutingError(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/issues", "", map[string]any{
		"title":    "Blocked drain flooding street",
		"category": string(domain.CategoryDrainage),
		"ward":     "Hinoo",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Data    domain.Issue `json:"data"`
		Routing *struct {
			Code string `json:"code"`
		} `json:"routing"`
	}
	decode(t, resp, &body)
	require.NotNil(t, body.Routing)
	assert.Equal(t, "NO_ROUTING_RULE", body.Routing.Code)
	assert.True(t, body.Data.NeedsApproval)

	// And it shows up in the approval queue.
	queueResp := env.do(t, http.MethodGet, "/routing/approvals", env.adminToken, nil)
	require.Equal(t, http.StatusOK, queueResp.StatusCode)

	var queue struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	decode(t, queueResp, &queue)
	require.Len(t, queue.Data, 1)
	assert.Equal(t, body.Data.ReportID, queue.Data[0].ID)
}

func TestReferenceAndStatsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	createIssue(t, env)

	for _, path := range []string{"/reference/departments", "/reference/wards", "/reference/categories", "/routing/rules", "/routing/escalations"} {
		resp := env.do(t, http.MethodGet, path, env.adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("GET %s", path))
	}

	resp := env.do(t, http.MethodGet, "/stats/dashboard", env.adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			TotalReports int `json:"totalReports"`
		} `json:"data"`
	}
	decode(t, resp, &body)
	assert.Equal(t, 1, body.Data.TotalReports)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "anjali@example.gov", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
