package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hrm_backend/internal/config"
	"hrm_backend/internal/model"
	"hrm_backend/internal/testutil"
	"hrm_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret-router-test-secret"

type apiClient struct {
	t        *testing.T
	router   *gin.Engine
	services *services
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.RegisterValidators()

	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: testSecret},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
	}
	db := testutil.NewDB(t)

	a := &App{Config: cfg, DB: db}
	s := a.initServices(a.initRepositories(db), cfg, db, nil)
	router := gin.New()
	a.registerRoutes(router, a.initControllers(s, db, nil), cfg)
	t.Cleanup(s.hub.Close)
	return &apiClient{t: t, router: router, services: s}
}

func bearer(t *testing.T, userID, employeeID uint, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT(util.Claims{UserID: userID, EmployeeID: employeeID, Role: role}, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *util.ErrorBody `json:"error"`
}

func (c *apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func (c *apiClient) id(env envelope) uint {
	c.t.Helper()
	var v struct {
		ID uint `json:"id"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &v))
	require.NotZero(c.t, v.ID)
	return v.ID
}

func TestHealthAndAuth(t *testing.T) {
	api := newAPI(t)

	code, _ := api.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = api.do(http.MethodGet, "/api/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	employee := bearer(t, 7, 70, model.RoleEmployee)
	code, _ = api.do(http.MethodGet, "/api/courses", employee, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := api.do(http.MethodPost, "/api/courses", employee, map[string]string{
		"title": "Go", "category": "technical", "level": "beginner",
	})
	assert.Equal(t, http.StatusForbidden, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, util.KindUnauthorized, env.Error.Kind)
}

func TestCourseEnrollmentFlow(t *testing.T) {
	api := newAPI(t)
	hr := bearer(t, 1, 1, model.RoleHRAdmin)
	employee := bearer(t, 7, 70, model.RoleEmployee)

	code, env := api.do(http.MethodPost, "/api/courses", hr, map[string]string{
		"title": "Go", "category": "technical", "level": "expert",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Fields, "level")

	code, env = api.do(http.MethodPost, "/api/courses", hr, map[string]string{
		"title": "Go", "category": "technical", "level": "beginner",
	})
	require.Equal(t, http.StatusCreated, code)
	courseID := api.id(env)

	enroll := map[string]uint{"user_id": 7, "course_id": courseID}
	code, env = api.do(http.MethodPost, "/api/enroll", employee, enroll)
	require.Equal(t, http.StatusOK, code)
	progressID := api.id(env)

	code, env = api.do(http.MethodPost, "/api/enroll", employee, enroll)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, util.KindConflict, env.Error.Kind)

	code, _ = api.do(http.MethodPost, "/api/enroll", employee, map[string]uint{"user_id": 8, "course_id": courseID})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = api.do(http.MethodPost, fmt.Sprintf("/api/progress/%d/complete", progressID), employee, nil)
	require.Equal(t, http.StatusOK, code)
	var row model.LearningProgress
	require.NoError(t, json.Unmarshal(env.Data, &row))
	assert.Equal(t, model.ProgressCompleted, row.Status)
	assert.Equal(t, 100, row.Progress)

	code, env = api.do(http.MethodPost, "/api/unenroll", employee, enroll)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, util.KindInvalidState, env.Error.Kind)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/admin/courses/%d/reconcile", courseID), hr, nil)
	require.Equal(t, http.StatusOK, code)
	var check model.EnrollmentCheck
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.True(t, check.Consistent)
	assert.Equal(t, 1, check.LedgerCount)
}

func TestTrainingApplicationFlow(t *testing.T) {
	api := newAPI(t)
	hr := bearer(t, 1, 1, model.RoleHRAdmin)
	first := bearer(t, 10, 1, model.RoleEmployee)
	second := bearer(t, 20, 2, model.RoleEmployee)

	code, env := api.do(http.MethodPost, "/api/trainings", hr, map[string]interface{}{
		"program_name": "Incident response", "max_participants": 1,
	})
	require.Equal(t, http.StatusCreated, code)
	trainingID := api.id(env)

	code, env = api.do(http.MethodPost, "/api/apply", first, map[string]interface{}{})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = api.do(http.MethodPost, "/api/apply", first, map[string]uint{"training_id": trainingID, "employee_id": 1})
	require.Equal(t, http.StatusCreated, code)
	firstApp := api.id(env)

	code, env = api.do(http.MethodPost, "/api/apply", second, map[string]uint{"training_id": trainingID, "employee_id": 2})
	require.Equal(t, http.StatusCreated, code)
	secondApp := api.id(env)

	code, _ = api.do(http.MethodPost, fmt.Sprintf("/api/applications/%d/approve", firstApp), first, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = api.do(http.MethodPost, fmt.Sprintf("/api/applications/%d/approve", firstApp), hr, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = api.do(http.MethodPost, fmt.Sprintf("/api/applications/%d/approve", secondApp), hr, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, util.KindCapacity, env.Error.Kind)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/trainings/%d", trainingID), second, nil)
	require.Equal(t, http.StatusOK, code)
	var view struct {
		EnrolledCount  int  `json:"enrolled_count"`
		IsFull         bool `json:"is_full"`
		AvailableSlots *int `json:"available_slots"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, 1, view.EnrolledCount)
	assert.True(t, view.IsFull)
	assert.Equal(t, 0, *view.AvailableSlots)

	code, env = api.do(http.MethodDelete, fmt.Sprintf("/api/trainings/%d", trainingID), hr, nil)
	require.Equal(t, http.StatusOK, code)
	var deactivated struct {
		Cancelled []uint `json:"cancelled_applications"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &deactivated))
	assert.Equal(t, []uint{secondApp}, deactivated.Cancelled)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/applications/%d", secondApp), second, nil)
	require.Equal(t, http.StatusOK, code)
	var app model.TrainingApplication
	require.NoError(t, json.Unmarshal(env.Data, &app))
	assert.Equal(t, model.ApplicationCancelled, app.Status)
	assert.Equal(t, util.DiscontinuedReason, app.CancellationReason)

	code, _ = api.do(http.MethodGet, fmt.Sprintf("/api/applications/%d", secondApp), first, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestEventFeed(t *testing.T) {
	api := newAPI(t)
	srv := httptest.NewServer(api.router)
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events/ws?token="

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+bearer(t, 10, 1, model.RoleEmployee), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	hr := bearer(t, 1, 1, model.RoleHRAdmin)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+hr, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	code, env := api.do(http.MethodPost, "/api/trainings", hr, map[string]interface{}{"program_name": "First aid"})
	require.Equal(t, http.StatusCreated, code)
	trainingID := api.id(env)

	require.Eventually(t, func() bool { return api.services.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	code, _ = api.do(http.MethodPost, "/api/apply", bearer(t, 10, 1, model.RoleEmployee), map[string]uint{"training_id": trainingID, "employee_id": 1})
	require.Equal(t, http.StatusCreated, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event struct {
		Type       string `json:"type"`
		EmployeeID uint   `json:"employee_id"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "application.applied", event.Type)
	assert.Equal(t, uint(1), event.EmployeeID)
}
