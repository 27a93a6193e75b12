package middleware

import (
	"hrm_backend/internal/model"
	"hrm_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		actor, ok := util.ActorFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})
	return r
}

func token(t *testing.T, role model.UserRole, secret string, ttl time.Duration) string {
	t.Helper()
	tok, err := util.GenerateJWT(util.Claims{UserID: 7, EmployeeID: 70, Role: role, Email: "a@example.com"}, secret, ttl)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + token(t, model.RoleEmployee, "other-secret", time.Hour), http.StatusUnauthorized},
		{"expired", "Bearer " + token(t, model.RoleEmployee, testSecret, -time.Minute), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, model.RoleEmployee, testSecret, time.Hour), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret), HRAdminOnly())

	for role, want := range map[model.UserRole]int{
		model.RoleEmployee: http.StatusForbidden,
		model.RoleManager:  http.StatusForbidden,
		model.RoleHRAdmin:  http.StatusOK,
		model.RoleAdmin:    http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, role, testSecret, time.Hour))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, string(role))
	}
}

func TestAuthMiddlewareQueryToken(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/whoami?token="+token(t, model.RoleHRAdmin, testSecret, time.Hour), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"hr_admin"`)
}
