package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKindStatus(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusUnprocessableEntity},
		{KindConflict, http.StatusConflict},
		{KindInvalidState, http.StatusBadRequest},
		{KindCapacity, http.StatusBadRequest},
		{KindUnauthorized, http.StatusForbidden},
		{KindUpstreamUnavailable, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestWrapKeepsSentinel(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("list users: %w", Wrap(ErrDirectoryUnavailable, cause))

	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUpstreamUnavailable, KindOf(err))
	assert.Equal(t, ErrorKind(""), KindOf(cause))
}

func respond(err error) (*httptest.ResponseRecorder, Response) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondError(c, err)

	var body Response
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRespondError(t *testing.T) {
	w, body := respond(ValidationError(map[string]string{"rating": "is required"}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, KindValidation, body.Error.Kind)
	assert.Equal(t, "is required", body.Error.Fields["rating"])

	w, body = respond(ErrTrainingFull)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, KindCapacity, body.Error.Kind)
	assert.Equal(t, "training has no available slots", body.Message)

	w, body = respond(errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, body.Error)
	assert.Equal(t, "Internal server error", body.Message)
}

type bindTarget struct {
	Rating int    `json:"rating" binding:"required,gte=1,lte=5"`
	Status string `json:"status" binding:"omitempty,oneof=active inactive"`
}

func TestBindingError(t *testing.T) {
	RegisterValidators()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rating": 9, "status": "gone"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req bindTarget
	err := BindingError(c.ShouldBindJSON(&req))
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, "must be less than or equal to 5", appErr.Fields["rating"])
	assert.Equal(t, "must be one of: active inactive", appErr.Fields["status"])

	err = BindingError(errors.New("unexpected EOF"))
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "unexpected EOF", appErr.Fields["body"])
}

func TestIsHTTPURL(t *testing.T) {
	assert.True(t, IsHTTPURL("https://auth.internal:8443/api"))
	assert.False(t, IsHTTPURL("ftp://files"))
	assert.False(t, IsHTTPURL("not a url"))
}
