package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMapToStatus(t *testing.T) {
	cases := []struct {
		err  *Error
		code int
	}{
		{NotFound("Order not found"), http.StatusNotFound},
		{Validation("Invalid Category", nil), http.StatusBadRequest},
		{Input("No image in the request"), http.StatusBadRequest},
		{Creation("the order cannot be created", nil), http.StatusBadRequest},
		{Aggregation("The order sales cannot be generated", nil), http.StatusBadRequest},
		{Auth("invalid email or password"), http.StatusUnauthorized},
		{Forbidden("admin only"), http.StatusForbidden},
		{Internal(stderrors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code, tc.err.Message)
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("get order: %w", NotFound("Order not found"))

	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, stderrors.Is(err, ErrValidation))

	// both are 400 but different kinds
	assert.False(t, stderrors.Is(Aggregation("x", nil), ErrValidation))
}

func TestFromHidesUnknownErrors(t *testing.T) {
	appErr := From(stderrors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Internal server error", appErr.Message)
	assert.Nil(t, From(nil))
}

func TestErrorMiddlewareWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorMiddleware())
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(NotFound("Category not found"))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(stderrors.New("driver: socket closed"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Category not found", body["error"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "socket")
}
