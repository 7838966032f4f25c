package obs

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := NewLogger(LoggerOptions{Env: "prod", Level: "warn", Output: &buf})
	defer closer.Close()

	logger.Info("hidden")
	logger.Warn("shown", "booking_id", "b-1")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"booking_id":"b-1"`)
}

func TestNewLoggerDev(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(LoggerOptions{Env: "dev", Output: &buf})
	logger.Info("booking created")
	assert.Contains(t, buf.String(), "booking created")
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	m := Middleware{}
	r.Use(m.RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, map[string]string{"request_id": "req-1"}, EventHeaders(WithRequestID(context.Background(), "req-1")))
	assert.Nil(t, EventHeaders(context.Background()))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestReadyz(t *testing.T) {
	r := gin.New()
	h := HealthHandlers{Checks: map[string]Check{
		"mongo": func(context.Context) error { return errors.New("no primary") },
		"kafka": func(context.Context) error { return nil },
	}}
	r.GET("/readyz", h.Readyz)
	r.GET("/livez", h.Livez)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no primary")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := NewLogger(LoggerOptions{Env: "prod", Output: &buf})
	r := gin.New()
	r.Use(Middleware{Logger: logger}.Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
}
