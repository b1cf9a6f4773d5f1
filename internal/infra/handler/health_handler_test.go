package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-reminder-scheduler/internal/infra/handler"
)

func TestHealthHandlerSuccess(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name             string
		checks           map[string]handler.HealthCheck
		expectedStatus   int
		expectedBody     string
		expectedServices map[string]string
	}{
		{
			name:             "all up",
			checks:           map[string]handler.HealthCheck{"database": up, "events": nil},
			expectedStatus:   http.StatusOK,
			expectedBody:     "ok",
			expectedServices: map[string]string{"database": "up", "events": "disabled"},
		},
		{
			name:             "database down",
			checks:           map[string]handler.HealthCheck{"database": down, "mail": up},
			expectedStatus:   http.StatusServiceUnavailable,
			expectedBody:     "degraded",
			expectedServices: map[string]string{"database": "down", "mail": "up"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)

			router := gin.New()
			handler.NewHealthHandler(tt.checks, func() time.Time { return now }).RegisterRoutes(router)

			rec := doJSON(router, http.MethodGet, "/health", nil)
			require.Equal(t, tt.expectedStatus, rec.Code)

			response := decode[handler.HealthResponse](t, rec)
			assert.Equal(t, tt.expectedBody, response.Status)
			assert.Equal(t, tt.expectedServices, response.Services)
			assert.True(t, now.Equal(response.Timestamp))

			rec = doJSON(router, http.MethodGet, "/ping", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
		})
	}
}
