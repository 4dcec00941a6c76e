package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/config"
	"github.com/storerate/storerate-backend/internal/app/controller"
	"github.com/storerate/storerate-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *Router {
	return NewRouter(
		controller.NewAuthController(nil),
		controller.NewUserController(nil),
		controller.NewStoreController(nil),
		controller.NewRatingController(nil),
		controller.NewDashboardController(nil),
		middleware.NewAuthMiddleware("test-secret", nil),
		middleware.NewRateLimiter(100, 100),
		nil,
		&config.Config{
			Server: config.ServerConfig{GinMode: gin.TestMode},
			CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		},
	)
}

func TestSetup(t *testing.T) {
	engine, err := newTestRouter().Setup()
	require.NoError(t, err)
	require.NotNil(t, engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetup_Preflight(t *testing.T) {
	engine, err := newTestRouter().Setup()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/api/stores", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/stores", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
