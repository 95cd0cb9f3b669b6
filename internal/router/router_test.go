package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	authhandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	promhandler "github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type stubAuth struct{}

func (stubAuth) Authenticate(_ context.Context, token string) (*model.Principal, error) {
	if token != "valid" {
		return nil, errors.Unauthorized(nil)
	}
	return &model.Principal{Role: model.RoleAdmin}, nil
}

func (stubAuth) Login(context.Context, string, string) (*model.TokenResponse, error) {
	return &model.TokenResponse{AccessToken: "valid", TokenType: "Bearer"}, nil
}

type pingHandler struct{}

func (pingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

type okDB struct{}

func (okDB) Ping(context.Context) error { return nil }

func newTestRouter() *gin.Engine {
	return newTestRouterWith(Config{RequestTimeout: time.Second, CORSOrigins: []string{"*"}})
}

func newTestRouterWith(config Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := NewRouter(
		logger.Nop(),
		middleware.NewAuthMiddleware(stubAuth{}),
		authhandler.NewHandler(stubAuth{}),
		health.NewHandler(okDB{}),
		promhandler.New("clinic_api", prometheus.NewRegistry()),
		config,
		pingHandler{},
	)
	r.Setup()
	return r.Engine()
}

func TestRoutes(t *testing.T) {
	engine := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"liveness", http.MethodGet, "/health/live", "", http.StatusOK},
		{"readiness", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"protected anonymous", http.MethodGet, "/api/v1/ping", "", http.StatusUnauthorized},
		{"protected bad token", http.MethodGet, "/api/v1/ping", "nope", http.StatusUnauthorized},
		{"protected", http.MethodGet, "/api/v1/ping", "valid", http.StatusOK},
		{"me", http.MethodGet, "/api/v1/auth/me", "valid", http.StatusOK},
		{"unknown", http.MethodGet, "/api/v1/nothing", "valid", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
		})
	}
}

func TestConfiguredBodyLimit(t *testing.T) {
	engine := newTestRouterWith(Config{MaxBodyBytes: 32})

	body := `{"email":"ada@example.test","password":"correct horse battery"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "request body exceeds 32 bytes")
}
