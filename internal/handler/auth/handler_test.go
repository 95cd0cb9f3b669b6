package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	args := m.Called(ctx, email, password)
	t, _ := args.Get(0).(*model.TokenResponse)
	return t, args.Error(1)
}

func TestLogin(t *testing.T) {
	svc := &mockService{}
	svc.On("Login", mock.Anything, "alice@example.com", "secret").
		Return(&model.TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600}, nil)
	svc.On("Login", mock.Anything, "alice@example.com", "wrong").
		Return(nil, errors.Unauthorized(nil))

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/"), r.Group("/"))

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"email":"alice@example.com","password":"secret"}`, http.StatusOK},
		{"bad password", `{"email":"alice@example.com","password":"wrong"}`, http.StatusUnauthorized},
		{"bad email", `{"email":"alice","password":"secret"}`, http.StatusBadRequest},
		{"missing password", `{"email":"alice@example.com"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"access_token":"tok"`)
			}
		})
	}
}

func TestMe(t *testing.T) {
	p := model.Principal{UserID: uuid.New(), Email: "alice@example.com", Role: model.RolePatient}

	r := gin.New()
	protected := r.Group("/", func(c *gin.Context) { c.Set(middleware.ContextPrincipal, p) })
	NewHandler(&mockService{}).RegisterRoutes(r.Group("/"), protected)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
	assert.Contains(t, w.Body.String(), `"role":"patient"`)
}
