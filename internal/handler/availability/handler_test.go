package availability

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
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Setup(); err != nil {
		panic(err)
	}
}

type mockService struct {
	mock.Mock
}

func (m *mockService) GetSchedule(ctx context.Context, doctorID uuid.UUID) ([]*model.Availability, error) {
	args := m.Called(ctx, doctorID)
	rows, _ := args.Get(0).([]*model.Availability)
	return rows, args.Error(1)
}

func (m *mockService) ReplaceSchedule(ctx context.Context, p model.Principal, doctorID uuid.UUID, req *model.ReplaceScheduleRequest) ([]*model.Availability, error) {
	args := m.Called(ctx, p, doctorID, req)
	rows, _ := args.Get(0).([]*model.Availability)
	return rows, args.Error(1)
}

func setup(svc Service, p model.Principal) *gin.Engine {
	r := gin.New()
	g := r.Group("/", func(c *gin.Context) { c.Set(middleware.ContextPrincipal, p) })
	NewHandler(svc).RegisterRoutes(g)
	return r
}

func TestGetSchedule(t *testing.T) {
	doctorID := uuid.New()
	svc := &mockService{}
	svc.On("GetSchedule", mock.Anything, doctorID).Return([]*model.Availability{}, nil)
	svc.On("GetSchedule", mock.Anything, mock.Anything).Return(nil, errors.NotFound("doctor", nil))
	r := setup(svc, model.Principal{Role: model.RolePatient})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doctors/"+doctorID.String()+"/availability", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"availability":[]`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doctors/"+uuid.NewString()+"/availability", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/doctors/abc/availability", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReplaceSchedule(t *testing.T) {
	doctorID := uuid.New()
	p := model.Principal{Role: model.RoleDoctor, DoctorID: &doctorID}

	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{
			name:   "replaced",
			body:   `{"availability":[{"day_of_week":"monday","start_time":"09:00","end_time":"12:00"}]}`,
			status: http.StatusOK,
		},
		{
			name:   "unknown weekday",
			body:   `{"availability":[{"day_of_week":"someday","start_time":"09:00","end_time":"12:00"}]}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "forbidden",
			body:   `{"availability":[]}`,
			err:    errors.Forbidden("not your schedule"),
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("ReplaceSchedule", mock.Anything, p, doctorID, mock.Anything).Return([]*model.Availability{}, tt.err)
			r := setup(svc, p)

			req := httptest.NewRequest(http.MethodPut, "/doctors/"+doctorID.String()+"/availability", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
