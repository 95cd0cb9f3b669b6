package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	accountsvc "github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
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

func (m *mockService) RegisterPatient(ctx context.Context, p model.Principal, req *model.RegisterPatientRequest) (*accountsvc.Registration, error) {
	args := m.Called(ctx, p, req)
	reg, _ := args.Get(0).(*accountsvc.Registration)
	return reg, args.Error(1)
}

func (m *mockService) RegisterDoctor(ctx context.Context, p model.Principal, req *model.RegisterDoctorRequest) (*accountsvc.Registration, error) {
	args := m.Called(ctx, p, req)
	reg, _ := args.Get(0).(*accountsvc.Registration)
	return reg, args.Error(1)
}

func (m *mockService) ChangePassword(ctx context.Context, p model.Principal, req *model.ChangePasswordRequest) error {
	return m.Called(ctx, p, req).Error(0)
}

var admin = model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}

func setup(svc Service, p model.Principal) *gin.Engine {
	r := gin.New()
	g := r.Group("/", func(c *gin.Context) { c.Set(middleware.ContextPrincipal, p) })
	NewHandler(svc, middleware.NewAuthMiddleware(nil).RequireRoles(model.RoleAdmin)).RegisterRoutes(g)
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterPatient(t *testing.T) {
	svc := &mockService{}
	user := &model.User{Base: model.Base{ID: uuid.New()}, Email: "ada@example.test", Role: model.RolePatient}
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, PatientCode: "PAT001"}
	svc.On("RegisterPatient", mock.Anything, admin, mock.MatchedBy(func(req *model.RegisterPatientRequest) bool {
		return req.Email == "ada@example.test" && req.Phone != nil && *req.Phone == "555-0100"
	})).Return(&accountsvc.Registration{
		User:        user,
		Patient:     patient,
		Credentials: model.Credentials{Email: user.Email, Password: "generated-pw", Role: model.RolePatient},
	}, nil)

	w := post(setup(svc, admin), "/admin/register/patient",
		`{"email":"ada@example.test","first_name":"Ada","last_name":"Lovelace","phone_number":"555-0100"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data registrationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Patient registered successfully", resp.Data.Message)
	assert.Equal(t, patient.ID, *resp.Data.PatientID)
	assert.Nil(t, resp.Data.DoctorID)
	assert.Equal(t, "PAT001", resp.Data.Code)
	assert.Equal(t, "generated-pw", resp.Data.Credentials.Password)
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestRegisterDoctor(t *testing.T) {
	svc := &mockService{}
	doctor := &model.Doctor{Base: model.Base{ID: uuid.New()}, DoctorCode: "DOC001"}
	svc.On("RegisterDoctor", mock.Anything, admin, mock.Anything).Return(&accountsvc.Registration{
		User:   &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleDoctor},
		Doctor: doctor,
	}, nil).Once()
	svc.On("RegisterDoctor", mock.Anything, admin, mock.Anything).
		Return(nil, errors.Validation("a user with this email already exists", nil))
	r := setup(svc, admin)

	body := `{"email":"house@clinic.test","first_name":"Gregory","last_name":"House",
		"department":"Cardiology","license_number":"LIC-1","consultation_fee":150}`
	w := post(r, "/admin/register/doctor", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"code":"DOC001"`)
	assert.Contains(t, w.Body.String(), `"doctor_id":"`+doctor.ID.String()+`"`)

	w = post(r, "/admin/register/doctor", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrValidation, resp.Error.Code)
}

func TestRegisterValidation(t *testing.T) {
	svc := &mockService{}
	r := setup(svc, admin)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"bad email", "/admin/register/patient", `{"email":"nope","first_name":"Ada","last_name":"Lovelace"}`},
		{"short password", "/admin/register/patient", `{"email":"ada@example.test","first_name":"Ada","last_name":"Lovelace","password":"short"}`},
		{"missing department", "/admin/register/doctor", `{"email":"h@clinic.test","first_name":"G","last_name":"H","license_number":"L"}`},
		{"negative fee", "/admin/register/doctor", `{"email":"h@clinic.test","first_name":"G","last_name":"H","department":"X","license_number":"L","consultation_fee":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(r, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	svc.AssertNotCalled(t, "RegisterPatient", mock.Anything, mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "RegisterDoctor", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterNeedsAdmin(t *testing.T) {
	svc := &mockService{}
	doctorID := uuid.New()
	r := setup(svc, model.Principal{UserID: uuid.New(), Role: model.RoleDoctor, DoctorID: &doctorID})

	w := post(r, "/admin/register/patient", `{"email":"ada@example.test","first_name":"Ada","last_name":"Lovelace"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "RegisterPatient", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword(t *testing.T) {
	svc := &mockService{}
	caller := model.Principal{UserID: uuid.New(), Role: model.RolePatient}
	svc.On("ChangePassword", mock.Anything, caller, &model.ChangePasswordRequest{
		OldPassword: "old-password", NewPassword: "new-password",
	}).Return(nil)
	svc.On("ChangePassword", mock.Anything, caller, mock.Anything).
		Return(errors.Validation("old password is incorrect", nil))
	r := setup(svc, caller)

	w := post(r, "/auth/change-password", `{"old_password":"old-password","new_password":"new-password"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Password updated successfully")

	w = post(r, "/auth/change-password", `{"old_password":"wrong","new_password":"new-password"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/auth/change-password", `{"old_password":"old-password","new_password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "ChangePassword", 2)
}
