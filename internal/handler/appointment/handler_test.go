package appointment

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
	appointmentsvc "github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/internal/service/doctor"
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

func (m *mockService) Schedule(ctx context.Context, p model.Principal, req *model.ScheduleAppointmentRequest) (*appointmentsvc.Booking, error) {
	args := m.Called(ctx, p, req)
	b, _ := args.Get(0).(*appointmentsvc.Booking)
	return b, args.Error(1)
}

func (m *mockService) Cancel(ctx context.Context, p model.Principal, id uuid.UUID, reason string) (*model.Appointment, error) {
	args := m.Called(ctx, p, id, reason)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *mockService) Reschedule(ctx context.Context, p model.Principal, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	args := m.Called(ctx, p, id, req)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *mockService) UpdateStatus(ctx context.Context, p model.Principal, id uuid.UUID, req *model.UpdateStatusRequest) (*model.Appointment, error) {
	args := m.Called(ctx, p, id, req)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *mockService) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, p, id)
	a, _ := args.Get(0).(*model.Appointment)
	return a, args.Error(1)
}

func (m *mockService) List(ctx context.Context, p model.Principal, params appointmentsvc.ListParams) ([]*model.Appointment, error) {
	args := m.Called(ctx, p, params)
	items, _ := args.Get(0).([]*model.Appointment)
	return items, args.Error(1)
}

func (m *mockService) Mine(ctx context.Context, p model.Principal) ([]*model.Appointment, error) {
	args := m.Called(ctx, p)
	items, _ := args.Get(0).([]*model.Appointment)
	return items, args.Error(1)
}

func (m *mockService) Upcoming(ctx context.Context, p model.Principal) ([]*model.Appointment, error) {
	args := m.Called(ctx, p)
	items, _ := args.Get(0).([]*model.Appointment)
	return items, args.Error(1)
}

func (m *mockService) AvailableSlots(ctx context.Context, p model.Principal, doctorID uuid.UUID, date model.Date) (*appointmentsvc.SlotGrid, error) {
	args := m.Called(ctx, p, doctorID, date)
	g, _ := args.Get(0).(*appointmentsvc.SlotGrid)
	return g, args.Error(1)
}

func (m *mockService) CreateSlot(ctx context.Context, p model.Principal, req *model.CreateSlotRequest) (*model.AppointmentSlot, error) {
	args := m.Called(ctx, p, req)
	s, _ := args.Get(0).(*model.AppointmentSlot)
	return s, args.Error(1)
}

func (m *mockService) ListSlots(ctx context.Context, p model.Principal) ([]*model.SlotOccupancy, error) {
	args := m.Called(ctx, p)
	s, _ := args.Get(0).([]*model.SlotOccupancy)
	return s, args.Error(1)
}

func (m *mockService) LegacyAvailableSlots(ctx context.Context, doctorID uuid.UUID, start, end *model.Date) (*appointmentsvc.LegacyAvailability, error) {
	args := m.Called(ctx, doctorID, start, end)
	l, _ := args.Get(0).(*appointmentsvc.LegacyAvailability)
	return l, args.Error(1)
}

type mockDoctors struct {
	mock.Mock
}

func (m *mockDoctors) Departments(ctx context.Context) ([]*model.DepartmentSummary, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).([]*model.DepartmentSummary)
	return d, args.Error(1)
}

func (m *mockDoctors) ByDepartment(ctx context.Context, department string) ([]doctor.Listing, error) {
	args := m.Called(ctx, department)
	d, _ := args.Get(0).([]doctor.Listing)
	return d, args.Error(1)
}

type mockReminders struct {
	mock.Mock
}

func (m *mockReminders) Create(ctx context.Context, p model.Principal, appointmentID uuid.UUID, req *model.CreateReminderRequest) (*model.AppointmentReminder, error) {
	args := m.Called(ctx, p, appointmentID, req)
	r, _ := args.Get(0).(*model.AppointmentReminder)
	return r, args.Error(1)
}

func (m *mockReminders) List(ctx context.Context, p model.Principal, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error) {
	args := m.Called(ctx, p, appointmentID)
	r, _ := args.Get(0).([]*model.AppointmentReminder)
	return r, args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var patient = model.Principal{UserID: uuid.New(), Role: model.RolePatient}

type fixture struct {
	svc       *mockService
	doctors   *mockDoctors
	reminders *mockReminders
	router    *gin.Engine
}

// newFixture mounts the routes behind a stub that authenticates as p; a nil
// p leaves the request anonymous.
func newFixture(p *model.Principal) *fixture {
	f := &fixture{svc: &mockService{}, doctors: &mockDoctors{}, reminders: &mockReminders{}}
	f.router = gin.New()
	group := f.router.Group("/api/v1", func(c *gin.Context) {
		if p != nil {
			c.Set(middleware.ContextPrincipal, *p)
		}
	})
	NewHandler(f.svc, f.doctors, f.reminders).RegisterRoutes(group)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestSchedule(t *testing.T) {
	f := newFixture(&patient)
	code := "APT-2030-abcdef"
	booking := &appointmentsvc.Booking{
		Appointment: &model.Appointment{
			Base:             model.Base{ID: uuid.New()},
			AppointmentDate:  model.NewDate(2030, 1, 7),
			AppointmentTime:  model.NewClock(10, 0),
			AppointmentType:  model.AppointmentTypeConsultation,
			Status:           model.AppointmentStatusScheduled,
			ChiefComplaint:   "chest pain",
			ConfirmationCode: &code,
		},
		Doctor: &model.Doctor{FirstName: "Gregory", LastName: "House", Specialization: "Diagnostics", Department: "Cardiology"},
	}
	f.svc.On("Schedule", mock.Anything, patient, mock.MatchedBy(func(r *model.ScheduleAppointmentRequest) bool {
		return r.Department == "Cardiology" && r.PreferredTime == "10:00"
	})).Return(booking, nil)

	w, env := f.do(t, http.MethodPost, "/api/v1/appointments/schedule", `{
		"department": "Cardiology",
		"appointment_date": "2030-01-07",
		"preferred_time": "10:00",
		"appointment_type": "consultation",
		"reason_for_visit": "chest pain"
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp scheduleResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "Appointment scheduled successfully", resp.Message)
	assert.Equal(t, booking.Appointment.ID, resp.ID)
	assert.Equal(t, "Dr. Gregory House", resp.Appointment.Doctor.Name)
	assert.Equal(t, "Cardiology", resp.Appointment.Doctor.Department)
	assert.Equal(t, "2030-01-07", resp.Appointment.Date.String())
	assert.Equal(t, "10:00", resp.Appointment.Time.String())
	assert.Equal(t, code, resp.Appointment.ConfirmationCode)
	f.svc.AssertExpectations(t)
}

func TestScheduleRejectsBadBody(t *testing.T) {
	f := newFixture(&patient)

	w, env := f.do(t, http.MethodPost, "/api/v1/appointments/schedule", `{
		"department": "Cardiology",
		"appointment_date": "07/01/2030",
		"preferred_time": "10:00",
		"appointment_type": "consultation",
		"reason_for_visit": "x"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(errors.ErrValidation), env.Error.Code)
	f.svc.AssertNotCalled(t, "Schedule", mock.Anything, mock.Anything, mock.Anything)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	f := newFixture(&patient)
	f.svc.On("Schedule", mock.Anything, patient, mock.Anything).Return(nil, errors.SlotTaken(nil))

	w, env := f.do(t, http.MethodPost, "/api/v1/appointments/schedule", `{
		"department": "Cardiology",
		"appointment_date": "2030-01-07",
		"preferred_time": "10:00",
		"appointment_type": "consultation",
		"reason_for_visit": "x"
	}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, string(errors.ErrSlotTaken), env.Error.Code)
}

func TestAnonymousIsUnauthorized(t *testing.T) {
	f := newFixture(nil)

	w, _ := f.do(t, http.MethodGet, "/api/v1/appointments/my", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCancel(t *testing.T) {
	id := uuid.New()
	cancelled := &model.Appointment{Base: model.Base{ID: id}, Status: model.AppointmentStatusCancelled}

	t.Run("with reason", func(t *testing.T) {
		f := newFixture(&patient)
		f.svc.On("Cancel", mock.Anything, patient, id, "feeling better").Return(cancelled, nil)

		w, env := f.do(t, http.MethodPatch, "/api/v1/appointments/"+id.String()+"/cancel", `{"cancellation_reason":"feeling better"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Appointment cancelled successfully", env.Message)
		f.svc.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		f := newFixture(&patient)
		f.svc.On("Cancel", mock.Anything, patient, id, "").Return(cancelled, nil)

		w, _ := f.do(t, http.MethodPatch, "/api/v1/appointments/"+id.String()+"/cancel", "")
		assert.Equal(t, http.StatusOK, w.Code)
		f.svc.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture(&patient)
		f.svc.On("Cancel", mock.Anything, patient, id, "").Return(cancelled, nil)

		w, _ := f.do(t, http.MethodDelete, "/api/v1/appointments/"+id.String(), "")
		assert.Equal(t, http.StatusOK, w.Code)
		f.svc.AssertExpectations(t)
	})

	t.Run("bad id", func(t *testing.T) {
		f := newFixture(&patient)

		w, env := f.do(t, http.MethodPatch, "/api/v1/appointments/nope/cancel", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid appointment ID", env.Error.Message)
	})
}

func TestList(t *testing.T) {
	admin := model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
	doctorID := uuid.New()
	f := newFixture(&admin)

	status := model.AppointmentStatusConfirmed
	from := model.NewDate(2030, 1, 1)
	f.svc.On("List", mock.Anything, admin, appointmentsvc.ListParams{
		Status:   &status,
		DoctorID: &doctorID,
		FromDate: &from,
	}).Return([]*model.Appointment{}, nil)

	w, env := f.do(t, http.MethodGet, "/api/v1/appointments?status=confirmed&doctor_id="+doctorID.String()+"&from_date=2030-01-01", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	f.svc.AssertExpectations(t)

	w, _ = f.do(t, http.MethodGet, "/api/v1/appointments?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/appointments?to_date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailableSlots(t *testing.T) {
	doctorID := uuid.New()
	date := model.NewDate(2030, 1, 7)

	t.Run("missing parameters", func(t *testing.T) {
		f := newFixture(&patient)
		w, env := f.do(t, http.MethodGet, "/api/v1/appointments/available-slots?date=2030-01-07", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "doctor_id and date parameters are required", env.Error.Message)
	})

	t.Run("grid", func(t *testing.T) {
		f := newFixture(&patient)
		f.svc.On("AvailableSlots", mock.Anything, patient, doctorID, date).Return(&appointmentsvc.SlotGrid{
			Doctor: &model.Doctor{Base: model.Base{ID: doctorID}, FirstName: "Gregory", LastName: "House", Department: "Cardiology"},
			Date:   date,
			Slots:  []appointmentsvc.Slot{{Time: model.NewClock(9, 0), Status: appointmentsvc.SlotAvailable}},
		}, nil)

		w, env := f.do(t, http.MethodGet, "/api/v1/appointments/available-slots?doctor_id="+doctorID.String()+"&date=2030-01-07", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"doctor": {"id": "`+doctorID.String()+`", "name": "Dr. Gregory House", "department": "Cardiology"},
			"date": "2030-01-07",
			"available_slots": [{"time": "09:00", "status": "available"}]
		}`, string(env.Data))
	})
}

func TestDoctorsByDepartment(t *testing.T) {
	f := newFixture(&patient)
	id := uuid.New()
	f.doctors.On("ByDepartment", mock.Anything, "Cardiology").Return([]doctor.Listing{
		{ID: id.String(), Name: "Dr. Gregory House", Specialization: "Diagnostics", YearsOfExperience: 20, ConsultationFee: 150},
	}, nil)
	f.doctors.On("ByDepartment", mock.Anything, "").Return(nil, errors.Validation("department parameter is required", nil))

	w, env := f.do(t, http.MethodGet, "/api/v1/appointments/doctors-by-department?department=Cardiology", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Department string           `json:"department"`
		Doctors    []doctor.Listing `json:"doctors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "Cardiology", body.Department)
	require.Len(t, body.Doctors, 1)
	assert.Equal(t, id.String(), body.Doctors[0].ID)

	w, _ = f.do(t, http.MethodGet, "/api/v1/appointments/doctors-by-department", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLegacyAvailableSlots(t *testing.T) {
	f := newFixture(&patient)
	doctorID := uuid.New()
	start := model.NewDate(2030, 1, 7)
	f.svc.On("LegacyAvailableSlots", mock.Anything, doctorID, &start, (*model.Date)(nil)).Return(&appointmentsvc.LegacyAvailability{
		Doctor: &model.Doctor{FirstName: "Gregory", LastName: "House"},
		Start:  start,
		End:    start.AddDays(7),
		Slots:  []*model.SlotOccupancy{},
	}, nil)

	w, env := f.do(t, http.MethodGet, "/api/v1/appointments/legacy-available-slots?doctor_id="+doctorID.String()+"&start_date=2030-01-07", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"doctor": "Dr. Gregory House",
		"date_range": {"start": "2030-01-07", "end": "2030-01-14"},
		"available_slots": []
	}`, string(env.Data))

	w, _ = f.do(t, http.MethodGet, "/api/v1/appointments/legacy-available-slots", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReminders(t *testing.T) {
	f := newFixture(&patient)
	id := uuid.New()
	f.reminders.On("Create", mock.Anything, patient, id, mock.MatchedBy(func(r *model.CreateReminderRequest) bool {
		return r.ReminderType == "email"
	})).Return(&model.AppointmentReminder{AppointmentID: id}, nil)
	f.reminders.On("List", mock.Anything, patient, id).Return([]*model.AppointmentReminder{}, nil)

	w, _ := f.do(t, http.MethodPost, "/api/v1/appointments/"+id.String()+"/reminders",
		`{"reminder_type":"email","reminder_time":"2030-01-06T10:00:00Z"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/appointments/"+id.String()+"/reminders", "")
	assert.Equal(t, http.StatusOK, w.Code)
	f.reminders.AssertExpectations(t)
}
