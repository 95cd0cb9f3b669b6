package appointment

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	appointmentsvc "github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/internal/service/doctor"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	Schedule(ctx context.Context, p model.Principal, req *model.ScheduleAppointmentRequest) (*appointmentsvc.Booking, error)
	Cancel(ctx context.Context, p model.Principal, id uuid.UUID, reason string) (*model.Appointment, error)
	Reschedule(ctx context.Context, p model.Principal, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, p model.Principal, id uuid.UUID, req *model.UpdateStatusRequest) (*model.Appointment, error)
	Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, p model.Principal, params appointmentsvc.ListParams) ([]*model.Appointment, error)
	Mine(ctx context.Context, p model.Principal) ([]*model.Appointment, error)
	Upcoming(ctx context.Context, p model.Principal) ([]*model.Appointment, error)
	AvailableSlots(ctx context.Context, p model.Principal, doctorID uuid.UUID, date model.Date) (*appointmentsvc.SlotGrid, error)
	CreateSlot(ctx context.Context, p model.Principal, req *model.CreateSlotRequest) (*model.AppointmentSlot, error)
	ListSlots(ctx context.Context, p model.Principal) ([]*model.SlotOccupancy, error)
	LegacyAvailableSlots(ctx context.Context, doctorID uuid.UUID, start, end *model.Date) (*appointmentsvc.LegacyAvailability, error)
}

type DoctorService interface {
	Departments(ctx context.Context) ([]*model.DepartmentSummary, error)
	ByDepartment(ctx context.Context, department string) ([]doctor.Listing, error)
}

type ReminderService interface {
	Create(ctx context.Context, p model.Principal, appointmentID uuid.UUID, req *model.CreateReminderRequest) (*model.AppointmentReminder, error)
	List(ctx context.Context, p model.Principal, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error)
}

type Handler struct {
	service   Service
	doctors   DoctorService
	reminders ReminderService
}

func NewHandler(service Service, doctors DoctorService, reminders ReminderService) *Handler {
	return &Handler{service: service, doctors: doctors, reminders: reminders}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("/schedule", h.Schedule)
		appointments.GET("", h.List)
		appointments.GET("/my", h.Mine)
		appointments.GET("/upcoming", h.Upcoming)
		appointments.GET("/available-slots", h.AvailableSlots)
		appointments.GET("/departments", h.Departments)
		appointments.GET("/doctors-by-department", h.DoctorsByDepartment)
		appointments.GET("/slots", h.ListSlots)
		appointments.POST("/slots", h.CreateSlot)
		appointments.GET("/legacy-available-slots", h.LegacyAvailableSlots)
		appointments.GET("/:id", h.Get)
		appointments.DELETE("/:id", h.Delete)
		appointments.PATCH("/:id/cancel", h.Cancel)
		appointments.PATCH("/:id/reschedule", h.Reschedule)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.GET("/:id/reminders", h.ListReminders)
		appointments.POST("/:id/reminders", h.CreateReminder)
	}
}

type doctorSummary struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Specialization string `json:"specialization,omitempty"`
	Department     string `json:"department"`
}

type scheduledAppointment struct {
	ID               uuid.UUID               `json:"id"`
	Doctor           doctorSummary           `json:"doctor"`
	Date             model.Date              `json:"date"`
	Time             model.Clock             `json:"time"`
	Status           model.AppointmentStatus `json:"status"`
	Type             model.AppointmentType   `json:"type"`
	Reason           string                  `json:"reason"`
	ConfirmationCode string                  `json:"confirmation_code"`
}

type scheduleResponse struct {
	ID          uuid.UUID            `json:"id"`
	Message     string               `json:"message"`
	Appointment scheduledAppointment `json:"appointment"`
}

func (h *Handler) Schedule(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	var req model.ScheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	booking, err := h.service.Schedule(c.Request.Context(), p, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	a, d := booking.Appointment, booking.Doctor
	resp := scheduleResponse{
		ID:      a.ID,
		Message: "Appointment scheduled successfully",
		Appointment: scheduledAppointment{
			ID: a.ID,
			Doctor: doctorSummary{
				Name:           d.DisplayName(),
				Specialization: d.Specialization,
				Department:     d.Department,
			},
			Date:   a.AppointmentDate,
			Time:   a.AppointmentTime,
			Status: a.Status,
			Type:   a.AppointmentType,
			Reason: a.ChiefComplaint,
		},
	}
	if a.ConfirmationCode != nil {
		resp.Appointment.ConfirmationCode = *a.ConfirmationCode
	}
	httputil.RespondWithStatus(c, http.StatusCreated, resp)
}

func (h *Handler) Get(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	a, err := h.service.Get(c.Request.Context(), p, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, a)
}

func (h *Handler) List(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}

	var params appointmentsvc.ListParams
	var err error
	if s := c.Query("status"); s != "" {
		status := model.AppointmentStatus(s)
		if !status.Valid() {
			httputil.RespondWithError(c, errors.Validation("invalid status filter", nil))
			return
		}
		params.Status = &status
	}
	if params.PatientID, err = handler.QueryUUID(c, "patient_id"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if params.DoctorID, err = handler.QueryUUID(c, "doctor_id"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if params.FromDate, err = handler.QueryDate(c, "from_date"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if params.ToDate, err = handler.QueryDate(c, "to_date"); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	items, err := h.service.List(c.Request.Context(), p, params)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, items)
}

func (h *Handler) Mine(c *gin.Context) {
	h.listFor(c, h.service.Mine)
}

func (h *Handler) Upcoming(c *gin.Context) {
	h.listFor(c, h.service.Upcoming)
}

func (h *Handler) listFor(c *gin.Context, fn func(context.Context, model.Principal) ([]*model.Appointment, error)) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	items, err := fn(c.Request.Context(), p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, items)
}

func (h *Handler) Cancel(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		httputil.RespondWithBindError(c, err)
		return
	}
	h.cancel(c, p, id, req.Reason)
}

// Delete is a cancellation without a reason
func (h *Handler) Delete(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	h.cancel(c, p, id, "")
}

func (h *Handler) cancel(c *gin.Context, p model.Principal, id uuid.UUID, reason string) {
	a, err := h.service.Cancel(c.Request.Context(), p, id, reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Appointment cancelled successfully", a)
}

func (h *Handler) Reschedule(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	a, err := h.service.Reschedule(c.Request.Context(), p, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Appointment rescheduled successfully", a)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	a, err := h.service.UpdateStatus(c.Request.Context(), p, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, a)
}

type slotGridResponse struct {
	Doctor         doctorSummary         `json:"doctor"`
	Date           model.Date            `json:"date"`
	AvailableSlots []appointmentsvc.Slot `json:"available_slots"`
	Message        string                `json:"message,omitempty"`
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	if c.Query("doctor_id") == "" || c.Query("date") == "" {
		httputil.RespondWithError(c, errors.Validation("doctor_id and date parameters are required", nil))
		return
	}
	doctorID, err := handler.QueryUUID(c, "doctor_id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	date, err := handler.QueryDate(c, "date")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	grid, err := h.service.AvailableSlots(c.Request.Context(), p, *doctorID, *date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slotGridResponse{
		Doctor: doctorSummary{
			ID:         grid.Doctor.ID.String(),
			Name:       grid.Doctor.DisplayName(),
			Department: grid.Doctor.Department,
		},
		Date:           grid.Date,
		AvailableSlots: grid.Slots,
		Message:        grid.Message,
	})
}

func (h *Handler) Departments(c *gin.Context) {
	items, err := h.doctors.Departments(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"departments": items})
}

func (h *Handler) DoctorsByDepartment(c *gin.Context) {
	department := c.Query("department")
	doctors, err := h.doctors.ByDepartment(c.Request.Context(), department)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"department": department, "doctors": doctors})
}

func (h *Handler) CreateSlot(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	var req model.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	slot, err := h.service.CreateSlot(c.Request.Context(), p, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, slot)
}

func (h *Handler) ListSlots(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	slots, err := h.service.ListSlots(c.Request.Context(), p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

type dateRange struct {
	Start model.Date `json:"start"`
	End   model.Date `json:"end"`
}

type legacySlotsResponse struct {
	Doctor         string                 `json:"doctor"`
	DateRange      dateRange              `json:"date_range"`
	AvailableSlots []*model.SlotOccupancy `json:"available_slots"`
}

func (h *Handler) LegacyAvailableSlots(c *gin.Context) {
	if c.Query("doctor_id") == "" {
		httputil.RespondWithError(c, errors.Validation("doctor_id parameter is required", nil))
		return
	}
	doctorID, err := handler.QueryUUID(c, "doctor_id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	start, err := handler.QueryDate(c, "start_date")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	end, err := handler.QueryDate(c, "end_date")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	res, err := h.service.LegacyAvailableSlots(c.Request.Context(), *doctorID, start, end)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, legacySlotsResponse{
		Doctor:         res.Doctor.DisplayName(),
		DateRange:      dateRange{Start: res.Start, End: res.End},
		AvailableSlots: res.Slots,
	})
}

func (h *Handler) CreateReminder(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	var req model.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}
	r, err := h.reminders.Create(c.Request.Context(), p, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, r)
}

func (h *Handler) ListReminders(c *gin.Context) {
	p, id, ok := principalAndID(c)
	if !ok {
		return
	}
	items, err := h.reminders.List(c.Request.Context(), p, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, items)
}

func principalAndID(c *gin.Context) (model.Principal, uuid.UUID, bool) {
	p, ok := handler.Principal(c)
	if !ok {
		return p, uuid.Nil, false
	}
	id, ok := handler.ParamUUID(c, "id", "appointment")
	return p, id, ok
}
