package account

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	accountsvc "github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	RegisterPatient(ctx context.Context, p model.Principal, req *model.RegisterPatientRequest) (*accountsvc.Registration, error)
	RegisterDoctor(ctx context.Context, p model.Principal, req *model.RegisterDoctorRequest) (*accountsvc.Registration, error)
	ChangePassword(ctx context.Context, p model.Principal, req *model.ChangePasswordRequest) error
}

type Handler struct {
	service   Service
	adminOnly gin.HandlerFunc
}

// NewHandler guards the admin routes with adminOnly
func NewHandler(service Service, adminOnly gin.HandlerFunc) *Handler {
	return &Handler{service: service, adminOnly: adminOnly}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin", h.adminOnly)
	{
		admin.POST("/register/patient", h.RegisterPatient)
		admin.POST("/register/doctor", h.RegisterDoctor)
	}
	r.POST("/auth/change-password", h.ChangePassword)
}

type registrationResponse struct {
	Message     string            `json:"message"`
	User        *model.User       `json:"user"`
	PatientID   *uuid.UUID        `json:"patient_id,omitempty"`
	DoctorID    *uuid.UUID        `json:"doctor_id,omitempty"`
	Code        string            `json:"code"`
	Credentials model.Credentials `json:"credentials"`
}

func (h *Handler) RegisterPatient(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	reg, err := h.service.RegisterPatient(c.Request.Context(), p, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, registrationResponse{
		Message:     "Patient registered successfully",
		User:        reg.User,
		PatientID:   &reg.Patient.ID,
		Code:        reg.Patient.PatientCode,
		Credentials: reg.Credentials,
	})
}

func (h *Handler) RegisterDoctor(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	var req model.RegisterDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	reg, err := h.service.RegisterDoctor(c.Request.Context(), p, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, registrationResponse{
		Message:     "Doctor registered successfully",
		User:        reg.User,
		DoctorID:    &reg.Doctor.ID,
		Code:        reg.Doctor.DoctorCode,
		Credentials: reg.Credentials,
	})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), p, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Password updated successfully", nil)
}
