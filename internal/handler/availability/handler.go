package availability

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/handler"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
)

type Service interface {
	GetSchedule(ctx context.Context, doctorID uuid.UUID) ([]*model.Availability, error)
	ReplaceSchedule(ctx context.Context, p model.Principal, doctorID uuid.UUID, req *model.ReplaceScheduleRequest) ([]*model.Availability, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors/:id")
	{
		doctors.GET("/availability", h.Get)
		doctors.PUT("/availability", h.Replace)
	}
}

func (h *Handler) Get(c *gin.Context) {
	doctorID, ok := handler.ParamUUID(c, "id", "doctor")
	if !ok {
		return
	}
	rows, err := h.service.GetSchedule(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"doctor_id": doctorID, "availability": rows})
}

// Replace swaps the doctor's whole weekly schedule for the submitted one
func (h *Handler) Replace(c *gin.Context) {
	p, ok := handler.Principal(c)
	if !ok {
		return
	}
	doctorID, ok := handler.ParamUUID(c, "id", "doctor")
	if !ok {
		return
	}
	var req model.ReplaceScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithBindError(c, err)
		return
	}

	rows, err := h.service.ReplaceSchedule(c.Request.Context(), p, doctorID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Availability updated successfully", gin.H{"doctor_id": doctorID, "availability": rows})
}
