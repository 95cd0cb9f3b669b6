// Package rbac decides which principal may perform which action on an
// appointment, a doctor's schedule or the user directory.
package rbac

import (
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

type Action string

const (
	ActionSchedule        Action = "appointment:schedule"
	ActionView            Action = "appointment:view"
	ActionCancel          Action = "appointment:cancel"
	ActionReschedule      Action = "appointment:reschedule"
	ActionUpdateStatus    Action = "appointment:update_status"
	ActionViewFullGrid    Action = "slots:view_full_grid"
	ActionManageSchedule  Action = "schedule:manage"
	ActionManageSlots     Action = "slots:manage"
	ActionManageReminders Action = "reminders:manage"
	ActionRegisterUser    Action = "users:register"
)

// Resource identifies the patient and doctor an action touches. Zero ids
// mean the action is not tied to that party.
type Resource struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
}

func ForAppointment(a *model.Appointment) Resource {
	return Resource{PatientID: a.PatientID, DoctorID: a.DoctorID}
}

// Authorizer is what services depend on
type Authorizer interface {
	Authorize(p model.Principal, action Action, res Resource) error
}

type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

func (Policy) Authorize(p model.Principal, action Action, res Resource) error {
	if p.IsAdmin() {
		return nil
	}

	var allowed bool
	switch action {
	case ActionSchedule:
		allowed = isPatient(p, res.PatientID) || p.IsDoctor()
	case ActionView, ActionCancel:
		allowed = isPatient(p, res.PatientID) || isDoctor(p, res.DoctorID)
	case ActionReschedule:
		allowed = isPatient(p, res.PatientID)
	case ActionUpdateStatus, ActionManageReminders, ActionManageSchedule, ActionManageSlots:
		allowed = isDoctor(p, res.DoctorID)
	case ActionViewFullGrid:
		allowed = p.IsDoctor()
	}

	if !allowed {
		return errors.Forbidden(denial(action))
	}
	return nil
}

func isPatient(p model.Principal, id uuid.UUID) bool {
	return p.IsPatient() && p.PatientID != nil && *p.PatientID == id
}

func isDoctor(p model.Principal, id uuid.UUID) bool {
	return p.IsDoctor() && p.DoctorID != nil && *p.DoctorID == id
}

func denial(action Action) string {
	switch action {
	case ActionSchedule:
		return "patients can only book appointments for themselves"
	case ActionCancel:
		return "you do not have permission to cancel this appointment"
	case ActionReschedule:
		return "you do not have permission to reschedule this appointment"
	case ActionUpdateStatus:
		return "only the assigned doctor can update this appointment"
	case ActionManageSchedule:
		return "you can only manage your own schedule"
	case ActionRegisterUser:
		return "only admins can register users"
	default:
		return "you do not have permission to perform this action"
	}
}
