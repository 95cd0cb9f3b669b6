package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusInProgress  AppointmentStatus = "in_progress"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusNoShow      AppointmentStatus = "no_show"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
)

// Statuses that occupy their (doctor, date, time) slot
var liveStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusInProgress,
	AppointmentStatusRescheduled,
}

// Legal lifecycle moves. Rescheduled is a marker that behaves like
// scheduled; entering it is done by a reschedule, never by a plain move.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusRescheduled: {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed:   {AppointmentStatusInProgress, AppointmentStatusCancelled, AppointmentStatusNoShow},
	AppointmentStatusInProgress:  {AppointmentStatusCompleted},
	AppointmentStatusCancelled:   {AppointmentStatusScheduled},
}

// LiveStatuses returns the slot-occupying statuses as strings for queries
func LiveStatuses() []string {
	out := make([]string, len(liveStatuses))
	for i, s := range liveStatuses {
		out[i] = string(s)
	}
	return out
}

func (s AppointmentStatus) IsLive() bool {
	for _, live := range liveStatuses {
		if s == live {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) CanTransitionTo(to AppointmentStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow,
		AppointmentStatusRescheduled:
		return true
	}
	return false
}

type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "consultation"
	AppointmentTypeFollowUp     AppointmentType = "follow_up"
	AppointmentTypeCheckUp      AppointmentType = "check_up"
	AppointmentTypeEmergency    AppointmentType = "emergency"
	AppointmentTypeProcedure    AppointmentType = "procedure"
	AppointmentTypeTherapy      AppointmentType = "therapy"
)

const (
	DefaultDuration    = 30
	CancellationNotice = 24 * time.Hour
)

type Appointment struct {
	Base
	PatientID          uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID           uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	AppointmentDate    Date              `db:"appointment_date" json:"appointment_date"`
	AppointmentTime    Clock             `db:"appointment_time" json:"appointment_time"`
	Duration           int               `db:"duration" json:"duration"`
	AppointmentType    AppointmentType   `db:"appointment_type" json:"appointment_type"`
	Status             AppointmentStatus `db:"status" json:"status"`
	ChiefComplaint     string            `db:"chief_complaint" json:"chief_complaint"`
	Notes              *string           `db:"notes" json:"notes,omitempty"`
	DoctorNotes        *string           `db:"doctor_notes" json:"doctor_notes,omitempty"`
	ConfirmationCode   *string           `db:"confirmation_code" json:"confirmation_code,omitempty"`
	CancellationReason *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `db:"cancelled_at" json:"cancelled_at,omitempty"`
	RescheduleReason   *string           `db:"reschedule_reason" json:"reschedule_reason,omitempty"`
	RescheduledAt      *time.Time        `db:"rescheduled_at" json:"rescheduled_at,omitempty"`
	ConsultationFee    float64           `db:"consultation_fee" json:"consultation_fee"`
	IsPaid             bool              `db:"is_paid" json:"is_paid"`
}

// EndTime is derived from the start and duration
func (a *Appointment) EndTime() Clock {
	return a.AppointmentTime.Add(time.Duration(a.Duration) * time.Minute)
}

func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.AppointmentDate.At(a.AppointmentTime, loc)
}

// CanBeCancelled is false for completed, cancelled and no-show
// appointments, and otherwise true only while more than 24 hours remain.
func (a *Appointment) CanBeCancelled(now time.Time, loc *time.Location) bool {
	switch a.Status {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return false
	}
	return a.StartsAt(loc).Sub(now) > CancellationNotice
}

type AppointmentFilters struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Statuses  []AppointmentStatus
	FromDate  *Date
	ToDate    *Date
	// Ascending orders by date and time; the default is most recent first
	Ascending bool
	Limit     int
}

// ScheduleAppointmentRequest is the body of a booking request
type ScheduleAppointmentRequest struct {
	Department      string  `json:"department" binding:"required"`
	PreferredDoctor string  `json:"preferred_doctor" binding:"omitempty,uuid"`
	PatientID       string  `json:"patient_id" binding:"omitempty,uuid"`
	AppointmentDate string  `json:"appointment_date" binding:"required,date"`
	PreferredTime   string  `json:"preferred_time" binding:"required,clock"`
	AppointmentType string  `json:"appointment_type" binding:"required,oneof=consultation follow_up check_up emergency procedure therapy"`
	ReasonForVisit  string  `json:"reason_for_visit" binding:"required,max=2000"`
	Notes           *string `json:"notes" binding:"omitempty,max=2000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"cancellation_reason" binding:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	NewDate string `json:"new_date" binding:"required,date"`
	NewTime string `json:"new_time" binding:"required,clock"`
	Reason  string `json:"reschedule_reason" binding:"max=1000"`
}

type UpdateStatusRequest struct {
	Status      string  `json:"status" binding:"required,oneof=confirmed in_progress completed no_show"`
	DoctorNotes *string `json:"doctor_notes" binding:"omitempty,max=4000"`
}
