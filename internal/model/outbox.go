package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Appointment event types published through the outbox
const (
	EventAppointmentScheduled   = "appointment.scheduled"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentRescheduled = "appointment.rescheduled"
	EventAppointmentStatus      = "appointment.status_changed"
)

// AppointmentEvent is the payload consumed by notification subscribers
type AppointmentEvent struct {
	AppointmentID    uuid.UUID         `json:"appointment_id"`
	PatientID        uuid.UUID         `json:"patient_id"`
	DoctorID         uuid.UUID         `json:"doctor_id"`
	Status           AppointmentStatus `json:"status"`
	AppointmentDate  Date              `json:"appointment_date"`
	AppointmentTime  Clock             `json:"appointment_time"`
	ConfirmationCode *string           `json:"confirmation_code,omitempty"`
	CancelledAt      *time.Time        `json:"cancelled_at,omitempty"`
	RescheduledAt    *time.Time        `json:"rescheduled_at,omitempty"`
	OccurredAt       time.Time         `json:"occurred_at"`
}

func NewAppointmentEvent(a *Appointment, at time.Time) AppointmentEvent {
	return AppointmentEvent{
		AppointmentID:    a.ID,
		PatientID:        a.PatientID,
		DoctorID:         a.DoctorID,
		Status:           a.Status,
		AppointmentDate:  a.AppointmentDate,
		AppointmentTime:  a.AppointmentTime,
		ConfirmationCode: a.ConfirmationCode,
		CancelledAt:      a.CancelledAt,
		RescheduledAt:    a.RescheduledAt,
		OccurredAt:       at,
	}
}
