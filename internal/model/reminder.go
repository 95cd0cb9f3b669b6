package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderType string

const (
	ReminderTypeEmail ReminderType = "email"
	ReminderTypeSMS   ReminderType = "sms"
	ReminderTypePush  ReminderType = "push"
)

type AppointmentReminder struct {
	Base
	AppointmentID uuid.UUID    `json:"appointment_id" db:"appointment_id"`
	ReminderType  ReminderType `json:"reminder_type" db:"reminder_type"`
	ReminderTime  time.Time    `json:"reminder_time" db:"reminder_time"`
	IsSent        bool         `json:"is_sent" db:"is_sent"`
	SentAt        *time.Time   `json:"sent_at,omitempty" db:"sent_at"`
}

type CreateReminderRequest struct {
	ReminderType string    `json:"reminder_type" binding:"required,oneof=email sms push"`
	ReminderTime time.Time `json:"reminder_time" binding:"required"`
}

// DueReminder joins a pending reminder with what is needed to deliver it
type DueReminder struct {
	AppointmentReminder
	PatientEmail     string  `db:"patient_email"`
	PatientName      string  `db:"patient_name"`
	DoctorName       string  `db:"doctor_name"`
	AppointmentDate  Date    `db:"appointment_date"`
	AppointmentTime  Clock   `db:"appointment_time"`
	ConfirmationCode *string `db:"confirmation_code"`
}
