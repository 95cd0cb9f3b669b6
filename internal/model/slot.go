package model

import (
	"github.com/google/uuid"
)

// AppointmentSlot is a precomputed bookable slot. Its occupancy is never
// stored; it is counted from live appointments when read.
type AppointmentSlot struct {
	Base
	DoctorID        uuid.UUID `json:"doctor_id" db:"doctor_id"`
	Date            Date      `json:"date" db:"date"`
	StartTime       Clock     `json:"start_time" db:"start_time"`
	EndTime         Clock     `json:"end_time" db:"end_time"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	MaxAppointments int       `json:"max_appointments" db:"max_appointments"`
}

// SlotOccupancy is a slot with its live appointment count
type SlotOccupancy struct {
	AppointmentSlot
	CurrentAppointments int `json:"current_appointments" db:"current_appointments"`
}

func (s *SlotOccupancy) IsFullyBooked() bool {
	return s.CurrentAppointments >= s.MaxAppointments
}

type CreateSlotRequest struct {
	DoctorID        string `json:"doctor_id" binding:"omitempty,uuid"`
	Date            string `json:"date" binding:"required,date"`
	StartTime       string `json:"start_time" binding:"required,clock"`
	EndTime         string `json:"end_time" binding:"required,clock"`
	MaxAppointments int    `json:"max_appointments" binding:"omitempty,min=1,max=50"`
}

type SlotFilters struct {
	DoctorID *uuid.UUID
	FromDate *Date
	ToDate   *Date
	// OnlyAvailable keeps slots flagged available
	OnlyAvailable bool
}
