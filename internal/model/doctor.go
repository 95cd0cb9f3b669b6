package model

import (
	"github.com/google/uuid"
)

// Doctor is the professional profile of a user with the doctor role
type Doctor struct {
	Base
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	DoctorCode        string    `json:"doctor_id" db:"doctor_code"`
	FirstName         string    `json:"first_name" db:"first_name"`
	LastName          string    `json:"last_name" db:"last_name"`
	Email             string    `json:"email" db:"email"`
	Specialization    string    `json:"specialization" db:"specialization"`
	Department        string    `json:"department" db:"department"`
	LicenseNumber     string    `json:"license_number" db:"license_number"`
	YearsOfExperience int       `json:"years_of_experience" db:"years_of_experience"`
	ConsultationFee   float64   `json:"consultation_fee" db:"consultation_fee"`
	IsAvailable       bool      `json:"is_available" db:"is_available"`
}

func (d *Doctor) DisplayName() string {
	return "Dr. " + d.FirstName + " " + d.LastName
}

// DepartmentSummary counts active doctors per department
type DepartmentSummary struct {
	Name        string `json:"name" db:"department"`
	DoctorCount int    `json:"doctors_count" db:"doctor_count"`
}
