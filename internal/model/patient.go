package model

import (
	"github.com/google/uuid"
)

// Patient is the profile of a user with the patient role
type Patient struct {
	Base
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	PatientCode string    `json:"patient_id" db:"patient_code"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
