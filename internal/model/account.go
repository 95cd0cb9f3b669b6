package model

import "strings"

// RegisterUserRequest is the account part of an admin registration. An
// empty password makes the service generate one.
type RegisterUserRequest struct {
	Email     string `json:"email" binding:"required,email,max=255"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Password  string `json:"password" binding:"omitempty,min=8,max=72"`
}

// NewUser builds the user row for the request with an already hashed password
func (r *RegisterUserRequest) NewUser(role Role, passwordHash string) *User {
	return &User{
		Email:        strings.ToLower(strings.TrimSpace(r.Email)),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		Role:         role,
		IsActive:     true,
	}
}

type RegisterPatientRequest struct {
	RegisterUserRequest
	Phone *string `json:"phone_number" binding:"omitempty,max=30"`
}

type RegisterDoctorRequest struct {
	RegisterUserRequest
	Specialization    string  `json:"specialization" binding:"max=100"`
	Department        string  `json:"department" binding:"required,max=100"`
	LicenseNumber     string  `json:"license_number" binding:"required,max=50"`
	YearsOfExperience int     `json:"years_of_experience" binding:"min=0,max=80"`
	ConsultationFee   float64 `json:"consultation_fee" binding:"min=0"`
}

// Credentials are returned once to the admin who registered the account
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
