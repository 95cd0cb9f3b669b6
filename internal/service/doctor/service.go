package doctor

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

// Listing is the public view of a doctor in a department listing
type Listing struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Specialization    string  `json:"specialization"`
	YearsOfExperience int     `json:"years_of_experience"`
	ConsultationFee   float64 `json:"consultation_fee"`
}

type Service struct {
	doctors repository.DoctorRepository
}

func NewService(doctors repository.DoctorRepository) *Service {
	return &Service{doctors: doctors}
}

// Departments lists departments with their count of available doctors
func (s *Service) Departments(ctx context.Context) ([]*model.DepartmentSummary, error) {
	items, err := s.doctors.ListDepartments(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if items == nil {
		items = []*model.DepartmentSummary{}
	}
	return items, nil
}

// ByDepartment lists the available doctors of one department
func (s *Service) ByDepartment(ctx context.Context, department string) ([]Listing, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, errors.Validation("department parameter is required", nil)
	}

	doctors, err := s.doctors.ListByDepartment(ctx, department)
	if err != nil {
		return nil, errors.Internal(err)
	}

	out := make([]Listing, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, Listing{
			ID:                d.ID.String(),
			Name:              d.DisplayName(),
			Specialization:    d.Specialization,
			YearsOfExperience: d.YearsOfExperience,
			ConsultationFee:   d.ConsultationFee,
		})
	}
	return out, nil
}

// Get returns one doctor profile
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, err := s.doctors.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("doctor", err)
		}
		return nil, errors.Internal(err)
	}
	return d, nil
}
