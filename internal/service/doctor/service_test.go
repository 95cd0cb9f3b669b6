package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

func seed(store *memory.Store, department string, available bool) model.Doctor {
	u := model.User{Base: model.Base{ID: uuid.New()}, FirstName: "Meredith", LastName: department,
		Role: model.RoleDoctor, IsActive: true}
	store.AddUser(u)
	d := model.Doctor{Base: model.Base{ID: uuid.New()}, UserID: u.ID, Department: department,
		YearsOfExperience: 12, ConsultationFee: 90, IsAvailable: available}
	store.AddDoctor(d)
	return d
}

func TestDepartments(t *testing.T) {
	store := memory.NewStore()
	seed(store, "Cardiology", true)
	seed(store, "Cardiology", true)
	seed(store, "Neurology", true)
	seed(store, "Oncology", false)

	got, err := NewService(store.Doctors()).Departments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*model.DepartmentSummary{
		{Name: "Cardiology", DoctorCount: 2},
		{Name: "Neurology", DoctorCount: 1},
	}, got)
}

func TestByDepartment(t *testing.T) {
	store := memory.NewStore()
	d := seed(store, "Neurology", true)
	seed(store, "Neurology", false)
	svc := NewService(store.Doctors())

	got, err := svc.ByDepartment(context.Background(), "Neurology")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Listing{
		ID:                d.ID.String(),
		Name:              "Dr. Meredith Neurology",
		YearsOfExperience: 12,
		ConsultationFee:   90,
	}, got[0])

	empty, err := svc.ByDepartment(context.Background(), "Dermatology")
	require.NoError(t, err)
	assert.NotNil(t, empty)

	_, err = svc.ByDepartment(context.Background(), "  ")
	assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))

	_, err = svc.Get(context.Background(), uuid.New())
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))
}
