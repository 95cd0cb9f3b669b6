package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/internal/service/rbac"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

func input(day, start, end string) model.AvailabilityInput {
	return model.AvailabilityInput{DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestReplaceSchedule(t *testing.T) {
	store := memory.NewStore()
	doctor := model.Doctor{Base: model.Base{ID: uuid.New()}, UserID: uuid.New(), IsAvailable: true}
	store.AddDoctor(doctor)
	store.AddAvailability(model.Availability{DoctorID: doctor.ID, DayOfWeek: model.Friday,
		StartTime: model.NewClock(8, 0), EndTime: model.NewClock(9, 0), IsAvailable: true})

	svc := NewService(store, rbac.NewPolicy(), logger.Nop())
	ctx := context.Background()
	self := model.Principal{Role: model.RoleDoctor, DoctorID: &doctor.ID}

	rows, err := svc.ReplaceSchedule(ctx, self, doctor.ID, &model.ReplaceScheduleRequest{
		Availability: []model.AvailabilityInput{
			input("Wednesday", "14:00", "17:00"),
			input("monday", "09:00", "12:00"),
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	got, err := svc.GetSchedule(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.Monday, got[0].DayOfWeek)
	assert.Equal(t, model.Wednesday, got[1].DayOfWeek)
	assert.Equal(t, model.NewClock(14, 0), got[1].StartTime)
}

func TestReplaceScheduleRejects(t *testing.T) {
	store := memory.NewStore()
	doctor := model.Doctor{Base: model.Base{ID: uuid.New()}, UserID: uuid.New(), IsAvailable: true}
	store.AddDoctor(doctor)
	store.AddAvailability(model.Availability{DoctorID: doctor.ID, DayOfWeek: model.Friday,
		StartTime: model.NewClock(8, 0), EndTime: model.NewClock(9, 0), IsAvailable: true})

	svc := NewService(store, rbac.NewPolicy(), logger.Nop())
	ctx := context.Background()
	admin := model.Principal{Role: model.RoleAdmin}
	other := model.Principal{Role: model.RoleDoctor, DoctorID: ptr(uuid.New())}

	_, err := svc.ReplaceSchedule(ctx, other, doctor.ID, &model.ReplaceScheduleRequest{})
	assert.Equal(t, errors.ErrAuthorizationDenied, errors.CodeOf(err))

	_, err = svc.ReplaceSchedule(ctx, admin, doctor.ID, &model.ReplaceScheduleRequest{
		Availability: []model.AvailabilityInput{input("monday", "09:00", "12:00"), input("monday", "11:00", "13:00")},
	})
	assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))

	_, err = svc.ReplaceSchedule(ctx, admin, doctor.ID, &model.ReplaceScheduleRequest{
		Availability: []model.AvailabilityInput{input("monday", "12:00", "09:00")},
	})
	assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))

	_, err = svc.ReplaceSchedule(ctx, admin, uuid.New(), &model.ReplaceScheduleRequest{})
	assert.Equal(t, errors.ErrNotFound, errors.CodeOf(err))

	// the previous schedule survives every rejection
	got, err := svc.GetSchedule(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.Friday, got[0].DayOfWeek)
}

func ptr[T any](v T) *T { return &v }
