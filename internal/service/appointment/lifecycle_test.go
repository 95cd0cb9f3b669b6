package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

var (
	monday  = model.NewDate(2030, time.January, 7)
	tuesday = model.NewDate(2030, time.January, 1)
	nowTime = time.Date(2030, time.January, 1, 8, 0, 0, 0, time.UTC)
)

func booked(status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		Base:            model.Base{ID: uuid.MustParse("6f1c2d3e-4b5a-4c6d-8e7f-0123456789ab")},
		AppointmentDate: monday,
		AppointmentTime: model.NewClock(9, 30),
		Status:          status,
	}
}

func TestTransitionLeavesIllegalMovesUntouched(t *testing.T) {
	a := booked(model.AppointmentStatusScheduled)

	err := transition(a, model.AppointmentStatusCompleted)
	assert.True(t, errors.Is(err, errors.ErrIllegalTransition))
	assert.Equal(t, model.AppointmentStatusScheduled, a.Status)

	require.NoError(t, transition(a, model.AppointmentStatusConfirmed))
	assert.Equal(t, model.AppointmentStatusConfirmed, a.Status)
}

func TestCancel(t *testing.T) {
	t.Run("stamps reason and time", func(t *testing.T) {
		a := booked(model.AppointmentStatusConfirmed)
		require.NoError(t, cancel(a, "", nowTime, time.UTC))
		assert.Equal(t, model.AppointmentStatusCancelled, a.Status)
		assert.Equal(t, "No reason provided", *a.CancellationReason)
		assert.Equal(t, nowTime, *a.CancelledAt)
	})

	t.Run("completed", func(t *testing.T) {
		a := booked(model.AppointmentStatusCompleted)
		err := cancel(a, "x", nowTime, time.UTC)
		assert.True(t, errors.Is(err, errors.ErrIllegalTransition))
		assert.Nil(t, a.CancelledAt)
	})

	t.Run("inside notice period", func(t *testing.T) {
		a := booked(model.AppointmentStatusScheduled)
		late := time.Date(2030, time.January, 6, 10, 0, 0, 0, time.UTC)
		err := cancel(a, "x", late, time.UTC)
		assert.True(t, errors.Is(err, errors.ErrIllegalTransition))
		assert.Contains(t, err.Error(), "24 hours")
		assert.Equal(t, model.AppointmentStatusScheduled, a.Status)
	})
}

func TestReschedule(t *testing.T) {
	next := monday.AddDays(7)

	t.Run("from confirmed", func(t *testing.T) {
		a := booked(model.AppointmentStatusConfirmed)
		require.NoError(t, reschedule(a, next, model.NewClock(10, 0), "clash", nowTime))
		assert.Equal(t, model.AppointmentStatusRescheduled, a.Status)
		assert.Equal(t, next, a.AppointmentDate)
		assert.Equal(t, model.NewClock(10, 0), a.AppointmentTime)
		assert.Equal(t, "clash", *a.RescheduleReason)
		assert.Equal(t, nowTime, *a.RescheduledAt)
	})

	t.Run("from cancelled clears cancellation", func(t *testing.T) {
		a := booked(model.AppointmentStatusScheduled)
		require.NoError(t, cancel(a, "sick", nowTime, time.UTC))
		require.NoError(t, reschedule(a, next, model.NewClock(10, 0), "", nowTime))
		assert.Equal(t, model.AppointmentStatusRescheduled, a.Status)
		assert.Nil(t, a.CancelledAt)
		assert.Nil(t, a.CancellationReason)
		assert.Equal(t, "No reason provided", *a.RescheduleReason)
	})

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusInProgress, model.AppointmentStatusCompleted, model.AppointmentStatusNoShow,
	} {
		t.Run(string(status), func(t *testing.T) {
			a := booked(status)
			err := reschedule(a, next, model.NewClock(10, 0), "", nowTime)
			assert.True(t, errors.Is(err, errors.ErrIllegalTransition))
			assert.Equal(t, monday, a.AppointmentDate)
		})
	}
}

func TestConfirmationCode(t *testing.T) {
	assert.Equal(t, "APT-2030-6789ab", ConfirmationCode(booked(model.AppointmentStatusScheduled)))
}
