package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		legal    bool
	}{
		{AppointmentStatusScheduled, AppointmentStatusConfirmed, true},
		{AppointmentStatusScheduled, AppointmentStatusCancelled, true},
		{AppointmentStatusScheduled, AppointmentStatusInProgress, false},
		{AppointmentStatusRescheduled, AppointmentStatusConfirmed, true},
		{AppointmentStatusConfirmed, AppointmentStatusInProgress, true},
		{AppointmentStatusConfirmed, AppointmentStatusNoShow, true},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, false},
		{AppointmentStatusInProgress, AppointmentStatusCompleted, true},
		{AppointmentStatusInProgress, AppointmentStatusCancelled, false},
		{AppointmentStatusCancelled, AppointmentStatusScheduled, true},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusCompleted, AppointmentStatusScheduled, false},
		{AppointmentStatusNoShow, AppointmentStatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.legal, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestLiveStatuses(t *testing.T) {
	assert.ElementsMatch(t, []string{"scheduled", "confirmed", "in_progress", "rescheduled"}, LiveStatuses())
	assert.True(t, AppointmentStatusRescheduled.IsLive())
	assert.False(t, AppointmentStatusCancelled.IsLive())
	assert.False(t, AppointmentStatusNoShow.IsLive())
}

func TestCanBeCancelled(t *testing.T) {
	loc := time.UTC
	now := time.Date(2030, time.January, 7, 8, 0, 0, 0, loc)

	at := func(d time.Duration, status AppointmentStatus) *Appointment {
		start := now.Add(d)
		return &Appointment{
			AppointmentDate: DateOf(start),
			AppointmentTime: NewClock(start.Hour(), start.Minute()),
			Status:          status,
		}
	}

	assert.True(t, at(48*time.Hour, AppointmentStatusScheduled).CanBeCancelled(now, loc))
	assert.True(t, at(25*time.Hour, AppointmentStatusConfirmed).CanBeCancelled(now, loc))
	assert.False(t, at(24*time.Hour, AppointmentStatusScheduled).CanBeCancelled(now, loc))
	assert.False(t, at(2*time.Hour, AppointmentStatusScheduled).CanBeCancelled(now, loc))
	assert.False(t, at(72*time.Hour, AppointmentStatusCompleted).CanBeCancelled(now, loc))
	assert.False(t, at(72*time.Hour, AppointmentStatusCancelled).CanBeCancelled(now, loc))
	assert.False(t, at(72*time.Hour, AppointmentStatusNoShow).CanBeCancelled(now, loc))
}

func TestEndTime(t *testing.T) {
	a := &Appointment{AppointmentTime: NewClock(9, 30), Duration: 45}
	assert.Equal(t, NewClock(10, 15), a.EndTime())
}
