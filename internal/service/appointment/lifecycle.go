package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

const defaultReason = "No reason provided"

// transition moves a to status when the lifecycle allows it and leaves a
// untouched otherwise.
func transition(a *model.Appointment, to model.AppointmentStatus) error {
	if !a.Status.CanTransitionTo(to) {
		return errors.IllegalTransition(string(a.Status), string(to))
	}
	a.Status = to
	return nil
}

// cancel applies the cancellation rules at now. The 24 hour notice applies
// to every caller.
func cancel(a *model.Appointment, reason string, now time.Time, loc *time.Location) error {
	if !a.CanBeCancelled(now, loc) {
		switch a.Status {
		case model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, model.AppointmentStatusNoShow:
			return errors.IllegalTransition(string(a.Status), string(model.AppointmentStatusCancelled))
		}
		return errors.New(errors.ErrIllegalTransition,
			"appointments can only be cancelled at least 24 hours in advance", nil)
	}
	if err := transition(a, model.AppointmentStatusCancelled); err != nil {
		return err
	}

	reason = orDefault(reason)
	a.CancellationReason = &reason
	a.CancelledAt = &now
	return nil
}

// reschedule moves a to date/at and marks it rescheduled. A cancelled
// appointment re-enters scheduled first.
func reschedule(a *model.Appointment, date model.Date, at model.Clock, reason string, now time.Time) error {
	switch a.Status {
	case model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed, model.AppointmentStatusRescheduled:
	case model.AppointmentStatusCancelled:
		if err := transition(a, model.AppointmentStatusScheduled); err != nil {
			return err
		}
		a.CancellationReason = nil
		a.CancelledAt = nil
	default:
		return errors.IllegalTransition(string(a.Status), string(model.AppointmentStatusRescheduled))
	}

	reason = orDefault(reason)
	a.AppointmentDate = date
	a.AppointmentTime = at
	a.Status = model.AppointmentStatusRescheduled
	a.RescheduleReason = &reason
	a.RescheduledAt = &now
	return nil
}

func orDefault(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return defaultReason
	}
	return reason
}

// ConfirmationCode formats APT-{year}-{last six characters of the id}
func ConfirmationCode(a *model.Appointment) string {
	id := a.ID.String()
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	id = strings.Repeat("0", 6-len(id)) + id
	return fmt.Sprintf("APT-%d-%s", a.AppointmentDate.Year(), id)
}
