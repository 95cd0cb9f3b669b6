package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

type windowSource interface {
	ListWindows(ctx context.Context, doctorID uuid.UUID, day model.Weekday) ([]model.Window, error)
}

type bookingSource interface {
	ExistsLive(ctx context.Context, doctorID uuid.UUID, date model.Date, at model.Clock, excludeID *uuid.UUID) (bool, error)
}

// Checker decides whether a doctor can take an appointment at a given
// date and time. It runs inside the caller's transaction.
type Checker struct {
	windows  windowSource
	bookings bookingSource
	now      func() time.Time
	loc      *time.Location
}

func NewChecker(windows windowSource, bookings bookingSource, now func() time.Time, loc *time.Location) *Checker {
	return &Checker{windows: windows, bookings: bookings, now: now, loc: loc}
}

// CanBook returns nil or the first failing check: IN_PAST,
// OUTSIDE_AVAILABILITY, then SLOT_TAKEN. exclude skips the appointment
// being moved.
func (c *Checker) CanBook(ctx context.Context, doctorID uuid.UUID, date model.Date, at model.Clock, exclude *uuid.UUID) error {
	if !date.At(at, c.loc).After(c.now()) {
		return errors.InPast()
	}

	windows, err := c.windows.ListWindows(ctx, doctorID, date.DayOfWeek())
	if err != nil {
		return errors.Internal(err)
	}
	inside := false
	for _, w := range windows {
		if w.Contains(at) {
			inside = true
			break
		}
	}
	if !inside {
		return errors.OutsideAvailability()
	}

	taken, err := c.bookings.ExistsLive(ctx, doctorID, date, at, exclude)
	if err != nil {
		return errors.Internal(err)
	}
	if taken {
		return errors.SlotTaken(nil)
	}
	return nil
}
