package appointment

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/rbac"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

// LegacyWindowDays is the default range of the slot availability view
const LegacyWindowDays = 7

// CreateSlot stores a precomputed slot. Doctors always create slots for
// themselves; admins name the doctor.
func (s *Service) CreateSlot(ctx context.Context, p model.Principal, req *model.CreateSlotRequest) (*model.AppointmentSlot, error) {
	var doctorID uuid.UUID
	switch {
	case p.IsDoctor() && p.DoctorID != nil:
		doctorID = *p.DoctorID
	case req.DoctorID != "":
		id, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return nil, errors.Validation("doctor_id must be a valid id", err)
		}
		doctorID = id
	default:
		return nil, errors.Validation("doctor_id is required", nil)
	}
	if err := s.authz.Authorize(p, rbac.ActionManageSlots, rbac.Resource{DoctorID: doctorID}); err != nil {
		return nil, err
	}

	date, start, err := parseSlot(req.Date, req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := model.ParseClock(req.EndTime)
	if err != nil {
		return nil, errors.Validation("invalid end_time format, use HH:MM", err)
	}
	if start >= end {
		return nil, errors.Validation("start_time must be before end_time", nil)
	}

	if _, err := s.store.Doctors().Get(ctx, doctorID); err != nil {
		return nil, lookupErr("doctor", err)
	}

	slot := &model.AppointmentSlot{
		DoctorID:        doctorID,
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		IsAvailable:     true,
		MaxAppointments: req.MaxAppointments,
	}
	if slot.MaxAppointments <= 0 {
		slot.MaxAppointments = 1
	}
	if err := s.store.Slots().Create(ctx, slot); err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Validation("a slot already starts at this time", err)
		}
		return nil, errors.Internal(err)
	}
	return slot, nil
}

// ListSlots returns every slot for admins and a doctor's own slots
func (s *Service) ListSlots(ctx context.Context, p model.Principal) ([]*model.SlotOccupancy, error) {
	filters := &model.SlotFilters{}
	switch {
	case p.IsAdmin():
	case p.IsDoctor() && p.DoctorID != nil:
		filters.DoctorID = p.DoctorID
	default:
		return nil, errors.Forbidden("only admins and doctors can manage slots")
	}

	slots, err := s.store.Slots().List(ctx, filters)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if slots == nil {
		slots = []*model.SlotOccupancy{}
	}
	return slots, nil
}

// LegacyAvailability is the open precomputed slots of a doctor in a date range
type LegacyAvailability struct {
	Doctor *model.Doctor
	Start  model.Date
	End    model.Date
	Slots  []*model.SlotOccupancy
}

// LegacyAvailableSlots lists open, not fully booked slots between start and
// end. start defaults to today and end to a week after start.
func (s *Service) LegacyAvailableSlots(ctx context.Context, doctorID uuid.UUID, start, end *model.Date) (*LegacyAvailability, error) {
	doctor, err := s.store.Doctors().Get(ctx, doctorID)
	if err != nil {
		return nil, lookupErr("doctor", err)
	}

	from := model.DateOf(s.now().In(s.loc))
	if start != nil {
		from = *start
	}
	to := from.AddDays(LegacyWindowDays)
	if end != nil {
		to = *end
	}
	if to.Before(from) {
		return nil, errors.Validation("end_date must not be before start_date", nil)
	}

	slots, err := s.store.Slots().List(ctx, &model.SlotFilters{
		DoctorID:      &doctorID,
		FromDate:      &from,
		ToDate:        &to,
		OnlyAvailable: true,
	})
	if err != nil {
		return nil, errors.Internal(err)
	}

	open := make([]*model.SlotOccupancy, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsFullyBooked() {
			open = append(open, slot)
		}
	}
	return &LegacyAvailability{Doctor: doctor, Start: from, End: to, Slots: open}, nil
}
