package appointment

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/rbac"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

// UpcomingLimit caps the upcoming view
const UpcomingLimit = 10

// codeAttempts bounds how often a booking is retried with a fresh id after
// its confirmation code collided with an existing one
const codeAttempts = 3

var errCodeCollision = stderrors.New("confirmation code collision")

type Service struct {
	store   repository.Store
	authz   rbac.Authorizer
	loc     *time.Location
	now     func() time.Time
	newID   func() uuid.UUID
	logger  *logger.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs replaces uuid.New for new appointments
func WithIDs(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

func NewService(
	store repository.Store,
	authz rbac.Authorizer,
	loc *time.Location,
	log *logger.Logger,
	m *metrics.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		store:   store,
		authz:   authz,
		loc:     loc,
		now:     time.Now,
		newID:   uuid.New,
		logger:  log.With("appointment_service"),
		metrics: m,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Booking is a newly scheduled appointment with the doctor it was given to
type Booking struct {
	Appointment *model.Appointment
	Doctor      *model.Doctor
}

// Schedule books a new appointment. Without a preferred doctor the first
// active doctor of the department is chosen.
func (s *Service) Schedule(ctx context.Context, p model.Principal, req *model.ScheduleAppointmentRequest) (_ *Booking, err error) {
	defer func() { s.record("schedule", err) }()

	date, at, err := parseSlot(req.AppointmentDate, req.PreferredTime)
	if err != nil {
		return nil, err
	}
	patientID, err := s.bookingPatient(p, req.PatientID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(p, rbac.ActionSchedule, rbac.Resource{PatientID: patientID}); err != nil {
		return nil, err
	}

	var booking *Booking
	for attempt := 1; ; attempt++ {
		booking, err = s.book(ctx, patientID, date, at, req)
		if !stderrors.Is(err, errCodeCollision) {
			break
		}
		if attempt == codeAttempts {
			return nil, errors.Internal(err)
		}
		s.logger.Warn("Confirmation code collision, retrying", "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment scheduled",
		"appointment_id", booking.Appointment.ID.String(),
		"doctor_id", booking.Doctor.ID.String(),
		"confirmation_code", *booking.Appointment.ConfirmationCode)
	return booking, nil
}

// book runs one booking attempt in its own transaction
func (s *Service) book(ctx context.Context, patientID uuid.UUID, date model.Date, at model.Clock, req *model.ScheduleAppointmentRequest) (*Booking, error) {
	var booking *Booking
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Patients().Get(ctx, patientID); err != nil {
			return lookupErr("patient", err)
		}
		doctor, err := pickDoctor(ctx, tx.Doctors(), req.Department, req.PreferredDoctor)
		if err != nil {
			return err
		}
		if err := s.checker(tx).CanBook(ctx, doctor.ID, date, at, nil); err != nil {
			return err
		}

		a := &model.Appointment{
			Base:            model.Base{ID: s.newID()},
			PatientID:       patientID,
			DoctorID:        doctor.ID,
			AppointmentDate: date,
			AppointmentTime: at,
			Duration:        model.DefaultDuration,
			AppointmentType: model.AppointmentType(req.AppointmentType),
			Status:          model.AppointmentStatusScheduled,
			ChiefComplaint:  req.ReasonForVisit,
			Notes:           req.Notes,
			ConsultationFee: doctor.ConsultationFee,
		}
		code := ConfirmationCode(a)
		a.ConfirmationCode = &code

		if err := tx.Appointments().Create(ctx, a); err != nil {
			if stderrors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: %w", errCodeCollision, err)
			}
			return writeErr(err)
		}
		if err := s.emit(ctx, tx, model.EventAppointmentScheduled, a); err != nil {
			return err
		}
		booking = &Booking{Appointment: a, Doctor: doctor}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel cancels an appointment at least 24 hours ahead of its start
func (s *Service) Cancel(ctx context.Context, p model.Principal, id uuid.UUID, reason string) (_ *model.Appointment, err error) {
	defer func() { s.record("cancel", err) }()

	return s.mutate(ctx, id, func(tx repository.Repositories, a *model.Appointment) (string, error) {
		if err := s.authz.Authorize(p, rbac.ActionCancel, rbac.ForAppointment(a)); err != nil {
			return "", err
		}
		if err := cancel(a, reason, s.now(), s.loc); err != nil {
			return "", err
		}
		return model.EventAppointmentCancelled, nil
	})
}

// Reschedule moves an appointment to a new date and time. The appointment's
// own slot does not count as a conflict.
func (s *Service) Reschedule(ctx context.Context, p model.Principal, id uuid.UUID, req *model.RescheduleAppointmentRequest) (_ *model.Appointment, err error) {
	defer func() { s.record("reschedule", err) }()

	date, at, err := parseSlot(req.NewDate, req.NewTime)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(tx repository.Repositories, a *model.Appointment) (string, error) {
		if err := s.authz.Authorize(p, rbac.ActionReschedule, rbac.ForAppointment(a)); err != nil {
			return "", err
		}
		if err := reschedule(a, date, at, req.Reason, s.now()); err != nil {
			return "", err
		}
		if err := s.checker(tx).CanBook(ctx, a.DoctorID, date, at, &a.ID); err != nil {
			return "", err
		}
		return model.EventAppointmentRescheduled, nil
	})
}

// UpdateStatus applies a doctor-driven lifecycle move: confirm, start,
// complete or no-show.
func (s *Service) UpdateStatus(ctx context.Context, p model.Principal, id uuid.UUID, req *model.UpdateStatusRequest) (_ *model.Appointment, err error) {
	defer func() { s.record("update_status", err) }()

	to := model.AppointmentStatus(req.Status)
	return s.mutate(ctx, id, func(tx repository.Repositories, a *model.Appointment) (string, error) {
		if err := s.authz.Authorize(p, rbac.ActionUpdateStatus, rbac.ForAppointment(a)); err != nil {
			return "", err
		}
		from := a.Status
		if err := transition(a, to); err != nil {
			return "", err
		}
		if req.DoctorNotes != nil {
			a.DoctorNotes = req.DoctorNotes
		}
		s.metrics.StatusTransitions.WithLabelValues(string(from), string(to)).Inc()
		return model.EventAppointmentStatus, nil
	})
}

// mutate locks the appointment, lets fn change it and writes it back with
// its outbox event in one transaction.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(tx repository.Repositories, a *model.Appointment) (string, error)) (*model.Appointment, error) {
	var out *model.Appointment
	err := s.store.WithTx(ctx, func(tx repository.Repositories) error {
		a, err := tx.Appointments().GetForUpdate(ctx, id)
		if err != nil {
			return lookupErr("appointment", err)
		}
		eventType, err := fn(tx, a)
		if err != nil {
			return err
		}
		if err := tx.Appointments().Update(ctx, a); err != nil {
			return writeErr(err)
		}
		if err := s.emit(ctx, tx, eventType, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment updated", "appointment_id", out.ID.String(), "status", string(out.Status))
	return out, nil
}

func (s *Service) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Appointment, error) {
	a, err := s.store.Appointments().Get(ctx, id)
	if err != nil {
		return nil, lookupErr("appointment", err)
	}
	if err := s.authz.Authorize(p, rbac.ActionView, rbac.ForAppointment(a)); err != nil {
		return nil, err
	}
	return a, nil
}

// ListParams are the optional filters of the appointment list
type ListParams struct {
	Status    *model.AppointmentStatus
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	FromDate  *model.Date
	ToDate    *model.Date
}

// List returns appointments visible to p, most recent first. Patients and
// doctors only ever see their own.
func (s *Service) List(ctx context.Context, p model.Principal, params ListParams) ([]*model.Appointment, error) {
	filters := &model.AppointmentFilters{
		PatientID: params.PatientID,
		DoctorID:  params.DoctorID,
		FromDate:  params.FromDate,
		ToDate:    params.ToDate,
	}
	if params.Status != nil {
		filters.Statuses = []model.AppointmentStatus{*params.Status}
	}
	if err := scope(p, filters); err != nil {
		return nil, err
	}
	return s.list(ctx, filters)
}

// Mine lists the caller's own appointments
func (s *Service) Mine(ctx context.Context, p model.Principal) ([]*model.Appointment, error) {
	if p.IsAdmin() {
		return nil, errors.Forbidden("only patients and doctors have personal appointments")
	}
	filters := &model.AppointmentFilters{}
	if err := scope(p, filters); err != nil {
		return nil, err
	}
	return s.list(ctx, filters)
}

// Upcoming lists live appointments from today on, soonest first
func (s *Service) Upcoming(ctx context.Context, p model.Principal) ([]*model.Appointment, error) {
	if p.IsAdmin() {
		return nil, errors.Forbidden("invalid user role for this endpoint")
	}
	today := model.DateOf(s.now().In(s.loc))
	filters := &model.AppointmentFilters{
		FromDate:  &today,
		Ascending: true,
		Limit:     UpcomingLimit,
	}
	for _, st := range model.LiveStatuses() {
		filters.Statuses = append(filters.Statuses, model.AppointmentStatus(st))
	}
	if err := scope(p, filters); err != nil {
		return nil, err
	}
	return s.list(ctx, filters)
}

func (s *Service) list(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	items, err := s.store.Appointments().List(ctx, filters)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if items == nil {
		items = []*model.Appointment{}
	}
	return items, nil
}

// SlotGrid is the slot view of one doctor on one date
type SlotGrid struct {
	Doctor  *model.Doctor
	Date    model.Date
	Slots   []Slot
	Message string
}

// NoAvailabilityMessage explains an empty grid
const NoAvailabilityMessage = "Doctor is not available on this day."

// AvailableSlots lists the 30 minute grid for a doctor and date. Patients
// see open slots only; doctors and admins also see booked ones.
func (s *Service) AvailableSlots(ctx context.Context, p model.Principal, doctorID uuid.UUID, date model.Date) (*SlotGrid, error) {
	doctor, err := s.store.Doctors().Get(ctx, doctorID)
	if err != nil {
		return nil, lookupErr("doctor", err)
	}

	grid := &SlotGrid{Doctor: doctor, Date: date, Slots: []Slot{}}
	windows, err := s.store.Availability().ListWindows(ctx, doctorID, date.DayOfWeek())
	if err != nil {
		return nil, errors.Internal(err)
	}
	if len(windows) == 0 {
		grid.Message = NoAvailabilityMessage
		return grid, nil
	}

	occupied, err := s.store.Appointments().OccupiedTimes(ctx, doctorID, date)
	if err != nil {
		return nil, errors.Internal(err)
	}

	fullGrid := s.authz.Authorize(p, rbac.ActionViewFullGrid, rbac.Resource{DoctorID: doctorID}) == nil
	grid.Slots = append(grid.Slots, slices.Collect(GenerateSlots(windows, occupied, SlotGranularity, fullGrid))...)
	return grid, nil
}

func (s *Service) checker(tx repository.Repositories) *Checker {
	return NewChecker(tx.Availability(), tx.Appointments(), s.now, s.loc)
}

// emit writes the appointment event to the outbox of the current transaction
func (s *Service) emit(ctx context.Context, tx repository.Repositories, eventType string, a *model.Appointment) error {
	payload, err := json.Marshal(model.NewAppointmentEvent(a, s.now()))
	if err != nil {
		return errors.Internal(fmt.Errorf("failed to marshal event: %w", err))
	}
	if err := tx.Outbox().Create(ctx, &model.OutboxEvent{EventType: eventType, Payload: payload}); err != nil {
		return errors.Internal(err)
	}
	return nil
}

func (s *Service) record(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(errors.CodeOf(err)))
	}
	s.metrics.BookingOutcomes.WithLabelValues(op, outcome).Inc()
}

// bookingPatient resolves whose appointment is being booked
func (s *Service) bookingPatient(p model.Principal, requested string) (uuid.UUID, error) {
	if requested != "" {
		id, err := uuid.Parse(requested)
		if err != nil {
			return uuid.Nil, errors.Validation("patient_id must be a valid id", err)
		}
		return id, nil
	}
	if p.IsPatient() {
		if p.PatientID == nil {
			return uuid.Nil, errors.NotFound("patient profile", nil)
		}
		return *p.PatientID, nil
	}
	return uuid.Nil, errors.Validation("patient_id is required when booking for a patient", nil)
}

func pickDoctor(ctx context.Context, doctors repository.DoctorRepository, department, preferred string) (*model.Doctor, error) {
	if preferred == "" {
		doctor, err := doctors.FirstActiveInDepartment(ctx, department)
		if err != nil {
			return nil, lookupErr("available doctor in department", err)
		}
		return doctor, nil
	}

	id, err := uuid.Parse(preferred)
	if err != nil {
		return nil, errors.Validation("preferred_doctor must be a valid id", err)
	}
	doctor, err := doctors.GetActive(ctx, id)
	if err != nil {
		return nil, lookupErr("preferred doctor", err)
	}
	if doctor.Department != department {
		return nil, errors.NotFound("preferred doctor in the specified department", nil)
	}
	return doctor, nil
}

// scope pins the filters of patients and doctors to their own profile
func scope(p model.Principal, f *model.AppointmentFilters) error {
	switch {
	case p.IsAdmin():
		return nil
	case p.IsPatient():
		if p.PatientID == nil {
			return errors.NotFound("patient profile", nil)
		}
		f.PatientID = p.PatientID
	case p.IsDoctor():
		if p.DoctorID == nil {
			return errors.NotFound("doctor profile", nil)
		}
		f.DoctorID = p.DoctorID
	default:
		return errors.Forbidden("you do not have permission to view appointments")
	}
	return nil
}

func parseSlot(date, clock string) (model.Date, model.Clock, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return model.Date{}, 0, errors.Validation("invalid date format, use YYYY-MM-DD", err)
	}
	c, err := model.ParseClock(clock)
	if err != nil {
		return model.Date{}, 0, errors.Validation("invalid time format, use HH:MM", err)
	}
	return d, c, nil
}

func lookupErr(resource string, err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound(resource, err)
	}
	return errors.Internal(err)
}

// writeErr maps the live slot unique index onto SLOT_TAKEN. Other unique
// violations are internal.
func writeErr(err error) error {
	if stderrors.Is(err, repository.ErrSlotConflict) {
		return errors.SlotTaken(err)
	}
	return errors.Internal(err)
}
