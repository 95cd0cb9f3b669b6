package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/repository"
)

const (
	uniqueViolation = "23505"
	liveSlotIndex   = "uq_appointments_live_slot"
)

// BaseRepository carries the connection shared by all repositories. It is
// either the pool or an open transaction.
type BaseRepository struct {
	db sqlx.ExtContext
}

func NewBaseRepository(db sqlx.ExtContext) BaseRepository {
	return BaseRepository{db: db}
}

// wrap maps driver errors onto repository sentinels and adds the operation
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", op, repository.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if pqErr.Constraint == liveSlotIndex {
			return fmt.Errorf("failed to %s: %w", op, repository.ErrSlotConflict)
		}
		return fmt.Errorf("failed to %s: %w (%s)", op, repository.ErrDuplicate, pqErr.Constraint)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// affected turns a zero-row update into ErrNotFound
func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to %s: %w", op, repository.ErrNotFound)
	}
	return nil
}

// repositories binds every repository to one connection
type repositories struct {
	users        repository.UserRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	availability repository.AvailabilityRepository
	appointments repository.AppointmentRepository
	slots        repository.SlotRepository
	reminders    repository.ReminderRepository
	outbox       repository.OutboxRepository
}

func newRepositories(db sqlx.ExtContext) *repositories {
	base := NewBaseRepository(db)
	return &repositories{
		users:        NewUserRepository(base),
		doctors:      NewDoctorRepository(base),
		patients:     NewPatientRepository(base),
		availability: NewAvailabilityRepository(base),
		appointments: NewAppointmentRepository(base),
		slots:        NewSlotRepository(base),
		reminders:    NewReminderRepository(base),
		outbox:       NewOutboxRepository(base),
	}
}

func (r *repositories) Users() repository.UserRepository                { return r.users }
func (r *repositories) Doctors() repository.DoctorRepository            { return r.doctors }
func (r *repositories) Patients() repository.PatientRepository          { return r.patients }
func (r *repositories) Availability() repository.AvailabilityRepository { return r.availability }
func (r *repositories) Appointments() repository.AppointmentRepository  { return r.appointments }
func (r *repositories) Slots() repository.SlotRepository                { return r.slots }
func (r *repositories) Reminders() repository.ReminderRepository        { return r.reminders }
func (r *repositories) Outbox() repository.OutboxRepository             { return r.outbox }
