package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert or update violates a unique constraint
var ErrDuplicate = errors.New("duplicate record")

// ErrSlotConflict is returned when a write would put a second live
// appointment on the same doctor, date and start time
var ErrSlotConflict = errors.New("slot already booked")

// All repository interfaces in one file
type (
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Create(ctx context.Context, u *model.User) error
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		// GetActive finds the doctor only while both the profile and its
		// user account are active
		GetActive(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		// FirstActiveInDepartment picks the earliest created available doctor
		FirstActiveInDepartment(ctx context.Context, department string) (*model.Doctor, error)
		ListByDepartment(ctx context.Context, department string) ([]*model.Doctor, error)
		ListDepartments(ctx context.Context) ([]*model.DepartmentSummary, error)
		// Create assigns the next DOC code
		Create(ctx context.Context, d *model.Doctor) error
	}

	PatientRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		// Create assigns the next PAT code
		Create(ctx context.Context, p *model.Patient) error
	}

	AvailabilityRepository interface {
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Availability, error)
		// ListWindows returns available windows for the weekday ordered by start
		ListWindows(ctx context.Context, doctorID uuid.UUID, day model.Weekday) ([]model.Window, error)
		DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error
		Create(ctx context.Context, a *model.Availability) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, a *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// GetForUpdate locks the row until the surrounding transaction ends
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, a *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ExistsLive(ctx context.Context, doctorID uuid.UUID, date model.Date, at model.Clock, excludeID *uuid.UUID) (bool, error)
		OccupiedTimes(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.Clock, error)
	}

	SlotRepository interface {
		Create(ctx context.Context, s *model.AppointmentSlot) error
		List(ctx context.Context, filters *model.SlotFilters) ([]*model.SlotOccupancy, error)
	}

	ReminderRepository interface {
		Create(ctx context.Context, r *model.AppointmentReminder) error
		ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error)
		ListDue(ctx context.Context, before time.Time, limit int) ([]*model.DueReminder, error)
		MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	// Repositories groups the repositories bound to one connection or transaction
	Repositories interface {
		Users() UserRepository
		Doctors() DoctorRepository
		Patients() PatientRepository
		Availability() AvailabilityRepository
		Appointments() AppointmentRepository
		Slots() SlotRepository
		Reminders() ReminderRepository
		Outbox() OutboxRepository
	}

	// Store runs fn inside a transaction; fn's error rolls everything back
	Store interface {
		Repositories
		WithTx(ctx context.Context, fn func(tx Repositories) error) error
		Ping(ctx context.Context) error
	}
)
