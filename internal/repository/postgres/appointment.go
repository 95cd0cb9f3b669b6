package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

const appointmentColumns = `
	id, patient_id, doctor_id, appointment_date, appointment_time, duration,
	appointment_type, status, chief_complaint, notes, doctor_notes, confirmation_code,
	cancellation_reason, cancelled_at, reschedule_reason, rescheduled_at,
	consultation_fee, is_paid, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `) VALUES (
			:id, :patient_id, :doctor_id, :appointment_date, :appointment_time, :duration,
			:appointment_type, :status, :chief_complaint, :notes, :doctor_notes, :confirmation_code,
			:cancellation_reason, :cancelled_at, :reschedule_reason, :rescheduled_at,
			:consultation_fee, :is_paid, :created_at, :updated_at
		)
	`
	a.Touch(time.Now())
	_, err := sqlx.NamedExecContext(ctx, r.db, query, a)
	return wrap("create appointment", err)
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var a model.Appointment
	if err := sqlx.GetContext(ctx, r.db, &a, query, id); err != nil {
		return nil, wrap("get appointment", err)
	}
	return &a, nil
}

func (r *appointmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 FOR UPDATE`

	var a model.Appointment
	if err := sqlx.GetContext(ctx, r.db, &a, query, id); err != nil {
		return nil, wrap("lock appointment", err)
	}
	return &a, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments SET
			appointment_date = :appointment_date,
			appointment_time = :appointment_time,
			duration = :duration,
			status = :status,
			notes = :notes,
			doctor_notes = :doctor_notes,
			confirmation_code = :confirmation_code,
			cancellation_reason = :cancellation_reason,
			cancelled_at = :cancelled_at,
			reschedule_reason = :reschedule_reason,
			rescheduled_at = :rescheduled_at,
			is_paid = :is_paid,
			updated_at = :updated_at
		WHERE id = :id
	`
	a.UpdatedAt = time.Now()
	res, err := sqlx.NamedExecContext(ctx, r.db, query, a)
	if err != nil {
		return wrap("update appointment", err)
	}
	return affected("update appointment", res)
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query, args := buildAppointmentQuery(filters)

	var items []*model.Appointment
	if err := sqlx.SelectContext(ctx, r.db, &items, query, args...); err != nil {
		return nil, wrap("list appointments", err)
	}
	return items, nil
}

func buildAppointmentQuery(filters *model.AppointmentFilters) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filters == nil {
		filters = &model.AppointmentFilters{}
	}
	if filters.PatientID != nil {
		add("patient_id = $%d", *filters.PatientID)
	}
	if filters.DoctorID != nil {
		add("doctor_id = $%d", *filters.DoctorID)
	}
	if len(filters.Statuses) > 0 {
		statuses := make([]string, len(filters.Statuses))
		for i, s := range filters.Statuses {
			statuses[i] = string(s)
		}
		add("status = ANY($%d)", pq.Array(statuses))
	}
	if filters.FromDate != nil {
		add("appointment_date >= $%d", *filters.FromDate)
	}
	if filters.ToDate != nil {
		add("appointment_date <= $%d", *filters.ToDate)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filters.Ascending {
		query += " ORDER BY appointment_date ASC, appointment_time ASC"
	} else {
		query += " ORDER BY appointment_date DESC, appointment_time DESC"
	}
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

func (r *appointmentRepository) ExistsLive(ctx context.Context, doctorID uuid.UUID, date model.Date, at model.Clock, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_time = $3
			AND status = ANY($4)
			AND ($5::uuid IS NULL OR id <> $5)
		)
	`
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists, query,
		doctorID, date, at, pq.Array(model.LiveStatuses()), excludeID,
	); err != nil {
		return false, wrap("check slot", err)
	}
	return exists, nil
}

func (r *appointmentRepository) OccupiedTimes(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.Clock, error) {
	query := `
		SELECT appointment_time FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND status = ANY($3)
		ORDER BY appointment_time
	`
	var times []model.Clock
	if err := sqlx.SelectContext(ctx, r.db, &times, query, doctorID, date, pq.Array(model.LiveStatuses())); err != nil {
		return nil, wrap("list occupied times", err)
	}
	return times, nil
}
