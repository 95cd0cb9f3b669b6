package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type slotRepository struct {
	BaseRepository
}

func NewSlotRepository(base BaseRepository) repository.SlotRepository {
	return &slotRepository{base}
}

func (r *slotRepository) Create(ctx context.Context, s *model.AppointmentSlot) error {
	query := `
		INSERT INTO appointment_slots (
			id, doctor_id, date, start_time, end_time, is_available, max_appointments, created_at, updated_at
		) VALUES (
			:id, :doctor_id, :date, :start_time, :end_time, :is_available, :max_appointments, :created_at, :updated_at
		)
	`
	s.Touch(time.Now())
	_, err := sqlx.NamedExecContext(ctx, r.db, query, s)
	return wrap("create slot", err)
}

// List counts live appointments at each slot's start instead of storing it
func (r *slotRepository) List(ctx context.Context, filters *model.SlotFilters) ([]*model.SlotOccupancy, error) {
	args := []any{pq.Array(model.LiveStatuses())}
	var where []string
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filters == nil {
		filters = &model.SlotFilters{}
	}
	if filters.DoctorID != nil {
		add("s.doctor_id = $%d", *filters.DoctorID)
	}
	if filters.FromDate != nil {
		add("s.date >= $%d", *filters.FromDate)
	}
	if filters.ToDate != nil {
		add("s.date <= $%d", *filters.ToDate)
	}
	if filters.OnlyAvailable {
		where = append(where, "s.is_available")
	}

	query := `
		SELECT s.id, s.doctor_id, s.date, s.start_time, s.end_time, s.is_available,
			   s.max_appointments, s.created_at, s.updated_at,
			   (SELECT COUNT(*) FROM appointments a
				WHERE a.doctor_id = s.doctor_id AND a.appointment_date = s.date
				AND a.appointment_time = s.start_time AND a.status = ANY($1)) AS current_appointments
		FROM appointment_slots s
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.date, s.start_time"

	var slots []*model.SlotOccupancy
	if err := sqlx.SelectContext(ctx, r.db, &slots, query, args...); err != nil {
		return nil, wrap("list slots", err)
	}
	return slots, nil
}
