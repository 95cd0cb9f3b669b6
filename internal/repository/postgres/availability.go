package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type availabilityRepository struct {
	BaseRepository
}

func NewAvailabilityRepository(base BaseRepository) repository.AvailabilityRepository {
	return &availabilityRepository{base}
}

func (r *availabilityRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Availability, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time, is_available, created_at, updated_at
		FROM doctor_availabilities
		WHERE doctor_id = $1
		ORDER BY CASE day_of_week
			WHEN 'monday' THEN 1 WHEN 'tuesday' THEN 2 WHEN 'wednesday' THEN 3
			WHEN 'thursday' THEN 4 WHEN 'friday' THEN 5 WHEN 'saturday' THEN 6
			ELSE 7 END, start_time
	`
	var items []*model.Availability
	if err := sqlx.SelectContext(ctx, r.db, &items, query, doctorID); err != nil {
		return nil, wrap("list availability", err)
	}
	return items, nil
}

func (r *availabilityRepository) ListWindows(ctx context.Context, doctorID uuid.UUID, day model.Weekday) ([]model.Window, error) {
	query := `
		SELECT start_time, end_time
		FROM doctor_availabilities
		WHERE doctor_id = $1 AND day_of_week = $2 AND is_available
		ORDER BY start_time
	`
	var windows []model.Window
	if err := sqlx.SelectContext(ctx, r.db, &windows, query, doctorID, day); err != nil {
		return nil, wrap("list availability windows", err)
	}
	return windows, nil
}

func (r *availabilityRepository) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM doctor_availabilities WHERE doctor_id = $1`, doctorID)
	return wrap("delete availability", err)
}

func (r *availabilityRepository) Create(ctx context.Context, a *model.Availability) error {
	query := `
		INSERT INTO doctor_availabilities (
			id, doctor_id, day_of_week, start_time, end_time, is_available, created_at, updated_at
		) VALUES (
			:id, :doctor_id, :day_of_week, :start_time, :end_time, :is_available, :created_at, :updated_at
		)
	`
	a.Touch(time.Now())
	_, err := sqlx.NamedExecContext(ctx, r.db, query, a)
	return wrap("create availability", err)
}
