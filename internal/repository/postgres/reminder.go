package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type reminderRepository struct {
	BaseRepository
}

func NewReminderRepository(base BaseRepository) repository.ReminderRepository {
	return &reminderRepository{base}
}

func (r *reminderRepository) Create(ctx context.Context, rem *model.AppointmentReminder) error {
	query := `
		INSERT INTO appointment_reminders (
			id, appointment_id, reminder_type, reminder_time, is_sent, sent_at, created_at, updated_at
		) VALUES (
			:id, :appointment_id, :reminder_type, :reminder_time, :is_sent, :sent_at, :created_at, :updated_at
		)
	`
	rem.Touch(time.Now())
	_, err := sqlx.NamedExecContext(ctx, r.db, query, rem)
	return wrap("create reminder", err)
}

func (r *reminderRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error) {
	query := `
		SELECT id, appointment_id, reminder_type, reminder_time, is_sent, sent_at, created_at, updated_at
		FROM appointment_reminders
		WHERE appointment_id = $1
		ORDER BY created_at DESC
	`
	var items []*model.AppointmentReminder
	if err := sqlx.SelectContext(ctx, r.db, &items, query, appointmentID); err != nil {
		return nil, wrap("list reminders", err)
	}
	return items, nil
}

// ListDue returns unsent email reminders whose appointment is still live
func (r *reminderRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*model.DueReminder, error) {
	query := `
		SELECT r.id, r.appointment_id, r.reminder_type, r.reminder_time, r.is_sent, r.sent_at,
			   r.created_at, r.updated_at,
			   pu.email AS patient_email,
			   pu.first_name || ' ' || pu.last_name AS patient_name,
			   'Dr. ' || du.first_name || ' ' || du.last_name AS doctor_name,
			   a.appointment_date, a.appointment_time, a.confirmation_code
		FROM appointment_reminders r
		JOIN appointments a ON a.id = r.appointment_id
		JOIN patients p ON p.id = a.patient_id
		JOIN users pu ON pu.id = p.user_id
		JOIN doctors d ON d.id = a.doctor_id
		JOIN users du ON du.id = d.user_id
		WHERE NOT r.is_sent AND r.reminder_type = 'email'
		AND r.reminder_time <= $1 AND a.status = ANY($2)
		ORDER BY r.reminder_time
		LIMIT $3
	`
	var due []*model.DueReminder
	if err := sqlx.SelectContext(ctx, r.db, &due, query, before, pq.Array(model.LiveStatuses()), limit); err != nil {
		return nil, wrap("list due reminders", err)
	}
	return due, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE appointment_reminders
		SET is_sent = TRUE, sent_at = $1, updated_at = $1
		WHERE id = $2
	`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return wrap("mark reminder sent", err)
	}
	return affected("mark reminder sent", res)
}
