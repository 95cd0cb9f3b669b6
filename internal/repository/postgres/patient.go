package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

const patientSelect = `
	SELECT p.id, p.user_id, p.patient_code, u.first_name, u.last_name, u.email,
		   p.phone, p.created_at, p.updated_at
	FROM patients p
	JOIN users u ON u.id = p.user_id
`

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	if err := sqlx.GetContext(ctx, r.db, &patient, patientSelect+` WHERE p.id = $1`, id); err != nil {
		return nil, wrap("get patient", err)
	}
	return &patient, nil
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	if err := sqlx.GetContext(ctx, r.db, &patient, patientSelect+` WHERE p.user_id = $1`, userID); err != nil {
		return nil, wrap("get patient by user", err)
	}
	return &patient, nil
}

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	query := `
		INSERT INTO patients (id, user_id, patient_code, phone, created_at, updated_at)
		VALUES ($1, $2, 'PAT' || lpad(nextval('patient_code_seq')::text, 3, '0'), $3, $4, $5)
		RETURNING patient_code
	`
	p.Touch(time.Now())
	err := r.db.QueryRowxContext(ctx, query, p.ID, p.UserID, p.Phone, p.CreatedAt, p.UpdatedAt).
		Scan(&p.PatientCode)
	return wrap("create patient", err)
}
