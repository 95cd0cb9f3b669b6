package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

const doctorSelect = `
	SELECT d.id, d.user_id, d.doctor_code, u.first_name, u.last_name, u.email,
		   d.specialization, d.department, d.license_number, d.years_of_experience,
		   d.consultation_fee,
		   d.is_available, d.created_at, d.updated_at
	FROM doctors d
	JOIN users u ON u.id = d.user_id
`

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := sqlx.GetContext(ctx, r.db, &doctor, doctorSelect+` WHERE d.id = $1`, id); err != nil {
		return nil, wrap("get doctor", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := sqlx.GetContext(ctx, r.db, &doctor, doctorSelect+` WHERE d.user_id = $1`, userID); err != nil {
		return nil, wrap("get doctor by user", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetActive(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := doctorSelect + ` WHERE d.id = $1 AND d.is_available AND u.is_active`
	var doctor model.Doctor
	if err := sqlx.GetContext(ctx, r.db, &doctor, query, id); err != nil {
		return nil, wrap("get active doctor", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) FirstActiveInDepartment(ctx context.Context, department string) (*model.Doctor, error) {
	query := doctorSelect + `
		WHERE d.department = $1 AND d.is_available AND u.is_active
		ORDER BY d.created_at, d.id
		LIMIT 1
	`
	var doctor model.Doctor
	if err := sqlx.GetContext(ctx, r.db, &doctor, query, department); err != nil {
		return nil, wrap("find doctor in department", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) ListByDepartment(ctx context.Context, department string) ([]*model.Doctor, error) {
	query := doctorSelect + `
		WHERE d.department = $1 AND d.is_available AND u.is_active
		ORDER BY u.last_name, u.first_name
	`
	var doctors []*model.Doctor
	if err := sqlx.SelectContext(ctx, r.db, &doctors, query, department); err != nil {
		return nil, wrap("list doctors", err)
	}
	return doctors, nil
}

func (r *doctorRepository) ListDepartments(ctx context.Context) ([]*model.DepartmentSummary, error) {
	query := `
		SELECT d.department, COUNT(*) AS doctor_count
		FROM doctors d
		JOIN users u ON u.id = d.user_id
		WHERE d.is_available AND u.is_active
		GROUP BY d.department
		ORDER BY d.department
	`
	var departments []*model.DepartmentSummary
	if err := sqlx.SelectContext(ctx, r.db, &departments, query); err != nil {
		return nil, wrap("list departments", err)
	}
	return departments, nil
}

func (r *doctorRepository) Create(ctx context.Context, d *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, user_id, doctor_code, specialization, department, license_number,
			years_of_experience, consultation_fee, is_available, created_at, updated_at
		) VALUES (
			$1, $2, 'DOC' || lpad(nextval('doctor_code_seq')::text, 3, '0'), $3, $4, $5,
			$6, $7, $8, $9, $10
		)
		RETURNING doctor_code
	`
	d.Touch(time.Now())
	err := r.db.QueryRowxContext(ctx, query,
		d.ID, d.UserID, d.Specialization, d.Department, d.LicenseNumber,
		d.YearsOfExperience, d.ConsultationFee, d.IsAvailable, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.DoctorCode)
	return wrap("create doctor", err)
}
