// Package account registers patients and doctors on behalf of an admin and
// lets users change their own password.
package account

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/rbac"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

// GeneratedPasswordLen is the length of passwords made up for new accounts
const GeneratedPasswordLen = 12

type Service struct {
	store    repository.Store
	authz    rbac.Authorizer
	hasher   security.PasswordHasher
	mailer   email.Service
	password func() (string, error)
	logger   *logger.Logger
}

func NewService(store repository.Store, authz rbac.Authorizer, hasher security.PasswordHasher, mailer email.Service, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		authz:    authz,
		hasher:   hasher,
		mailer:   mailer,
		password: func() (string, error) { return security.GeneratePassword(GeneratedPasswordLen) },
		logger:   log.With("account_service"),
	}
}

// Registration is a created account with its profile and the credentials
// handed to the admin once
type Registration struct {
	User        *model.User
	Patient     *model.Patient
	Doctor      *model.Doctor
	Credentials model.Credentials
}

// RegisterPatient creates a patient user and profile in one transaction
func (s *Service) RegisterPatient(ctx context.Context, p model.Principal, req *model.RegisterPatientRequest) (*Registration, error) {
	reg, err := s.register(ctx, p, &req.RegisterUserRequest, model.RolePatient, func(tx repository.Repositories, user *model.User) (*Registration, error) {
		patient := &model.Patient{
			Base:      model.Base{ID: uuid.New()},
			UserID:    user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Phone:     req.Phone,
		}
		if err := tx.Patients().Create(ctx, patient); err != nil {
			return nil, errors.Internal(err)
		}
		return &Registration{Patient: patient}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Patient registered", "user_id", reg.User.ID.String(), "patient_id", reg.Patient.ID.String())
	return reg, nil
}

// RegisterDoctor creates a doctor user and profile in one transaction. The
// doctor starts out available.
func (s *Service) RegisterDoctor(ctx context.Context, p model.Principal, req *model.RegisterDoctorRequest) (*Registration, error) {
	reg, err := s.register(ctx, p, &req.RegisterUserRequest, model.RoleDoctor, func(tx repository.Repositories, user *model.User) (*Registration, error) {
		doctor := &model.Doctor{
			Base:              model.Base{ID: uuid.New()},
			UserID:            user.ID,
			FirstName:         user.FirstName,
			LastName:          user.LastName,
			Email:             user.Email,
			Specialization:    req.Specialization,
			Department:        req.Department,
			LicenseNumber:     req.LicenseNumber,
			YearsOfExperience: req.YearsOfExperience,
			ConsultationFee:   req.ConsultationFee,
			IsAvailable:       true,
		}
		if err := tx.Doctors().Create(ctx, doctor); err != nil {
			if stderrors.Is(err, repository.ErrDuplicate) {
				return nil, errors.Validation("a doctor with this license number already exists", err)
			}
			return nil, errors.Internal(err)
		}
		return &Registration{Doctor: doctor}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Doctor registered", "user_id", reg.User.ID.String(), "doctor_id", reg.Doctor.ID.String())
	return reg, nil
}

// register hashes the password, stores the user and lets profile add the
// role's profile inside the same transaction. The credentials mail goes out
// after commit; a failed send is logged only.
func (s *Service) register(
	ctx context.Context,
	p model.Principal,
	req *model.RegisterUserRequest,
	role model.Role,
	profile func(tx repository.Repositories, user *model.User) (*Registration, error),
) (*Registration, error) {
	if err := s.authz.Authorize(p, rbac.ActionRegisterUser, rbac.Resource{}); err != nil {
		return nil, err
	}

	password := req.Password
	if password == "" {
		generated, err := s.password()
		if err != nil {
			return nil, errors.Internal(fmt.Errorf("failed to generate password: %w", err))
		}
		password = generated
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return nil, errors.Validation(fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen), err)
		}
		return nil, errors.Internal(err)
	}

	user := req.NewUser(role, hash)
	user.ID = uuid.New()

	var reg *Registration
	err = s.store.WithTx(ctx, func(tx repository.Repositories) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			if stderrors.Is(err, repository.ErrDuplicate) {
				return errors.Validation("a user with this email already exists", err)
			}
			return errors.Internal(err)
		}
		var err error
		reg, err = profile(tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	reg.User = user
	reg.Credentials = model.Credentials{Email: user.Email, Password: password, Role: role}
	if err := s.mailer.SendCustom(ctx, user.Email, email.CredentialsSubject, email.CredentialsBody(user.FullName(), reg.Credentials)); err != nil {
		s.logger.Error(err, "Failed to send credentials", "user_id", user.ID.String())
	}
	return reg, nil
}

// ChangePassword replaces the caller's password after checking the old one
func (s *Service) ChangePassword(ctx context.Context, p model.Principal, req *model.ChangePasswordRequest) error {
	user, err := s.store.Users().Get(ctx, p.UserID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("user", err)
		}
		return errors.Internal(err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.OldPassword); err != nil {
		return errors.Validation("old password is incorrect", err)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return errors.Validation(fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen), err)
		}
		return errors.Internal(err)
	}
	if err := s.store.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
		return errors.Internal(err)
	}

	s.logger.Info("Password changed", "user_id", user.ID.String())
	return nil
}
