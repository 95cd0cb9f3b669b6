package auth

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

var ErrInvalidCredentials = stderrors.New("invalid credentials")

type Service struct {
	repos  repository.Repositories
	jwtSvc auth.JWTService
	hasher security.PasswordHasher
	logger *logger.Logger
}

func NewService(repos repository.Repositories, jwtSvc auth.JWTService, hasher security.PasswordHasher, log *logger.Logger) *Service {
	return &Service{
		repos:  repos,
		jwtSvc: jwtSvc,
		hasher: hasher,
		logger: log.With("auth_service"),
	}
}

// Login checks the password and issues an access token. Unknown emails and
// wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.repos.Users().GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Unauthorized(ErrInvalidCredentials)
		}
		return nil, errors.Internal(err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Warn("Failed login attempt", "user_id", user.ID.String())
		return nil, errors.Unauthorized(ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, errors.Forbidden("account is disabled")
	}

	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.logger.Info("User logged in", "user_id", user.ID.String(), "role", string(user.Role))
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtSvc.ExpiresIn().Seconds()),
		User:        user,
	}, nil
}

// Authenticate turns a bearer token into the principal of the request,
// with the caller's patient or doctor profile attached.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}

	user, err := s.repos.Users().Get(ctx, claims.UserID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Unauthorized(err)
		}
		return nil, errors.Internal(err)
	}
	if !user.IsActive {
		return nil, errors.Unauthorized(stderrors.New("account is disabled"))
	}

	return s.ResolvePrincipal(ctx, user)
}

// ResolvePrincipal attaches profile ids by role. A missing profile leaves
// the id nil; operations that need it report NOT_FOUND themselves.
func (s *Service) ResolvePrincipal(ctx context.Context, user *model.User) (*model.Principal, error) {
	p := &model.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}

	switch user.Role {
	case model.RolePatient:
		patient, err := s.repos.Patients().GetByUserID(ctx, user.ID)
		if err == nil {
			p.PatientID = &patient.ID
		} else if !stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Internal(err)
		}
	case model.RoleDoctor:
		doctor, err := s.repos.Doctors().GetByUserID(ctx, user.ID)
		if err == nil {
			p.DoctorID = &doctor.ID
		} else if !stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.Internal(err)
		}
	}
	return p, nil
}
