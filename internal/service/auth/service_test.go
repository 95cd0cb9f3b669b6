package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/memory"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

func setup(t *testing.T) (*Service, *memory.Store, model.User) {
	t.Helper()
	hasher := security.NewBcryptHasher(4)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	store := memory.NewStore()
	user := model.User{Base: model.Base{ID: uuid.New()}, Email: "Ada@Example.test", PasswordHash: hash,
		FirstName: "Ada", LastName: "Lovelace", Role: model.RolePatient, IsActive: true}
	store.AddUser(user)

	jwtSvc := auth.NewJWTService("secret", "clinic-api", time.Hour)
	return NewService(store, jwtSvc, hasher, logger.Nop()), store, user
}

func TestLogin(t *testing.T) {
	svc, _, user := setup(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, "ada@example.test", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, "ada@example.test", "wrong-horse")
	assert.Equal(t, errors.ErrUnauthorized, errors.CodeOf(err))

	_, err = svc.Login(ctx, "nobody@example.test", "correct-horse")
	assert.Equal(t, errors.ErrUnauthorized, errors.CodeOf(err))
}

func TestAuthenticateResolvesProfile(t *testing.T) {
	svc, store, user := setup(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, user.Email, "correct-horse")
	require.NoError(t, err)

	p, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, p.Role)
	assert.Nil(t, p.PatientID)

	patient := model.Patient{Base: model.Base{ID: uuid.New()}, UserID: user.ID}
	store.AddPatient(patient)

	p, err = svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, p.PatientID)
	assert.Equal(t, patient.ID, *p.PatientID)
	assert.Nil(t, p.DoctorID)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.Equal(t, errors.ErrUnauthorized, errors.CodeOf(err))
}
