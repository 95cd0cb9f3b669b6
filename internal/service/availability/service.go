package availability

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/rbac"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type Service struct {
	store  repository.Store
	authz  rbac.Authorizer
	logger *logger.Logger
}

func NewService(store repository.Store, authz rbac.Authorizer, log *logger.Logger) *Service {
	return &Service{store: store, authz: authz, logger: log.With("availability_service")}
}

// GetSchedule returns the weekly schedule of a doctor ordered by weekday
func (s *Service) GetSchedule(ctx context.Context, doctorID uuid.UUID) ([]*model.Availability, error) {
	if _, err := s.store.Doctors().Get(ctx, doctorID); err != nil {
		return nil, lookupErr(err)
	}
	rows, err := s.store.Availability().ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if rows == nil {
		rows = []*model.Availability{}
	}
	return rows, nil
}

// ReplaceSchedule swaps the whole weekly schedule of a doctor in one
// transaction. Existing appointments are left as they are.
func (s *Service) ReplaceSchedule(ctx context.Context, p model.Principal, doctorID uuid.UUID, req *model.ReplaceScheduleRequest) ([]*model.Availability, error) {
	if err := s.authz.Authorize(p, rbac.ActionManageSchedule, rbac.Resource{DoctorID: doctorID}); err != nil {
		return nil, err
	}
	rows, err := req.ToAvailability(doctorID)
	if err != nil {
		return nil, errors.Validation(err.Error(), err)
	}

	err = s.store.WithTx(ctx, func(tx repository.Repositories) error {
		if _, err := tx.Doctors().Get(ctx, doctorID); err != nil {
			return lookupErr(err)
		}
		if err := tx.Availability().DeleteByDoctor(ctx, doctorID); err != nil {
			return errors.Internal(err)
		}
		for _, row := range rows {
			if err := tx.Availability().Create(ctx, row); err != nil {
				if stderrors.Is(err, repository.ErrDuplicate) {
					return errors.Validation("two windows start at the same time", err)
				}
				return errors.Internal(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule replaced", "doctor_id", doctorID.String(), "windows", len(rows))
	return rows, nil
}

func lookupErr(err error) error {
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("doctor", err)
	}
	return errors.Internal(err)
}
