package reminder

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/rbac"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type Service struct {
	store   repository.Store
	authz   rbac.Authorizer
	mailer  email.Service
	loc     *time.Location
	now     func() time.Time
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(store repository.Store, authz rbac.Authorizer, mailer email.Service, loc *time.Location,
	log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		authz:   authz,
		mailer:  mailer,
		loc:     loc,
		now:     time.Now,
		logger:  log.With("reminder_service"),
		metrics: m,
	}
}

// WithClock replaces time.Now
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create schedules a reminder for an appointment. Only admins and the
// assigned doctor manage reminders.
func (s *Service) Create(ctx context.Context, p model.Principal, appointmentID uuid.UUID, req *model.CreateReminderRequest) (*model.AppointmentReminder, error) {
	a, err := s.appointment(ctx, p, appointmentID)
	if err != nil {
		return nil, err
	}

	kind := model.ReminderType(req.ReminderType)
	switch kind {
	case model.ReminderTypeEmail, model.ReminderTypeSMS, model.ReminderTypePush:
	default:
		return nil, errors.Validation("reminder_type must be one of email, sms, push", nil)
	}
	if req.ReminderTime.IsZero() {
		return nil, errors.Validation("reminder_time is required", nil)
	}
	if !req.ReminderTime.Before(a.StartsAt(s.loc)) {
		return nil, errors.Validation("reminder_time must be before the appointment starts", nil)
	}

	r := &model.AppointmentReminder{
		AppointmentID: a.ID,
		ReminderType:  kind,
		ReminderTime:  req.ReminderTime,
	}
	if err := s.store.Reminders().Create(ctx, r); err != nil {
		return nil, errors.Internal(err)
	}
	return r, nil
}

// List returns the reminders of an appointment, newest first
func (s *Service) List(ctx context.Context, p model.Principal, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error) {
	if _, err := s.appointment(ctx, p, appointmentID); err != nil {
		return nil, err
	}
	items, err := s.store.Reminders().ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if items == nil {
		items = []*model.AppointmentReminder{}
	}
	return items, nil
}

func (s *Service) appointment(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Appointment, error) {
	a, err := s.store.Appointments().Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("appointment", err)
		}
		return nil, errors.Internal(err)
	}
	if err := s.authz.Authorize(p, rbac.ActionManageReminders, rbac.ForAppointment(a)); err != nil {
		return nil, err
	}
	return a, nil
}

// DispatchDue emails up to limit due reminders and marks each delivered one
// sent. A failed delivery stays pending and is retried on the next run.
func (s *Service) DispatchDue(ctx context.Context, limit int) (int, error) {
	now := s.now()
	due, err := s.store.Reminders().ListDue(ctx, now, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, r := range due {
		if r.PatientEmail == "" {
			s.metrics.RemindersSent.WithLabelValues("skipped").Inc()
			continue
		}
		if err := s.mailer.SendCustom(ctx, r.PatientEmail, email.ReminderSubject(r), email.ReminderBody(r)); err != nil {
			s.metrics.RemindersSent.WithLabelValues("failed").Inc()
			s.logger.Error(err, "Failed to send reminder", "reminder_id", r.ID.String())
			continue
		}
		if err := s.store.Reminders().MarkSent(ctx, r.ID, now); err != nil {
			return sent, err
		}
		s.metrics.RemindersSent.WithLabelValues("sent").Inc()
		sent++
	}
	return sent, nil
}
