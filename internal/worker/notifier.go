package worker

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/jwalitptl/clinic-api/internal/email"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

// Notifier emails patients about appointment events read from the broker
type Notifier struct {
	patients repository.PatientRepository
	mailer   email.Service
	logger   *logger.Logger
}

func NewNotifier(patients repository.PatientRepository, mailer email.Service, log *logger.Logger) *Notifier {
	return &Notifier{patients: patients, mailer: mailer, logger: log.With("notifier")}
}

// Handle is a messaging.Handler. Unknown event types are ignored.
func (n *Notifier) Handle(ctx context.Context, payload []byte) error {
	var env messaging.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}
	var event model.AppointmentEvent
	if err := json.Unmarshal(env.Payload, &event); err != nil {
		return fmt.Errorf("failed to decode %s event %s: %w", env.Type, env.ID, err)
	}

	subject, body, ok := email.EventMessage(env.Type, &event)
	if !ok {
		n.logger.Debug("Ignoring event", "type", env.Type)
		return nil
	}

	patient, err := n.patients.Get(ctx, event.PatientID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			n.logger.Warn("Patient of event not found", "event_id", env.ID, "patient_id", event.PatientID.String())
			return nil
		}
		return err
	}
	if patient.Email == "" {
		return nil
	}

	if err := n.mailer.SendCustom(ctx, patient.Email, subject, body); err != nil {
		return err
	}
	n.logger.Info("Patient notified", "event_id", env.ID, "type", env.Type)
	return nil
}
