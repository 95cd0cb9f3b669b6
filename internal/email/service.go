package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-api/pkg/logger"
)

type Service interface {
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type smtpService struct {
	dialer  *gomail.Dialer
	from    string
	breaker *circuitbreaker.CircuitBreaker
}

// NewSMTPService sends through cfg's relay. After repeated relay failures
// sends fail fast with circuitbreaker.ErrOpen for a while.
func NewSMTPService(cfg config.SMTPConfig, log *logger.Logger) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:      "smtp",
			TripAfter: 3,
			Timeout:   30 * time.Second,
		}, log),
	}
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.breaker.Execute(func() error { return s.dialer.DialAndSend(m) }); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// ReminderSubject and ReminderBody render an appointment reminder
func ReminderSubject(r *model.DueReminder) string {
	return fmt.Sprintf("Reminder: appointment on %s at %s", r.AppointmentDate, r.AppointmentTime)
}

func ReminderBody(r *model.DueReminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", r.PatientName)
	fmt.Fprintf(&b, "This is a reminder of your appointment with %s on %s at %s.\n",
		r.DoctorName, r.AppointmentDate, r.AppointmentTime)
	if r.ConfirmationCode != nil {
		fmt.Fprintf(&b, "Confirmation code: %s\n", *r.ConfirmationCode)
	}
	b.WriteString("\nIf you cannot attend, please cancel at least 24 hours in advance.\n")
	return b.String()
}

// CredentialsSubject is the subject of the new account mail
const CredentialsSubject = "Your clinic account credentials"

func CredentialsBody(name string, c model.Credentials) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "An account with the %s role has been created for you.\n\n", c.Role)
	fmt.Fprintf(&b, "Email: %s\nPassword: %s\n", c.Email, c.Password)
	b.WriteString("\nPlease change your password after your first login.\n")
	return b.String()
}

var eventSubjects = map[string]string{
	model.EventAppointmentScheduled:   "Your appointment is booked",
	model.EventAppointmentRescheduled: "Your appointment was rescheduled",
	model.EventAppointmentCancelled:   "Your appointment was cancelled",
	model.EventAppointmentStatus:      "Your appointment was updated",
}

// EventMessage renders the patient notification for an appointment event
func EventMessage(eventType string, e *model.AppointmentEvent) (subject, body string, ok bool) {
	subject, ok = eventSubjects[eventType]
	if !ok {
		return "", "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Appointment on %s at %s is now %s.\n", e.AppointmentDate, e.AppointmentTime, e.Status)
	if e.ConfirmationCode != nil {
		fmt.Fprintf(&b, "Confirmation code: %s\n", *e.ConfirmationCode)
	}
	return subject, b.String(), true
}
