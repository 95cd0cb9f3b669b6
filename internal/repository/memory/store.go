// Package memory is an in-process repository.Store. Transactions are
// serialized and roll back by restoring a snapshot. The live slot unique
// index and the unique confirmation code of the postgres schema are
// enforced on appointment writes.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type data struct {
	users        map[uuid.UUID]model.User
	doctors      map[uuid.UUID]model.Doctor
	patients     map[uuid.UUID]model.Patient
	availability map[uuid.UUID]model.Availability
	appointments map[uuid.UUID]model.Appointment
	slots        map[uuid.UUID]model.AppointmentSlot
	reminders    map[uuid.UUID]model.AppointmentReminder
	outbox       map[uuid.UUID]model.OutboxEvent
}

func (d *data) clone() *data {
	return &data{
		users:        maps.Clone(d.users),
		doctors:      maps.Clone(d.doctors),
		patients:     maps.Clone(d.patients),
		availability: maps.Clone(d.availability),
		appointments: maps.Clone(d.appointments),
		slots:        maps.Clone(d.slots),
		reminders:    maps.Clone(d.reminders),
		outbox:       maps.Clone(d.outbox),
	}
}

type Store struct {
	mu   sync.Mutex
	data *data
	// next profile code numbers, like the postgres sequences never rolled back
	doctorSeq  int
	patientSeq int
	// HideLiveBookings makes ExistsLive always report false so the unique
	// index is the only guard, as in a check-then-insert race.
	HideLiveBookings bool
}

func NewStore() *Store {
	return &Store{data: &data{
		users:        map[uuid.UUID]model.User{},
		doctors:      map[uuid.UUID]model.Doctor{},
		patients:     map[uuid.UUID]model.Patient{},
		availability: map[uuid.UUID]model.Availability{},
		appointments: map[uuid.UUID]model.Appointment{},
		slots:        map[uuid.UUID]model.AppointmentSlot{},
		reminders:    map[uuid.UUID]model.AppointmentReminder{},
		outbox:       map[uuid.UUID]model.OutboxEvent{},
	}}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	ok := false
	defer func() {
		if !ok {
			s.data = snapshot
		}
	}()

	if err := fn(repos{s: s}); err != nil {
		return err
	}
	ok = true
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) locked() repos { return repos{s: s, lock: true} }

func (s *Store) Users() repository.UserRepository                { return s.locked().Users() }
func (s *Store) Doctors() repository.DoctorRepository            { return s.locked().Doctors() }
func (s *Store) Patients() repository.PatientRepository          { return s.locked().Patients() }
func (s *Store) Availability() repository.AvailabilityRepository { return s.locked().Availability() }
func (s *Store) Appointments() repository.AppointmentRepository  { return s.locked().Appointments() }
func (s *Store) Slots() repository.SlotRepository                { return s.locked().Slots() }
func (s *Store) Reminders() repository.ReminderRepository        { return s.locked().Reminders() }
func (s *Store) Outbox() repository.OutboxRepository             { return s.locked().Outbox() }

// Seed helpers

func (s *Store) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Touch(time.Now())
	s.data.users[u.ID] = u
}

// AddDoctor stores d. Reads take name and email from its user when present.
func (s *Store) AddDoctor(d model.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Touch(time.Now())
	s.data.doctors[d.ID] = d
}

func (s *Store) AddPatient(p model.Patient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.Touch(time.Now())
	s.data.patients[p.ID] = p
}

func (s *Store) AddAvailability(a model.Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Touch(time.Now())
	s.data.availability[a.ID] = a
}

func (s *Store) AddAppointment(a model.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Touch(time.Now())
	s.data.appointments[a.ID] = a
}

// AllAppointments returns every stored appointment
func (s *Store) AllAppointments() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, 0, len(s.data.appointments))
	for _, a := range s.data.appointments {
		out = append(out, a)
	}
	return out
}

// OutboxEvents returns stored events oldest first
func (s *Store) OutboxEvents() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.OutboxEvent, 0, len(s.data.outbox))
	for _, e := range s.data.outbox {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type repos struct {
	s    *Store
	lock bool
}

func (r repos) guard() func() {
	if !r.lock {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r repos) Users() repository.UserRepository                { return users{r} }
func (r repos) Doctors() repository.DoctorRepository            { return doctors{r} }
func (r repos) Patients() repository.PatientRepository          { return patients{r} }
func (r repos) Availability() repository.AvailabilityRepository { return availability{r} }
func (r repos) Appointments() repository.AppointmentRepository  { return appointments{r} }
func (r repos) Slots() repository.SlotRepository                { return slots{r} }
func (r repos) Reminders() repository.ReminderRepository        { return reminders{r} }
func (r repos) Outbox() repository.OutboxRepository             { return outbox{r} }

func notFound(what string) error {
	return fmt.Errorf("failed to get %s: %w", what, repository.ErrNotFound)
}

type users struct{ repos }

func (r users) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	defer r.guard()()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (r users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	defer r.guard()()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (r users) Create(ctx context.Context, u *model.User) error {
	defer r.guard()()
	for _, existing := range r.s.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return fmt.Errorf("failed to create user: %w", repository.ErrDuplicate)
		}
	}
	u.Touch(time.Now())
	r.s.data.users[u.ID] = *u
	return nil
}

func (r users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	defer r.guard()()
	u, ok := r.s.data.users[id]
	if !ok {
		return notFound("user")
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	r.s.data.users[id] = u
	return nil
}

type doctors struct{ repos }

func (r doctors) withUser(d model.Doctor) *model.Doctor {
	if u, ok := r.s.data.users[d.UserID]; ok {
		d.FirstName, d.LastName, d.Email = u.FirstName, u.LastName, u.Email
	}
	return &d
}

func (r doctors) active(d model.Doctor) bool {
	u, ok := r.s.data.users[d.UserID]
	return d.IsAvailable && (!ok || u.IsActive)
}

func (r doctors) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	defer r.guard()()
	d, ok := r.s.data.doctors[id]
	if !ok {
		return nil, notFound("doctor")
	}
	return r.withUser(d), nil
}

func (r doctors) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	defer r.guard()()
	for _, d := range r.s.data.doctors {
		if d.UserID == userID {
			return r.withUser(d), nil
		}
	}
	return nil, notFound("doctor")
}

func (r doctors) GetActive(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	defer r.guard()()
	d, ok := r.s.data.doctors[id]
	if !ok || !r.active(d) {
		return nil, notFound("doctor")
	}
	return r.withUser(d), nil
}

func (r doctors) sorted(department string) []model.Doctor {
	var out []model.Doctor
	for _, d := range r.s.data.doctors {
		if (department == "" || d.Department == department) && r.active(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r doctors) FirstActiveInDepartment(ctx context.Context, department string) (*model.Doctor, error) {
	defer r.guard()()
	list := r.sorted(department)
	if len(list) == 0 {
		return nil, notFound("doctor")
	}
	return r.withUser(list[0]), nil
}

func (r doctors) ListByDepartment(ctx context.Context, department string) ([]*model.Doctor, error) {
	defer r.guard()()
	var out []*model.Doctor
	for _, d := range r.sorted(department) {
		out = append(out, r.withUser(d))
	}
	return out, nil
}

func (r doctors) ListDepartments(ctx context.Context) ([]*model.DepartmentSummary, error) {
	defer r.guard()()
	counts := map[string]int{}
	for _, d := range r.sorted("") {
		counts[d.Department]++
	}
	out := make([]*model.DepartmentSummary, 0, len(counts))
	for name, n := range counts {
		out = append(out, &model.DepartmentSummary{Name: name, DoctorCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r doctors) Create(ctx context.Context, d *model.Doctor) error {
	defer r.guard()()
	for _, existing := range r.s.data.doctors {
		if existing.UserID == d.UserID || (d.LicenseNumber != "" && existing.LicenseNumber == d.LicenseNumber) {
			return fmt.Errorf("failed to create doctor: %w", repository.ErrDuplicate)
		}
	}
	r.s.doctorSeq++
	d.DoctorCode = fmt.Sprintf("DOC%03d", r.s.doctorSeq)
	d.Touch(time.Now())
	r.s.data.doctors[d.ID] = *d
	return nil
}

type patients struct{ repos }

func (r patients) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	defer r.guard()()
	p, ok := r.s.data.patients[id]
	if !ok {
		return nil, notFound("patient")
	}
	return &p, nil
}

func (r patients) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	defer r.guard()()
	for _, p := range r.s.data.patients {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, notFound("patient")
}

func (r patients) Create(ctx context.Context, p *model.Patient) error {
	defer r.guard()()
	for _, existing := range r.s.data.patients {
		if existing.UserID == p.UserID {
			return fmt.Errorf("failed to create patient: %w", repository.ErrDuplicate)
		}
	}
	r.s.patientSeq++
	p.PatientCode = fmt.Sprintf("PAT%03d", r.s.patientSeq)
	p.Touch(time.Now())
	r.s.data.patients[p.ID] = *p
	return nil
}

type availability struct{ repos }

func (r availability) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Availability, error) {
	defer r.guard()()
	var out []*model.Availability
	for _, a := range r.s.data.availability {
		if a.DoctorID == doctorID {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek.Order() < out[j].DayOfWeek.Order()
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r availability) ListWindows(ctx context.Context, doctorID uuid.UUID, day model.Weekday) ([]model.Window, error) {
	defer r.guard()()
	var out []model.Window
	for _, a := range r.s.data.availability {
		if a.DoctorID == doctorID && a.DayOfWeek == day && a.IsAvailable {
			out = append(out, a.Window())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (r availability) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) error {
	defer r.guard()()
	for id, a := range r.s.data.availability {
		if a.DoctorID == doctorID {
			delete(r.s.data.availability, id)
		}
	}
	return nil
}

func (r availability) Create(ctx context.Context, a *model.Availability) error {
	defer r.guard()()
	for _, existing := range r.s.data.availability {
		if existing.DoctorID == a.DoctorID && existing.DayOfWeek == a.DayOfWeek && existing.StartTime == a.StartTime {
			return fmt.Errorf("failed to create availability: %w", repository.ErrDuplicate)
		}
	}
	a.Touch(time.Now())
	r.s.data.availability[a.ID] = *a
	return nil
}

type appointments struct{ repos }

// conflicts emulates the partial unique index on live appointments
func (r appointments) conflicts(a *model.Appointment) bool {
	if !a.Status.IsLive() {
		return false
	}
	for _, other := range r.s.data.appointments {
		if other.ID != a.ID && other.DoctorID == a.DoctorID && other.Status.IsLive() &&
			other.AppointmentDate.Equal(a.AppointmentDate) && other.AppointmentTime == a.AppointmentTime {
			return true
		}
	}
	return false
}

func (r appointments) codeTaken(a *model.Appointment) bool {
	if a.ConfirmationCode == nil {
		return false
	}
	for _, other := range r.s.data.appointments {
		if other.ConfirmationCode != nil && *other.ConfirmationCode == *a.ConfirmationCode {
			return true
		}
	}
	return false
}

func (r appointments) Create(ctx context.Context, a *model.Appointment) error {
	defer r.guard()()
	if r.conflicts(a) {
		return fmt.Errorf("failed to create appointment: %w", repository.ErrSlotConflict)
	}
	if _, taken := r.s.data.appointments[a.ID]; taken || r.codeTaken(a) {
		return fmt.Errorf("failed to create appointment: %w", repository.ErrDuplicate)
	}
	a.Touch(time.Now())
	r.s.data.appointments[a.ID] = *a
	return nil
}

func (r appointments) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	defer r.guard()()
	a, ok := r.s.data.appointments[id]
	if !ok {
		return nil, notFound("appointment")
	}
	return &a, nil
}

func (r appointments) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return r.Get(ctx, id)
}

func (r appointments) Update(ctx context.Context, a *model.Appointment) error {
	defer r.guard()()
	if _, ok := r.s.data.appointments[a.ID]; !ok {
		return notFound("appointment")
	}
	if r.conflicts(a) {
		return fmt.Errorf("failed to update appointment: %w", repository.ErrSlotConflict)
	}
	a.UpdatedAt = time.Now()
	r.s.data.appointments[a.ID] = *a
	return nil
}

func (r appointments) List(ctx context.Context, f *model.AppointmentFilters) ([]*model.Appointment, error) {
	defer r.guard()()
	if f == nil {
		f = &model.AppointmentFilters{}
	}
	var out []*model.Appointment
	for _, a := range r.s.data.appointments {
		if !matches(a, f) {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool {
		less := out[i].AppointmentDate.Before(out[j].AppointmentDate) ||
			(out[i].AppointmentDate.Equal(out[j].AppointmentDate) && out[i].AppointmentTime < out[j].AppointmentTime)
		if f.Ascending {
			return less
		}
		return !less && !(out[i].AppointmentDate.Equal(out[j].AppointmentDate) && out[i].AppointmentTime == out[j].AppointmentTime)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func matches(a model.Appointment, f *model.AppointmentFilters) bool {
	if f.PatientID != nil && a.PatientID != *f.PatientID {
		return false
	}
	if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if a.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.FromDate != nil && a.AppointmentDate.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && a.AppointmentDate.After(*f.ToDate) {
		return false
	}
	return true
}

func (r appointments) ExistsLive(ctx context.Context, doctorID uuid.UUID, date model.Date, at model.Clock, excludeID *uuid.UUID) (bool, error) {
	defer r.guard()()
	if r.s.HideLiveBookings {
		return false, nil
	}
	for _, a := range r.s.data.appointments {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if a.DoctorID == doctorID && a.Status.IsLive() && a.AppointmentDate.Equal(date) && a.AppointmentTime == at {
			return true, nil
		}
	}
	return false, nil
}

func (r appointments) OccupiedTimes(ctx context.Context, doctorID uuid.UUID, date model.Date) ([]model.Clock, error) {
	defer r.guard()()
	var out []model.Clock
	for _, a := range r.s.data.appointments {
		if a.DoctorID == doctorID && a.Status.IsLive() && a.AppointmentDate.Equal(date) {
			out = append(out, a.AppointmentTime)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type slots struct{ repos }

func (r slots) Create(ctx context.Context, s *model.AppointmentSlot) error {
	defer r.guard()()
	for _, existing := range r.s.data.slots {
		if existing.DoctorID == s.DoctorID && existing.Date.Equal(s.Date) && existing.StartTime == s.StartTime {
			return fmt.Errorf("failed to create slot: %w", repository.ErrDuplicate)
		}
	}
	s.Touch(time.Now())
	r.s.data.slots[s.ID] = *s
	return nil
}

func (r slots) List(ctx context.Context, f *model.SlotFilters) ([]*model.SlotOccupancy, error) {
	defer r.guard()()
	if f == nil {
		f = &model.SlotFilters{}
	}
	var out []*model.SlotOccupancy
	for _, s := range r.s.data.slots {
		if f.DoctorID != nil && s.DoctorID != *f.DoctorID {
			continue
		}
		if f.FromDate != nil && s.Date.Before(*f.FromDate) {
			continue
		}
		if f.ToDate != nil && s.Date.After(*f.ToDate) {
			continue
		}
		if f.OnlyAvailable && !s.IsAvailable {
			continue
		}
		occ := &model.SlotOccupancy{AppointmentSlot: s}
		for _, a := range r.s.data.appointments {
			if a.DoctorID == s.DoctorID && a.Status.IsLive() && a.AppointmentDate.Equal(s.Date) && a.AppointmentTime == s.StartTime {
				occ.CurrentAppointments++
			}
		}
		out = append(out, occ)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

type reminders struct{ repos }

func (r reminders) Create(ctx context.Context, rem *model.AppointmentReminder) error {
	defer r.guard()()
	rem.Touch(time.Now())
	r.s.data.reminders[rem.ID] = *rem
	return nil
}

func (r reminders) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.AppointmentReminder, error) {
	defer r.guard()()
	var out []*model.AppointmentReminder
	for _, rem := range r.s.data.reminders {
		if rem.AppointmentID == appointmentID {
			rem := rem
			out = append(out, &rem)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r reminders) ListDue(ctx context.Context, before time.Time, limit int) ([]*model.DueReminder, error) {
	defer r.guard()()
	var out []*model.DueReminder
	for _, rem := range r.s.data.reminders {
		if rem.IsSent || rem.ReminderType != model.ReminderTypeEmail || rem.ReminderTime.After(before) {
			continue
		}
		a, ok := r.s.data.appointments[rem.AppointmentID]
		if !ok || !a.Status.IsLive() {
			continue
		}
		due := &model.DueReminder{
			AppointmentReminder: rem,
			AppointmentDate:     a.AppointmentDate,
			AppointmentTime:     a.AppointmentTime,
			ConfirmationCode:    a.ConfirmationCode,
		}
		if p, ok := r.s.data.patients[a.PatientID]; ok {
			due.PatientEmail, due.PatientName = p.Email, p.FullName()
			if u, ok := r.s.data.users[p.UserID]; ok {
				due.PatientEmail, due.PatientName = u.Email, u.FullName()
			}
		}
		if d, ok := r.s.data.doctors[a.DoctorID]; ok {
			due.DoctorName = doctors{r.repos}.withUser(d).DisplayName()
		}
		out = append(out, due)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderTime.Before(out[j].ReminderTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r reminders) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	defer r.guard()()
	rem, ok := r.s.data.reminders[id]
	if !ok {
		return notFound("reminder")
	}
	rem.IsSent = true
	rem.SentAt = &at
	rem.UpdatedAt = at
	r.s.data.reminders[id] = rem
	return nil
}

type outbox struct{ repos }

func (r outbox) Create(ctx context.Context, e *model.OutboxEvent) error {
	defer r.guard()()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Status = model.OutboxStatusPending
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.s.data.outbox[e.ID] = *e
	return nil
}

func (r outbox) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	defer r.guard()()
	now := time.Now()
	var out []*model.OutboxEvent
	for _, e := range r.s.data.outbox {
		if e.Status != model.OutboxStatusPending && e.Status != model.OutboxStatusRetry {
			continue
		}
		if e.RetryAt != nil && e.RetryAt.After(now) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r outbox) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	defer r.guard()()
	e, ok := r.s.data.outbox[id]
	if !ok {
		return notFound("outbox event")
	}
	now := time.Now()
	e.Status = model.OutboxStatusProcessed
	e.ProcessedAt = &now
	e.ErrorMessage = nil
	r.s.data.outbox[id] = e
	return nil
}

func (r outbox) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, retryAt *time.Time) error {
	defer r.guard()()
	e, ok := r.s.data.outbox[id]
	if !ok {
		return notFound("outbox event")
	}
	e.Status = model.OutboxStatusFailed
	if retryAt != nil {
		e.Status = model.OutboxStatusRetry
	}
	e.ErrorMessage = &errMsg
	e.RetryAt = retryAt
	e.RetryCount++
	r.s.data.outbox[id] = e
	return nil
}

func (r outbox) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	defer r.guard()()
	var n int64
	for id, e := range r.s.data.outbox {
		if e.Status == model.OutboxStatusProcessed && e.ProcessedAt != nil && e.ProcessedAt.Before(before) {
			delete(r.s.data.outbox, id)
			n++
		}
	}
	return n, nil
}
