package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Availability is one weekly open interval of a doctor
type Availability struct {
	Base
	DoctorID    uuid.UUID `json:"doctor_id" db:"doctor_id"`
	DayOfWeek   Weekday   `json:"day_of_week" db:"day_of_week"`
	StartTime   Clock     `json:"start_time" db:"start_time"`
	EndTime     Clock     `json:"end_time" db:"end_time"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
}

func (a *Availability) Window() Window {
	return Window{Start: a.StartTime, End: a.EndTime}
}

// Window is a half-open interval [Start, End) within one day
type Window struct {
	Start Clock `json:"start_time" db:"start_time"`
	End   Clock `json:"end_time" db:"end_time"`
}

func (w Window) Contains(c Clock) bool {
	return c >= w.Start && c < w.End
}

func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// AvailabilityInput is one row of a weekly schedule update
type AvailabilityInput struct {
	DayOfWeek   string `json:"day_of_week" binding:"required,weekday"`
	StartTime   string `json:"start_time" binding:"required,clock"`
	EndTime     string `json:"end_time" binding:"required,clock"`
	IsAvailable *bool  `json:"is_available"`
}

// ReplaceScheduleRequest replaces the whole weekly schedule of a doctor
type ReplaceScheduleRequest struct {
	Availability []AvailabilityInput `json:"availability" binding:"dive"`
}

var ErrEmptyWindow = errors.New("start time must be before end time")

// ToAvailability converts the inputs into rows for doctorID. Rows on the
// same weekday must not overlap and must not share a start time.
func (r *ReplaceScheduleRequest) ToAvailability(doctorID uuid.UUID) ([]*Availability, error) {
	rows := make([]*Availability, 0, len(r.Availability))
	for i, in := range r.Availability {
		start, err := ParseClock(in.StartTime)
		if err != nil {
			return nil, fmt.Errorf("availability[%d]: %w", i, err)
		}
		end, err := ParseClock(in.EndTime)
		if err != nil {
			return nil, fmt.Errorf("availability[%d]: %w", i, err)
		}
		if start >= end {
			return nil, fmt.Errorf("availability[%d]: %w", i, ErrEmptyWindow)
		}

		available := true
		if in.IsAvailable != nil {
			available = *in.IsAvailable
		}
		rows = append(rows, &Availability{
			DoctorID:    doctorID,
			DayOfWeek:   Weekday(strings.ToLower(in.DayOfWeek)),
			StartTime:   start,
			EndTime:     end,
			IsAvailable: available,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DayOfWeek != rows[j].DayOfWeek {
			return rows[i].DayOfWeek < rows[j].DayOfWeek
		}
		return rows[i].StartTime < rows[j].StartTime
	})
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		if prev.DayOfWeek == cur.DayOfWeek && prev.Window().Overlaps(cur.Window()) {
			return nil, fmt.Errorf("%s %s-%s overlaps %s-%s", cur.DayOfWeek,
				cur.StartTime, cur.EndTime, prev.StartTime, prev.EndTime)
		}
	}
	return rows, nil
}
