// Package calendar builds the scheduling horizon and splits it into Monday-start weeks.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

var (
	// ErrUnorderedDays is returned when the horizon is not a run of consecutive days
	ErrUnorderedDays = errors.New("calendar days are not consecutive and ascending")

	// ErrWeekdayMismatch is returned when a day's weekday does not match its date
	ErrWeekdayMismatch = errors.New("calendar day weekday does not match date")
)

// Partition splits an ordered horizon into weeks. A new week starts at every Monday,
// so a horizon that starts mid-week produces a short first week.
// Every day appears in exactly one week, in input order.
func Partition(days []model.CalendarDay) []model.Week {
	weeks := make([]model.Week, 0, len(days)/7+2)

	for _, day := range days {
		if len(weeks) == 0 || day.Weekday == time.Monday {
			weeks = append(weeks, model.Week{Index: len(weeks)})
		}
		current := &weeks[len(weeks)-1]
		current.Days = append(current.Days, day)
	}

	return weeks
}

// Validate checks that the horizon is a run of consecutive ascending days
// and that each day's weekday agrees with its date
func Validate(days []model.CalendarDay) error {
	for i, day := range days {
		if day.Date.Weekday() != day.Weekday {
			return fmt.Errorf("%w: %s is a %s, got %s",
				ErrWeekdayMismatch, day.DateString(), day.Date.Weekday(), day.Weekday)
		}

		if i == 0 {
			continue
		}

		expected := normalize(days[i-1].Date).AddDate(0, 0, 1)
		if !normalize(day.Date).Equal(expected) {
			return fmt.Errorf("%w: day %d is %s, expected %s",
				ErrUnorderedDays, i, day.DateString(), expected.Format(model.DateFormat))
		}
	}

	return nil
}

// NewDay creates a calendar day for the given date with its slots resolved from the profiles
func NewDay(date time.Time, profiles Profiles) model.CalendarDay {
	date = normalize(date)
	day := model.CalendarDay{
		Date:    date,
		Weekday: date.Weekday(),
	}
	day.Slots = profiles.SlotsFor(day.Weekday)
	return day
}

// BuildMonth creates the horizon covering every day of the given month.
// Overrides are applied in order, so a later override wins when two match the same date.
func BuildMonth(year int, month time.Month, profiles Profiles, overrides []Override) ([]model.CalendarDay, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return BuildRange(start, end, profiles, overrides)
}

// BuildRange creates the horizon for every day in [start, end)
func BuildRange(start, end time.Time, profiles Profiles, overrides []Override) ([]model.CalendarDay, error) {
	start = normalize(start)
	end = normalize(end)
	if !end.After(start) {
		return nil, fmt.Errorf("horizon end %s must be after start %s",
			end.Format(model.DateFormat), start.Format(model.DateFormat))
	}

	days := make([]model.CalendarDay, 0, int(end.Sub(start).Hours()/24))
	for date := start; date.Before(end); date = date.AddDate(0, 0, 1) {
		days = append(days, NewDay(date, profiles))
	}

	for i, override := range overrides {
		if err := override.apply(days, profiles); err != nil {
			return nil, fmt.Errorf("failed to apply day override %d: %w", i, err)
		}
	}

	return days, nil
}

// normalize strips the time of day so dates compare by calendar day
func normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
