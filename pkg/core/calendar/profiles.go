package calendar

import (
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// Profile names accepted by overrides
const (
	ProfileWeekday  = "weekday"
	ProfileSaturday = "saturday"
	ProfileRest     = "rest"
)

// Profiles holds the shift types required for each kind of day
type Profiles struct {
	Weekday  []model.ShiftType
	Saturday []model.ShiftType
	Sunday   []model.ShiftType
}

// DefaultProfiles returns the ward's standard slot layout:
// every shift type on weekdays, the senior slot on Saturday and nothing on Sunday
func DefaultProfiles() Profiles {
	return Profiles{
		Weekday:  slices.Clone(model.AllShiftTypes),
		Saturday: []model.ShiftType{model.Senior},
		Sunday:   []model.ShiftType{},
	}
}

// SlotsFor returns a copy of the slots configured for the given weekday
func (p Profiles) SlotsFor(weekday time.Weekday) []model.ShiftType {
	switch weekday {
	case time.Sunday:
		return slices.Clone(p.Sunday)
	case time.Saturday:
		return slices.Clone(p.Saturday)
	default:
		return slices.Clone(p.Weekday)
	}
}

// Named returns the slots for a profile name
func (p Profiles) Named(name string) ([]model.ShiftType, error) {
	switch name {
	case ProfileWeekday:
		return slices.Clone(p.Weekday), nil
	case ProfileSaturday:
		return slices.Clone(p.Saturday), nil
	case ProfileRest:
		return []model.ShiftType{}, nil
	default:
		return nil, fmt.Errorf("unknown day profile %q", name)
	}
}

// ParseSlots converts shift type names or letters into shift types
func ParseSlots(values []string) ([]model.ShiftType, error) {
	slots := make([]model.ShiftType, 0, len(values))
	for _, value := range values {
		shiftType, err := model.ParseShiftType(value)
		if err != nil {
			return nil, err
		}
		if slices.Contains(slots, shiftType) {
			return nil, fmt.Errorf("shift type %s listed twice", shiftType)
		}
		slots = append(slots, shiftType)
	}
	return slots, nil
}

// Override re-profiles the dates matched by a recurrence rule, e.g. bank holidays as rest days
type Override struct {
	RRule   string
	Profile string
}

func (o Override) apply(days []model.CalendarDay, profiles Profiles) error {
	if len(days) == 0 {
		return nil
	}

	slots, err := profiles.Named(o.Profile)
	if err != nil {
		return err
	}

	rule, err := rrule.StrToRRule(o.RRule)
	if err != nil {
		return fmt.Errorf("failed to parse rrule %q: %w", o.RRule, err)
	}

	searchStart := days[0].Date
	searchEnd := days[len(days)-1].Date

	// Anchor the rule to the horizon so open-ended rules expand over it
	rule.DTStart(searchStart)

	matched := make(map[string]bool)
	for _, occurrence := range rule.Between(searchStart, searchEnd, true) {
		matched[occurrence.Format(model.DateFormat)] = true
	}

	for i := range days {
		if matched[days[i].DateString()] {
			days[i].Slots = slices.Clone(slots)
		}
	}

	return nil
}
