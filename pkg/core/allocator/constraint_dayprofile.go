package allocator

import (
	"fmt"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// DayProfileConstraint keeps allocations to the slots each day actually requires.
// With the default profiles this excludes Sundays entirely and restricts Saturdays to the senior slot.
//
// Eligibility:
//   - Returns false if the shift type is not one of the day's slots
//
// Validation:
//   - Reports slots on dates outside the horizon or not in the day's profile
type DayProfileConstraint struct{}

// NewDayProfileConstraint creates a new DayProfileConstraint
func NewDayProfileConstraint() *DayProfileConstraint {
	return &DayProfileConstraint{}
}

func (c *DayProfileConstraint) Name() string {
	return "DayProfile"
}

func (c *DayProfileConstraint) IsEligible(state *RunState, staffID string, day model.CalendarDay, shiftType model.ShiftType) bool {
	return day.HasSlot(shiftType)
}

func (c *DayProfileConstraint) ValidateRunState(state *RunState) []SlotValidationError {
	var errors []SlotValidationError

	daysByDate := make(map[string]model.CalendarDay, len(state.Days))
	for _, day := range state.Days {
		daysByDate[day.DateString()] = day
	}

	for _, key := range state.Table.Keys() {
		day, ok := daysByDate[key.Date]

		var description string
		switch {
		case !ok:
			description = fmt.Sprintf("%s is outside the horizon", key.Date)
		case !day.HasSlot(key.ShiftType):
			description = fmt.Sprintf("%s (%s) has no %s slot", key.Date, day.Weekday, key.ShiftType)
		default:
			continue
		}

		errors = append(errors, SlotValidationError{
			Date:           key.Date,
			ShiftType:      key.ShiftType,
			StaffID:        state.Table[key],
			ConstraintName: c.Name(),
			Description:    description,
		})
	}

	return errors
}
