package allocator

import (
	"fmt"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// WeeklySeniorCapConstraint limits how many senior shifts a staff member may hold in one week.
//
// Eligibility:
//   - Only applies to the senior shift type
//   - Returns false once the staff member holds maxPerWeek senior shifts in the day's week
//
// Validation:
//   - Reports every senior slot beyond the cap within a week, recounted from the table
type WeeklySeniorCapConstraint struct {
	maxPerWeek int
}

// NewWeeklySeniorCapConstraint creates a new WeeklySeniorCapConstraint with the given cap
func NewWeeklySeniorCapConstraint(maxPerWeek int) *WeeklySeniorCapConstraint {
	return &WeeklySeniorCapConstraint{maxPerWeek: maxPerWeek}
}

func (c *WeeklySeniorCapConstraint) Name() string {
	return "WeeklySeniorCap"
}

func (c *WeeklySeniorCapConstraint) IsEligible(state *RunState, staffID string, day model.CalendarDay, shiftType model.ShiftType) bool {
	if shiftType != model.Senior {
		return true
	}

	weekIndex, ok := state.WeekOf(day.DateString())
	if !ok {
		return true
	}

	return state.SeniorCountInWeek(weekIndex, staffID) < c.maxPerWeek
}

func (c *WeeklySeniorCapConstraint) ValidateRunState(state *RunState) []SlotValidationError {
	var errors []SlotValidationError

	counts := make(map[int]map[string]int)
	for _, key := range state.Table.Keys() {
		if key.ShiftType != model.Senior {
			continue
		}

		weekIndex, ok := state.WeekOf(key.Date)
		if !ok {
			continue
		}

		staffID := state.Table[key]
		if counts[weekIndex] == nil {
			counts[weekIndex] = make(map[string]int)
		}
		counts[weekIndex][staffID]++

		if counts[weekIndex][staffID] > c.maxPerWeek {
			errors = append(errors, SlotValidationError{
				Date:           key.Date,
				ShiftType:      key.ShiftType,
				StaffID:        staffID,
				ConstraintName: c.Name(),
				Description: fmt.Sprintf("staff %s holds %d senior shifts in week %d (max %d)",
					staffID, counts[weekIndex][staffID], weekIndex+1, c.maxPerWeek),
			})
		}
	}

	return errors
}
