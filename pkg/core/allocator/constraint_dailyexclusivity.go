package allocator

import (
	"fmt"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// DailyExclusivityConstraint prevents a staff member from holding two shift types on the same date.
//
// Eligibility:
//   - Returns false if the staff member already holds any shift (senior or secondary) on the date
//
// Validation:
//   - Reports every date on which a staff member appears in more than one slot
type DailyExclusivityConstraint struct{}

// NewDailyExclusivityConstraint creates a new DailyExclusivityConstraint
func NewDailyExclusivityConstraint() *DailyExclusivityConstraint {
	return &DailyExclusivityConstraint{}
}

func (c *DailyExclusivityConstraint) Name() string {
	return "DailyExclusivity"
}

func (c *DailyExclusivityConstraint) IsEligible(state *RunState, staffID string, day model.CalendarDay, shiftType model.ShiftType) bool {
	return !state.IsAssignedOn(day.DateString(), staffID)
}

func (c *DailyExclusivityConstraint) ValidateRunState(state *RunState) []SlotValidationError {
	var errors []SlotValidationError

	// Rebuild from the table rather than trusting the run's own bookkeeping
	seen := make(map[string]map[string]model.ShiftType)
	for _, key := range state.Table.Keys() {
		staffID := state.Table[key]
		if seen[key.Date] == nil {
			seen[key.Date] = make(map[string]model.ShiftType)
		}

		if first, exists := seen[key.Date][staffID]; exists {
			errors = append(errors, SlotValidationError{
				Date:           key.Date,
				ShiftType:      key.ShiftType,
				StaffID:        staffID,
				ConstraintName: c.Name(),
				Description:    fmt.Sprintf("staff %s already holds %s on %s", staffID, first, key.Date),
			})
			continue
		}
		seen[key.Date][staffID] = key.ShiftType
	}

	return errors
}
