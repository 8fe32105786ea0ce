package allocator

import (
	"fmt"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// SlotUniquenessConstraint checks that no slot was decided twice.
// The table cannot hold two staff for one key, so the decision log is checked instead:
// a slot decided twice means an earlier assignment was silently overwritten.
type SlotUniquenessConstraint struct{}

// NewSlotUniquenessConstraint creates a new SlotUniquenessConstraint
func NewSlotUniquenessConstraint() *SlotUniquenessConstraint {
	return &SlotUniquenessConstraint{}
}

func (c *SlotUniquenessConstraint) Name() string {
	return "SlotUniqueness"
}

func (c *SlotUniquenessConstraint) IsEligible(state *RunState, staffID string, day model.CalendarDay, shiftType model.ShiftType) bool {
	_, filled := state.Table.Get(day.DateString(), shiftType)
	return !filled
}

func (c *SlotUniquenessConstraint) ValidateRunState(state *RunState) []SlotValidationError {
	var errors []SlotValidationError

	decided := make(map[model.SlotKey]string)
	for _, assignment := range state.Assignments {
		if previous, exists := decided[assignment.Slot]; exists {
			errors = append(errors, SlotValidationError{
				Date:           assignment.Slot.Date,
				ShiftType:      assignment.Slot.ShiftType,
				StaffID:        assignment.StaffID,
				ConstraintName: c.Name(),
				Description:    fmt.Sprintf("slot %s assigned to %s after %s", assignment.Slot, assignment.StaffID, previous),
			})
			continue
		}
		decided[assignment.Slot] = assignment.StaffID
	}

	if len(decided) != len(state.Table) {
		errors = append(errors, SlotValidationError{
			ConstraintName: c.Name(),
			Description:    fmt.Sprintf("table holds %d slots but %d were decided", len(state.Table), len(decided)),
		})
	}

	return errors
}
