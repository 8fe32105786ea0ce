package allocator

import (
	"fmt"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/core/scoring"
)

// allocateResidualShifts fills the remaining slots of every day greedily.
//
// Days are visited in order and their secondary slots in fixed priority order
// (Secondary, Tertiary, Quaternary, FillerE, FillerF). Each slot goes to the eligible
// staff member with the lowest current fairness score, whose score is then credited
// with the slot's weight. Decisions are never revisited.
func (a *Allocator) allocateResidualShifts() error {
	queue := scoring.NewScoreQueue(a.state.Tracker)

	for _, day := range a.state.Days {
		for _, shiftType := range model.SecondaryShiftTypes {
			if !day.HasSlot(shiftType) {
				continue
			}

			staffID, ok := queue.PopEligible(func(staffID string) bool {
				return isEligible(a.state, a.constraints, staffID, day, shiftType)
			})
			if !ok {
				a.state.markUnderstaffed(day, shiftType)
				continue
			}

			err := a.state.assign(day, shiftType, staffID)
			queue.Push(staffID)
			if err != nil {
				return fmt.Errorf("failed to assign %s shift on %s: %w", shiftType, day.DateString(), err)
			}
		}
	}

	return nil
}
