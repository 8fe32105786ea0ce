package allocator

import (
	"fmt"
	"slices"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// allocateSeniorShifts fills the senior slot of every day, week by week.
//
// Each week starts with the whole staff list as its pool. A staff member taking a
// senior slot leaves the pool for the rest of the week, so nobody works two senior
// shifts in one week. When the pool runs dry the slot is left unfilled and an
// Understaffed advisory is recorded.
func (a *Allocator) allocateSeniorShifts() error {
	staffIDs := a.state.StaffIDs()

	for _, week := range a.state.Weeks {
		pool := slices.Clone(staffIDs)

		for _, day := range week.Days {
			if !day.HasSlot(model.Senior) {
				continue
			}

			candidates := make([]string, 0, len(pool))
			for _, staffID := range pool {
				if isEligible(a.state, a.constraints, staffID, day, model.Senior) {
					candidates = append(candidates, staffID)
				}
			}

			if len(candidates) == 0 {
				a.state.markUnderstaffed(day, model.Senior)
				continue
			}

			chosen := a.picker.Pick(a.state, candidates)
			if !slices.Contains(candidates, chosen) {
				return fmt.Errorf("senior picker %s chose %q who is not a candidate on %s",
					a.picker.Name(), chosen, day.DateString())
			}

			if err := a.state.assign(day, model.Senior, chosen); err != nil {
				return fmt.Errorf("failed to assign senior shift on %s: %w", day.DateString(), err)
			}

			pool = slices.DeleteFunc(pool, func(staffID string) bool { return staffID == chosen })
		}
	}

	return nil
}
