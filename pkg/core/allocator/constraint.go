package allocator

import "github.com/jakechorley/ward-overtime/pkg/core/model"

// SlotValidationError represents a rule broken by a specific slot of the finished allocation
type SlotValidationError struct {
	Date           string
	ShiftType      model.ShiftType
	StaffID        string
	ConstraintName string
	Description    string
}

// Constraint defines a hard rule the allocation must respect.
// Constraints veto candidates during allocation and re-check the finished run.
type Constraint interface {
	// Name returns a human-readable identifier for this constraint
	Name() string

	// IsEligible determines if the staff member may take the shift type on the day.
	// This acts as a veto - if ANY constraint returns false, the staff member is not a candidate.
	IsEligible(state *RunState, staffID string, day model.CalendarDay, shiftType model.ShiftType) bool

	// ValidateRunState checks the finished run against this constraint
	// Returns a slice of validation errors (empty if all valid)
	ValidateRunState(state *RunState) []SlotValidationError
}

// ValidateRunState validates the finished run against all provided constraints.
// An empty slice indicates the run is valid.
func ValidateRunState(state *RunState, constraints []Constraint) []SlotValidationError {
	errors := []SlotValidationError{}

	for _, constraint := range constraints {
		errors = append(errors, constraint.ValidateRunState(state)...)
	}

	return errors
}

// isEligible runs every constraint's veto
func isEligible(state *RunState, constraints []Constraint, staffID string, day model.CalendarDay, shiftType model.ShiftType) bool {
	for _, constraint := range constraints {
		if !constraint.IsEligible(state, staffID, day, shiftType) {
			return false
		}
	}
	return true
}
