package allocator

import (
	"errors"
	"fmt"

	"github.com/jakechorley/ward-overtime/pkg/core/calendar"
	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/core/scoring"
)

var (
	// ErrNoStaff is returned when the horizon has slots to fill but the staff list is empty
	ErrNoStaff = errors.New("no staff to allocate")

	// ErrDuplicateStaff is returned when two staff members share an id
	ErrDuplicateStaff = errors.New("duplicate staff id")

	// ErrUnknownStaff is returned when a base score refers to a staff member not in the staff list
	ErrUnknownStaff = errors.New("unknown staff id")

	// ErrInvalidShiftType is returned when a day lists a shift type outside the closed set
	ErrInvalidShiftType = errors.New("invalid shift type")
)

// Allocator runs the two allocation phases over a single run's state
type Allocator struct {
	constraints []Constraint
	picker      SeniorPicker
	state       *RunState
}

// AllocationConfig contains the input for one allocation run
type AllocationConfig struct {
	// Staff eligible for overtime
	Staff []model.StaffMember

	// Days is the ordered horizon, each day carrying the slots it needs filled
	Days []model.CalendarDay

	// BaseScores are the starting fairness scores, typically negative in proportion to
	// regular shifts already worked. Staff without an entry start at 0.
	BaseScores map[string]float64

	// Picker selects senior shift holders (defaults to FewestSeniorPicker)
	Picker SeniorPicker

	// Constraints are extra rules applied on top of DefaultConstraints, which always hold.
	// A constraint named like a default is ignored.
	Constraints []Constraint
}

// AllocationOutcome represents the result of an allocation run
type AllocationOutcome struct {
	// State is the final run state
	State *RunState

	// Table of filled slots
	Table Table

	// Assignments in decision order
	Assignments []model.Assignment

	// Understaffed advisories for slots left unfilled
	Understaffed []model.Understaffed

	// BaseScores and FinalScores of every staff member
	BaseScores  map[string]float64
	FinalScores map[string]float64

	// Weeks the horizon was partitioned into
	Weeks []model.Week

	// ValidationErrors contains any constraint broken by the finished run
	ValidationErrors []SlotValidationError

	// Success indicates whether the run passed validation. Unfilled slots do not affect it.
	Success bool
}

// DefaultConstraints returns the hard rules of the ward's overtime rota.
// Every run enforces them whatever else is configured.
func DefaultConstraints() []Constraint {
	return []Constraint{
		NewDayProfileConstraint(),
		NewSlotUniquenessConstraint(),
		NewDailyExclusivityConstraint(),
		NewWeeklySeniorCapConstraint(1),
	}
}

// Allocate runs senior allocation followed by greedy residual allocation
func Allocate(config AllocationConfig) (*AllocationOutcome, error) {
	allocator, err := InitAllocation(config)
	if err != nil {
		return nil, err
	}

	// Phase 1: one senior shift per eligible day, at most one per staff member per week
	if err := allocator.allocateSeniorShifts(); err != nil {
		return nil, err
	}

	// Phase 2: remaining slots to the lowest fairness score
	if err := allocator.allocateResidualShifts(); err != nil {
		return nil, err
	}

	return allocator.buildOutcome(), nil
}

// InitAllocation validates the input and creates an allocator with a fresh run state
func InitAllocation(config AllocationConfig) (*Allocator, error) {
	if err := calendar.Validate(config.Days); err != nil {
		return nil, fmt.Errorf("invalid calendar: %w", err)
	}

	hasSlots := false
	for _, day := range config.Days {
		for _, slot := range day.Slots {
			if !slot.IsValid() {
				return nil, fmt.Errorf("%w: %d on %s", ErrInvalidShiftType, int(slot), day.DateString())
			}
			hasSlots = true
		}
	}

	if len(config.Staff) == 0 && hasSlots {
		return nil, ErrNoStaff
	}

	staffIDs := make([]string, len(config.Staff))
	seen := make(map[string]bool, len(config.Staff))
	for i, member := range config.Staff {
		if member.ID == "" {
			return nil, fmt.Errorf("staff member %d (%s) has no id", i, member.Name)
		}
		if seen[member.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStaff, member.ID)
		}
		seen[member.ID] = true
		staffIDs[i] = member.ID
	}

	for staffID := range config.BaseScores {
		if !seen[staffID] {
			return nil, fmt.Errorf("%w: base score given for %s", ErrUnknownStaff, staffID)
		}
	}

	tracker, err := scoring.NewTracker(staffIDs, config.BaseScores)
	if err != nil {
		return nil, fmt.Errorf("failed to create score tracker: %w", err)
	}

	picker := config.Picker
	if picker == nil {
		picker = NewFewestSeniorPicker()
	}

	constraints := withDefaultConstraints(config.Constraints)

	weeks := calendar.Partition(config.Days)

	return &Allocator{
		constraints: constraints,
		picker:      picker,
		state:       newRunState(config.Staff, config.Days, weeks, tracker),
	}, nil
}

// withDefaultConstraints appends extra to the default constraints, skipping names already covered
func withDefaultConstraints(extra []Constraint) []Constraint {
	constraints := DefaultConstraints()
	names := make(map[string]bool, len(constraints))
	for _, constraint := range constraints {
		names[constraint.Name()] = true
	}

	for _, constraint := range extra {
		if constraint == nil || names[constraint.Name()] {
			continue
		}
		names[constraint.Name()] = true
		constraints = append(constraints, constraint)
	}

	return constraints
}

// buildOutcome creates the final allocation outcome report
func (a *Allocator) buildOutcome() *AllocationOutcome {
	baseScores := make(map[string]float64, len(a.state.Staff))
	for _, member := range a.state.Staff {
		baseScores[member.ID] = a.state.Tracker.Base(member.ID)
	}

	outcome := &AllocationOutcome{
		State:        a.state,
		Table:        a.state.Table,
		Assignments:  a.state.Assignments,
		Understaffed: a.state.Understaffed,
		BaseScores:   baseScores,
		FinalScores:  a.state.Tracker.Snapshot(),
		Weeks:        a.state.Weeks,
	}

	outcome.ValidationErrors = ValidateRunState(a.state, a.constraints)
	outcome.Success = len(outcome.ValidationErrors) == 0

	return outcome
}

// ShiftCounts returns, per staff member, how many shifts of each type they were given
func (o *AllocationOutcome) ShiftCounts() map[string]map[model.ShiftType]int {
	counts := make(map[string]map[model.ShiftType]int)
	for _, assignment := range o.Assignments {
		if counts[assignment.StaffID] == nil {
			counts[assignment.StaffID] = make(map[model.ShiftType]int)
		}
		counts[assignment.StaffID][assignment.Slot.ShiftType]++
	}
	return counts
}

// SlotCount returns the number of slots the horizon asked for
func (o *AllocationOutcome) SlotCount() int {
	total := 0
	for _, week := range o.Weeks {
		for _, day := range week.Days {
			total += len(day.Slots)
		}
	}
	return total
}
