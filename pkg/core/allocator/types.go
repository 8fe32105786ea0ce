package allocator

import (
	"sort"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/core/scoring"
)

// Table maps each filled slot to the staff member holding it
type Table map[model.SlotKey]string

// Get returns the staff member holding a slot
func (t Table) Get(date string, shiftType model.ShiftType) (string, bool) {
	staffID, ok := t[model.SlotKey{Date: date, ShiftType: shiftType}]
	return staffID, ok
}

// Keys returns every filled slot ordered by date then shift type
func (t Table) Keys() []model.SlotKey {
	keys := make([]model.SlotKey, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date < keys[j].Date
		}
		return keys[i].ShiftType < keys[j].ShiftType
	})
	return keys
}

// RunState represents the state of one allocation run
type RunState struct {
	// Staff eligible for overtime, in input order
	Staff []model.StaffMember

	// Days of the horizon and the weeks they partition into
	Days  []model.CalendarDay
	Weeks []model.Week

	// Tracker holds the run's fairness scores (owned by this run only)
	Tracker *scoring.Tracker

	// Table of filled slots
	Table Table

	// Assignments in the order they were decided
	Assignments []model.Assignment

	// Understaffed advisories for slots left unfilled
	Understaffed []model.Understaffed

	// assignedOnDate tracks which shift each staff member holds on each date
	assignedOnDate map[string]map[string]model.ShiftType

	// weekOfDate maps each date to the index of its week
	weekOfDate map[string]int

	// seniorByWeek counts senior shifts per staff member per week
	seniorByWeek map[int]map[string]int

	// seniorTotals counts senior shifts per staff member across the run
	seniorTotals map[string]int
}

func newRunState(staff []model.StaffMember, days []model.CalendarDay, weeks []model.Week, tracker *scoring.Tracker) *RunState {
	state := &RunState{
		Staff:          staff,
		Days:           days,
		Weeks:          weeks,
		Tracker:        tracker,
		Table:          make(Table),
		Assignments:    []model.Assignment{},
		Understaffed:   []model.Understaffed{},
		assignedOnDate: make(map[string]map[string]model.ShiftType),
		weekOfDate:     make(map[string]int),
		seniorByWeek:   make(map[int]map[string]int),
		seniorTotals:   make(map[string]int),
	}

	for _, week := range weeks {
		for _, day := range week.Days {
			state.weekOfDate[day.DateString()] = week.Index
		}
	}

	return state
}

// ShiftOn returns the shift a staff member holds on a date, if any
func (s *RunState) ShiftOn(date, staffID string) (model.ShiftType, bool) {
	shiftType, ok := s.assignedOnDate[date][staffID]
	return shiftType, ok
}

// IsAssignedOn returns true if the staff member already holds any shift on the date
func (s *RunState) IsAssignedOn(date, staffID string) bool {
	_, ok := s.assignedOnDate[date][staffID]
	return ok
}

// SeniorCountInWeek returns how many senior shifts a staff member holds in a week
func (s *RunState) SeniorCountInWeek(weekIndex int, staffID string) int {
	return s.seniorByWeek[weekIndex][staffID]
}

// SeniorTotal returns how many senior shifts a staff member holds across the run
func (s *RunState) SeniorTotal(staffID string) int {
	return s.seniorTotals[staffID]
}

// WeekOf returns the index of the week containing the date
func (s *RunState) WeekOf(date string) (int, bool) {
	index, ok := s.weekOfDate[date]
	return index, ok
}

// StaffIDs returns the ids of all staff in input order
func (s *RunState) StaffIDs() []string {
	ids := make([]string, len(s.Staff))
	for i, member := range s.Staff {
		ids[i] = member.ID
	}
	return ids
}

// assign fills a slot, records the assignment and credits the staff member's score
func (s *RunState) assign(day model.CalendarDay, shiftType model.ShiftType, staffID string) error {
	date := day.DateString()
	key := model.SlotKey{Date: date, ShiftType: shiftType}

	before := s.Tracker.Score(staffID)
	after, err := s.Tracker.Apply(staffID, shiftType)
	if err != nil {
		return err
	}

	s.Table[key] = staffID
	s.Assignments = append(s.Assignments, model.Assignment{
		Slot:        key,
		StaffID:     staffID,
		ScoreBefore: before,
		ScoreAfter:  after,
	})

	if s.assignedOnDate[date] == nil {
		s.assignedOnDate[date] = make(map[string]model.ShiftType)
	}
	s.assignedOnDate[date][staffID] = shiftType

	if shiftType == model.Senior {
		weekIndex := s.weekOfDate[date]
		if s.seniorByWeek[weekIndex] == nil {
			s.seniorByWeek[weekIndex] = make(map[string]int)
		}
		s.seniorByWeek[weekIndex][staffID]++
		s.seniorTotals[staffID]++
	}

	return nil
}

// markUnderstaffed records an advisory for a slot nobody could fill
func (s *RunState) markUnderstaffed(day model.CalendarDay, shiftType model.ShiftType) {
	s.Understaffed = append(s.Understaffed, model.Understaffed{
		Date:      day.DateString(),
		ShiftType: shiftType,
	})
}
