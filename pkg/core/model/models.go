package model

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the layout used for every date that crosses a package boundary
const DateFormat = "2006-01-02"

// StaffMember represents a member of ward staff eligible for overtime
type StaffMember struct {
	ID   string
	Name string
	Role string // Informational only
}

// ShiftType is one of the overtime shift slots that can be filled on a day
type ShiftType int

const (
	Senior ShiftType = iota
	Secondary
	Tertiary
	Quaternary
	FillerE
	FillerF
)

// AllShiftTypes lists every shift type in priority order
var AllShiftTypes = []ShiftType{Senior, Secondary, Tertiary, Quaternary, FillerE, FillerF}

// SecondaryShiftTypes lists the shift types filled in the greedy phase, in the order they are filled
var SecondaryShiftTypes = []ShiftType{Secondary, Tertiary, Quaternary, FillerE, FillerF}

var shiftTypeNames = [...]string{"Senior", "Secondary", "Tertiary", "Quaternary", "FillerE", "FillerF"}

var shiftTypeWeights = [...]float64{1.2, 0.7, 0.6, 0.2, 0.0, 0.0}

// Weight returns the fixed fairness weight credited for working this shift type
func (s ShiftType) Weight() float64 {
	if !s.IsValid() {
		return 0
	}
	return shiftTypeWeights[s]
}

// Code returns the single letter used for the shift type on printed rotas (A-F)
func (s ShiftType) Code() string {
	if !s.IsValid() {
		return "?"
	}
	return string(rune('A' + int(s)))
}

func (s ShiftType) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("ShiftType(%d)", int(s))
	}
	return shiftTypeNames[s]
}

func (s ShiftType) IsValid() bool {
	return s >= Senior && s <= FillerF
}

// ParseShiftType accepts either the shift type name (case-insensitive) or its letter code
func ParseShiftType(value string) (ShiftType, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 1 {
		letter := strings.ToUpper(trimmed)[0]
		if letter >= 'A' && letter <= 'F' {
			return ShiftType(letter - 'A'), nil
		}
	}
	for i, name := range shiftTypeNames {
		if strings.EqualFold(name, trimmed) {
			return ShiftType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shift type %q", value)
}

// CalendarDay is a single day of the scheduling horizon
type CalendarDay struct {
	Date    time.Time
	Weekday time.Weekday

	// Slots are the shift types that need filling on this day
	Slots []ShiftType
}

// IsRestDay returns true for Sundays, on which no overtime is scheduled by default
func (d CalendarDay) IsRestDay() bool {
	return d.Weekday == time.Sunday
}

// IsReducedDay returns true for Saturdays, which carry the senior slot only by default
func (d CalendarDay) IsReducedDay() bool {
	return d.Weekday == time.Saturday
}

// HasSlot returns true if the given shift type needs filling on this day
func (d CalendarDay) HasSlot(shiftType ShiftType) bool {
	for _, slot := range d.Slots {
		if slot == shiftType {
			return true
		}
	}
	return false
}

// DateString returns the day formatted with DateFormat
func (d CalendarDay) DateString() string {
	return d.Date.Format(DateFormat)
}

// Week is a contiguous run of days starting on a Monday (the first week of a horizon may be short)
type Week struct {
	Index int
	Days  []CalendarDay
}

// SlotKey identifies a single slot of the allocation table
type SlotKey struct {
	Date      string
	ShiftType ShiftType
}

func (k SlotKey) String() string {
	return k.Date + "/" + k.ShiftType.Code()
}

// Assignment records one filled slot, in the order allocation decisions were made
type Assignment struct {
	Slot    SlotKey
	StaffID string

	// ScoreBefore and ScoreAfter are the staff member's fairness score around this assignment
	ScoreBefore float64
	ScoreAfter  float64
}

// Understaffed is an advisory for a slot that could not be filled
type Understaffed struct {
	Date      string
	ShiftType ShiftType
}

func (u Understaffed) String() string {
	return fmt.Sprintf("%s %s unfilled", u.Date, u.ShiftType)
}

// ShiftCode is the single letter code recorded on the monthly schedule for one staff member and day
type ShiftCode string

// DefaultRestCodes are the codes that count as a day off: off, rest and vacation
var DefaultRestCodes = []ShiftCode{"O", "R", "V"}

// Violation is a single day that belongs to an over-long work stretch
type Violation struct {
	StaffID  string
	DayIndex int
}

// Stretch is a contiguous window of violating days for one staff member (End is inclusive)
type Stretch struct {
	StaffID string
	Start   int
	End     int
}

// Length returns the number of days in the stretch
func (s Stretch) Length() int {
	return s.End - s.Start + 1
}
