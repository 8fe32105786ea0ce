package db

// Staff represents a ward staff member eligible for overtime
type Staff struct {
	ID     string
	Name   string
	Role   string
	Active bool
}

// ScheduleEntry is one cell of the monthly schedule: the code a staff member works on a date
type ScheduleEntry struct {
	StaffID   string
	ShiftDate string
	Code      string
}

// OvertimeRun represents one saved allocation run for a month
type OvertimeRun struct {
	ID               string
	Year             int
	Month            int
	CreatedAt        string
	Picker           string
	Seed             int64
	SlotCount        int
	FilledCount      int
	ValidationErrors int
}

// OvertimeAllocation represents one filled overtime slot of a run
type OvertimeAllocation struct {
	ID          string
	RunID       string
	Sequence    int
	ShiftDate   string
	ShiftType   string
	StaffID     string
	ScoreBefore float64
	ScoreAfter  float64
}

// ScoreRecord holds a staff member's fairness scores at the start and end of a run
type ScoreRecord struct {
	RunID      string
	StaffID    string
	BaseScore  float64
	FinalScore float64
}

// Advisory records a slot a run left unfilled
type Advisory struct {
	RunID     string
	ShiftDate string
	ShiftType string
}

// RunDetail is a saved run together with everything recorded for it
type RunDetail struct {
	Run         OvertimeRun
	Allocations []OvertimeAllocation
	Scores      []ScoreRecord
	Advisories  []Advisory
}
