package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/clients/sheetsclient"
	"github.com/jakechorley/ward-overtime/pkg/core/allocator"
	"github.com/jakechorley/ward-overtime/pkg/core/calendar"
	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/db"
	"github.com/jakechorley/ward-overtime/pkg/metrics"
)

// OvertimeStore defines the database operations needed to save a run
type OvertimeStore interface {
	InsertRun(ctx context.Context, detail db.RunDetail) error
}

// OvertimePublisher writes a saved run to the ward spreadsheet
type OvertimePublisher interface {
	PublishOvertime(ctx context.Context, spreadsheetID string, rota *sheetsclient.OvertimeRota) error
}

// AllocateOptions controls what happens to the allocation once it has been computed
type AllocateOptions struct {
	// DryRun computes the allocation without saving or publishing it
	DryRun bool

	// ForceCommit saves the run even if it broke a constraint
	ForceCommit bool

	// Publisher, when set, publishes a saved run to the spreadsheet
	Publisher OvertimePublisher
}

// AllocateOvertimeResult contains the allocation results
type AllocateOvertimeResult struct {
	RunID  string
	Year   int
	Month  time.Month
	Picker string
	Seed   int64

	Days    []model.CalendarDay
	Staff   []model.StaffMember
	Outcome *allocator.AllocationOutcome

	Saved     bool
	Published bool
	Duration  time.Duration
}

// AllocateOvertime allocates a month of overtime.
// The run is saved unless it is a dry run or it broke a constraint without ForceCommit.
func AllocateOvertime(
	ctx context.Context,
	store OvertimeStore,
	source RosterSource,
	cfg *config.Config,
	logger *zap.Logger,
	year int,
	month time.Month,
	opts AllocateOptions,
) (*AllocateOvertimeResult, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	logger.Debug("Starting allocateOvertime",
		zap.Int("year", year),
		zap.String("month", month.String()),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("force_commit", opts.ForceCommit))

	// Step 1: Build the month's calendar
	profiles, err := cfg.Profiles()
	if err != nil {
		return nil, err
	}
	days, err := calendar.BuildMonth(year, month, profiles, cfg.Overrides())
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar: %w", err)
	}
	logger.Debug("Built calendar", zap.Int("days", len(days)))

	// Step 2: Fetch staff
	logger.Debug("Fetching staff")
	allStaff, err := source.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	staff := activeStaff(allStaff)
	logger.Debug("Found staff", zap.Int("count", len(allStaff)), zap.Int("active", len(staff)))

	// Step 3: Fetch the month's schedule and derive base scores from it
	from, to := monthBounds(year, month)
	logger.Debug("Fetching schedule", zap.String("from", from), zap.String("to", to))
	entries, err := source.GetScheduleEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	logger.Debug("Found schedule entries", zap.Int("count", len(entries)))

	staffIDs := make([]string, len(staff))
	for i, member := range staff {
		staffIDs[i] = member.ID
	}
	dates := make([]string, len(days))
	for i, day := range days {
		dates[i] = day.DateString()
	}
	baseScores := DeriveBaseScores(entries, staffIDs, dates, cfg.BaseScore)
	logger.Debug("Derived base scores", zap.Int("staff_with_regular_shifts", len(baseScores)))

	// Step 4: Run the allocator
	picker, seed := newSeniorPicker(cfg)
	logger.Debug("Using senior picker", zap.String("picker", picker.Name()), zap.Int64("seed", seed))

	started := time.Now()
	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Staff:      staff,
		Days:       days,
		BaseScores: baseScores,
		Picker:     picker,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to allocate overtime: %w", err)
	}

	result := &AllocateOvertimeResult{
		Year:     year,
		Month:    month,
		Picker:   picker.Name(),
		Seed:     seed,
		Days:     days,
		Staff:    staff,
		Outcome:  outcome,
		Duration: time.Since(started),
	}

	logger.Info("Allocation complete",
		zap.Int("slots", outcome.SlotCount()),
		zap.Int("filled", len(outcome.Assignments)),
		zap.Int("understaffed", len(outcome.Understaffed)),
		zap.Int("validation_errors", len(outcome.ValidationErrors)),
		zap.Duration("duration", result.Duration))

	for _, advisory := range outcome.Understaffed {
		logger.Warn("Slot left unfilled",
			zap.String("date", advisory.Date),
			zap.String("shift_type", advisory.ShiftType.String()))
	}

	if opts.DryRun {
		logger.Info("Dry run - not saving allocations")
		return result, nil
	}

	if !outcome.Success && !opts.ForceCommit {
		logger.Warn("Allocation broke constraints - not saving", zap.Int("validation_errors", len(outcome.ValidationErrors)))
		return result, nil
	}

	// Step 5: Save the run
	detail := buildRunDetail(uuid.New().String(), year, month, picker.Name(), seed, outcome)
	logger.Debug("Saving run",
		zap.String("run_id", detail.Run.ID),
		zap.Int("allocations", len(detail.Allocations)),
		zap.Int("advisories", len(detail.Advisories)))

	if err := store.InsertRun(ctx, detail); err != nil {
		return nil, fmt.Errorf("failed to save run: %w", err)
	}
	result.RunID = detail.Run.ID
	result.Saved = true
	logger.Info("Run saved", zap.String("run_id", result.RunID))

	// Step 6: Publish
	if opts.Publisher == nil {
		return result, nil
	}
	if cfg.Sheets == nil {
		return result, fmt.Errorf("run %s saved but cannot be published: sheets are not configured", result.RunID)
	}

	rota := buildOvertimeRota(result, allStaff)
	if err := opts.Publisher.PublishOvertime(ctx, cfg.Sheets.SpreadsheetID, rota); err != nil {
		return result, fmt.Errorf("run %s saved but publishing failed: %w", result.RunID, err)
	}
	result.Published = true
	logger.Info("Run published", zap.String("run_id", result.RunID))

	return result, nil
}

// RunStats summarises the result for the metrics textfile
func (r *AllocateOvertimeResult) RunStats() metrics.RunStats {
	stats := metrics.RunStats{
		Duration:   r.Duration,
		FinishedAt: time.Now(),
		Staff:      len(r.Staff),
		Filled:     map[string]int{},
		Unfilled:   map[string]int{},
	}

	switch {
	case r.Saved:
		stats.Outcome = metrics.OutcomeSaved
	case len(r.Outcome.ValidationErrors) > 0:
		stats.Outcome = metrics.OutcomeRejected
	default:
		stats.Outcome = metrics.OutcomeDryRun
	}

	for _, assignment := range r.Outcome.Assignments {
		stats.Filled[assignment.Slot.ShiftType.String()]++
	}
	for _, advisory := range r.Outcome.Understaffed {
		stats.Unfilled[advisory.ShiftType.String()]++
	}

	stats.ScoreSpread = scoreSpread(r.Outcome.FinalScores)
	stats.ValidationErrors = len(r.Outcome.ValidationErrors)

	return stats
}

// newSeniorPicker creates the configured picker. A random picker without a
// configured seed is seeded from the clock; the seed is returned so the run can be replayed.
func newSeniorPicker(cfg *config.Config) (allocator.SeniorPicker, int64) {
	if cfg.SeniorPicker != config.PickerRandom {
		return allocator.NewFewestSeniorPicker(), 0
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return allocator.NewRandomPicker(seed), seed
}

// buildRunDetail converts an outcome into the records saved for a run
func buildRunDetail(runID string, year int, month time.Month, picker string, seed int64, outcome *allocator.AllocationOutcome) db.RunDetail {
	detail := db.RunDetail{
		Run: db.OvertimeRun{
			ID:               runID,
			Year:             year,
			Month:            int(month),
			Picker:           picker,
			Seed:             seed,
			SlotCount:        outcome.SlotCount(),
			FilledCount:      len(outcome.Assignments),
			ValidationErrors: len(outcome.ValidationErrors),
		},
		Allocations: make([]db.OvertimeAllocation, len(outcome.Assignments)),
		Scores:      make([]db.ScoreRecord, 0, len(outcome.State.Staff)),
		Advisories:  make([]db.Advisory, len(outcome.Understaffed)),
	}

	for i, assignment := range outcome.Assignments {
		detail.Allocations[i] = db.OvertimeAllocation{
			ID:          uuid.New().String(),
			RunID:       runID,
			Sequence:    i + 1,
			ShiftDate:   assignment.Slot.Date,
			ShiftType:   assignment.Slot.ShiftType.String(),
			StaffID:     assignment.StaffID,
			ScoreBefore: assignment.ScoreBefore,
			ScoreAfter:  assignment.ScoreAfter,
		}
	}

	for _, member := range outcome.State.Staff {
		detail.Scores = append(detail.Scores, db.ScoreRecord{
			RunID:      runID,
			StaffID:    member.ID,
			BaseScore:  outcome.BaseScores[member.ID],
			FinalScore: outcome.FinalScores[member.ID],
		})
	}

	for i, advisory := range outcome.Understaffed {
		detail.Advisories[i] = db.Advisory{
			RunID:     runID,
			ShiftDate: advisory.Date,
			ShiftType: advisory.ShiftType.String(),
		}
	}

	return detail
}

// buildOvertimeRota lays the result out by day for publishing, naming staff where a name is known
func buildOvertimeRota(result *AllocateOvertimeResult, staff []db.Staff) *sheetsclient.OvertimeRota {
	names := make(map[string]string, len(staff))
	for _, s := range staff {
		if s.Name != "" {
			names[s.ID] = s.Name
		}
	}

	rota := &sheetsclient.OvertimeRota{
		Year:  result.Year,
		Month: result.Month,
		RunID: result.RunID,
	}

	for _, day := range result.Days {
		if len(day.Slots) == 0 {
			continue
		}

		holders := make(map[model.ShiftType]string, len(day.Slots))
		for _, shiftType := range day.Slots {
			staffID, ok := result.Outcome.Table.Get(day.DateString(), shiftType)
			if !ok {
				holders[shiftType] = ""
				continue
			}
			if name, ok := names[staffID]; ok {
				holders[shiftType] = name
			} else {
				holders[shiftType] = staffID
			}
		}

		rota.Days = append(rota.Days, sheetsclient.OvertimeDay{Date: day.DateString(), Holders: holders})
	}

	return rota
}

// scoreSpread returns the gap between the highest and lowest score
func scoreSpread(scores map[string]float64) float64 {
	first := true
	var lowest, highest float64
	for _, score := range scores {
		if first {
			lowest, highest = score, score
			first = false
			continue
		}
		lowest = min(lowest, score)
		highest = max(highest, score)
	}
	return highest - lowest
}
