package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/core/services"
)

// AllocateCmd creates the allocate command
func AllocateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocate <year> <month>",
		Short: "Allocate a month of overtime",
		Long:  "Fill each day's senior slot, at most one per person per week, then give the remaining slots to the lowest fairness score",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = instrument(app, "allocate", func(cmd *cobra.Command, args []string) error {
		year, month, err := parseYearMonth(args)
		if err != nil {
			return err
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		forceCommit, _ := cmd.Flags().GetBool("force-commit")
		publish, _ := cmd.Flags().GetBool("publish")
		sourceName, _ := cmd.Flags().GetString("source")

		app.Logger.Debug("allocate command",
			zap.Bool("dry_run", dryRun),
			zap.Bool("force_commit", forceCommit),
			zap.Bool("publish", publish),
			zap.String("source", sourceName))

		source, err := app.rosterSource(sourceName)
		if err != nil {
			return err
		}

		opts := services.AllocateOptions{DryRun: dryRun, ForceCommit: forceCommit}
		if publish {
			if app.SheetsClient == nil {
				return fmt.Errorf("--publish needs sheets to be configured")
			}
			opts.Publisher = app.SheetsClient
		}

		database, err := app.database()
		if err != nil {
			return err
		}

		result, err := services.AllocateOvertime(app.Ctx, database, source, app.Cfg, app.Logger, year, month, opts)
		if result != nil {
			app.Metrics.RecordRun(result.RunStats())
		}
		if err != nil {
			return fmt.Errorf("allocation failed: %w", err)
		}

		printAllocation(result, dryRun, forceCommit)
		return nil
	})

	cmd.Flags().Bool("dry-run", false, "Compute the allocation without saving it")
	cmd.Flags().Bool("force-commit", false, "Save the allocation even if it broke a constraint")
	cmd.Flags().Bool("publish", false, "Publish the saved allocation to the ward spreadsheet")
	cmd.Flags().String("source", services.SourceDatabase, "Where to read staff and schedule from (db or sheets)")

	return cmd
}

func printAllocation(result *services.AllocateOvertimeResult, dryRun, forceCommit bool) {
	outcome := result.Outcome

	fmt.Printf("\n🎯 Overtime Allocation - %s %d\n\n", result.Month, result.Year)
	if result.RunID != "" {
		fmt.Printf("Run ID:   %s\n", result.RunID)
	}
	fmt.Printf("Picker:   %s", result.Picker)
	if result.Seed != 0 {
		fmt.Printf(" (seed %d)", result.Seed)
	}
	fmt.Println()
	fmt.Printf("Staff:    %d\n", len(result.Staff))
	fmt.Printf("Slots:    %d filled / %d\n", len(outcome.Assignments), outcome.SlotCount())

	switch {
	case dryRun:
		fmt.Printf("Mode:     🧪 DRY RUN (not saved)\n")
	case result.Saved && outcome.Success:
		fmt.Printf("Status:   ✅ SUCCESS (saved to database)\n")
	case result.Saved && forceCommit:
		fmt.Printf("Status:   ⚠️  FORCED (saved despite validation errors)\n")
	default:
		fmt.Printf("Status:   ❌ FAILED (not saved)\n")
	}
	if result.Published {
		fmt.Printf("Sheet:    📤 published\n")
	}
	fmt.Println()

	if len(outcome.ValidationErrors) > 0 {
		fmt.Printf("⚠️  Validation Errors (%d):\n", len(outcome.ValidationErrors))
		for _, verr := range outcome.ValidationErrors {
			fmt.Printf("  • %s %s (%s) - %s: %s\n",
				verr.Date, verr.ShiftType, verr.StaffID, verr.ConstraintName, verr.Description)
		}
		fmt.Println()
	}

	names := make(map[string]string, len(result.Staff))
	for _, member := range result.Staff {
		names[member.ID] = member.Name
	}
	holder := func(staffID string) string {
		if name := names[staffID]; name != "" {
			return name
		}
		return staffID
	}

	// Rota table
	const colWidth = 14
	fmt.Printf("%-12s", "Date")
	for _, shiftType := range model.AllShiftTypes {
		fmt.Printf("  %-*s", colWidth, fmt.Sprintf("%s (%s)", shiftType, shiftType.Code()))
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", 12+len(model.AllShiftTypes)*(colWidth+2)))

	for _, day := range result.Days {
		if len(day.Slots) == 0 {
			continue
		}
		fmt.Printf("%-12s", day.Date.Format("Mon 02 Jan"))
		for _, shiftType := range model.AllShiftTypes {
			cell := ""
			if day.HasSlot(shiftType) {
				cell = "UNFILLED"
				if staffID, ok := outcome.Table.Get(day.DateString(), shiftType); ok {
					cell = holder(staffID)
				}
			}
			fmt.Printf("  %-*s", colWidth, truncate(cell, colWidth))
		}
		fmt.Println()
	}
	fmt.Println()

	if len(outcome.Understaffed) > 0 {
		fmt.Printf("ℹ️  Understaffed Slots (%d):\n", len(outcome.Understaffed))
		for _, advisory := range outcome.Understaffed {
			fmt.Printf("  • %s\n", advisory)
		}
		fmt.Println()
	}

	// Fairness summary, lowest final score first
	counts := outcome.ShiftCounts()
	staffIDs := make([]string, 0, len(outcome.FinalScores))
	for staffID := range outcome.FinalScores {
		staffIDs = append(staffIDs, staffID)
	}
	sort.Slice(staffIDs, func(i, j int) bool {
		a, b := outcome.FinalScores[staffIDs[i]], outcome.FinalScores[staffIDs[j]]
		if a != b {
			return a < b
		}
		return staffIDs[i] < staffIDs[j]
	})

	fmt.Printf("⚖️  Fairness Scores:\n")
	fmt.Printf("  %-20s  %7s  %7s  %s\n", "Staff", "Base", "Final", "A B C D E F")
	for _, staffID := range staffIDs {
		shifts := make([]string, len(model.AllShiftTypes))
		for i, shiftType := range model.AllShiftTypes {
			shifts[i] = fmt.Sprintf("%d", counts[staffID][shiftType])
		}
		fmt.Printf("  %-20s  %7.2f  %7.2f  %s\n",
			truncate(holder(staffID), 20),
			outcome.BaseScores[staffID],
			outcome.FinalScores[staffID],
			strings.Join(shifts, " "))
	}
	fmt.Println()

	if dryRun {
		fmt.Println("💡 This was a dry run. Use without --dry-run to save the allocation.")
	} else if !result.Saved {
		fmt.Println("💡 Use --force-commit to save despite validation errors.")
	}
	fmt.Println()
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
