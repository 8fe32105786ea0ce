package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-overtime/pkg/core/services"
)

// ListRunsCmd creates the listRuns command
func ListRunsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listRuns",
		Short: "List saved overtime runs, newest first",
		Args:  cobra.NoArgs,
		RunE: instrument(app, "listRuns", func(cmd *cobra.Command, args []string) error {
			database, err := app.database()
			if err != nil {
				return err
			}

			runs, err := services.ListRuns(app.Ctx, database, app.Logger)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Printf("\nNo saved runs\n\n")
				return nil
			}

			fmt.Printf("\n%-36s  %-7s  %-20s  %-7s  %-9s  %s\n", "Run ID", "Month", "Created", "Picker", "Filled", "Errors")
			for _, run := range runs {
				fmt.Printf("%-36s  %04d-%02d  %-20s  %-7s  %4d/%-4d  %d\n",
					run.ID, run.Year, run.Month, run.CreatedAt, run.Picker,
					run.FilledCount, run.SlotCount, run.ValidationErrors)
			}
			fmt.Println()

			return nil
		}),
	}
}

// ShowRunCmd creates the showRun command
func ShowRunCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "showRun <run_id>",
		Short: "Show a saved overtime run",
		Args:  cobra.ExactArgs(1),
		RunE: instrument(app, "showRun", func(cmd *cobra.Command, args []string) error {
			database, err := app.database()
			if err != nil {
				return err
			}

			detail, err := services.ShowRun(app.Ctx, database, app.Logger, args[0])
			if err != nil {
				return err
			}

			run := detail.Run
			fmt.Printf("\nRun ID:   %s\n", run.ID)
			fmt.Printf("Month:    %04d-%02d\n", run.Year, run.Month)
			fmt.Printf("Created:  %s\n", run.CreatedAt)
			fmt.Printf("Picker:   %s", run.Picker)
			if run.Seed != 0 {
				fmt.Printf(" (seed %d)", run.Seed)
			}
			fmt.Println()
			fmt.Printf("Slots:    %d filled / %d\n", run.FilledCount, run.SlotCount)
			if run.ValidationErrors > 0 {
				fmt.Printf("Status:   ⚠️  saved with %d validation errors\n", run.ValidationErrors)
			}
			fmt.Println()

			fmt.Printf("📅 Allocations (decision order):\n")
			for _, a := range detail.Allocations {
				fmt.Printf("  %3d. %s  %-10s  %-12s  %6.2f → %6.2f\n",
					a.Sequence, a.ShiftDate, a.ShiftType, a.StaffID, a.ScoreBefore, a.ScoreAfter)
			}
			fmt.Println()

			if len(detail.Advisories) > 0 {
				fmt.Printf("ℹ️  Understaffed Slots (%d):\n", len(detail.Advisories))
				for _, advisory := range detail.Advisories {
					fmt.Printf("  • %s %s\n", advisory.ShiftDate, advisory.ShiftType)
				}
				fmt.Println()
			}

			fmt.Printf("⚖️  Fairness Scores:\n")
			for _, score := range detail.Scores {
				fmt.Printf("  %-12s  %7.2f → %7.2f\n", score.StaffID, score.BaseScore, score.FinalScore)
			}
			fmt.Println()

			return nil
		}),
	}
}
