package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-overtime/pkg/core/services"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <year> <month>",
		Short: "Flag over-long work stretches in a month's schedule",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = instrument(app, "validate", func(cmd *cobra.Command, args []string) error {
		year, month, err := parseYearMonth(args)
		if err != nil {
			return err
		}

		sourceName, _ := cmd.Flags().GetString("source")
		source, err := app.rosterSource(sourceName)
		if err != nil {
			return err
		}

		result, err := services.ValidateSchedule(app.Ctx, source, app.Cfg, app.Logger, year, month)
		if err != nil {
			return err
		}
		app.Metrics.RecordStretchValidation(len(result.Violations), len(result.Flagged))

		fmt.Printf("\n🩺 Work Stretch Check - %s %d\n\n", month, year)
		fmt.Printf("Staff checked: %d\n", result.StaffChecked)
		fmt.Printf("Limit:         %d consecutive working days\n\n", app.Cfg.StretchOptions().Limit)

		if len(result.Flagged) == 0 {
			fmt.Printf("✅ No over-long work stretches\n\n")
			return nil
		}

		fmt.Printf("⚠️  %d staff flagged (%d days):\n", len(result.Flagged), len(result.Violations))
		for _, staff := range result.Flagged {
			label := staff.StaffID
			if staff.Name != "" {
				label = fmt.Sprintf("%s (%s)", staff.Name, staff.StaffID)
			}
			fmt.Printf("  • %s\n", label)
			for _, stretch := range staff.Stretches {
				fmt.Printf("      %s → %s  %d days\n",
					result.Dates[stretch.Start], result.Dates[stretch.End], stretch.Length())
			}
		}
		fmt.Println()

		return nil
	})

	cmd.Flags().String("source", services.SourceDatabase, "Where to read staff and schedule from (db or sheets)")

	return cmd
}
