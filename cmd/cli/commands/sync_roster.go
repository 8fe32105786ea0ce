package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-overtime/pkg/core/services"
)

// SyncRosterCmd creates the syncRoster command
func SyncRosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "syncRoster <year> <month>",
		Short: "Copy the staff list and a month's schedule from the spreadsheet into the database",
		Args:  cobra.ExactArgs(2),
		RunE: instrument(app, "syncRoster", func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args)
			if err != nil {
				return err
			}

			sheets, err := app.rosterSource(services.SourceSheets)
			if err != nil {
				return err
			}

			database, err := app.database()
			if err != nil {
				return err
			}

			result, err := services.SyncRoster(app.Ctx, sheets, database, app.Logger, year, month)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Roster synced for %s to %s\n\n", result.From, result.To)
			fmt.Printf("Staff:    %d (%d active)\n", result.StaffCount, result.ActiveCount)
			fmt.Printf("Entries:  %d\n\n", result.EntryCount)

			if len(result.UnknownStaffID) > 0 {
				fmt.Printf("⚠️  Schedule rows with no matching staff tab entry (%d):\n", len(result.UnknownStaffID))
				for _, staffID := range result.UnknownStaffID {
					fmt.Printf("  • %s\n", staffID)
				}
				fmt.Println()
			}

			return nil
		}),
	}
}
