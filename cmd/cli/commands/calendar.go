package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/ward-overtime/pkg/core/calendar"
	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// CalendarCmd creates the calendar command
func CalendarCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar <year> <month>",
		Short: "Show a month's weeks and the overtime slots each day needs",
		Args:  cobra.ExactArgs(2),
		RunE: instrument(app, "calendar", func(cmd *cobra.Command, args []string) error {
			year, month, err := parseYearMonth(args)
			if err != nil {
				return err
			}

			profiles, err := app.Cfg.Profiles()
			if err != nil {
				return err
			}

			days, err := calendar.BuildMonth(year, month, profiles, app.Cfg.Overrides())
			if err != nil {
				return err
			}

			weeks := calendar.Partition(days)
			total := 0

			fmt.Printf("\n📅 %s %d\n\n", month, year)
			for _, week := range weeks {
				fmt.Printf("Week %d\n", week.Index+1)
				for _, day := range week.Days {
					total += len(day.Slots)
					fmt.Printf("  %s  %s\n", day.Date.Format("Mon 02 Jan"), formatSlots(day.Slots))
				}
			}
			fmt.Printf("\n%d weeks, %d slots\n\n", len(weeks), total)

			return nil
		}),
	}
}

// formatSlots prints slots by letter, e.g. "A B C"
func formatSlots(slots []model.ShiftType) string {
	if len(slots) == 0 {
		return "—"
	}
	codes := make([]string, len(slots))
	for i, slot := range slots {
		codes[i] = slot.Code()
	}
	return strings.Join(codes, " ")
}
