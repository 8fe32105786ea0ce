package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: instrument(app, "migrate", func(cmd *cobra.Command, args []string) error {
			database, err := app.database()
			if err != nil {
				return err
			}

			applied, err := database.RunMigrations(app.Ctx)
			if err != nil {
				return err
			}

			app.Logger.Info("Migrations applied", zap.Strings("files", applied))

			if len(applied) == 0 {
				fmt.Printf("\n✓ Database is up to date\n\n")
				return nil
			}

			fmt.Printf("\n✓ Applied %d migration(s):\n", len(applied))
			for _, file := range applied {
				fmt.Printf("  • %s\n", file)
			}
			fmt.Println()

			return nil
		}),
	}
}
