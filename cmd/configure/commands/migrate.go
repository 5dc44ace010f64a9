package commands

import (
	"fmt"
	"os"

	"github.com/remindhq/reminder-api/internal/config"
	"github.com/remindhq/reminder-api/internal/database"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply all pending database migrations from the migrations directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if source == "" {
				source = cfg.MigrationsURL
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			if err := database.RunMigrations(db, source); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Migrations source URL (defaults to MIGRATIONS_URL)")

	return cmd
}
