package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/remindhq/reminder-api/internal/config"
	"github.com/remindhq/reminder-api/internal/database"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List overdue scheduled reminders",
		Long:  "List reminders past their notification date that never left the scheduled state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
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

			reminderRepo := database.NewReminderRepository(db)
			ctx := context.Background()

			overdue, err := reminderRepo.FindOverdueScheduled(ctx, grace)
			if err != nil {
				return fmt.Errorf("failed to find overdue reminders: %w", err)
			}

			if len(overdue) == 0 {
				fmt.Println("No overdue scheduled reminders")
				return nil
			}

			fmt.Printf("Overdue scheduled reminders (grace %s):\n", grace)
			for _, reminder := range overdue {
				fmt.Printf("  - ID: %s\n", reminder.ID)
				fmt.Printf("    User: %s\n", reminder.UserID)
				fmt.Printf("    Due: %s\n", reminder.NotificationDate.Format(time.RFC3339))
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&grace, "grace", 5*time.Minute, "How far past the notification date a reminder must be to count as overdue")

	return cmd
}
