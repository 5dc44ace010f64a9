package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/remindhq/reminder-api/internal/config"
	"github.com/remindhq/reminder-api/internal/database"
	"github.com/remindhq/reminder-api/internal/logger"
	"github.com/remindhq/reminder-api/internal/queue"
	"github.com/remindhq/reminder-api/internal/scheduler"
	"github.com/spf13/cobra"
)

// NewRequeueCmd creates the requeue command. It finds reminders still in
// scheduled state well past their notification date, which means their
// delivery job was lost (broker wipe, dropped message), and enqueues a
// fresh job for each.
func NewRequeueCmd() *cobra.Command {
	var grace time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "requeue",
		Short: "Re-enqueue overdue scheduled reminders",
		Long:  "Find reminders past their notification date that never left the scheduled state and enqueue a delivery job for each",
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

			fmt.Printf("Found %d overdue scheduled reminder(s)\n", len(overdue))
			if dryRun {
				for _, reminder := range overdue {
					fmt.Printf("  - %s (due %s)\n", reminder.ID, reminder.NotificationDate.Format(time.RFC3339))
				}
				return nil
			}

			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ connection: %v\n", err)
				}
			}()

			zapLogger, err := logger.NewProductionLogger(false)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			reminderScheduler := scheduler.New(jobQueue, zapLogger)

			requeued := 0
			for _, reminder := range overdue {
				if err := reminderScheduler.Schedule(ctx, reminder); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to requeue %s: %v\n", reminder.ID, err)
					continue
				}
				requeued++
			}

			fmt.Printf("Requeued %d of %d reminder(s)\n", requeued, len(overdue))
			return nil
		},
	}

	cmd.Flags().DurationVar(&grace, "grace", 5*time.Minute, "How far past the notification date a reminder must be to count as overdue")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List overdue reminders without enqueueing jobs")

	return cmd
}
