package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/remindhq/reminder-api/internal/config"
	"github.com/remindhq/reminder-api/internal/services/mail"
	"github.com/spf13/cobra"
)

// NewSMTPTestCmd creates the smtp-test command
func NewSMTPTestCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "smtp-test",
		Short: "Send a test email",
		Long:  "Send a test email through the configured SMTP transport to verify delivery settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return fmt.Errorf("--to is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			notifier, err := mail.NewSMTPNotifier(mail.SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				User:     cfg.SMTPUser,
				Password: cfg.SMTPPassword,
				From:     cfg.MailFrom,
			})
			if err != nil {
				return fmt.Errorf("failed to create SMTP notifier: %w", err)
			}

			fmt.Printf("Sending test email to %s via %s:%d\n", to, cfg.SMTPHost, cfg.SMTPPort)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			subject := mail.ReminderSubject("SMTP delivery test")
			body := mail.ReminderBody("SMTP delivery test", time.Now())
			if err := notifier.Send(ctx, to, subject, body); err != nil {
				return fmt.Errorf("failed to send test email: %w", err)
			}

			fmt.Println("Test email sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Recipient address (required)")

	return cmd
}
