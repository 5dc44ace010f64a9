package main

import (
	"fmt"
	"os"

	"github.com/remindhq/reminder-api/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "reminder-configure",
		Short: "Operations tool for the reminder API",
		Long:  "CLI tool for running migrations, testing SMTP delivery and repairing the delivery queue",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewRequeueCmd())
	rootCmd.AddCommand(commands.NewSMTPTestCmd())
	rootCmd.AddCommand(commands.NewListCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
