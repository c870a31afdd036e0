// Command feedbackctl provisions the feedback store and runs admin chores against it.
package main

import (
	"fmt"
	"os"

	"github.com/raushankrgupta/club-feedback/config"
	"github.com/raushankrgupta/club-feedback/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedbackctl",
		Short:         "Admin tool for the club feedback service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return nil
		},
	}

	root.AddCommand(newProvisionCmd(), newExportCmd(), newTokenCmd())
	return root
}

func main() {
	logger.InitLogger()
	defer logger.Close()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Close()
		os.Exit(1)
	}
}
