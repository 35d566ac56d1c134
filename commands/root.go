package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:          "ticket-crawler",
	Short:        "ticket-crawler collects resale event listings and ticket offers into a local database.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default: ./.env)")
}

// ExecuteContext runs the command line with ctx as the parent of every
// command's context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
