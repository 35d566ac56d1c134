package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ticketsCmd)
}

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Rebuilds the tickets table by probing every stored event at increasing quantities.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		chrome, err := a.openBrowser()
		if err != nil {
			return err
		}
		defer chrome.Close()

		_, err = a.scrapeTickets(cmd.Context(), chrome)
		return err
	},
}
