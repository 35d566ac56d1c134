package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawls events, rebuilds tickets, exports the spreadsheet and prints the report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.pipeline(cmd.Context(), cmd.OutOrStdout())
	},
}

// pipeline runs crawl, tickets, export and report on one browser session.
func (a *app) pipeline(ctx context.Context, w io.Writer) error {
	chrome, err := a.openBrowser()
	if err != nil {
		return err
	}
	defer chrome.Close()

	crawl, err := a.crawl(ctx, chrome)
	if err != nil {
		return err
	}
	tickets, err := a.scrapeTickets(ctx, chrome)
	if err != nil {
		return err
	}
	a.logger.Info("=== Crawl: %d new events | Tickets: %d stored across %d events ===",
		crawl.EventsInserted, tickets.TicketsInserted, tickets.EventsWithOffers)

	if err := a.export(ctx, "", ""); err != nil {
		return err
	}
	return a.report(ctx, w)
}
