package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Walks country, state and city listings and stores every event found.",
	Long: "Walks country, state and city listings and stores every event found. " +
		"Finished cities are checkpointed, so an interrupted crawl resumes at the next unfinished city.",
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

		_, err = a.crawl(cmd.Context(), chrome)
		return err
	},
}
