package commands

import (
	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportFormat string
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: EXPORT_PATH)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "xlsx or csv (default: from the file extension)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports stored events and tickets to a styled spreadsheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.export(cmd.Context(), exportOut, exportFormat)
	},
}
