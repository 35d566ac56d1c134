package commands

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"ticket-crawler/utils"
)

var scheduleSpec string

func init() {
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "@daily", "cron spec for when to start a run")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Repeats the full run on a cron schedule until interrupted.",
	Long: "Repeats the full run on a cron schedule until interrupted. " +
		"A tick that fires while the previous run is still going is skipped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		log := cronLogger{logger: a.logger}
		c := cron.New(cron.WithLogger(log), cron.WithChain(cron.SkipIfStillRunning(log)))
		_, err = c.AddFunc(scheduleSpec, func() {
			if err := a.pipeline(ctx, cmd.OutOrStdout()); err != nil {
				a.logger.Error("[schedule] Run failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule: bad cron spec %q: %w", scheduleSpec, err)
		}

		a.logger.Info("[schedule] Waiting for %q", scheduleSpec)
		c.Start()
		<-ctx.Done()
		<-c.Stop().Done()
		return nil
	},
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	logger *utils.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("[schedule] cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("[schedule] cron: %s: %v %v", msg, err, keysAndValues)
}
