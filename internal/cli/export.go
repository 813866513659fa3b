package cli

import (
	"github.com/spf13/cobra"

	"github.com/i474232898/jma-weather/internal/scheduler"
)

func newExportCmd(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "export [--once]",
		Short: "Periodically write recent observations of EXPORT_STATIONS to EXPORT_DIR.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sched := scheduler.New(scheduler.Options{
				Stations:     a.cfg.ExportStations,
				Interval:     a.cfg.ExportInterval,
				Dir:          a.cfg.ExportDir,
				LookbackDays: a.cfg.ExportLookbackDays,
			}, a.service, a.logger)

			if once {
				return sched.RunOnce(cmd.Context())
			}

			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single export pass and exit.")

	return cmd
}
