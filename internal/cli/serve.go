package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/jma-weather/internal/api/http"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [--addr <host:port>]",
		Short: "Serve the daily observation API over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = ":" + a.cfg.Port
			}

			server := httpapi.NewApp(a.service, cmd.ErrOrStderr())

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("http server listening", "addr", addr)
				errCh <- server.Listen(addr)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.ShutdownWithContext(shutdownCtx); err != nil {
				a.logger.Error("error during shutdown", "err", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to :$PORT).")

	return cmd
}
