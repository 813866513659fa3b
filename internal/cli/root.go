package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/i474232898/jma-weather/internal/config"
	"github.com/i474232898/jma-weather/internal/export"
	"github.com/i474232898/jma-weather/internal/logging"
	"github.com/i474232898/jma-weather/internal/weather"
	"github.com/i474232898/jma-weather/internal/weather/providers"
)

const longHelp = `Fetches past daily weather observations from the Japan Meteorological Agency
and writes them to standard output as CSV with the following header:
 - year:     observation year
 - month:    observation month
 - day:      observation day
 - avg_temp: daily average temperature
 - max_temp: daily maximum temperature
 - low_temp: daily minimum temperature
 - avg_hum:  daily average humidity
 - low_hum:  daily minimum humidity

station_code is the JMA prefecture number (prec_no) and station_id the
five-digit WMO station index (block_no), see
https://oscar.wmo.int/oscar/vola/vola_legacy_report.txt (IndexNbr column).`

// app carries what every command needs once configuration has been read.
type app struct {
	cfg     *config.AppConfig
	logger  *slog.Logger
	service *weather.Service
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var logLevel string

	root := &cobra.Command{
		Use:           "weather <station_code> <station_id> <date_from> <date_to>",
		Short:         "Fetch JMA daily observations for a date range as CSV.",
		Long:          longHelp,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, logLevel)
		},
		RunE: a.runFetch,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error).")

	root.AddCommand(newServeCmd(a), newExportCmd(a))
	return root
}

// ExecuteContext runs the CLI and returns the process exit status.
func ExecuteContext(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, logLevel string) error {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		if cfg.LogLevel, err = config.ParseLogLevel(logLevel); err != nil {
			return err
		}
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.AppEnv, cfg.LogLevel)
	slog.SetDefault(logger)

	provider := providers.NewJMAProvider(providers.HTTPClientConfig{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
		Breaker: providers.BreakerConfig{
			MaxFailures: uint32(cfg.BreakerMaxFailures),
			Timeout:     cfg.BreakerTimeout,
		},
		Logger: logger,
	})

	a.cfg = cfg
	a.logger = logger
	a.service = weather.NewService(provider, logger)
	return nil
}

// runFetch fetches the whole range before writing anything, so a failure
// part-way through never leaves partial CSV on stdout.
func (a *app) runFetch(cmd *cobra.Command, args []string) error {
	req, err := parseRangeArgs(args)
	if err != nil {
		return err
	}

	records, err := a.service.GetRange(cmd.Context(), req)
	if err != nil {
		return err
	}
	a.logger.Debug("range fetched", "station", req.Station.Key(), "rows", len(records))

	return export.WriteCSV(cmd.OutOrStdout(), records)
}

func parseRangeArgs(args []string) (weather.RangeRequest, error) {
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return weather.RangeRequest{}, fmt.Errorf("invalid station_id %q: must be an integer", args[1])
	}
	from, err := weather.ParseDate(args[2])
	if err != nil {
		return weather.RangeRequest{}, fmt.Errorf("date_from: %w", err)
	}
	to, err := weather.ParseDate(args[3])
	if err != nil {
		return weather.RangeRequest{}, fmt.Errorf("date_to: %w", err)
	}

	return weather.RangeRequest{
		Station: weather.Station{Code: args[0], ID: id},
		From:    from,
		To:      to,
	}, nil
}
