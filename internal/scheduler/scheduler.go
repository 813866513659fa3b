package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/i474232898/jma-weather/internal/export"
	"github.com/i474232898/jma-weather/internal/weather"
)

// jst is the timezone JMA reports its daily values in. Japan has no DST.
var jst = time.FixedZone("JST", 9*60*60)

// Options configures the periodic export.
type Options struct {
	Stations     []weather.Station
	Interval     time.Duration
	Dir          string
	LookbackDays int
	// JobTimeout bounds a single station export. Zero means 10 minutes.
	JobTimeout time.Duration
}

// Scheduler periodically writes a CSV of recent observations for each configured station.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	opts      Options
	logger    *slog.Logger
	now       func() time.Time

	// ctx is cancelled by Stop so in-flight scheduled runs abort.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler.
func New(opts Options, service *weather.Service, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 10 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.opts.Stations) == 0 {
		s.logger.Info("scheduler: no stations configured; nothing to schedule")
		return nil
	}

	interval := s.opts.Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(func() {
		if err := s.RunOnce(s.ctx); err != nil {
			s.logger.Error("scheduler: export run finished with errors", "err", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop cancels a running export and stops the scheduler.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Window returns the export range ending yesterday (JST) and spanning
// LookbackDays days.
func (s *Scheduler) Window() (from, to time.Time) {
	today := weather.Date(s.now().In(jst))
	return today.AddDate(0, 0, -s.opts.LookbackDays), today.AddDate(0, 0, -1)
}

// RunOnce exports every station once, sequentially. A failing station is
// logged and does not stop the others; all failures are returned joined.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	runID := uuid.NewString()
	from, to := s.Window()
	logger := s.logger.With("run_id", runID)

	logger.Info("scheduler: running export job",
		"stations", len(s.opts.Stations),
		"from", from.Format(time.DateOnly),
		"to", to.Format(time.DateOnly),
	)

	if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	var errs []error
	for _, st := range s.opts.Stations {
		path, err := s.exportStation(ctx, st, from, to)
		if err != nil {
			logger.Error("scheduler: export failed", "station", st.Key(), "err", err)
			errs = append(errs, fmt.Errorf("station %s: %w", st.Key(), err))
			continue
		}
		logger.Info("scheduler: export written", "station", st.Key(), "path", path)
	}

	logger.Info("scheduler: completed export job", "failed", len(errs))
	return errors.Join(errs...)
}

func (s *Scheduler) exportStation(ctx context.Context, st weather.Station, from, to time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.JobTimeout)
	defer cancel()

	records, err := s.service.GetRange(ctx, weather.RangeRequest{Station: st, From: from, To: to})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, records); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%d_%s_%s.csv", st.Code, st.ID, from.Format(time.DateOnly), to.Format(time.DateOnly))
	path := filepath.Join(s.opts.Dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
