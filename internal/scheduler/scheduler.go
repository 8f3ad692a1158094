package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/config"
	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/service/monitoring"
)

const jobTimeout = 2 * time.Minute

// Sampler takes a reading in every room.
type Sampler interface {
	SampleAll(ctx context.Context) ([]models.SensorSample, error)
}

// WeatherRefresher replaces the cached weather observation.
type WeatherRefresher interface {
	Refresh(ctx context.Context) (models.EnvironmentSample, error)
}

// Monitor evaluates and maintains the facility.
type Monitor interface {
	FacilityStatus(ctx context.Context) ([]monitoring.RoomStatus, error)
	PruneHistory(ctx context.Context, sess *models.Session, keep int) (int64, error)
}

// Reporter renders the facility report.
type Reporter interface {
	FacilityReport(ctx context.Context) (string, error)
}

// Notifier delivers operator messages.
type Notifier interface {
	NotifyAlerts(ctx context.Context, statuses []monitoring.RoomStatus) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	sampler  Sampler
	weather  WeatherRefresher
	monitor  Monitor
	reporter Reporter
	notifier Notifier
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. notifier may be nil when
// messaging is not configured.
func NewScheduler(cfg config.Config, sampler Sampler, weather WeatherRefresher, monitor Monitor, reporter Reporter, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Scheduler.Timezone, err)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		cron:     c,
		sampler:  sampler,
		weather:  weather,
		monitor:  monitor,
		reporter: reporter,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	jobs := []struct {
		name     string
		schedule string
		run      func()
	}{
		{"sensor sampling", s.cfg.Scheduler.SensorSchedule, s.sampleRooms},
		{"weather refresh", s.cfg.Scheduler.WeatherSchedule, s.refreshWeather},
		{"history pruning", s.cfg.Scheduler.PruneSchedule, s.pruneHistory},
		{"facility report", s.cfg.Scheduler.ReportSchedule, s.sendReport},
	}

	for _, job := range jobs {
		if _, err := s.cron.AddFunc(job.schedule, job.run); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", job.name, job.schedule, err)
		}
		s.logger.Info("job scheduled", zap.String("job", job.name), zap.String("schedule", job.schedule))
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sampleRooms() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	samples, err := s.sampler.SampleAll(ctx)
	if err != nil {
		s.logger.Error("failed to sample rooms", zap.Error(err))
		return
	}
	s.logger.Debug("rooms sampled", zap.Int("count", len(samples)))

	if s.notifier == nil {
		return
	}

	statuses, err := s.monitor.FacilityStatus(ctx)
	if err != nil {
		s.logger.Error("failed to evaluate rooms", zap.Error(err))
		return
	}
	if err := s.notifier.NotifyAlerts(ctx, statuses); err != nil {
		s.logger.Error("failed to notify alerts", zap.Error(err))
	}
}

func (s *Scheduler) refreshWeather() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.weather.Refresh(ctx); err != nil {
		s.logger.Error("failed to refresh weather", zap.Error(err))
	}
}

func (s *Scheduler) pruneHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sess := monitoring.SystemSession
	removed, err := s.monitor.PruneHistory(ctx, &sess, s.cfg.History.Keep)
	if err != nil {
		s.logger.Error("failed to prune history", zap.Error(err))
		return
	}
	s.logger.Info("history pruned", zap.Int64("removed", removed))
}

func (s *Scheduler) sendReport() {
	s.logger.Info("generating facility report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.reporter.FacilityReport(ctx)
	if err != nil {
		s.logger.Error("failed to generate facility report", zap.Error(err))
		return
	}

	if s.notifier == nil || s.cfg.WhatsApp.AlertRecipient == "" {
		s.logger.Info("facility report", zap.String("report", report))
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.AlertRecipient,
		Message: report,
	}
	if err := s.notifier.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send facility report", zap.Error(err))
	} else {
		s.logger.Info("facility report sent successfully")
	}
}
