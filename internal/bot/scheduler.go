package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/sysblokbot/internal/bot/jobs"
	"github.com/edgard/sysblokbot/internal/config"
	"github.com/edgard/sysblokbot/internal/logger"
	"github.com/edgard/sysblokbot/internal/telegram"
)

// Scheduler runs the configured jobs on cron schedules and delivers their
// reports to the report chat.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	jobMap    map[string]jobs.JobFunc
	send      telegram.SendFunc
	mu        sync.Mutex
	running   bool
}

// NewScheduler creates a scheduler for jobMap. send receives the reports of
// scheduled runs.
func NewScheduler(log *slog.Logger, cfg *config.SchedulerConfig, jobMap map[string]jobs.JobFunc, send telegram.SendFunc) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}

	s, err := gocron.NewScheduler(gocron.WithLogger(logger.NewGocronLogger(log)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		logger:    log.With("component", "scheduler"),
		cfg:       cfg,
		jobMap:    jobMap,
		send:      send,
	}, nil
}

// Start schedules all enabled jobs and starts the scheduler. Jobs that are
// unknown or have an invalid schedule are logged and skipped.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("scheduler is already running")
	}

	scheduledCount := 0
	if s.cfg != nil {
		for name, jobConfig := range s.cfg.Tasks {
			if s.schedule(name, jobConfig) {
				scheduledCount++
			}
		}
	}
	if scheduledCount == 0 {
		s.logger.Warn("No jobs scheduled")
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "jobs_scheduled", scheduledCount)
	return nil
}

func (s *Scheduler) schedule(name string, jobConfig config.TaskConfig) bool {
	if !jobConfig.Enabled {
		s.logger.Info("Skipping disabled job", "job", name)
		return false
	}

	job, exists := s.jobMap[name]
	if !exists {
		s.logger.Warn("Scheduled job configured but not registered, skipping", "job", name)
		return false
	}

	_, err := s.scheduler.NewJob(
		gocron.CronJob(jobConfig.Schedule, true),
		gocron.NewTask(func(ctx context.Context) {
			// errors are logged by the job wrapper
			_ = job(ctx, s.send)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		s.logger.Error("Failed to schedule job", "job", name, "schedule", jobConfig.Schedule, "error", err)
		return false
	}

	s.logger.Info("Scheduled job", "job", name, "schedule", jobConfig.Schedule)
	return true
}

// Jobs returns the names of the scheduled jobs.
func (s *Scheduler) Jobs() []string {
	var names []string
	for _, j := range s.scheduler.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

// Stop stops the scheduler, waiting for running jobs to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped")
	}

	s.running = false
	return err
}
