package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
)

// runningChecker reports whether a job is executing in this process.
// Satisfied by the job coordinator.
type runningChecker interface {
	IsRunning(jobID string) bool
}

// Service sweeps for stale jobs on a cron schedule. A running job
// whose heartbeat has not moved within the stale window and which no
// local runner owns was orphaned by a crash; the sweeper fails it so
// it does not report running forever.
type Service struct {
	jobStorage interfaces.JobStorage
	checker    runningChecker
	cron       *cron.Cron
	logger     arbor.ILogger
	staleAfter time.Duration
	schedule   string
	mu         sync.Mutex
	running    bool
}

// NewService creates the stale-job sweeper
func NewService(jobStorage interfaces.JobStorage, checker runningChecker, config *common.SchedulerConfig, logger arbor.ILogger) *Service {
	return &Service{
		jobStorage: jobStorage,
		checker:    checker,
		cron:       cron.New(),
		logger:     logger,
		staleAfter: common.ParseDurationOr(config.StaleAfter, 10*time.Minute),
		schedule:   config.SweepSchedule,
	}
}

// Start registers the sweep with the cron runner and starts it
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	schedule := s.schedule
	if schedule == "" {
		schedule = "*/5 * * * *"
	}

	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule stale job sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Dur("stale_after", s.staleAfter).
		Msg("Stale job sweeper started")

	return nil
}

// Stop halts the cron runner, waiting for an in-flight sweep
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Stale job sweeper stopped")
}

// sweep fails running jobs whose heartbeat is older than the stale
// window and which are not executing locally.
func (s *Service) sweep() {
	ctx := context.Background()

	jobs, err := s.jobStorage.GetJobsByStatus(ctx, models.JobStatusRunning)
	if err != nil {
		s.logger.Error().Err(err).Msg("Stale job sweep failed to list running jobs")
		return
	}

	cutoff := time.Now().Add(-s.staleAfter)
	swept := 0

	for _, job := range jobs {
		if s.checker != nil && s.checker.IsRunning(job.ID) {
			continue
		}

		heartbeat := job.CreatedAt
		if job.LastHeartbeat != nil {
			heartbeat = *job.LastHeartbeat
		}
		if heartbeat.After(cutoff) {
			continue
		}

		job.MarkFailed("job abandoned: no heartbeat within stale window")
		if err := s.jobStorage.SaveJob(ctx, job); err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist swept job")
			continue
		}

		swept++
		s.logger.Warn().
			Str("job_id", job.ID).
			Str("last_heartbeat", heartbeat.Format(time.RFC3339)).
			Msg("Stale job marked failed")
	}

	if swept > 0 {
		s.logger.Info().Int("count", swept).Msg("Stale job sweep completed")
	}
}

// RecoverOrphans fails jobs left queued or running by a previous
// process. Called once at startup before any new job is accepted, so
// the store never reports a job as active that nothing is executing.
func RecoverOrphans(ctx context.Context, jobStorage interfaces.JobStorage, logger arbor.ILogger) error {
	recovered := 0

	for _, status := range []models.JobStatus{models.JobStatusRunning, models.JobStatusQueued} {
		jobs, err := jobStorage.GetJobsByStatus(ctx, status)
		if err != nil {
			return fmt.Errorf("failed to list %s jobs: %w", status, err)
		}

		for _, job := range jobs {
			job.MarkFailed("job interrupted by process restart")
			if err := jobStorage.SaveJob(ctx, job); err != nil {
				return fmt.Errorf("failed to persist recovered job %s: %w", job.ID, err)
			}
			recovered++
			logger.Warn().
				Str("job_id", job.ID).
				Str("previous_status", string(status)).
				Msg("Orphaned job marked failed")
		}
	}

	if recovered > 0 {
		logger.Info().Int("count", recovered).Msg("Orphaned jobs recovered")
	}

	return nil
}
