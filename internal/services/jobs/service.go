package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
)

// SubmitRequest is a batch enrichment request.
type SubmitRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,dive,required"`
}

// runner tracks one in-flight job: its cancel function and a channel
// closed when the processing goroutine exits, so shutdown can join it.
type runner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Service coordinates batch enrichment jobs. Jobs run sequentially
// over their items on a dedicated goroutine per job; the runner map is
// the single source of truth for what is executing in this process.
type Service struct {
	storage   interfaces.StorageManager
	enricher  interfaces.EnrichmentService
	events    interfaces.EventService
	logger    arbor.ILogger
	validate  *validator.Validate
	config    *common.JobsConfig
	itemDelay time.Duration

	runners map[string]*runner
	mu      sync.Mutex
}

// NewService creates the job coordinator.
func NewService(storage interfaces.StorageManager, enricher interfaces.EnrichmentService, events interfaces.EventService, config *common.JobsConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		enricher:  enricher,
		events:    events,
		logger:    logger,
		validate:  validator.New(),
		config:    config,
		itemDelay: common.ParseDurationOr(config.ItemDelay, 15*time.Second),
		runners:   make(map[string]*runner),
	}
}

// SubmitBatch validates a batch request, persists a queued job, and
// starts processing it in the background. The returned snapshot is
// detached from the live record: the processor goroutine owns the job
// from here on, and progress is observed via GetStatus or events.
func (s *Service) SubmitBatch(ctx context.Context, req *SubmitRequest) (*models.JobSnapshot, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid batch request: %w", err)
	}

	maxBatch := s.config.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = 100
	}
	if len(req.ItemIDs) > maxBatch {
		return nil, fmt.Errorf("batch size %d exceeds maximum of %d items", len(req.ItemIDs), maxBatch)
	}

	// Reject unknown items up front so a typo doesn't burn a job slot
	itemStore := s.storage.ItemStorage()
	for _, itemID := range req.ItemIDs {
		if _, err := itemStore.GetItem(ctx, itemID); err != nil {
			return nil, fmt.Errorf("item %s: %w", itemID, interfaces.ErrNotFound)
		}
	}

	job := models.NewJob(req.ItemIDs)
	if err := s.storage.JobStorage().SaveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}

	// Snapshot before handing the record to the processor goroutine;
	// after start the job has a single writer and callers must not
	// touch it.
	snapshot := job.Snapshot()
	s.start(job)

	s.logger.Info().
		Str("job_id", snapshot.JobID).
		Int("item_count", snapshot.Total).
		Msg("Batch job submitted")

	return &snapshot, nil
}

// start registers a runner for the job and launches its processing
// goroutine.
func (s *Service) start(job *models.Job) {
	jobCtx, cancel := context.WithCancel(context.Background())
	r := &runner{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.runners[job.ID] = r
	s.mu.Unlock()

	go func() {
		defer close(r.done)
		defer s.release(job.ID)
		s.run(jobCtx, job)
	}()
}

// release removes a finished job from the runner map.
func (s *Service) release(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runners[jobID]; ok {
		r.cancel()
		delete(s.runners, jobID)
	}
}

// GetStatus returns a point-in-time snapshot of a job.
func (s *Service) GetStatus(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	job, err := s.storage.JobStorage().GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	snapshot := job.Snapshot()
	return &snapshot, nil
}

// ListRecent returns recent jobs, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]models.JobSummary, error) {
	jobs, err := s.storage.JobStorage().ListJobs(ctx, &interfaces.JobListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	summaries := make([]models.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, job.Summary())
	}
	return summaries, nil
}

// RequestCancel asks a running or queued job to stop. Cancelling a
// terminal job is a no-op; cancelling twice is a no-op. The job stops
// at the next item boundary, keeping results already produced.
func (s *Service) RequestCancel(ctx context.Context, jobID string) error {
	job, err := s.storage.JobStorage().GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	if job.IsTerminal() {
		s.logger.Debug().
			Str("job_id", jobID).
			Str("status", string(job.Status)).
			Msg("Cancel requested for terminal job, ignoring")
		return nil
	}

	s.mu.Lock()
	r, running := s.runners[jobID]
	s.mu.Unlock()

	if running {
		r.cancel()
		s.logger.Info().Str("job_id", jobID).Msg("Job cancellation requested")
		return nil
	}

	// Not executing in this process (queued orphan from a previous
	// run); mark it cancelled directly.
	job.MarkCancelled()
	if err := s.storage.JobStorage().SaveJob(ctx, job); err != nil {
		return fmt.Errorf("failed to persist cancelled job: %w", err)
	}
	s.publishFinished(ctx, job)

	s.logger.Info().Str("job_id", jobID).Msg("Inactive job marked cancelled")
	return nil
}

// IsRunning reports whether the job is executing in this process.
func (s *Service) IsRunning(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.runners[jobID]
	return ok
}

// ActiveCount returns the number of jobs currently executing.
func (s *Service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runners)
}

// Shutdown cancels all running jobs and waits for their goroutines to
// drain, bounded by the configured shutdown wait.
func (s *Service) Shutdown() {
	wait := common.ParseDurationOr(s.config.ShutdownWait, 30*time.Second)

	s.mu.Lock()
	pending := make([]*runner, 0, len(s.runners))
	for _, r := range s.runners {
		r.cancel()
		pending = append(pending, r)
	}
	count := len(pending)
	s.mu.Unlock()

	if count == 0 {
		return
	}

	s.logger.Info().Int("active_jobs", count).Msg("Waiting for running jobs to stop")

	deadline := time.After(wait)
	for _, r := range pending {
		select {
		case <-r.done:
		case <-deadline:
			s.logger.Warn().Msg("Shutdown wait elapsed with jobs still draining")
			return
		}
	}

	s.logger.Info().Msg("All jobs stopped")
}
