package jobs

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
)

// run processes a job's items in order on the calling goroutine.
// Pacing uses a rate limiter with a fixed per-item interval so the
// provider's rate limit is respected across the whole batch. The job
// stops at an item boundary on cancellation; per-item failures are
// recorded and never abort the batch. Only a failure to persist the
// job record itself is fatal.
func (s *Service) run(ctx context.Context, job *models.Job) {
	background := context.Background()

	job.MarkStarted()
	if err := s.storage.JobStorage().SaveJob(background, job); err != nil {
		// Don't leave the job queued in the store with nothing running
		// it: startup recovery only runs at boot and the sweeper only
		// scans running jobs.
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist job start")
		job.MarkFailed(fmt.Sprintf("failed to persist job start: %v", err))
		s.saveBestEffort(background, job)
		s.publishFinished(background, job)
		return
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Int("item_count", len(job.ItemIDs)).
		Msg("Job started")

	limiter := rate.NewLimiter(rate.Every(s.itemDelay), 1)

	for _, itemID := range job.ItemIDs {
		if err := limiter.Wait(ctx); err != nil {
			// Cancelled while pacing
			s.finishCancelled(background, job)
			return
		}

		select {
		case <-ctx.Done():
			s.finishCancelled(background, job)
			return
		default:
		}

		result := s.processItem(ctx, itemID)

		if result.Outcome == models.OutcomeSuccess {
			job.RecordSuccess(result.ItemID, result.DurationMS)
		} else {
			job.RecordFailure(result.ItemID, result.Detail, result.DurationMS)
		}

		if err := s.storage.JobStorage().SaveJob(background, job); err != nil {
			// The record is the source of truth; losing writes to it
			// means progress can no longer be trusted.
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist job progress")
			job.MarkFailed(fmt.Sprintf("failed to persist progress: %v", err))
			s.saveBestEffort(background, job)
			s.publishFinished(background, job)
			return
		}

		s.publishProgress(background, job, &result)

		// A cancel that landed mid-item takes effect now, before the
		// next item starts.
		select {
		case <-ctx.Done():
			s.finishCancelled(background, job)
			return
		default:
		}
	}

	job.MarkCompleted()
	if err := s.storage.JobStorage().SaveJob(background, job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist job completion")
		return
	}

	s.publishFinished(background, job)

	s.logger.Info().
		Str("job_id", job.ID).
		Int("succeeded", job.SucceededCount).
		Int("failed", job.FailedCount).
		Msg("Job completed")
}

// processItem enriches one item and returns its result. A panic in the
// enrichment path is converted to a failure result so one bad item
// cannot take down the batch.
func (s *Service) processItem(ctx context.Context, itemID string) (result models.ItemResult) {
	startTime := time.Now()
	result = models.ItemResult{ItemID: itemID, Outcome: models.OutcomeFailure}

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = models.OutcomeFailure
			result.Detail = fmt.Sprintf("panic during enrichment: %v", r)
			result.DurationMS = time.Since(startTime).Milliseconds()
			s.logger.Error().
				Str("item_id", itemID).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Recovered from panic while processing item")
		}
	}()

	itemStore := s.storage.ItemStorage()

	item, err := itemStore.GetItem(ctx, itemID)
	if err != nil {
		result.Detail = fmt.Sprintf("item not found: %v", err)
		result.DurationMS = time.Since(startTime).Milliseconds()
		return result
	}

	item.MarkProcessing()
	if err := itemStore.SaveItem(ctx, item); err != nil {
		s.logger.Warn().Err(err).Str("item_id", itemID).Msg("Failed to persist item processing state")
	}

	content, err := s.enricher.Enrich(ctx, item)
	durationMS := time.Since(startTime).Milliseconds()

	if err != nil {
		kind := interfaces.KindOf(err)
		item.MarkFailed(err.Error())
		if saveErr := itemStore.SaveItem(context.Background(), item); saveErr != nil {
			s.logger.Warn().Err(saveErr).Str("item_id", itemID).Msg("Failed to persist item failure")
		}

		s.logger.Warn().
			Str("item_id", itemID).
			Str("error_kind", string(kind)).
			Err(err).
			Msg("Item enrichment failed")

		result.Detail = err.Error()
		result.DurationMS = durationMS
		return result
	}

	item.MarkSucceeded(content)
	if saveErr := itemStore.SaveItem(context.Background(), item); saveErr != nil {
		s.logger.Warn().Err(saveErr).Str("item_id", itemID).Msg("Failed to persist item result")
	}

	result.Outcome = models.OutcomeSuccess
	result.Detail = ""
	result.DurationMS = durationMS
	return result
}

// finishCancelled marks the job cancelled, keeping results already
// recorded, and publishes the terminal event.
func (s *Service) finishCancelled(ctx context.Context, job *models.Job) {
	job.MarkCancelled()
	s.saveBestEffort(ctx, job)
	s.publishFinished(ctx, job)

	s.logger.Info().
		Str("job_id", job.ID).
		Int("processed", job.ProcessedCount).
		Msg("Job cancelled")
}

func (s *Service) saveBestEffort(ctx context.Context, job *models.Job) {
	if err := s.storage.JobStorage().SaveJob(ctx, job); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist terminal job state")
	}
}

func (s *Service) publishProgress(ctx context.Context, job *models.Job, last *models.ItemResult) {
	snapshot := job.Snapshot()
	event := interfaces.Event{
		Type: interfaces.EventJobProgress,
		Payload: &interfaces.JobProgressPayload{
			Snapshot:   &snapshot,
			LastResult: last,
		},
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to publish progress event")
	}
}

func (s *Service) publishFinished(ctx context.Context, job *models.Job) {
	snapshot := job.Snapshot()
	var last *models.ItemResult
	if len(snapshot.PerItemResults) > 0 {
		last = &snapshot.PerItemResults[len(snapshot.PerItemResults)-1]
	}

	event := interfaces.Event{
		Type: interfaces.EventJobFinished,
		Payload: &interfaces.JobProgressPayload{
			Snapshot:   &snapshot,
			LastResult: last,
		},
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to publish terminal event")
	}
}
