package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a batch job. queued and running
// are active; completed, failed and cancelled are terminal and a job
// never leaves a terminal state.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ResultOutcome is the per-item outcome recorded on the job
type ResultOutcome string

const (
	OutcomeSuccess ResultOutcome = "success"
	OutcomeFailure ResultOutcome = "failure"
)

// ItemResult records the outcome of one item within a job, in
// processing order.
type ItemResult struct {
	ItemID     string        `json:"item_id"`
	Outcome    ResultOutcome `json:"outcome"`
	Detail     string        `json:"detail,omitempty"`
	DurationMS int64         `json:"duration_ms"`
}

// Job is a batch enrichment run over an ordered list of work items.
// Counters satisfy ProcessedCount == SucceededCount + FailedCount at
// every persisted state.
type Job struct {
	ID      string    `json:"id" badgerhold:"key"`
	ItemIDs []string  `json:"item_ids"`
	Status  JobStatus `json:"status" badgerhold:"index"`

	ProcessedCount int          `json:"processed_count"`
	SucceededCount int          `json:"succeeded_count"`
	FailedCount    int          `json:"failed_count"`
	Results        []ItemResult `json:"results"`

	CreatedAt     time.Time  `json:"created_at" badgerhold:"index"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`

	Error string `json:"error,omitempty"`
}

// NewJob creates a queued job over the given items
func NewJob(itemIDs []string) *Job {
	ids := make([]string, len(itemIDs))
	copy(ids, itemIDs)

	return &Job{
		ID:        "job_" + uuid.New().String(),
		ItemIDs:   ids,
		Status:    JobStatusQueued,
		Results:   []ItemResult{},
		CreatedAt: time.Now(),
	}
}

// IsTerminal reports whether the job has reached a final state
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the job is queued or running
func (j *Job) IsActive() bool {
	return !j.IsTerminal()
}

// MarkStarted transitions queued -> running
func (j *Job) MarkStarted() {
	if j.IsTerminal() {
		return
	}
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.LastHeartbeat = &now
}

// Touch refreshes the heartbeat used by the stale-job sweeper
func (j *Job) Touch() {
	now := time.Now()
	j.LastHeartbeat = &now
}

// RecordSuccess appends a success result and bumps the counters
func (j *Job) RecordSuccess(itemID string, durationMS int64) {
	if j.IsTerminal() {
		return
	}
	j.Results = append(j.Results, ItemResult{
		ItemID:     itemID,
		Outcome:    OutcomeSuccess,
		DurationMS: durationMS,
	})
	j.ProcessedCount++
	j.SucceededCount++
	j.Touch()
}

// RecordFailure appends a failure result with its detail and bumps the
// counters.
func (j *Job) RecordFailure(itemID, detail string, durationMS int64) {
	if j.IsTerminal() {
		return
	}
	j.Results = append(j.Results, ItemResult{
		ItemID:     itemID,
		Outcome:    OutcomeFailure,
		Detail:     detail,
		DurationMS: durationMS,
	})
	j.ProcessedCount++
	j.FailedCount++
	j.Touch()
}

// MarkCompleted transitions to completed. No-op once terminal.
func (j *Job) MarkCompleted() {
	if j.IsTerminal() {
		return
	}
	now := time.Now()
	j.Status = JobStatusCompleted
	j.CompletedAt = &now
}

// MarkFailed transitions to failed with a job-level error. No-op once
// terminal.
func (j *Job) MarkFailed(errMsg string) {
	if j.IsTerminal() {
		return
	}
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = errMsg
}

// MarkCancelled transitions to cancelled, keeping results recorded so
// far. No-op once terminal.
func (j *Job) MarkCancelled() {
	if j.IsTerminal() {
		return
	}
	now := time.Now()
	j.Status = JobStatusCancelled
	j.CompletedAt = &now
}

// CheckCounters verifies the counter invariant
func (j *Job) CheckCounters() error {
	if j.ProcessedCount != j.SucceededCount+j.FailedCount {
		return fmt.Errorf("job %s: processed %d != succeeded %d + failed %d",
			j.ID, j.ProcessedCount, j.SucceededCount, j.FailedCount)
	}
	if len(j.Results) != j.ProcessedCount {
		return fmt.Errorf("job %s: %d results recorded for %d processed items",
			j.ID, len(j.Results), j.ProcessedCount)
	}
	return nil
}

// JobSnapshot is a point-in-time view of a job for status queries and
// progress events.
type JobSnapshot struct {
	JobID          string       `json:"job_id"`
	Status         JobStatus    `json:"status"`
	Total          int          `json:"total"`
	Processed      int          `json:"processed"`
	Succeeded      int          `json:"succeeded"`
	Failed         int          `json:"failed"`
	PerItemResults []ItemResult `json:"per_item_results"`
	CreatedAt      time.Time    `json:"created_at"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	Error          string       `json:"error,omitempty"`
}

// Snapshot copies the job's observable state. The results slice is
// copied so the snapshot stays stable while the job keeps moving.
func (j *Job) Snapshot() JobSnapshot {
	results := make([]ItemResult, len(j.Results))
	copy(results, j.Results)

	return JobSnapshot{
		JobID:          j.ID,
		Status:         j.Status,
		Total:          len(j.ItemIDs),
		Processed:      j.ProcessedCount,
		Succeeded:      j.SucceededCount,
		Failed:         j.FailedCount,
		PerItemResults: results,
		CreatedAt:      j.CreatedAt,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
		Error:          j.Error,
	}
}

// JobSummary is the compact listing view
type JobSummary struct {
	JobID     string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Total     int       `json:"total"`
	Processed int       `json:"processed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the compact listing view of the job
func (j *Job) Summary() JobSummary {
	return JobSummary{
		JobID:     j.ID,
		Status:    j.Status,
		Total:     len(j.ItemIDs),
		Processed: j.ProcessedCount,
		Succeeded: j.SucceededCount,
		Failed:    j.FailedCount,
		CreatedAt: j.CreatedAt,
	}
}
