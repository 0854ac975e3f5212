package models

import (
	"strings"
	"testing"
)

func TestNewJob_CopiesItemIDs(t *testing.T) {
	ids := []string{"item_a", "item_b"}
	job := NewJob(ids)

	if !strings.HasPrefix(job.ID, "job_") {
		t.Errorf("Expected job ID with job_ prefix, got '%s'", job.ID)
	}
	if job.Status != JobStatusQueued {
		t.Errorf("Expected status queued, got '%s'", job.Status)
	}
	if len(job.ItemIDs) != 2 {
		t.Fatalf("Expected 2 item IDs, got %d", len(job.ItemIDs))
	}

	// Mutating the caller's slice must not reach into the job
	ids[0] = "mutated"
	if job.ItemIDs[0] != "item_a" {
		t.Errorf("Job item IDs aliased the caller's slice: got '%s'", job.ItemIDs[0])
	}

	if job.Results == nil {
		t.Error("Expected non-nil results slice on a new job")
	}
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob([]string{"item_1", "item_2", "item_3"})

	if job.IsTerminal() {
		t.Fatal("Queued job should not be terminal")
	}
	if !job.IsActive() {
		t.Fatal("Queued job should be active")
	}

	job.MarkStarted()
	if job.Status != JobStatusRunning {
		t.Errorf("Expected running, got '%s'", job.Status)
	}
	if job.StartedAt == nil {
		t.Error("MarkStarted should set StartedAt")
	}
	if job.LastHeartbeat == nil {
		t.Error("MarkStarted should set LastHeartbeat")
	}

	job.RecordSuccess("item_1", 120)
	job.RecordFailure("item_2", "fetch failed", 80)
	job.RecordSuccess("item_3", 95)

	if job.ProcessedCount != 3 {
		t.Errorf("Expected 3 processed, got %d", job.ProcessedCount)
	}
	if job.SucceededCount != 2 {
		t.Errorf("Expected 2 succeeded, got %d", job.SucceededCount)
	}
	if job.FailedCount != 1 {
		t.Errorf("Expected 1 failed, got %d", job.FailedCount)
	}
	if err := job.CheckCounters(); err != nil {
		t.Errorf("Counter invariant violated: %v", err)
	}

	job.MarkCompleted()
	if job.Status != JobStatusCompleted {
		t.Errorf("Expected completed, got '%s'", job.Status)
	}
	if job.CompletedAt == nil {
		t.Error("MarkCompleted should set CompletedAt")
	}
	if !job.IsTerminal() {
		t.Error("Completed job should be terminal")
	}
}

func TestJob_TerminalStatesAreImmutable(t *testing.T) {
	tests := []struct {
		name     string
		finalize func(j *Job)
		status   JobStatus
	}{
		{"completed", func(j *Job) { j.MarkCompleted() }, JobStatusCompleted},
		{"failed", func(j *Job) { j.MarkFailed("boom") }, JobStatusFailed},
		{"cancelled", func(j *Job) { j.MarkCancelled() }, JobStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJob([]string{"item_1"})
			job.MarkStarted()
			job.RecordSuccess("item_1", 10)
			tt.finalize(job)

			if job.Status != tt.status {
				t.Fatalf("Expected status '%s', got '%s'", tt.status, job.Status)
			}

			// Every mutator must be a no-op from here on
			job.MarkStarted()
			job.RecordSuccess("item_x", 5)
			job.RecordFailure("item_y", "late", 5)
			job.MarkCompleted()
			job.MarkFailed("late failure")
			job.MarkCancelled()

			if job.Status != tt.status {
				t.Errorf("Terminal status changed from '%s' to '%s'", tt.status, job.Status)
			}
			if job.ProcessedCount != 1 {
				t.Errorf("Counters moved after terminal state: processed=%d", job.ProcessedCount)
			}
			if len(job.Results) != 1 {
				t.Errorf("Results appended after terminal state: %d results", len(job.Results))
			}
			if tt.status != JobStatusFailed && job.Error != "" {
				t.Errorf("Error set after terminal state: '%s'", job.Error)
			}
		})
	}
}

func TestJob_CheckCounters(t *testing.T) {
	job := NewJob([]string{"item_1", "item_2"})
	job.MarkStarted()
	job.RecordSuccess("item_1", 10)

	if err := job.CheckCounters(); err != nil {
		t.Fatalf("Expected counters to hold, got: %v", err)
	}

	job.ProcessedCount = 5
	if err := job.CheckCounters(); err == nil {
		t.Error("Expected error when processed != succeeded + failed")
	}

	job.ProcessedCount = 1
	job.Results = append(job.Results, ItemResult{ItemID: "item_2", Outcome: OutcomeSuccess})
	if err := job.CheckCounters(); err == nil {
		t.Error("Expected error when results length disagrees with processed count")
	}
}

func TestJob_SnapshotIsIsolated(t *testing.T) {
	job := NewJob([]string{"item_1", "item_2"})
	job.MarkStarted()
	job.RecordSuccess("item_1", 42)

	snap := job.Snapshot()
	if snap.JobID != job.ID {
		t.Errorf("Expected snapshot job ID '%s', got '%s'", job.ID, snap.JobID)
	}
	if snap.Total != 2 || snap.Processed != 1 || snap.Succeeded != 1 || snap.Failed != 0 {
		t.Errorf("Unexpected snapshot counters: %+v", snap)
	}
	if len(snap.PerItemResults) != 1 {
		t.Fatalf("Expected 1 result in snapshot, got %d", len(snap.PerItemResults))
	}

	// The job keeps moving; the snapshot must not
	job.RecordFailure("item_2", "timeout", 30)
	if len(snap.PerItemResults) != 1 {
		t.Errorf("Snapshot results changed after job progressed: %d results", len(snap.PerItemResults))
	}

	snap.PerItemResults[0].Detail = "tampered"
	if job.Results[0].Detail == "tampered" {
		t.Error("Mutating the snapshot leaked into the job's results")
	}
}

func TestJob_Summary(t *testing.T) {
	job := NewJob([]string{"item_1", "item_2", "item_3"})
	job.MarkStarted()
	job.RecordSuccess("item_1", 10)
	job.RecordFailure("item_2", "bad input", 5)

	sum := job.Summary()
	if sum.JobID != job.ID {
		t.Errorf("Expected summary job ID '%s', got '%s'", job.ID, sum.JobID)
	}
	if sum.Total != 3 {
		t.Errorf("Expected total 3, got %d", sum.Total)
	}
	if sum.Processed != 2 || sum.Succeeded != 1 || sum.Failed != 1 {
		t.Errorf("Unexpected summary counters: %+v", sum)
	}
}
