package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
	"github.com/merxlabs/merx/internal/storage/badger"
)

type stubChecker struct {
	running map[string]bool
}

func (c *stubChecker) IsRunning(jobID string) bool {
	return c.running[jobID]
}

func newTestJobStorage(t *testing.T) interfaces.JobStorage {
	t.Helper()

	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "merx-test"),
	})
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager.JobStorage()
}

func TestSweep_FailsStaleJobs(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	stale := models.NewJob([]string{"item_1"})
	stale.MarkStarted()
	old := time.Now().Add(-time.Hour)
	stale.LastHeartbeat = &old

	fresh := models.NewJob([]string{"item_2"})
	fresh.MarkStarted()

	owned := models.NewJob([]string{"item_3"})
	owned.MarkStarted()
	owned.LastHeartbeat = &old

	for _, job := range []*models.Job{stale, fresh, owned} {
		if err := storage.SaveJob(ctx, job); err != nil {
			t.Fatalf("Failed to save job: %v", err)
		}
	}

	svc := NewService(storage, &stubChecker{running: map[string]bool{owned.ID: true}}, &common.SchedulerConfig{
		StaleAfter: "10m",
	}, arbor.NewLogger())

	svc.sweep()

	got, err := storage.GetJob(ctx, stale.ID)
	if err != nil {
		t.Fatalf("Failed to get stale job: %v", err)
	}
	if got.Status != models.JobStatusFailed {
		t.Errorf("Expected stale job failed, got '%s'", got.Status)
	}
	if got.Error == "" {
		t.Error("Swept job should carry a failure reason")
	}

	got, err = storage.GetJob(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("Failed to get fresh job: %v", err)
	}
	if got.Status != models.JobStatusRunning {
		t.Errorf("Fresh job should be untouched, got '%s'", got.Status)
	}

	got, err = storage.GetJob(ctx, owned.ID)
	if err != nil {
		t.Fatalf("Failed to get owned job: %v", err)
	}
	if got.Status != models.JobStatusRunning {
		t.Errorf("Locally running job should never be swept, got '%s'", got.Status)
	}
}

func TestSweep_UsesCreatedAtWithoutHeartbeat(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	job := models.NewJob([]string{"item_1"})
	job.Status = models.JobStatusRunning
	job.CreatedAt = time.Now().Add(-time.Hour)
	job.LastHeartbeat = nil

	if err := storage.SaveJob(ctx, job); err != nil {
		t.Fatalf("Failed to save job: %v", err)
	}

	svc := NewService(storage, &stubChecker{}, &common.SchedulerConfig{StaleAfter: "10m"}, arbor.NewLogger())
	svc.sweep()

	got, err := storage.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if got.Status != models.JobStatusFailed {
		t.Errorf("Expected job without heartbeat swept by creation time, got '%s'", got.Status)
	}
}

func TestStartStop(t *testing.T) {
	storage := newTestJobStorage(t)

	svc := NewService(storage, &stubChecker{}, &common.SchedulerConfig{}, arbor.NewLogger())
	if err := svc.Start(); err != nil {
		t.Fatalf("Failed to start sweeper: %v", err)
	}
	// Second start is a no-op
	if err := svc.Start(); err != nil {
		t.Fatalf("Restart should be a no-op, got: %v", err)
	}

	svc.Stop()
	svc.Stop()
}

func TestRecoverOrphans(t *testing.T) {
	storage := newTestJobStorage(t)
	ctx := context.Background()

	queued := models.NewJob([]string{"item_1"})
	running := models.NewJob([]string{"item_2"})
	running.MarkStarted()
	done := models.NewJob([]string{"item_3"})
	done.MarkStarted()
	done.MarkCompleted()

	for _, job := range []*models.Job{queued, running, done} {
		if err := storage.SaveJob(ctx, job); err != nil {
			t.Fatalf("Failed to save job: %v", err)
		}
	}

	if err := RecoverOrphans(ctx, storage, arbor.NewLogger()); err != nil {
		t.Fatalf("Failed to recover orphans: %v", err)
	}

	for _, id := range []string{queued.ID, running.ID} {
		got, err := storage.GetJob(ctx, id)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if got.Status != models.JobStatusFailed {
			t.Errorf("Expected orphan %s failed, got '%s'", id, got.Status)
		}
		if got.Error != "job interrupted by process restart" {
			t.Errorf("Unexpected recovery reason: '%s'", got.Error)
		}
	}

	got, err := storage.GetJob(ctx, done.ID)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if got.Status != models.JobStatusCompleted {
		t.Errorf("Completed job should be untouched by recovery, got '%s'", got.Status)
	}
}
