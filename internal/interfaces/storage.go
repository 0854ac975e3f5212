package interfaces

import (
	"context"
	"errors"

	"github.com/merxlabs/merx/internal/models"
)

// ErrNotFound is returned by storage lookups for unknown ids. Callers
// distinguish it from validation failures with errors.Is.
var ErrNotFound = errors.New("not found")

// JobListOptions filters and bounds a job listing. The zero value lists
// everything newest-first.
type JobListOptions struct {
	Status models.JobStatus
	Limit  int
	Offset int
}

// JobStorage persists job records. Writes are whole-record upserts; a
// record written by put is readable by a later get across process
// restarts. No multi-record atomicity is provided.
type JobStorage interface {
	SaveJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	ListJobs(ctx context.Context, opts *JobListOptions) ([]*models.Job, error)
	GetJobsByStatus(ctx context.Context, status models.JobStatus) ([]*models.Job, error)
	CountJobs(ctx context.Context) (int, error)
	CountJobsByStatus(ctx context.Context, status models.JobStatus) (int, error)
}

// ItemListOptions filters and bounds an item listing
type ItemListOptions struct {
	Status   models.ItemStatus
	Category string
	Limit    int
	Offset   int
}

// ItemStorage persists the work-item backlog
type ItemStorage interface {
	SaveItem(ctx context.Context, item *models.WorkItem) error
	GetItem(ctx context.Context, itemID string) (*models.WorkItem, error)
	ListItems(ctx context.Context, opts *ItemListOptions) ([]*models.WorkItem, error)
	CountItems(ctx context.Context) (int, error)
	CountItemsByStatus(ctx context.Context, status models.ItemStatus) (int, error)
}

// StorageManager bundles the record stores over one database connection
type StorageManager interface {
	JobStorage() JobStorage
	ItemStorage() ItemStorage
	Close() error
}
