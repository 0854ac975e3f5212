package interfaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/merxlabs/merx/internal/models"
)

// ErrorKind classifies enrichment failures for observability. The
// processor treats all kinds identically at the per-item level (record
// the failure, continue the batch) but preserves the kind in the result
// detail.
type ErrorKind string

const (
	ErrKindRateLimited  ErrorKind = "rate_limited"
	ErrKindInvalidInput ErrorKind = "invalid_input"
	ErrKindTimeout      ErrorKind = "timeout"
	ErrKindUnknown      ErrorKind = "unknown"
)

// EnrichmentError wraps a collaborator failure with its kind
type EnrichmentError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *EnrichmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// NewEnrichmentError builds a classified enrichment failure
func NewEnrichmentError(kind ErrorKind, message string, err error) *EnrichmentError {
	return &EnrichmentError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the error kind from an error chain. Unclassified
// errors report ErrKindUnknown.
func KindOf(err error) ErrorKind {
	var enrichErr *EnrichmentError
	if errors.As(err, &enrichErr) {
		return enrichErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrKindTimeout
	}
	return ErrKindUnknown
}

// EnrichmentService turns a work item's source reference into structured
// product content. Calls may take tens of seconds and are subject to the
// provider's global rate limit; callers pace themselves.
type EnrichmentService interface {
	Enrich(ctx context.Context, item *models.WorkItem) (*models.ProductContent, error)
	Provider() string
}

// SourceContent is the fetched and pre-processed supplier source handed
// to the enrichment provider.
type SourceContent struct {
	Title    string
	Markdown string // main page content converted to markdown (page sources)

	PDFData   []byte // raw PDF bytes (pdf sources)
	PageCount int
}

// SourceFetcher retrieves and pre-processes an item's supplier source.
// Failures carry enrichment error kinds so a bad source is recorded the
// same way as a provider failure.
type SourceFetcher interface {
	Fetch(ctx context.Context, item *models.WorkItem) (*SourceContent, error)
}
