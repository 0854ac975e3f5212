package models

import (
	"fmt"
	"strings"
	"time"
)

// ItemStatus tracks a work item through the enrichment pipeline
type ItemStatus string

const (
	ItemStatusPending    ItemStatus = "pending"
	ItemStatusProcessing ItemStatus = "processing"
	ItemStatusSucceeded  ItemStatus = "succeeded"
	ItemStatusFailed     ItemStatus = "failed"
)

// SourceKind identifies how an item's supplier source is fetched
type SourceKind string

const (
	// SourceKindPage is an HTML product page
	SourceKindPage SourceKind = "page"
	// SourceKindPDF is a PDF spec sheet
	SourceKindPDF SourceKind = "pdf"
)

// WorkItem is one unit of enrichment work: a supplier source to turn
// into catalog product content. Items are created independently of
// jobs; a job references items by id.
type WorkItem struct {
	ID         string     `json:"id" badgerhold:"key"`
	SourceURL  string     `json:"source_url"`
	SourceKind SourceKind `json:"source_kind"`
	Supplier   string     `json:"supplier,omitempty"`
	Category   string     `json:"category"`
	Status     ItemStatus `json:"status"`

	Result *ProductContent `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at" badgerhold:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the item is well-formed enough to enrich
func (i *WorkItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item ID is required")
	}
	if strings.TrimSpace(i.SourceURL) == "" {
		return fmt.Errorf("source URL is required")
	}
	if i.SourceKind != SourceKindPage && i.SourceKind != SourceKindPDF {
		return fmt.Errorf("source kind must be %q or %q", SourceKindPage, SourceKindPDF)
	}
	if strings.TrimSpace(i.Category) == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

// MarkProcessing flags the item as in flight
func (i *WorkItem) MarkProcessing() {
	i.Status = ItemStatusProcessing
	i.UpdatedAt = time.Now()
}

// MarkSucceeded stores the enrichment result
func (i *WorkItem) MarkSucceeded(result *ProductContent) {
	i.Status = ItemStatusSucceeded
	i.Result = result
	i.Error = ""
	i.UpdatedAt = time.Now()
}

// MarkFailed records the failure detail
func (i *WorkItem) MarkFailed(detail string) {
	i.Status = ItemStatusFailed
	i.Error = detail
	i.UpdatedAt = time.Now()
}
