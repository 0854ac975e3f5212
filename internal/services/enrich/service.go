package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/common"
	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
	"github.com/merxlabs/merx/internal/services/catalog"
)

// provider is the narrow surface the concrete AI backends implement.
type provider interface {
	generate(ctx context.Context, prompt string, source *interfaces.SourceContent) (string, error)
	name() string
	modelName() string
}

// Service enriches a work item end to end: fetch the source, build
// the category-aware prompt, call the provider, and parse the result
// into product content.
type Service struct {
	provider provider
	fetcher  interfaces.SourceFetcher
	schemas  *catalog.Registry
	logger   arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.EnrichmentService = (*Service)(nil)

// NewService creates an enrichment service for the configured provider.
func NewService(ctx context.Context, config *common.EnrichmentConfig, fetcher interfaces.SourceFetcher, schemas *catalog.Registry, logger arbor.ILogger) (*Service, error) {
	var p provider
	var err error

	switch config.Provider {
	case "claude", "":
		p, err = newClaudeProvider(&config.Claude, logger)
	case "gemini":
		p, err = newGeminiProvider(ctx, &config.Gemini, logger)
	default:
		return nil, fmt.Errorf("unknown enrichment provider: %s", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &Service{
		provider: p,
		fetcher:  fetcher,
		schemas:  schemas,
		logger:   logger,
	}, nil
}

// Provider returns the active provider name.
func (s *Service) Provider() string {
	return s.provider.name()
}

// Enrich produces product content for one work item.
func (s *Service) Enrich(ctx context.Context, item *models.WorkItem) (*models.ProductContent, error) {
	schema, err := s.schemas.Get(item.Category)
	if err != nil {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindInvalidInput, err.Error(), err)
	}

	startTime := time.Now()

	source, err := s.fetcher.Fetch(ctx, item)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(item, schema, source.Markdown)

	raw, err := s.provider.generate(ctx, prompt, source)
	if err != nil {
		return nil, err
	}

	content, err := parseResponse(raw, s.provider.name(), s.provider.modelName())
	if err != nil {
		return nil, err
	}

	// Fall back to the page title when the model leaves it blank
	if content.Title == "" {
		if source.Title == "" {
			return nil, interfaces.NewEnrichmentError(interfaces.ErrKindUnknown,
				"provider response has no title", nil)
		}
		content.Title = source.Title
	}

	s.logger.Debug().
		Str("item_id", item.ID).
		Str("category", item.Category).
		Str("provider", s.provider.name()).
		Dur("duration", time.Since(startTime)).
		Msg("Item enriched")

	return content, nil
}
