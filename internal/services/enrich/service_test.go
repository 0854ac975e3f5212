package enrich

import (
	"context"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
	"github.com/merxlabs/merx/internal/services/catalog"
)

type stubProvider struct {
	response   string
	err        error
	lastPrompt string
	lastSource *interfaces.SourceContent
}

func (p *stubProvider) generate(ctx context.Context, prompt string, source *interfaces.SourceContent) (string, error) {
	p.lastPrompt = prompt
	p.lastSource = source
	return p.response, p.err
}

func (p *stubProvider) name() string      { return "stub" }
func (p *stubProvider) modelName() string { return "stub-model" }

type stubFetcher struct {
	content *interfaces.SourceContent
	err     error
}

func (f *stubFetcher) Fetch(ctx context.Context, item *models.WorkItem) (*interfaces.SourceContent, error) {
	return f.content, f.err
}

func newStubService(p provider, f interfaces.SourceFetcher) *Service {
	return &Service{
		provider: p,
		fetcher:  f,
		schemas:  catalog.NewRegistry(arbor.NewLogger()),
		logger:   arbor.NewLogger(),
	}
}

func testItem() *models.WorkItem {
	return &models.WorkItem{
		ID:         "item_1",
		SourceURL:  "https://supplier.example.com/products/basin-400",
		SourceKind: models.SourceKindPage,
		Category:   "sinks",
	}
}

func TestEnrich_HappyPath(t *testing.T) {
	p := &stubProvider{response: sampleJSON}
	f := &stubFetcher{content: &interfaces.SourceContent{
		Title:    "Round Basin 400mm | Aquenze",
		Markdown: "# Round Basin\n\nVitreous china, 400mm.",
	}}
	svc := newStubService(p, f)

	content, err := svc.Enrich(context.Background(), testItem())
	if err != nil {
		t.Fatalf("Failed to enrich: %v", err)
	}

	if content.Title != "Round Basin 400mm" {
		t.Errorf("Expected model title, got '%s'", content.Title)
	}
	if content.Provider != "stub" || content.Model != "stub-model" {
		t.Errorf("Provenance not stamped: '%s' / '%s'", content.Provider, content.Model)
	}

	// The prompt carried the schema and the fetched source
	if !strings.Contains(p.lastPrompt, "Product category:") {
		t.Error("Prompt missing category schema")
	}
	if !strings.Contains(p.lastPrompt, "Vitreous china, 400mm.") {
		t.Error("Prompt missing source markdown")
	}
}

func TestEnrich_UnknownCategory(t *testing.T) {
	svc := newStubService(&stubProvider{response: sampleJSON}, &stubFetcher{})

	item := testItem()
	item.Category = "garden-furniture"

	_, err := svc.Enrich(context.Background(), item)
	if err == nil {
		t.Fatal("Expected error for unknown category")
	}
	if got := interfaces.KindOf(err); got != interfaces.ErrKindInvalidInput {
		t.Errorf("Expected invalid_input, got '%s'", got)
	}
}

func TestEnrich_FetchErrorPassesThrough(t *testing.T) {
	fetchErr := interfaces.NewEnrichmentError(interfaces.ErrKindRateLimited, "source rate limited", nil)
	svc := newStubService(&stubProvider{}, &stubFetcher{err: fetchErr})

	_, err := svc.Enrich(context.Background(), testItem())
	if err == nil {
		t.Fatal("Expected fetch error to propagate")
	}
	if got := interfaces.KindOf(err); got != interfaces.ErrKindRateLimited {
		t.Errorf("Expected rate_limited, got '%s'", got)
	}
}

func TestEnrich_TitleFallsBackToPageTitle(t *testing.T) {
	response := `{"title": "", "specs": {}, "description_markdown": "A basin."}`
	f := &stubFetcher{content: &interfaces.SourceContent{
		Title:    "Round Basin 400mm | Aquenze",
		Markdown: "content",
	}}
	svc := newStubService(&stubProvider{response: response}, f)

	content, err := svc.Enrich(context.Background(), testItem())
	if err != nil {
		t.Fatalf("Failed to enrich: %v", err)
	}
	if content.Title != "Round Basin 400mm | Aquenze" {
		t.Errorf("Expected page title fallback, got '%s'", content.Title)
	}
}

func TestEnrich_NoTitleAnywhere(t *testing.T) {
	response := `{"title": "", "specs": {}}`
	f := &stubFetcher{content: &interfaces.SourceContent{Markdown: "content"}}
	svc := newStubService(&stubProvider{response: response}, f)

	_, err := svc.Enrich(context.Background(), testItem())
	if err == nil {
		t.Fatal("Expected error when neither model nor page provides a title")
	}
}
