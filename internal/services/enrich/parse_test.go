package enrich

import (
	"strings"
	"testing"

	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
	"github.com/merxlabs/merx/internal/services/catalog"
)

const sampleJSON = `{
  "title": "Round Basin 400mm",
  "brand": "Aquenze",
  "sku": "AQ-RB400",
  "specs": {"Material": "Vitreous china", "Width": "400 mm"},
  "description_markdown": "A **compact** above-counter basin.",
  "features": ["Easy-clean glaze", "Above-counter mount"],
  "care_instructions": "Wipe with a soft cloth.",
  "faqs": [{"question": "Is a waste included?", "answer": "No."}]
}`

func TestParseResponse(t *testing.T) {
	content, err := parseResponse(sampleJSON, "claude", "claude-haiku-3-5-20241022")
	if err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if content.Title != "Round Basin 400mm" {
		t.Errorf("Expected title, got '%s'", content.Title)
	}
	if content.Brand != "Aquenze" || content.SKU != "AQ-RB400" {
		t.Errorf("Brand/SKU lost: '%s' / '%s'", content.Brand, content.SKU)
	}
	if content.Specs["Material"] != "Vitreous china" {
		t.Errorf("Specs lost: %v", content.Specs)
	}
	if len(content.Features) != 2 {
		t.Errorf("Expected 2 features, got %d", len(content.Features))
	}
	if len(content.FAQs) != 1 || content.FAQs[0].Answer != "No." {
		t.Errorf("FAQs lost: %v", content.FAQs)
	}
	if content.Provider != "claude" || content.Model != "claude-haiku-3-5-20241022" {
		t.Errorf("Provenance lost: '%s' / '%s'", content.Provider, content.Model)
	}
	if content.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}

	// Markdown is rendered to HTML alongside
	if !strings.Contains(content.DescriptionHTML, "<strong>compact</strong>") {
		t.Errorf("Description HTML not rendered from markdown:\n%s", content.DescriptionHTML)
	}
	if content.DescriptionMarkdown != "A **compact** above-counter basin." {
		t.Errorf("Original markdown not preserved: '%s'", content.DescriptionMarkdown)
	}
}

func TestParseResponse_InvalidJSON(t *testing.T) {
	_, err := parseResponse("the model rambled instead of answering", "claude", "test")
	if err == nil {
		t.Fatal("Expected error for non-JSON output")
	}
	if got := interfaces.KindOf(err); got != interfaces.ErrKindUnknown {
		t.Errorf("Expected unknown kind, got '%s'", got)
	}
}

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare json", `{"title": "x"}`, `{"title": "x"}`},
		{"plain fence", "```\n{\"title\": \"x\"}\n```", `{"title": "x"}`},
		{"json fence", "```json\n{\"title\": \"x\"}\n```", `{"title": "x"}`},
		{"leading prose", "Here is the content:\n{\"title\": \"x\"}", `{"title": "x"}`},
		{"prose both sides", "Sure!\n{\"title\": \"x\"}\nLet me know if you need more.", `{"title": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFences(tt.raw); got != tt.want {
				t.Errorf("stripJSONFences(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := renderHTML("## Heading\n\nSome *emphasis*.")
	if err != nil {
		t.Fatalf("Failed to render: %v", err)
	}
	if !strings.Contains(html, "<h2") || !strings.Contains(html, "<em>emphasis</em>") {
		t.Errorf("Unexpected HTML:\n%s", html)
	}

	empty, err := renderHTML("   ")
	if err != nil {
		t.Fatalf("Failed on blank markdown: %v", err)
	}
	if empty != "" {
		t.Errorf("Blank markdown should render to empty string, got %q", empty)
	}
}

func TestBuildPrompt(t *testing.T) {
	schema := &catalog.CategorySchema{
		Category:   "sinks",
		Attributes: []catalog.Attribute{{Name: "Material", Required: true}},
		Tone:       "Practical.",
	}
	item := &models.WorkItem{
		ID:         "item_1",
		SourceURL:  "https://supplier.example.com/products/basin-400",
		SourceKind: models.SourceKindPage,
		Supplier:   "Aquenze",
		Category:   "sinks",
	}

	prompt := buildPrompt(item, schema, "# Round Basin\n\nVitreous china.")

	for _, want := range []string{
		"Product category: sinks",
		"- Material [required]",
		"Supplier: Aquenze",
		"Source URL: https://supplier.example.com/products/basin-400",
		"description_markdown",
		"Source content:",
		"Vitreous china.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}

	// PDF sources attach the document instead of inlining content
	pdfPrompt := buildPrompt(item, schema, "")
	if !strings.Contains(pdfPrompt, "The source document is attached") {
		t.Error("PDF prompt should reference the attached document")
	}
	if strings.Contains(pdfPrompt, "Source content:") {
		t.Error("PDF prompt should not carry inline source content")
	}
}
