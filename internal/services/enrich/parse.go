package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/merxlabs/merx/internal/interfaces"
	"github.com/merxlabs/merx/internal/models"
)

// providerResponse is the JSON shape the providers are asked to emit.
type providerResponse struct {
	Title               string            `json:"title"`
	Brand               string            `json:"brand"`
	SKU                 string            `json:"sku"`
	Specs               map[string]string `json:"specs"`
	DescriptionMarkdown string            `json:"description_markdown"`
	Features            []string          `json:"features"`
	CareInstructions    string            `json:"care_instructions"`
	FAQs                []models.FAQ      `json:"faqs"`
}

// parseResponse turns raw provider output into ProductContent. The
// models are asked for bare JSON but sometimes wrap it in markdown
// fences anyway, so those are stripped before unmarshalling.
func parseResponse(raw, provider, model string) (*models.ProductContent, error) {
	cleaned := stripJSONFences(raw)

	var resp providerResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindUnknown,
			fmt.Sprintf("provider returned unparseable JSON: %v", err), err)
	}

	html, err := renderHTML(resp.DescriptionMarkdown)
	if err != nil {
		return nil, interfaces.NewEnrichmentError(interfaces.ErrKindUnknown,
			"failed to render description HTML", err)
	}

	return &models.ProductContent{
		Title:               strings.TrimSpace(resp.Title),
		Brand:               strings.TrimSpace(resp.Brand),
		SKU:                 strings.TrimSpace(resp.SKU),
		Specs:               resp.Specs,
		DescriptionMarkdown: resp.DescriptionMarkdown,
		DescriptionHTML:     html,
		Features:            resp.Features,
		CareInstructions:    resp.CareInstructions,
		FAQs:                resp.FAQs,
		Provider:            provider,
		Model:               model,
		GeneratedAt:         time.Now(),
	}, nil
}

// stripJSONFences removes markdown code fences around a JSON payload.
func stripJSONFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the opening fence line (``` or ```json)
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Fall back to the outermost braces if the model added prose
	if !strings.HasPrefix(s, "{") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start >= 0 && end > start {
			s = s[start : end+1]
		}
	}

	return s
}

// renderHTML converts description markdown to HTML for publish targets.
func renderHTML(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
