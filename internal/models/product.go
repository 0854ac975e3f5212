package models

import "time"

// FAQ is one question/answer pair generated for a product
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ProductContent is the structured output of enriching one work item.
// DescriptionHTML is rendered from DescriptionMarkdown for publish
// targets that cannot consume markdown.
type ProductContent struct {
	Title string `json:"title"`
	Brand string `json:"brand,omitempty"`
	SKU   string `json:"sku,omitempty"`

	Specs map[string]string `json:"specs,omitempty"`

	DescriptionMarkdown string   `json:"description_markdown,omitempty"`
	DescriptionHTML     string   `json:"description_html,omitempty"`
	Features            []string `json:"features,omitempty"`
	CareInstructions    string   `json:"care_instructions,omitempty"`
	FAQs                []FAQ    `json:"faqs,omitempty"`

	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}
